package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"livetask/internal/config"
	"livetask/internal/logging"
	"livetask/internal/service"
)

func firestoreConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("FIRESTORE_EMULATOR_HOST", "")
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg.Firestore.ProjectID = "proj"
	return cfg
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg, _ := config.New(t.TempDir())
	cfg.Backend = "sqlite"

	_, err := Open(context.Background(), cfg, logging.Discard())
	if err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Fatalf("expected unknown backend error, got %v", err)
	}
}

func TestOpen_FirestoreWithoutOAuthClient(t *testing.T) {
	cfg := firestoreConfig(t)

	_, err := Open(context.Background(), cfg, logging.Discard())
	if !errors.Is(err, service.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if !strings.Contains(err.Error(), "oauth_client.json not found") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestOpen_FirestoreNotLoggedIn(t *testing.T) {
	cfg := firestoreConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.Dir, config.OAuthClientFile), []byte(`{}`), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Open(context.Background(), cfg, logging.Discard())
	if !errors.Is(err, service.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if !strings.Contains(err.Error(), "not logged in") {
		t.Errorf("unexpected message: %v", err)
	}
}
