// Package backend selects and opens the configured task backend.
package backend

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"livetask/internal/backend/firestoredb"
	"livetask/internal/backend/mongodb"
	"livetask/internal/config"
	"livetask/internal/service"
)

// Open validates cfg and connects to the selected backend.
// Missing login files are reported as service.ErrUnauthenticated.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case config.BackendFirestore:
		if cfg.UsesOAuth() && os.Getenv(firestoredb.EmulatorHostEnv) == "" {
			if err := checkLogin(cfg); err != nil {
				return nil, err
			}
		}
		return firestoredb.New(ctx, cfg, logger)
	case config.BackendMongo:
		return mongodb.New(ctx, cfg, logger)
	}
	return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
}

func checkLogin(cfg *config.Config) error {
	if !cfg.HasOAuthClient() {
		return fmt.Errorf("%w: oauth_client.json not found in %s", service.ErrUnauthenticated, cfg.Dir)
	}
	if !cfg.HasToken() {
		return fmt.Errorf("%w: not logged in (run: livetask login)", service.ErrUnauthenticated)
	}
	return nil
}
