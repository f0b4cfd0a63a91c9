package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"livetask/internal/cli"
	"livetask/internal/commands"
	"livetask/internal/config"
	"livetask/internal/exitcode"
	"livetask/internal/service"
	"livetask/internal/testutil"
)

// isolate points config lookups at an empty directory and selects the
// mongo backend, whose defaults pass validation.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdir(t, t.TempDir())
	for _, key := range []string{
		"LIVETASK_COLLECTION", "LIVETASK_TIMEOUT", "LIVETASK_DEBUG",
		"LIVETASK_MONGO_URI", "MONGO_URI", "LIVETASK_MONGO_DATABASE",
		"LIVETASK_PROJECT_ID", "GOOGLE_CLOUD_PROJECT", "LIVETASK_CREDENTIALS_FILE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("LIVETASK_BACKEND", config.BackendMongo)
}

// testFactory creates a backend factory that returns the given FakeBackend
// and records the config it was called with.
func testFactory(backend *testutil.FakeBackend, seen **config.Config) cli.BackendFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Backend, error) {
		if seen != nil {
			*seen = cfg
		}
		return backend, nil
	}
}

func run(t *testing.T, factory cli.BackendFactory, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	var outBuf, errBuf bytes.Buffer
	code = dispatcher.Run(context.Background(), args, strings.NewReader(""), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	isolate(t)
	_, stderr, code := run(t, testFactory(testutil.NewFakeBackend(), nil), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if expected := "error: unknown command: unknowncmd\n"; stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	isolate(t)
	_, stderr, code := run(t, testFactory(testutil.NewFakeBackend(), nil), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if expected := "error: unknown command: --quiet\n"; stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		args   []string
		stderr string
	}{
		{[]string{"list", "--bogus"}, "error: unknown flag: -bogus\n"},
		{[]string{"list", "--search"}, "error: flag needs an argument: -search\n"},
		{[]string{"done", "--", "-x"}, "error: unknown flag: -x\n"},
	}
	for _, tt := range tests {
		_, stderr, code := run(t, testFactory(testutil.NewFakeBackend(), nil), tt.args...)
		if code != exitcode.UserError {
			t.Errorf("%v: expected exit code %d, got %d", tt.args, exitcode.UserError, code)
		}
		if stderr != tt.stderr {
			t.Errorf("%v: expected %q, got %q", tt.args, tt.stderr, stderr)
		}
	}
}

func TestDispatcher_HelpAndVersionSkipBackend(t *testing.T) {
	isolate(t)
	failing := func(ctx context.Context, cfg *config.Config) (service.Backend, error) {
		t.Fatal("factory should not be called")
		return nil, nil
	}

	stdout, stderr, code := run(t, failing, "help")
	if code != exitcode.Success || stderr != "" || !strings.Contains(stdout, "Usage:") {
		t.Errorf("help: code %d, stdout %q, stderr %q", code, stdout, stderr)
	}

	stdout, _, code = run(t, failing, "version")
	if code != exitcode.Success || stdout != "livetask 0.1.0\n" {
		t.Errorf("version: code %d, stdout %q", code, stdout)
	}
}

func TestDispatcher_NoArgsLists(t *testing.T) {
	isolate(t)
	backend := testutil.NewFakeBackend()
	backend.SeedTask(service.Task{ID: "aaaa1111", Title: "Buy milk"})

	stdout, stderr, code := run(t, testFactory(backend, nil))

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if expected := "   1  [ ] Buy milk  (medium, aaaa1111)\n"; stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
	if !backend.Closed() {
		t.Error("expected backend closed after the command")
	}
}

func TestDispatcher_AliasAndCommonFlags(t *testing.T) {
	isolate(t)
	backend := testutil.NewFakeBackend()
	var seen *config.Config
	dir := t.TempDir()

	stdout, stderr, code := run(t, testFactory(backend, &seen),
		"create", "--config", dir, "--quiet", "--debug", "-p", "low", "Water", "plants")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "" {
		t.Errorf("expected no stdout with --quiet, got %q", stdout)
	}
	if seen == nil || seen.Dir != dir || !seen.Quiet || !seen.Debug {
		t.Errorf("common flags not applied: %+v", seen)
	}
	if backend.Writes() != 1 {
		t.Errorf("expected 1 write, got %d", backend.Writes())
	}
}

func TestDispatcher_BackendFlagOverridesEnv(t *testing.T) {
	isolate(t)
	t.Setenv("LIVETASK_PROJECT_ID", "demo")
	var seen *config.Config

	_, stderr, code := run(t, testFactory(testutil.NewFakeBackend(), &seen), "list", "--backend", "firestore")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if seen.Backend != config.BackendFirestore || seen.Firestore.ProjectID != "demo" {
		t.Errorf("unexpected config %+v", seen)
	}
}

func TestDispatcher_ConfigError(t *testing.T) {
	isolate(t)
	_, stderr, code := run(t, testFactory(testutil.NewFakeBackend(), nil), "list", "--backend", "sqlite")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if expected := "error: config error: unknown backend: sqlite\n"; stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FactoryErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		name   string
		err    error
		code   int
		prefix string
	}{
		{"auth", fmt.Errorf("%w: not logged in (run: livetask login)", service.ErrUnauthenticated), exitcode.AuthError, "error: auth error: "},
		{"backend", errors.New("server selection timeout"), exitcode.BackendError, "error: backend error: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := func(ctx context.Context, cfg *config.Config) (service.Backend, error) {
				return nil, tt.err
			}
			_, stderr, code := run(t, factory, "list")
			if code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
			if !strings.HasPrefix(stderr, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, stderr)
			}
		})
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
