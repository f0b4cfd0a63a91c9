package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LIVETASK_BACKEND", "LIVETASK_COLLECTION", "GOOGLE_CLOUD_PROJECT",
		"LIVETASK_PROJECT_ID", "LIVETASK_CREDENTIALS_FILE", "MONGO_URI",
		"LIVETASK_MONGO_URI", "LIVETASK_MONGO_DATABASE", "LIVETASK_TIMEOUT",
		"LIVETASK_DEBUG",
	} {
		t.Setenv(k, "")
	}
	// Keep a stray .env in the package dir from leaking in.
	chdir(t, t.TempDir())
}

func TestNew_Defaults(t *testing.T) {
	cfg, err := New("/tmp/lt")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/lt", cfg.Dir)
	assert.Equal(t, BackendFirestore, cfg.Backend)
	assert.Equal(t, DefaultCollection, cfg.Collection)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultMongoURI, cfg.Mongo.URI)
	assert.Equal(t, filepath.Join("/tmp/lt", "token.json"), cfg.TokenPath())
	assert.Equal(t, filepath.Join("/tmp/lt", "config.toml"), cfg.ConfigFilePath())
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", AppName), DefaultConfigDir())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, BackendFirestore, cfg.Backend)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := `
backend = "mongo"
collection = "todo"
timeout = "2s"

[firestore]
project_id = "proj"

[mongo]
uri = "mongodb://db:27017/?replicaSet=rs0"
database = "app"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, BackendMongo, cfg.Backend)
	assert.Equal(t, "todo", cfg.Collection)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "proj", cfg.Firestore.ProjectID)
	assert.Equal(t, "mongodb://db:27017/?replicaSet=rs0", cfg.Mongo.URI)
	assert.Equal(t, "app", cfg.Mongo.Database)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_UnknownKey(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("colection = \"x\"\n"), 0600))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "unknown key colection")
}

func TestLoad_BadTimeout(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("timeout = \"soon\"\n"), 0600))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "invalid timeout")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("[firestore]\nproject_id = \"from-file\"\n"), 0600))
	t.Setenv("GOOGLE_CLOUD_PROJECT", "generic")
	t.Setenv("LIVETASK_PROJECT_ID", "from-env")
	t.Setenv("LIVETASK_TIMEOUT", "750ms")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Firestore.ProjectID)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(wd, DotEnvFile), []byte("LIVETASK_BACKEND=mongo\nLIVETASK_MONGO_DATABASE=fromdotenv\n"), 0600))
	t.Cleanup(func() {
		os.Unsetenv("LIVETASK_BACKEND")
		os.Unsetenv("LIVETASK_MONGO_DATABASE")
	})
	// godotenv does not override variables that are already set, even empty.
	os.Unsetenv("LIVETASK_BACKEND")
	os.Unsetenv("LIVETASK_MONGO_DATABASE")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, BackendMongo, cfg.Backend)
	assert.Equal(t, "fromdotenv", cfg.Mongo.Database)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"firestore needs project", func(c *Config) {}, "project ID not set"},
		{"firestore ok", func(c *Config) { c.Firestore.ProjectID = "p" }, ""},
		{"mongo ok", func(c *Config) { c.Backend = BackendMongo }, ""},
		{"mongo needs database", func(c *Config) { c.Backend = BackendMongo; c.Mongo.Database = "" }, "mongo database not set"},
		{"unknown backend", func(c *Config) { c.Backend = "sqlite" }, "unknown backend: sqlite"},
		{"empty collection", func(c *Config) { c.Collection = "" }, "collection name is empty"},
		{"zero timeout", func(c *Config) { c.Firestore.ProjectID = "p"; c.Timeout = 0 }, "timeout must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := New(t.TempDir())
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestUsesOAuth(t *testing.T) {
	cfg, _ := New(t.TempDir())
	assert.True(t, cfg.UsesOAuth())
	cfg.Firestore.CredentialsFile = "key.json"
	assert.False(t, cfg.UsesOAuth())
	cfg.Backend = BackendMongo
	assert.False(t, cfg.UsesOAuth())
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
