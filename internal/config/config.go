// Package config handles the configuration directory, config file, and
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// AppName is the application directory name.
	AppName = "livetask"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.toml"
)

// Backend names.
const (
	BackendFirestore = "firestore"
	BackendMongo     = "mongo"
)

const (
	// DefaultCollection is the collection holding task documents.
	DefaultCollection = "tasks"

	// DefaultTimeout bounds each backend write.
	DefaultTimeout = 5 * time.Second

	// DefaultMongoURI is used when no Mongo URI is configured.
	DefaultMongoURI = "mongodb://localhost:27017"

	// DefaultMongoDatabase is used when no Mongo database is configured.
	DefaultMongoDatabase = "livetask"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Backend selects the document store: "firestore" or "mongo".
	Backend string

	// Collection is the name of the task collection.
	Collection string

	// Timeout bounds each backend write.
	Timeout time.Duration

	Firestore FirestoreConfig
	Mongo     MongoConfig
}

// FirestoreConfig holds Firestore connection settings.
type FirestoreConfig struct {
	// ProjectID is the Google Cloud project.
	ProjectID string

	// CredentialsFile is a service-account key. When empty, the OAuth
	// token from `livetask login` is used.
	CredentialsFile string
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string
	Database string
}

// New creates a new Config with defaults and the default or specified
// config directory. If configDir is empty, uses XDG_CONFIG_HOME/livetask
// or $HOME/.config/livetask.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:        dir,
		Backend:    BackendFirestore,
		Collection: DefaultCollection,
		Timeout:    DefaultTimeout,
		Mongo: MongoConfig{
			URI:      DefaultMongoURI,
			Database: DefaultMongoDatabase,
		},
	}, nil
}

// Load creates a Config and applies, in order, the config file in the
// config directory and the environment (including a .env file in the
// working directory).
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.loadFile(cfg.ConfigFilePath()); err != nil {
		return nil, err
	}
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	if c.Collection == "" {
		return fmt.Errorf("collection name is empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %s", c.Timeout)
	}
	switch c.Backend {
	case BackendFirestore:
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("firestore project ID not set (set project_id in %s or LIVETASK_PROJECT_ID)", c.ConfigFilePath())
		}
	case BackendMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo URI not set")
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("mongo database not set")
		}
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigFilePath returns the path to config.toml.
func (c *Config) ConfigFilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// UsesOAuth reports whether backend access goes through the login token.
func (c *Config) UsesOAuth() bool {
	return c.Backend == BackendFirestore && c.Firestore.CredentialsFile == ""
}
