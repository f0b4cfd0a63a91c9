package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// DotEnvFile is loaded from the working directory if present.
// Variables already set in the environment win.
const DotEnvFile = ".env"

func loadDotEnv() error {
	if err := godotenv.Load(DotEnvFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", DotEnvFile, err)
	}
	return nil
}

// loadEnv overrides config from environment variables.
// LIVETASK_* variables take precedence over the generic ones.
func (c *Config) loadEnv() error {
	setString(&c.Backend, os.Getenv("LIVETASK_BACKEND"))
	setString(&c.Collection, os.Getenv("LIVETASK_COLLECTION"))

	setString(&c.Firestore.ProjectID, os.Getenv("GOOGLE_CLOUD_PROJECT"))
	setString(&c.Firestore.ProjectID, os.Getenv("LIVETASK_PROJECT_ID"))
	setString(&c.Firestore.CredentialsFile, os.Getenv("LIVETASK_CREDENTIALS_FILE"))

	setString(&c.Mongo.URI, os.Getenv("MONGO_URI"))
	setString(&c.Mongo.URI, os.Getenv("LIVETASK_MONGO_URI"))
	setString(&c.Mongo.Database, os.Getenv("LIVETASK_MONGO_DATABASE"))

	if v := os.Getenv("LIVETASK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LIVETASK_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("LIVETASK_DEBUG"); v == "1" || v == "true" {
		c.Debug = true
	}
	return nil
}
