package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors config.toml. Unset keys leave the current value alone.
//
//	backend    = "firestore"
//	collection = "tasks"
//	timeout    = "5s"
//
//	[firestore]
//	project_id       = "my-project"
//	credentials_file = "/path/to/key.json"
//
//	[mongo]
//	uri      = "mongodb://localhost:27017/?replicaSet=rs0"
//	database = "livetask"
type fileConfig struct {
	Backend    string `toml:"backend"`
	Collection string `toml:"collection"`
	Timeout    string `toml:"timeout"`
	Firestore  struct {
		ProjectID       string `toml:"project_id"`
		CredentialsFile string `toml:"credentials_file"`
	} `toml:"firestore"`
	Mongo struct {
		URI      string `toml:"uri"`
		Database string `toml:"database"`
	} `toml:"mongo"`
}

// loadFile applies path to c. A missing file is not an error.
func (c *Config) loadFile(path string) error {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("loading config file %s: unknown key %s", path, undecoded[0])
	}

	setString(&c.Backend, fc.Backend)
	setString(&c.Collection, fc.Collection)
	setString(&c.Firestore.ProjectID, fc.Firestore.ProjectID)
	setString(&c.Firestore.CredentialsFile, fc.Firestore.CredentialsFile)
	setString(&c.Mongo.URI, fc.Mongo.URI)
	setString(&c.Mongo.Database, fc.Mongo.Database)
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("loading config file %s: invalid timeout: %w", path, err)
		}
		c.Timeout = d
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
