package config

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/authdash/internal/common"
)

// Config holds runtime settings for the authdash CLI.
//
// A zero RequestTimeout means API calls wait as long as the server does.
type Config struct {
	APIBaseURL     string
	BasePath       string
	StoragePath    string
	RequestTimeout time.Duration
	LogLevel       string
	Output         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.BasePath = common.DefaultBasePath
	c.StoragePath = "session.db"
	c.RequestTimeout = 0
	c.LogLevel = "info"
	c.Output = "table"
}

// LoadConfig applies defaults and then overlays the JSON file at path. An
// empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	var errs []error
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("api base url is empty"))
	}
	if c.StoragePath == "" {
		errs = append(errs, errors.New("storage path is empty"))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, errors.New("request timeout is negative"))
	}
	return errors.Join(errs...)
}
