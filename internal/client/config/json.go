package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/authdash/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell an absent key from an empty one.
type JsonConfig struct {
	APIBaseURL     *string         `json:"api_base_url"`
	BasePath       *string         `json:"base_path"`
	StoragePath    *string         `json:"storage_path"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	LogLevel       *string         `json:"log_level"`
	Output         *string         `json:"output"`
}

// parseJson overlays cfg with the keys present in the file at path.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.BasePath, jc.BasePath)
	setString(&cfg.StoragePath, jc.StoragePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.Output, jc.Output)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
