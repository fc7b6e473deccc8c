// Package config loads the application configuration from an Hjson file
// (comments allowed) with environment overrides for deployment.
package config

import (
	"fmt"
	"os"

	"dcf_valuation/pkg/core/utils"
)

// Config is the process-wide configuration. Zero values fall back to
// Default().
type Config struct {
	ListenAddr       string `json:"listen_addr"`
	QuoteBaseURL     string `json:"quote_base_url"`
	StatementBaseURL string `json:"statement_base_url"`
	CacheDir         string `json:"cache_dir"`
	PresetsPath      string `json:"presets_path"`
	ModelsPath       string `json:"models_path"`
}

// Default returns the configuration used when no file is deployed.
func Default() Config {
	return Config{
		ListenAddr:  ":8080",
		CacheDir:    ".cache",
		PresetsPath: "config/scenarios.yaml",
		ModelsPath:  "config/models.yaml",
	}
}

// Load reads the Hjson config file at path and applies env overrides. A
// missing file is not an error: defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := utils.ParseHJSONToStruct(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if v := os.Getenv("DCF_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DCF_QUOTE_BASE_URL"); v != "" {
		cfg.QuoteBaseURL = v
	}
	if v := os.Getenv("DCF_STATEMENT_BASE_URL"); v != "" {
		cfg.StatementBaseURL = v
	}
	if v := os.Getenv("DCF_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = Default().ListenAddr
	}
	return cfg, nil
}
