package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds settings for the wordcipher command. None of it reaches the
// cipher itself, which only ever sees words, lines and passphrases.
type Config struct {
	StorePath string       `yaml:"store_path"`
	AuditLog  string       `yaml:"audit_log"`
	Server    ServerConfig `yaml:"server"`
}

type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allow_origins"`
}

func Default() Config {
	return Config{
		StorePath: ".wordcipher.json",
		AuditLog:  "",
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			AllowOrigins: []string{"http://localhost:3000"},
		},
	}
}

// Load resolves the configuration from defaults, then
// ~/.wordcipher/config.yml, then ./wordcipher.yml, then WORDCIPHER_*
// environment variables. Later sources win.
func Load() (Config, error) {
	cfg := Default()

	home, err := os.UserHomeDir()
	if err == nil {
		if err := loadFile(&cfg, filepath.Join(home, ".wordcipher", "config.yml")); err != nil {
			return Config{}, err
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("determine working directory: %w", err)
	}
	if err := loadFile(&cfg, filepath.Join(wd, "wordcipher.yml")); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := applyFileConfig(cfg, data); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

type fileConfig struct {
	StorePath *string           `yaml:"store_path"`
	AuditLog  *string           `yaml:"audit_log"`
	Server    *fileServerConfig `yaml:"server"`
}

type fileServerConfig struct {
	Addr         *string  `yaml:"addr"`
	AllowOrigins []string `yaml:"allow_origins"`
}

func applyFileConfig(cfg *Config, data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}
	if fc.StorePath != nil {
		cfg.StorePath = strings.TrimSpace(*fc.StorePath)
	}
	if fc.AuditLog != nil {
		cfg.AuditLog = strings.TrimSpace(*fc.AuditLog)
	}
	if fc.Server != nil {
		if fc.Server.Addr != nil {
			cfg.Server.Addr = strings.TrimSpace(*fc.Server.Addr)
		}
		if fc.Server.AllowOrigins != nil {
			cfg.Server.AllowOrigins = fc.Server.AllowOrigins
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if val := strings.TrimSpace(os.Getenv("WORDCIPHER_STORE")); val != "" {
		cfg.StorePath = val
	}
	if val := strings.TrimSpace(os.Getenv("WORDCIPHER_AUDIT_LOG")); val != "" {
		cfg.AuditLog = val
	}
	if val := strings.TrimSpace(os.Getenv("WORDCIPHER_ADDR")); val != "" {
		cfg.Server.Addr = val
	}
	if val := strings.TrimSpace(os.Getenv("WORDCIPHER_ALLOW_ORIGINS")); val != "" {
		var origins []string
		for _, o := range strings.Split(val, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowOrigins = origins
	}
}
