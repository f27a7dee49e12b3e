package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// ConfigPath returns the default config file path.
func ConfigPath() string {
	return filepath.Join(homeDir(), ".botprobe", "config.json")
}

// DataDir returns the botprobe data directory, creating it if needed.
func DataDir() string {
	dir := filepath.Join(homeDir(), ".botprobe")
	os.MkdirAll(dir, 0o755)
	return dir
}

// ReportsDir returns the directory saved reports go to.
func ReportsDir() string {
	return filepath.Join(DataDir(), "reports")
}

// Load reads configuration from disk, falling back to defaults.
// Environment variables BOTPROBE_API_ID and BOTPROBE_API_HASH override
// the file so CI never needs credentials on disk.
func Load() (*Config, error) {
	cfg, err := LoadFrom(ConfigPath())
	applyEnv(cfg)
	return cfg, err
}

// LoadFrom reads configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err == nil {
		for _, key := range CheckUnknownFields(raw) {
			slog.Warn("unknown config field", "key", key)
		}
	}

	// Fill zero values back in so a sparse file still gets defaults.
	if cfg.Telegram.SessionPath == "" {
		cfg.Telegram.SessionPath = "~/.botprobe/session/tg_user"
	}
	if cfg.Probe.TimeoutSeconds == 0 {
		cfg.Probe.TimeoutSeconds = 10
	}
	if cfg.Probe.MaxDepth == 0 {
		cfg.Probe.MaxDepth = 5
	}
	if cfg.Probe.MaxButtons == 0 {
		cfg.Probe.MaxButtons = 100
	}
	if cfg.Probe.DelayMS == 0 {
		cfg.Probe.DelayMS = 1000
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes configuration to the default path.
func Save(cfg *Config) error {
	return SaveTo(cfg, ConfigPath())
}

// SaveTo writes configuration to a specific path.
func SaveTo(cfg *Config, path string) error {
	os.MkdirAll(filepath.Dir(path), 0o755)

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

// Upgrade reads the existing config file, deep-merges it on top of
// DefaultConfig (local values win), and saves the result. New fields
// from defaults are added; existing user values are preserved.
func Upgrade() (*Config, error) {
	path := ConfigPath()

	defaultData, _ := json.Marshal(DefaultConfig())
	var defaultMap map[string]any
	json.Unmarshal(defaultData, &defaultMap)

	localData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var localMap map[string]any
	if err := json.Unmarshal(localData, &localMap); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	merged := deepMerge(defaultMap, localMap)

	// Re-serialize through the struct to normalize and validate.
	cfg := DefaultConfig()
	reData, _ := json.Marshal(merged)
	if err := json.Unmarshal(reData, cfg); err != nil {
		return nil, fmt.Errorf("apply merged config: %w", err)
	}

	if err := Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// deepMerge recursively merges src into dst. Values from src take
// priority; nested maps merge recursively.
func deepMerge(dst, src map[string]any) map[string]any {
	result := make(map[string]any, len(dst))
	for k, v := range dst {
		result[k] = v
	}
	for k, srcVal := range src {
		dstVal, exists := result[k]
		if !exists {
			result[k] = srcVal
			continue
		}
		dstMap, dstOK := dstVal.(map[string]any)
		srcMap, srcOK := srcVal.(map[string]any)
		if dstOK && srcOK {
			result[k] = deepMerge(dstMap, srcMap)
		} else {
			result[k] = srcVal
		}
	}
	return result
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BOTPROBE_API_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.Telegram.APIID = id
		}
	}
	if v := os.Getenv("BOTPROBE_API_HASH"); v != "" {
		cfg.Telegram.APIHash = v
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp"
	}
	return home
}
