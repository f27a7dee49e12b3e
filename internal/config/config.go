package config

import "path/filepath"

// Config is the root configuration for botprobe.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Probe    ProbeConfig    `json:"probe"`
}

// TelegramConfig holds the user-API credentials and session location.
type TelegramConfig struct {
	APIID       int    `json:"apiId"`
	APIHash     string `json:"apiHash"`
	SessionPath string `json:"sessionPath"`
}

// ProbeConfig holds the default exploration bounds. CLI flags override
// them per run.
type ProbeConfig struct {
	TimeoutSeconds int `json:"timeoutSeconds"`
	MaxDepth       int `json:"maxDepth"`
	MaxButtons     int `json:"maxButtons"`
	DelayMS        int `json:"delayMs"`
}

// SessionPath returns the expanded session file path.
func (c *Config) SessionPath() string {
	return expandHome(c.Telegram.SessionPath)
}

// HasCredentials reports whether the API credentials are set.
func (c *Config) HasCredentials() bool {
	return c.Telegram.APIID != 0 && c.Telegram.APIHash != ""
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			SessionPath: "~/.botprobe/session/tg_user",
		},
		Probe: ProbeConfig{
			TimeoutSeconds: 10,
			MaxDepth:       5,
			MaxButtons:     100,
			DelayMS:        1000,
		},
	}
}

func expandHome(path string) string {
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
