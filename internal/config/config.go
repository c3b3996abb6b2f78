// Package config resolves server settings from an optional JSONC file,
// environment variables, and command-line flags. Precedence, highest
// wins: flags > environment > config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Storage backend names accepted for Config.Store.
const (
	StoreJSONFile = "jsonfile"
	StoreSQLite   = "sqlite"
)

// DefaultFileName is the config file looked for in the working
// directory when no explicit path is given. JSONC: comments and
// trailing commas are allowed.
const DefaultFileName = "ticketdesk.jsonc"

// Config holds all server settings.
type Config struct {
	Addr    string `json:"addr"`
	DataDir string `json:"data_dir"`
	Store   string `json:"store"`
	Env     string `json:"env"`

	// CSRFKey is 64 hex characters. Required in production.
	CSRFKey string `json:"csrf_key"`

	// Email delivery. Leaving ResendKey empty disables outbound email.
	ResendKey     string `json:"resend_key"`
	EmailFrom     string `json:"email_from"`
	NotifyAddress string `json:"notify_to"`
	ReplyTo       string `json:"reply_to"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Addr:      ":8080",
		DataDir:   "data",
		Store:     StoreJSONFile,
		Env:       "development",
		EmailFrom: "TicketDesk <noreply@ticketdesk.local>",
	}
}

// Production reports whether the config targets a production deploy.
func (c Config) Production() bool {
	return c.Env == "production"
}

// Validate rejects unknown storage backends.
func (c Config) Validate() error {
	switch c.Store {
	case StoreJSONFile, StoreSQLite:
		return nil
	default:
		return fmt.Errorf("unknown store backend %q (want %s or %s)", c.Store, StoreJSONFile, StoreSQLite)
	}
}

// Load reads settings starting from defaults, then the config file,
// then the environment. The file is optional unless path names it
// explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := parseFile(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// No file in the working directory: defaults apply.
	default:
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseFile standardizes JSONC to JSON before decoding.
func parseFile(data []byte, cfg *Config) error {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JSONC: %w", err)
	}
	if err := json.Unmarshal(standardized, cfg); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// applyEnv overlays TICKETDESK_* environment variables.
func (c *Config) applyEnv(getenv func(string) string) {
	overlay := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	overlay(&c.Addr, "TICKETDESK_ADDR")
	overlay(&c.DataDir, "TICKETDESK_DATA_DIR")
	overlay(&c.Store, "TICKETDESK_STORE")
	overlay(&c.Env, "TICKETDESK_ENV")
	overlay(&c.CSRFKey, "TICKETDESK_CSRF_KEY")
	overlay(&c.ResendKey, "TICKETDESK_RESEND_KEY")
	overlay(&c.EmailFrom, "TICKETDESK_RESEND_FROM")
	overlay(&c.NotifyAddress, "TICKETDESK_NOTIFY_TO")
	overlay(&c.ReplyTo, "TICKETDESK_REPLY_TO")
}
