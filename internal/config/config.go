package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys understood by Load. Environment variables use the SQLDESK_ prefix,
// e.g. SQLDESK_SERVER.
const (
	KeyServer       = "server"
	KeyToken        = "token"
	KeyTimeout      = "timeout"
	KeyDataDir      = "data_dir"
	KeyLogLevel     = "log_level"
	KeyListen       = "listen"
	KeyHistoryLimit = "history_limit"

	EnvPrefix = "SQLDESK"
)

const (
	DefaultServer       = "http://localhost:8000"
	DefaultTimeout      = 60 * time.Second
	DefaultLogLevel     = "info"
	DefaultListen       = "127.0.0.1:8080"
	DefaultHistoryLimit = 20
)

// Config is the resolved runtime configuration.
type Config struct {
	Server       string
	Token        string
	Timeout      time.Duration
	DataDir      string
	LogLevel     string
	Listen       string
	HistoryLimit int
}

// DefaultDataDir returns $HOME/.sqldesk.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sqldesk"), nil
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyServer, DefaultServer)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyListen, DefaultListen)
	v.SetDefault(KeyHistoryLimit, DefaultHistoryLimit)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

// Load resolves a Config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server:       strings.TrimRight(strings.TrimSpace(v.GetString(KeyServer)), "/"),
		Token:        v.GetString(KeyToken),
		Timeout:      v.GetDuration(KeyTimeout),
		DataDir:      v.GetString(KeyDataDir),
		LogLevel:     strings.ToLower(v.GetString(KeyLogLevel)),
		Listen:       v.GetString(KeyListen),
		HistoryLimit: v.GetInt(KeyHistoryLimit),
	}

	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the server URL and timeout.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server)
	if err != nil {
		return fmt.Errorf("invalid server URL %q: %w", c.Server, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server URL %q: scheme must be http or https", c.Server)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server URL %q: missing host", c.Server)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	return nil
}
