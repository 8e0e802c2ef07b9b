package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultNetwork        = "localhost"
	defaultAlgorithm      = "fastest"
	defaultLogLevel       = "warn"
	defaultConfirmTimeout = 180

	// EnvPrefix prefixes every environment override, e.g. TOKENCTL_RPC_URL.
	EnvPrefix = "TOKENCTL"
	// DirEnv overrides the config directory.
	DirEnv = "TOKENCTL_CONFIG_DIR"

	configFile = "config.json"
	walletFile = "wallets.json"
	logFile    = "tokenctl.log"
)

// keys that may be overridden from the environment.
var envKeys = []string{
	"network",
	"rpc_url",
	"default_wallet",
	"log_level",
	"confirm_timeout",
	"rpc_algorithm",
}

// DefaultDir returns $TOKENCTL_CONFIG_DIR, or ~/.tokenctl.
func DefaultDir() (string, error) {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".tokenctl"), nil
}

// Load reads config from dir (or creates defaults) and applies environment
// overrides. dir defaults to DefaultDir().
func Load(dir string) (*Config, error) {
	cfg, err := loadFile(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Update applies fn to the stored config, without environment overrides,
// and saves the result.
func Update(dir string, fn func(*Config) error) error {
	cfg, err := loadFile(dir)
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return cfg.Save()
}

func loadFile(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		cfg.configDir = dir
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ./.env) into
// the process environment without overriding variables that are already
// set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("loading %v: %w", present, err)
	}
	return nil
}

// applyEnv overlays TOKENCTL_* variables on the file values.
func (c *Config) applyEnv() error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, k := range envKeys {
		if err := v.BindEnv(k); err != nil {
			return fmt.Errorf("binding %s: %w", k, err)
		}
	}

	if v.IsSet("network") {
		c.Network = v.GetString("network")
	}
	if v.IsSet("rpc_url") {
		c.RPCURL = v.GetString("rpc_url")
	}
	if v.IsSet("default_wallet") {
		c.DefaultWallet = v.GetString("default_wallet")
	}
	if v.IsSet("log_level") {
		c.LogLevel = v.GetString("log_level")
	}
	if v.IsSet("rpc_algorithm") {
		c.RPCAlgorithm = v.GetString("rpc_algorithm")
	}
	if v.IsSet("confirm_timeout") {
		n := v.GetInt("confirm_timeout")
		if n <= 0 {
			return fmt.Errorf("%s_CONFIRM_TIMEOUT must be a positive number of seconds", EnvPrefix)
		}
		c.ConfirmTimeout = n
	}
	return nil
}

// Save writes the config to disk, including any environment overrides in
// effect. Use Update to change single keys.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is where wallet metadata is stored.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletFile)
}

// LogPath is where the dashboard writes its diagnostic log.
func (c *Config) LogPath() string {
	return filepath.Join(c.configDir, logFile)
}

// Timeout returns how long one-shot commands wait for confirmation.
func (c *Config) Timeout() time.Duration {
	if c.ConfirmTimeout <= 0 {
		return defaultConfirmTimeout * time.Second
	}
	return time.Duration(c.ConfirmTimeout) * time.Second
}

// Set updates a key by name. It is used by `tokenctl config set`.
func (c *Config) Set(key, value string) error {
	switch key {
	case "network":
		c.Network = value
	case "rpc_url":
		c.RPCURL = value
	case "default_wallet":
		c.DefaultWallet = value
	case "log_level":
		c.LogLevel = value
	case "rpc_algorithm":
		if value != "fastest" && value != "failover" {
			return fmt.Errorf("unknown rpc algorithm %q (fastest, failover)", value)
		}
		c.RPCAlgorithm = value
	case "confirm_timeout":
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil || n <= 0 {
			return fmt.Errorf("confirm_timeout must be a positive number of seconds")
		}
		c.ConfirmTimeout = n
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// Keys lists the settable config keys.
func Keys() []string {
	return append([]string(nil), envKeys...)
}

func defaults(dir string) *Config {
	return &Config{
		Network:        defaultNetwork,
		RPCAlgorithm:   defaultAlgorithm,
		LogLevel:       defaultLogLevel,
		ConfirmTimeout: defaultConfirmTimeout,
		configDir:      dir,
	}
}
