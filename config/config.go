package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port              int `yaml:"port"`
	ReadTimeoutMS     int `yaml:"read_timeout_ms"`
	WriteTimeoutMS    int `yaml:"write_timeout_ms"`
	ShutdownTimeoutMS int `yaml:"shutdown_timeout_ms"`
}

// APIConfig holds the exchange endpoint base URLs.
type APIConfig struct {
	ClobURL  string `yaml:"clob_url"`
	GammaURL string `yaml:"gamma_url"`
	DataURL  string `yaml:"data_url"`
}

// WatcherConfig controls trade ingestion cadence.
type WatcherConfig struct {
	PollIntervalSecs int `yaml:"poll_interval_seconds"`
	IdleIntervalSecs int `yaml:"idle_interval_seconds"`
	LookbackMins     int `yaml:"lookback_minutes"`
}

// ExecutorConfig controls copy sizing and order execution cadence.
type ExecutorConfig struct {
	PollIntervalSecs  int `yaml:"poll_interval_seconds"`
	CopyWindowMins    int `yaml:"copy_window_minutes"`
	FillWaitSecs      int `yaml:"fill_wait_seconds"`
	OrderPauseSecs    int `yaml:"order_pause_seconds"`
	MaxErrorMsgLength int `yaml:"max_error_msg_length"`
}

// Config aggregates all app configuration knobs.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	API      APIConfig      `yaml:"api"`
	Watcher  WatcherConfig  `yaml:"watcher"`
	Executor ExecutorConfig `yaml:"executor"`
}

// Load reads configuration from disk, falling back to defaults.
// Environment variables override file values for the endpoint URLs and
// the two poll intervals.
func Load(path string) (*Config, error) {
	cfg := Default()

	configPath := path
	if configPath == "" {
		configPath = filepath.Join("config", "default.yaml")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: unable to read %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: unable to parse %s: %w", configPath, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

// Default returns baseline configuration values.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:              8082,
			ReadTimeoutMS:     10000,
			WriteTimeoutMS:    10000,
			ShutdownTimeoutMS: 5000,
		},
		API: APIConfig{
			ClobURL:  "https://clob.polymarket.com",
			GammaURL: "https://gamma-api.polymarket.com",
			DataURL:  "https://data-api.polymarket.com",
		},
		Watcher: WatcherConfig{
			PollIntervalSecs: 30,
			IdleIntervalSecs: 60,
			LookbackMins:     60,
		},
		Executor: ExecutorConfig{
			PollIntervalSecs:  10,
			CopyWindowMins:    10,
			FillWaitSecs:      5,
			OrderPauseSecs:    1,
			MaxErrorMsgLength: 500,
		},
	}
}

func (c *Config) applyDefaults() {
	def := Default()

	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.ReadTimeoutMS == 0 {
		c.Server.ReadTimeoutMS = def.Server.ReadTimeoutMS
	}
	if c.Server.WriteTimeoutMS == 0 {
		c.Server.WriteTimeoutMS = def.Server.WriteTimeoutMS
	}
	if c.Server.ShutdownTimeoutMS == 0 {
		c.Server.ShutdownTimeoutMS = def.Server.ShutdownTimeoutMS
	}

	if c.API.ClobURL == "" {
		c.API.ClobURL = def.API.ClobURL
	}
	if c.API.GammaURL == "" {
		c.API.GammaURL = def.API.GammaURL
	}
	if c.API.DataURL == "" {
		c.API.DataURL = def.API.DataURL
	}

	if c.Watcher.PollIntervalSecs == 0 {
		c.Watcher.PollIntervalSecs = def.Watcher.PollIntervalSecs
	}
	if c.Watcher.IdleIntervalSecs == 0 {
		c.Watcher.IdleIntervalSecs = def.Watcher.IdleIntervalSecs
	}
	if c.Watcher.LookbackMins == 0 {
		c.Watcher.LookbackMins = def.Watcher.LookbackMins
	}

	if c.Executor.PollIntervalSecs == 0 {
		c.Executor.PollIntervalSecs = def.Executor.PollIntervalSecs
	}
	if c.Executor.CopyWindowMins == 0 {
		c.Executor.CopyWindowMins = def.Executor.CopyWindowMins
	}
	if c.Executor.FillWaitSecs == 0 {
		c.Executor.FillWaitSecs = def.Executor.FillWaitSecs
	}
	if c.Executor.OrderPauseSecs == 0 {
		c.Executor.OrderPauseSecs = def.Executor.OrderPauseSecs
	}
	if c.Executor.MaxErrorMsgLength == 0 {
		c.Executor.MaxErrorMsgLength = def.Executor.MaxErrorMsgLength
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CLOB_API_URL"); v != "" {
		c.API.ClobURL = v
	}
	if v := os.Getenv("GAMMA_API_URL"); v != "" {
		c.API.GammaURL = v
	}
	if v := os.Getenv("DATA_API_URL"); v != "" {
		c.API.DataURL = v
	}
	if secs, ok := envInt("WATCHER_POLL_INTERVAL"); ok {
		c.Watcher.PollIntervalSecs = secs
	}
	if secs, ok := envInt("EXECUTOR_POLL_INTERVAL"); ok {
		c.Executor.PollIntervalSecs = secs
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// EncryptionKey returns the Fernet key used for follower secrets.
func EncryptionKey() string {
	return os.Getenv("ENCRYPTION_KEY")
}
