package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr           = ":8080"
	DefaultTDThresholdBps = 30
	DefaultTEThresholdBps = 50
	DefaultWindow         = 30
)

// Config is built once at startup and handed to the service and cli explicitly
type Config struct {
	Addr               string   `yaml:"addr"`
	DatabaseURL        string   `yaml:"database_url"`
	AlphaVantageAPIKey string   `yaml:"alphavantage_api_key"`
	TDThresholdBps     int      `yaml:"td_threshold_bps"`
	TEThresholdBps     int      `yaml:"te_threshold_bps"`
	DefaultWindow      int      `yaml:"te_window_days"`
	CORSOrigins        []string `yaml:"cors_origins"`
	Log                struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	TracingEnabled bool `yaml:"tracing_enabled"`
}

func Default() Config {
	cfg := Config{
		Addr:           DefaultAddr,
		TDThresholdBps: DefaultTDThresholdBps,
		TEThresholdBps: DefaultTEThresholdBps,
		DefaultWindow:  DefaultWindow,
		CORSOrigins:    []string{"*"},
	}
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

// LoadConfig reads the yaml file at path when it exists, then applies environment overrides.
// A missing file is not an error, the defaults and environment are used instead.
func LoadConfig(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("error reading config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("error parsing config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(target *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				*target = strings.TrimSpace(v)
				return
			}
		}
	}
	num := func(target *int, key string) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("environment variable %s must be an integer, got %q", key, v)
		}
		*target = n
		return nil
	}

	str(&c.Addr, "BDM_ADDR")
	str(&c.DatabaseURL, "BDM_DATABASE_URL", "DATABASE_URL")
	str(&c.AlphaVantageAPIKey, "ALPHAVANTAGE_API_KEY")
	str(&c.Log.Level, "LOG_LEVEL")
	str(&c.Log.Format, "LOG_FORMAT")

	if err := num(&c.TDThresholdBps, "BDM_TD_THRESHOLD_BPS"); err != nil {
		return err
	}
	if err := num(&c.TEThresholdBps, "BDM_TE_THRESHOLD_BPS"); err != nil {
		return err
	}
	if err := num(&c.DefaultWindow, "BDM_TE_WINDOW_DAYS"); err != nil {
		return err
	}

	if v, ok := lookup("BDM_CORS_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		c.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORSOrigins = append(c.CORSOrigins, o)
			}
		}
	}

	if v, ok := lookup("BDM_TRACING_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("environment variable BDM_TRACING_ENABLED must be a boolean, got %q", v)
		}
		c.TracingEnabled = enabled
	}

	return nil
}

func (c Config) Validate() error {
	if c.TDThresholdBps <= 0 {
		return fmt.Errorf("td threshold must be positive, got %d", c.TDThresholdBps)
	}
	if c.TEThresholdBps <= 0 {
		return fmt.Errorf("te threshold must be positive, got %d", c.TEThresholdBps)
	}
	if c.DefaultWindow <= 0 {
		return fmt.Errorf("default window must be positive, got %d", c.DefaultWindow)
	}
	if c.Addr == "" {
		return errors.New("listen address is required")
	}
	return nil
}
