package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config carries every tunable of the system. It is built once in main and
// handed to component constructors explicitly; nothing reads it ambiently.
type Config struct {
	// Ledger storage
	LedgerPath string

	// Classification
	Backend     string // "zero-shot" or "rules"
	APIURL      string
	Token       string
	APITimeout  time.Duration
	CacheTTL    time.Duration
	CacheSize   int
	CacheDBPath string // empty disables the persistent cache
	RulesPath   string // required when Backend is "rules"

	// HTTP server
	Port string
}

// DefaultAPIURL points at the zero-shot model used for categorization.
const DefaultAPIURL = "https://router.huggingface.co/hf-inference/models/facebook/bart-large-mnli"

// Build loads configuration from an optional YAML file, GASTOS_* environment
// variables, and flag overrides, in increasing order of precedence.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("ledger_path", "data/ledger.csv")
	v.SetDefault("backend", "zero-shot")
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("api_timeout", 10*time.Second)
	v.SetDefault("cache_ttl", time.Hour)
	v.SetDefault("cache_size", 1024)
	v.SetDefault("cache_db_path", "")
	v.SetDefault("rules_path", "")
	v.SetDefault("port", "3000")

	v.SetEnvPrefix("GASTOS")
	v.AutomaticEnv()
	// The classification token usually arrives through HF_TOKEN rather than
	// the prefixed form.
	_ = v.BindEnv("token", "HF_TOKEN", "GASTOS_TOKEN")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		LedgerPath:  v.GetString("ledger_path"),
		Backend:     v.GetString("backend"),
		APIURL:      v.GetString("api_url"),
		Token:       v.GetString("token"),
		APITimeout:  v.GetDuration("api_timeout"),
		CacheTTL:    v.GetDuration("cache_ttl"),
		CacheSize:   v.GetInt("cache_size"),
		CacheDBPath: v.GetString("cache_db_path"),
		RulesPath:   v.GetString("rules_path"),
		Port:        v.GetString("port"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that would only fail later at
// an inconvenient time.
func (c *Config) Validate() error {
	if c.LedgerPath == "" {
		return fmt.Errorf("ledger path cannot be empty")
	}
	switch c.Backend {
	case "zero-shot":
		if c.APIURL == "" {
			return fmt.Errorf("api url cannot be empty with the zero-shot backend")
		}
	case "rules":
		if c.RulesPath == "" {
			return fmt.Errorf("rules path is required with the rules backend")
		}
	default:
		return fmt.Errorf("invalid backend %q: must be one of [zero-shot rules]", c.Backend)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", c.APITimeout)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.CacheTTL)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("cache size must be at least 1, got %d", c.CacheSize)
	}
	if port, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: must be a number", c.Port)
	} else if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	return nil
}
