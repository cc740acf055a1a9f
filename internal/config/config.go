package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global is the findsight configuration: which model backend answers, and
// the retrieval/serialization limits that bound each chat turn.
type Global struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	Model       string  `mapstructure:"model" yaml:"model"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	APIBase     string  `mapstructure:"api_base" yaml:"api_base"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`

	// Retrieval limits. These are part of the observable contract: the
	// retrieval cap and the serialization cap bind independently.
	RetrievalMaxRows int `mapstructure:"retrieval_max_rows" yaml:"retrieval_max_rows"`
	ContextMaxRows   int `mapstructure:"context_max_rows" yaml:"context_max_rows"`

	// HTTP/retry configuration for the model client.
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`
}

// HTTPTimeout returns the client timeout as a duration.
func (c *Global) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

func (c *Global) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

func (c *Global) RetryMaxDelay() time.Duration {
	return time.Duration(c.RetryMaxDelayMs) * time.Millisecond
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".findsight"), nil
}

// Save writes the configuration to cfgFile, or ~/.findsight/config.yaml
// when cfgFile is empty.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration with precedence: env > config file > defaults.
// A local .env file is read first so `LLM_API_KEY=... findsight chat` and a
// checked-in .env both work without exporting anything.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FINDSIGHT")
	v.AutomaticEnv()
	// Also honor the provider-neutral names commonly set for this kind of
	// tool, e.g. LLM_API_KEY for throwaway shells.
	_ = v.BindEnv("provider", "FINDSIGHT_PROVIDER", "LLM_PROVIDER")
	_ = v.BindEnv("model", "FINDSIGHT_MODEL", "LLM_MODEL")
	_ = v.BindEnv("api_key", "FINDSIGHT_API_KEY", "LLM_API_KEY")
	_ = v.BindEnv("api_base", "FINDSIGHT_API_BASE", "LLM_API_BASE")

	v.SetDefault("provider", "openai")
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("temperature", 0.3)
	v.SetDefault("max_tokens", 2048)
	v.SetDefault("retrieval_max_rows", 150)
	v.SetDefault("context_max_rows", 200)
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	_ = v.ReadInConfig() // optional

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
