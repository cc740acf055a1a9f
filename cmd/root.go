package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/findsight/findsight-cli/internal/ai"
	cfgpkg "github.com/findsight/findsight-cli/internal/config"
)

var (
	cfgFile string
	debug   bool
	// Backend overrides (take precedence over config/env when set)
	flagProvider string
	flagModel    string
	flagAPIBase  string
	// HTTP/retry overrides
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "findsight",
	Short: "findsight: chat with a findings CSV through an LLM",
	Long: `findsight loads a CSV of free-text equipment findings and answers natural
language questions about it. Each question retrieves a small relevant row
subset (model-generated filter, keyword search, or sample fallback) and
grounds the answer in it.`,
}

// Execute is the entry point called by main.main().
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.findsight/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "model provider (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "model name (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagAPIBase, "api-base", "", "OpenAI-compatible endpoint base URL (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that don't need a backend can still run.
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("provider") && flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if f.Changed("model") && flagModel != "" {
		cfg.Model = flagModel
	}
	if f.Changed("api-base") && flagAPIBase != "" {
		cfg.APIBase = flagAPIBase
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
}

// newRuntime builds the model client from the effective configuration.
func newRuntime() (ai.Runtime, string, error) {
	if cfg == nil {
		return nil, "", fmt.Errorf("no configuration loaded")
	}
	client := ai.NewClient(ai.Options{
		APIKey:           cfg.APIKey,
		BaseURL:          cfg.APIBase,
		HTTPTimeout:      cfg.HTTPTimeout(),
		RetryMaxAttempts: cfg.RetryMaxAttempts,
		RetryBaseDelay:   cfg.RetryBaseDelay(),
		RetryMaxDelay:    cfg.RetryMaxDelay(),
	})
	return client, ai.ModelString(cfg.Provider, cfg.Model), nil
}

func debugf(format string, args ...any) {
	if debug {
		fmt.Fprintf(os.Stderr, "DEBUG: "+format+"\n", args...)
	}
}
