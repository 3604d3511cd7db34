package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cardgend/internal/config"
	"cardgend/internal/httpapi"
	"cardgend/internal/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cardgend:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	// Best-effort .env load; real deployments pass env directly.
	_ = godotenv.Load()

	var (
		configPath  string
		cliCfg      config.Config
		corsOrigins string
	)

	root := &cobra.Command{
		Use:           "cardgend",
		Short:         "HTTP proxy that turns free-text descriptions into Adaptive Card JSON via an LLM provider",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cliCfg
			if configPath != "" {
				fileCfg, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = merge(fileCfg, cliCfg, cmd)
			}
			if corsOrigins != "" {
				cfg.CORSEnabled = true
				cfg.CORSOrigins = splitCSV(corsOrigins)
			}
			return run(cfg)
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "Path to config file (.yaml/.json/.toml)")
	root.Flags().StringVar(&cliCfg.Addr, "addr", envOr("CARDGEND_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	root.Flags().StringVar(&cliCfg.BaseURL, "base-url", envOr("CARDGEND_BASE_URL", ""), "Provider base URL (default https://api.openai.com)")
	root.Flags().StringVar(&cliCfg.Model, "model", envOr("CARDGEND_MODEL", ""), "Model identifier sent to the provider")
	root.Flags().IntVar(&cliCfg.MaxConcurrent, "max-concurrent", 0, "In-flight generation ceiling (default 1)")
	root.Flags().IntVar(&cliCfg.RequestTimeoutS, "timeout-s", 0, "Per-attempt provider timeout in seconds (default 30)")
	root.Flags().IntVar(&cliCfg.RetryMax, "retry-max", 0, "Attempt budget for rate-limited calls (default 3)")
	root.Flags().IntVar(&cliCfg.RetryDelayS, "retry-delay-s", 0, "Delay between retries in seconds (default 2)")
	root.Flags().StringVar(&cliCfg.LogLevel, "log-level", envOr("CARDGEND_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	root.Flags().StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins (enables CORS)")

	return root
}

// merge overlays explicitly-set CLI flags on top of the file config.
func merge(file, cli config.Config, cmd *cobra.Command) config.Config {
	out := file
	if cmd.Flags().Changed("addr") || out.Addr == "" {
		out.Addr = cli.Addr
	}
	if cmd.Flags().Changed("base-url") {
		out.BaseURL = cli.BaseURL
	}
	if cmd.Flags().Changed("model") {
		out.Model = cli.Model
	}
	if cmd.Flags().Changed("max-concurrent") {
		out.MaxConcurrent = cli.MaxConcurrent
	}
	if cmd.Flags().Changed("timeout-s") {
		out.RequestTimeoutS = cli.RequestTimeoutS
	}
	if cmd.Flags().Changed("retry-max") {
		out.RetryMax = cli.RetryMax
	}
	if cmd.Flags().Changed("retry-delay-s") {
		out.RetryDelayS = cli.RetryDelayS
	}
	if cmd.Flags().Changed("log-level") || out.LogLevel == "" {
		out.LogLevel = cli.LogLevel
	}
	return out
}

func run(cfg config.Config) error {
	logger := newLogger(cfg.LogLevel)

	apiKey := os.Getenv("CARDGEND_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		// Start anyway: readiness reports 503 and generation maps to a
		// configuration error until the operator supplies the credential.
		logger.Warn().Msg("no provider API key set (CARDGEND_API_KEY or OPENAI_API_KEY)")
	}

	pipe := pipeline.NewWithConfig(pipeline.Config{
		BaseURL:        cfg.BaseURL,
		APIKey:         apiKey,
		Model:          cfg.Model,
		Temperature:    cfg.Temperature,
		MaxConcurrent:  cfg.MaxConcurrent,
		RequestTimeout: time.Duration(cfg.RequestTimeoutS) * time.Second,
		RetryMax:       cfg.RetryMax,
		RetryDelay:     time.Duration(cfg.RetryDelayS) * time.Second,
		Logger:         &logger,
	})

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	httpapi.SetLogger(logger)
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, cfg.CORSMethods, cfg.CORSHeaders)

	mux := httpapi.NewMux(pipe)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("cardgend listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Str("service", "cardgend").Logger()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitCSV splits a comma-separated flag value, trimming blanks.
func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
