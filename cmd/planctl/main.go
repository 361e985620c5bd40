package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"teamplanner/internal/backend"
	"teamplanner/internal/config"
	"teamplanner/internal/events"
	"teamplanner/internal/logging"
	"teamplanner/internal/metrics"
	"teamplanner/internal/orchestrator"
	"teamplanner/internal/state"
)

var (
	logger     zerolog.Logger
	cfg        *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "planctl",
	Short:         "planctl - drive and observe the shift orchestration engine",
	Long:          "planctl submits scheduling runs, inspects coverage and availability, and monitors the orchestration engine.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("PLANCTL_CONFIG"), "Path to a YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = logging.Setup(cfg.Environment, cfg.LogLevel)
	metrics.RegisterDefault()
	return nil
}

// app is the wired coordinator shared by every command.
type app struct {
	client     *backend.HTTPClient
	broker     events.Broker
	store      *state.Store
	dispatcher *orchestrator.Dispatcher
	closeFn    func() error
}

func (a *app) Close() error {
	if a.closeFn == nil {
		return nil
	}
	return a.closeFn()
}

func newApp() (*app, error) {
	if err := loadConfig(); err != nil {
		return nil, err
	}
	client := backend.NewHTTPClient(backend.Options{
		BaseURL:   cfg.BackendURL,
		Token:     cfg.APIToken,
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.RateLimitRPS,
		Burst:     cfg.RateLimitBurst,
		Logger:    logger,
	})
	if cfg.APIToken != "" {
		info, isJWT, err := backend.InspectToken(cfg.APIToken, time.Now())
		if err != nil {
			return nil, fmt.Errorf("check api_token: %w", err)
		}
		if isJWT && !info.ExpiresAt.IsZero() {
			logger.Debug().Str("subject", info.Subject).Time("expires_at", info.ExpiresAt).Msg("api token")
		}
	}
	a := &app{client: client}
	if cfg.RedisURL != "" {
		rb, err := events.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis broker: %w", err)
		}
		a.broker, a.closeFn = rb, rb.Close
		logger.Info().Msg("state events fan out through redis")
	} else {
		a.broker = events.NewMemory()
	}
	a.store = state.NewStore(logger, a.broker)
	a.dispatcher = orchestrator.NewDispatcher(client, a.store, logger)
	return a, nil
}
