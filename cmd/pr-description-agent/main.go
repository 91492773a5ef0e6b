package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zavodil/pr-description-agent/internal/auth"
	"github.com/zavodil/pr-description-agent/internal/completion"
	"github.com/zavodil/pr-description-agent/internal/config"
	"github.com/zavodil/pr-description-agent/internal/github"
	"github.com/zavodil/pr-description-agent/internal/logging"
	"github.com/zavodil/pr-description-agent/internal/webhook"
	"github.com/zavodil/pr-description-agent/internal/workflow"
)

func main() {
	// Initialize logger with default configuration
	logging.Initialize(nil)

	var logLevel string
	var logJSON bool
	var port int

	rootCmd := &cobra.Command{
		Use:   "pr-description-agent",
		Short: "GitHub App that generates pull request descriptions using AI",
		Long:  `A webhook service that listens for GitHub events and writes AI-generated descriptions onto pull requests, triggered by a /describe comment or automatically when a PR opens without one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), port)
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Set logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", true, "Output logs in JSON format")
	rootCmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides PORT)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		var level logging.LogLevel
		switch logLevel {
		case "debug":
			level = logging.LogLevelDebug
		case "info":
			level = logging.LogLevelInfo
		case "warn":
			level = logging.LogLevelWarn
		case "error":
			level = logging.LogLevelError
		default:
			level = logging.LogLevelInfo
		}

		logging.Initialize(&logging.Config{
			Level:      level,
			Output:     os.Stdout,
			JSONFormat: logJSON,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error("Failed to execute command", "error", err)
		os.Exit(1)
	}
}

// serve wires the components from one immutable configuration snapshot and
// runs the webhook server until interrupted.
func serve(ctx context.Context, portOverride int) error {
	// A local .env is optional; the environment wins either way.
	if err := godotenv.Load(); err == nil {
		logging.Debug("Loaded .env file")
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if portOverride != 0 {
		cfg.Port = portOverride
	}

	issuer, err := auth.NewIssuer(cfg.GitHub.AppID, cfg.GitHub.PrivateKey)
	if err != nil {
		return err
	}

	generator, err := completion.New(cfg)
	if err != nil {
		return err
	}

	orchestrator := workflow.New(issuer, func(token string) workflow.PullRequestService {
		return github.NewClient(token)
	}, generator)

	server := webhook.NewServer(cfg.Port, cfg.GitHub.WebhookSecret, orchestrator)

	logging.Info("Starting pr-description-agent",
		"port", cfg.Port,
		"provider", cfg.Completion.Provider)

	return server.Start(ctx)
}
