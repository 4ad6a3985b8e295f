package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/leofalp/nextpress/core/engagement"
	"github.com/leofalp/nextpress/core/structured"
	"github.com/leofalp/nextpress/internal/config"
	"github.com/leofalp/nextpress/internal/metrics"
	"github.com/leofalp/nextpress/providers/observability/slogobs"
)

// invokerFactory builds the model collaborator for one command run.
type invokerFactory func(cfg config.ProviderConfig, logger *slog.Logger, collector *metrics.Collector) (structured.Invoker, error)

// app is the state shared by every subcommand after PersistentPreRunE.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	newInvoker invokerFactory
	// retryBackoff overrides the initial retry wait; zero keeps the policy
	// default.
	retryBackoff time.Duration

	// persistent flags
	configPath string
	envFiles   []string
	provider   string
	model      string
	baseURL    string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&app{newInvoker: newClient})
}

func newRootCmdWith(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "nextpress",
		Short: "Optimize content for audience engagement with a language model",
		Long: `nextpress asks a language model to rewrite a piece of content so it
engages its target audience better. Every optimization is a single model
call that returns the rewritten content, suggested styles and an explanation.

Configuration is read from defaults, an optional YAML file, NEXTPRESS_*
environment variables and finally the flags below.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	flags.StringSliceVar(&a.envFiles, "env-file", nil, "dotenv files to load (default .env when present)")
	flags.StringVar(&a.provider, "provider", "", "model provider: compat, openai, gemini or anthropic")
	flags.StringVar(&a.model, "model", "", "model identifier (provider default when empty)")
	flags.StringVar(&a.baseURL, "base-url", "", "provider API base URL")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: compact or json")

	root.AddCommand(
		newOptimizeCmd(a),
		newBatchCmd(a),
		newPromptCmd(a),
		newServeCmd(a),
	)
	return root
}

// init loads configuration, applies flag overrides and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFiles...); err != nil {
		return err
	}

	cfg, err := config.NewLoader().WithConfigPath(a.configPath).Load()
	if err != nil {
		return err
	}

	changed := cmd.Flags().Changed
	if changed("provider") {
		cfg.Provider.Name = a.provider
	}
	if changed("model") {
		cfg.Provider.Model = a.model
	}
	if changed("base-url") {
		cfg.Provider.BaseURL = a.baseURL
	}
	if changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := slogobs.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slogobs.New(
		slogobs.WithFormat(slogobs.ParseFormat(cfg.Log.Format)),
		slogobs.WithLevel(level),
		slogobs.WithOutput(cmd.ErrOrStderr()),
	)
	slog.SetDefault(a.logger)

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		a.logger.Debug(fmt.Sprintf(format, args...))
	})); err != nil {
		a.logger.Warn("failed to set GOMAXPROCS", slog.String("error", err.Error()))
	}
	return nil
}

// optimizer builds an Optimizer over a fresh invoker. collector may be nil.
func (a *app) optimizer(collector *metrics.Collector) (*engagement.Optimizer, error) {
	invoker, err := a.newInvoker(a.cfg.Provider, a.logger, collector)
	if err != nil {
		return nil, err
	}
	return engagement.NewOptimizer(invoker, engagement.WithLogger(a.logger))
}

// exitCode maps an error to the process exit status: 2 for input problems,
// 1 for everything else.
func exitCode(err error) int {
	if errors.Is(err, structured.ErrValidation) {
		return 2
	}
	return 1
}
