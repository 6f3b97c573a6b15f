package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	prefs "github.com/goliatone/go-prefs"
	"github.com/goliatone/go-prefs/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	prefs  *prefs.Prefs[gameSettings]
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Inspect and edit a persisted settings document",
		Long: `prefs loads a JSON settings document, falling back to defaults when it is
missing or unusable, and saves it again when the command finishes.`,
		Version:            fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:       true,
		PersistentPreRunE:  a.open,
		PersistentPostRunE: a.close,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file loaded before reading PREFS_* variables")
	rootCmd.PersistentFlags().StringP("file", "f", "settings.json", "Settings document path")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().String("engine", "expr", "Rule engine (expr, cel, js)")

	rootCmd.AddCommand(
		a.showCommand(),
		a.getCommand(),
		a.setCommand(),
		a.resetCommand(),
		a.schemaCommand(),
		a.evalCommand(),
	)
	return rootCmd
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg
	a.logger = setupLogging(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	evaluator, err := newEvaluator(cfg.Engine)
	if err != nil {
		return err
	}

	a.prefs = prefs.New[gameSettings](nil, gameDefaults,
		prefs.WithPath(cfg.File),
		prefs.WithLogger(a.logger),
		prefs.WithEvaluator(evaluator),
		prefs.WithRule(cfg.Rules...),
	)
	outcome := a.prefs.Load(contextOf(cmd))
	a.logger.WithFields(logrus.Fields{
		"file":    cfg.File,
		"outcome": outcome.String(),
	}).Debug("settings loaded")
	return nil
}

func (a *app) close(cmd *cobra.Command, _ []string) error {
	if a.prefs == nil {
		return nil
	}
	if !a.prefs.Close(contextOf(cmd)) {
		return fmt.Errorf("settings could not be saved to %s", a.prefs.Location())
	}
	return nil
}

func newEvaluator(engine string) (prefs.Evaluator, error) {
	functions := prefs.DefaultFunctions()
	cache := prefs.NewMapProgramCache()
	switch engine {
	case "cel":
		return prefs.NewCELEvaluator(prefs.CELWithFunctionRegistry(functions), prefs.CELWithProgramCache(cache)), nil
	case "js":
		evaluator := prefs.NewJSEvaluator(prefs.JSWithFunctionRegistry(functions), prefs.JSWithProgramCache(cache))
		if evaluator == nil {
			return nil, fmt.Errorf("js rule engine requires a build with the js_eval tag")
		}
		return evaluator, nil
	default:
		return prefs.NewExprEvaluator(prefs.ExprWithFunctionRegistry(functions), prefs.ExprWithProgramCache(cache)), nil
	}
}

func setupLogging(out io.Writer, level, format string) *logrus.Logger {
	logger := logrus.New()
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	}

	switch level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
