// Package cli wires the kinky commands: the interactive viewer, one-shot
// batch application and the hidden worker entry point used by process mode.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kinky/internal/config"
	"kinky/internal/logger"
)

const (
	AppName = "kinky"
	AppID   = "org.kinky.enhancer"
	Version = "0.3.0"
)

type rootOptions struct {
	configPath string
	logLevel   string
	jsonLogs   bool
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           AppName,
		Short:         "Interactive difference-of-Gaussians image enhancer",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warning, error)")
	root.PersistentFlags().BoolVar(&opts.jsonLogs, "log-json", false, "write logs as JSON")

	root.AddCommand(
		newViewCommand(opts),
		newApplyCommand(opts),
		newWorkerCommand(),
	)
	return root
}

// load reads configuration and builds the logger, letting flags win over
// the file and environment.
func (o *rootOptions) load() (config.Config, logger.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.jsonLogs {
		cfg.Log.JSON = true
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.JSON), nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
