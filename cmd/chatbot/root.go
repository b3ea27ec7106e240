package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sarah-larkin/ai-learning-series/config"
	"github.com/sarah-larkin/ai-learning-series/internal/app"
	"github.com/sarah-larkin/ai-learning-series/pkg/local"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
	provider   string
	model      string
	webAddr    string

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "chatbot",
		Short:        "Conversational assistants over hosted text-generation models",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd.ErrOrStderr())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&opts.envFile, "env-file", "", "path to a .env file (default .env when present)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.provider, "provider", "", "endpoint provider: gemini, openai or vertex")
	flags.StringVar(&opts.model, "model", "", "model id")

	cmd.AddCommand(
		newChatCmd(opts),
		newBuddyCmd(opts),
		newAskCmd(opts),
		newDemoCmd(opts),
		newCheckCmd(opts),
		newEventsCmd(opts),
		newServeCmd(opts),
		newTelegramCmd(opts),
	)
	return cmd
}

// load reads the config, applies flag overrides and sets up logging.
func (o *rootOptions) load(stderr io.Writer) error {
	cfg, err := config.LoadConfig(o.configPath, o.envFile)
	if err != nil {
		return err
	}
	if o.provider != "" {
		cfg.Model.Provider = o.provider
	}
	if o.model != "" {
		cfg.Model.ID = o.model
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	logger, err := newLogger(stderr, cfg.Log.Level)
	if err != nil {
		return err
	}
	log.Logger = logger
	o.cfg = cfg
	o.logger = logger
	return nil
}

func (o *rootOptions) app(ctx context.Context) (*app.App, error) {
	return app.New(ctx, o.cfg, o.logger)
}

func (o *rootOptions) language() local.Language {
	return local.ParseLanguage(o.cfg.UI.Language)
}

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, err
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
