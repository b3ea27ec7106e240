package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sarah-larkin/ai-learning-series/internal/app"
	"github.com/sarah-larkin/ai-learning-series/internal/prompt"
	"github.com/sarah-larkin/ai-learning-series/internal/provider"
	"github.com/sarah-larkin/ai-learning-series/internal/usecase"
	"github.com/sarah-larkin/ai-learning-series/pkg/local"
	"github.com/spf13/cobra"
)

const checkPrompt = "Say 'Hello from Gemini!' in exactly those words."

// signalContext is cancelled on interrupt, for the long-running servers.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// withApp runs fn with a connected App and closes it afterwards.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	a, err := opts.app(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			opts.logger.Warn().Err(err).Msg("failed to close endpoint")
		}
	}()
	return fn(ctx, a)
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	var system string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				s, err := a.NewSession(system)
				if err != nil {
					return err
				}
				lang := opts.language()
				r := &repl{
					in:      cmd.InOrStdin(),
					out:     cmd.OutOrStdout(),
					speaker: "Bot",
					welcome: local.Welcome.Text(lang),
					goodbye: local.Goodbye.Text(lang),
					cleared: local.HistoryCleared.Text(lang),
					send:    s.Send,
					clear:   s.ClearHistory,
				}
				return r.run(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&system, "system", prompt.Default, "system instruction")
	return cmd
}

func newBuddyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "buddy",
		Short: "Code Buddy, a helper for beginner programmers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				s, err := a.NewSession(prompt.CodeBuddy)
				if err != nil {
					return err
				}
				buddy := usecase.NewBuddyUsecase(s)
				lang := opts.language()
				r := &repl{
					in:      cmd.InOrStdin(),
					out:     cmd.OutOrStdout(),
					speaker: "Buddy",
					welcome: local.BuddyWelcome.Text(lang),
					goodbye: local.BuddyGoodbye.Text(lang),
					cleared: local.BuddyCleared.Text(lang),
					send:    buddy.Route,
					clear:   buddy.Clear,
					commands: map[string]func() string{
						"tips": buddy.Tips,
					},
				}
				return r.run(ctx)
			})
		},
	}
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	var system string
	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Send a single prompt and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				s, err := a.NewSession(system)
				if err != nil {
					return err
				}
				reply, err := s.Send(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), reply)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&system, "system", "", "system instruction")
	return cmd
}

func newDemoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "demo [" + strings.Join(usecase.DemoSteps, "|") + "]",
		Short:     "Run the workshop steps; all of them when no step is given",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: usecase.DemoSteps,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				demo := usecase.NewDemoUsecase(a.Config.Model.ID, usecase.DemoUsecaseDeps{
					Endpoint: a.Endpoint,
					Out:      cmd.OutOrStdout(),
					Logger:   a.Logger,
				})
				steps := usecase.DemoSteps
				if len(args) == 1 {
					steps = args
				}
				for _, step := range steps {
					if err := demo.Run(ctx, step); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var listModels bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that the configured endpoint answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				s, err := a.NewSession("")
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Calling %s (%s)...\n", a.Config.Model.ID, a.ProviderName())
				reply, err := s.Send(ctx, checkPrompt)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✅ Success! Response: %s\n", reply)

				if !listModels {
					return nil
				}
				models, err := provider.ListModels(ctx, a.Endpoint)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "\nAvailable models:")
				for _, m := range models {
					fmt.Fprintf(out, "  - %s\n", m)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&listModels, "list-models", false, "also list the models the endpoint offers")
	return cmd
}

func newEventsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Print the events scraped from the community site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			a := &app.App{Config: opts.cfg, Logger: opts.logger}
			events := a.Events(ctx)
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No events found.")
				return nil
			}
			fmt.Fprintln(out, prompt.EventsText(events))
			return nil
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the WCC info bot web page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				ctx, cancel := signalContext(ctx)
				defer cancel()
				return a.RunWeb(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&opts.webAddr, "addr", "", "listen address (overrides WEB_ADDR)")
	cmd.PreRun = func(*cobra.Command, []string) {
		if opts.webAddr != "" {
			opts.cfg.Web.Addr = opts.webAddr
		}
	}
	return cmd
}

func newTelegramCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Run the WCC info bot on Telegram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				ctx, cancel := signalContext(ctx)
				defer cancel()
				return a.RunTelegram(ctx)
			})
		},
	}
}
