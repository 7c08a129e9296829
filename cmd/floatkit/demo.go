package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/events"
	logginginfra "github.com/alexisbeaulieu97/floatkit/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/metrics"
	"github.com/alexisbeaulieu97/floatkit/internal/ports"
	"github.com/alexisbeaulieu97/floatkit/internal/tui/playground"
)

type demoOptions struct {
	items []string
	title string
}

func newDemoCmd(app *AppContext) *cobra.Command {
	opts := demoOptions{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Launch the interactive overlay playground",
		Long: `Launch a terminal playground where a button anchors a filterable menu.
Move the button with the arrow keys, open it with enter, type to filter and
click outside to dismiss.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, logger := app.CommandContext(cmd, "command.demo")
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("demo needs an interactive terminal")
			}
			logger.Info(ctx, "launching playground")

			err := runDemo(ctx, app, logger, opts)
			if err != nil {
				logger.Error(ctx, "playground failed", "error", err)
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&opts.items, "items", nil, "Menu items (defaults to a sample list)")
	cmd.Flags().StringVar(&opts.title, "title", "", "Menu header shown before filtering")

	return cmd
}

func runDemo(ctx context.Context, app *AppContext, logger ports.Logger, opts demoOptions) error {
	ctlOpts, err := app.Config.ControllerOptions()
	if err != nil {
		return err
	}
	ctlOpts.ID = "demo"
	ctlOpts.Metrics = metrics.NewCollector()
	// Console output would draw over the alternate screen.
	ctlOpts.Logger = logginginfra.NewNoOpLogger()
	if app.Config.Log.File != "" {
		ctlOpts.Logger = logger
	}
	ctlOpts.Events = events.NewLoggingPublisher(ctlOpts.Logger)

	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width, height = 80, 24
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model, err := playground.New(ctx, playground.Options{
		Controller:    ctlOpts,
		FrameInterval: app.Config.Host.FrameInterval(),
		Easing:        app.Config.Host.Spring(),
		Title:         opts.title,
		Items:         opts.items,
		Width:         width,
		Height:        height,
	})
	if err != nil {
		return err
	}
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run playground: %w", err)
	}

	logger.Info(ctx, "playground closed")
	return nil
}
