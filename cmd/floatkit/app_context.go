package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/floatkit/internal/config"
	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/events"
	logginginfra "github.com/alexisbeaulieu97/floatkit/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/floatkit/internal/logger"
	"github.com/alexisbeaulieu97/floatkit/internal/ports"
	floatkiterrors "github.com/alexisbeaulieu97/floatkit/pkg/errors"
)

// AppContext bundles long-lived services created at startup. Until Configure
// runs, log entries are buffered and replayed into the configured logger.
type AppContext struct {
	Config *config.Config
	Logger ports.Logger
	Events *events.LoggingPublisher

	stderr  io.Writer
	buffer  *logginginfra.EventBuffer
	closers []io.Closer
}

// NewAppContext returns an unconfigured context writing logs to stderr.
func NewAppContext(stderr io.Writer) *AppContext {
	buffer := logginginfra.NewEventBuffer(0)
	return &AppContext{
		Config: config.Default(),
		Logger: logginginfra.NewBufferedLogger(buffer),
		stderr: stderr,
		buffer: buffer,
	}
}

// Configure loads the config file and builds the real logger. The console
// logger uses charmbracelet/log; when log.file is set entries go to a rotating
// JSON file instead, so they never draw over the terminal UI.
func (a *AppContext) Configure(ctx context.Context, flags *rootFlags) error {
	a.Logger.Debug(ctx, "configuring", "config_path", flags.configPath)

	cfg := config.Default()
	if flags.configPath != "" {
		parsed, err := config.ParseConfig(flags.configPath)
		if err != nil {
			return err
		}
		cfg = parsed
	}
	if flags.verbose {
		cfg.Log.Level = "debug"
	}
	if flags.logFormat != "" {
		if _, err := logginginfra.ParseFormat(flags.logFormat); err != nil {
			return floatkiterrors.NewValidationError("log-format", err.Error(), err)
		}
		cfg.Log.Format = flags.logFormat
	}

	var log ports.Logger
	if cfg.Log.File != "" {
		file := logger.OpenFile(logger.FileOptions{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		})
		a.closers = append(a.closers, file)
		fileLogger, err := logger.New(logger.Options{Level: cfg.Log.Level, Writer: file, Layer: "cli"})
		if err != nil {
			return err
		}
		log = fileLogger
	} else {
		console, err := logginginfra.New(logginginfra.Options{
			Writer:    a.stderr,
			Level:     cfg.Log.Level,
			Format:    cfg.Log.Format,
			Prefix:    "floatkit",
			Layer:     "cli",
			Component: "floatkit",
		})
		if err != nil {
			return err
		}
		log = console
	}

	a.buffer.Flush(log)
	a.Config = cfg
	a.Logger = log
	a.Events = events.NewLoggingPublisher(log)
	return nil
}

// CommandContext attaches a fresh correlation ID to the command's context and
// returns a logger scoped to the command.
func (a *AppContext) CommandContext(cmd *cobra.Command, name string) (context.Context, ports.Logger) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logginginfra.WithCorrelationID(ctx, logginginfra.GenerateCorrelationID())
	return ctx, a.Logger.With("command", name)
}

// Close releases log files.
func (a *AppContext) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
	a.closers = nil
}
