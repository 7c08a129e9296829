package config

import (
	"time"

	appoverlay "github.com/alexisbeaulieu97/floatkit/internal/application/overlay"
	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/host"
)

// Config represents the full floatkit configuration document.
type Config struct {
	Overlay OverlayConfig `yaml:"overlay" toml:"overlay"`
	Retry   RetryConfig   `yaml:"retry" toml:"retry"`
	Host    HostConfig    `yaml:"host" toml:"host"`
	Log     LogConfig     `yaml:"log" toml:"log"`
}

// OverlayConfig holds placement and animation parameters.
type OverlayConfig struct {
	Side             string        `yaml:"side" toml:"side" validate:"side"`
	ScreenIndent     float64       `yaml:"screen_indent" toml:"screen_indent" validate:"gte=0"`
	MaxOverlayHeight float64       `yaml:"max_overlay_height" toml:"max_overlay_height" validate:"gte=0"`
	EnterDuration    time.Duration `yaml:"enter_duration" toml:"enter_duration" validate:"gte=0"`
	ExitDuration     time.Duration `yaml:"exit_duration" toml:"exit_duration" validate:"gte=0"`
}

// RetryConfig bounds the measurement loop.
type RetryConfig struct {
	MaxAttempts      int           `yaml:"max_attempts" toml:"max_attempts" validate:"gte=0"`
	Timeout          time.Duration `yaml:"timeout" toml:"timeout" validate:"gte=0"`
	FailureTolerance int           `yaml:"failure_tolerance" toml:"failure_tolerance" validate:"gte=0"`
}

// HostConfig tunes the terminal host's frame clock and spring.
type HostConfig struct {
	FPS             int     `yaml:"fps" toml:"fps" validate:"min=1,max=240"`
	SpringFrequency float64 `yaml:"spring_frequency" toml:"spring_frequency" validate:"gt=0"`
	SpringDamping   float64 `yaml:"spring_damping" toml:"spring_damping" validate:"gt=0"`
}

// LogConfig selects the log sink.
type LogConfig struct {
	Level      string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" toml:"format" validate:"log_format"`
	File       string `yaml:"file" toml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups" validate:"gte=0"`
}

// Default returns the configuration used when no file is given. Sizes are in
// terminal cells.
func Default() *Config {
	retry := appoverlay.DefaultRetryPolicy()
	return &Config{
		Overlay: OverlayConfig{
			Side:             geometry.SideBottom.String(),
			ScreenIndent:     1,
			MaxOverlayHeight: 10,
			EnterDuration:    160 * time.Millisecond,
			ExitDuration:     120 * time.Millisecond,
		},
		Retry: RetryConfig{
			MaxAttempts:      retry.MaxAttempts,
			Timeout:          retry.Timeout,
			FailureTolerance: retry.FailureTolerance,
		},
		Host: HostConfig{
			FPS:             60,
			SpringFrequency: 6.0,
			SpringDamping:   1.0,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// ControllerOptions maps the overlay and retry sections onto controller
// options. Callbacks and observability hooks are left for the caller.
func (c *Config) ControllerOptions() (appoverlay.Options, error) {
	opts := appoverlay.DefaultOptions()
	side, err := geometry.ParseSide(c.Overlay.Side)
	if err != nil {
		return opts, err
	}
	opts.Side = side
	opts.ScreenIndent = c.Overlay.ScreenIndent
	opts.MaxOverlayHeight = c.Overlay.MaxOverlayHeight
	opts.EnterDuration = c.Overlay.EnterDuration
	opts.ExitDuration = c.Overlay.ExitDuration
	opts.Retry = appoverlay.RetryPolicy{
		MaxAttempts:      c.Retry.MaxAttempts,
		Timeout:          c.Retry.Timeout,
		FailureTolerance: c.Retry.FailureTolerance,
	}
	return opts, nil
}

// FrameInterval is the duration of one host frame.
func (h HostConfig) FrameInterval() time.Duration {
	if h.FPS <= 0 {
		return host.DefaultFrameInterval
	}
	return time.Second / time.Duration(h.FPS)
}

// Spring returns the tween easing for the terminal host.
func (h HostConfig) Spring() host.Spring {
	return host.Spring{FPS: h.FPS, Frequency: h.SpringFrequency, Damping: h.SpringDamping}
}
