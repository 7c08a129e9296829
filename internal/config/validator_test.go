package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	floatkiterrors "github.com/alexisbeaulieu97/floatkit/pkg/errors"
)

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "defaults are valid"},
		{name: "top side", mutate: func(c *Config) { c.Overlay.Side = "top" }},
		{name: "empty side means bottom", mutate: func(c *Config) { c.Overlay.Side = "" }},
		{name: "unbounded retries", mutate: func(c *Config) { c.Retry.MaxAttempts = 0 }},
		{name: "unknown side", mutate: func(c *Config) { c.Overlay.Side = "left" }, wantField: "overlay.side"},
		{name: "negative indent", mutate: func(c *Config) { c.Overlay.ScreenIndent = -1 }, wantField: "overlay.screen_indent"},
		{name: "negative max height", mutate: func(c *Config) { c.Overlay.MaxOverlayHeight = -3 }, wantField: "overlay.max_overlay_height"},
		{name: "negative enter", mutate: func(c *Config) { c.Overlay.EnterDuration = -1 }, wantField: "overlay.enter_duration"},
		{name: "negative attempts", mutate: func(c *Config) { c.Retry.MaxAttempts = -1 }, wantField: "retry.max_attempts"},
		{name: "negative tolerance", mutate: func(c *Config) { c.Retry.FailureTolerance = -1 }, wantField: "retry.failure_tolerance"},
		{name: "zero fps", mutate: func(c *Config) { c.Host.FPS = 0 }, wantField: "host.fps"},
		{name: "zero damping", mutate: func(c *Config) { c.Host.SpringDamping = 0 }, wantField: "host.spring_damping"},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantField: "log.level"},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantField: "log.format"},
		{name: "file without size", mutate: func(c *Config) {
			c.Log.File = "/tmp/floatkit.log"
			c.Log.MaxSizeMB = 0
		}, wantField: "log.max_size_mb"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			if tc.mutate != nil {
				tc.mutate(cfg)
			}
			err := ValidateConfig(cfg)
			if tc.wantField == "" {
				require.NoError(t, err)
				return
			}
			var validationErr *floatkiterrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Equal(t, tc.wantField, validationErr.Field)
		})
	}
}

func TestValidateConfigNil(t *testing.T) {
	t.Parallel()

	var validationErr *floatkiterrors.ValidationError
	require.ErrorAs(t, ValidateConfig(nil), &validationErr)
}
