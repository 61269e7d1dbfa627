package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pageflow/model"
	"github.com/tsawler/pageflow/reflow"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "a4", cfg.PaperSize)
	assert.Equal(t, float64(model.DefaultMarginMM), cfg.PaperMarginMM)
	assert.Equal(t, int64(10485760), cfg.MaxBodyBytes)
	assert.Equal(t, reflow.DefaultConfig(), cfg.Reflow())
	require.NoError(t, cfg.Validate())

	assert.InDelta(t, model.PaperA4.ContentHeightPx(10), cfg.DefaultPageHeight(), 1e-9)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PAGEFLOW_PORT", "9000")
	t.Setenv("PAGEFLOW_PAGE_HEIGHT", "1000")
	t.Setenv("PAGEFLOW_MARGIN", "37.8")
	t.Setenv("PAGEFLOW_MIN_MOVE", "25")
	t.Setenv("PAGEFLOW_BREAK_GAP", "4")
	t.Setenv("PAGEFLOW_LOG_LEVEL", "debug")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 1000.0, cfg.DefaultPageHeight())
	assert.Equal(t, 37.8, cfg.Margin)
	assert.Equal(t, 25.0, cfg.Reflow().MinMove)
	assert.Equal(t, 4.0, cfg.Planner().BreakGap)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("PAGEFLOW_MIN_GAP", "wide")
	t.Setenv("PAGEFLOW_SPACING", "-5")
	t.Setenv("PAGEFLOW_MAX_BODY_BYTES", "0")

	cfg := Load()
	assert.Equal(t, 30.0, cfg.MinGap)
	assert.Equal(t, 10.0, cfg.Spacing)
	assert.Equal(t, int64(10485760), cfg.MaxBodyBytes)
}

func TestPaperSize(t *testing.T) {
	t.Setenv("PAGEFLOW_PAPER_SIZE", "Letter")
	t.Setenv("PAGEFLOW_PAPER_MARGIN_MM", "0")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.InDelta(t, 1056, cfg.DefaultPageHeight(), 0.01)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative page height", func(c *Config) { c.PageHeight = -1 }},
		{"unknown paper", func(c *Config) { c.PaperSize = "b7" }},
		{"margin eats page", func(c *Config) { c.PaperMarginMM = 200 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	// An explicit page height makes the paper size irrelevant
	cfg := Load()
	cfg.PaperSize = "b7"
	cfg.PageHeight = 800
	assert.NoError(t, cfg.Validate())
}
