// Package config loads pageflow service settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/tsawler/pageflow/layout"
	"github.com/tsawler/pageflow/model"
	"github.com/tsawler/pageflow/reflow"
)

type Config struct {
	Port     string
	LogLevel string

	// Page grid. PageHeight wins over PaperSize when set.
	PageHeight    float64
	Margin        float64
	PaperSize     string
	PaperMarginMM float64

	// Reflow tunables
	MinGap        float64
	MinMove       float64
	Spacing       float64
	BoundaryInset float64

	// Break planning
	NearbyWindow float64
	TallFraction float64
	BreakGap     float64

	// Request limits
	MaxBodyBytes int64
}

func Load() Config {
	rc := reflow.DefaultConfig()
	pc := layout.DefaultPlannerConfig()

	cfg := Config{
		Port:     envOr("PAGEFLOW_PORT", "8090"),
		LogLevel: envOr("PAGEFLOW_LOG_LEVEL", "info"),

		PageHeight:    envFloat("PAGEFLOW_PAGE_HEIGHT", 0),
		Margin:        envFloat("PAGEFLOW_MARGIN", 0),
		PaperSize:     envOr("PAGEFLOW_PAPER_SIZE", model.PaperA4.Name),
		PaperMarginMM: envFloat("PAGEFLOW_PAPER_MARGIN_MM", model.DefaultMarginMM),

		MinGap:        envFloat("PAGEFLOW_MIN_GAP", rc.MinGap),
		MinMove:       envFloat("PAGEFLOW_MIN_MOVE", rc.MinMove),
		Spacing:       envFloat("PAGEFLOW_SPACING", rc.Spacing),
		BoundaryInset: envFloat("PAGEFLOW_BOUNDARY_INSET", rc.BoundaryInset),

		NearbyWindow: envFloat("PAGEFLOW_NEARBY_WINDOW", pc.NearbyWindow),
		TallFraction: envFloat("PAGEFLOW_TALL_FRACTION", pc.TallFraction),
		BreakGap:     envFloat("PAGEFLOW_BREAK_GAP", pc.BreakGap),

		MaxBodyBytes: envInt64("PAGEFLOW_MAX_BODY_BYTES", 10485760), // 10MB
	}

	if cfg.MinGap <= 0 {
		cfg.MinGap = rc.MinGap
	}
	if cfg.MinMove < 0 {
		cfg.MinMove = rc.MinMove
	}
	if cfg.Spacing < 0 {
		cfg.Spacing = rc.Spacing
	}
	if cfg.BoundaryInset < 0 {
		cfg.BoundaryInset = rc.BoundaryInset
	}
	if cfg.PaperMarginMM < 0 {
		cfg.PaperMarginMM = model.DefaultMarginMM
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10485760
	}

	return cfg
}

func (c Config) Validate() error {
	if c.PageHeight < 0 {
		return fmt.Errorf("PAGEFLOW_PAGE_HEIGHT must not be negative")
	}
	if c.PageHeight == 0 {
		paper, ok := model.LookupPaperSize(c.PaperSize)
		if !ok {
			return fmt.Errorf("unknown PAGEFLOW_PAPER_SIZE %q", c.PaperSize)
		}
		if paper.ContentHeightPx(c.PaperMarginMM) <= 0 {
			return fmt.Errorf("PAGEFLOW_PAPER_MARGIN_MM leaves no room on %s paper", paper.Name)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// DefaultPageHeight is the page height used when a request names none
func (c Config) DefaultPageHeight() float64 {
	if c.PageHeight > 0 {
		return c.PageHeight
	}
	paper, ok := model.LookupPaperSize(c.PaperSize)
	if !ok {
		paper = model.PaperA4
	}
	return paper.ContentHeightPx(c.PaperMarginMM)
}

// Reflow returns the reflow tunables
func (c Config) Reflow() reflow.Config {
	rc := reflow.DefaultConfig()
	rc.MinGap = c.MinGap
	rc.MinMove = c.MinMove
	rc.Spacing = c.Spacing
	rc.BoundaryInset = c.BoundaryInset
	return rc
}

// Planner returns the break planner configuration
func (c Config) Planner() layout.PlannerConfig {
	pc := layout.DefaultPlannerConfig()
	if c.NearbyWindow > 0 {
		pc.NearbyWindow = c.NearbyWindow
	}
	if c.TallFraction > 0 {
		pc.TallFraction = c.TallFraction
	}
	if c.BreakGap >= 0 {
		pc.BreakGap = c.BreakGap
	}
	return pc
}

// Level parses LogLevel
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return level, fmt.Errorf("invalid PAGEFLOW_LOG_LEVEL %q", c.LogLevel)
	}
	return level, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
