package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/tsawler/pageflow"
	"github.com/tsawler/pageflow/model"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "pageflow",
		Usage: "Paginate measured content, close layout gaps, and extract styled tables",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Input file path (default: stdin)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: stdout)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn or error",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "pages",
				Usage:  "Assign the blocks of a snapshot to pages and list the gaps",
				Flags:  pageFlags(),
				Action: runPages,
			},
			{
				Name:  "breaks",
				Usage: "Plan page breaks for a snapshot",
				Flags: append(pageFlags(),
					&cli.FloatFlag{
						Name:  "scroll-height",
						Usage: "Height of the whole flow in pixels (default: bottom of the lowest block)",
					},
				),
				Action: runBreaks,
			},
			{
				Name:   "reflow",
				Usage:  "Close gaps and push blocks off page boundaries",
				Flags:  pageFlags(),
				Action: runReflow,
			},
			{
				Name:  "delete",
				Usage: "Remove blocks and reflow the rest",
				Flags: append(pageFlags(),
					&cli.StringSliceFlag{
						Name:     "id",
						Usage:    "Id of a deleted block (repeatable)",
						Required: true,
					},
				),
				Action: runDelete,
			},
			{
				Name:  "resize",
				Usage: "Reflow after a block changed height",
				Flags: append(pageFlags(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Id of the resized block",
						Required: true,
					},
					&cli.FloatFlag{
						Name:     "old-height",
						Usage:    "Height before the resize in pixels",
						Required: true,
					},
					&cli.FloatFlag{
						Name:     "new-height",
						Usage:    "Height after the resize in pixels",
						Required: true,
					},
				),
				Action: runResize,
			},
			tablesCommand(),
			serveCommand(),
		},
	}
}

// pageFlags are the page settings shared by the layout commands. Unset
// flags fall back to the snapshot, then to A4 with 10mm margins.
func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.FloatFlag{
			Name:  "page-height",
			Usage: "Page height in pixels",
		},
		&cli.StringFlag{
			Name:  "paper",
			Usage: "Paper size: a3, a4, a5, letter or legal",
		},
		&cli.FloatFlag{
			Name:  "paper-margin",
			Usage: "Top and bottom paper margin in millimetres",
			Value: model.DefaultMarginMM,
		},
		&cli.FloatFlag{
			Name:  "margin",
			Usage: "Y coordinate where the first page starts",
		},
		&cli.BoolFlag{
			Name:  "ignore-spacing",
			Usage: "Also close the space above blocks marked to keep it",
		},
	}
}

// newLogger builds the JSON logger the commands log to
func newLogger(cmd *cli.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cmd.String("log-level"))
	}
	return slog.New(slog.NewJSONHandler(cmd.Root().ErrWriter, &slog.HandlerOptions{Level: level})), nil
}

// openInput returns the input file, or the command's reader without one
func openInput(cmd *cli.Command) (io.ReadCloser, error) {
	path := cmd.String("input")
	if path == "" {
		return io.NopCloser(cmd.Root().Reader), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open input")
	}
	return f, nil
}

// withOutput runs write against the output file, or the command's writer
// without one
func withOutput(cmd *cli.Command, write func(io.Writer) error) error {
	path := cmd.String("output")
	if path == "" {
		return write(cmd.Root().Writer)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create output file")
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "failed to write output file")
	}
	fmt.Fprintf(cmd.Root().ErrWriter, "Output written to %s\n", path)
	return nil
}

func writeJSON(cmd *cli.Command, v any) error {
	return withOutput(cmd, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "failed to encode output")
	})
}

// loadFlow reads a snapshot and applies the page flags on top of it
func loadFlow(cmd *cli.Command) (*pageflow.Flow, error) {
	in, err := openInput(cmd)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	var snapshot model.Snapshot
	if err := json.NewDecoder(in).Decode(&snapshot); err != nil {
		return nil, errors.Wrap(err, "failed to decode snapshot")
	}
	for i, b := range snapshot.Blocks {
		if !b.IsValid() {
			return nil, errors.Errorf("block %d is invalid", i)
		}
	}

	log, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	f := pageflow.FromBlocks(snapshot.Blocks).Logger(log).Margin(snapshot.Margin)

	switch {
	case cmd.IsSet("page-height"):
		f = f.PageHeight(cmd.Float("page-height"))
	case cmd.IsSet("paper"):
		paper, ok := model.LookupPaperSize(cmd.String("paper"))
		if !ok {
			return nil, errors.Errorf("unknown paper size %q", cmd.String("paper"))
		}
		f = f.Paper(paper, cmd.Float("paper-margin"))
	case snapshot.PageHeight > 0:
		f = f.PageHeight(snapshot.PageHeight)
	default:
		f = f.Paper(model.PaperA4, cmd.Float("paper-margin"))
	}

	if cmd.IsSet("margin") {
		f = f.Margin(cmd.Float("margin"))
	}
	if cmd.Bool("ignore-spacing") {
		f = f.IgnoreIntentionalSpacing()
	}
	return f, nil
}

func runPages(_ context.Context, cmd *cli.Command) error {
	f, err := loadFlow(cmd)
	if err != nil {
		return err
	}
	pages, err := f.Pages()
	if err != nil {
		return err
	}
	gaps, err := f.Gaps()
	if err != nil {
		return err
	}
	return writeJSON(cmd, map[string]any{"pages": pages, "gaps": gaps})
}

func runBreaks(_ context.Context, cmd *cli.Command) error {
	f, err := loadFlow(cmd)
	if err != nil {
		return err
	}
	breaks, err := f.Breaks(cmd.Float("scroll-height"))
	if err != nil {
		return err
	}
	return writeJSON(cmd, map[string]any{"breaks": breaks, "pageCount": breaks.Pages()})
}

func runReflow(_ context.Context, cmd *cli.Command) error {
	f, err := loadFlow(cmd)
	if err != nil {
		return err
	}
	result, err := f.Reflow()
	if err != nil {
		return err
	}
	return writeJSON(cmd, result)
}

func runDelete(_ context.Context, cmd *cli.Command) error {
	f, err := loadFlow(cmd)
	if err != nil {
		return err
	}
	result, err := f.Delete(cmd.StringSlice("id")...)
	if err != nil {
		return err
	}
	return writeJSON(cmd, result)
}

func runResize(_ context.Context, cmd *cli.Command) error {
	f, err := loadFlow(cmd)
	if err != nil {
		return err
	}
	result, err := f.Resize(cmd.String("id"), cmd.Float("old-height"), cmd.Float("new-height"))
	if err != nil {
		return err
	}
	return writeJSON(cmd, result)
}
