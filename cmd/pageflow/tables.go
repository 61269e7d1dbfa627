package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/tsawler/pageflow"
	"github.com/tsawler/pageflow/model"
	"github.com/tsawler/pageflow/xlsx"
)

func tablesCommand() *cli.Command {
	return &cli.Command{
		Name:  "tables",
		Usage: "Extract the tables of an HTML or Markdown document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json, records, csv, tsv, markdown or xlsx",
				Value:   "json",
			},
			&cli.BoolFlag{
				Name:  "markdown",
				Usage: "Treat the input as Markdown",
			},
			&cli.BoolFlag{
				Name:  "document",
				Usage: "Treat the input as a complete HTML document; its title names the xlsx sheets",
			},
			&cli.BoolFlag{
				Name:  "export-styles",
				Usage: "Apply the export view stylesheet before resolving colors",
			},
			&cli.StringSliceFlag{
				Name:  "stylesheet",
				Usage: "CSS file applied before the document's own styles (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "cell-colors",
				Usage: "Fill every xlsx cell with its resolved background",
			},
		},
		Action: runTables,
	}
}

func runTables(_ context.Context, cmd *cli.Command) error {
	in, err := openInput(cmd)
	if err != nil {
		return err
	}
	markup, err := io.ReadAll(in)
	in.Close()
	if err != nil {
		return errors.Wrap(err, "failed to read input")
	}

	if cmd.Bool("markdown") && cmd.Bool("document") {
		return errors.New("--markdown and --document are mutually exclusive")
	}
	src := pageflow.FromHTML(string(markup))
	switch {
	case cmd.Bool("markdown"):
		src = pageflow.FromMarkdown(string(markup))
	case cmd.Bool("document"):
		src = pageflow.FromDocument(string(markup))
	}
	if cmd.Bool("export-styles") {
		src = src.ExportStyles()
	}
	for _, path := range cmd.StringSlice("stylesheet") {
		css, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "failed to read stylesheet %s", path)
		}
		src = src.Stylesheet(string(css))
	}

	format := strings.ToLower(cmd.String("format"))
	if format == "xlsx" {
		if cmd.String("output") == "" {
			return errors.New("xlsx output needs --output")
		}
		opts := xlsx.DefaultOptions()
		opts.CellColors = cmd.Bool("cell-colors")
		return withOutput(cmd, func(w io.Writer) error {
			return src.WriteXLSX(w, opts)
		})
	}

	tables, err := src.Tables()
	if err != nil {
		return errors.Wrap(err, "failed to extract tables")
	}
	fmt.Fprintf(cmd.Root().ErrWriter, "Found %d tables\n", len(tables))

	switch format {
	case "json":
		return writeJSON(cmd, tables)
	case "records":
		exports := make([]model.TableExport, len(tables))
		for i := range tables {
			exports[i] = tables[i].Export()
		}
		return writeJSON(cmd, exports)
	case "csv", "tsv", "markdown":
		return withOutput(cmd, func(w io.Writer) error {
			return writeText(w, tables, format)
		})
	default:
		return errors.Errorf("unknown format %q", format)
	}
}

// writeText writes every table in a text format, separated by blank lines
func writeText(w io.Writer, tables []model.Table, format string) error {
	for i := range tables {
		t := &tables[i]
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}

		var text string
		switch format {
		case "csv":
			text = t.ToCSV()
		case "tsv":
			text = t.ToTSV() + "\n"
		default:
			if t.Caption != "" {
				text = "**" + t.Caption + "**\n\n"
			}
			text += t.ToMarkdown()
		}
		if _, err := io.WriteString(w, text); err != nil {
			return errors.Wrap(err, "failed to write output")
		}
	}
	return nil
}
