package api

import (
	"bytes"
	"net/http"

	"github.com/tsawler/pageflow"
	"github.com/tsawler/pageflow/model"
	"github.com/tsawler/pageflow/xlsx"
)

type tablesRequest struct {
	HTML     string `json:"html,omitempty"`
	Markdown string `json:"markdown,omitempty"`
	// Document is a complete HTML page; its title is returned and names
	// the xlsx sheets
	Document string `json:"document,omitempty"`

	Stylesheet     string `json:"stylesheet,omitempty"`
	ExportStyles   bool   `json:"exportStyles,omitempty"`
	HeaderFallback string `json:"headerFallback,omitempty"`

	// Format is "json" (default), "records" or "xlsx"
	Format     string `json:"format,omitempty"`
	CellColors bool   `json:"cellColors,omitempty"`
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	var req tablesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if countSet(req.HTML, req.Markdown, req.Document) > 1 {
		jsonError(w, "only one of html, markdown and document may be set", http.StatusBadRequest)
		return
	}

	src := pageflow.FromHTML(req.HTML)
	switch {
	case req.Markdown != "":
		src = pageflow.FromMarkdown(req.Markdown)
	case req.Document != "":
		src = pageflow.FromDocument(req.Document)
	}
	if req.ExportStyles {
		src = src.ExportStyles()
	}
	if req.Stylesheet != "" {
		src = src.Stylesheet(req.Stylesheet)
	}
	if req.HeaderFallback != "" {
		src = src.HeaderFallback(req.HeaderFallback)
	}

	tables, err := src.Tables()
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	title, err := src.Title()
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Format {
	case "", "json":
		writeJSON(w, tablesResponse(title, tables))
	case "records":
		exports := make([]model.TableExport, len(tables))
		for i := range tables {
			exports[i] = tables[i].Export()
		}
		writeJSON(w, tablesResponse(title, exports))
	case "xlsx":
		s.writeWorkbook(w, tables, title, req.CellColors)
	default:
		jsonError(w, "unknown format: "+req.Format, http.StatusBadRequest)
	}
}

// tablesResponse adds the document title when there is one
func tablesResponse(title string, tables any) map[string]any {
	resp := map[string]any{"tables": tables}
	if title != "" {
		resp["title"] = title
	}
	return resp
}

func countSet(values ...string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}

func (s *Server) writeWorkbook(w http.ResponseWriter, tables []model.Table, title string, cellColors bool) {
	if len(tables) == 0 {
		jsonError(w, "no tables found", http.StatusUnprocessableEntity)
		return
	}

	opts := xlsx.DefaultOptions()
	opts.CellColors = cellColors
	opts.SheetName = title

	// Buffered so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := xlsx.WriteWithOptions(&buf, tables, opts); err != nil {
		s.log.Error("workbook write failed", "error", err)
		jsonError(w, "failed to write workbook", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="tables.xlsx"`)
	w.Write(buf.Bytes())
}
