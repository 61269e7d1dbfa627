package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/tsawler/pageflow"
	"github.com/tsawler/pageflow/model"
)

// layoutRequest is the snapshot every layout endpoint receives. Zero page
// settings fall back to the server configuration.
type layoutRequest struct {
	Blocks        []model.Block `json:"blocks"`
	PageHeight    float64       `json:"pageHeight,omitempty"`
	Paper         string        `json:"paper,omitempty"`
	PaperMarginMM *float64      `json:"paperMarginMM,omitempty"`
	Margin        *float64      `json:"margin,omitempty"`

	PreserveIntentionalSpacing *bool `json:"preserveIntentionalSpacing,omitempty"`

	// Endpoint specific
	ScrollHeight float64  `json:"scrollHeight,omitempty"`
	DeletedIDs   []string `json:"deletedIds,omitempty"`
	ResizedID    string   `json:"resizedId,omitempty"`
	OldHeight    float64  `json:"oldHeight,omitempty"`
	NewHeight    float64  `json:"newHeight,omitempty"`
}

// flow builds the fluent flow a request describes
func (s *Server) flow(req layoutRequest) (*pageflow.Flow, error) {
	for i, b := range req.Blocks {
		if !b.IsValid() {
			return nil, fmt.Errorf("block %d is invalid: an id and a non-negative finite extent are required", i)
		}
	}

	f := pageflow.FromBlocks(req.Blocks).
		ReflowConfig(s.cfg.Reflow()).
		PlannerConfig(s.cfg.Planner()).
		Logger(s.log).
		Margin(s.cfg.Margin)

	switch {
	case req.PageHeight != 0:
		f = f.PageHeight(req.PageHeight)
	case req.Paper != "":
		paper, ok := model.LookupPaperSize(req.Paper)
		if !ok {
			return nil, fmt.Errorf("unknown paper size %q", req.Paper)
		}
		marginMM := s.cfg.PaperMarginMM
		if req.PaperMarginMM != nil {
			marginMM = *req.PaperMarginMM
		}
		f = f.Paper(paper, marginMM)
	default:
		f = f.PageHeight(s.cfg.DefaultPageHeight())
	}

	if req.Margin != nil {
		f = f.Margin(*req.Margin)
	}
	if req.PreserveIntentionalSpacing != nil && !*req.PreserveIntentionalSpacing {
		f = f.IgnoreIntentionalSpacing()
	}
	return f, nil
}

// decodeLayout reads a layout request and builds its flow. It writes the
// error response itself and reports whether the handler may continue.
func (s *Server) decodeLayout(w http.ResponseWriter, r *http.Request) (layoutRequest, *pageflow.Flow, bool) {
	var req layoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return req, nil, false
	}
	f, err := s.flow(req)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return req, nil, false
	}
	return req, f, true
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	_, f, ok := s.decodeLayout(w, r)
	if !ok {
		return
	}

	pages, err := f.Pages()
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	gaps, err := f.Gaps()
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]any{
		"pages": pages,
		"gaps":  gaps,
	})
}

func (s *Server) handleBreaks(w http.ResponseWriter, r *http.Request) {
	req, f, ok := s.decodeLayout(w, r)
	if !ok {
		return
	}

	breaks, err := f.Breaks(req.ScrollHeight)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]any{
		"breaks":    breaks,
		"pageCount": breaks.Pages(),
	})
}

func (s *Server) handleReflow(w http.ResponseWriter, r *http.Request) {
	_, f, ok := s.decodeLayout(w, r)
	if !ok {
		return
	}

	result, err := f.Reflow()
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleDeletion(w http.ResponseWriter, r *http.Request) {
	req, f, ok := s.decodeLayout(w, r)
	if !ok {
		return
	}

	result, err := f.Delete(req.DeletedIDs...)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	req, f, ok := s.decodeLayout(w, r)
	if !ok {
		return
	}
	if req.ResizedID == "" {
		jsonError(w, "resizedId is required", http.StatusBadRequest)
		return
	}
	if req.OldHeight < 0 || req.NewHeight < 0 {
		jsonError(w, "heights must not be negative", http.StatusBadRequest)
		return
	}

	result, err := f.Resize(req.ResizedID, req.OldHeight, req.NewHeight)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, result)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	return nil
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		jsonError(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, err.Error(), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
