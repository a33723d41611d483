package server

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matzehuels/treemap/pkg/buildinfo"
	"github.com/matzehuels/treemap/pkg/dataset"
	apperrors "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/pipeline"
)

// options builds pipeline options from the server defaults and the query.
func (s *Server) options(r *http.Request, formats ...string) (pipeline.Options, error) {
	opts := s.defaults
	opts.Formats = formats
	opts.Logger = loggerFrom(r.Context(), s.logger)

	q := r.URL.Query()
	if v := q.Get("data"); v != "" {
		opts.Dataset = v
	}
	if v := q.Get("tiling"); v != "" {
		opts.Tiling = v
	}
	if v := q.Get("select"); v != "" {
		opts.Select = v
	}
	if v := q.Get("viz"); v != "" {
		opts.VizType = v
	}
	for _, f := range []struct {
		name string
		dst  *float64
		code apperrors.Code
	}{
		{"width", &opts.Width, apperrors.ErrCodeInvalidSize},
		{"height", &opts.Height, apperrors.ErrCodeInvalidSize},
		{"ratio", &opts.Ratio, apperrors.ErrCodeInvalidInput},
	} {
		if err := parseFloat(q, f.name, f.dst, f.code); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func parseFloat(q url.Values, name string, dst *float64, code apperrors.Code) error {
	v := q.Get(name)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return apperrors.New(code, "%s: %q is not a number", name, v)
	}
	*dst = f
	return nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, format string) (*pipeline.Result, bool) {
	opts, err := s.options(r, format)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return res, true
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	res, ok := s.render(w, r, pipeline.FormatSVG)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(res.Artifacts[pipeline.FormatSVG])
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	res, ok := s.render(w, r, pipeline.FormatJSON)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(res.Artifacts[pipeline.FormatJSON])
}

type pageData struct {
	Title    string
	Selected string
	Datasets []dataset.Dataset
	SVG      template.HTML
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	res, ok := s.render(w, r, pipeline.FormatSVG)
	if !ok {
		return
	}
	data := pageData{
		Title:    res.Source.Dataset.Title,
		Selected: res.Source.Dataset.Key,
		Datasets: s.runner.Registry.All(),
		SVG:      template.HTML(res.Artifacts[pipeline.FormatSVG]),
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

type datasetsResponse struct {
	Default  string            `json:"default"`
	Datasets []dataset.Dataset `json:"datasets"`
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, datasetsResponse{
		Default:  s.runner.Registry.Default().Key,
		Datasets: s.runner.Registry.All(),
	})
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

type errorResponse struct {
	Error     string         `json:"error"`
	Code      apperrors.Code `json:"code,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	logger := loggerFrom(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "err", err)
	} else {
		logger.Debug("request rejected", "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     apperrors.UserMessage(err),
		Code:      apperrors.GetCode(err),
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
