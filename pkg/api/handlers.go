package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/rnaviz/pkg/buildinfo"
	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
	"github.com/matzehuels/rnaviz/pkg/pipeline"
	"github.com/matzehuels/rnaviz/pkg/render/sink"
	"github.com/matzehuels/rnaviz/pkg/structure"
)

// Response headers set by the pipeline routes.
const (
	WarningHeader = "X-Rnaviz-Warning"
	CacheHeader   = "X-Rnaviz-Cache"
)

// Request is the body of the layout and render routes.
type Request struct {
	Sequence string         `json:"sequence"`
	Pairs    Pairs          `json:"pairs"`
	Format   string         `json:"format,omitempty"`
	Options  RequestOptions `json:"options"`
}

// RequestOptions override the server defaults for one request.
type RequestOptions struct {
	Mode          string  `json:"mode,omitempty"`
	MaxIterations int     `json:"max_iterations,omitempty"`
	Tolerance     float64 `json:"tolerance,omitempty"`
	Seed          uint64  `json:"seed,omitempty"`
	Engine        string  `json:"engine,omitempty"`
	Width         float64 `json:"width,omitempty"`
	Height        float64 `json:"height,omitempty"`
	Margin        float64 `json:"margin,omitempty"`
	NodeRadius    float64 `json:"node_radius,omitempty"`
	Title         string  `json:"title,omitempty"`
	Legend        bool    `json:"legend,omitempty"`
	Background    string  `json:"background,omitempty"`
	Scale         float64 `json:"scale,omitempty"`
}

// Pairs is a flat pairing list given either as a JSON array of integers or
// as a comma-separated string.
type Pairs []int

// UnmarshalJSON accepts [0,3,1,2], "0,3,1,2" and null.
func (p *Pairs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := structure.ParsePairs(s)
		if err != nil {
			return err
		}
		*p = v
		return nil
	}
	var v []int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = v
	return nil
}

// LayoutResponse is the body returned by the layout route.
type LayoutResponse struct {
	Sequence   string           `json:"sequence"`
	DotBracket string           `json:"dot_bracket"`
	Layout     *sink.LayoutInfo `json:"layout"`
	Warning    string           `json:"warning,omitempty"`
	Cached     bool             `json:"cached"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.decode(w, r)
	if !ok {
		return
	}
	res, err := s.runner.ExecuteLayout(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := LayoutResponse{
		Sequence:   res.Structure.Sequence(),
		DotBracket: res.Structure.DotBracket(),
		Layout:     sink.NewLayoutInfo(res.Structure, res.Layout),
		Cached:     res.CacheInfo.LayoutHit,
	}
	if res.Warning != nil {
		resp.Warning = rnaerrors.UserMessage(res.Warning)
		w.Header().Set(WarningHeader, string(rnaerrors.GetCode(res.Warning)))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.decode(w, r)
	if !ok {
		return
	}
	format := opts.Formats[0]

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if res.Warning != nil {
		w.Header().Set(WarningHeader, string(rnaerrors.GetCode(res.Warning)))
	}
	if res.CacheInfo.RenderHit {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
	data := res.Artifacts[format]
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// decode reads the request body into pipeline options layered over the
// server defaults. On failure it writes the error response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (pipeline.Options, bool) {
	var req Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE",
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		case rnaerrors.GetCode(err) != "":
			writeError(w, r, http.StatusUnprocessableEntity, string(rnaerrors.GetCode(err)), rnaerrors.UserMessage(err))
		default:
			writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body: "+err.Error())
		}
		return pipeline.Options{}, false
	}
	if _, err := dec.Token(); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body: trailing data")
		return pipeline.Options{}, false
	}

	if err := rnaerrors.ValidateSequenceInput(req.Sequence, s.cfg.MaxSequenceLen); err != nil {
		s.fail(w, r, err)
		return pipeline.Options{}, false
	}

	opts := s.cfg.Defaults
	opts.Sequence = req.Sequence
	opts.Pairs = req.Pairs
	opts.Formats = []string{pipeline.FormatSVG}
	if req.Format != "" {
		opts.Formats = pipeline.ParseFormats(req.Format)
		if len(opts.Formats) != 1 {
			s.fail(w, r, rnaerrors.New(rnaerrors.ErrCodeInvalidFormat, "exactly one format is required, got %q", req.Format))
			return pipeline.Options{}, false
		}
	}
	applyRequestOptions(&opts, req.Options)
	return opts, true
}

func applyRequestOptions(opts *pipeline.Options, o RequestOptions) {
	if o.Mode != "" {
		opts.Mode = o.Mode
	}
	if o.MaxIterations != 0 {
		opts.MaxIterations = o.MaxIterations
	}
	if o.Tolerance != 0 {
		opts.Tolerance = o.Tolerance
	}
	if o.Seed != 0 {
		opts.Seed = o.Seed
	}
	if o.Engine != "" {
		opts.Engine = o.Engine
	}
	if o.Width != 0 {
		opts.Width = o.Width
	}
	if o.Height != 0 {
		opts.Height = o.Height
	}
	if o.Margin != 0 {
		opts.Margin = o.Margin
	}
	if o.NodeRadius != 0 {
		opts.NodeRadius = o.NodeRadius
	}
	if o.Title != "" {
		opts.Title = o.Title
	}
	if o.Legend {
		opts.Legend = true
	}
	if o.Background != "" {
		opts.Background = o.Background
	}
	if o.Scale != 0 {
		opts.Scale = o.Scale
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("pipeline failed", "err", err, "request_id", RequestID(r.Context()))
	} else {
		s.logger.Debug("rejected request", "err", err, "request_id", RequestID(r.Context()))
	}
	writePipelineError(w, r, err)
}
