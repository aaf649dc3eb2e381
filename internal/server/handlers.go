package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/seatplan/pkg/buildinfo"
	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/errors"
	"github.com/matzehuels/seatplan/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatText: "text/plain; charset=utf-8",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
}

// placementResponse is the body of POST /v1/placements.
type placementResponse struct {
	RunID     string          `json:"runId"`
	InputHash string          `json:"inputHash"`
	Cached    bool            `json:"cached"`
	Stats     statsResponse   `json:"stats"`
	Result    json.RawMessage `json:"result"`
}

type statsResponse struct {
	Students  int     `json:"students"`
	Seats     int     `json:"seats"`
	Rules     int     `json:"rules"`
	Placed    int     `json:"placed"`
	Unplaced  int     `json:"unplaced"`
	Satisfied int     `json:"satisfied"`
	PlaceMS   float64 `json:"placeMs"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	c, opts, err := s.parseRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts.Formats = []string{pipeline.FormatJSON}

	res, err := s.runner.Execute(r.Context(), c, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	st := res.Stats
	writeJSON(w, http.StatusOK, placementResponse{
		RunID:     res.RunID,
		InputHash: res.InputHash,
		Cached:    res.CacheInfo.PlacementHit,
		Stats: statsResponse{
			Students:  st.Students,
			Seats:     st.Seats,
			Rules:     st.Rules,
			Placed:    st.Placed,
			Unplaced:  st.Unplaced,
			Satisfied: st.Satisfied,
			PlaceMS:   float64(st.PlaceTime) / float64(time.Millisecond),
		},
		Result: res.Artifacts[pipeline.FormatJSON],
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormats([]string{format}); err != nil {
		s.writeError(w, err)
		return
	}
	c, opts, err := s.parseRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts.Formats = []string{format}

	res, err := s.runner.Execute(r.Context(), c, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Run-Id", res.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// parseRequest decodes the classroom body and the query options.
func (s *Server) parseRequest(w http.ResponseWriter, r *http.Request) (*classroom.Classroom, pipeline.Options, error) {
	opts, err := s.queryOptions(r)
	if err != nil {
		return nil, opts, err
	}

	format := classroom.FormatJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, opts, errors.New(errors.ErrCodeUnsupported, "bad content type %q", ct)
		}
		switch mt {
		case "application/json":
		case "application/toml":
			format = classroom.FormatTOML
		default:
			return nil, opts, errors.New(errors.ErrCodeUnsupported, "unsupported content type %q", mt)
		}
	}

	c, err := classroom.Decode(http.MaxBytesReader(w, r.Body, MaxBodyBytes), format)
	if err != nil {
		return nil, opts, err
	}
	return c, opts, nil
}

func (s *Server) queryOptions(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{
		Thresholds:    s.defaults.Thresholds,
		ClearExisting: s.defaults.ClearExisting,
		Labels:        s.defaults.Labels,
		Logger:        s.logger,
	}
	opts.SetPlacementDefaults()

	q := r.URL.Query()
	for name, dst := range map[string]*float64{
		"accept":    &opts.Thresholds.Accept,
		"candidate": &opts.Thresholds.Candidate,
		"aggregate": &opts.Thresholds.Aggregate,
	} {
		if v := q.Get(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "query parameter %s: %q is not a number", name, v)
			}
			*dst = f
		}
	}
	for name, dst := range map[string]*bool{
		"clear_existing": &opts.ClearExisting,
		"refresh":        &opts.Refresh,
	} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "query parameter %s: %q is not a boolean", name, v)
			}
			*dst = b
		}
	}
	if v := q.Get("labels"); v != "" {
		opts.Labels = v
	}
	return opts, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}

	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
		code = string(errors.ErrCodeInvalidInput)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}

	var body errorResponse
	body.Error.Code = code
	body.Error.Message = errors.UserMessage(err)
	if tooLarge != nil {
		body.Error.Message = fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
