package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"strconv"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/scanview/internal/httputil"
	"github.com/banshee-data/scanview/internal/monitoring"
	"github.com/banshee-data/scanview/internal/playback"
	"github.com/banshee-data/scanview/internal/render"
	"github.com/banshee-data/scanview/internal/version"
)

const (
	defaultPNGSize = 8 * vg.Inch
	maxPNGSize     = 40 * vg.Inch
	maxViewBody    = 1 << 16
)

// ViewerServer exposes a running engine: the latest frame, the view
// controls and chart renderings of the current window.
type ViewerServer struct {
	engine  *playback.Engine
	metrics *monitoring.Metrics
	units   string
	tz      string
}

// NewViewerServer creates a viewer server. metrics may be nil.
func NewViewerServer(engine *playback.Engine, metrics *monitoring.Metrics, distanceUnits, tz string) *ViewerServer {
	return &ViewerServer{engine: engine, metrics: metrics, units: distanceUnits, tz: tz}
}

// ServeMux returns the viewer routes.
func (s *ViewerServer) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/frame", s.frame)
	mux.HandleFunc("/api/view", s.view)
	mux.HandleFunc("/api/status", s.status)
	mux.HandleFunc("/api/version", s.versionInfo)
	mux.HandleFunc("/plot", s.plotHTML)
	mux.HandleFunc("/plot.png", s.plotPNG)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

type frameResponse struct {
	playback.Frame
	Readout []string `json:"readout"`
}

func (s *ViewerServer) latest(w http.ResponseWriter) (playback.Frame, bool) {
	f, ok := s.engine.Latest()
	if !ok {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no frame rendered yet")
	}
	return f, ok
}

func (s *ViewerServer) frame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	f, ok := s.latest(w)
	if !ok {
		return
	}
	httputil.WriteJSONOK(w, frameResponse{Frame: f, Readout: f.Odometry.Lines(s.units, s.tz)})
}

// view reads or edits the live view parameters. Edits arrive either as a
// JSON body or as form values; they take effect on the engine's next tick.
func (s *ViewerServer) view(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, s.engine.Settings().Get())
	case http.MethodPatch, http.MethodPost:
		edit, err := parseViewEdit(r)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		cfg := s.engine.Settings().Update(edit)
		monitoring.Logf("[viewer] view updated: scale=%g window=%d tick=%s", cfg.Scale, cfg.WindowSize, cfg.TickPeriod)
		httputil.WriteJSONOK(w, cfg)
	default:
		httputil.MethodNotAllowed(w, http.MethodGet, http.MethodPatch, http.MethodPost)
	}
}

type viewEditRequest struct {
	Scale        *float64 `json:"scale"`
	WindowSize   *float64 `json:"window_size"`
	TickPeriodMs *float64 `json:"tick_period_ms"`
}

func parseViewEdit(r *http.Request) (playback.ViewEdit, error) {
	var req viewEditRequest
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxViewBody)).Decode(&req); err != nil {
			return playback.ViewEdit{}, fmt.Errorf("invalid JSON body: %w", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return playback.ViewEdit{}, fmt.Errorf("invalid form: %w", err)
		}
		for key, dst := range map[string]**float64{
			"scale":          &req.Scale,
			"window_size":    &req.WindowSize,
			"tick_period_ms": &req.TickPeriodMs,
		} {
			raw := r.Form.Get(key)
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return playback.ViewEdit{}, fmt.Errorf("%s must be a number, got %q", key, raw)
			}
			*dst = &v
		}
	}

	var edit playback.ViewEdit
	if req.Scale != nil {
		if math.IsNaN(*req.Scale) || math.IsInf(*req.Scale, 0) {
			return edit, fmt.Errorf("scale must be finite")
		}
		edit.Scale = req.Scale
	}
	if req.WindowSize != nil {
		v := *req.WindowSize
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return edit, fmt.Errorf("window_size must be an integer, got %g", v)
		}
		n := int(v)
		edit.WindowSize = &n
	}
	if req.TickPeriodMs != nil {
		v := *req.TickPeriodMs
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return edit, fmt.Errorf("tick_period_ms must be finite")
		}
		d := time.Duration(v * float64(time.Millisecond))
		edit.TickPeriod = &d
	}
	return edit, nil
}

type statusResponse struct {
	Samples   int    `json:"samples"`
	LastFetch string `json:"last_fetch,omitempty"`
	Error     string `json:"error,omitempty"`
	Available bool   `json:"available"`
}

func (s *ViewerServer) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	store := s.engine.Store()
	resp := statusResponse{Samples: store.Len()}
	if t := store.LastFetch(); !t.IsZero() {
		resp.LastFetch = t.UTC().Format(time.RFC3339)
	}
	if err := store.Err(); err != nil {
		resp.Error = err.Error()
	} else {
		resp.Available = resp.Samples > 0
	}
	httputil.WriteJSONOK(w, resp)
}

func (s *ViewerServer) versionInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	httputil.WriteJSONOK(w, map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}

func (s *ViewerServer) plotHTML(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	f, ok := s.latest(w)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.ECharts(&buf, f); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// plotPNG renders the latest frame as a PNG. The optional size query
// parameter is the edge length in inches.
func (s *ViewerServer) plotPNG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	size := defaultPNGSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || vg.Length(v)*vg.Inch > maxPNGSize {
			httputil.BadRequest(w, fmt.Sprintf("size must be a number of inches in (0, %g]", float64(maxPNGSize/vg.Inch)))
			return
		}
		size = vg.Length(v) * vg.Inch
	}
	f, ok := s.latest(w)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.PNG(&buf, f, size); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render png: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = buf.WriteTo(w)
}
