package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/cors"

	"github.com/banshee-data/scanview/internal/db"
	"github.com/banshee-data/scanview/internal/httputil"
	"github.com/banshee-data/scanview/internal/monitoring"
	"github.com/banshee-data/scanview/internal/scan"
	"github.com/banshee-data/scanview/internal/security"
	"github.com/banshee-data/scanview/internal/source"
)

// OriginServer is the data origin: it answers GET /api/scan_data with the
// full sample array from its Source and, when a database is attached,
// exposes the stored runs.
type OriginServer struct {
	src source.Source
	db  *db.DB
}

// NewOriginServer creates an origin server. database may be nil.
func NewOriginServer(src source.Source, database *db.DB) *OriginServer {
	return &OriginServer{src: src, db: database}
}

// Handler returns the routes wrapped in permissive CORS so a browser viewer
// on another origin can poll it.
func (s *OriginServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/scan_data", s.scanData)
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/api/runs/{id}", s.runSamples)
	mux.HandleFunc("/api/runs/{id}/stats", s.runStats)
	mux.HandleFunc("/api/runs/{id}/download", s.downloadRun)

	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})(mux)
}

func (s *OriginServer) scanData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	seq, err := s.src.Fetch(r.Context())
	if err != nil {
		monitoring.Logf("[origin] scan_data failed: %v", err)
		httputil.InternalServerError(w, fmt.Sprintf("failed to load scan data: %v", err))
		return
	}
	if seq == nil {
		seq = scan.Sequence{}
	}
	httputil.WriteJSONOK(w, seq)
}

func (s *OriginServer) requireDB(w http.ResponseWriter) bool {
	if s.db == nil {
		httputil.NotFound(w, "no run database attached")
		return false
	}
	return true
}

func (s *OriginServer) writeRunError(w http.ResponseWriter, err error) {
	if errors.Is(err, db.ErrRunNotFound) {
		httputil.NotFound(w, err.Error())
		return
	}
	httputil.InternalServerError(w, err.Error())
}

func (s *OriginServer) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	if !s.requireDB(w) {
		return
	}
	runs, err := s.db.Runs()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list runs: %v", err))
		return
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *OriginServer) runSamples(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		seq, err := s.db.RunSamples(id)
		if err != nil {
			s.writeRunError(w, err)
			return
		}
		httputil.WriteJSONOK(w, seq)
	case http.MethodDelete:
		if err := s.db.DeleteRun(id); err != nil {
			s.writeRunError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		httputil.MethodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

func (s *OriginServer) runStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	if !s.requireDB(w) {
		return
	}
	st, err := s.db.RunStats(r.PathValue("id"))
	if err != nil {
		s.writeRunError(w, err)
		return
	}
	httputil.WriteJSONOK(w, st)
}

// downloadRun serves a run as a scans.json style attachment named after
// the run.
func (s *OriginServer) downloadRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	if !s.requireDB(w) {
		return
	}
	run, err := s.db.Run(r.PathValue("id"))
	if err != nil {
		s.writeRunError(w, err)
		return
	}
	seq, err := s.db.RunSamples(run.ID)
	if err != nil {
		s.writeRunError(w, err)
		return
	}

	name := security.SanitizeFilename(run.Name) + ".json"
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := scan.Encode(w, seq); err != nil {
		monitoring.Logf("[origin] download %s: %v", run.ID, err)
	}
}
