package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/codewithboateng/diguard/internal/metrics"
	"github.com/codewithboateng/diguard/internal/model"
	"github.com/codewithboateng/diguard/internal/rules"
	"github.com/codewithboateng/diguard/internal/storage"
)

// Store is the minimal contract the API needs.
type Store interface {
	ListRuns(limit, offset int) ([]storage.RunRow, error)
	LoadRun(id string) (model.Run, error)
	LoadLatestRun() (model.Run, error)
	ListViolations(runID string, minSeverity model.Severity) ([]model.Violation, error)

	ListWaivers(activeOnly bool) ([]model.Waiver, error)
	CreateWaiver(w model.Waiver) (int64, error)
	RevokeWaiver(id int64) error
}

// UserStore is the auth/audit contract the API uses.
type UserStore interface {
	GetUserByUsername(string) (storage.User, string, error)
	CreateSession(int64, string, time.Time) error
	GetSession(string) (storage.User, error)
	DeleteSession(string) error
	LogAudit(username, action, resource string, meta map[string]any) error
}

const (
	defaultCacheSize = 64
	runCacheTTL      = 10 * time.Minute
)

type Server struct {
	DB              Store
	UserStore       UserStore
	Rules           []rules.Rule
	Metrics         *metrics.Metrics // optional; serves /metrics when set
	Logger          *slog.Logger
	AllowedOrigins  []string
	SessionDuration time.Duration
	CacheSize       int

	runs *expirable.LRU[string, model.Run]
}

func (s *Server) Routes() http.Handler {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	if s.SessionDuration <= 0 {
		s.SessionDuration = 12 * time.Hour
	}
	size := s.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	s.runs = expirable.NewLRU[string, model.Run](size, nil, runCacheTTL)

	mux := http.NewServeMux()
	cors := s.withCORS

	mux.HandleFunc("GET /api/v1/health", cors(s.handleHealth))

	mux.HandleFunc("POST /api/v1/auth/login", cors(s.handleLogin))
	mux.HandleFunc("POST /api/v1/auth/logout", cors(withAuth(s, s.handleLogout, "auth:logout")))
	mux.HandleFunc("GET /api/v1/me", cors(withAuth(s, s.handleMe, "me")))

	mux.HandleFunc("GET /api/v1/runs", cors(s.handleListRuns))
	mux.HandleFunc("GET /api/v1/runs/latest", cors(s.handleGetLatest))
	mux.HandleFunc("GET /api/v1/runs/{id}", cors(s.handleGetRun))
	mux.HandleFunc("GET /api/v1/runs/{id}/violations", cors(s.handleListViolations))

	mux.HandleFunc("GET /api/v1/rules", cors(s.handleRules))

	mux.HandleFunc("GET /api/v1/waivers", cors(withAuth(s, s.handleListWaivers, "waivers:list")))
	mux.HandleFunc("POST /api/v1/waivers", cors(withAdmin(s, s.handleCreateWaiver, "waivers:create")))
	mux.HandleFunc("POST /api/v1/waivers/{id}/revoke", cors(withAdmin(s, s.handleRevokeWaiver, "waivers:revoke")))

	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}

	mux.HandleFunc("/", cors(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	return mux
}

// InvalidateRuns drops cached runs, e.g. after a re-analysis overwrote one.
func (s *Server) InvalidateRuns() {
	if s.runs != nil {
		s.runs.Purge()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := clamp(parseInt(q.Get("limit"), 20), 1, 200)
	offset := max(parseInt(q.Get("offset"), 0), 0)

	rows, err := s.DB.ListRuns(limit, offset)
	if err != nil {
		s.dbErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": rows, "limit": limit, "offset": offset,
	})
}

func (s *Server) handleGetLatest(w http.ResponseWriter, r *http.Request) {
	run, err := s.DB.LoadLatestRun()
	if errors.Is(err, sql.ErrNoRows) {
		s.err(w, http.StatusNotFound, "no runs")
		return
	}
	if err != nil {
		s.dbErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if run, ok := s.runs.Get(id); ok {
		writeJSON(w, http.StatusOK, run)
		return
	}
	run, err := s.DB.LoadRun(id)
	if errors.Is(err, sql.ErrNoRows) {
		s.err(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		s.dbErr(w, err)
		return
	}
	s.runs.Add(id, run)
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListViolations(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	min, err := model.ParseSeverity(r.URL.Query().Get("min_severity"))
	if err != nil {
		s.err(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.DB.ListViolations(id, min)
	if err != nil {
		s.dbErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": id, "min_severity": min, "items": items, "count": len(items),
	})
}

func (s *Server) err(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func (s *Server) dbErr(w http.ResponseWriter, err error) {
	s.Logger.Error("db error", "err", err)
	s.err(w, http.StatusInternalServerError, "db error: "+err.Error())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n
	}
	return def
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
