package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ttcal/internal/config"
	"ttcal/internal/ics"
	appLog "ttcal/internal/log"
	"ttcal/internal/registry"
	"ttcal/internal/timetable"
	"ttcal/internal/validate"
)

// Server turns registry timetable documents into calendar downloads.
// Routes:
//
//	GET /health
//	GET /{year}/{section}/{semester}[.ics]?<config options>&weeks=N
type Server struct {
	cfg *config.Config
	src registry.Source
	mux *http.ServeMux
}

// NewServer constructs a new Server over the given document source.
func NewServer(cfg *config.Config, src registry.Source) *Server {
	s := &Server{
		cfg: cfg,
		src: src,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password counts as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays reachable without credentials.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="ttcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/", s.handleTimetable)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleTimetable serves one timetable as a calendar file.
//
// GET /{year}/{section}/{semester}[.ics]
//   - every query parameter except "weeks" selects a config option value
//   - weeks overrides the recurrence horizon (default from config, capped)
func (s *Server) handleTimetable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ref, ok := parseRef(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	doc, err := s.src.Fetch(r.Context(), ref)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no timetable for "+ref.String())
			return
		}
		appLog.Error("timetable fetch failed", err, "ref", ref.String())
		writeError(w, http.StatusBadGateway, "failed to fetch timetable")
		return
	}

	if verrs := validate.Document(doc); len(verrs) > 0 {
		appLog.Error("timetable failed validation", errors.New(verrs[0]), "ref", ref.String(), "error_count", len(verrs))
		writeJSON(w, http.StatusUnprocessableEntity, struct {
			Errors []string `json:"errors"`
		}{verrs})
		return
	}

	q := r.URL.Query()
	conf := timetable.Configuration{}
	for key, vals := range q {
		if key == "weeks" || len(vals) == 0 {
			continue
		}
		conf[key] = vals[0]
	}

	if cerrs := timetable.CheckConfiguration(doc, conf); len(cerrs) > 0 {
		writeJSON(w, http.StatusBadRequest, configErrorResponse(cerrs))
		return
	}

	weeks := parseIntDefault(q.Get("weeks"), s.cfg.DefaultWeeks)
	if weeks < 1 {
		weeks = 1
	}
	if weeks > s.cfg.MaxWeeks {
		weeks = s.cfg.MaxWeeks
	}

	body, err := ics.Serialize(doc, conf, ics.Options{
		Title:        fmt.Sprintf("%s %s Timetable (Sem %s)", ref.Year, ref.Section, ref.Semester),
		HorizonWeeks: weeks,
	})
	if err != nil {
		appLog.Error("calendar serialization failed", err, "ref", ref.String())
		writeError(w, http.StatusInternalServerError, "failed to build calendar")
		return
	}

	appLog.Info("calendar served", "ref", ref.String(), "weeks", weeks, "bytes", len(body))

	filename := fmt.Sprintf("timetable-%s-%s-%s.ics", ref.Year, ref.Section, ref.Semester)
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// parseRef extracts {year, section, semester} from a request path like
// "/2025/AIE-D/4.ics". The .ics extension is optional.
func parseRef(path string) (registry.Ref, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return registry.Ref{}, false
	}
	sem := strings.TrimSuffix(parts[2], ".ics")
	if parts[0] == "" || parts[1] == "" || sem == "" {
		return registry.Ref{}, false
	}
	return registry.Ref{Year: parts[0], Section: parts[1], Semester: sem}, true
}

// configErrorDTO is the JSON shape for one configuration problem.
type configErrorDTO struct {
	Key      string   `json:"key"`
	Value    string   `json:"value,omitempty"`
	ValidIDs []string `json:"valid_ids"`
	Message  string   `json:"message"`
}

func configErrorResponse(cerrs []*timetable.ConfigError) any {
	dtos := make([]configErrorDTO, 0, len(cerrs))
	for _, ce := range cerrs {
		dtos = append(dtos, configErrorDTO{
			Key:      ce.Key,
			Value:    ce.Value,
			ValidIDs: ce.ValidIDs,
			Message:  ce.Error(),
		})
	}
	return struct {
		Errors []configErrorDTO `json:"errors"`
	}{dtos}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
