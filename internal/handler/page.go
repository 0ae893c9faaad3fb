package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// homePage is the file served at "/".
const homePage = "HomePage.html"

// PageHandler serves the browser front end from a static directory:
// "/" is HomePage.html and every other unmatched path is a file lookup.
type PageHandler struct {
	dir    string
	files  http.Handler
	logger *slog.Logger
}

// NewPageHandler checks that dir exists and contains HomePage.html.
func NewPageHandler(dir string, logger *slog.Logger) (*PageHandler, error) {
	info, err := os.Stat(filepath.Join(dir, homePage))
	if err != nil {
		return nil, fmt.Errorf("handler: locating %s: %w", homePage, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("handler: %s is a directory", homePage)
	}

	return &PageHandler{
		dir:    dir,
		files:  http.FileServer(http.Dir(dir)),
		logger: logger,
	}, nil
}

// HandleHome serves HomePage.html.
//
// HTTP: GET /
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.dir, homePage))
}

// HandleStatic serves any other file under the static directory.
//
// HTTP: GET /*
func (h *PageHandler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports store reachability for load balancers.
type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HandleHealth pings the store with a short deadline.
//
// HTTP: GET /healthz
//
//	200 {"status":"ok"}
//	503 {"status":"unavailable"}
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
