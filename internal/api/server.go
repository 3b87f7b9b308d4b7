package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/soochol/workbench/internal/designer"
	"github.com/soochol/workbench/internal/repository"
	"github.com/soochol/workbench/internal/services"
	"github.com/soochol/workbench/internal/tools"
)

type Server struct {
	designerSvc *services.DesignerService
	processSvc  *services.ProcessService
	toolReg     *tools.Registry
	staticDir   string
}

func NewServer(designerSvc *services.DesignerService, processSvc *services.ProcessService, toolReg *tools.Registry) *Server {
	return &Server{
		designerSvc: designerSvc,
		processSvc:  processSvc,
		toolReg:     toolReg,
	}
}

// SetStaticDir serves the designer frontend from dir for every path outside /api.
func (s *Server) SetStaticDir(dir string) {
	s.staticDir = dir
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))
	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.openSession)
			r.Get("/{id}", s.getSession)
			r.Delete("/{id}", s.closeSession)
			r.Post("/{id}/intents", s.dispatchIntent)
			r.Post("/{id}/undo", s.undo)
			r.Post("/{id}/redo", s.redo)
			r.Post("/{id}/validate", s.validate)
			r.Get("/{id}/process", s.exportProcess)
			r.Post("/{id}/save", s.saveSession)
			r.Post("/{id}/start", s.startSession)
		})
		r.Route("/processes", func(r chi.Router) {
			r.Post("/", s.createProcess)
			r.Get("/", s.listProcesses)
			r.Get("/{id}", s.getProcess)
			r.Delete("/{id}", s.deleteProcess)
		})
		r.Get("/tools", s.listTools)
	})

	if s.staticDir != "" {
		r.Handle("/*", staticHandler(s.staticDir))
	}
	return r
}

// staticHandler serves a single page app, answering unknown paths with index.html.
func staticHandler(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(filepath.Join(dir, filepath.Clean(r.URL.Path))); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

// listTools returns the tool and data source catalogs.
func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"tools":   []tools.Descriptor{},
		"sources": []tools.SourceDescriptor{},
	}
	if s.toolReg != nil {
		resp["tools"] = s.toolReg.List()
		resp["sources"] = s.toolReg.Sources()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service and designer errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, designer.ErrInvalidProcess),
		errors.Is(err, designer.ErrNotConfiguring),
		errors.Is(err, designer.ErrStepNotFound),
		errors.Is(err, designer.ErrResourceNotFound),
		errors.Is(err, designer.ErrGroupNotFound),
		errors.Is(err, designer.ErrDataSourceNotFound),
		errors.Is(err, designer.ErrInputNotFound),
		errors.Is(err, designer.ErrOrderOutOfRange),
		errors.Is(err, designer.ErrUnknownTool),
		errors.Is(err, designer.ErrUnknownSource),
		errors.Is(err, errUnknownIntent),
		errors.Is(err, services.ErrNameRequired):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrExists),
		errors.Is(err, designer.ErrSessionClosed):
		status = http.StatusConflict
	case errors.Is(err, services.ErrExecutorNotConfigured):
		status = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), status)
}
