package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soochol/workbench/internal/workbench"
)

// createProcess imports a process definition without opening a session.
// POST /api/processes {"name": "...", "definition": {...}}
func (s *Server) createProcess(w http.ResponseWriter, r *http.Request) {
	var rec workbench.ProcessRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	rec.ID = ""
	if err := s.processSvc.Create(r.Context(), &rec); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) listProcesses(w http.ResponseWriter, r *http.Request) {
	processes, err := s.processSvc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if processes == nil {
		processes = []*workbench.ProcessRecord{}
	}
	writeJSON(w, http.StatusOK, processes)
}

func (s *Server) getProcess(w http.ResponseWriter, r *http.Request) {
	p, err := s.processSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProcess(w http.ResponseWriter, r *http.Request) {
	if err := s.processSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
