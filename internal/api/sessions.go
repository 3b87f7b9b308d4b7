package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soochol/workbench/internal/designer"
)

type sessionResponse struct {
	ID        string          `json:"id"`
	ProcessID string          `json:"processId,omitempty"`
	State     *designer.State `json:"state"`
	CanUndo   bool            `json:"canUndo"`
	CanRedo   bool            `json:"canRedo"`
}

func (s *Server) sessionResponse(id string, state *designer.State) (*sessionResponse, error) {
	sess, err := s.designerSvc.Session(id)
	if err != nil {
		return nil, err
	}
	processID, err := s.designerSvc.ProcessID(id)
	if err != nil {
		return nil, err
	}
	snap := sess.Snapshot()
	if state == nil {
		state = snap.State
	}
	return &sessionResponse{
		ID:        id,
		ProcessID: processID,
		State:     state,
		CanUndo:   snap.CanUndo,
		CanRedo:   snap.CanRedo,
	}, nil
}

func (s *Server) respondSession(w http.ResponseWriter, status int, id string, state *designer.State) {
	resp, err := s.sessionResponse(id, state)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, resp)
}

// openSession starts a designer session, optionally loading a stored process.
// POST /api/sessions {"processId": "..."}
func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProcessID string `json:"processId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	id, _, err := s.designerSvc.Open(r.Context(), req.ProcessID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.respondSession(w, http.StatusCreated, id, nil)
}

// GET /api/sessions/{id}
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.respondSession(w, http.StatusOK, chi.URLParam(r, "id"), nil)
}

// DELETE /api/sessions/{id}
func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := s.designerSvc.Close(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dispatchIntent applies one intent and returns the state right after it.
// A rejected intent answers 200 with the unchanged state.
// POST /api/sessions/{id}/intents
func (s *Server) dispatchIntent(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	in, err := decodeIntent(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, in)
}

// POST /api/sessions/{id}/undo
func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, designer.Undo{})
}

// POST /api/sessions/{id}/redo
func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, designer.Redo{})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, in designer.Intent) {
	id := chi.URLParam(r, "id")
	sess, err := s.designerSvc.Session(id)
	if err != nil {
		writeError(w, err)
		return
	}
	state, err := sess.Dispatch(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	s.respondSession(w, http.StatusOK, id, state)
}

// validate starts a background validation of an open configuration editor.
// With ?wait=true the response is sent once the result has been applied.
// POST /api/sessions/{id}/validate {"step": 1, "dataSource": 0}
func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var target designer.Target
	if err := json.NewDecoder(r.Body).Decode(&target); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sess, err := s.designerSvc.Session(id)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := sess.Validate(r.Context(), target)
	if err != nil {
		writeError(w, err)
		return
	}
	if r.URL.Query().Get("wait") != "true" {
		writeJSON(w, http.StatusAccepted, map[string]any{"seq": v.Seq})
		return
	}
	select {
	case <-v.Done:
	case <-r.Context().Done():
		return
	}
	resp, err := s.sessionResponse(id, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"seq": v.Seq, "session": resp})
}

// exportProcess returns the serialized process of a session.
// GET /api/sessions/{id}/process?format=yaml
func (s *Server) exportProcess(w http.ResponseWriter, r *http.Request) {
	sess, err := s.designerSvc.Session(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	state := sess.State()
	if r.URL.Query().Get("format") == "yaml" {
		data, err := designer.EncodeYAML(state)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, designer.Serialize(state))
}

// POST /api/sessions/{id}/save
func (s *Server) saveSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.designerSvc.Save(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// POST /api/sessions/{id}/start
func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	executionID, err := s.designerSvc.Start(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	processID, _ := s.designerSvc.ProcessID(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusAccepted, map[string]string{
		"processId":   processID,
		"executionId": executionID,
	})
}
