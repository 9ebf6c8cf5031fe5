package server

import (
	"net/http"
)

func (s *Server) handleBoards(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		writeBadRequest(w, "project parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, s.adapter.Boards(r.Context(), project))
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		writeBadRequest(w, "project parameter is required")
		return
	}
	label := r.URL.Query().Get("label")
	writeJSON(w, http.StatusOK, s.adapter.Cards(r.Context(), project, label))
}

type createCardRequest struct {
	Project     string   `json:"project"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Project == "" || req.Title == "" {
		writeBadRequest(w, "project and title are required")
		return
	}
	card, err := s.adapter.CreateCard(r.Context(), req.Project, req.Title, req.Description, req.Labels)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}
