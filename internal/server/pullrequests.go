package server

import (
	"net/http"

	"reviewdeck-backend/internal/types"
)

// Handlers for the pull-request operation surface. Each operation takes
// the opaque identifier token in its JSON body and hands it to the adapter
// unchanged; the server never inspects token contents.

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeBadRequest(w, "query parameter is required")
		return
	}
	pulls, err := s.adapter.SearchPullRequests(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pulls)
}

type detailRequest struct {
	ID    string `json:"id"`
	Force bool   `json:"force"`
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	var req detailRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pr, err := s.adapter.GetPullRequest(r.Context(), req.ID, req.Force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pr)
}

type idRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleReviewers(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reviewers, err := s.adapter.ListReviewers(r.Context(), req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewers)
}

func (s *Server) handleCommits(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}
	commits, err := s.adapter.ListCommits(r.Context(), req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commits)
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}
	files, err := s.adapter.ListChangedFiles(r.Context(), req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

type commentRequest struct {
	ID       string          `json:"id"`
	Body     string          `json:"body"`
	Position *types.Position `json:"position,omitempty"`
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := s.adapter.CreateComment(r.Context(), req.ID, req.Body, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

type replyRequest struct {
	ID           string `json:"id"`
	DiscussionID string `json:"discussionId"`
	Body         string `json:"body"`
}

func (s *Server) handleReplyComment(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := s.adapter.ReplyToComment(r.Context(), req.ID, req.DiscussionID, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

type deleteCommentRequest struct {
	ID     string `json:"id"`
	NoteID int    `json:"noteId"`
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	var req deleteCommentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.adapter.DeleteComment(r.Context(), req.ID, req.NoteID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type stageRequest struct {
	ID       string          `json:"id"`
	Body     string          `json:"body"`
	Position *types.Position `json:"position,omitempty"`
}

func (s *Server) handleStageComment(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Body == "" {
		writeBadRequest(w, "comment body is required")
		return
	}
	draft := types.DraftComment{Body: req.Body, Position: req.Position}
	if err := s.adapter.StageComment(req.ID, draft); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"staged": true})
}

func (s *Server) handlePendingReview(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pending, err := s.adapter.HasPendingReview(req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"pending": pending})
}

func (s *Server) handleDiscardReview(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.adapter.DiscardReview(req.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"pending": false})
}

type submitReviewRequest struct {
	ID    string `json:"id"`
	Body  string `json:"body"`
	Event string `json:"event"`
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	var req submitReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	event := types.ReviewEvent(req.Event)
	if !event.Valid() {
		writeBadRequest(w, "invalid review event "+req.Event)
		return
	}
	result, err := s.adapter.SubmitReview(r.Context(), req.ID, req.Body, event)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type lockRequest struct {
	ID     string `json:"id"`
	Locked bool   `json:"locked"`
}

func (s *Server) handleSetLocked(w http.ResponseWriter, r *http.Request) {
	var req lockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.adapter.SetLocked(r.Context(), req.ID, req.Locked); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"locked": req.Locked})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.adapter.Approve(r.Context(), req.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"approved": true})
}

func (s *Server) handleUnapprove(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.adapter.Unapprove(r.Context(), req.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"approved": false})
}

type labelsRequest struct {
	ID     string   `json:"id"`
	Labels []string `json:"labels"`
}

func (s *Server) handleSetLabels(w http.ResponseWriter, r *http.Request) {
	var req labelsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.adapter.SetLabels(r.Context(), req.ID, req.Labels); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"labels": req.Labels})
}

type milestoneRequest struct {
	ID          string `json:"id"`
	MilestoneID int    `json:"milestoneId"`
}

func (s *Server) handleSetMilestone(w http.ResponseWriter, r *http.Request) {
	var req milestoneRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.adapter.SetMilestone(r.Context(), req.ID, req.MilestoneID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"milestoneId": req.MilestoneID})
}

type draftRequest struct {
	ID    string `json:"id"`
	Draft bool   `json:"draft"`
}

func (s *Server) handleSetDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.adapter.SetDraft(r.Context(), req.ID, req.Draft); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"draft": req.Draft})
}

type mergeRequest struct {
	ID                 string `json:"id"`
	Squash             bool   `json:"squash"`
	RemoveSourceBranch bool   `json:"removeSourceBranch"`
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.adapter.Merge(r.Context(), req.ID, req.Squash, req.RemoveSourceBranch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"merged": true})
}

// handleFileComments serves the per-file comment lookup. A cache miss
// answers 202 with ready=false; the aggregated comments are announced
// through the event stream when the chain completes and the client
// re-requests.
func (s *Server) handleFileComments(w http.ResponseWriter, r *http.Request) {
	repo := r.URL.Query().Get("repo")
	path := r.URL.Query().Get("path")
	if repo == "" || path == "" {
		writeBadRequest(w, "repo and path parameters are required")
		return
	}
	comments, ready := s.adapter.FileComments(repo, path)
	if !ready {
		writeJSON(w, http.StatusAccepted, map[string]any{"ready": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ready": true, "comments": comments})
}
