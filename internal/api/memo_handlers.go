package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pmemoapp/pmemo-server/internal/http/response"
	"github.com/pmemoapp/pmemo-server/internal/service"
)

func (s *Server) handleCreateMemo(w http.ResponseWriter, r *http.Request) {
	var req service.CreateMemoRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	memo, err := s.memoService.Create(r.Context(), getUserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.Created(w, memo, s.logger.Logger)
}

// handleListMemos lists the caller's memos, newest update first. With a
// ?q= parameter it becomes a case-insensitive substring search; a blank
// query is the plain listing.
func (s *Server) handleListMemos(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	query := r.URL.Query().Get("q")

	memos, err := s.memoService.Search(r.Context(), userID, query)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.Success(w, memos, s.logger.Logger)
}

func (s *Server) handleListMemosByTag(w http.ResponseWriter, r *http.Request) {
	memos, err := s.memoService.ListByTag(r.Context(), getUserID(r.Context()), chi.URLParam(r, "tagID"))
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.Success(w, memos, s.logger.Logger)
}

func (s *Server) handleGetMemo(w http.ResponseWriter, r *http.Request) {
	memo, err := s.memoService.Get(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.Success(w, memo, s.logger.Logger)
}

func (s *Server) handleUpdateMemo(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateMemoRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	memo, err := s.memoService.Update(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.Success(w, memo, s.logger.Logger)
}

func (s *Server) handleDeleteMemo(w http.ResponseWriter, r *http.Request) {
	if err := s.memoService.Delete(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.NoContent(w)
}
