package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pmemoapp/pmemo-server/internal/http/response"
	"github.com/pmemoapp/pmemo-server/internal/service"
)

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTagRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	tag, err := s.tagService.Create(r.Context(), getUserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.Created(w, tag, s.logger.Logger)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tagService.List(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.Success(w, tags, s.logger.Logger)
}

func (s *Server) handleGetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := s.tagService.Get(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.Success(w, tag, s.logger.Logger)
}

func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateTagRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	tag, err := s.tagService.Update(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.Success(w, tag, s.logger.Logger)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.tagService.Delete(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.NoContent(w)
}
