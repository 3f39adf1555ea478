package api

import (
	"net/http"
	"strings"

	"github.com/pmemoapp/pmemo-server/internal/http/response"
	"github.com/pmemoapp/pmemo-server/internal/service"
)

// handleRegister creates a new user account and returns it together
// with a fresh access token, so clients land signed in.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.authService.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.Created(w, resp, s.logger.Logger)
}

// handleLogin authenticates a user and returns an access token.
// Accepts OAuth2-password-style form fields (username carries the
// email) as well as a JSON body with the same field names.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			response.BadRequest(w, "invalid form body", s.logger.Logger)
			return
		}
		req.Email = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	} else if !s.decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.Success(w, resp, s.logger.Logger)
}

// handleGetCurrentUser returns the profile behind the presented token.
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.authService.GetUser(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.Success(w, user, s.logger.Logger)
}
