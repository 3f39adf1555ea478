package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/pmemoapp/pmemo-server/internal/http/response"
)

// decodeJSON reads the request body into dest using json/v2. On failure
// it writes a 400 and returns false; the handler should return.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.UnmarshalRead(r.Body, dest); err != nil {
		response.BadRequest(w, "invalid request body", s.logger.Logger)
		return false
	}
	return true
}
