package api

import (
	"net/http"
	"strings"

	"teamplanner/internal/permissions"
)

// authorize checks the cached user permissions against required (all of
// them). It writes the problem response and returns false when denied.
// Without a permission cache every request is allowed.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, required ...string) bool {
	if s.Perms == nil {
		return true
	}
	user, err := s.Perms.Get(r.Context())
	if err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Permission lookup failed", err.Error(), r.URL.Path)
		return false
	}
	if !permissions.Evaluate(required, user, permissions.ModeAll) {
		s.Logger.Info().Str("user", user.Username).Strs("required", required).Str("path", r.URL.Path).Msg("permission denied")
		writeProblem(w, http.StatusForbidden, "Forbidden", "missing permission: "+strings.Join(required, ", "), r.URL.Path)
		return false
	}
	return true
}

