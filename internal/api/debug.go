package api

import (
	"net/http"
	"time"

	"teamplanner/internal/buildinfo"
)

// VersionHandler reports build info and the server clock.
func (s *Server) VersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"build": buildinfo.Info(),
		"time":  s.Now().UTC().Format(time.RFC3339),
		"permissionsGated": s.Perms != nil,
	})
}
