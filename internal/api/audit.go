package api

import (
	"net/http"
	"strconv"

	"github.com/ledcord/voicelight/internal/audit"
)

// handleListAuditLogs returns paginated configuration changes.
//
// Query parameters:
//   - action: upsert, delete, enable, disable
//   - user_id: changes to one user's row
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeNotFound(w, "audit log not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action: q.Get("action"),
		UserID: q.Get("user_id"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err)
		writeInternalError(w, "failed to list audit logs")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
