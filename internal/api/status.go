package api

import (
	"net/http"

	"github.com/ledcord/voicelight/internal/infrastructure/mqtt"
)

// Component status values reported by /health.
const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusDown     = "down"
	statusDisabled = "disabled"
)

// healthResponse is the /health body.
type healthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components"`
}

// handleHealth reports component health.
//
// A failed database answers 503. A broker that is not connected only degrades
// the status: light commands are skipped, but the bridge keeps running.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:     statusOK,
		Version:    s.version,
		Components: map[string]string{},
	}
	code := http.StatusOK

	if err := s.database.HealthCheck(r.Context()); err != nil {
		resp.Components["database"] = statusDown
		resp.Status = statusDown
		code = http.StatusServiceUnavailable
	} else {
		resp.Components["database"] = statusOK
	}

	state := s.mqtt.State()
	resp.Components["mqtt"] = state.String()
	if state != mqtt.Connected && resp.Status == statusOK {
		resp.Status = statusDegraded
	}

	switch {
	case s.influx == nil:
		resp.Components["influxdb"] = statusDisabled
	case s.influx.HealthCheck(r.Context()) != nil:
		resp.Components["influxdb"] = statusDown
		if resp.Status == statusOK {
			resp.Status = statusDegraded
		}
	default:
		resp.Components["influxdb"] = statusOK
	}

	writeJSON(w, code, resp)
}

// userResponse is one roster entry.
type userResponse struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Device      string `json:"device"`
	LED         int    `json:"led"`
	Color       string `json:"color"`
	JoinEffect  string `json:"join_effect"`
	LeaveEffect string `json:"leave_effect"`
}

// handleListUsers returns the enabled lighting roster.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	configs, err := s.roster.ListEnabled(r.Context())
	if err != nil {
		s.logger.Error("listing light configs failed", "error", err)
		writeInternalError(w, "failed to list users")
		return
	}

	users := make([]userResponse, 0, len(configs))
	for _, c := range configs {
		users = append(users, userResponse{
			UserID:      c.UserID,
			Username:    c.Username,
			Device:      c.Device,
			LED:         c.LED,
			Color:       c.Color,
			JoinEffect:  c.JoinEffect,
			LeaveEffect: c.LeaveEffect,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}
