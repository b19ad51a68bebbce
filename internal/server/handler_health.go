package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/me/mlfq/pkg/model"
)

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Store     string `json:"store"`
	Limits    limits `json:"limits"`
}

type limits struct {
	MaxLevels     int `json:"max_levels"`
	MaxProcesses  int `json:"max_processes"`
	MaxNameLength int `json:"max_name_length"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	storeStatus := model.StatusOK
	if _, _, err := s.store.ListSimulations(r.Context(), model.ListOptions{Limit: 1}); err != nil {
		s.logger.Warn("store health check failed", "error", err)
		storeStatus = "unavailable"
	}
	respondOK(w, reqID, healthResponse{
		Status:    "healthy",
		Version:   serverVersion,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Store:     storeStatus,
		Limits: limits{
			MaxLevels:     s.config.Limits.MaxLevels,
			MaxProcesses:  s.config.Limits.MaxProcesses,
			MaxNameLength: s.config.Limits.MaxNameLength,
		},
	})
}
