package server

import (
	"net/http"

	"github.com/me/mlfq/internal/parser"
	"github.com/me/mlfq/internal/report"
)

// serverVersion is reported by discovery and health.
const serverVersion = "0.1.0"

type route struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods"`
	Purpose string   `json:"purpose"`
}

var routes = []route{
	{"/api/v1/simulations", []string{"GET", "POST"}, "List recorded runs; POST runs a workload (?dry_run=true only validates)"},
	{"/api/v1/simulations/validate", []string{"POST"}, "Validate a workload without running or recording it"},
	{"/api/v1/simulations/{id}", []string{"GET", "DELETE"}, "A recorded run with its trace and statistics"},
	{"/api/v1/simulations/{id}/gantt", []string{"GET"}, "Gantt chart of a completed run (?format=text for the bare line)"},
	{"/api/v1/health", []string{"GET"}, "Server, store and limits"},
}

type discoveryResponse struct {
	Name            string   `json:"name"`
	Version         string   `json:"version"`
	WorkloadFormats []string `json:"workload_formats"`
	ReportFormats   []string `json:"report_formats"`
	Endpoints       []route  `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	respondOK(w, RequestIDFromContext(r.Context()), discoveryResponse{
		Name:            "MLFQ Simulator API",
		Version:         serverVersion,
		WorkloadFormats: []string{parser.FormatAuto, parser.FormatText, parser.FormatYAML},
		ReportFormats:   []string{report.FormatText, report.FormatJSON, report.FormatYAML},
		Endpoints:       routes,
	})
}
