package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/me/mlfq/internal/parser"
	"github.com/me/mlfq/internal/report"
	"github.com/me/mlfq/internal/store"
	"github.com/me/mlfq/pkg/model"
)

// maxBodyBytes bounds request bodies; workloads are small.
const maxBodyBytes = 1 << 20

// simulationRequest is the body of POST /simulations and /simulations/validate.
// Exactly one of Workload or Document must be given. Document holds a
// workload in the text or YAML format, selected by Format (default auto).
type simulationRequest struct {
	Name     string            `json:"name"`
	Labels   map[string]string `json:"labels"`
	Workload *model.Workload   `json:"workload"`
	Document string            `json:"document"`
	Format   string            `json:"format"`
}

// decodeWorkload reads the request body and resolves the workload it
// carries. The returned string is the document format, empty for inline
// workloads.
func (s *Server) decodeWorkload(w http.ResponseWriter, r *http.Request) (*simulationRequest, *model.Workload, string, *model.APIError) {
	var req simulationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return nil, nil, "", &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		}
	}

	switch {
	case req.Workload != nil && req.Document != "":
		return nil, nil, "", model.NewValidationError("ambiguous request",
			model.FieldError{Field: "document", Message: "give either workload or document, not both"})
	case req.Workload != nil:
		return &req, req.Workload, "", nil
	case req.Document != "":
		wl, err := s.parser.Parse([]byte(req.Document), req.Format)
		if err != nil {
			return nil, nil, "", model.NewValidationError("invalid workload document",
				model.FieldError{Field: "document", Message: err.Error()})
		}
		format := req.Format
		if format == "" || format == parser.FormatAuto {
			format = parser.DetectFormat("", []byte(req.Document))
		}
		return &req, wl, format, nil
	default:
		return nil, nil, "", model.NewValidationError("missing required field",
			model.FieldError{Field: "workload", Message: "workload or document is required"})
	}
}

func (s *Server) handleCreateSimulation(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	req, wl, format, apiErr := s.decodeWorkload(w, r)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}

	verr := s.validator.Validate(wl)

	if r.URL.Query().Get("dry_run") == "true" {
		respondOK(w, reqID, dryRunReport(wl, verr))
		return
	}

	sim := &model.Simulation{
		ID:        "sim_" + uuid.New().String(),
		Name:      req.Name,
		Format:    format,
		Workload:  *wl,
		Labels:    req.Labels,
		CreatedAt: time.Now().UTC(),
	}

	status := http.StatusCreated
	if verr != nil {
		sim.State = model.SimulationStateRejected
		sim.Error = summarizeFieldErrors(verr)
		apiErr = verr
		status = http.StatusBadRequest
	} else {
		result, err := s.scheduler.Simulate(*wl)
		if err != nil {
			sim.State = model.SimulationStateFailed
			sim.Error = err.Error()
			apiErr = &model.APIError{Code: model.ErrInvariant, Message: err.Error()}
			status = http.StatusInternalServerError
		} else {
			sim.State = model.SimulationStateCompleted
			sim.Trace = result.Trace
			sim.Stats = result.Stats
			sim.Summary = &result.Summary
		}
	}

	if err := s.store.CreateSimulation(r.Context(), sim); err != nil {
		respondInternal(w, reqID, err)
		return
	}
	s.logger.Info("simulation recorded", "id", sim.ID, "state", sim.State, "processes", len(wl.Processes))

	if apiErr != nil {
		respondRecorded(w, reqID, status, sim, apiErr)
		return
	}
	respondCreated(w, reqID, sim)
}

func (s *Server) handleValidateSimulation(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	_, wl, _, apiErr := s.decodeWorkload(w, r)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	respondOK(w, reqID, dryRunReport(wl, s.validator.Validate(wl)))
}

func dryRunReport(wl *model.Workload, verr *model.APIError) map[string]any {
	errs := []model.FieldError{}
	if verr != nil {
		errs = verr.Details
	}
	return map[string]any{
		"dry_run":     true,
		"valid":       verr == nil,
		"queue_num":   wl.QueueNum,
		"processes":   len(wl.Processes),
		"total_burst": wl.TotalBurst(),
		"errors":      errs,
	}
}

// summarizeFieldErrors flattens validation details into the single line
// stored with a rejected simulation.
func summarizeFieldErrors(apiErr *model.APIError) string {
	if len(apiErr.Details) == 0 {
		return apiErr.Message
	}
	parts := make([]string, len(apiErr.Details))
	for i, d := range apiErr.Details {
		parts[i] = d.Field + ": " + d.Message
	}
	return strings.Join(parts, "; ")
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opts, apiErr := listOptionsFromQuery(r)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}

	opts.Clamp()
	sims, total, err := s.store.ListSimulations(r.Context(), opts)
	if err != nil {
		respondInternal(w, reqID, err)
		return
	}
	if sims == nil {
		sims = []*model.Simulation{}
	}

	respondList(w, reqID, sims, model.NewPagination(total, opts))
}

func listOptionsFromQuery(r *http.Request) (model.ListOptions, *model.APIError) {
	opts := model.DefaultListOptions()
	q := r.URL.Query()

	var errs []model.FieldError
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, model.FieldError{Field: "limit", Message: fmt.Sprintf("%q is not an integer", v)})
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, model.FieldError{Field: "offset", Message: fmt.Sprintf("%q is not an integer", v)})
		}
		opts.Offset = n
	}
	if v := q.Get("state"); v != "" {
		state := model.SimulationState(strings.ToUpper(v))
		if !state.Valid() {
			errs = append(errs, model.FieldError{Field: "state", Message: fmt.Sprintf("unknown state %q", v)})
		}
		opts.State = string(state)
	}
	opts.Name = q.Get("name")

	if len(errs) > 0 {
		return opts, model.NewValidationError("invalid query parameters", errs...)
	}
	return opts, nil
}

// lookupSimulation fetches the simulation named by the {id} URL parameter,
// writing the error response itself when it returns nil.
func (s *Server) lookupSimulation(w http.ResponseWriter, r *http.Request) *model.Simulation {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	sim, err := s.store.GetSimulation(r.Context(), id)
	if err != nil {
		respondInternal(w, reqID, err)
		return nil
	}
	if sim == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("simulation", id))
		return nil
	}
	return sim
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	if sim := s.lookupSimulation(w, r); sim != nil {
		respondOK(w, RequestIDFromContext(r.Context()), sim)
	}
}

func (s *Server) handleDeleteSimulation(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteSimulation(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("simulation", id))
			return
		}
		respondInternal(w, reqID, err)
		return
	}
	s.logger.Info("simulation deleted", "id", id)
	respondOK(w, reqID, map[string]any{"id": id, "deleted": true})
}

type ganttResponse struct {
	ID    string          `json:"id"`
	Chart string          `json:"chart"`
	Trace []model.Segment `json:"trace"`
}

// handleGetGantt returns the chart of a completed simulation. With
// ?format=text the bare chart line is written as text/plain.
func (s *Server) handleGetGantt(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sim := s.lookupSimulation(w, r)
	if sim == nil {
		return
	}
	if !sim.State.HasTrace() {
		respondError(w, reqID, http.StatusConflict, &model.APIError{
			Code:    model.ErrValidation,
			Message: fmt.Sprintf("simulation %s has no Gantt chart (state %s)", sim.ID, sim.State),
		})
		return
	}

	if r.URL.Query().Get("format") == report.FormatText {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		report.WriteGantt(w, sim.Trace)
		return
	}
	respondOK(w, reqID, ganttResponse{
		ID:    sim.ID,
		Chart: report.FormatGantt(sim.Trace),
		Trace: sim.Trace,
	})
}
