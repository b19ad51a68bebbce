package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/me/mlfq/pkg/model"
)

// requestID returns a short id for requests that arrive without one.
func requestID() string {
	return "req_" + uuid.New().String()[:8]
}

func respondOK(w http.ResponseWriter, reqID string, data any) {
	writeEnvelope(w, http.StatusOK, model.NewResponse(reqID, data, nil, nil))
}

// respondCreated answers a simulation that ran to completion.
func respondCreated(w http.ResponseWriter, reqID string, sim *model.Simulation) {
	writeEnvelope(w, http.StatusCreated, model.NewResponse(reqID, sim, nil, nil))
}

func respondList(w http.ResponseWriter, reqID string, sims []*model.Simulation, pg *model.Pagination) {
	writeEnvelope(w, http.StatusOK, model.NewResponse(reqID, sims, pg, nil))
}

func respondError(w http.ResponseWriter, reqID string, status int, apiErr *model.APIError) {
	writeEnvelope(w, status, model.NewResponse(reqID, nil, nil, apiErr))
}

// respondRecorded answers a rejected or failed simulation: the stored
// record goes in data next to the error that stopped it.
func respondRecorded(w http.ResponseWriter, reqID string, status int, sim *model.Simulation, apiErr *model.APIError) {
	writeEnvelope(w, status, model.NewResponse(reqID, sim, nil, apiErr))
}

// respondInternal answers a store failure.
func respondInternal(w http.ResponseWriter, reqID string, err error) {
	respondError(w, reqID, http.StatusInternalServerError,
		&model.APIError{Code: model.ErrInternal, Message: err.Error()})
}

func writeEnvelope(w http.ResponseWriter, status int, resp model.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
