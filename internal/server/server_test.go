package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/me/mlfq/internal/config"
	"github.com/me/mlfq/internal/store"
	"github.com/me/mlfq/pkg/model"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := store.NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(config.DefaultServerConfig(), st, logger)
}

// envelope is used to decode the standard response envelope.
type envelope struct {
	Status     string            `json:"status"`
	RequestID  string            `json:"request_id"`
	Timestamp  string            `json:"timestamp"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      *model.APIError   `json:"error"`
}

func do(t *testing.T, srv *Server, method, path, body string, wantStatus int) envelope {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != wantStatus {
		t.Fatalf("%s %s: status=%d, want %d, body=%s", method, path, w.Code, wantStatus, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: invalid JSON: %v", method, path, err)
	}
	return env
}

func decodeSimulation(t *testing.T, env envelope) model.Simulation {
	t.Helper()
	var sim model.Simulation
	if err := json.Unmarshal(env.Data, &sim); err != nil {
		t.Fatalf("decode simulation: %v", err)
	}
	return sim
}

const exampleWorkload = `{"queue_num":2,"time_quantum":[2,4],"process_table":[
	{"name":"P1","arrival_time":0,"burst_time":5},
	{"name":"P2","arrival_time":1,"burst_time":3}]}`

func createExample(t *testing.T, srv *Server, name string) model.Simulation {
	t.Helper()
	body := `{"name":"` + name + `","labels":{"course":"os"},"workload":` + exampleWorkload + `}`
	return decodeSimulation(t, do(t, srv, "POST", "/api/v1/simulations/", body, http.StatusCreated))
}

func TestDiscovery(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "GET", "/api/v1/", "", http.StatusOK)
	if env.Status != "ok" {
		t.Errorf("status = %q, want ok", env.Status)
	}
	if env.RequestID == "" {
		t.Error("request_id is empty")
	}

	var data struct {
		Name            string   `json:"name"`
		WorkloadFormats []string `json:"workload_formats"`
		Endpoints       []struct {
			Path string `json:"path"`
		} `json:"endpoints"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Name != "MLFQ Simulator API" {
		t.Errorf("name = %q, want MLFQ Simulator API", data.Name)
	}
	if len(data.Endpoints) != len(routes) {
		t.Errorf("endpoints count = %d, want %d", len(data.Endpoints), len(routes))
	}
	if len(data.WorkloadFormats) != 3 {
		t.Errorf("workload_formats = %v, want auto, text and yaml", data.WorkloadFormats)
	}
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "GET", "/api/v1/health", "", http.StatusOK)

	var data struct {
		Status string `json:"status"`
		Store  string `json:"store"`
		Limits struct {
			MaxLevels int `json:"max_levels"`
		} `json:"limits"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Status != "healthy" || data.Store != "ok" {
		t.Errorf("health = %+v", data)
	}
	if data.Limits.MaxLevels != 4 {
		t.Errorf("max_levels = %d, want 4", data.Limits.MaxLevels)
	}
}

func TestCreateSimulation(t *testing.T) {
	srv := testServer(t)
	sim := createExample(t, srv, "example")

	if !strings.HasPrefix(sim.ID, "sim_") {
		t.Errorf("id = %q, want sim_ prefix", sim.ID)
	}
	if sim.State != model.SimulationStateCompleted {
		t.Errorf("state = %s, want COMPLETED", sim.State)
	}
	want := []model.Segment{{Name: "P1", Duration: 2}, {Name: "P2", Duration: 2}, {Name: "P1", Duration: 3}, {Name: "P2", Duration: 1}}
	if len(sim.Trace) != len(want) {
		t.Fatalf("trace = %+v, want %+v", sim.Trace, want)
	}
	for i := range want {
		if sim.Trace[i] != want[i] {
			t.Errorf("trace[%d] = %+v, want %+v", i, sim.Trace[i], want[i])
		}
	}
	if sim.Summary == nil || sim.Summary.Makespan != 8 {
		t.Errorf("summary = %+v", sim.Summary)
	}
	if sim.Labels["course"] != "os" {
		t.Errorf("labels = %v", sim.Labels)
	}
}

func TestCreateSimulation_Document(t *testing.T) {
	srv := testServer(t)
	doc := "queue_num = 2\ntime_quantum = 2 4\nprocess_table =\nP1 0 5\nP2 1 3\n"
	body, _ := json.Marshal(map[string]any{"name": "text", "document": doc})
	sim := decodeSimulation(t, do(t, srv, "POST", "/api/v1/simulations/", string(body), http.StatusCreated))

	if sim.Format != "text" {
		t.Errorf("format = %q, want text", sim.Format)
	}
	if len(sim.Trace) != 4 {
		t.Errorf("trace = %+v", sim.Trace)
	}
}

func TestCreateSimulation_Rejected(t *testing.T) {
	srv := testServer(t)
	body := `{"name":"gap","workload":{"queue_num":1,"time_quantum":[2],"process_table":[
		{"name":"early","arrival_time":0,"burst_time":1},
		{"name":"late","arrival_time":9,"burst_time":1}]}}`
	env := do(t, srv, "POST", "/api/v1/simulations/", body, http.StatusBadRequest)

	if env.Error == nil || env.Error.Code != model.ErrValidation {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
	if len(env.Error.Details) != 1 || env.Error.Details[0].Field != "process_table[1].arrival_time" {
		t.Errorf("details = %+v", env.Error.Details)
	}

	// The rejected run is recorded.
	sim := decodeSimulation(t, env)
	if sim.State != model.SimulationStateRejected || sim.Error == "" {
		t.Errorf("recorded = %s %q", sim.State, sim.Error)
	}
	got := decodeSimulation(t, do(t, srv, "GET", "/api/v1/simulations/"+sim.ID, "", http.StatusOK))
	if got.State != model.SimulationStateRejected {
		t.Errorf("stored state = %s", got.State)
	}
}

func TestCreateSimulation_BadRequests(t *testing.T) {
	srv := testServer(t)
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"invalid json", "not json", ""},
		{"missing workload", `{"name":"x"}`, "workload"},
		{"both forms", `{"workload":` + exampleWorkload + `,"document":"queue_num = 1"}`, "document"},
		{"bad document", `{"document":"queue_num = two"}`, "document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := do(t, srv, "POST", "/api/v1/simulations/", tt.body, http.StatusBadRequest)
			if env.Status != "error" || env.Error == nil {
				t.Fatalf("expected error envelope, got %+v", env)
			}
			if tt.field != "" && (len(env.Error.Details) == 0 || env.Error.Details[0].Field != tt.field) {
				t.Errorf("details = %+v, want field %s", env.Error.Details, tt.field)
			}
		})
	}

	// None of these reach the store.
	env := do(t, srv, "GET", "/api/v1/simulations/", "", http.StatusOK)
	if env.Pagination.Total != 0 {
		t.Errorf("total = %d, want 0", env.Pagination.Total)
	}
}

func TestCreateSimulation_DryRun(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "POST", "/api/v1/simulations/?dry_run=true", `{"workload":`+exampleWorkload+`}`, http.StatusOK)

	var data struct {
		DryRun     bool `json:"dry_run"`
		Valid      bool `json:"valid"`
		TotalBurst int  `json:"total_burst"`
	}
	json.Unmarshal(env.Data, &data)
	if !data.DryRun || !data.Valid || data.TotalBurst != 8 {
		t.Errorf("dry run = %+v", data)
	}

	list := do(t, srv, "GET", "/api/v1/simulations/", "", http.StatusOK)
	if list.Pagination.Total != 0 {
		t.Errorf("dry run should not record, total = %d", list.Pagination.Total)
	}
}

func TestValidateSimulation(t *testing.T) {
	srv := testServer(t)
	body := `{"workload":{"queue_num":9,"time_quantum":[1],"process_table":[{"name":"A","arrival_time":0,"burst_time":1}]}}`
	env := do(t, srv, "POST", "/api/v1/simulations/validate", body, http.StatusOK)

	var data struct {
		Valid  bool               `json:"valid"`
		Errors []model.FieldError `json:"errors"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Valid {
		t.Error("expected valid=false")
	}
	if len(data.Errors) != 2 {
		t.Errorf("errors = %+v, want queue_num limit and quantum count", data.Errors)
	}
}

func TestListSimulations(t *testing.T) {
	srv := testServer(t)
	for _, name := range []string{"a", "b", "c"} {
		createExample(t, srv, name)
	}

	env := do(t, srv, "GET", "/api/v1/simulations/?limit=2", "", http.StatusOK)
	var sims []model.Simulation
	json.Unmarshal(env.Data, &sims)
	if len(sims) != 2 {
		t.Errorf("len = %d, want 2", len(sims))
	}
	if env.Pagination == nil || env.Pagination.Total != 3 || !env.Pagination.HasMore {
		t.Errorf("pagination = %+v", env.Pagination)
	}

	env = do(t, srv, "GET", "/api/v1/simulations/?state=rejected", "", http.StatusOK)
	if env.Pagination.Total != 0 {
		t.Errorf("rejected total = %d, want 0", env.Pagination.Total)
	}

	env = do(t, srv, "GET", "/api/v1/simulations/?name=b", "", http.StatusOK)
	if env.Pagination.Total != 1 {
		t.Errorf("name filter total = %d, want 1", env.Pagination.Total)
	}
}

func TestListSimulations_BadQuery(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "GET", "/api/v1/simulations/?limit=x&state=RUNNING", "", http.StatusBadRequest)
	if len(env.Error.Details) != 2 {
		t.Errorf("details = %+v, want limit and state", env.Error.Details)
	}
}

func TestGetSimulation_NotFound(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "GET", "/api/v1/simulations/sim_missing", "", http.StatusNotFound)
	if env.Error == nil || env.Error.Code != model.ErrNotFound {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
}

func TestDeleteSimulation(t *testing.T) {
	srv := testServer(t)
	sim := createExample(t, srv, "doomed")

	do(t, srv, "DELETE", "/api/v1/simulations/"+sim.ID, "", http.StatusOK)
	do(t, srv, "GET", "/api/v1/simulations/"+sim.ID, "", http.StatusNotFound)
	do(t, srv, "DELETE", "/api/v1/simulations/"+sim.ID, "", http.StatusNotFound)
}

func TestGetGantt(t *testing.T) {
	srv := testServer(t)
	sim := createExample(t, srv, "chart")

	env := do(t, srv, "GET", "/api/v1/simulations/"+sim.ID+"/gantt", "", http.StatusOK)
	var data ganttResponse
	json.Unmarshal(env.Data, &data)
	if data.Chart != "Gantt Chart = 0 P1 2 P2 4 P1 7 P2 8" {
		t.Errorf("chart = %q", data.Chart)
	}

	req := httptest.NewRequest("GET", "/api/v1/simulations/"+sim.ID+"/gantt?format=text", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != data.Chart {
		t.Errorf("text chart = %q, want %q", got, data.Chart)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestGetGantt_RejectedRun(t *testing.T) {
	srv := testServer(t)
	body := `{"workload":{"queue_num":1,"time_quantum":[0],"process_table":[{"name":"A","arrival_time":0,"burst_time":1}]}}`
	sim := decodeSimulation(t, do(t, srv, "POST", "/api/v1/simulations/", body, http.StatusBadRequest))
	do(t, srv, "GET", "/api/v1/simulations/"+sim.ID+"/gantt", "", http.StatusConflict)
}

func TestResponseEnvelope_XRequestIDHeader(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	hdr := w.Header().Get("X-Request-ID")
	if !strings.HasPrefix(hdr, "req_") {
		t.Errorf("X-Request-ID = %q, want req_ prefix", hdr)
	}
	var env envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	if env.RequestID != hdr {
		t.Errorf("request_id = %q, header = %q", env.RequestID, hdr)
	}
}
