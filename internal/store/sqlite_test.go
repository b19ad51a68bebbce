package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/me/mlfq/pkg/model"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleSimulation(id string, createdAt time.Time) *model.Simulation {
	return &model.Simulation{
		ID:     id,
		Name:   "two-level",
		State:  model.SimulationStateCompleted,
		Format: "text",
		Workload: model.Workload{
			QueueNum:    2,
			TimeQuantum: []int{2, 4},
			Processes: []model.ProcessSpec{
				{Name: "P1", ArrivalTime: 0, BurstTime: 5},
				{Name: "P2", ArrivalTime: 1, BurstTime: 3},
			},
		},
		Trace: []model.Segment{
			{Name: "P1", Duration: 2}, {Name: "P2", Duration: 2},
			{Name: "P1", Duration: 3}, {Name: "P2", Duration: 1},
		},
		Stats: []model.ProcessStats{
			{Name: "P1", Burst: 5, Completion: 7, Turnaround: 7, Waiting: 2},
			{Name: "P2", Arrival: 1, Burst: 3, Start: 2, Completion: 8, Turnaround: 7, Waiting: 4, Response: 1},
		},
		Summary:   &model.Summary{Makespan: 8, AverageTurnaround: 7, AverageWaiting: 3, AverageResponse: 0.5, Throughput: 0.25},
		Labels:    map[string]string{"course": "os"},
		CreatedAt: createdAt.UTC().Truncate(time.Millisecond),
	}
}

func sampleRejected(id string, createdAt time.Time) *model.Simulation {
	return &model.Simulation{
		ID:    id,
		Name:  "bad",
		State: model.SimulationStateRejected,
		Workload: model.Workload{
			QueueNum:    1,
			TimeQuantum: []int{0},
			Processes:   []model.ProcessSpec{{Name: "A", BurstTime: 1}},
		},
		Error:     "time_quantum[0]: must be > 0, got 0",
		CreatedAt: createdAt.UTC().Truncate(time.Millisecond),
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	st := testStore(t)
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestCreateAndGetSimulation(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	sim := sampleSimulation("sim_test-1", time.Now())

	if err := st.CreateSimulation(ctx, sim); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := st.GetSimulation(ctx, sim.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected simulation, got nil")
	}
	if got.Name != sim.Name || got.State != sim.State || got.Format != "text" {
		t.Errorf("got %s/%s/%s", got.Name, got.State, got.Format)
	}
	if got.Workload.QueueNum != 2 || len(got.Workload.Processes) != 2 {
		t.Errorf("workload = %+v", got.Workload)
	}
	if len(got.Trace) != 4 || got.Trace[2] != (model.Segment{Name: "P1", Duration: 3}) {
		t.Errorf("trace = %+v", got.Trace)
	}
	if len(got.Stats) != 2 || got.Stats[1].Waiting != 4 {
		t.Errorf("stats = %+v", got.Stats)
	}
	if got.Summary == nil || got.Summary.AverageResponse != 0.5 {
		t.Errorf("summary = %+v", got.Summary)
	}
	if got.Labels["course"] != "os" {
		t.Errorf("labels = %v", got.Labels)
	}
	if !got.CreatedAt.Equal(sim.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, sim.CreatedAt)
	}
}

func TestCreateAndGetSimulation_Rejected(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	sim := sampleRejected("sim_bad", time.Now())

	if err := st.CreateSimulation(ctx, sim); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := st.GetSimulation(ctx, sim.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != model.SimulationStateRejected || got.Error != sim.Error {
		t.Errorf("got %s %q", got.State, got.Error)
	}
	if got.Trace != nil || got.Stats != nil || got.Summary != nil || got.Labels != nil {
		t.Errorf("rejected run should have no results: %+v", got)
	}
}

func TestCreateSimulation_DuplicateID(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	if err := st.CreateSimulation(ctx, sampleSimulation("sim_dup", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.CreateSimulation(ctx, sampleSimulation("sim_dup", time.Now())); err == nil {
		t.Error("expected primary key violation")
	}
}

func TestGetSimulation_NotFound(t *testing.T) {
	st := testStore(t)
	got, err := st.GetSimulation(context.Background(), "sim_nonexistent")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestListSimulations_Empty(t *testing.T) {
	st := testStore(t)
	sims, total, err := st.ListSimulations(context.Background(), model.DefaultListOptions())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 || len(sims) != 0 {
		t.Errorf("total=%d len=%d, want 0/0", total, len(sims))
	}
}

func TestListSimulations_Pagination(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	base := time.Now()
	for i := 0; i < 5; i++ {
		sim := sampleSimulation(fmt.Sprintf("sim_%d", i), base.Add(time.Duration(i)*time.Second))
		if err := st.CreateSimulation(ctx, sim); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	sims, total, err := st.ListSimulations(ctx, model.ListOptions{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(sims) != 2 {
		t.Fatalf("len = %d, want 2", len(sims))
	}
	if sims[0].ID != "sim_4" || sims[1].ID != "sim_3" {
		t.Errorf("expected newest first, got %s, %s", sims[0].ID, sims[1].ID)
	}

	sims, _, err = st.ListSimulations(ctx, model.ListOptions{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(sims) != 1 || sims[0].ID != "sim_0" {
		t.Errorf("last page = %v", sims)
	}
}

func TestListSimulations_Filters(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now()
	st.CreateSimulation(ctx, sampleSimulation("sim_ok1", now))
	st.CreateSimulation(ctx, sampleSimulation("sim_ok2", now.Add(time.Second)))
	st.CreateSimulation(ctx, sampleRejected("sim_bad1", now.Add(2*time.Second)))

	tests := []struct {
		name      string
		opts      model.ListOptions
		wantTotal int
	}{
		{"state completed", model.ListOptions{State: "COMPLETED"}, 2},
		{"state rejected", model.ListOptions{State: "REJECTED"}, 1},
		{"name", model.ListOptions{Name: "bad"}, 1},
		{"state and name", model.ListOptions{State: "COMPLETED", Name: "bad"}, 0},
		{"no filter", model.ListOptions{}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sims, total, err := st.ListSimulations(ctx, tt.opts)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if total != tt.wantTotal || len(sims) != tt.wantTotal {
				t.Errorf("total=%d len=%d, want %d", total, len(sims), tt.wantTotal)
			}
		})
	}
}

func TestDeleteSimulation(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	st.CreateSimulation(ctx, sampleSimulation("sim_del", time.Now()))

	if err := st.DeleteSimulation(ctx, "sim_del"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := st.GetSimulation(ctx, "sim_del")
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestDeleteSimulation_NotFound(t *testing.T) {
	st := testStore(t)
	err := st.DeleteSimulation(context.Background(), "sim_nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
