package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/me/mlfq/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// Every connection to ":memory:" gets its own empty database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

const simulationColumns = `id, name, state, format, workload, trace, stats, summary, error, labels, created_at`

func (s *SQLiteStore) CreateSimulation(ctx context.Context, sim *model.Simulation) error {
	s.logger.Debug("sql", "op", "insert", "table", "simulations", "id", sim.ID)

	workloadJSON, err := json.Marshal(sim.Workload)
	if err != nil {
		return fmt.Errorf("marshal workload: %w", err)
	}
	traceJSON, err := marshalList(sim.Trace)
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}
	statsJSON, err := marshalList(sim.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	labelsJSON, err := json.Marshal(sim.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}
	if sim.Labels == nil {
		labelsJSON = []byte("{}")
	}

	var summaryJSON *string
	makespan := 0
	if sim.Summary != nil {
		data, err := json.Marshal(sim.Summary)
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		str := string(data)
		summaryJSON = &str
		makespan = sim.Summary.Makespan
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO simulations (`+simulationColumns+`, makespan)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sim.ID, sim.Name, string(sim.State), sim.Format,
		string(workloadJSON), traceJSON, statsJSON, summaryJSON,
		sim.Error, string(labelsJSON),
		sim.CreatedAt.Format(time.RFC3339Nano), makespan,
	)
	return err
}

func (s *SQLiteStore) GetSimulation(ctx context.Context, id string) (*model.Simulation, error) {
	s.logger.Debug("sql", "op", "select", "table", "simulations", "id", id)

	sim, err := scanSimulation(s.db.QueryRowContext(ctx,
		`SELECT `+simulationColumns+` FROM simulations WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sim, nil
}

func (s *SQLiteStore) ListSimulations(ctx context.Context, opts model.ListOptions) ([]*model.Simulation, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "simulations", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	// Build WHERE clause dynamically based on filters.
	var whereClauses []string
	var countArgs []any

	if opts.State != "" {
		whereClauses = append(whereClauses, "state = ?")
		countArgs = append(countArgs, opts.State)
	}
	if opts.Name != "" {
		whereClauses = append(whereClauses, "name = ?")
		countArgs = append(countArgs, opts.Name)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM simulations` + whereSQL
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT ` + simulationColumns + ` FROM simulations` + whereSQL +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	listArgs := append(countArgs, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sims []*model.Simulation
	for rows.Next() {
		sim, err := scanSimulation(rows)
		if err != nil {
			return nil, 0, err
		}
		sims = append(sims, sim)
	}
	return sims, total, rows.Err()
}

func (s *SQLiteStore) DeleteSimulation(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "simulations", "id", id)

	result, err := s.db.ExecContext(ctx, `DELETE FROM simulations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("simulation %s: %w", id, ErrNotFound)
	}
	return nil
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSimulation(row scanner) (*model.Simulation, error) {
	var sim model.Simulation
	var state, workloadJSON, traceJSON, statsJSON, labelsJSON, createdAt string
	var summaryJSON *string

	if err := row.Scan(&sim.ID, &sim.Name, &state, &sim.Format,
		&workloadJSON, &traceJSON, &statsJSON, &summaryJSON,
		&sim.Error, &labelsJSON, &createdAt); err != nil {
		return nil, err
	}

	sim.State = model.SimulationState(state)
	if err := json.Unmarshal([]byte(workloadJSON), &sim.Workload); err != nil {
		return nil, fmt.Errorf("unmarshal workload: %w", err)
	}
	if err := json.Unmarshal([]byte(traceJSON), &sim.Trace); err != nil {
		return nil, fmt.Errorf("unmarshal trace: %w", err)
	}
	if err := json.Unmarshal([]byte(statsJSON), &sim.Stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	if summaryJSON != nil {
		sim.Summary = &model.Summary{}
		if err := json.Unmarshal([]byte(*summaryJSON), sim.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
	}
	json.Unmarshal([]byte(labelsJSON), &sim.Labels)
	sim.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	// Rejected runs are stored with empty lists; keep them nil in the model.
	if len(sim.Trace) == 0 {
		sim.Trace = nil
	}
	if len(sim.Stats) == 0 {
		sim.Stats = nil
	}
	if len(sim.Labels) == 0 {
		sim.Labels = nil
	}
	return &sim, nil
}

// marshalList encodes a slice as a JSON array, writing "[]" for nil.
func marshalList[T any](items []T) (string, error) {
	if items == nil {
		return "[]", nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
