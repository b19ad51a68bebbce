package store

import (
	"context"
	"errors"

	"github.com/me/mlfq/pkg/model"
)

// ErrNotFound is returned by operations that modify a record that does not
// exist. Getters return nil, nil instead.
var ErrNotFound = errors.New("not found")

// Store defines the persistence layer for recorded simulations.
type Store interface {
	CreateSimulation(ctx context.Context, sim *model.Simulation) error
	GetSimulation(ctx context.Context, id string) (*model.Simulation, error)
	ListSimulations(ctx context.Context, opts model.ListOptions) ([]*model.Simulation, int, error)
	DeleteSimulation(ctx context.Context, id string) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
