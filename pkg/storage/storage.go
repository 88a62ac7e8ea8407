package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/pkg/npc"
)

// ErrPopulationNotFound is returned when no population is stored under an id.
var ErrPopulationNotFound = errors.New("population not found")

// Storage persists generated populations.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Population operations
	SavePopulation(ctx context.Context, pop *npc.Population) error
	LoadPopulation(ctx context.Context, id uuid.UUID) (*npc.Population, error)
	DeletePopulation(ctx context.Context, id uuid.UUID) error
	// ListPopulations returns stored ids in ascending string order.
	ListPopulations(ctx context.Context) ([]uuid.UUID, error)
}

// OccupationQuerier is implemented by backends that can select records by
// occupation without loading the whole population.
type OccupationQuerier interface {
	NPCsByOccupation(ctx context.Context, id uuid.UUID, occupation string) ([]*npc.Record, error)
}

// NPCsByOccupation returns the records of population id holding occupation,
// in generation order. Backends without an occupation query fall back to
// filtering the loaded population.
func NPCsByOccupation(ctx context.Context, s Storage, id uuid.UUID, occupation string) ([]*npc.Record, error) {
	if q, ok := s.(OccupationQuerier); ok {
		return q.NPCsByOccupation(ctx, id, occupation)
	}

	pop, err := s.LoadPopulation(ctx, id)
	if err != nil {
		return nil, err
	}
	recs := make([]*npc.Record, 0)
	for _, rec := range pop.NPCs {
		if rec.Background.Occupation == occupation {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}
