package npc

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/rng"
)

// Population is a stored batch of generated records.
type Population struct {
	ID            uuid.UUID `json:"id"`
	Seed          string    `json:"seed"`
	SchemaVersion int       `json:"schemaVersion"`
	Count         int       `json:"count"`
	CreatedAt     time.Time `json:"createdAt"`
	NPCs          []*Record `json:"npcs"`
}

// NPC returns the record with the given id.
func (p *Population) NPC(id string) (*Record, bool) {
	for _, rec := range p.NPCs {
		if rec.ID == id {
			return rec, true
		}
	}
	return nil, false
}

var (
	ErrNPCNotFound  = errors.New("npc not found")
	ErrHostNotAlive = errors.New("a dead npc cannot be the playable host")
	ErrEmptyRoster  = errors.New("population has no npcs")
)

// Host returns the record currently marked as the playable host.
func (p *Population) Host() (*Record, bool) {
	for _, rec := range p.NPCs {
		if rec.Lifecycle.IsPlayableHost {
			return rec, true
		}
	}
	return nil, false
}

// SetHost marks the record with id as the playable host and clears the flag
// everywhere else. An empty id selects the first record of the roster.
// The population is left unchanged on error.
func (p *Population) SetHost(id string) (*Record, error) {
	if len(p.NPCs) == 0 {
		return nil, ErrEmptyRoster
	}

	host := p.NPCs[0]
	if id != "" {
		rec, ok := p.NPC(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNPCNotFound, id)
		}
		host = rec
	}
	if !host.Lifecycle.IsAlive {
		return nil, fmt.Errorf("%w: %s", ErrHostNotAlive, host.ID)
	}

	for _, rec := range p.NPCs {
		rec.Lifecycle.IsPlayableHost = rec == host
	}
	return host, nil
}

// Generate runs a complete, isolated generation: a fresh RNG seeded from
// seed, count records, and the relationship pass. Independent calls may run
// concurrently because each owns its RNG.
func Generate(tables *content.Tables, seed string, count int, opts Options, log *slog.Logger) (*Population, error) {
	gen, err := NewGenerator(tables, rng.NewString(seed), opts, log)
	if err != nil {
		return nil, err
	}
	npcs, err := gen.GeneratePopulation(count)
	if err != nil {
		return nil, fmt.Errorf("failed to generate population: %w", err)
	}
	return &Population{
		ID:            uuid.New(),
		Seed:          seed,
		SchemaVersion: SchemaVersion,
		Count:         len(npcs),
		CreatedAt:     time.Now().UTC(),
		NPCs:          npcs,
	}, nil
}
