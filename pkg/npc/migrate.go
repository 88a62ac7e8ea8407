package npc

import "fmt"

// Migrate upgrades rec to SchemaVersion. Version 1 is current, so it is
// returned unchanged; future schema bumps add their steps here.
func Migrate(rec *Record) (*Record, error) {
	if rec == nil {
		return nil, fmt.Errorf("record cannot be nil")
	}
	switch rec.Version {
	case SchemaVersion:
		return rec, nil
	default:
		return nil, fmt.Errorf("unsupported schema version %d for %s", rec.Version, rec.ID)
	}
}

// Migrate is the generator-bound form of the package-level Migrate.
func (g *Generator) Migrate(rec *Record) (*Record, error) {
	return Migrate(rec)
}
