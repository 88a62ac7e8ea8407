package npc

import (
	"fmt"
	"slices"

	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/stats"
)

// minScheduleBlocks covers work, errand and home.
const minScheduleBlocks = 3

// Validator checks records against the schema and the authoritative enums.
// It never modifies what it checks.
type Validator struct {
	tables *content.Tables
}

// NewValidator returns a Validator bound to tables.
func NewValidator(tables *content.Tables) *Validator {
	return &Validator{tables: tables}
}

// Validate reports whether rec has no violations.
func (v *Validator) Validate(rec *Record) bool {
	return len(v.ValidateDetailed(rec)) == 0
}

// ValidateDetailed returns one message per violation; empty means valid.
func (v *Validator) ValidateDetailed(rec *Record) []string {
	if rec == nil {
		return []string{"NPC missing"}
	}

	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}
	e := v.tables.Enums

	if rec.Version != SchemaVersion {
		add("Version mismatch: %d != %d", rec.Version, SchemaVersion)
	}
	if rec.ID == "" {
		add("ID missing")
	}
	if !slices.Contains(e.Species, rec.Identity.Species) {
		add("Invalid species: %s", rec.Identity.Species)
	}
	if !slices.Contains(e.Wards, rec.Background.OriginWard) {
		add("Invalid ward: %s", rec.Background.OriginWard)
	}
	if !slices.Contains(e.Genders, rec.Identity.GenderIdentity) {
		add("Invalid gender: %s", rec.Identity.GenderIdentity)
	}
	if !slices.Contains(e.Pronouns, rec.Identity.Pronouns) {
		add("Invalid pronouns: %s", rec.Identity.Pronouns)
	}

	for _, name := range stats.Names {
		val := rec.Attributes.Get(name)
		if val < stats.EffectiveMin || val > stats.EffectiveMax {
			add("Attr %s out of range: %d", name, val)
		}
	}

	for _, part := range sortedKeys(rec.Conditions.Bodymap) {
		status := rec.Conditions.Bodymap[part].Status
		if !slices.Contains(e.BodyStatus, status) {
			add("Body status invalid for %s: %s", part, status)
		}
	}

	traits := rec.Personality.Traits
	if len(traits) > 3 {
		add("Too many traits: %d", len(traits))
	}
	for i, id := range traits {
		if slices.Index(traits, id) != i {
			add("Duplicate trait: %s", id)
		}
	}

	errs = append(errs, validateInventory(rec.Inventory)...)

	if len(rec.Behavior.Schedule) < minScheduleBlocks {
		add("Schedule has %d blocks, want at least %d", len(rec.Behavior.Schedule), minScheduleBlocks)
	}
	for i, b := range rec.Behavior.Schedule {
		if b.Days == "" || b.Start == "" || b.End == "" || b.At == "" {
			add("Schedule block %d is incomplete", i)
		}
	}

	return errs
}

func validateInventory(inv *Inventory) []string {
	if inv == nil {
		return []string{"Inventory missing"}
	}

	var errs []string
	if inv.Slots == nil {
		errs = append(errs, "Inventory.slots missing")
	} else {
		for _, slot := range WearSlots {
			if _, ok := inv.Slots[slot]; !ok {
				errs = append(errs, fmt.Sprintf("Inventory.slots.%s missing", slot))
			}
		}
	}
	if inv.Equipped == nil {
		errs = append(errs, "Inventory.equipped missing")
	} else {
		for _, slot := range HandSlots {
			if _, ok := inv.Equipped[slot]; !ok {
				errs = append(errs, fmt.Sprintf("Inventory.equipped.%s missing", slot))
			}
		}
	}
	if inv.Pack == nil {
		errs = append(errs, "Inventory.pack missing")
	}
	if inv.Currency.Credits < 0 {
		errs = append(errs, fmt.Sprintf("Inventory.currency negative: %d", inv.Currency.Credits))
	}
	return errs
}

// ValidatePopulation validates every record and then checks id uniqueness
// and that every relationship edge is mirrored with opinion entries on both
// sides.
func (v *Validator) ValidatePopulation(pop []*Record) []string {
	var errs []string
	byID := make(map[string]*Record, len(pop))
	hosts := 0

	for _, rec := range pop {
		for _, msg := range v.ValidateDetailed(rec) {
			id := "<nil>"
			if rec != nil {
				id = rec.ID
			}
			errs = append(errs, id+": "+msg)
		}
		if rec == nil {
			continue
		}
		if _, dup := byID[rec.ID]; dup {
			errs = append(errs, fmt.Sprintf("Duplicate id: %s", rec.ID))
		}
		byID[rec.ID] = rec
		if rec.Lifecycle.IsPlayableHost {
			hosts++
		}
	}
	if hosts > 1 {
		errs = append(errs, fmt.Sprintf("%d records are marked as the playable host", hosts))
	}

	for _, a := range pop {
		if a == nil {
			continue
		}
		rel := a.Relationships
		edges := []struct {
			kind string
			ids  []string
			back func(*Record) []string
		}{
			{"family", rel.Family, func(r *Record) []string { return r.Relationships.Family }},
			{"friends", rel.Friends, func(r *Record) []string { return r.Relationships.Friends }},
		}
		for _, edge := range edges {
			for _, id := range edge.ids {
				b, ok := byID[id]
				if !ok {
					errs = append(errs, fmt.Sprintf("%s: %s references unknown NPC %s", a.ID, edge.kind, id))
					continue
				}
				if !slices.Contains(edge.back(b), a.ID) {
					errs = append(errs, fmt.Sprintf("%s: %s edge to %s is not mirrored", a.ID, edge.kind, id))
				}
				if _, ok := rel.ByID[id]; !ok {
					errs = append(errs, fmt.Sprintf("%s: no opinion entry for %s", a.ID, id))
				}
			}
		}
	}

	return errs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
