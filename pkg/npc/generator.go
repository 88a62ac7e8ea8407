// Package npc assembles NPC records from content tables and a seeded RNG,
// builds the relationship graph over a population, and validates records.
//
// A Generator owns one RNG. Every draw is globally ordered, so a Generator
// must not be shared by concurrent callers; give each run its own.
package npc

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/rng"
	"github.com/jwebster45206/npc-engine/pkg/stats"
)

// IDPrefix tags every generated record id.
const IDPrefix = "NPC_"

// Options are the tunable probabilities and constants of generation.
type Options struct {
	BiasMultiplier      float64 // weight multiplier for occupation-favoured traits
	TertiaryChance      float64
	InjuryChance        float64
	SingleInjuryChance  float64 // otherwise two injuries
	PackChance          float64 // per pack-pool entry
	MarkChance          float64 // distinguishing mark
	NameSuffixChance    float64
	NameSecondChance    float64
	AfflictionThreshold float64 // entropy exposure at or above this is afflicted
	FamilyOpinion       [2]int
	FriendChance        float64
	FriendOpinion       [2]int
	HomeFallback        string
	ClinicLocation      string
}

// DefaultOptions returns the tuning used by the authored content.
func DefaultOptions() Options {
	return Options{
		BiasMultiplier:      2,
		TertiaryChance:      0.3,
		InjuryChance:        0.25,
		SingleInjuryChance:  0.6,
		PackChance:          0.6,
		MarkChance:          0.3,
		NameSuffixChance:    0.65,
		NameSecondChance:    0.25,
		AfflictionThreshold: 0.05,
		FamilyOpinion:       [2]int{30, 70},
		FriendChance:        0.08,
		FriendOpinion:       [2]int{20, 60},
		HomeFallback:        "LOC_Apt_1A",
		ClinicLocation:      "LOC_Clinic",
	}
}

// Generator produces NPC records.
type Generator struct {
	tables    *content.Tables
	rng       *rng.RNG
	opts      Options
	log       *slog.Logger
	validator *Validator
}

// NewGenerator returns a Generator over tables. Incomplete tables are a
// configuration error.
func NewGenerator(tables *content.Tables, r *rng.RNG, opts Options, log *slog.Logger) (*Generator, error) {
	if tables == nil {
		return nil, fmt.Errorf("content tables cannot be nil")
	}
	if r == nil {
		return nil, fmt.Errorf("rng cannot be nil")
	}
	if err := tables.Require(); err != nil {
		return nil, fmt.Errorf("invalid content tables: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		tables:    tables,
		rng:       r,
		opts:      opts,
		log:       log,
		validator: NewValidator(tables),
	}, nil
}

// Reseed re-initializes the generator's RNG.
func (g *Generator) Reseed(seed uint32) {
	g.rng.Reseed(seed)
}

// ReseedString re-initializes the generator's RNG from a string seed.
func (g *Generator) ReseedString(seed string) {
	g.rng.ReseedString(seed)
}

// RNG exposes the generator's random source.
func (g *Generator) RNG() *rng.RNG {
	return g.rng
}

// Tables returns the content the generator draws from.
func (g *Generator) Tables() *content.Tables {
	return g.tables
}

// Validate reports whether rec passes every validator check.
func (g *Generator) Validate(rec *Record) bool {
	return g.validator.Validate(rec)
}

// ValidateDetailed lists every violation in rec.
func (g *Generator) ValidateDetailed(rec *Record) []string {
	return g.validator.ValidateDetailed(rec)
}

// GeneratePopulation assembles count records in index order and then runs
// the relationship pass once over the whole set.
func (g *Generator) GeneratePopulation(count int) ([]*Record, error) {
	if count < 0 {
		return nil, fmt.Errorf("population count must be non-negative, got %d", count)
	}

	pop := make([]*Record, 0, count)
	for i := 1; i <= count; i++ {
		rec, err := g.GenerateOne(i)
		if err != nil {
			return nil, fmt.Errorf("failed to generate NPC %d: %w", i, err)
		}
		pop = append(pop, rec)
	}
	if count == 0 {
		return pop, nil
	}

	if err := g.BuildRelationships(pop); err != nil {
		return nil, fmt.Errorf("failed to build relationships: %w", err)
	}

	g.log.Debug("Generated population", "count", count, "seed_state", g.rng.State())
	return pop, nil
}

// GenerateOne assembles a single record. The draw order is fixed; changing
// it changes every later record for the same seed.
func (g *Generator) GenerateOne(index int) (*Record, error) {
	occ, err := rng.Pick(g.rng, g.tables.Occupations)
	if err != nil {
		return nil, fmt.Errorf("pick occupation: %w", err)
	}

	traits, err := g.pickTraits(occ)
	if err != nil {
		return nil, err
	}

	base := g.jitterBase(occ.Base)
	traitMods := g.traitMods(traits)

	afflictions, err := g.generateInjuries()
	if err != nil {
		return nil, err
	}
	injuryMods := accumulateInjuryMods(afflictions)

	effective := stats.Effective(base, traitMods, injuryMods)
	derived := stats.Compute(effective, g.rng.IntRange(1, 6))

	inventory, err := g.generateEquipment()
	if err != nil {
		return nil, err
	}

	identity, err := g.generateIdentity()
	if err != nil {
		return nil, err
	}

	ward, err := rng.Pick(g.rng, g.tables.Enums.Wards)
	if err != nil {
		return nil, fmt.Errorf("pick ward: %w", err)
	}

	big5 := Big5{
		O: g.unitFloat(),
		C: g.unitFloat(),
		E: g.unitFloat(),
		A: g.unitFloat(),
		N: g.unitFloat(),
	}

	entropy := Entropy{
		Exposure:   g.unitFloat(),
		Resistance: g.unitFloat(),
	}

	vitals := Vitals{
		HP:      int(stats.RoundTo(float64(derived.HPMax)*0.6, 0)),
		Fatigue: g.rng.IntRange(0, 25),
		Stress:  g.rng.IntRange(0, 30),
	}

	schedule, err := g.generateSchedule(occ)
	if err != nil {
		return nil, err
	}

	tactic, err := rng.Pick(g.rng, g.tables.Enums.CombatTactics)
	if err != nil {
		return nil, fmt.Errorf("pick combat tactic: %w", err)
	}
	style, err := rng.Pick(g.rng, g.tables.Enums.DialogueStyles)
	if err != nil {
		return nil, fmt.Errorf("pick dialogue style: %w", err)
	}

	return &Record{
		ID:      FormatID(index),
		Version: SchemaVersion,
		Lifecycle: Lifecycle{
			IsAlive:            true,
			IsEntropyAfflicted: entropy.Exposure >= g.opts.AfflictionThreshold,
			IsPlayableHost:     true,
		},
		Identity: identity,
		Background: Background{
			OriginWard: ward,
			Occupation: occ.ID,
			Factions:   cloneStrings(occ.Factions),
		},
		Personality: Personality{
			Archetype: occ.ID,
			Traits:    traits,
			Big5:      big5,
		},
		Attributes: Attributes{
			Attributes: effective,
			Base:       base,
			TraitMods:  traitMods,
			Mods:       injuryMods,
		},
		Derived: derived,
		Conditions: Conditions{
			Vitals:      vitals,
			Bodymap:     g.bodymap(afflictions),
			Afflictions: afflictions,
		},
		Entropy:       entropy,
		Inventory:     inventory,
		Relationships: emptyRelationships(),
		Behavior: Behavior{
			Schedule:      schedule,
			CombatTactics: tactic,
			DialogueStyle: cloneStrings(style),
		},
		Debug: Debug{
			CreatedAt: g.rng.Timestamp(),
			Seed:      g.rng.State(),
		},
	}, nil
}

// FormatID renders the record id for a 1-based population index.
func FormatID(index int) string {
	return fmt.Sprintf("%s%04d", IDPrefix, index)
}

// jitterBase perturbs each base attribute by -1..+1 and clamps to [1,10].
func (g *Generator) jitterBase(base stats.Attributes) stats.Attributes {
	out := base
	for _, name := range stats.Names {
		out = out.With(name, base.Get(name)+g.rng.IntRange(-1, 1))
	}
	return out.Clamp(stats.BaseMin, stats.BaseMax)
}

func (g *Generator) bodymap(afflictions []Affliction) map[string]BodyPart {
	parts := make(map[string]BodyPart, len(g.tables.Enums.BodyParts))
	for _, p := range g.tables.Enums.BodyParts {
		parts[p] = BodyPart{Status: StatusOK}
	}
	for _, a := range afflictions {
		if _, ok := parts[a.Location]; ok {
			parts[a.Location] = BodyPart{Status: StatusInjured}
		}
	}
	return parts
}

// unitFloat draws a [0,1) value rounded to two decimals.
func (g *Generator) unitFloat() float64 {
	return stats.RoundTo(g.rng.Uniform(), 2)
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
