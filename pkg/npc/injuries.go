package npc

import (
	"fmt"
	"maps"

	"github.com/jwebster45206/npc-engine/pkg/rng"
	"github.com/jwebster45206/npc-engine/pkg/stats"
)

// generateInjuries issues zero, one or two afflictions. Templates are drawn
// uniformly and deep-copied.
func (g *Generator) generateInjuries() ([]Affliction, error) {
	afflictions := []Affliction{}
	if !g.rng.Chance(g.opts.InjuryChance) {
		return afflictions, nil
	}

	count := 2
	if g.rng.Chance(g.opts.SingleInjuryChance) {
		count = 1
	}

	for i := 0; i < count; i++ {
		tmpl, err := rng.Pick(g.rng, g.tables.Injuries)
		if err != nil {
			return nil, fmt.Errorf("pick injury: %w", err)
		}
		if len(tmpl.SeverityRange) != 2 {
			return nil, fmt.Errorf("injury %s has no severity range", tmpl.ID)
		}

		severity := stats.RoundTo(g.rng.FloatRange(tmpl.SeverityRange[0], tmpl.SeverityRange[1]), 2)
		mods := maps.Clone(tmpl.Mods)
		if mods == nil {
			mods = map[string]float64{}
		}
		afflictions = append(afflictions, Affliction{
			ID:        tmpl.ID,
			Location:  tmpl.Location,
			Onset:     g.rng.Timestamp(),
			Severity:  severity,
			Tags:      cloneStrings(tmpl.Tags),
			Mods:      mods,
			Treatment: cloneStrings(tmpl.DefaultTreat),
		})
	}
	return afflictions, nil
}

// accumulateInjuryMods sums the attribute part of every affliction's mods.
func accumulateInjuryMods(afflictions []Affliction) stats.Attributes {
	var mods stats.Attributes
	for _, a := range afflictions {
		mods = mods.Add(stats.FromFloatMap(a.Mods))
	}
	return mods
}
