package npc

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/rng"
	"github.com/jwebster45206/npc-engine/pkg/stats"
)

// pickTraits draws the primary, secondary and optional tertiary traits.
// Primary is biased by the occupation; secondary is biased by the remaining
// bias ids and never repeats the primary; tertiary is unbiased and excludes
// both.
func (g *Generator) pickTraits(occ content.Occupation) ([]string, error) {
	all := g.tables.Traits

	primary, err := g.weightedTrait(all, occ.TraitBias)
	if err != nil {
		return nil, fmt.Errorf("pick primary trait: %w", err)
	}
	traits := []string{primary.ID}

	secondaryBias := slices.DeleteFunc(cloneStrings(occ.TraitBias), func(id string) bool {
		return id == primary.ID
	})
	secondary, err := g.weightedTrait(excludeTraits(all, traits), secondaryBias)
	if errors.Is(err, rng.ErrEmptyPool) {
		return traits, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pick secondary trait: %w", err)
	}
	traits = append(traits, secondary.ID)

	if !g.rng.Chance(g.opts.TertiaryChance) {
		return traits, nil
	}
	tertiary, err := g.weightedTrait(excludeTraits(all, traits), nil)
	if errors.Is(err, rng.ErrEmptyPool) {
		return traits, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pick tertiary trait: %w", err)
	}
	return append(traits, tertiary.ID), nil
}

// weightedTrait picks from pool with authored weights, multiplied for ids in bias.
func (g *Generator) weightedTrait(pool []content.Trait, bias []string) (content.Trait, error) {
	return rng.WeightedPick(g.rng, pool, func(t content.Trait) float64 {
		w := t.SelectionWeight()
		if slices.Contains(bias, t.ID) {
			w *= g.opts.BiasMultiplier
		}
		return w
	})
}

func excludeTraits(pool []content.Trait, ids []string) []content.Trait {
	out := make([]content.Trait, 0, len(pool))
	for _, t := range pool {
		if !slices.Contains(ids, t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// traitMods sums the attribute modifiers of the chosen traits.
func (g *Generator) traitMods(ids []string) stats.Attributes {
	var mods stats.Attributes
	for _, id := range ids {
		if t, ok := g.tables.Trait(id); ok {
			mods = mods.Add(stats.FromMap(t.Mods))
		}
	}
	return mods
}
