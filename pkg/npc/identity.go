package npc

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/rng"
)

// generateIdentity draws name, pronouns, gender, species, age, height,
// build and appearance, in that order.
func (g *Generator) generateIdentity() (Identity, error) {
	e := g.tables.Enums
	var id Identity
	var err error

	if id.FullName, err = g.generateName(); err != nil {
		return Identity{}, err
	}
	if id.Pronouns, err = g.pick("pronouns", e.Pronouns); err != nil {
		return Identity{}, err
	}
	if id.GenderIdentity, err = g.pick("genders", e.Genders); err != nil {
		return Identity{}, err
	}
	if id.Species, err = g.pick("species", e.Species); err != nil {
		return Identity{}, err
	}
	id.Age = g.rng.IntRange(18, 70)
	id.HeightCm = g.rng.IntRange(150, 200)
	if id.Build, err = g.pick("builds", e.Builds); err != nil {
		return Identity{}, err
	}

	hairColor, err := g.pick("hairColors", e.HairColors)
	if err != nil {
		return Identity{}, err
	}
	hairLength, err := g.pick("hairLengths", e.HairLengths)
	if err != nil {
		return Identity{}, err
	}
	id.Appearance.Hair = hairColor + ", " + hairLength
	if id.Appearance.Eyes, err = g.pick("eyeColors", e.EyeColors); err != nil {
		return Identity{}, err
	}
	if id.Appearance.Skin, err = g.pick("skinTones", e.SkinTones); err != nil {
		return Identity{}, err
	}

	id.Appearance.DistinguishingMarks = []string{}
	if g.rng.Chance(g.opts.MarkChance) {
		mark, err := g.pick("distinguishingMarks", e.DistinguishingMarks)
		if err != nil {
			return Identity{}, err
		}
		id.Appearance.DistinguishingMarks = append(id.Appearance.DistinguishingMarks, mark)
	}

	return id, nil
}

// generateName builds a syllable name: prefix + middle, an optional suffix,
// and occasionally a second prefix+suffix part.
func (g *Generator) generateName() (string, error) {
	f := g.tables.Names
	var b strings.Builder

	for _, part := range []struct {
		name string
		pool []string
	}{{"prefixes", f.Prefixes}, {"middles", f.Middles}} {
		s, err := g.pick(part.name, part.pool)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}

	if g.rng.Chance(g.opts.NameSuffixChance) {
		s, err := g.pick("suffixes", f.Suffixes)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}

	if g.rng.Chance(g.opts.NameSecondChance) {
		prefix, err := g.pick("prefixes", f.Prefixes)
		if err != nil {
			return "", err
		}
		suffix, err := g.pick("suffixes", f.Suffixes)
		if err != nil {
			return "", err
		}
		b.WriteString(" " + prefix + suffix)
	}

	return b.String(), nil
}

func (g *Generator) pick(name string, pool []string) (string, error) {
	s, err := rng.Pick(g.rng, pool)
	if err != nil {
		return "", fmt.Errorf("pick %s: %w", name, err)
	}
	return s, nil
}
