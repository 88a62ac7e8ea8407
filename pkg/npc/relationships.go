package npc

import (
	"fmt"
	"slices"
)

const (
	tagFamily = "family"
	tagFriend = "friend"
)

// BuildRelationships resets and rebuilds the social graph of pop. Family
// clusters of 2-4 are drawn without replacement until fewer than two NPCs
// remain; then every unordered pair may become friends. Existing opinion
// entries are never overwritten.
func (g *Generator) BuildRelationships(pop []*Record) error {
	for _, rec := range pop {
		if rec == nil {
			return fmt.Errorf("population contains a nil record")
		}
		rec.Relationships = emptyRelationships()
	}

	pool := slices.Clone(pop)
	for len(pool) >= 2 {
		size := min(max(g.rng.IntRange(2, 4), 2), len(pool))
		cluster := make([]*Record, 0, size)
		for i := 0; i < size; i++ {
			idx := g.rng.IntRange(0, len(pool)-1)
			cluster = append(cluster, pool[idx])
			pool = slices.Delete(pool, idx, idx+1)
		}

		for _, a := range cluster {
			for _, b := range cluster {
				if a == b {
					continue
				}
				a.Relationships.Family = append(a.Relationships.Family, b.ID)
				a.Relationships.ByID[b.ID] = Relation{
					Opinion: g.rng.IntRange(g.opts.FamilyOpinion[0], g.opts.FamilyOpinion[1]),
					Tags:    []string{tagFamily},
				}
			}
		}
	}

	for i := 0; i < len(pop); i++ {
		for j := i + 1; j < len(pop); j++ {
			if !g.rng.Chance(g.opts.FriendChance) {
				continue
			}
			a, b := pop[i], pop[j]
			a.Relationships.Friends = append(a.Relationships.Friends, b.ID)
			b.Relationships.Friends = append(b.Relationships.Friends, a.ID)
			g.befriend(a, b)
			g.befriend(b, a)
		}
	}
	return nil
}

func (g *Generator) befriend(from, to *Record) {
	if _, ok := from.Relationships.ByID[to.ID]; ok {
		return
	}
	from.Relationships.ByID[to.ID] = Relation{
		Opinion: g.rng.IntRange(g.opts.FriendOpinion[0], g.opts.FriendOpinion[1]),
		Tags:    []string{tagFriend},
	}
}
