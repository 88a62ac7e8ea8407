package npc

import (
	"slices"
	"testing"
)

func TestBuildRelationships_Symmetric(t *testing.T) {
	gen := newTestGenerator(t, "social", DefaultOptions())
	pop := generate(t, gen, 60)

	byID := map[string]*Record{}
	for _, rec := range pop {
		byID[rec.ID] = rec
	}

	for _, a := range pop {
		rel := a.Relationships
		if len(rel.Family) > 3 {
			t.Errorf("%s has %d family members, clusters are at most four", a.ID, len(rel.Family))
		}
		for _, id := range rel.Family {
			if id == a.ID {
				t.Errorf("%s is its own family", a.ID)
			}
			if !slices.Contains(byID[id].Relationships.Family, a.ID) {
				t.Errorf("family %s -> %s is not mirrored", a.ID, id)
			}
			r, ok := rel.ByID[id]
			if !ok {
				t.Errorf("%s has no opinion of family %s", a.ID, id)
				continue
			}
			if r.Opinion < 30 || r.Opinion > 70 || !slices.Equal(r.Tags, []string{"family"}) {
				t.Errorf("%s family opinion of %s = %+v", a.ID, id, r)
			}
		}
		for _, id := range rel.Friends {
			if !slices.Contains(byID[id].Relationships.Friends, a.ID) {
				t.Errorf("friend %s -> %s is not mirrored", a.ID, id)
			}
			if _, ok := rel.ByID[id]; !ok {
				t.Errorf("%s has no opinion of friend %s", a.ID, id)
			}
		}
		if len(rel.Romance) != 0 || len(rel.Rivals) != 0 {
			t.Errorf("%s should have no romance or rivals", a.ID)
		}
	}
}

func TestBuildRelationships_FamilyClustersAreDisjoint(t *testing.T) {
	gen := newTestGenerator(t, "clusters", DefaultOptions())
	pop := generate(t, gen, 45)

	byID := map[string]*Record{}
	for _, rec := range pop {
		byID[rec.ID] = rec
	}

	alone := 0
	for _, a := range pop {
		if len(a.Relationships.Family) == 0 {
			alone++
			continue
		}
		// Everyone in a's cluster sees exactly the same cluster.
		cluster := append(slices.Clone(a.Relationships.Family), a.ID)
		slices.Sort(cluster)
		for _, id := range a.Relationships.Family {
			other := append(slices.Clone(byID[id].Relationships.Family), id)
			slices.Sort(other)
			if !slices.Equal(cluster, other) {
				t.Errorf("%s and %s disagree on their family: %v vs %v", a.ID, id, cluster, other)
			}
		}
	}
	if alone > 1 {
		t.Errorf("%d NPCs without family, at most one can be left over", alone)
	}
}

func TestBuildRelationships_Pair(t *testing.T) {
	gen := newTestGenerator(t, "pair", DefaultOptions())
	pop := generate(t, gen, 2)

	a, b := pop[0], pop[1]
	if !slices.Equal(a.Relationships.Family, []string{b.ID}) || !slices.Equal(b.Relationships.Family, []string{a.ID}) {
		t.Errorf("two NPCs should form one family: %v / %v", a.Relationships.Family, b.Relationships.Family)
	}
}

func TestBuildRelationships_FriendsKeepFamilyOpinion(t *testing.T) {
	opts := DefaultOptions()
	opts.FriendChance = 1
	gen := newTestGenerator(t, "everyone-friends", opts)
	pop := generate(t, gen, 8)

	for _, a := range pop {
		if len(a.Relationships.Friends) != len(pop)-1 {
			t.Errorf("%s has %d friends, want %d", a.ID, len(a.Relationships.Friends), len(pop)-1)
		}
		for _, id := range a.Relationships.Friends {
			want := "friend"
			if slices.Contains(a.Relationships.Family, id) {
				want = "family"
			}
			if tags := a.Relationships.ByID[id].Tags; !slices.Equal(tags, []string{want}) {
				t.Errorf("%s opinion of %s tags = %v, want [%s]", a.ID, id, tags, want)
			}
		}
	}
}

func TestBuildRelationships_Resets(t *testing.T) {
	gen := newTestGenerator(t, "rebuild", DefaultOptions())
	pop := generate(t, gen, 10)

	if err := gen.BuildRelationships(pop); err != nil {
		t.Fatalf("BuildRelationships() error = %v", err)
	}
	for _, rec := range pop {
		if len(rec.Relationships.Family) > 3 {
			t.Errorf("%s family grew to %d after a rebuild", rec.ID, len(rec.Relationships.Family))
		}
		seen := map[string]bool{}
		for _, id := range rec.Relationships.Friends {
			if seen[id] {
				t.Errorf("%s lists friend %s twice", rec.ID, id)
			}
			seen[id] = true
		}
	}
	if errs := NewValidator(gen.Tables()).ValidatePopulation(pop); len(errs) != 0 {
		t.Errorf("ValidatePopulation() after rebuild = %v", errs)
	}

	if err := gen.BuildRelationships([]*Record{pop[0], nil}); err == nil {
		t.Error("BuildRelationships() should reject nil records")
	}
}
