package content

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jwebster45206/npc-engine/pkg/stats"
)

// Check reports referential and range problems in the tables. The
// diagnostics are advisory; generation does not depend on them.
func (t *Tables) Check() []string {
	var out []string
	add := func(format string, args ...any) {
		out = append(out, fmt.Sprintf(format, args...))
	}

	itemIDs := idSet(len(t.Items), func(i int) string { return t.Items[i].ID })
	locIDs := idSet(len(t.Locations), func(i int) string { return t.Locations[i].ID })
	traitIDs := idSet(len(t.Traits), func(i int) string { return t.Traits[i].ID })
	parts := make(map[string]bool, len(t.Enums.BodyParts))
	for _, p := range t.Enums.BodyParts {
		parts[p] = true
	}

	for _, d := range duplicates(len(t.Traits), func(i int) string { return t.Traits[i].ID }) {
		add("traits: duplicate id %s", d)
	}
	for _, d := range duplicates(len(t.Occupations), func(i int) string { return t.Occupations[i].ID }) {
		add("occupations: duplicate id %s", d)
	}
	for _, d := range duplicates(len(t.Injuries), func(i int) string { return t.Injuries[i].ID }) {
		add("injuries: duplicate id %s", d)
	}
	for _, d := range duplicates(len(t.Items), func(i int) string { return t.Items[i].ID }) {
		add("items: duplicate id %s", d)
	}
	for _, d := range duplicates(len(t.Locations), func(i int) string { return t.Locations[i].ID }) {
		add("locations: duplicate id %s", d)
	}

	for _, tr := range t.Traits {
		if tr.Weight < 0 {
			add("traits.%s: negative weight %v", tr.ID, tr.Weight)
		}
		for k := range tr.Mods {
			if !stats.IsName(k) {
				add("traits.%s: unknown attribute %s", tr.ID, k)
			}
		}
	}

	for _, o := range t.Occupations {
		for _, id := range o.TraitBias {
			if !traitIDs[id] {
				add("occupations.%s: unknown bias trait %s", o.ID, id)
			}
		}
		if o.Schedule != "" {
			if _, ok := t.Schedules[o.Schedule]; !ok {
				add("occupations.%s: unknown schedule %s", o.ID, o.Schedule)
			}
		}
	}

	for _, inj := range t.Injuries {
		if len(inj.SeverityRange) != 2 {
			add("injuries.%s: severityRange needs two values", inj.ID)
		} else if inj.SeverityRange[0] > inj.SeverityRange[1] {
			add("injuries.%s: severityRange min %v exceeds max %v", inj.ID, inj.SeverityRange[0], inj.SeverityRange[1])
		}
		if len(parts) > 0 && !parts[inj.Location] {
			add("injuries.%s: unknown body part %s", inj.ID, inj.Location)
		}
	}

	for _, it := range t.Items {
		if it.Durability != nil && (*it.Durability < 0 || *it.Durability > 1) {
			add("items.%s: durability %v outside [0,1]", it.ID, *it.Durability)
		}
	}

	pools := []struct {
		name string
		ids  []*string
	}{
		{"clothing_body", t.EquipmentPools.ClothingBody},
		{"clothing_hands", t.EquipmentPools.ClothingHands},
		{"mainHand", t.EquipmentPools.MainHand},
	}
	for _, pool := range pools {
		for _, id := range pool.ids {
			if id != nil && !itemIDs[*id] {
				add("equipmentPools.%s: unknown item %s", pool.name, *id)
			}
		}
	}
	for _, p := range t.EquipmentPools.Pack {
		if !itemIDs[p.ID] {
			add("equipmentPools.pack: unknown item %s", p.ID)
		}
		if len(p.Qty) != 2 {
			add("equipmentPools.pack.%s: qty needs two values", p.ID)
		} else if p.Qty[0] > p.Qty[1] {
			add("equipmentPools.pack.%s: qty min %d exceeds max %d", p.ID, p.Qty[0], p.Qty[1])
		}
	}

	for _, key := range slices.Sorted(maps.Keys(t.Schedules)) {
		for _, b := range t.Schedules[key] {
			if !locIDs[b.At] {
				add("schedules.%s: unknown location %s", key, b.At)
			}
			if b.Days == "" || b.Start == "" || b.End == "" {
				add("schedules.%s: block at %s is missing days or times", key, b.At)
			}
		}
	}

	return out
}

func idSet(n int, id func(int) string) map[string]bool {
	set := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		set[id(i)] = true
	}
	return set
}

func duplicates(n int, id func(int) string) []string {
	seen := make(map[string]bool, n)
	var dups []string
	for i := 0; i < n; i++ {
		v := id(i)
		if seen[v] {
			dups = append(dups, v)
		}
		seen[v] = true
	}
	return dups
}
