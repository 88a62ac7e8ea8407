// Package content holds the authored reference tables that drive NPC
// generation: enums, traits, occupations, injuries, items, equipment pools,
// schedules, locations and name fragments.
//
// Tables are read-only once loaded. Any number of generation runs may share
// one *Tables value.
package content

import (
	"github.com/jwebster45206/npc-engine/pkg/stats"
)

// Enums are the closed vocabularies used by the generator and the validator.
type Enums struct {
	BodyStatus          []string   `json:"bodyStatus" yaml:"bodyStatus"`
	BodyParts           []string   `json:"bodyParts" yaml:"bodyParts"`
	Species             []string   `json:"species" yaml:"species"`
	Genders             []string   `json:"genders" yaml:"genders"`
	Pronouns            []string   `json:"pronouns" yaml:"pronouns"`
	Wards               []string   `json:"wards" yaml:"wards"`
	Builds              []string   `json:"builds" yaml:"builds"`
	HairColors          []string   `json:"hairColors" yaml:"hairColors"`
	HairLengths         []string   `json:"hairLengths" yaml:"hairLengths"`
	EyeColors           []string   `json:"eyeColors" yaml:"eyeColors"`
	SkinTones           []string   `json:"skinTones" yaml:"skinTones"`
	DistinguishingMarks []string   `json:"distinguishingMarks" yaml:"distinguishingMarks"`
	CombatTactics       []string   `json:"combatTactics" yaml:"combatTactics"`
	DialogueStyles      [][]string `json:"dialogueStyles" yaml:"dialogueStyles"`
}

// Trait is a personality trait with attribute modifiers and a selection weight.
type Trait struct {
	ID     string         `json:"id" yaml:"id"`
	Tags   []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Mods   map[string]int `json:"mods,omitempty" yaml:"mods,omitempty"`
	Weight float64        `json:"weight,omitempty" yaml:"weight,omitempty"` // 0 means the default of 1
}

// SelectionWeight returns the authored weight, defaulting to 1.
func (t Trait) SelectionWeight() float64 {
	if t.Weight <= 0 {
		return 1
	}
	return t.Weight
}

// Occupation is an archetype supplying base attributes, trait bias and a schedule.
type Occupation struct {
	ID        string           `json:"id" yaml:"id"`
	Base      stats.Attributes `json:"base" yaml:"base"`
	TraitBias []string         `json:"traitBias,omitempty" yaml:"traitBias,omitempty"`
	Factions  []string         `json:"factions,omitempty" yaml:"factions,omitempty"`
	Schedule  string           `json:"schedule,omitempty" yaml:"schedule,omitempty"` // key into Tables.Schedules
}

// InjuryTemplate describes an affliction that can be issued to an NPC.
// Mods mixes whole-number attribute deltas (STR, AGI, ...) with other
// multipliers such as move_mult that are carried through untouched.
type InjuryTemplate struct {
	ID            string             `json:"id" yaml:"id"`
	Location      string             `json:"location" yaml:"location"`
	SeverityRange []float64          `json:"severityRange" yaml:"severityRange"`
	Mods          map[string]float64 `json:"mods,omitempty" yaml:"mods,omitempty"`
	Tags          []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
	DefaultTreat  []string           `json:"defaultTreat,omitempty" yaml:"defaultTreat,omitempty"`
}

// Item is a catalog entry. Only durability is ever copied into a record;
// everything else is looked up by id at use time.
type Item struct {
	ID         string   `json:"id" yaml:"id"`
	Type       string   `json:"type" yaml:"type"`
	Slot       string   `json:"slot,omitempty" yaml:"slot,omitempty"`
	Durability *float64 `json:"durability,omitempty" yaml:"durability,omitempty"`
	Stackable  bool     `json:"stackable,omitempty" yaml:"stackable,omitempty"`
}

// PackEntry is a candidate pack item with an inclusive quantity range.
type PackEntry struct {
	ID         string   `json:"id" yaml:"id"`
	Qty        []int    `json:"qty" yaml:"qty"`
	Durability *float64 `json:"durability,omitempty" yaml:"durability,omitempty"`
}

// EquipmentPools lists the candidate items per slot. A nil entry is an
// explicit "no item" outcome.
type EquipmentPools struct {
	ClothingBody  []*string   `json:"clothing_body" yaml:"clothing_body"`
	ClothingHands []*string   `json:"clothing_hands" yaml:"clothing_hands"`
	MainHand      []*string   `json:"mainHand" yaml:"mainHand"`
	Pack          []PackEntry `json:"pack" yaml:"pack"`
}

// ScheduleBlock is one recurring time block at a location.
type ScheduleBlock struct {
	Days  string `json:"days" yaml:"days"` // day range such as "Mon-Fri", or "*"
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	At    string `json:"at" yaml:"at"`
}

// Location is a place an NPC can be scheduled at.
type Location struct {
	ID          string   `json:"id" yaml:"id"`
	Residential bool     `json:"residential,omitempty" yaml:"residential,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// NameFragments feed the syllable name generator.
type NameFragments struct {
	Prefixes []string `json:"prefixes" yaml:"prefixes"`
	Middles  []string `json:"middles" yaml:"middles"`
	Suffixes []string `json:"suffixes" yaml:"suffixes"`
}

// Tables is the full set of authored content.
type Tables struct {
	Enums          Enums                      `json:"enums" yaml:"enums"`
	Traits         []Trait                    `json:"traits" yaml:"traits"`
	Occupations    []Occupation               `json:"occupations" yaml:"occupations"`
	Injuries       []InjuryTemplate           `json:"injuries" yaml:"injuries"`
	Items          []Item                     `json:"items" yaml:"items"`
	EquipmentPools EquipmentPools             `json:"equipmentPools" yaml:"equipmentPools"`
	Schedules      map[string][]ScheduleBlock `json:"schedules" yaml:"schedules"`
	Locations      []Location                 `json:"locations" yaml:"locations"`
	Names          NameFragments              `json:"names" yaml:"names"`
}

// Trait looks up a trait by id.
func (t *Tables) Trait(id string) (Trait, bool) {
	for _, tr := range t.Traits {
		if tr.ID == id {
			return tr, true
		}
	}
	return Trait{}, false
}

// Occupation looks up an occupation by id.
func (t *Tables) Occupation(id string) (Occupation, bool) {
	for _, o := range t.Occupations {
		if o.ID == id {
			return o, true
		}
	}
	return Occupation{}, false
}

// Item looks up an item by id.
func (t *Tables) Item(id string) (Item, bool) {
	for _, it := range t.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Location looks up a location by id.
func (t *Tables) Location(id string) (Location, bool) {
	for _, l := range t.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}

// ResidentialLocations returns the ids of locations flagged residential.
func (t *Tables) ResidentialLocations() []string {
	var ids []string
	for _, l := range t.Locations {
		if l.Residential {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// PublicLocations returns the ids of locations not flagged residential.
func (t *Tables) PublicLocations() []string {
	var ids []string
	for _, l := range t.Locations {
		if !l.Residential {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// LocationIDs returns every location id in authored order.
func (t *Tables) LocationIDs() []string {
	ids := make([]string, 0, len(t.Locations))
	for _, l := range t.Locations {
		ids = append(ids, l.ID)
	}
	return ids
}
