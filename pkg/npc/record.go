package npc

import (
	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/stats"
)

// SchemaVersion is stamped on every record this generator produces.
const SchemaVersion = 1

// Inventory slot names.
const (
	SlotHead     = "head"
	SlotBody     = "body"
	SlotHands    = "hands"
	SlotBack     = "back"
	SlotLegs     = "legs"
	SlotFeet     = "feet"
	SlotMainHand = "mainHand"
	SlotOffHand  = "offHand"
)

// WearSlots are the worn-equipment slots every inventory carries.
var WearSlots = []string{SlotHead, SlotBody, SlotHands, SlotBack, SlotLegs, SlotFeet}

// HandSlots are the held-equipment slots every inventory carries.
var HandSlots = []string{SlotMainHand, SlotOffHand}

// Record is one generated NPC.
type Record struct {
	ID            string        `json:"id"`
	Version       int           `json:"version"`
	Lifecycle     Lifecycle     `json:"lifecycle"`
	Identity      Identity      `json:"identity"`
	Background    Background    `json:"background"`
	Personality   Personality   `json:"personality"`
	Attributes    Attributes    `json:"attributes"`
	Derived       stats.Derived `json:"derived"`
	Conditions    Conditions    `json:"conditions"`
	Entropy       Entropy       `json:"entropy"`
	Inventory     *Inventory    `json:"inventory"`
	Relationships Relationships `json:"relationships"`
	Behavior      Behavior      `json:"behavior"`
	Debug         Debug         `json:"debug"`
}

type Lifecycle struct {
	IsAlive            bool `json:"isAlive"`
	IsEntropyAfflicted bool `json:"isEntropyAfflicted"`
	IsPlayableHost     bool `json:"isPlayableHost"`
	IsDiscovered       bool `json:"isDiscovered"`
}

type Identity struct {
	FullName       string     `json:"fullName"`
	Age            int        `json:"age"`
	Pronouns       string     `json:"pronouns"`
	GenderIdentity string     `json:"genderIdentity"`
	Species        string     `json:"species"`
	HeightCm       int        `json:"heightCm"`
	Build          string     `json:"build"`
	Appearance     Appearance `json:"appearance"`
}

type Appearance struct {
	Hair                string   `json:"hair"`
	Eyes                string   `json:"eyes"`
	Skin                string   `json:"skin"`
	DistinguishingMarks []string `json:"distinguishingMarks"`
}

type Background struct {
	OriginWard string   `json:"originWard"`
	Occupation string   `json:"occupation"`
	Factions   []string `json:"factions"`
}

type Personality struct {
	Archetype string   `json:"archetype"`
	Traits    []string `json:"traits"`
	Big5      Big5     `json:"big5"`
}

// Big5 holds the five personality axes, each in [0,1].
type Big5 struct {
	O float64 `json:"O"`
	C float64 `json:"C"`
	E float64 `json:"E"`
	A float64 `json:"A"`
	N float64 `json:"N"`
}

// Attributes is the record's attribute block. The embedded values are the
// effective attributes. Base, TraitMods and Mods keep each modifier source
// separate; Mods holds the injury overlay only.
type Attributes struct {
	stats.Attributes
	Base      stats.Attributes `json:"base"`
	TraitMods stats.Attributes `json:"traitMods"`
	Mods      stats.Attributes `json:"mods"`
}

// Recompute folds the stored sources into effective attributes.
func (a Attributes) Recompute() stats.Attributes {
	return stats.Effective(a.Base, a.TraitMods, a.Mods)
}

type Conditions struct {
	Vitals      Vitals              `json:"vitals"`
	Bodymap     map[string]BodyPart `json:"bodymap"`
	Afflictions []Affliction        `json:"afflictions"`
}

type Vitals struct {
	HP       int `json:"hp"`
	Bleeding int `json:"bleeding"`
	Pain     int `json:"pain"`
	Fatigue  int `json:"fatigue"`
	Stress   int `json:"stress"`
}

type BodyPart struct {
	Status string `json:"status"`
}

// Affliction is an issued injury. Its slices and map are private copies of
// the template's, so later catalog edits never reach issued records.
type Affliction struct {
	ID        string             `json:"id"`
	Location  string             `json:"location"`
	Onset     string             `json:"onset"`
	Severity  float64            `json:"severity"`
	Tags      []string           `json:"tags"`
	Mods      map[string]float64 `json:"mods"`
	Treatment []string           `json:"treatment"`
}

type Entropy struct {
	Exposure   float64 `json:"exposure"`
	Resistance float64 `json:"resistance"`
}

// Inventory is what an NPC carries. Slots and Equipped always hold every
// slot key; a nil value means the slot is empty.
type Inventory struct {
	Currency Currency                 `json:"currency"`
	Slots    map[string]*EquippedItem `json:"slots"`
	Pack     []PackItem               `json:"pack"`
	Equipped map[string]*EquippedItem `json:"equipped"`
}

type Currency struct {
	Credits int `json:"credits"`
}

// EquippedItem references a catalog item by id and carries its durability.
type EquippedItem struct {
	ID         string   `json:"id"`
	Durability *float64 `json:"durability,omitempty"`
}

type PackItem struct {
	ID         string   `json:"id"`
	Qty        int      `json:"qty"`
	Durability *float64 `json:"durability,omitempty"`
}

// Relationships is filled in only by the population pass.
type Relationships struct {
	Family  []string            `json:"family"`
	Romance []string            `json:"romance"`
	Friends []string            `json:"friends"`
	Rivals  []string            `json:"rivals"`
	ByID    map[string]Relation `json:"byId"`
}

type Relation struct {
	Opinion int      `json:"opinion"`
	Tags    []string `json:"tags"`
}

func emptyRelationships() Relationships {
	return Relationships{
		Family:  []string{},
		Romance: []string{},
		Friends: []string{},
		Rivals:  []string{},
		ByID:    map[string]Relation{},
	}
}

type Behavior struct {
	Schedule      []content.ScheduleBlock `json:"schedule"`
	CombatTactics string                  `json:"combatTactics"`
	DialogueStyle []string                `json:"dialogueStyle"`
}

type Debug struct {
	CreatedAt string `json:"createdAt"`
	Seed      uint32 `json:"seed"`
}

// Body part statuses assigned by the generator.
const (
	StatusOK      = "ok"
	StatusInjured = "injured"
)
