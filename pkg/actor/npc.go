// Package actor adapts generated NPC records into d20 combat actors.
package actor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/npc-engine/pkg/npc"
	"github.com/jwebster45206/npc-engine/pkg/stats"
)

// BaseAC is the armor class of an unarmored NPC with AGI below 3.
const BaseAC = 10

// NPC is the runtime combat form of a generated record.
type NPC struct {
	Record *npc.Record
	Actor  *d20.Actor // Built at runtime from Record
}

// NewNPC wraps rec with a freshly built d20.Actor.
func NewNPC(rec *npc.Record) (*NPC, error) {
	actor, err := NewNPCActor(rec)
	if err != nil {
		return nil, err
	}
	return &NPC{Record: rec, Actor: actor}, nil
}

// NewNPCActor builds a d20.Actor from rec. Max HP comes from the derived
// block and current HP from the vitals.
func NewNPCActor(rec *npc.Record) (*d20.Actor, error) {
	if rec == nil {
		return nil, fmt.Errorf("record cannot be nil")
	}

	actor, err := d20.NewActor(rec.ID).
		WithHP(rec.Derived.HPMax).
		WithAC(ArmorClass(rec)).
		WithAttributes(Attributes(rec)).
		WithCombatModifiers(CombatModifiers(rec)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	hp := rec.Conditions.Vitals.HP
	if !rec.Lifecycle.IsAlive {
		hp = 0
	}
	if hp != rec.Derived.HPMax && hp >= 0 {
		if err := actor.SetHP(hp); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}
	return actor, nil
}

// ArmorClass is BaseAC plus a third of AGI, plus one for body armor.
func ArmorClass(rec *npc.Record) int {
	ac := BaseAC + rec.Attributes.AGI/3
	if rec.Inventory != nil && rec.Inventory.Slots[npc.SlotBody] != nil {
		ac++
	}
	return ac
}

// Attributes maps the effective attributes to lowercase keys and adds the
// derived perception and initiative scores.
func Attributes(rec *npc.Record) map[string]int {
	attrs := make(map[string]int, len(stats.Names)+2)
	for _, name := range stats.Names {
		attrs[strings.ToLower(name)] = rec.Attributes.Get(name)
	}
	attrs["perception"] = rec.Derived.Perception
	attrs["initiative"] = rec.Derived.Initiative
	return attrs
}

// CombatModifiers turns the attribute penalties of each affliction into
// named modifiers, e.g. "fractured_wrist_agi": -1. Non-attribute keys such
// as move_mult are ignored.
func CombatModifiers(rec *npc.Record) map[string]int {
	mods := map[string]int{}
	for _, a := range rec.Conditions.Afflictions {
		penalties := stats.FromFloatMap(a.Mods)
		for _, name := range stats.Names {
			if v := penalties.Get(name); v != 0 {
				mods[a.ID+"_"+strings.ToLower(name)] += v
			}
		}
	}
	return mods
}

// TakeDamage reduces HP by n, never below 0, and mirrors it into the record.
func (n *NPC) TakeDamage(amount int) error {
	if amount <= 0 {
		return nil
	}
	return n.setHP(max(n.Actor.HP()-amount, 0))
}

// Heal increases HP by amount, never above max HP.
func (n *NPC) Heal(amount int) error {
	if amount <= 0 {
		return nil
	}
	return n.setHP(min(n.Actor.HP()+amount, n.Actor.MaxHP()))
}

// IsDefeated reports whether HP has reached 0.
func (n *NPC) IsDefeated() bool {
	return n.Actor.HP() <= 0
}

func (n *NPC) setHP(hp int) error {
	if err := n.Actor.SetHP(hp); err != nil {
		return fmt.Errorf("failed to set HP: %w", err)
	}
	n.Record.Conditions.Vitals.HP = hp
	if hp == 0 {
		n.Record.Lifecycle.IsAlive = false
	}
	return nil
}

// Sheet is the serialized combat view of an NPC.
type Sheet struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Occupation      string         `json:"occupation"`
	HP              int            `json:"hp"`
	MaxHP           int            `json:"max_hp"`
	AC              int            `json:"ac"`
	Attributes      map[string]int `json:"attributes"`
	CombatModifiers map[string]int `json:"combat_modifiers,omitempty"`
	Tactics         string         `json:"tactics,omitempty"`
}

// Sheet reads the current runtime state from the Actor.
func (n *NPC) Sheet() Sheet {
	s := Sheet{
		ID:         n.Record.ID,
		Name:       n.Record.Identity.FullName,
		Occupation: n.Record.Background.Occupation,
		HP:         n.Actor.HP(),
		MaxHP:      n.Actor.MaxHP(),
		AC:         n.Actor.AC(),
		Attributes: make(map[string]int),
		Tactics:    n.Record.Behavior.CombatTactics,
	}
	for key := range Attributes(n.Record) {
		if val, ok := n.Actor.Attribute(key); ok {
			s.Attributes[key] = val
		}
	}
	if mods := n.Actor.GetCombatModifiers(); len(mods) > 0 {
		s.CombatModifiers = make(map[string]int, len(mods))
		for _, mod := range mods {
			s.CombatModifiers[mod.Reason] = mod.Value
		}
	}
	return s
}

// MarshalJSON renders the NPC as its Sheet.
func (n *NPC) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	if n.Actor == nil {
		return json.Marshal(n.Record)
	}
	return json.Marshal(n.Sheet())
}
