package actor

import (
	"encoding/json"
	"testing"

	"github.com/jwebster45206/npc-engine/pkg/npc"
	"github.com/jwebster45206/npc-engine/pkg/stats"
)

func testRecord() *npc.Record {
	effective := stats.Attributes{STR: 4, AGI: 7, END: 6, FOR: 7, CHA: 6, INT: 4, WIS: 5}
	return &npc.Record{
		ID:      "NPC_0001",
		Version: npc.SchemaVersion,
		Identity: npc.Identity{
			FullName: "Kelbrin",
		},
		Background: npc.Background{Occupation: "paramedic"},
		Attributes: npc.Attributes{Attributes: effective},
		Derived:    stats.Compute(effective, 3),
		Conditions: npc.Conditions{
			Vitals: npc.Vitals{HP: 20},
			Afflictions: []npc.Affliction{
				{ID: "fractured_wrist", Mods: map[string]float64{"AGI": -1, "STR": -1, "melee_pct": -0.2}},
				{ID: "concussion_mild", Mods: map[string]float64{"INT": -1}},
			},
		},
		Inventory: &npc.Inventory{
			Slots: map[string]*npc.EquippedItem{
				npc.SlotBody: {ID: "itm_paramedic_vest"},
			},
		},
		Behavior:  npc.Behavior{CombatTactics: "defensive"},
		Lifecycle: npc.Lifecycle{IsAlive: true},
	}
}

func TestNewNPCActor(t *testing.T) {
	rec := testRecord()
	actor, err := NewNPCActor(rec)
	if err != nil {
		t.Fatalf("NewNPCActor() error = %v", err)
	}

	if actor.MaxHP() != rec.Derived.HPMax {
		t.Errorf("MaxHP() = %d, want %d", actor.MaxHP(), rec.Derived.HPMax)
	}
	if actor.HP() != 20 {
		t.Errorf("HP() = %d, want 20", actor.HP())
	}
	// 10 + 7/3 + 1 for the vest.
	if actor.AC() != 13 {
		t.Errorf("AC() = %d, want 13", actor.AC())
	}

	tests := []struct {
		key  string
		want int
	}{
		{"str", 4},
		{"agi", 7},
		{"wis", 5},
		{"perception", rec.Derived.Perception},
		{"initiative", rec.Derived.Initiative},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := actor.Attribute(tt.key)
			if !ok {
				t.Fatalf("Attribute(%q) missing", tt.key)
			}
			if got != tt.want {
				t.Errorf("Attribute(%q) = %d, want %d", tt.key, got, tt.want)
			}
		})
	}
}

func TestNewNPCActor_Nil(t *testing.T) {
	if _, err := NewNPCActor(nil); err == nil {
		t.Error("NewNPCActor(nil) should fail")
	}
}

func TestArmorClass(t *testing.T) {
	rec := testRecord()
	if got := ArmorClass(rec); got != 13 {
		t.Errorf("ArmorClass() = %d, want 13", got)
	}

	rec.Inventory.Slots[npc.SlotBody] = nil
	if got := ArmorClass(rec); got != 12 {
		t.Errorf("ArmorClass() without armor = %d, want 12", got)
	}

	rec.Inventory = nil
	rec.Attributes.AGI = 2
	if got := ArmorClass(rec); got != BaseAC {
		t.Errorf("ArmorClass() bare = %d, want %d", got, BaseAC)
	}
}

func TestCombatModifiers(t *testing.T) {
	rec := testRecord()
	rec.Conditions.Afflictions = append(rec.Conditions.Afflictions, npc.Affliction{
		ID:   "fractured_wrist",
		Mods: map[string]float64{"AGI": -1},
	})

	mods := CombatModifiers(rec)
	want := map[string]int{
		"fractured_wrist_agi": -2,
		"fractured_wrist_str": -1,
		"concussion_mild_int": -1,
	}
	if len(mods) != len(want) {
		t.Errorf("CombatModifiers() = %v, want %v", mods, want)
	}
	for k, v := range want {
		if mods[k] != v {
			t.Errorf("CombatModifiers()[%q] = %d, want %d", k, mods[k], v)
		}
	}
}

func TestNPC_DamageAndHeal(t *testing.T) {
	n, err := NewNPC(testRecord())
	if err != nil {
		t.Fatalf("NewNPC() error = %v", err)
	}

	t.Run("damage is mirrored into the record", func(t *testing.T) {
		if err := n.TakeDamage(5); err != nil {
			t.Fatalf("TakeDamage() error = %v", err)
		}
		if n.Actor.HP() != 15 || n.Record.Conditions.Vitals.HP != 15 {
			t.Errorf("HP = %d / vitals %d, want 15", n.Actor.HP(), n.Record.Conditions.Vitals.HP)
		}
	})

	t.Run("ignores non-positive amounts", func(t *testing.T) {
		if err := n.TakeDamage(-3); err != nil {
			t.Fatalf("TakeDamage() error = %v", err)
		}
		if err := n.Heal(0); err != nil {
			t.Fatalf("Heal() error = %v", err)
		}
		if n.Actor.HP() != 15 {
			t.Errorf("HP = %d, want 15", n.Actor.HP())
		}
	})

	t.Run("heal clamps at max", func(t *testing.T) {
		if err := n.Heal(1000); err != nil {
			t.Fatalf("Heal() error = %v", err)
		}
		if n.Actor.HP() != n.Actor.MaxHP() {
			t.Errorf("HP = %d, want max %d", n.Actor.HP(), n.Actor.MaxHP())
		}
		if n.IsDefeated() {
			t.Error("IsDefeated() = true at full HP")
		}
	})
}

func TestNewNPC_DeadRecordStaysDefeated(t *testing.T) {
	t.Run("rebuilt after damage to zero", func(t *testing.T) {
		n, err := NewNPC(testRecord())
		if err != nil {
			t.Fatalf("NewNPC() error = %v", err)
		}
		if err := n.TakeDamage(1000); err != nil {
			t.Fatalf("TakeDamage() error = %v", err)
		}
		if n.Record.Lifecycle.IsAlive || n.Record.Conditions.Vitals.HP != 0 {
			t.Fatalf("record after lethal damage: alive=%v hp=%d", n.Record.Lifecycle.IsAlive, n.Record.Conditions.Vitals.HP)
		}

		rebuilt, err := NewNPC(n.Record)
		if err != nil {
			t.Fatalf("NewNPC() rebuild error = %v", err)
		}
		if !rebuilt.IsDefeated() {
			t.Errorf("rebuilt NPC has HP %d, want defeated", rebuilt.Actor.HP())
		}
		if hp := rebuilt.Sheet().HP; hp != 0 {
			t.Errorf("Sheet().HP = %d, want 0", hp)
		}
	})

	t.Run("not alive overrides stored HP", func(t *testing.T) {
		rec := testRecord()
		rec.Lifecycle.IsAlive = false
		rebuilt, err := NewNPC(rec)
		if err != nil {
			t.Fatalf("NewNPC() error = %v", err)
		}
		if !rebuilt.IsDefeated() {
			t.Errorf("HP = %d for a record that is not alive, want 0", rebuilt.Actor.HP())
		}
	})
}

func TestNPC_MarshalJSON(t *testing.T) {
	n, err := NewNPC(testRecord())
	if err != nil {
		t.Fatalf("NewNPC() error = %v", err)
	}

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var sheet Sheet
	if err := json.Unmarshal(data, &sheet); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	if sheet.ID != "NPC_0001" || sheet.Name != "Kelbrin" || sheet.Occupation != "paramedic" {
		t.Errorf("sheet identity = %+v", sheet)
	}
	if sheet.HP != 20 || sheet.AC != 13 {
		t.Errorf("sheet HP/AC = %d/%d, want 20/13", sheet.HP, sheet.AC)
	}
	if sheet.Attributes["agi"] != 7 {
		t.Errorf("sheet agi = %d, want 7", sheet.Attributes["agi"])
	}
	if sheet.CombatModifiers["concussion_mild_int"] != -1 {
		t.Errorf("sheet combat modifiers = %v", sheet.CombatModifiers)
	}

	var nilNPC *NPC
	data, err = json.Marshal(nilNPC)
	if err != nil || string(data) != "null" {
		t.Errorf("json.Marshal(nil) = %s, %v", data, err)
	}
}
