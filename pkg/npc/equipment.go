package npc

import (
	"fmt"

	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/rng"
)

// generateEquipment draws credits, the three pooled slots and the pack.
func (g *Generator) generateEquipment() (*Inventory, error) {
	pools := g.tables.EquipmentPools
	credits := g.rng.IntRange(0, 80)

	body, err := g.drawSlot("clothing_body", pools.ClothingBody)
	if err != nil {
		return nil, err
	}
	hands, err := g.drawSlot("clothing_hands", pools.ClothingHands)
	if err != nil {
		return nil, err
	}

	// Inclusion is decided for every entry before any quantity is drawn.
	var included []content.PackEntry
	for _, entry := range pools.Pack {
		if g.rng.Chance(g.opts.PackChance) {
			included = append(included, entry)
		}
	}

	pack := []PackItem{}
	for _, entry := range included {
		if len(entry.Qty) != 2 {
			return nil, fmt.Errorf("pack entry %s has no quantity range", entry.ID)
		}
		item := PackItem{
			ID:  entry.ID,
			Qty: g.rng.IntRange(entry.Qty[0], entry.Qty[1]),
		}
		if entry.Durability != nil {
			item.Durability = copyFloat(entry.Durability)
		}
		pack = append(pack, item)
	}

	mainHand, err := g.drawSlot("mainHand", pools.MainHand)
	if err != nil {
		return nil, err
	}

	return &Inventory{
		Currency: Currency{Credits: credits},
		Slots: map[string]*EquippedItem{
			SlotHead:  nil,
			SlotBody:  body,
			SlotHands: hands,
			SlotBack:  nil,
			SlotLegs:  nil,
			SlotFeet:  nil,
		},
		Pack: pack,
		Equipped: map[string]*EquippedItem{
			SlotMainHand: mainHand,
			SlotOffHand:  nil,
		},
	}, nil
}

// drawSlot picks one entry from pool. A nil entry yields an empty slot.
func (g *Generator) drawSlot(name string, pool []*string) (*EquippedItem, error) {
	id, err := rng.Pick(g.rng, pool)
	if err != nil {
		return nil, fmt.Errorf("pick %s: %w", name, err)
	}
	if id == nil {
		return nil, nil
	}

	equipped := &EquippedItem{ID: *id}
	if item, ok := g.tables.Item(*id); ok && item.Durability != nil {
		equipped.Durability = copyFloat(item.Durability)
	}
	return equipped, nil
}

func copyFloat(f *float64) *float64 {
	v := *f
	return &v
}
