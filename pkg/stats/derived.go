package stats

import "math"

// Derived holds secondary statistics computed from effective attributes.
// InitiativeRoll records the one random term so the block can be recomputed.
type Derived struct {
	HPMax          int     `json:"hpMax"`
	StaminaMax     int     `json:"staminaMax"`
	CarryCap       int     `json:"carryCap"`
	MoveSpeed      float64 `json:"moveSpeed"`
	Initiative     int     `json:"initiative"`
	InitiativeRoll int     `json:"initiativeRoll"`
	Perception     int     `json:"perception"`
	ResistPain     int     `json:"resistPain"`
	ResistFear     int     `json:"resistFear"`
	ResistDisease  int     `json:"resistDisease"`
	CritChance     float64 `json:"critChance"`
}

// Compute derives the secondary stats from effective attributes and the
// d6 initiative roll.
func Compute(e Attributes, initiativeRoll int) Derived {
	return Derived{
		HPMax:          roundHalfUp(10 + float64(e.END)*1.5 + float64(e.FOR)*1.5),
		StaminaMax:     roundHalfUp(30 + float64(e.END)*2 + float64(e.AGI)*2),
		CarryCap:       roundHalfUp(10 + float64(e.STR)*4 + float64(e.END)),
		MoveSpeed:      roundTo(3+float64(e.AGI)*0.3, 2),
		Initiative:     e.AGI + e.WIS + initiativeRoll,
		InitiativeRoll: initiativeRoll,
		Perception:     roundHalfUp(40 + float64(e.WIS)*3 + float64(e.INT)),
		ResistPain:     roundHalfUp(30 + float64(e.FOR)*3 + float64(e.END)*2),
		ResistFear:     roundHalfUp(30 + float64(e.FOR)*3 + float64(e.WIS)*2),
		ResistDisease:  roundHalfUp(20 + float64(e.END)*3 + float64(e.WIS)),
		CritChance:     roundTo(0.05+float64(e.AGI+e.WIS)/400, 3),
	}
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	return roundTo(v, places)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
