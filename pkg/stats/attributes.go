// Package stats holds the seven core attributes and the derived-stat formulas.
package stats

import "math"

// Attribute names in their canonical draw order.
const (
	STR = "STR"
	AGI = "AGI"
	END = "END"
	FOR = "FOR"
	CHA = "CHA"
	INT = "INT"
	WIS = "WIS"
)

// Names lists the attributes in the order jitter is drawn.
var Names = []string{STR, AGI, END, FOR, CHA, INT, WIS}

const (
	BaseMin      = 1
	BaseMax      = 10
	EffectiveMin = 1
	EffectiveMax = 12
)

// Attributes is a block of the seven core attributes. The same type carries
// modifier deltas. Methods return new values and never mutate the receiver.
type Attributes struct {
	STR int `json:"STR" yaml:"STR"`
	AGI int `json:"AGI" yaml:"AGI"`
	END int `json:"END" yaml:"END"`
	FOR int `json:"FOR" yaml:"FOR"`
	CHA int `json:"CHA" yaml:"CHA"`
	INT int `json:"INT" yaml:"INT"`
	WIS int `json:"WIS" yaml:"WIS"`
}

// IsName reports whether name is one of the seven attributes.
func IsName(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Get returns the named attribute, or 0 for an unknown name.
func (a Attributes) Get(name string) int {
	switch name {
	case STR:
		return a.STR
	case AGI:
		return a.AGI
	case END:
		return a.END
	case FOR:
		return a.FOR
	case CHA:
		return a.CHA
	case INT:
		return a.INT
	case WIS:
		return a.WIS
	}
	return 0
}

// With returns a copy with the named attribute set to v.
func (a Attributes) With(name string, v int) Attributes {
	switch name {
	case STR:
		a.STR = v
	case AGI:
		a.AGI = v
	case END:
		a.END = v
	case FOR:
		a.FOR = v
	case CHA:
		a.CHA = v
	case INT:
		a.INT = v
	case WIS:
		a.WIS = v
	}
	return a
}

// Add returns the element-wise sum.
func (a Attributes) Add(b Attributes) Attributes {
	return Attributes{
		STR: a.STR + b.STR,
		AGI: a.AGI + b.AGI,
		END: a.END + b.END,
		FOR: a.FOR + b.FOR,
		CHA: a.CHA + b.CHA,
		INT: a.INT + b.INT,
		WIS: a.WIS + b.WIS,
	}
}

// Clamp returns a copy with every attribute bounded to [lo,hi].
func (a Attributes) Clamp(lo, hi int) Attributes {
	out := a
	for _, n := range Names {
		out = out.With(n, clamp(a.Get(n), lo, hi))
	}
	return out
}

// Map returns the block keyed by attribute name.
func (a Attributes) Map() map[string]int {
	m := make(map[string]int, len(Names))
	for _, n := range Names {
		m[n] = a.Get(n)
	}
	return m
}

// FromMap builds a block from a name-keyed map. Unknown keys are ignored.
func FromMap(m map[string]int) Attributes {
	var a Attributes
	for k, v := range m {
		a = a.With(k, a.Get(k)+v)
	}
	return a
}

// FromFloatMap builds a block from a mixed modifier map, keeping only the
// attribute keys and rounding them to whole numbers.
func FromFloatMap(m map[string]float64) Attributes {
	var a Attributes
	for k, v := range m {
		if !IsName(k) {
			continue
		}
		a = a.With(k, a.Get(k)+int(math.Round(v)))
	}
	return a
}

// Effective folds every modifier source onto base and clamps the result to
// the effective range.
func Effective(base Attributes, mods ...Attributes) Attributes {
	out := base
	for _, m := range mods {
		out = out.Add(m)
	}
	return out.Clamp(EffectiveMin, EffectiveMax)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
