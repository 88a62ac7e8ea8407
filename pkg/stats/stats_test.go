package stats

import "testing"

func TestCompute(t *testing.T) {
	eff := Attributes{STR: 4, AGI: 5, END: 6, FOR: 7, CHA: 6, INT: 5, WIS: 7}
	got := Compute(eff, 3)
	want := Derived{
		HPMax:          30, // 29.5 rounds up
		StaminaMax:     52,
		CarryCap:       32,
		MoveSpeed:      4.5,
		Initiative:     15,
		InitiativeRoll: 3,
		Perception:     66,
		ResistPain:     63,
		ResistFear:     65,
		ResistDisease:  45,
		CritChance:     0.08,
	}
	if got != want {
		t.Errorf("Compute() = %+v, want %+v", got, want)
	}
}

func TestCompute_IsPure(t *testing.T) {
	eff := Attributes{STR: 12, AGI: 1, END: 12, FOR: 1, CHA: 3, INT: 9, WIS: 2}
	if Compute(eff, 6) != Compute(eff, 6) {
		t.Error("Compute() should return identical results for identical input")
	}
	if Compute(eff, 1).Initiative != eff.AGI+eff.WIS+1 {
		t.Error("initiative should be AGI + WIS + roll")
	}
}

func TestEffective_Clamps(t *testing.T) {
	base := Attributes{STR: 10, AGI: 1, END: 5, FOR: 5, CHA: 5, INT: 5, WIS: 5}
	traits := Attributes{STR: 3, AGI: -1}
	injury := Attributes{AGI: -1, END: -1}

	got := Effective(base, traits, injury)
	if got.STR != 12 {
		t.Errorf("STR = %d, want 12", got.STR)
	}
	if got.AGI != 1 {
		t.Errorf("AGI = %d, want 1", got.AGI)
	}
	if got.END != 4 {
		t.Errorf("END = %d, want 4", got.END)
	}
	if base.STR != 10 {
		t.Error("Effective() must not mutate its input")
	}
}

func TestFromMaps(t *testing.T) {
	a := FromMap(map[string]int{"CHA": -1, "FOR": 1, "luck": 4})
	if a != (Attributes{CHA: -1, FOR: 1}) {
		t.Errorf("FromMap() = %+v", a)
	}

	b := FromFloatMap(map[string]float64{"AGI": -1, "STR": -1, "melee_pct": -0.2})
	if b != (Attributes{AGI: -1, STR: -1}) {
		t.Errorf("FromFloatMap() = %+v", b)
	}
}

func TestMapRoundTrip(t *testing.T) {
	a := Attributes{STR: 1, AGI: 2, END: 3, FOR: 4, CHA: 5, INT: 6, WIS: 7}
	if FromMap(a.Map()) != a {
		t.Error("FromMap(a.Map()) should equal a")
	}
	if len(a.Map()) != len(Names) {
		t.Errorf("Map() has %d keys, want %d", len(a.Map()), len(Names))
	}
}
