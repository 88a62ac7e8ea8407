package npc

import (
	"errors"
	"testing"
)

func testPopulation(t *testing.T, seed string, count int) *Population {
	t.Helper()
	pop, err := Generate(testTables(t), seed, count, DefaultOptions(), testLogger())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return pop
}

func TestPopulation_SetHost(t *testing.T) {
	t.Run("empty id selects the first record", func(t *testing.T) {
		pop := testPopulation(t, "host-default", 4)
		if _, ok := pop.Host(); ok {
			t.Fatal("a fresh population should have no host")
		}

		host, err := pop.SetHost("")
		if err != nil {
			t.Fatalf("SetHost() error = %v", err)
		}
		if host != pop.NPCs[0] {
			t.Errorf("SetHost(\"\") picked %s, want %s", host.ID, pop.NPCs[0].ID)
		}
		if got, ok := pop.Host(); !ok || got != host {
			t.Errorf("Host() = %v, %v", got, ok)
		}
	})

	t.Run("moving the host clears the previous one", func(t *testing.T) {
		pop := testPopulation(t, "host-move", 4)
		if _, err := pop.SetHost(pop.NPCs[0].ID); err != nil {
			t.Fatalf("SetHost() error = %v", err)
		}
		if _, err := pop.SetHost(pop.NPCs[2].ID); err != nil {
			t.Fatalf("SetHost() error = %v", err)
		}

		hosts := 0
		for _, rec := range pop.NPCs {
			if rec.Lifecycle.IsPlayableHost {
				hosts++
			}
		}
		if hosts != 1 || !pop.NPCs[2].Lifecycle.IsPlayableHost {
			t.Errorf("%d hosts after move, want only %s", hosts, pop.NPCs[2].ID)
		}
	})

	t.Run("rejects unknown and dead records", func(t *testing.T) {
		pop := testPopulation(t, "host-errors", 3)
		if _, err := pop.SetHost(pop.NPCs[0].ID); err != nil {
			t.Fatalf("SetHost() error = %v", err)
		}

		if _, err := pop.SetHost("NPC_9999"); !errors.Is(err, ErrNPCNotFound) {
			t.Errorf("SetHost(unknown) error = %v, want ErrNPCNotFound", err)
		}
		pop.NPCs[1].Lifecycle.IsAlive = false
		if _, err := pop.SetHost(pop.NPCs[1].ID); !errors.Is(err, ErrHostNotAlive) {
			t.Errorf("SetHost(dead) error = %v, want ErrHostNotAlive", err)
		}
		if !pop.NPCs[0].Lifecycle.IsPlayableHost {
			t.Error("a failed SetHost should keep the existing host")
		}
	})

	t.Run("empty roster", func(t *testing.T) {
		pop := &Population{}
		if _, err := pop.SetHost(""); !errors.Is(err, ErrEmptyRoster) {
			t.Errorf("SetHost() error = %v, want ErrEmptyRoster", err)
		}
	})
}
