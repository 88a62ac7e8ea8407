package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

func TestIDFormats(t *testing.T) {
	tests := []struct {
		id    string
		valid func(string) bool
		want  bool
	}{
		{"paramedic", isValidID, true},
		{"sprained_ankle", isValidID, true},
		{"Paramedic", isValidID, false},
		{"risk-averse", isValidID, true},
		{"bad id", isValidID, false},
		{"itm_bandage", isValidItemID, true},
		{"bandage", isValidItemID, false},
		{"LOC_AshSpire_Perimeter", isValidLocationID, true},
		{"loc_clinic", isValidLocationID, false},
	}
	for _, tt := range tests {
		if got := tt.valid(tt.id); got != tt.want {
			t.Errorf("format check of %q = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestValidateContent_Embedded(t *testing.T) {
	v := &Validator{}
	if err := v.validateContent(""); err != nil {
		t.Errorf("validateContent(embedded) error = %v", err)
	}
}

func TestValidateContent_PartialDir(t *testing.T) {
	dir := t.TempDir()
	body := `[{"id": "Calm-Trait"}]`
	if err := os.WriteFile(filepath.Join(dir, "traits.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write traits.json: %v", err)
	}

	v := &Validator{}
	err := v.validateContent(dir)
	if err == nil {
		t.Fatal("validateContent() should fail for a partial table set")
	}
	for _, want := range []string{"occupations", "trait ID 'Calm-Trait' has the wrong format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q: %v", want, err)
		}
	}
}

func writePopulation(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "population.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write population: %v", err)
	}
	return path
}

func TestValidatePopulationFile(t *testing.T) {
	tables, err := content.Default()
	if err != nil {
		t.Fatalf("content.Default() error = %v", err)
	}
	pop, err := npc.Generate(tables, "cli", 10, npc.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	v := &Validator{}
	if err := v.validatePopulationFile(writePopulation(t, pop), ""); err != nil {
		t.Errorf("envelope file error = %v", err)
	}
	if err := v.validatePopulationFile(writePopulation(t, pop.NPCs), ""); err != nil {
		t.Errorf("record array file error = %v", err)
	}

	pop.NPCs[3].Identity.Species = "dragon"
	err = v.validatePopulationFile(writePopulation(t, pop), "")
	if err == nil || !strings.Contains(err.Error(), "Invalid species: dragon") {
		t.Errorf("corrupted file error = %v", err)
	}

	pop.NPCs[3].Version = 7
	err = v.validatePopulationFile(writePopulation(t, pop), "")
	if err == nil || !strings.Contains(err.Error(), "unsupported schema version 7") {
		t.Errorf("future version error = %v", err)
	}
}

func TestValidatePopulationFile_Strict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.json")
	if err := os.WriteFile(path, []byte(`{"npcs": [], "extra": true}`), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	v := &Validator{}
	if err := v.validatePopulationFile(path, ""); err == nil {
		t.Error("unknown fields should be rejected")
	}
}
