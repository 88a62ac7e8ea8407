package storage

import (
	"log/slog"
	"os"
	"testing"

	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testPopulation(t *testing.T, seed string, count int) *npc.Population {
	t.Helper()
	tables, err := content.Default()
	if err != nil {
		t.Fatalf("failed to load content: %v", err)
	}
	pop, err := npc.Generate(tables, seed, count, npc.DefaultOptions(), testLogger())
	if err != nil {
		t.Fatalf("failed to generate population: %v", err)
	}
	return pop
}
