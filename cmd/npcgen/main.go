package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/logger"
	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	seed := flag.String("seed", cfg.Seed, "population seed")
	count := flag.Int("count", cfg.PopulationSize, "number of NPCs to generate")
	dataDir := flag.String("data", cfg.DataDir, "content directory (embedded tables when empty)")
	out := flag.String("out", "", "output file (stdout when empty)")
	flag.Parse()

	// Logs go to stderr so stdout stays pure JSON.
	log := logger.New(os.Stderr, cfg)

	if *count < 0 || *count > cfg.MaxPopulation {
		fmt.Fprintf(os.Stderr, "count must be between 0 and %d\n", cfg.MaxPopulation)
		os.Exit(1)
	}

	pop, err := run(*seed, *count, *dataDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generation failed: %v\n", err)
		os.Exit(1)
	}

	if *out == "" {
		err = writePopulation(os.Stdout, pop)
	} else {
		err = writeFile(*out, pop)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write population: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprint(os.Stderr, summary(pop))
}

func run(seed string, count int, dataDir string, log *slog.Logger) (*npc.Population, error) {
	tables, err := content.Load(dataDir)
	if err != nil {
		return nil, err
	}
	if err := tables.Require(); err != nil {
		return nil, err
	}
	for _, diag := range tables.Check() {
		log.Warn("Content check", "problem", diag)
	}

	pop, err := npc.Generate(tables, seed, count, npc.DefaultOptions(), log)
	if err != nil {
		return nil, err
	}
	if errs := npc.NewValidator(tables).ValidatePopulation(pop.NPCs); len(errs) > 0 {
		for _, msg := range errs {
			log.Error("Generated record failed validation", "problem", msg)
		}
		return nil, fmt.Errorf("%d validation problems in generated population", len(errs))
	}
	return pop, nil
}

// writeFile writes pop to path. Errors from Close are returned too.
func writeFile(path string, pop *npc.Population) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writePopulation(f, pop); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func writePopulation(w io.Writer, pop *npc.Population) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(pop)
}

// summary lists occupation head counts, most common first.
func summary(pop *npc.Population) string {
	counts := map[string]int{}
	injured := 0
	for _, rec := range pop.NPCs {
		counts[rec.Background.Occupation]++
		if len(rec.Conditions.Afflictions) > 0 {
			injured++
		}
	}

	occupations := make([]string, 0, len(counts))
	for o := range counts {
		occupations = append(occupations, o)
	}
	sort.Slice(occupations, func(i, j int) bool {
		if counts[occupations[i]] != counts[occupations[j]] {
			return counts[occupations[i]] > counts[occupations[j]]
		}
		return occupations[i] < occupations[j]
	})

	caser := cases.Title(language.English)
	s := fmt.Sprintf("Generated %d NPCs from seed %q (%d injured)\n", len(pop.NPCs), pop.Seed, injured)
	for _, o := range occupations {
		s += fmt.Sprintf("  %-12s %d\n", caser.String(o), counts[o])
	}
	return s
}
