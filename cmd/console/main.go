package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

type ConsoleConfig struct {
	APIBaseURL string // empty means generate locally
	Timeout    time.Duration
	Seed       string
	Count      int
	DataDir    string
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := &ConsoleConfig{Timeout: 30 * time.Second}
	flag.StringVar(&cfg.Seed, "seed", getEnv("NPC_SEED", "cod-default"), "population seed")
	flag.IntVar(&cfg.Count, "count", 20, "number of NPCs to generate")
	flag.StringVar(&cfg.DataDir, "data", os.Getenv("DATA_DIR"), "content directory (embedded tables when empty)")
	flag.StringVar(&cfg.APIBaseURL, "api", os.Getenv("API_BASE_URL"), "generate through a running API instead of locally")
	flag.Parse()

	var (
		pop    *npc.Population
		sheets sheetFunc
		err    error
	)
	if cfg.APIBaseURL != "" {
		client := &http.Client{Timeout: cfg.Timeout}
		if !testConnection(client, cfg.APIBaseURL) {
			fmt.Fprintf(os.Stderr, "Could not connect to API at %s. Please ensure the API is running.\n", cfg.APIBaseURL)
			os.Exit(1)
		}
		pop, err = createPopulation(client, cfg.APIBaseURL, cfg.Seed, cfg.Count)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create population: %v\n", err)
			os.Exit(1)
		}
		popID := pop.ID
		sheets = func(rec *npc.Record) (*actor.Sheet, error) {
			return getSheet(client, cfg.APIBaseURL, popID, rec.ID)
		}
	} else {
		pop, err = generateLocal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate population: %v\n", err)
			os.Exit(1)
		}
		sheets = localSheet
	}

	p := tea.NewProgram(NewConsoleUI(pop, sheets),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func generateLocal(cfg *ConsoleConfig) (*npc.Population, error) {
	tables, err := content.Load(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	if err := tables.Require(); err != nil {
		return nil, err
	}
	return npc.Generate(tables, cfg.Seed, cfg.Count, npc.DefaultOptions(), nil)
}

func localSheet(rec *npc.Record) (*actor.Sheet, error) {
	n, err := actor.NewNPC(rec)
	if err != nil {
		return nil, err
	}
	sheet := n.Sheet()
	return &sheet, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
