package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

const (
	// PollInterval is how often to check API health while waiting
	PollInterval = 1 * time.Second
	// HealthTimeout is max time to wait for the API to report healthy
	HealthTimeout = 30 * time.Second
)

// PopulationSummary mirrors one entry of the population list.
type PopulationSummary struct {
	ID    uuid.UUID `json:"id"`
	Seed  string    `json:"seed"`
	Count int       `json:"count"`
}

// ValidateResponse mirrors the validate endpoint's body.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// StatusError is returned when the API answers with an unexpected status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned %d: %s", e.Status, e.Body)
}

// WaitForHealthy polls /health until it answers 200.
func WaitForHealthy(ctx context.Context, client *http.Client, baseURL string) error {
	timeout := time.After(HealthTimeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		if err := do(ctx, client, http.MethodGet, baseURL+"/health", nil, http.StatusOK, nil); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("timeout waiting for API health (waited %v)", HealthTimeout)
		case <-ticker.C:
		}
	}
}

// CreatePopulation generates and stores a population.
func CreatePopulation(ctx context.Context, client *http.Client, baseURL, seed string, count int, want int) (*npc.Population, error) {
	body := map[string]any{"seed": seed, "count": count}
	var pop npc.Population
	if err := do(ctx, client, http.MethodPost, baseURL+"/v1/populations", body, want, &pop); err != nil {
		return nil, err
	}
	return &pop, nil
}

// GetPopulation retrieves a stored population
func GetPopulation(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID, want int) (*npc.Population, error) {
	var pop npc.Population
	if err := do(ctx, client, http.MethodGet, fmt.Sprintf("%s/v1/populations/%s", baseURL, id), nil, want, &pop); err != nil {
		return nil, err
	}
	return &pop, nil
}

// ListPopulations retrieves the population list
func ListPopulations(ctx context.Context, client *http.Client, baseURL string, want int) ([]PopulationSummary, error) {
	var list []PopulationSummary
	if err := do(ctx, client, http.MethodGet, baseURL+"/v1/populations", nil, want, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetNPC retrieves one record of a population
func GetNPC(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID, npcID string, want int) (*npc.Record, error) {
	var rec npc.Record
	if err := do(ctx, client, http.MethodGet, fmt.Sprintf("%s/v1/populations/%s/npcs/%s", baseURL, id, npcID), nil, want, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetSheet retrieves the combat sheet of one record
func GetSheet(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID, npcID string, want int) (*actor.Sheet, error) {
	var sheet actor.Sheet
	if err := do(ctx, client, http.MethodGet, fmt.Sprintf("%s/v1/populations/%s/npcs/%s/sheet", baseURL, id, npcID), nil, want, &sheet); err != nil {
		return nil, err
	}
	return &sheet, nil
}

// ValidateRecord runs the validator endpoint on rec
func ValidateRecord(ctx context.Context, client *http.Client, baseURL string, rec *npc.Record, want int) (*ValidateResponse, error) {
	var resp ValidateResponse
	if err := do(ctx, client, http.MethodPost, baseURL+"/v1/validate", rec, want, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeletePopulation removes a stored population
func DeletePopulation(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID, want int) error {
	return do(ctx, client, http.MethodDelete, fmt.Sprintf("%s/v1/populations/%s", baseURL, id), nil, want, nil)
}

// do sends one request and decodes the response into out when the status
// is the wanted one and it is a success.
func do(ctx context.Context, client *http.Client, method, url string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		return &StatusError{Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil || want >= 300 || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
