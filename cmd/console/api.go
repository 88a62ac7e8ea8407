package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// CreatePopulationRequest matches the API request structure
type CreatePopulationRequest struct {
	Seed  string `json:"seed,omitempty"`
	Count int    `json:"count,omitempty"`
}

func createPopulation(client *http.Client, baseURL, seed string, count int) (*npc.Population, error) {
	jsonData, err := json.Marshal(CreatePopulationRequest{Seed: seed, Count: count})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/populations",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp.StatusCode, body, "failed to create population")
	}

	var pop npc.Population
	if err := json.Unmarshal(body, &pop); err != nil {
		return nil, fmt.Errorf("failed to parse population response: %w", err)
	}
	return &pop, nil
}

func getSheet(client *http.Client, baseURL string, popID uuid.UUID, npcID string) (*actor.Sheet, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/populations/%s/npcs/%s/sheet", baseURL, popID, npcID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to get sheet")
	}

	var sheet actor.Sheet
	if err := json.Unmarshal(body, &sheet); err != nil {
		return nil, fmt.Errorf("failed to parse sheet response: %w", err)
	}
	return &sheet, nil
}

func apiError(status int, body []byte, action string) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s: %s", action, errorResp.Error)
}
