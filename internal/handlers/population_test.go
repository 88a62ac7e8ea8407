package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	archive "github.com/jwebster45206/npc-engine/internal/storage"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/npc"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

func testTables(t *testing.T) *content.Tables {
	t.Helper()
	tables, err := content.Default()
	if err != nil {
		t.Fatalf("failed to load content: %v", err)
	}
	return tables
}

func newTestPopulationHandler(t *testing.T) (*PopulationHandler, *storage.MockStorage) {
	t.Helper()
	store := storage.NewMockStorage()
	h := NewPopulationHandler(testLogger(), store, testTables(t), npc.DefaultOptions(), PopulationDefaults{
		Seed:  "cod-default",
		Count: 5,
		Max:   50,
	})
	return h, store
}

func createPopulation(t *testing.T, h *PopulationHandler, body string) *npc.Population {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/populations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var pop npc.Population
	if err := json.NewDecoder(rr.Body).Decode(&pop); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return &pop
}

func TestPopulationHandler_Create(t *testing.T) {
	h, store := newTestPopulationHandler(t)

	pop := createPopulation(t, h, `{"seed":"test-seed-2","count":10}`)
	if pop.ID == uuid.Nil {
		t.Error("Expected non-nil population ID")
	}
	if pop.Seed != "test-seed-2" || pop.Count != 10 || len(pop.NPCs) != 10 {
		t.Errorf("population = seed %q count %d npcs %d", pop.Seed, pop.Count, len(pop.NPCs))
	}

	if _, err := store.LoadPopulation(t.Context(), pop.ID); err != nil {
		t.Errorf("population was not stored: %v", err)
	}
}

func TestPopulationHandler_CreateDefaults(t *testing.T) {
	h, _ := newTestPopulationHandler(t)

	pop := createPopulation(t, h, "")
	if pop.Seed != "cod-default" || pop.Count != 5 {
		t.Errorf("defaults not applied: seed %q count %d", pop.Seed, pop.Count)
	}

	again := createPopulation(t, h, `{}`)
	a, _ := json.Marshal(pop.NPCs)
	b, _ := json.Marshal(again.NPCs)
	if string(a) != string(b) {
		t.Error("the same seed should produce the same records across requests")
	}
}

func TestPopulationHandler_CreateErrors(t *testing.T) {
	h, _ := newTestPopulationHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"negative count", `{"count":-1}`},
		{"count above max", `{"count":51}`},
		{"malformed body", `{"count":`},
		{"unknown field", `{"seeds":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/populations", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestPopulationHandler_ReadListDelete(t *testing.T) {
	h, _ := newTestPopulationHandler(t)
	pop := createPopulation(t, h, `{"seed":"crud","count":3}`)
	path := "/v1/populations/" + pop.ID.String()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("read status = %d", rr.Code)
	}
	var read npc.Population
	if err := json.NewDecoder(rr.Body).Decode(&read); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if read.ID != pop.ID || len(read.NPCs) != 3 {
		t.Errorf("read = %s with %d npcs", read.ID, len(read.NPCs))
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/populations", nil))
	var list []PopulationSummary
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(list) != 1 || list[0].ID != pop.ID || list[0].Seed != "crud" {
		t.Errorf("list = %+v", list)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, path, nil))
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("read after delete status = %d, want 404", rr.Code)
	}
}

func TestPopulationHandler_NPC(t *testing.T) {
	h, _ := newTestPopulationHandler(t)
	pop := createPopulation(t, h, `{"seed":"npc","count":4}`)
	base := "/v1/populations/" + pop.ID.String() + "/npcs/"

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, base+"NPC_0002", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("npc status = %d", rr.Code)
	}
	var rec npc.Record
	if err := json.NewDecoder(rr.Body).Decode(&rec); err != nil {
		t.Fatalf("Failed to decode record: %v", err)
	}
	if rec.ID != "NPC_0002" {
		t.Errorf("id = %s, want NPC_0002", rec.ID)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, base+"NPC_0002/sheet", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("sheet status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var sheet actor.Sheet
	if err := json.NewDecoder(rr.Body).Decode(&sheet); err != nil {
		t.Fatalf("Failed to decode sheet: %v", err)
	}
	if sheet.ID != "NPC_0002" || sheet.MaxHP != rec.Derived.HPMax || sheet.HP != rec.Conditions.Vitals.HP {
		t.Errorf("sheet = %+v", sheet)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, base+"NPC_9999", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown npc status = %d, want 404", rr.Code)
	}
}

func TestPopulationHandler_BadRoutes(t *testing.T) {
	h, _ := newTestPopulationHandler(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"bad id", http.MethodGet, "/v1/populations/not-a-uuid", http.StatusBadRequest},
		{"unknown population", http.MethodGet, "/v1/populations/" + uuid.NewString(), http.StatusNotFound},
		{"put on collection", http.MethodPut, "/v1/populations", http.StatusMethodNotAllowed},
		{"post on item", http.MethodPost, "/v1/populations/" + uuid.NewString(), http.StatusMethodNotAllowed},
		{"unknown subresource", http.MethodGet, "/v1/populations/" + uuid.NewString() + "/pets", http.StatusNotFound},
		{"delete npc", http.MethodDelete, "/v1/populations/" + uuid.NewString() + "/npcs/NPC_0001", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func listNPCs(t *testing.T, h *PopulationHandler, path string) []*npc.Record {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var recs []*npc.Record
	if err := json.NewDecoder(rr.Body).Decode(&recs); err != nil {
		t.Fatalf("Failed to decode records: %v", err)
	}
	return recs
}

func TestPopulationHandler_ListNPCs(t *testing.T) {
	sqlite, err := archive.NewSQLiteStorage(filepath.Join(t.TempDir(), "npcs.db"), testLogger())
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	backends := map[string]storage.Storage{
		"memory": storage.NewMockStorage(),
		"sqlite": sqlite,
	}
	for name, store := range backends {
		t.Run(name, func(t *testing.T) {
			h := NewPopulationHandler(testLogger(), store, testTables(t), npc.DefaultOptions(), PopulationDefaults{Max: 50})
			pop := createPopulation(t, h, `{"seed":"occupations","count":25}`)
			base := "/v1/populations/" + pop.ID.String() + "/npcs"

			all := listNPCs(t, h, base)
			if len(all) != len(pop.NPCs) {
				t.Fatalf("listed %d records, want %d", len(all), len(pop.NPCs))
			}

			occupation := pop.NPCs[len(pop.NPCs)-1].Background.Occupation
			var want []string
			for _, rec := range pop.NPCs {
				if rec.Background.Occupation == occupation {
					want = append(want, rec.ID)
				}
			}
			var got []string
			for _, rec := range listNPCs(t, h, base+"?occupation="+url.QueryEscape(occupation)) {
				got = append(got, rec.ID)
			}
			assert.Equal(t, want, got)

			assert.Empty(t, listNPCs(t, h, base+"?occupation=astronaut"))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/populations/"+uuid.NewString()+"/npcs?occupation=medic", nil))
			if rr.Code != http.StatusNotFound {
				t.Errorf("unknown population status = %d, want 404", rr.Code)
			}
		})
	}
}

func TestPopulationHandler_Host(t *testing.T) {
	h, store := newTestPopulationHandler(t)
	pop := createPopulation(t, h, `{"seed":"host","count":4}`)
	path := "/v1/populations/" + pop.ID.String() + "/host"

	setHost := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("host before selection status = %d, want 404", rr.Code)
	}

	rr = setHost("")
	if rr.Code != http.StatusOK {
		t.Fatalf("default host status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var host npc.Record
	if err := json.NewDecoder(rr.Body).Decode(&host); err != nil {
		t.Fatalf("Failed to decode host: %v", err)
	}
	if host.ID != pop.NPCs[0].ID || !host.Lifecycle.IsPlayableHost {
		t.Errorf("default host = %s (host=%v), want %s", host.ID, host.Lifecycle.IsPlayableHost, pop.NPCs[0].ID)
	}

	if rr := setHost(`{"npc_id":"NPC_0003"}`); rr.Code != http.StatusOK {
		t.Fatalf("set host status = %d, body = %s", rr.Code, rr.Body.String())
	}
	stored, err := store.LoadPopulation(t.Context(), pop.ID)
	if err != nil {
		t.Fatalf("LoadPopulation() error = %v", err)
	}
	var hosts []string
	for _, rec := range stored.NPCs {
		if rec.Lifecycle.IsPlayableHost {
			hosts = append(hosts, rec.ID)
		}
	}
	assert.Equal(t, []string{"NPC_0003"}, hosts)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"NPC_0003"`) {
		t.Errorf("read host status = %d, body = %s", rr.Code, rr.Body.String())
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown npc", `{"npc_id":"NPC_9999"}`, http.StatusNotFound},
		{"unknown field", `{"npc":"NPC_0001"}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := setHost(tt.body); rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}

	stored.NPCs[1].Lifecycle.IsAlive = false
	if rr := setHost(`{"npc_id":"` + stored.NPCs[1].ID + `"}`); rr.Code != http.StatusConflict {
		t.Errorf("dead host status = %d, want 409", rr.Code)
	}
}
