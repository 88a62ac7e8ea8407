package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/internal/logger"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/npc"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

const populationsPath = "/v1/populations"

// PopulationDefaults fill in what a create request leaves out.
type PopulationDefaults struct {
	Seed  string
	Count int
	Max   int
}

type PopulationHandler struct {
	log      *slog.Logger
	storage  storage.Storage
	tables   *content.Tables
	opts     npc.Options
	defaults PopulationDefaults
}

func NewPopulationHandler(log *slog.Logger, storage storage.Storage, tables *content.Tables, opts npc.Options, defaults PopulationDefaults) *PopulationHandler {
	return &PopulationHandler{
		log:      log,
		storage:  storage,
		tables:   tables,
		opts:     opts,
		defaults: defaults,
	}
}

// CreatePopulationRequest is the body of POST /v1/populations. Missing
// fields take the configured defaults.
type CreatePopulationRequest struct {
	Seed  *string `json:"seed,omitempty"`
	Count *int    `json:"count,omitempty"`
}

// SetHostRequest is the body of POST /v1/populations/{id}/host. An empty or
// missing npc_id selects the first NPC of the roster.
type SetHostRequest struct {
	NPCID string `json:"npc_id,omitempty"`
}

// PopulationSummary is one entry of GET /v1/populations.
type PopulationSummary struct {
	ID        uuid.UUID `json:"id"`
	Seed      string    `json:"seed"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
}

// ServeHTTP routes population requests:
// POST   /v1/populations                          - generate and store
// GET    /v1/populations                          - list stored populations
// GET    /v1/populations/{id}                     - read a population
// DELETE /v1/populations/{id}                     - delete a population
// GET    /v1/populations/{id}/npcs?occupation=    - list records, optionally by occupation
// GET    /v1/populations/{id}/host                - read the playable host
// POST   /v1/populations/{id}/host                - choose the playable host
// GET    /v1/populations/{id}/npcs/{npcID}        - read one record
// GET    /v1/populations/{id}/npcs/{npcID}/sheet  - read one record's combat sheet
func (h *PopulationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, populationsPath), "/")
	var parts []string
	if rest != "" {
		parts = strings.Split(rest, "/")
	}

	if len(parts) == 0 {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET")
		}
		return
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.log.Warn("Invalid population ID", "id", parts[0], "error", err)
		writeError(w, h.log, http.StatusBadRequest, "Invalid population ID format")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}
	case len(parts) == 2 && parts[1] == "npcs":
		if r.Method != http.MethodGet {
			writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
			return
		}
		h.handleListNPCs(w, r, id)
	case len(parts) == 2 && parts[1] == "host":
		switch r.Method {
		case http.MethodGet:
			h.handleGetHost(w, r, id)
		case http.MethodPost:
			h.handleSetHost(w, r, id)
		default:
			writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, POST")
		}
	case parts[1] == "npcs" && (len(parts) == 3 || len(parts) == 4 && parts[3] == "sheet"):
		if r.Method != http.MethodGet {
			writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
			return
		}
		h.handleNPC(w, r, id, parts[2], len(parts) == 4)
	default:
		writeError(w, h.log, http.StatusNotFound, "Not found")
	}
}

func (h *PopulationHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreatePopulationRequest
	if r.Body != nil && r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, h.log, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	seed := h.defaults.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	count := h.defaults.Count
	if req.Count != nil {
		count = *req.Count
	}
	if count < 0 || count > h.defaults.Max {
		writeError(w, h.log, http.StatusBadRequest, fmt.Sprintf("count must be between 0 and %d", h.defaults.Max))
		return
	}

	pop, err := npc.Generate(h.tables, seed, count, h.opts, h.log)
	if err != nil {
		h.log.Error("Failed to generate population", "error", err, "seed", seed, "count", count)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to generate population")
		return
	}

	if err := h.storage.SavePopulation(r.Context(), pop); err != nil {
		h.log.Error("Failed to save population", "error", err, "uuid", pop.ID)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to save population")
		return
	}

	logger.WithPopulation(h.log, pop.ID.String(), seed).Info("Population created", "count", pop.Count)
	writeJSON(w, h.log, http.StatusCreated, pop)
}

func (h *PopulationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.storage.ListPopulations(r.Context())
	if err != nil {
		h.log.Error("Failed to list populations", "error", err)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to list populations")
		return
	}

	// Initialize as empty slice instead of nil
	summaries := make([]PopulationSummary, 0, len(ids))
	for _, id := range ids {
		pop, err := h.storage.LoadPopulation(r.Context(), id)
		if err != nil {
			h.log.Warn("Failed to load population", "error", err, "uuid", id)
			continue
		}
		summaries = append(summaries, PopulationSummary{
			ID:        pop.ID,
			Seed:      pop.Seed,
			Count:     pop.Count,
			CreatedAt: pop.CreatedAt,
		})
	}
	writeJSON(w, h.log, http.StatusOK, summaries)
}

func (h *PopulationHandler) load(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*npc.Population, bool) {
	pop, err := h.storage.LoadPopulation(r.Context(), id)
	if errors.Is(err, storage.ErrPopulationNotFound) {
		writeError(w, h.log, http.StatusNotFound, "Population not found")
		return nil, false
	}
	if err != nil {
		h.log.Error("Failed to load population", "error", err, "uuid", id)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to load population")
		return nil, false
	}
	return pop, true
}

func (h *PopulationHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	pop, ok := h.load(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, h.log, http.StatusOK, pop)
}

func (h *PopulationHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeletePopulation(r.Context(), id); err != nil {
		h.log.Error("Failed to delete population", "error", err, "uuid", id)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to delete population")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PopulationHandler) handleNPC(w http.ResponseWriter, r *http.Request, id uuid.UUID, npcID string, sheet bool) {
	pop, ok := h.load(w, r, id)
	if !ok {
		return
	}
	rec, found := pop.NPC(npcID)
	if !found {
		writeError(w, h.log, http.StatusNotFound, "NPC not found")
		return
	}
	if !sheet {
		writeJSON(w, h.log, http.StatusOK, rec)
		return
	}

	combatant, err := actor.NewNPC(rec)
	if err != nil {
		h.log.Error("Failed to build actor", "error", err, "npc", npcID)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to build combat sheet")
		return
	}
	writeJSON(w, h.log, http.StatusOK, combatant)
}

func (h *PopulationHandler) handleListNPCs(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	occupation := r.URL.Query().Get("occupation")
	if occupation == "" {
		pop, ok := h.load(w, r, id)
		if !ok {
			return
		}
		writeJSON(w, h.log, http.StatusOK, pop.NPCs)
		return
	}

	recs, err := storage.NPCsByOccupation(r.Context(), h.storage, id, occupation)
	if errors.Is(err, storage.ErrPopulationNotFound) {
		writeError(w, h.log, http.StatusNotFound, "Population not found")
		return
	}
	if err != nil {
		h.log.Error("Failed to query NPCs", "error", err, "uuid", id, "occupation", occupation)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to query NPCs")
		return
	}
	writeJSON(w, h.log, http.StatusOK, recs)
}

func (h *PopulationHandler) handleGetHost(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	pop, ok := h.load(w, r, id)
	if !ok {
		return
	}
	host, found := pop.Host()
	if !found {
		writeError(w, h.log, http.StatusNotFound, "No playable host selected")
		return
	}
	writeJSON(w, h.log, http.StatusOK, host)
}

func (h *PopulationHandler) handleSetHost(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req SetHostRequest
	if r.Body != nil && r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, h.log, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	pop, ok := h.load(w, r, id)
	if !ok {
		return
	}

	host, err := pop.SetHost(req.NPCID)
	switch {
	case errors.Is(err, npc.ErrNPCNotFound):
		writeError(w, h.log, http.StatusNotFound, "NPC not found")
		return
	case errors.Is(err, npc.ErrHostNotAlive), errors.Is(err, npc.ErrEmptyRoster):
		writeError(w, h.log, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.log.Error("Failed to set host", "error", err, "uuid", id)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to set host")
		return
	}

	if err := h.storage.SavePopulation(r.Context(), pop); err != nil {
		h.log.Error("Failed to save population", "error", err, "uuid", id)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to save population")
		return
	}

	logger.WithPopulation(h.log, id.String(), pop.Seed).Info("Playable host selected", "npc", host.ID)
	writeJSON(w, h.log, http.StatusOK, host)
}
