package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

// ValidateResponse reports the validator verdict for one record.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateHandler checks a posted record against the schema and enums.
type ValidateHandler struct {
	log       *slog.Logger
	validator *npc.Validator
}

func NewValidateHandler(log *slog.Logger, tables *content.Tables) *ValidateHandler {
	return &ValidateHandler{
		log:       log,
		validator: npc.NewValidator(tables),
	}
}

func (h *ValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	var rec npc.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "Invalid record: "+err.Error())
		return
	}

	errs := h.validator.ValidateDetailed(&rec)
	if errs == nil {
		errs = []string{}
	}
	writeJSON(w, h.log, http.StatusOK, ValidateResponse{Valid: len(errs) == 0, Errors: errs})
}

// ContentCheckResponse lists referential problems in the loaded tables.
type ContentCheckResponse struct {
	OK          bool     `json:"ok"`
	Diagnostics []string `json:"diagnostics"`
}

// ContentHandler serves GET /v1/content/check.
type ContentHandler struct {
	log    *slog.Logger
	tables *content.Tables
}

func NewContentHandler(log *slog.Logger, tables *content.Tables) *ContentHandler {
	return &ContentHandler{log: log, tables: tables}
}

func (h *ContentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	diags := h.tables.Check()
	if diags == nil {
		diags = []string{}
	}
	writeJSON(w, h.log, http.StatusOK, ContentCheckResponse{OK: len(diags) == 0, Diagnostics: diags})
}
