package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/habmon/habmon/internal/api/types"
	"github.com/habmon/habmon/internal/api/validators"
	"github.com/habmon/habmon/internal/apperr"
	"github.com/habmon/habmon/internal/models"
	"github.com/habmon/habmon/internal/services/resources"
	"github.com/habmon/habmon/internal/util"
)

// ResourceService is the part of the resources engine the API exposes.
type ResourceService interface {
	ListForDashboard(ctx context.Context) ([]models.ResourceCard, error)
	Stats(ctx context.Context) (models.ResourceStats, error)
	GetByCode(ctx context.Context, code string) (*models.ResourceCard, error)
	GetByStatusID(ctx context.Context, id string) (*models.ResourceCard, error)
	Create(ctx context.Context, input resources.CreateResourceInput) (*models.ResourceCard, error)
	Update(ctx context.Context, code string, input resources.UpdateResourceInput) (*models.ResourceCard, error)
	Delete(ctx context.Context, code string) error
	History(ctx context.Context, code string, from, to *time.Time) ([]models.HistoryPoint, error)
	UpdatePopulation(ctx context.Context, population float64) (*models.PopulationUpdate, error)
	PopulationLog(ctx context.Context, limit int) ([]models.ColonyState, error)
	Kinds(ctx context.Context) ([]*models.ResourceKind, error)
}

// defaultPopulationLogLimit is used when the limit query parameter is absent.
const defaultPopulationLogLimit = 50

// ResourcesHandler serves the resource, history and population endpoints.
type ResourcesHandler struct {
	svc    ResourceService
	logger *slog.Logger
}

// NewResourcesHandler creates a handler over svc. A nil logger means
// slog.Default.
func NewResourcesHandler(svc ResourceService, logger *slog.Logger) *ResourcesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResourcesHandler{svc: svc, logger: logger}
}

// List returns every resource card.
func (h *ResourcesHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.ListForDashboard(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeList(w, r, cards)
}

// Stats returns the aggregate counts.
func (h *ResourcesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, stats)
}

// Get returns the card for the code in the path.
func (h *ResourcesHandler) Get(w http.ResponseWriter, r *http.Request) {
	card, err := h.svc.GetByCode(r.Context(), codeParam(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, card)
}

// GetByID returns the card for a status id. Malformed ids are rejected
// before the lookup.
func (h *ResourcesHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := util.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, apperr.Invalid("%v", err).WithMeta("field", "id"))
		return
	}
	card, err := h.svc.GetByStatusID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, card)
}

// Create adds a resource and responds 201 with its card.
func (h *ResourcesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.CreateResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := validators.Struct(req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	card, err := h.svc.Create(r.Context(), req.Input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusCreated, card)
}

// Update applies a partial update to the resource in the path.
func (h *ResourcesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := validators.Struct(req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	card, err := h.svc.Update(r.Context(), codeParam(r), req.Input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, card)
}

// Delete removes the resource in the path and responds 204.
func (h *ResourcesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), codeParam(r)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History returns a resource's history as JSON, or as CSV when the client
// asks for text/csv or passes format=csv.
func (h *ResourcesHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseTimeParam(q.Get("from"), "from")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	to, err := parseTimeParam(q.Get("to"), "to")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	code := codeParam(r)
	points, err := h.svc.History(r.Context(), code, from, to)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if wantsCSV(r) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ToLower(code)+`-history.csv"`)
		if err := resources.WriteHistoryCSV(w, code, points); err != nil {
			h.logger.Error("writing history csv", "code", code, "error", err)
		}
		return
	}
	writeList(w, r, points)
}

// UpdatePopulation records a new colony population.
func (h *ResourcesHandler) UpdatePopulation(w http.ResponseWriter, r *http.Request) {
	var req types.UpdatePopulationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := validators.Struct(req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	update, err := h.svc.UpdatePopulation(r.Context(), *req.Population)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, update)
}

// PopulationLog returns the most recent population entries, newest first.
func (h *ResourcesHandler) PopulationLog(w http.ResponseWriter, r *http.Request) {
	limit := defaultPopulationLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, r, h.logger, apperr.Invalid("limit must be a positive integer").WithMeta("field", "limit"))
			return
		}
		limit = n
	}
	states, err := h.svc.PopulationLog(r.Context(), limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeList(w, r, states)
}

// Kinds returns every resource kind, including kinds of deleted resources.
func (h *ResourcesHandler) Kinds(w http.ResponseWriter, r *http.Request) {
	kinds, err := h.svc.Kinds(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeList(w, r, kinds)
}

func codeParam(r *http.Request) string {
	return models.NormalizeCode(chi.URLParam(r, "code"))
}

func parseTimeParam(v, name string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, apperr.Invalid("%s must be an RFC3339 timestamp", name).WithMeta("field", name)
	}
	return &t, nil
}

func wantsCSV(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/csv")
}
