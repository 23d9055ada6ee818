package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-backend/internal/adapter/postgres/flashcard"
	"github.com/flashdeck/flashdeck-backend/internal/domain"
)

// cardCatalog defines the read-only catalog access needed by CatalogHandler.
type cardCatalog interface {
	GetByID(ctx context.Context, cardID uuid.UUID) (*domain.Flashcard, error)
	List(ctx context.Context, filter flashcard.Filter, limit, offset int) ([]domain.Flashcard, int, error)
}

// CatalogHandler serves the read-only flashcard catalog endpoints.
type CatalogHandler struct {
	catalog cardCatalog
	log     *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(catalog cardCatalog, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: logger.With("handler", "catalog")}
}

type catalogListResponse struct {
	Cards []cardResponse `json:"cards"`
	Total int            `json:"total"`
}

// List handles GET /api/v1/cards with optional filters:
// category, difficulty, tag, q (substring search), limit, offset.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := flashcard.Filter{
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Search:   q.Get("q"),
	}
	if raw := q.Get("difficulty"); raw != "" {
		tier := domain.DifficultyLevel(raw)
		if !tier.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid difficulty")
			return
		}
		filter.Difficulty = tier
	}

	limit, err := queryInt(r, "limit", 50)
	if err != nil || limit < 0 || limit > 200 {
		writeError(w, http.StatusBadRequest, "limit must be an integer in [0, 200]")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	cards, total, err := h.catalog.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	out := catalogListResponse{Cards: make([]cardResponse, len(cards)), Total: total}
	for i, c := range cards {
		out.Cards[i] = toCardResponse(c)
	}

	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/cards/{id}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return
	}

	card, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCardResponse(*card))
}

func (h *CatalogHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
