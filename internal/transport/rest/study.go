package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
	"github.com/flashdeck/flashdeck-backend/internal/service/study"
)

// studyService defines the minimal interface needed by StudyHandler.
type studyService interface {
	GetStudyQueue(ctx context.Context, input study.GetQueueInput) ([]study.QueueItem, error)
	ReviewCard(ctx context.Context, input study.ReviewCardInput) (*domain.ProgressRecord, error)
	SkipCard(ctx context.Context, input study.SkipCardInput) error
	StartSession(ctx context.Context) (*domain.StudySession, error)
	GetActiveSession(ctx context.Context) (*domain.StudySession, error)
	FinishActiveSession(ctx context.Context) (*domain.StudySession, error)
	AbandonSession(ctx context.Context) error
	GetSessionHistory(ctx context.Context, input study.SessionHistoryInput) ([]*domain.StudySession, int, error)
	GetDashboard(ctx context.Context) (domain.Dashboard, error)
	RecommendDifficulty(ctx context.Context) (domain.DifficultyLevel, error)
	AdaptiveQueue(ctx context.Context, input study.AdaptiveQueueInput) ([]domain.Flashcard, error)
}

// StudyHandler serves the study REST endpoints.
type StudyHandler struct {
	svc studyService
	log *slog.Logger
}

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(svc studyService, logger *slog.Logger) *StudyHandler {
	return &StudyHandler{svc: svc, log: logger.With("handler", "study")}
}

// ---------------------------------------------------------------------------
// Request / response DTOs
// ---------------------------------------------------------------------------

type reviewRequest struct {
	CardID     string `json:"cardId"`
	Outcome    string `json:"outcome"`
	DurationMs *int   `json:"durationMs,omitempty"`
	SessionID  string `json:"sessionId,omitempty"`
}

type skipRequest struct {
	CardID    string `json:"cardId"`
	SessionID string `json:"sessionId,omitempty"`
}

type cardResponse struct {
	ID         string   `json:"id"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Category   string   `json:"category,omitempty"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags,omitempty"`
}

type progressResponse struct {
	CardID         string     `json:"cardId"`
	Status         string     `json:"status"`
	EaseFactor     float64    `json:"easeFactor"`
	IntervalDays   int        `json:"intervalDays"`
	LastReviewed   *time.Time `json:"lastReviewed,omitempty"`
	NextReviewAt   *time.Time `json:"nextReviewAt,omitempty"`
	CorrectCount   int        `json:"correctCount"`
	IncorrectCount int        `json:"incorrectCount"`
}

type queueItemResponse struct {
	Card     cardResponse     `json:"card"`
	Progress progressResponse `json:"progress"`
}

type queueResponse struct {
	Items []queueItemResponse `json:"items"`
	Total int                 `json:"total"`
}

type sessionResponse struct {
	ID         string              `json:"id"`
	Status     string              `json:"status"`
	StartedAt  time.Time           `json:"startedAt"`
	FinishedAt *time.Time          `json:"finishedAt,omitempty"`
	Result     *sessionStatsOutput `json:"result,omitempty"`
}

type sessionStatsOutput struct {
	TotalCards     int      `json:"totalCards"`
	CorrectCount   int      `json:"correctCount"`
	IncorrectCount int      `json:"incorrectCount"`
	SkippedCount   int      `json:"skippedCount"`
	ReviewedCards  []string `json:"reviewedCards,omitempty"`
	DurationMs     int64    `json:"durationMs"`
	Accuracy       float64  `json:"accuracy"`
}

type sessionHistoryResponse struct {
	Sessions []sessionResponse `json:"sessions"`
	Total    int               `json:"total"`
}

type dashboardResponse struct {
	DueCount      int              `json:"dueCount"`
	NewCount      int              `json:"newCount"`
	ReviewedToday int              `json:"reviewedToday"`
	StatusCounts  map[string]int   `json:"statusCounts"`
	Accuracy      float64          `json:"accuracy"`
	ActiveSession *sessionResponse `json:"activeSession,omitempty"`
}

type recommendResponse struct {
	Difficulty string `json:"difficulty"`
}

type adaptiveQueueResponse struct {
	Cards []cardResponse `json:"cards"`
	Total int            `json:"total"`
}

// ---------------------------------------------------------------------------
// Queue / review
// ---------------------------------------------------------------------------

// Queue handles GET /api/v1/study/queue?limit=N.
func (h *StudyHandler) Queue(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	items, err := h.svc.GetStudyQueue(r.Context(), study.GetQueueInput{Limit: limit})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	out := queueResponse{Items: make([]queueItemResponse, len(items)), Total: len(items)}
	for i, item := range items {
		out.Items[i] = queueItemResponse{
			Card:     toCardResponse(item.Card),
			Progress: toProgressResponse(&item.Progress),
		}
	}

	writeJSON(w, http.StatusOK, out)
}

// Review handles POST /api/v1/study/review.
func (h *StudyHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := study.ReviewCardInput{
		Outcome:    domain.ReviewOutcome(req.Outcome),
		DurationMs: req.DurationMs,
	}
	if id, err := uuid.Parse(req.CardID); err == nil {
		input.CardID = id
	}
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "sessionId must be a UUID")
			return
		}
		input.SessionID = &id
	}

	updated, err := h.svc.ReviewCard(r.Context(), input)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProgressResponse(updated))
}

// Skip handles POST /api/v1/study/skip.
func (h *StudyHandler) Skip(w http.ResponseWriter, r *http.Request) {
	var req skipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := study.SkipCardInput{}
	if id, err := uuid.Parse(req.CardID); err == nil {
		input.CardID = id
	}
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "sessionId must be a UUID")
			return
		}
		input.SessionID = &id
	}

	if err := h.svc.SkipCard(r.Context(), input); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

// StartSession handles POST /api/v1/study/sessions.
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.StartSession(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// ActiveSession handles GET /api/v1/study/sessions/active.
func (h *StudyHandler) ActiveSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.GetActiveSession(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// FinishSession handles POST /api/v1/study/sessions/finish.
func (h *StudyHandler) FinishSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.FinishActiveSession(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// AbandonSession handles POST /api/v1/study/sessions/abandon.
func (h *StudyHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.AbandonSession(r.Context()); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SessionHistory handles GET /api/v1/study/sessions?limit=N&offset=M.
func (h *StudyHandler) SessionHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}

	sessions, total, err := h.svc.GetSessionHistory(r.Context(), study.SessionHistoryInput{Limit: limit, Offset: offset})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	out := sessionHistoryResponse{Sessions: make([]sessionResponse, len(sessions)), Total: total}
	for i, s := range sessions {
		out.Sessions[i] = toSessionResponse(s)
	}

	writeJSON(w, http.StatusOK, out)
}

// ---------------------------------------------------------------------------
// Dashboard / adaptive
// ---------------------------------------------------------------------------

// Dashboard handles GET /api/v1/study/dashboard.
func (h *StudyHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.GetDashboard(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	out := dashboardResponse{
		DueCount:      d.DueCount,
		NewCount:      d.NewCount,
		ReviewedToday: d.ReviewedToday,
		StatusCounts: map[string]int{
			"NEW":      d.StatusCounts.New,
			"LEARNING": d.StatusCounts.Learning,
			"REVIEW":   d.StatusCounts.Review,
			"MASTERED": d.StatusCounts.Mastered,
		},
		Accuracy: d.Accuracy,
	}
	if d.ActiveSession != nil {
		s := toSessionResponse(d.ActiveSession)
		out.ActiveSession = &s
	}

	writeJSON(w, http.StatusOK, out)
}

// Recommend handles GET /api/v1/study/recommend.
func (h *StudyHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	tier, err := h.svc.RecommendDifficulty(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendResponse{Difficulty: string(tier)})
}

// AdaptiveQueue handles GET /api/v1/study/adaptive?limit=N.
func (h *StudyHandler) AdaptiveQueue(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	cards, err := h.svc.AdaptiveQueue(r.Context(), study.AdaptiveQueueInput{Limit: limit})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	out := adaptiveQueueResponse{Cards: make([]cardResponse, len(cards)), Total: len(cards)}
	for i, c := range cards {
		out.Cards[i] = toCardResponse(c)
	}

	writeJSON(w, http.StatusOK, out)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (h *StudyHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func toCardResponse(c domain.Flashcard) cardResponse {
	return cardResponse{
		ID:         c.ID.String(),
		Question:   c.Question,
		Answer:     c.Answer,
		Category:   c.Category,
		Difficulty: string(c.Difficulty),
		Tags:       c.Tags,
	}
}

func toProgressResponse(p *domain.ProgressRecord) progressResponse {
	return progressResponse{
		CardID:         p.CardID.String(),
		Status:         string(p.Status),
		EaseFactor:     p.EaseFactor,
		IntervalDays:   p.IntervalDays,
		LastReviewed:   p.LastReviewed,
		NextReviewAt:   p.NextReviewAt,
		CorrectCount:   p.CorrectCount,
		IncorrectCount: p.IncorrectCount,
	}
}

func toSessionResponse(s *domain.StudySession) sessionResponse {
	out := sessionResponse{
		ID:         s.ID.String(),
		Status:     string(s.Status),
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
	if s.Result != nil {
		stats := sessionStatsOutput{
			TotalCards:     s.Result.TotalCards,
			CorrectCount:   s.Result.CorrectCount,
			IncorrectCount: s.Result.IncorrectCount,
			SkippedCount:   s.Result.SkippedCount,
			DurationMs:     s.Result.DurationMs,
			Accuracy:       s.Result.Accuracy,
		}
		for _, id := range s.Result.ReviewedCards {
			stats.ReviewedCards = append(stats.ReviewedCards, id.String())
		}
		out.Result = &stats
	}
	return out
}
