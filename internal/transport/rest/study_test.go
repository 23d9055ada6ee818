package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
	"github.com/flashdeck/flashdeck-backend/internal/service/study"
)

type studyServiceMock struct {
	GetStudyQueueFunc       func(ctx context.Context, input study.GetQueueInput) ([]study.QueueItem, error)
	ReviewCardFunc          func(ctx context.Context, input study.ReviewCardInput) (*domain.ProgressRecord, error)
	SkipCardFunc            func(ctx context.Context, input study.SkipCardInput) error
	StartSessionFunc        func(ctx context.Context) (*domain.StudySession, error)
	GetActiveSessionFunc    func(ctx context.Context) (*domain.StudySession, error)
	FinishActiveSessionFunc func(ctx context.Context) (*domain.StudySession, error)
	AbandonSessionFunc      func(ctx context.Context) error
	GetSessionHistoryFunc   func(ctx context.Context, input study.SessionHistoryInput) ([]*domain.StudySession, int, error)
	GetDashboardFunc        func(ctx context.Context) (domain.Dashboard, error)
	RecommendDifficultyFunc func(ctx context.Context) (domain.DifficultyLevel, error)
	AdaptiveQueueFunc       func(ctx context.Context, input study.AdaptiveQueueInput) ([]domain.Flashcard, error)
}

func (m *studyServiceMock) GetStudyQueue(ctx context.Context, input study.GetQueueInput) ([]study.QueueItem, error) {
	return m.GetStudyQueueFunc(ctx, input)
}

func (m *studyServiceMock) ReviewCard(ctx context.Context, input study.ReviewCardInput) (*domain.ProgressRecord, error) {
	return m.ReviewCardFunc(ctx, input)
}

func (m *studyServiceMock) SkipCard(ctx context.Context, input study.SkipCardInput) error {
	return m.SkipCardFunc(ctx, input)
}

func (m *studyServiceMock) StartSession(ctx context.Context) (*domain.StudySession, error) {
	return m.StartSessionFunc(ctx)
}

func (m *studyServiceMock) GetActiveSession(ctx context.Context) (*domain.StudySession, error) {
	return m.GetActiveSessionFunc(ctx)
}

func (m *studyServiceMock) FinishActiveSession(ctx context.Context) (*domain.StudySession, error) {
	return m.FinishActiveSessionFunc(ctx)
}

func (m *studyServiceMock) AbandonSession(ctx context.Context) error {
	return m.AbandonSessionFunc(ctx)
}

func (m *studyServiceMock) GetSessionHistory(ctx context.Context, input study.SessionHistoryInput) ([]*domain.StudySession, int, error) {
	return m.GetSessionHistoryFunc(ctx, input)
}

func (m *studyServiceMock) GetDashboard(ctx context.Context) (domain.Dashboard, error) {
	return m.GetDashboardFunc(ctx)
}

func (m *studyServiceMock) RecommendDifficulty(ctx context.Context) (domain.DifficultyLevel, error) {
	return m.RecommendDifficultyFunc(ctx)
}

func (m *studyServiceMock) AdaptiveQueue(ctx context.Context, input study.AdaptiveQueueInput) ([]domain.Flashcard, error) {
	return m.AdaptiveQueueFunc(ctx, input)
}

func newStudyHandler(svc *studyServiceMock) *StudyHandler {
	return NewStudyHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func decodeBody(t *testing.T, body *bytes.Buffer, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(dst))
}

func TestStudyHandler_Queue(t *testing.T) {
	t.Parallel()

	cardID := uuid.New()
	svc := &studyServiceMock{
		GetStudyQueueFunc: func(_ context.Context, input study.GetQueueInput) ([]study.QueueItem, error) {
			assert.Equal(t, 5, input.Limit)
			return []study.QueueItem{
				{
					Card: domain.Flashcard{
						ID:         cardID,
						Question:   "What is a goroutine?",
						Answer:     "A lightweight thread managed by the Go runtime.",
						Difficulty: domain.DifficultyBeginner,
					},
					Progress: domain.ProgressRecord{
						CardID:     cardID,
						Status:     domain.LearningStatusNew,
						EaseFactor: 2.5,
					},
				},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/study/queue?limit=5", nil)
	rec := httptest.NewRecorder()

	newStudyHandler(svc).Queue(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp queueResponse
	decodeBody(t, rec.Body, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, cardID.String(), resp.Items[0].Card.ID)
	assert.Equal(t, "NEW", resp.Items[0].Progress.Status)
}

func TestStudyHandler_Queue_BadLimit(t *testing.T) {
	t.Parallel()

	svc := &studyServiceMock{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/study/queue?limit=abc", nil)
	rec := httptest.NewRecorder()

	newStudyHandler(svc).Queue(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudyHandler_Review(t *testing.T) {
	t.Parallel()

	cardID := uuid.New()
	now := time.Now().UTC()
	next := now.Add(24 * time.Hour)

	svc := &studyServiceMock{
		ReviewCardFunc: func(_ context.Context, input study.ReviewCardInput) (*domain.ProgressRecord, error) {
			assert.Equal(t, cardID, input.CardID)
			assert.Equal(t, domain.ReviewOutcomeCorrect, input.Outcome)
			require.NotNil(t, input.DurationMs)
			assert.Equal(t, 4500, *input.DurationMs)
			return &domain.ProgressRecord{
				CardID:       cardID,
				Status:       domain.LearningStatusLearning,
				EaseFactor:   2.5,
				IntervalDays: 1,
				LastReviewed: &now,
				NextReviewAt: &next,
				CorrectCount: 1,
			}, nil
		},
	}

	body := fmt.Sprintf(`{"cardId":%q,"outcome":"CORRECT","durationMs":4500}`, cardID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/study/review", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	newStudyHandler(svc).Review(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp progressResponse
	decodeBody(t, rec.Body, &resp)
	assert.Equal(t, "LEARNING", resp.Status)
	assert.Equal(t, 1, resp.IntervalDays)
	assert.Equal(t, 1, resp.CorrectCount)
}

func TestStudyHandler_Review_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("outcome: %w", domain.ErrValidation), http.StatusBadRequest},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"not found", fmt.Errorf("flashcard: %w", domain.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("stale version: %w", domain.ErrConflict), http.StatusConflict},
		{"internal", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &studyServiceMock{
				ReviewCardFunc: func(_ context.Context, _ study.ReviewCardInput) (*domain.ProgressRecord, error) {
					return nil, tt.err
				},
			}

			body := fmt.Sprintf(`{"cardId":%q,"outcome":"CORRECT"}`, uuid.New())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/study/review", bytes.NewBufferString(body))
			rec := httptest.NewRecorder()

			newStudyHandler(svc).Review(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestStudyHandler_Review_MalformedBody(t *testing.T) {
	t.Parallel()

	svc := &studyServiceMock{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/study/review", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()

	newStudyHandler(svc).Review(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudyHandler_Review_BadSessionID(t *testing.T) {
	t.Parallel()

	svc := &studyServiceMock{}
	body := fmt.Sprintf(`{"cardId":%q,"outcome":"CORRECT","sessionId":"not-a-uuid"}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/study/review", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	newStudyHandler(svc).Review(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudyHandler_Skip(t *testing.T) {
	t.Parallel()

	cardID := uuid.New()
	sessionID := uuid.New()

	svc := &studyServiceMock{
		SkipCardFunc: func(_ context.Context, input study.SkipCardInput) error {
			assert.Equal(t, cardID, input.CardID)
			require.NotNil(t, input.SessionID)
			assert.Equal(t, sessionID, *input.SessionID)
			return nil
		},
	}

	body := fmt.Sprintf(`{"cardId":%q,"sessionId":%q}`, cardID, sessionID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/study/skip", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	newStudyHandler(svc).Skip(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStudyHandler_StartSession(t *testing.T) {
	t.Parallel()

	svc := &studyServiceMock{
		StartSessionFunc: func(_ context.Context) (*domain.StudySession, error) {
			return &domain.StudySession{
				ID:        uuid.New(),
				Status:    domain.SessionStatusActive,
				StartedAt: time.Now().UTC(),
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/study/sessions", nil)
	rec := httptest.NewRecorder()

	newStudyHandler(svc).StartSession(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp sessionResponse
	decodeBody(t, rec.Body, &resp)
	assert.Equal(t, "ACTIVE", resp.Status)
	assert.Nil(t, resp.Result)
}

func TestStudyHandler_StartSession_AlreadyActive(t *testing.T) {
	t.Parallel()

	svc := &studyServiceMock{
		StartSessionFunc: func(_ context.Context) (*domain.StudySession, error) {
			return nil, fmt.Errorf("study_session: %w", domain.ErrAlreadyExists)
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/study/sessions", nil)
	rec := httptest.NewRecorder()

	newStudyHandler(svc).StartSession(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStudyHandler_ActiveSession_None(t *testing.T) {
	t.Parallel()

	svc := &studyServiceMock{
		GetActiveSessionFunc: func(_ context.Context) (*domain.StudySession, error) {
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/study/sessions/active", nil)
	rec := httptest.NewRecorder()

	newStudyHandler(svc).ActiveSession(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudyHandler_FinishSession(t *testing.T) {
	t.Parallel()

	finishedAt := time.Now().UTC()
	reviewed := uuid.New()

	svc := &studyServiceMock{
		FinishActiveSessionFunc: func(_ context.Context) (*domain.StudySession, error) {
			return &domain.StudySession{
				ID:         uuid.New(),
				Status:     domain.SessionStatusFinished,
				StartedAt:  finishedAt.Add(-5 * time.Minute),
				FinishedAt: &finishedAt,
				Result: &domain.SessionStats{
					TotalCards:     3,
					CorrectCount:   2,
					IncorrectCount: 1,
					ReviewedCards:  []uuid.UUID{reviewed},
					DurationMs:     300000,
					Accuracy:       2.0 / 3.0,
				},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/study/sessions/finish", nil)
	rec := httptest.NewRecorder()

	newStudyHandler(svc).FinishSession(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp sessionResponse
	decodeBody(t, rec.Body, &resp)
	assert.Equal(t, "FINISHED", resp.Status)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 3, resp.Result.TotalCards)
	assert.Equal(t, []string{reviewed.String()}, resp.Result.ReviewedCards)
	assert.InDelta(t, 2.0/3.0, resp.Result.Accuracy, 1e-9)
}

func TestStudyHandler_SessionHistory(t *testing.T) {
	t.Parallel()

	svc := &studyServiceMock{
		GetSessionHistoryFunc: func(_ context.Context, input study.SessionHistoryInput) ([]*domain.StudySession, int, error) {
			assert.Equal(t, 10, input.Limit)
			assert.Equal(t, 20, input.Offset)
			return []*domain.StudySession{
				{ID: uuid.New(), Status: domain.SessionStatusAbandoned, StartedAt: time.Now().UTC()},
			}, 21, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/study/sessions?limit=10&offset=20", nil)
	rec := httptest.NewRecorder()

	newStudyHandler(svc).SessionHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp sessionHistoryResponse
	decodeBody(t, rec.Body, &resp)
	assert.Equal(t, 21, resp.Total)
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, "ABANDONED", resp.Sessions[0].Status)
}

func TestStudyHandler_Dashboard(t *testing.T) {
	t.Parallel()

	svc := &studyServiceMock{
		GetDashboardFunc: func(_ context.Context) (domain.Dashboard, error) {
			return domain.Dashboard{
				DueCount:      7,
				NewCount:      3,
				ReviewedToday: 12,
				StatusCounts:  domain.StatusCounts{New: 3, Learning: 2, Review: 4, Mastered: 1, Total: 10},
				Accuracy:      0.75,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/study/dashboard", nil)
	rec := httptest.NewRecorder()

	newStudyHandler(svc).Dashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dashboardResponse
	decodeBody(t, rec.Body, &resp)
	assert.Equal(t, 7, resp.DueCount)
	assert.Equal(t, 12, resp.ReviewedToday)
	assert.Equal(t, 4, resp.StatusCounts["REVIEW"])
	assert.InDelta(t, 0.75, resp.Accuracy, 1e-9)
	assert.Nil(t, resp.ActiveSession)
}

func TestStudyHandler_Recommend(t *testing.T) {
	t.Parallel()

	svc := &studyServiceMock{
		RecommendDifficultyFunc: func(_ context.Context) (domain.DifficultyLevel, error) {
			return domain.DifficultyIntermediate, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/study/recommend", nil)
	rec := httptest.NewRecorder()

	newStudyHandler(svc).Recommend(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp recommendResponse
	decodeBody(t, rec.Body, &resp)
	assert.Equal(t, "INTERMEDIATE", resp.Difficulty)
}

func TestStudyHandler_AdaptiveQueue(t *testing.T) {
	t.Parallel()

	svc := &studyServiceMock{
		AdaptiveQueueFunc: func(_ context.Context, input study.AdaptiveQueueInput) ([]domain.Flashcard, error) {
			assert.Equal(t, 3, input.Limit)
			return []domain.Flashcard{
				{ID: uuid.New(), Question: "q1", Answer: "a1", Difficulty: domain.DifficultyAdvanced},
				{ID: uuid.New(), Question: "q2", Answer: "a2", Difficulty: domain.DifficultyAdvanced},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/study/adaptive?limit=3", nil)
	rec := httptest.NewRecorder()

	newStudyHandler(svc).AdaptiveQueue(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp adaptiveQueueResponse
	decodeBody(t, rec.Body, &resp)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Cards, 2)
	assert.Equal(t, "ADVANCED", resp.Cards[0].Difficulty)
}
