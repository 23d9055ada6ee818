package study

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
)

var _ flashcardRepo = &flashcardRepoMock{}

type flashcardRepoMock struct {
	GetByIDFunc          func(ctx context.Context, cardID uuid.UUID) (*domain.Flashcard, error)
	GetByIDsFunc         func(ctx context.Context, ids []uuid.UUID) ([]domain.Flashcard, error)
	ListUnseenFunc       func(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Flashcard, error)
	ListByDifficultyFunc func(ctx context.Context, tier domain.DifficultyLevel, limit int) ([]domain.Flashcard, error)

	calls struct {
		GetByID []struct {
			CardID uuid.UUID
		}
		GetByIDs []struct {
			IDs []uuid.UUID
		}
		ListUnseen []struct {
			UserID uuid.UUID
			Limit  int
		}
		ListByDifficulty []struct {
			Tier  domain.DifficultyLevel
			Limit int
		}
	}
	mu sync.RWMutex
}

func (mock *flashcardRepoMock) GetByID(ctx context.Context, cardID uuid.UUID) (*domain.Flashcard, error) {
	if mock.GetByIDFunc == nil {
		panic("flashcardRepoMock.GetByIDFunc: method is nil but flashcardRepo.GetByID was just called")
	}
	mock.mu.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, struct{ CardID uuid.UUID }{cardID})
	mock.mu.Unlock()
	return mock.GetByIDFunc(ctx, cardID)
}

func (mock *flashcardRepoMock) GetByIDCalls() []struct{ CardID uuid.UUID } {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.GetByID
}

func (mock *flashcardRepoMock) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Flashcard, error) {
	if mock.GetByIDsFunc == nil {
		panic("flashcardRepoMock.GetByIDsFunc: method is nil but flashcardRepo.GetByIDs was just called")
	}
	mock.mu.Lock()
	mock.calls.GetByIDs = append(mock.calls.GetByIDs, struct{ IDs []uuid.UUID }{ids})
	mock.mu.Unlock()
	return mock.GetByIDsFunc(ctx, ids)
}

func (mock *flashcardRepoMock) GetByIDsCalls() []struct{ IDs []uuid.UUID } {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.GetByIDs
}

func (mock *flashcardRepoMock) ListUnseen(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Flashcard, error) {
	if mock.ListUnseenFunc == nil {
		panic("flashcardRepoMock.ListUnseenFunc: method is nil but flashcardRepo.ListUnseen was just called")
	}
	mock.mu.Lock()
	mock.calls.ListUnseen = append(mock.calls.ListUnseen, struct {
		UserID uuid.UUID
		Limit  int
	}{userID, limit})
	mock.mu.Unlock()
	return mock.ListUnseenFunc(ctx, userID, limit)
}

func (mock *flashcardRepoMock) ListUnseenCalls() []struct {
	UserID uuid.UUID
	Limit  int
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.ListUnseen
}

func (mock *flashcardRepoMock) ListByDifficulty(ctx context.Context, tier domain.DifficultyLevel, limit int) ([]domain.Flashcard, error) {
	if mock.ListByDifficultyFunc == nil {
		panic("flashcardRepoMock.ListByDifficultyFunc: method is nil but flashcardRepo.ListByDifficulty was just called")
	}
	mock.mu.Lock()
	mock.calls.ListByDifficulty = append(mock.calls.ListByDifficulty, struct {
		Tier  domain.DifficultyLevel
		Limit int
	}{tier, limit})
	mock.mu.Unlock()
	return mock.ListByDifficultyFunc(ctx, tier, limit)
}

func (mock *flashcardRepoMock) ListByDifficultyCalls() []struct {
	Tier  domain.DifficultyLevel
	Limit int
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.ListByDifficulty
}

var _ progressRepo = &progressRepoMock{}

type progressRepoMock struct {
	GetByCardFunc     func(ctx context.Context, userID, cardID uuid.UUID) (*domain.ProgressRecord, error)
	ListByUserFunc    func(ctx context.Context, userID uuid.UUID) ([]domain.ProgressRecord, error)
	CreateFunc        func(ctx context.Context, record *domain.ProgressRecord) (*domain.ProgressRecord, error)
	UpdateFunc        func(ctx context.Context, userID, cardID uuid.UUID, version int, params domain.ProgressUpdateParams) (*domain.ProgressRecord, error)
	CountByStatusFunc func(ctx context.Context, userID uuid.UUID) (domain.StatusCounts, error)
	CountDueFunc      func(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)

	calls struct {
		GetByCard []struct {
			UserID uuid.UUID
			CardID uuid.UUID
		}
		ListByUser []struct {
			UserID uuid.UUID
		}
		Create []struct {
			Record *domain.ProgressRecord
		}
		Update []struct {
			UserID  uuid.UUID
			CardID  uuid.UUID
			Version int
			Params  domain.ProgressUpdateParams
		}
		CountByStatus []struct {
			UserID uuid.UUID
		}
		CountDue []struct {
			UserID uuid.UUID
			Now    time.Time
		}
	}
	mu sync.RWMutex
}

func (mock *progressRepoMock) GetByCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.ProgressRecord, error) {
	if mock.GetByCardFunc == nil {
		panic("progressRepoMock.GetByCardFunc: method is nil but progressRepo.GetByCard was just called")
	}
	mock.mu.Lock()
	mock.calls.GetByCard = append(mock.calls.GetByCard, struct {
		UserID uuid.UUID
		CardID uuid.UUID
	}{userID, cardID})
	mock.mu.Unlock()
	return mock.GetByCardFunc(ctx, userID, cardID)
}

func (mock *progressRepoMock) GetByCardCalls() []struct {
	UserID uuid.UUID
	CardID uuid.UUID
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.GetByCard
}

func (mock *progressRepoMock) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ProgressRecord, error) {
	if mock.ListByUserFunc == nil {
		panic("progressRepoMock.ListByUserFunc: method is nil but progressRepo.ListByUser was just called")
	}
	mock.mu.Lock()
	mock.calls.ListByUser = append(mock.calls.ListByUser, struct{ UserID uuid.UUID }{userID})
	mock.mu.Unlock()
	return mock.ListByUserFunc(ctx, userID)
}

func (mock *progressRepoMock) ListByUserCalls() []struct{ UserID uuid.UUID } {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.ListByUser
}

func (mock *progressRepoMock) Create(ctx context.Context, record *domain.ProgressRecord) (*domain.ProgressRecord, error) {
	if mock.CreateFunc == nil {
		panic("progressRepoMock.CreateFunc: method is nil but progressRepo.Create was just called")
	}
	mock.mu.Lock()
	mock.calls.Create = append(mock.calls.Create, struct{ Record *domain.ProgressRecord }{record})
	mock.mu.Unlock()
	return mock.CreateFunc(ctx, record)
}

func (mock *progressRepoMock) CreateCalls() []struct{ Record *domain.ProgressRecord } {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Create
}

func (mock *progressRepoMock) Update(ctx context.Context, userID, cardID uuid.UUID, version int, params domain.ProgressUpdateParams) (*domain.ProgressRecord, error) {
	if mock.UpdateFunc == nil {
		panic("progressRepoMock.UpdateFunc: method is nil but progressRepo.Update was just called")
	}
	mock.mu.Lock()
	mock.calls.Update = append(mock.calls.Update, struct {
		UserID  uuid.UUID
		CardID  uuid.UUID
		Version int
		Params  domain.ProgressUpdateParams
	}{userID, cardID, version, params})
	mock.mu.Unlock()
	return mock.UpdateFunc(ctx, userID, cardID, version, params)
}

func (mock *progressRepoMock) UpdateCalls() []struct {
	UserID  uuid.UUID
	CardID  uuid.UUID
	Version int
	Params  domain.ProgressUpdateParams
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Update
}

func (mock *progressRepoMock) CountByStatus(ctx context.Context, userID uuid.UUID) (domain.StatusCounts, error) {
	if mock.CountByStatusFunc == nil {
		panic("progressRepoMock.CountByStatusFunc: method is nil but progressRepo.CountByStatus was just called")
	}
	mock.mu.Lock()
	mock.calls.CountByStatus = append(mock.calls.CountByStatus, struct{ UserID uuid.UUID }{userID})
	mock.mu.Unlock()
	return mock.CountByStatusFunc(ctx, userID)
}

func (mock *progressRepoMock) CountByStatusCalls() []struct{ UserID uuid.UUID } {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.CountByStatus
}

func (mock *progressRepoMock) CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	if mock.CountDueFunc == nil {
		panic("progressRepoMock.CountDueFunc: method is nil but progressRepo.CountDue was just called")
	}
	mock.mu.Lock()
	mock.calls.CountDue = append(mock.calls.CountDue, struct {
		UserID uuid.UUID
		Now    time.Time
	}{userID, now})
	mock.mu.Unlock()
	return mock.CountDueFunc(ctx, userID, now)
}

func (mock *progressRepoMock) CountDueCalls() []struct {
	UserID uuid.UUID
	Now    time.Time
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.CountDue
}

var _ reviewLogRepo = &reviewLogRepoMock{}

type reviewLogRepoMock struct {
	CreateFunc               func(ctx context.Context, log *domain.ReviewLog) (*domain.ReviewLog, error)
	GetByPeriodFunc          func(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.ReviewLog, error)
	CountSinceFunc           func(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	CountIntroducedSinceFunc func(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	RecentByTierFunc         func(ctx context.Context, userID uuid.UUID, tier domain.DifficultyLevel, limit int) ([]domain.ReviewOutcome, error)
	TiersReviewedFunc        func(ctx context.Context, userID uuid.UUID) ([]domain.DifficultyLevel, error)

	calls struct {
		Create []struct {
			Log *domain.ReviewLog
		}
		GetByPeriod []struct {
			UserID uuid.UUID
			From   time.Time
			To     time.Time
		}
		CountSince []struct {
			UserID uuid.UUID
			Since  time.Time
		}
		CountIntroducedSince []struct {
			UserID uuid.UUID
			Since  time.Time
		}
		RecentByTier []struct {
			UserID uuid.UUID
			Tier   domain.DifficultyLevel
			Limit  int
		}
		TiersReviewed []struct {
			UserID uuid.UUID
		}
	}
	mu sync.RWMutex
}

func (mock *reviewLogRepoMock) Create(ctx context.Context, log *domain.ReviewLog) (*domain.ReviewLog, error) {
	if mock.CreateFunc == nil {
		panic("reviewLogRepoMock.CreateFunc: method is nil but reviewLogRepo.Create was just called")
	}
	mock.mu.Lock()
	mock.calls.Create = append(mock.calls.Create, struct{ Log *domain.ReviewLog }{log})
	mock.mu.Unlock()
	return mock.CreateFunc(ctx, log)
}

func (mock *reviewLogRepoMock) CreateCalls() []struct{ Log *domain.ReviewLog } {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Create
}

func (mock *reviewLogRepoMock) GetByPeriod(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.ReviewLog, error) {
	if mock.GetByPeriodFunc == nil {
		panic("reviewLogRepoMock.GetByPeriodFunc: method is nil but reviewLogRepo.GetByPeriod was just called")
	}
	mock.mu.Lock()
	mock.calls.GetByPeriod = append(mock.calls.GetByPeriod, struct {
		UserID uuid.UUID
		From   time.Time
		To     time.Time
	}{userID, from, to})
	mock.mu.Unlock()
	return mock.GetByPeriodFunc(ctx, userID, from, to)
}

func (mock *reviewLogRepoMock) GetByPeriodCalls() []struct {
	UserID uuid.UUID
	From   time.Time
	To     time.Time
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.GetByPeriod
}

func (mock *reviewLogRepoMock) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	if mock.CountSinceFunc == nil {
		panic("reviewLogRepoMock.CountSinceFunc: method is nil but reviewLogRepo.CountSince was just called")
	}
	mock.mu.Lock()
	mock.calls.CountSince = append(mock.calls.CountSince, struct {
		UserID uuid.UUID
		Since  time.Time
	}{userID, since})
	mock.mu.Unlock()
	return mock.CountSinceFunc(ctx, userID, since)
}

func (mock *reviewLogRepoMock) CountSinceCalls() []struct {
	UserID uuid.UUID
	Since  time.Time
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.CountSince
}

func (mock *reviewLogRepoMock) CountIntroducedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	if mock.CountIntroducedSinceFunc == nil {
		panic("reviewLogRepoMock.CountIntroducedSinceFunc: method is nil but reviewLogRepo.CountIntroducedSince was just called")
	}
	mock.mu.Lock()
	mock.calls.CountIntroducedSince = append(mock.calls.CountIntroducedSince, struct {
		UserID uuid.UUID
		Since  time.Time
	}{userID, since})
	mock.mu.Unlock()
	return mock.CountIntroducedSinceFunc(ctx, userID, since)
}

func (mock *reviewLogRepoMock) CountIntroducedSinceCalls() []struct {
	UserID uuid.UUID
	Since  time.Time
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.CountIntroducedSince
}

func (mock *reviewLogRepoMock) RecentByTier(ctx context.Context, userID uuid.UUID, tier domain.DifficultyLevel, limit int) ([]domain.ReviewOutcome, error) {
	if mock.RecentByTierFunc == nil {
		panic("reviewLogRepoMock.RecentByTierFunc: method is nil but reviewLogRepo.RecentByTier was just called")
	}
	mock.mu.Lock()
	mock.calls.RecentByTier = append(mock.calls.RecentByTier, struct {
		UserID uuid.UUID
		Tier   domain.DifficultyLevel
		Limit  int
	}{userID, tier, limit})
	mock.mu.Unlock()
	return mock.RecentByTierFunc(ctx, userID, tier, limit)
}

func (mock *reviewLogRepoMock) RecentByTierCalls() []struct {
	UserID uuid.UUID
	Tier   domain.DifficultyLevel
	Limit  int
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.RecentByTier
}

func (mock *reviewLogRepoMock) TiersReviewed(ctx context.Context, userID uuid.UUID) ([]domain.DifficultyLevel, error) {
	if mock.TiersReviewedFunc == nil {
		panic("reviewLogRepoMock.TiersReviewedFunc: method is nil but reviewLogRepo.TiersReviewed was just called")
	}
	mock.mu.Lock()
	mock.calls.TiersReviewed = append(mock.calls.TiersReviewed, struct{ UserID uuid.UUID }{userID})
	mock.mu.Unlock()
	return mock.TiersReviewedFunc(ctx, userID)
}

func (mock *reviewLogRepoMock) TiersReviewedCalls() []struct{ UserID uuid.UUID } {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.TiersReviewed
}

var _ sessionRepo = &sessionRepoMock{}

type sessionRepoMock struct {
	CreateFunc     func(ctx context.Context, session *domain.StudySession) (*domain.StudySession, error)
	GetByIDFunc    func(ctx context.Context, userID, sessionID uuid.UUID) (*domain.StudySession, error)
	GetActiveFunc  func(ctx context.Context, userID uuid.UUID) (*domain.StudySession, error)
	FinishFunc     func(ctx context.Context, userID, sessionID uuid.UUID, stats domain.SessionStats) (*domain.StudySession, error)
	AbandonFunc    func(ctx context.Context, userID, sessionID uuid.UUID) error
	ListByUserFunc func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.StudySession, int, error)

	calls struct {
		Create []struct {
			Session *domain.StudySession
		}
		GetByID []struct {
			UserID    uuid.UUID
			SessionID uuid.UUID
		}
		GetActive []struct {
			UserID uuid.UUID
		}
		Finish []struct {
			UserID    uuid.UUID
			SessionID uuid.UUID
			Stats     domain.SessionStats
		}
		Abandon []struct {
			UserID    uuid.UUID
			SessionID uuid.UUID
		}
		ListByUser []struct {
			UserID uuid.UUID
			Limit  int
			Offset int
		}
	}
	mu sync.RWMutex
}

func (mock *sessionRepoMock) Create(ctx context.Context, session *domain.StudySession) (*domain.StudySession, error) {
	if mock.CreateFunc == nil {
		panic("sessionRepoMock.CreateFunc: method is nil but sessionRepo.Create was just called")
	}
	mock.mu.Lock()
	mock.calls.Create = append(mock.calls.Create, struct{ Session *domain.StudySession }{session})
	mock.mu.Unlock()
	return mock.CreateFunc(ctx, session)
}

func (mock *sessionRepoMock) CreateCalls() []struct{ Session *domain.StudySession } {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Create
}

func (mock *sessionRepoMock) GetByID(ctx context.Context, userID, sessionID uuid.UUID) (*domain.StudySession, error) {
	if mock.GetByIDFunc == nil {
		panic("sessionRepoMock.GetByIDFunc: method is nil but sessionRepo.GetByID was just called")
	}
	mock.mu.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, struct {
		UserID    uuid.UUID
		SessionID uuid.UUID
	}{userID, sessionID})
	mock.mu.Unlock()
	return mock.GetByIDFunc(ctx, userID, sessionID)
}

func (mock *sessionRepoMock) GetByIDCalls() []struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.GetByID
}

func (mock *sessionRepoMock) GetActive(ctx context.Context, userID uuid.UUID) (*domain.StudySession, error) {
	if mock.GetActiveFunc == nil {
		panic("sessionRepoMock.GetActiveFunc: method is nil but sessionRepo.GetActive was just called")
	}
	mock.mu.Lock()
	mock.calls.GetActive = append(mock.calls.GetActive, struct{ UserID uuid.UUID }{userID})
	mock.mu.Unlock()
	return mock.GetActiveFunc(ctx, userID)
}

func (mock *sessionRepoMock) GetActiveCalls() []struct{ UserID uuid.UUID } {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.GetActive
}

func (mock *sessionRepoMock) Finish(ctx context.Context, userID, sessionID uuid.UUID, stats domain.SessionStats) (*domain.StudySession, error) {
	if mock.FinishFunc == nil {
		panic("sessionRepoMock.FinishFunc: method is nil but sessionRepo.Finish was just called")
	}
	mock.mu.Lock()
	mock.calls.Finish = append(mock.calls.Finish, struct {
		UserID    uuid.UUID
		SessionID uuid.UUID
		Stats     domain.SessionStats
	}{userID, sessionID, stats})
	mock.mu.Unlock()
	return mock.FinishFunc(ctx, userID, sessionID, stats)
}

func (mock *sessionRepoMock) FinishCalls() []struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	Stats     domain.SessionStats
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Finish
}

func (mock *sessionRepoMock) Abandon(ctx context.Context, userID, sessionID uuid.UUID) error {
	if mock.AbandonFunc == nil {
		panic("sessionRepoMock.AbandonFunc: method is nil but sessionRepo.Abandon was just called")
	}
	mock.mu.Lock()
	mock.calls.Abandon = append(mock.calls.Abandon, struct {
		UserID    uuid.UUID
		SessionID uuid.UUID
	}{userID, sessionID})
	mock.mu.Unlock()
	return mock.AbandonFunc(ctx, userID, sessionID)
}

func (mock *sessionRepoMock) AbandonCalls() []struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Abandon
}

func (mock *sessionRepoMock) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.StudySession, int, error) {
	if mock.ListByUserFunc == nil {
		panic("sessionRepoMock.ListByUserFunc: method is nil but sessionRepo.ListByUser was just called")
	}
	mock.mu.Lock()
	mock.calls.ListByUser = append(mock.calls.ListByUser, struct {
		UserID uuid.UUID
		Limit  int
		Offset int
	}{userID, limit, offset})
	mock.mu.Unlock()
	return mock.ListByUserFunc(ctx, userID, limit, offset)
}

func (mock *sessionRepoMock) ListByUserCalls() []struct {
	UserID uuid.UUID
	Limit  int
	Offset int
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.ListByUser
}

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	calls struct {
		RunInTx []struct{}
	}
	mu sync.RWMutex
}

// RunInTx defaults to executing fn inline when no override is set.
func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	mock.mu.Lock()
	mock.calls.RunInTx = append(mock.calls.RunInTx, struct{}{})
	mock.mu.Unlock()
	if mock.RunInTxFunc != nil {
		return mock.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}

func (mock *txManagerMock) RunInTxCalls() []struct{} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.RunInTx
}

// fixedClock pins the service clock for deterministic assertions.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }
