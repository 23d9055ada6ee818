package study

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
	"github.com/flashdeck/flashdeck-backend/internal/service/study/sm2"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type flashcardRepo interface {
	GetByID(ctx context.Context, cardID uuid.UUID) (*domain.Flashcard, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Flashcard, error)
	ListUnseen(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Flashcard, error)
	ListByDifficulty(ctx context.Context, tier domain.DifficultyLevel, limit int) ([]domain.Flashcard, error)
}

type progressRepo interface {
	GetByCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.ProgressRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ProgressRecord, error)
	Create(ctx context.Context, record *domain.ProgressRecord) (*domain.ProgressRecord, error)
	// Update applies params only if the stored version still equals version,
	// returning domain.ErrConflict otherwise.
	Update(ctx context.Context, userID, cardID uuid.UUID, version int, params domain.ProgressUpdateParams) (*domain.ProgressRecord, error)
	CountByStatus(ctx context.Context, userID uuid.UUID) (domain.StatusCounts, error)
	CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
}

type reviewLogRepo interface {
	Create(ctx context.Context, log *domain.ReviewLog) (*domain.ReviewLog, error)
	GetByPeriod(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.ReviewLog, error)
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	CountIntroducedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	RecentByTier(ctx context.Context, userID uuid.UUID, tier domain.DifficultyLevel, limit int) ([]domain.ReviewOutcome, error)
	TiersReviewed(ctx context.Context, userID uuid.UUID) ([]domain.DifficultyLevel, error)
}

type sessionRepo interface {
	Create(ctx context.Context, session *domain.StudySession) (*domain.StudySession, error)
	GetByID(ctx context.Context, userID, sessionID uuid.UUID) (*domain.StudySession, error)
	GetActive(ctx context.Context, userID uuid.UUID) (*domain.StudySession, error)
	Finish(ctx context.Context, userID, sessionID uuid.UUID, stats domain.SessionStats) (*domain.StudySession, error)
	Abandon(ctx context.Context, userID, sessionID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.StudySession, int, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the study business logic.
type Service struct {
	cards    flashcardRepo
	progress progressRepo
	reviews  reviewLogRepo
	sessions sessionRepo
	tx       txManager
	clock    clock
	log      *slog.Logger
	cfg      domain.SRSConfig
	params   sm2.Parameters
}

// NewService creates a new Study service. The config is validated up front
// so a bad deployment fails at startup, not on the first review.
func NewService(
	log *slog.Logger,
	cards flashcardRepo,
	progress progressRepo,
	reviews reviewLogRepo,
	sessions sessionRepo,
	tx txManager,
	cfg domain.SRSConfig,
) (*Service, error) {
	if err := validateSRSConfig(cfg); err != nil {
		return nil, err
	}

	return &Service{
		cards:    cards,
		progress: progress,
		reviews:  reviews,
		sessions: sessions,
		tx:       tx,
		clock:    systemClock{},
		log:      log.With("service", "study"),
		cfg:      cfg,
		params: sm2.Parameters{
			LearningInterval:   cfg.LearningInterval,
			GraduatingInterval: cfg.GraduatingInterval,
			MasteryInterval:    cfg.MasteryIntervalDays,
			EasePenalty:        cfg.EasePenalty,
			EaseReward:         cfg.EaseReward,
		},
	}, nil
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(c clock) *Service {
	s.clock = c
	return s
}

func validateSRSConfig(cfg domain.SRSConfig) error {
	switch {
	case cfg.MaxSessionSize < 1:
		return domain.NewConfigurationError("max_session_size", "must be >= 1")
	case cfg.AdaptiveWindow < 1:
		return domain.NewConfigurationError("adaptive_window", "must be >= 1")
	case cfg.PromotionThreshold <= 0 || cfg.PromotionThreshold > 1:
		return domain.NewConfigurationError("promotion_threshold", "must be in (0, 1]")
	case cfg.LearningInterval < 1:
		return domain.NewConfigurationError("learning_interval", "must be >= 1")
	case cfg.GraduatingInterval < 1:
		return domain.NewConfigurationError("graduating_interval", "must be >= 1")
	case cfg.MasteryIntervalDays < 1:
		return domain.NewConfigurationError("mastery_interval_days", "must be >= 1")
	case cfg.EasePenalty < 0 || cfg.EaseReward < 0:
		return domain.NewConfigurationError("ease", "penalty and reward must be non-negative")
	}
	return nil
}
