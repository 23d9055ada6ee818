// Package flashcard implements the flashcard catalog repository using
// PostgreSQL. Fixed-shape queries are raw SQL consts; the filtered catalog
// listing is built with squirrel because its shape depends on the filter.
package flashcard

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/flashdeck/flashdeck-backend/internal/adapter/postgres"
	"github.com/flashdeck/flashdeck-backend/internal/domain"
)

// Filter narrows the catalog listing. Zero values mean "no constraint".
type Filter struct {
	Category   string
	Difficulty domain.DifficultyLevel
	Tag        string
	Search     string
}

// Repo provides flashcard catalog persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new flashcard repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const flashcardColumns = `id, question, answer, category, difficulty, tags, created_at`

const getByIDSQL = `
SELECT ` + flashcardColumns + `
FROM flashcards
WHERE id = $1`

const getByIDsSQL = `
SELECT ` + flashcardColumns + `
FROM flashcards
WHERE id = ANY($1::uuid[])`

// listUnseenSQL returns catalog cards the user has no progress record for,
// oldest first so the catalog is introduced in a stable order.
const listUnseenSQL = `
SELECT ` + flashcardColumns + `
FROM flashcards f
WHERE NOT EXISTS (
    SELECT 1 FROM progress_records p
    WHERE p.user_id = $1 AND p.card_id = f.id
)
ORDER BY f.created_at, f.id
LIMIT $2`

const listByDifficultySQL = `
SELECT ` + flashcardColumns + `
FROM flashcards
WHERE difficulty = $1
ORDER BY created_at, id
LIMIT $2`

// GetByID returns a flashcard by ID.
// Returns domain.ErrNotFound if the card does not exist.
func (r *Repo) GetByID(ctx context.Context, cardID uuid.UUID) (*domain.Flashcard, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	card, err := scanFlashcard(querier.QueryRow(ctx, getByIDSQL, cardID))
	if err != nil {
		return nil, mapError(err, "flashcard", cardID)
	}

	return card, nil
}

// GetByIDs returns the flashcards matching the given IDs. Missing IDs are
// silently absent from the result; callers decide how to treat the gap.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Flashcard, error) {
	if len(ids) == 0 {
		return []domain.Flashcard{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, getByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("get flashcards by ids: %w", err)
	}
	defer rows.Close()

	return collectFlashcards(rows)
}

// ListUnseen returns up to limit catalog cards the user has never had a
// progress record for, oldest first.
func (r *Repo) ListUnseen(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Flashcard, error) {
	if limit <= 0 {
		return []domain.Flashcard{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listUnseenSQL, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list unseen flashcards: %w", err)
	}
	defer rows.Close()

	return collectFlashcards(rows)
}

// ListByDifficulty returns up to limit cards from a difficulty tier,
// oldest first.
func (r *Repo) ListByDifficulty(ctx context.Context, tier domain.DifficultyLevel, limit int) ([]domain.Flashcard, error) {
	if limit <= 0 {
		return []domain.Flashcard{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByDifficultySQL, tier, limit)
	if err != nil {
		return nil, fmt.Errorf("list flashcards by difficulty: %w", err)
	}
	defer rows.Close()

	return collectFlashcards(rows)
}

// List returns a filtered page of the catalog plus the total count matching
// the filter.
func (r *Repo) List(ctx context.Context, filter Filter, limit, offset int) ([]domain.Flashcard, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	where := filterConditions(filter)

	countSQL, countArgs, err := sq.Select("count(*)").
		From("flashcards").
		Where(where).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build flashcards count query: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count flashcards: %w", err)
	}

	builder := sq.Select("id", "question", "answer", "category", "difficulty", "tags", "created_at").
		From("flashcards").
		Where(where).
		OrderBy("created_at", "id").
		PlaceholderFormat(sq.Dollar)

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}

	listSQL, listArgs, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build flashcards list query: %w", err)
	}

	rows, err := querier.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list flashcards: %w", err)
	}
	defer rows.Close()

	cards, err := collectFlashcards(rows)
	if err != nil {
		return nil, 0, err
	}

	return cards, total, nil
}

func filterConditions(filter Filter) sq.And {
	cond := sq.And{}
	if filter.Category != "" {
		cond = append(cond, sq.Eq{"category": filter.Category})
	}
	if filter.Difficulty != "" {
		cond = append(cond, sq.Eq{"difficulty": string(filter.Difficulty)})
	}
	if filter.Tag != "" {
		cond = append(cond, sq.Expr("? = ANY(tags)", filter.Tag))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		cond = append(cond, sq.Or{
			sq.ILike{"question": pattern},
			sq.ILike{"answer": pattern},
		})
	}
	if len(cond) == 0 {
		cond = append(cond, sq.Expr("TRUE"))
	}
	return cond
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func scanFlashcard(row pgx.Row) (*domain.Flashcard, error) {
	var card domain.Flashcard
	var difficulty string

	err := row.Scan(
		&card.ID, &card.Question, &card.Answer, &card.Category,
		&difficulty, &card.Tags, &card.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.Difficulty = domain.DifficultyLevel(difficulty)

	return &card, nil
}

func collectFlashcards(rows pgx.Rows) ([]domain.Flashcard, error) {
	var cards []domain.Flashcard
	for rows.Next() {
		card, err := scanFlashcard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flashcard: %w", err)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flashcards: %w", err)
	}

	if cards == nil {
		cards = []domain.Flashcard{}
	}

	return cards, nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
