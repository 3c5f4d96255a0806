package challenge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/witchakorn/stockarena/internal/contracts"
)

// ErrNotPending is returned when verifying a challenge that is no longer pending
var ErrNotPending = errors.New("challenge is not pending")

// Repository persists challenges and the win counter in PostgreSQL
// ⭐ SSOT: 챌린지/점수 영속화는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var (
	_ contracts.ChallengeRepository = (*Repository)(nil)
	_ contracts.ScoreStore          = (*Repository)(nil)
)

const challengeColumns = `challenge_date, verification_date, predictions, outcomes, correct_count, won, status, created_at`

// CreateIfAbsent atomically persists the challenge unless one already exists
// for its date. 동시 생성 경쟁은 DB의 조건부 INSERT 한 번으로 수렴
func (r *Repository) CreateIfAbsent(ctx context.Context, ch contracts.Challenge) (contracts.Challenge, bool, error) {
	predictions, err := json.Marshal(ch.Predictions)
	if err != nil {
		return contracts.Challenge{}, false, fmt.Errorf("marshal predictions: %w", err)
	}

	query := `
		INSERT INTO challenges (challenge_date, predictions, status, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (challenge_date) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, ch.ChallengeDate, predictions, ch.Status, ch.CreatedAt)
	if err != nil {
		return contracts.Challenge{}, false, fmt.Errorf("insert challenge: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Another caller won the race; return the stored row.
		stored, err := r.Get(ctx, ch.ChallengeDate)
		if err != nil {
			return contracts.Challenge{}, false, err
		}
		if stored == nil {
			return contracts.Challenge{}, false, fmt.Errorf("challenge for %s vanished after conflict", ch.ChallengeDate.Format("2006-01-02"))
		}
		return *stored, false, nil
	}

	return ch, true, nil
}

// Get returns the challenge for the date regardless of status, nil if none
func (r *Repository) Get(ctx context.Context, date time.Time) (*contracts.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE challenge_date = $1`

	return r.queryOne(ctx, query, contracts.DateKey(date))
}

// GetPending returns the pending challenge for the date, nil if none.
// 이미 검증된 날짜는 nil. 재검증 no-op의 근거
func (r *Repository) GetPending(ctx context.Context, date time.Time) (*contracts.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE challenge_date = $1 AND status = 'pending'`

	return r.queryOne(ctx, query, contracts.DateKey(date))
}

// Latest returns the most recent challenge, nil if none
func (r *Repository) Latest(ctx context.Context) (*contracts.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		ORDER BY challenge_date DESC
		LIMIT 1`

	return r.queryOne(ctx, query)
}

// SaveVerified transitions a pending challenge to verified and bumps the
// score for a win, both inside one transaction (both-or-neither)
func (r *Repository) SaveVerified(ctx context.Context, ch contracts.Challenge) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	if !ch.Verified() {
		return fmt.Errorf("challenge for %s is not verified", ch.ChallengeDate.Format("2006-01-02"))
	}

	outcomes, err := json.Marshal(ch.Outcomes)
	if err != nil {
		return fmt.Errorf("marshal outcomes: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// The status guard makes double verification a no-op at the SQL level.
	update := `
		UPDATE challenges
		SET status = 'verified',
		    verification_date = $2,
		    outcomes = $3,
		    correct_count = $4,
		    won = $5
		WHERE challenge_date = $1 AND status = 'pending'`

	tag, err := tx.Exec(ctx, update,
		ch.ChallengeDate, ch.VerificationDate, outcomes, *ch.CorrectCount, *ch.Won)
	if err != nil {
		return fmt.Errorf("update challenge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}

	if *ch.Won {
		if _, err := incrementScore(ctx, tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit verification: %w", err)
	}
	return nil
}

// History returns challenges ordered by challenge date descending
func (r *Repository) History(ctx context.Context, limit int) ([]contracts.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		ORDER BY challenge_date DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	challenges := make([]contracts.Challenge, 0, limit)
	for rows.Next() {
		ch, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, ch)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return challenges, nil
}

// Increment atomically adds one win and returns the new score
func (r *Repository) Increment(ctx context.Context) (int, error) {
	return incrementScore(ctx, r.pool)
}

// Score returns the current score, 0 when never incremented
func (r *Repository) Score(ctx context.Context) (int, error) {
	var score int
	err := r.pool.QueryRow(ctx, `SELECT score FROM challenge_score WHERE id = 1`).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read score: %w", err)
	}
	return score, nil
}

// execer covers both pool and transaction query execution
type execer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// incrementScore performs the atomic single-row counter bump
func incrementScore(ctx context.Context, q execer) (int, error) {
	query := `
		INSERT INTO challenge_score (id, score, updated_at)
		VALUES (1, 1, now())
		ON CONFLICT (id) DO UPDATE
		SET score = challenge_score.score + 1,
		    updated_at = now()
		RETURNING score`

	var score int
	if err := q.QueryRow(ctx, query).Scan(&score); err != nil {
		return 0, fmt.Errorf("increment score: %w", err)
	}
	return score, nil
}

func (r *Repository) queryOne(ctx context.Context, query string, args ...any) (*contracts.Challenge, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query challenge: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if rows.Err() != nil {
			return nil, rows.Err()
		}
		return nil, nil
	}

	ch, err := scanChallenge(rows)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func scanChallenge(row pgx.Rows) (contracts.Challenge, error) {
	var (
		ch           contracts.Challenge
		predictions  []byte
		outcomes     []byte
		correctCount *int
		won          *bool
		status       string
	)

	if err := row.Scan(
		&ch.ChallengeDate,
		&ch.VerificationDate,
		&predictions,
		&outcomes,
		&correctCount,
		&won,
		&status,
		&ch.CreatedAt,
	); err != nil {
		return contracts.Challenge{}, fmt.Errorf("scan challenge: %w", err)
	}

	if err := json.Unmarshal(predictions, &ch.Predictions); err != nil {
		return contracts.Challenge{}, fmt.Errorf("unmarshal predictions: %w", err)
	}
	if outcomes != nil {
		if err := json.Unmarshal(outcomes, &ch.Outcomes); err != nil {
			return contracts.Challenge{}, fmt.Errorf("unmarshal outcomes: %w", err)
		}
	}

	ch.CorrectCount = correctCount
	ch.Won = won
	ch.Status = contracts.ChallengeStatus(status)
	ch.ChallengeDate = contracts.DateKey(ch.ChallengeDate)

	return ch, nil
}
