package contracts

import (
	"context"
	"time"
)

// Predictor produces a directional forecast for one ticker
// ⭐ SSOT: LLM 예측기 인터페이스 (외부 협력자)
type Predictor interface {
	Predict(ctx context.Context, ticker string) (*PredictionDraft, error)
}

// PredictionDraft is the raw predictor output before a challenge binds it
// to a reference price
type PredictionDraft struct {
	Direction  Direction `json:"direction"`
	Confidence int       `json:"confidence"`
	Rationale  string    `json:"rationale"`
}

// PriceFeed returns the current market price of a ticker
// ⭐ SSOT: 시세 소스 인터페이스 (외부 협력자)
type PriceFeed interface {
	Price(ctx context.Context, ticker string) (float64, error)
}

// ChallengeRepository persists daily challenges keyed by calendar date
// ⭐ SSOT: 챌린지 저장소 인터페이스
type ChallengeRepository interface {
	// CreateIfAbsent atomically persists the challenge unless one already
	// exists for its date. Returns the stored challenge and whether this
	// call created it.
	CreateIfAbsent(ctx context.Context, challenge Challenge) (Challenge, bool, error)

	// GetPending returns the pending challenge for the date, nil if none
	GetPending(ctx context.Context, date time.Time) (*Challenge, error)

	// Get returns the challenge for the date regardless of status, nil if none
	Get(ctx context.Context, date time.Time) (*Challenge, error)

	// SaveVerified transitions a pending challenge to verified and, when it
	// is a win, bumps the score counter in the same unit of work.
	SaveVerified(ctx context.Context, challenge Challenge) error

	// History returns challenges ordered by challenge date descending
	History(ctx context.Context, limit int) ([]Challenge, error)

	// Latest returns the most recent challenge, nil if none
	Latest(ctx context.Context) (*Challenge, error)
}

// ScoreStore keeps the cumulative win counter
// ⭐ SSOT: 승리 카운터 인터페이스
type ScoreStore interface {
	// Increment atomically adds one win and returns the new score
	Increment(ctx context.Context) (int, error)

	// Score returns the current score, 0 when never incremented
	Score(ctx context.Context) (int, error)
}
