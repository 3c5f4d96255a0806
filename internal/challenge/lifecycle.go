package challenge

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/witchakorn/stockarena/internal/contracts"
)

// Lifecycle creates the daily prediction challenge
// ⭐ SSOT: 챌린지 생성은 여기서만
type Lifecycle struct {
	repo      contracts.ChallengeRepository
	predictor contracts.Predictor
	feed      contracts.PriceFeed
	log       zerolog.Logger
}

// NewLifecycle creates a new challenge lifecycle
func NewLifecycle(repo contracts.ChallengeRepository, predictor contracts.Predictor, feed contracts.PriceFeed, log zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		repo:      repo,
		predictor: predictor,
		feed:      feed,
		log:       log.With().Str("component", "challenge.lifecycle").Logger(),
	}
}

// Create builds and persists the challenge for the given calendar day.
// 하루 1개 보장: 이미 존재하면 기존 챌린지를 그대로 반환 (at-most-once)
// 예측/시세 조회가 하나라도 실패하면 아무것도 저장하지 않음 (all-or-nothing)
func (l *Lifecycle) Create(ctx context.Context, date time.Time, tickers []string) (contracts.Challenge, error) {
	if len(tickers) != contracts.PredictionsPerChallenge {
		return contracts.Challenge{}, &contracts.ValidationError{
			Field:   "tickers",
			Message: fmt.Sprintf("exactly %d tickers required, got %d", contracts.PredictionsPerChallenge, len(tickers)),
		}
	}

	key := contracts.DateKey(date)

	// Fast path: skip the expensive predictor calls when today's challenge
	// already exists. Correctness still rests on the atomic CreateIfAbsent
	// below, not on this read.
	if existing, err := l.repo.Get(ctx, key); err != nil {
		return contracts.Challenge{}, fmt.Errorf("check existing challenge: %w", err)
	} else if existing != nil {
		l.log.Info().
			Time("challenge_date", key).
			Msg("challenge already exists for date")
		return *existing, nil
	}

	predictions := make([]contracts.Prediction, 0, len(tickers))
	for _, ticker := range tickers {
		draft, err := l.predictor.Predict(ctx, ticker)
		if err != nil {
			return contracts.Challenge{}, fmt.Errorf("predict %s: %w", ticker, err)
		}

		price, err := l.feed.Price(ctx, ticker)
		if err != nil {
			return contracts.Challenge{}, fmt.Errorf("reference price %s: %w", ticker, err)
		}

		prediction := contracts.Prediction{
			Ticker:         ticker,
			Direction:      draft.Direction,
			Confidence:     draft.Confidence,
			ReferencePrice: price,
			Rationale:      draft.Rationale,
			PredictedAt:    time.Now().UTC(),
		}
		if err := prediction.Validate(); err != nil {
			return contracts.Challenge{}, fmt.Errorf("predictor output %s: %w", ticker, err)
		}

		l.log.Debug().
			Str("ticker", ticker).
			Str("direction", string(draft.Direction)).
			Int("confidence", draft.Confidence).
			Float64("reference_price", price).
			Msg("prediction collected")

		predictions = append(predictions, prediction)
	}

	ch := contracts.Challenge{
		ChallengeDate: key,
		Predictions:   predictions,
		Status:        contracts.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := ch.Validate(); err != nil {
		return contracts.Challenge{}, err
	}

	stored, created, err := l.repo.CreateIfAbsent(ctx, ch)
	if err != nil {
		return contracts.Challenge{}, fmt.Errorf("persist challenge: %w", err)
	}

	if created {
		l.log.Info().
			Time("challenge_date", key).
			Int("predictions", len(stored.Predictions)).
			Msg("daily challenge created")
	} else {
		// Lost the race to a concurrent creator; theirs is the challenge
		// of record.
		l.log.Info().
			Time("challenge_date", key).
			Msg("concurrent creation detected, using stored challenge")
	}

	return stored, nil
}

// Latest returns the most recent challenge, nil when none exists
func (l *Lifecycle) Latest(ctx context.Context) (*contracts.Challenge, error) {
	return l.repo.Latest(ctx)
}

// History returns up to limit challenges, newest first
func (l *Lifecycle) History(ctx context.Context, limit int) ([]contracts.Challenge, error) {
	if limit <= 0 {
		limit = 10
	}
	return l.repo.History(ctx, limit)
}
