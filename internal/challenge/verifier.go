package challenge

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/witchakorn/stockarena/internal/contracts"
)

// VerifierConfig holds verification policy
type VerifierConfig struct {
	// CountDegraded controls whether synthetic-price outcomes contribute
	// to correctCount. 원본 동작은 포함(true)이지만 정책으로 분리
	CountDegraded bool
}

// DefaultVerifierConfig returns the policy matching the original behavior
func DefaultVerifierConfig() VerifierConfig {
	return VerifierConfig{CountDegraded: true}
}

// Verifier scores a pending challenge against realized prices
// ⭐ SSOT: 검증(채점)은 여기서만. pending → verified 단방향
type Verifier struct {
	repo   contracts.ChallengeRepository
	feed   contracts.PriceFeed
	config VerifierConfig
	log    zerolog.Logger

	// substitute produces a synthetic final price when the feed fails.
	// 테스트에서 교체 가능
	substitute func(referencePrice float64) float64
}

// NewVerifier creates a new verifier
func NewVerifier(repo contracts.ChallengeRepository, feed contracts.PriceFeed, config VerifierConfig, log zerolog.Logger) *Verifier {
	return &Verifier{
		repo:       repo,
		feed:       feed,
		config:     config,
		log:        log.With().Str("component", "challenge.verifier").Logger(),
		substitute: syntheticPrice,
	}
}

// syntheticPrice derives a stand-in final price within ±5% of the reference
func syntheticPrice(referencePrice float64) float64 {
	change := rand.Float64()*0.1 - 0.05
	return referencePrice * (1 + change)
}

type priceResult struct {
	price    float64
	degraded bool
}

// Verify scores the pending challenge for the given calendar day.
// pending 챌린지가 없으면 (nil, nil) no-op. exactly-once 보장
func (v *Verifier) Verify(ctx context.Context, date time.Time) (*contracts.Challenge, error) {
	key := contracts.DateKey(date)

	ch, err := v.repo.GetPending(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load pending challenge: %w", err)
	}
	if ch == nil {
		v.log.Info().
			Time("challenge_date", key).
			Msg("no pending challenge to verify")
		return nil, nil
	}

	// Fan out the independent price lookups; nothing shared is written
	// until the join below.
	results := make([]priceResult, len(ch.Predictions))
	var wg sync.WaitGroup
	for i, p := range ch.Predictions {
		wg.Add(1)
		go func(i int, p contracts.Prediction) {
			defer wg.Done()

			price, err := v.feed.Price(ctx, p.Ticker)
			if err != nil {
				// Degraded mode: one dead quote must not block the batch.
				// The outcome is flagged so analytics can tell it apart.
				substitute := v.substitute(p.ReferencePrice)
				v.log.Warn().Err(err).
					Str("ticker", p.Ticker).
					Float64("substitute_price", substitute).
					Msg("price feed failed, substituting synthetic price")
				results[i] = priceResult{price: substitute, degraded: true}
				return
			}
			results[i] = priceResult{price: price}
		}(i, p)
	}
	wg.Wait()

	now := time.Now().UTC()
	outcomes := make([]contracts.Outcome, len(ch.Predictions))
	correctCount := 0
	degradedCount := 0

	for i, p := range ch.Predictions {
		res := results[i]

		percentChange := (res.price - p.ReferencePrice) / p.ReferencePrice * 100
		actual := contracts.DirectionDown
		if percentChange >= 0 {
			actual = contracts.DirectionUp
		}
		correct := p.Direction == actual

		outcomes[i] = contracts.Outcome{
			Ticker:             p.Ticker,
			PredictedDirection: p.Direction,
			ActualDirection:    actual,
			Correct:            correct,
			ReferencePrice:     p.ReferencePrice,
			FinalPrice:         res.price,
			PercentChange:      percentChange,
			Degraded:           res.degraded,
		}

		if res.degraded {
			degradedCount++
			if !v.config.CountDegraded {
				continue
			}
		}
		if correct {
			correctCount++
		}
	}

	won := correctCount >= contracts.WinThreshold

	ch.Status = contracts.StatusVerified
	ch.VerificationDate = &now
	ch.Outcomes = outcomes
	ch.CorrectCount = &correctCount
	ch.Won = &won

	if err := ch.Validate(); err != nil {
		return nil, fmt.Errorf("verified challenge invalid: %w", err)
	}

	// Persisting the verified state and bumping the score are one unit of
	// work inside the repository; a win can never land without its point.
	if err := v.repo.SaveVerified(ctx, *ch); err != nil {
		return nil, fmt.Errorf("persist verification: %w", err)
	}

	v.log.Info().
		Time("challenge_date", key).
		Int("correct_count", correctCount).
		Int("degraded", degradedCount).
		Bool("won", won).
		Msg("challenge verified")

	return ch, nil
}
