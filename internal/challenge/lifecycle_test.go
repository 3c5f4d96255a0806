package challenge

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witchakorn/stockarena/internal/contracts"
)

// fakeRepo is an in-memory ChallengeRepository + ScoreStore
type fakeRepo struct {
	challenges map[time.Time]contracts.Challenge
	score      int
	saveErr    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{challenges: make(map[time.Time]contracts.Challenge)}
}

func (f *fakeRepo) CreateIfAbsent(_ context.Context, ch contracts.Challenge) (contracts.Challenge, bool, error) {
	key := contracts.DateKey(ch.ChallengeDate)
	if existing, ok := f.challenges[key]; ok {
		return existing, false, nil
	}
	f.challenges[key] = ch
	return ch, true, nil
}

func (f *fakeRepo) Get(_ context.Context, date time.Time) (*contracts.Challenge, error) {
	if ch, ok := f.challenges[contracts.DateKey(date)]; ok {
		return &ch, nil
	}
	return nil, nil
}

func (f *fakeRepo) GetPending(_ context.Context, date time.Time) (*contracts.Challenge, error) {
	ch, ok := f.challenges[contracts.DateKey(date)]
	if !ok || ch.Status != contracts.StatusPending {
		return nil, nil
	}
	return &ch, nil
}

func (f *fakeRepo) SaveVerified(_ context.Context, ch contracts.Challenge) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	key := contracts.DateKey(ch.ChallengeDate)
	stored, ok := f.challenges[key]
	if !ok || stored.Status != contracts.StatusPending {
		return ErrNotPending
	}
	f.challenges[key] = ch
	if *ch.Won {
		f.score++
	}
	return nil
}

func (f *fakeRepo) History(_ context.Context, limit int) ([]contracts.Challenge, error) {
	out := make([]contracts.Challenge, 0, len(f.challenges))
	for _, ch := range f.challenges {
		out = append(out, ch)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) Latest(_ context.Context) (*contracts.Challenge, error) {
	var latest *contracts.Challenge
	for key := range f.challenges {
		if latest == nil || key.After(latest.ChallengeDate) {
			ch := f.challenges[key]
			latest = &ch
		}
	}
	return latest, nil
}

func (f *fakeRepo) Increment(_ context.Context) (int, error) {
	f.score++
	return f.score, nil
}

func (f *fakeRepo) Score(_ context.Context) (int, error) {
	return f.score, nil
}

// fakePredictor returns a fixed direction per ticker, failing listed tickers
type fakePredictor struct {
	directions map[string]contracts.Direction
	failOn     map[string]bool
	calls      int
}

func (f *fakePredictor) Predict(_ context.Context, ticker string) (*contracts.PredictionDraft, error) {
	f.calls++
	if f.failOn[ticker] {
		return nil, contracts.ErrPredictionUnavailable
	}
	dir := contracts.DirectionUp
	if d, ok := f.directions[ticker]; ok {
		dir = d
	}
	return &contracts.PredictionDraft{
		Direction:  dir,
		Confidence: 72,
		Rationale:  "momentum",
	}, nil
}

// fakeFeed returns a fixed price per ticker, failing listed tickers
type fakeFeed struct {
	prices map[string]float64
	failOn map[string]bool
}

func (f *fakeFeed) Price(_ context.Context, ticker string) (float64, error) {
	if f.failOn[ticker] {
		return 0, contracts.ErrPriceUnavailable
	}
	if p, ok := f.prices[ticker]; ok {
		return p, nil
	}
	return 100.0, nil
}

func testTickers() []string {
	return []string{"AAPL", "MSFT", "GOOGL", "AMZN", "META", "TSLA", "NVDA", "JPM", "V", "WMT"}
}

func TestLifecycleCreate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	lc := NewLifecycle(repo, &fakePredictor{}, &fakeFeed{}, zerolog.Nop())

	date := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	ch, err := lc.Create(ctx, date, testTickers())
	require.NoError(t, err)

	assert.Len(t, ch.Predictions, contracts.PredictionsPerChallenge)
	assert.Equal(t, contracts.StatusPending, ch.Status)
	assert.Equal(t, contracts.DateKey(date), ch.ChallengeDate)
	assert.Nil(t, ch.CorrectCount)
	assert.Nil(t, ch.Won)

	for _, p := range ch.Predictions {
		assert.NoError(t, p.Validate())
		assert.Equal(t, 100.0, p.ReferencePrice)
	}
}

func TestLifecycleCreateIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	predictor := &fakePredictor{}
	lc := NewLifecycle(repo, predictor, &fakeFeed{}, zerolog.Nop())

	date := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)
	first, err := lc.Create(ctx, date, testTickers())
	require.NoError(t, err)

	callsAfterFirst := predictor.calls

	// Same calendar day at a different clock time returns the stored
	// challenge without calling the predictor again.
	second, err := lc.Create(ctx, date.Add(5*time.Hour), testTickers())
	require.NoError(t, err)

	assert.Equal(t, first.ChallengeDate, second.ChallengeDate)
	assert.Equal(t, first.Predictions, second.Predictions)
	assert.Equal(t, callsAfterFirst, predictor.calls)
	assert.Len(t, repo.challenges, 1)
}

func TestLifecycleCreateAllOrNothing(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		predictor *fakePredictor
		feed      *fakeFeed
	}{
		{
			name:      "predictor failure",
			predictor: &fakePredictor{failOn: map[string]bool{"TSLA": true}},
			feed:      &fakeFeed{},
		},
		{
			name:      "price feed failure",
			predictor: &fakePredictor{},
			feed:      &fakeFeed{failOn: map[string]bool{"NVDA": true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			lc := NewLifecycle(repo, tt.predictor, tt.feed, zerolog.Nop())

			_, err := lc.Create(ctx, time.Now(), testTickers())
			require.Error(t, err)

			// A partial batch must never be persisted.
			assert.Empty(t, repo.challenges)
		})
	}
}

func TestLifecycleCreateRejectsWrongTickerCount(t *testing.T) {
	lc := NewLifecycle(newFakeRepo(), &fakePredictor{}, &fakeFeed{}, zerolog.Nop())

	_, err := lc.Create(context.Background(), time.Now(), []string{"AAPL", "MSFT"})
	require.Error(t, err)

	var verr *contracts.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestLifecycleCreateRejectsInvalidPredictorOutput(t *testing.T) {
	repo := newFakeRepo()
	predictor := &fakePredictor{directions: map[string]contracts.Direction{
		"AMZN": contracts.Direction("sideways"),
	}}
	lc := NewLifecycle(repo, predictor, &fakeFeed{}, zerolog.Nop())

	_, err := lc.Create(context.Background(), time.Now(), testTickers())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AMZN")
	assert.Empty(t, repo.challenges)
}

func TestLifecycleHistoryDefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	lc := NewLifecycle(repo, &fakePredictor{}, &fakeFeed{}, zerolog.Nop())

	for day := 1; day <= 15; day++ {
		date := time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC)
		_, err := lc.Create(ctx, date, testTickers())
		require.NoError(t, err, fmt.Sprintf("day %d", day))
	}

	history, err := lc.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 10)
}
