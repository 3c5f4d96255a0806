package contracts

import (
	"fmt"
	"time"
)

const (
	// PredictionsPerChallenge 하루 챌린지의 예측 종목 수 (고정)
	PredictionsPerChallenge = 10

	// WinThreshold 챌린지 승리 기준 (10개 중 7개 적중)
	WinThreshold = 7
)

// Direction 가격 방향 예측
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionUnknown Direction = "unknown" // 검증 전 outcome 전용
)

// Valid reports whether d is a predictable direction (up/down)
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// ChallengeStatus 챌린지 상태
type ChallengeStatus string

const (
	StatusPending  ChallengeStatus = "pending"
	StatusVerified ChallengeStatus = "verified"
)

// Valid reports whether s is a known status
func (s ChallengeStatus) Valid() bool {
	return s == StatusPending || s == StatusVerified
}

// Prediction 단일 종목 예측 (생성 이후 불변)
type Prediction struct {
	Ticker         string    `json:"ticker"`
	Direction      Direction `json:"direction"`
	Confidence     int       `json:"confidence"`      // 0~100 (%)
	ReferencePrice float64   `json:"reference_price"` // 예측 시점 가격
	Rationale      string    `json:"rationale"`
	PredictedAt    time.Time `json:"predicted_at"`
}

// Validate checks boundary invariants for a prediction
func (p Prediction) Validate() error {
	if p.Ticker == "" {
		return &ValidationError{Field: "ticker", Message: "ticker is required"}
	}
	if !p.Direction.Valid() {
		return &ValidationError{Field: "direction", Message: fmt.Sprintf("invalid direction %q", p.Direction)}
	}
	if p.Confidence < 0 || p.Confidence > 100 {
		return &ValidationError{Field: "confidence", Message: fmt.Sprintf("confidence %d out of range [0,100]", p.Confidence)}
	}
	if p.ReferencePrice <= 0 {
		return &ValidationError{Field: "reference_price", Message: "reference price must be positive"}
	}
	return nil
}

// Outcome 검증 시점의 실현 결과 (검증 이후 불변)
// Predictions와 인덱스 정렬 1:1 대응
type Outcome struct {
	Ticker             string    `json:"ticker"`
	PredictedDirection Direction `json:"predicted_direction"`
	ActualDirection    Direction `json:"actual_direction"`
	Correct            bool      `json:"correct"`
	ReferencePrice     float64   `json:"reference_price"`
	FinalPrice         float64   `json:"final_price"`
	PercentChange      float64   `json:"percent_change"`

	// Degraded marks a synthetic substitute price (실데이터 아님).
	// 리포트/랭킹에서 구분 가능해야 함
	Degraded bool `json:"degraded,omitempty"`
}

// Challenge 하루 단위 예측 챌린지
// challengeDate당 최대 1개, pending → verified 단방향 전이
type Challenge struct {
	ChallengeDate    time.Time       `json:"challenge_date"`
	VerificationDate *time.Time      `json:"verification_date,omitempty"`
	Predictions      []Prediction    `json:"predictions"`
	Outcomes         []Outcome       `json:"outcomes,omitempty"`
	CorrectCount     *int            `json:"correct_count,omitempty"`
	Won              *bool           `json:"won,omitempty"`
	Status           ChallengeStatus `json:"status"`
	CreatedAt        time.Time       `json:"created_at,omitempty"`
}

// Validate checks structural invariants of a challenge
func (c Challenge) Validate() error {
	if len(c.Predictions) != PredictionsPerChallenge {
		return &ValidationError{
			Field:   "predictions",
			Message: fmt.Sprintf("challenge requires exactly %d predictions, got %d", PredictionsPerChallenge, len(c.Predictions)),
		}
	}
	if !c.Status.Valid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("invalid status %q", c.Status)}
	}
	if c.Status == StatusVerified {
		if len(c.Outcomes) != len(c.Predictions) {
			return &ValidationError{
				Field:   "outcomes",
				Message: fmt.Sprintf("verified challenge requires %d outcomes, got %d", len(c.Predictions), len(c.Outcomes)),
			}
		}
		if c.CorrectCount == nil || c.Won == nil {
			return &ValidationError{Field: "correct_count", Message: "verified challenge requires correct_count and won"}
		}
		if *c.Won != (*c.CorrectCount >= WinThreshold) {
			return &ValidationError{
				Field:   "won",
				Message: fmt.Sprintf("won=%v inconsistent with correct_count=%d", *c.Won, *c.CorrectCount),
			}
		}
	}
	for i, p := range c.Predictions {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("prediction[%d]: %w", i, err)
		}
	}
	return nil
}

// Verified reports whether the challenge has been verified
func (c Challenge) Verified() bool {
	return c.Status == StatusVerified
}

// DateKey 챌린지 날짜의 저장 키 (캘린더 일 단위)
func DateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
