package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/witchakorn/stockarena/internal/challenge"
	"github.com/witchakorn/stockarena/internal/contracts"
	"github.com/witchakorn/stockarena/pkg/logger"
)

// ChallengeHandler handles challenge API endpoints
// ⭐ SSOT: 챌린지 API 핸들러는 이 구조체에서만
type ChallengeHandler struct {
	lifecycle *challenge.Lifecycle
	verifier  *challenge.Verifier
	scores    contracts.ScoreStore
	logger    *logger.Logger
}

// NewChallengeHandler creates a new challenge handler
func NewChallengeHandler(
	lifecycle *challenge.Lifecycle,
	verifier *challenge.Verifier,
	scores contracts.ScoreStore,
	log *logger.Logger,
) *ChallengeHandler {
	return &ChallengeHandler{
		lifecycle: lifecycle,
		verifier:  verifier,
		scores:    scores,
		logger:    log,
	}
}

// createRequest is the optional POST body for challenge creation
type createRequest struct {
	Date    string   `json:"date,omitempty"`    // YYYY-MM-DD, default today
	Tickers []string `json:"tickers,omitempty"` // default random popular set
}

// Create creates today's challenge (idempotent)
// POST /api/challenge
func (h *ChallengeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	tickers := req.Tickers
	if len(tickers) == 0 {
		tickers = challenge.RandomSet()
	}

	ch, err := h.lifecycle.Create(ctx, date, tickers)
	if err != nil {
		if contracts.IsValidation(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to create challenge")
		respondError(w, http.StatusInternalServerError, "failed to create challenge")
		return
	}

	respondJSON(w, http.StatusCreated, ch)
}

// verifyRequest is the optional POST body for verification
type verifyRequest struct {
	Date string `json:"date,omitempty"` // YYYY-MM-DD, default yesterday
}

// Verify verifies the pending challenge for a date
// POST /api/challenge/verify
func (h *ChallengeHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	// Challenges verify against the following day's prices, so the
	// default target is yesterday's batch.
	date := time.Now().UTC().AddDate(0, 0, -1)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	ch, err := h.verifier.Verify(ctx, date)
	if err != nil {
		if errors.Is(err, challenge.ErrNotPending) {
			respondError(w, http.StatusConflict, "challenge already verified")
			return
		}
		h.logger.WithError(err).Error("Failed to verify challenge")
		respondError(w, http.StatusInternalServerError, "failed to verify challenge")
		return
	}
	if ch == nil {
		respondJSON(w, http.StatusOK, map[string]string{
			"status": "no pending challenge",
		})
		return
	}

	respondJSON(w, http.StatusOK, ch)
}

// GetLatest returns the most recent challenge
// GET /api/challenge/latest
func (h *ChallengeHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ch, err := h.lifecycle.Latest(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest challenge")
		respondError(w, http.StatusInternalServerError, "failed to get latest challenge")
		return
	}
	if ch == nil {
		respondError(w, http.StatusNotFound, "no challenges yet")
		return
	}

	respondJSON(w, http.StatusOK, ch)
}

// GetHistory returns recent challenges, newest first
// GET /api/challenge/history?limit=30
func (h *ChallengeHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			respondError(w, http.StatusBadRequest, "limit must be in 1..365")
			return
		}
		limit = parsed
	}

	history, err := h.lifecycle.History(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get challenge history")
		respondError(w, http.StatusInternalServerError, "failed to get history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(history),
		"challenges": history,
	})
}

// GetScore returns the cumulative win counter
// GET /api/challenge/score
func (h *ChallengeHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	score, err := h.scores.Score(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get score")
		respondError(w, http.StatusInternalServerError, "failed to get score")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"score": score})
}
