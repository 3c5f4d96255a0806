package handlers

import (
	"net/http"
	"strconv"

	"github.com/witchakorn/stockarena/internal/contracts"
	"github.com/witchakorn/stockarena/internal/report"
	"github.com/witchakorn/stockarena/pkg/logger"
	"github.com/witchakorn/stockarena/pkg/redis"
)

// ReportHandler handles analytics API endpoints
// ⭐ SSOT: 리포트 API 핸들러는 이 구조체에서만
type ReportHandler struct {
	repo        contracts.ChallengeRepository
	cache       *redis.Cache
	logger      *logger.Logger
	defaultDays int
}

// NewReportHandler creates a new report handler. cache may be nil when
// Redis is disabled.
func NewReportHandler(repo contracts.ChallengeRepository, cache *redis.Cache, defaultDays int, log *logger.Logger) *ReportHandler {
	if defaultDays <= 0 {
		defaultDays = 30
	}
	return &ReportHandler{
		repo:        repo,
		cache:       cache,
		logger:      log,
		defaultDays: defaultDays,
	}
}

// GetReport generates the accuracy report over recent history
// GET /api/challenge/report?days=30&top=5
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days := h.defaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			respondError(w, http.StatusBadRequest, "days must be in 1..365")
			return
		}
		days = parsed
	}

	opts := contracts.DefaultReportOptions()
	if raw := r.URL.Query().Get("top"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 25 {
			respondError(w, http.StatusBadRequest, "top must be in 1..25")
			return
		}
		opts.TopN = parsed
	}

	if h.cache != nil {
		var cached contracts.ChallengeReport
		found, err := h.cache.Get(ctx, redis.ReportKey(days, opts.TopN), &cached)
		if err != nil {
			h.logger.WithError(err).Warn("Report cache read failed")
		} else if found {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	history, err := h.repo.History(ctx, days)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load challenge history")
		respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	rep := report.NewEngine(opts).Generate(history)

	if h.cache != nil {
		if err := h.cache.Set(ctx, redis.ReportKey(days, opts.TopN), rep, redis.TTLShort); err != nil {
			h.logger.WithError(err).Warn("Report cache write failed")
		}
	}

	respondJSON(w, http.StatusOK, rep)
}
