package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/app"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/persistence"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// ScreenerHandler serves scan results over HTTP. The API is read-only
// apart from the rebalance planner, which computes but never executes.
type ScreenerHandler struct {
	candidates  *persistence.CandidateRepository
	allocations *persistence.AllocationRepository
	runner      *app.Runner
	strategy    *strategyconfig.Config
	configHash  string
	logger      *logger.Logger
}

// NewScreenerHandler creates the handler.
func NewScreenerHandler(
	candidates *persistence.CandidateRepository,
	allocations *persistence.AllocationRepository,
	runner *app.Runner,
	strategy *strategyconfig.Config,
	configHash string,
	log *logger.Logger,
) *ScreenerHandler {
	return &ScreenerHandler{
		candidates:  candidates,
		allocations: allocations,
		runner:      runner,
		strategy:    strategy,
		configHash:  configHash,
		logger:      log,
	}
}

// GetStatus returns the loaded strategy identity.
// GET /api/v1/status
func (h *ScreenerHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"strategy_id": h.strategy.Meta.StrategyID,
		"version":     h.strategy.Meta.Version,
		"config_hash": h.configHash,
		"server_time": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetCandidates returns a scan's ranked candidates, latest by default.
// GET /api/v1/candidates?date=2026-08-25
func (h *ScreenerHandler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		candidates, err := h.candidates.ListLatest(ctx)
		if err != nil {
			h.logger.WithError(err).Error("Failed to list latest candidates")
			respondError(w, http.StatusInternalServerError, "Failed to retrieve candidates")
			return
		}
		respondJSON(w, http.StatusOK, candidates)
		return
	}

	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
		return
	}

	candidates, err := h.candidates.ListByDate(ctx, date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list candidates by date")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve candidates")
		return
	}
	respondJSON(w, http.StatusOK, candidates)
}

// GetAllocation returns the most recent constructed portfolio.
// GET /api/v1/allocation
func (h *ScreenerHandler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.allocations.Latest(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest allocation")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve allocation")
		return
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "No allocation stored yet")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// RebalanceRequest carries the caller's current weights in percent.
type RebalanceRequest struct {
	Current map[string]float64 `json:"current"`
}

// PostRebalance plans BUY/HOLD/SELL actions against the latest stored
// allocation.
// POST /api/v1/rebalance
func (h *ScreenerHandler) PostRebalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RebalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Current == nil {
		req.Current = make(map[string]float64)
	}

	plan, err := h.runner.RebalancePlan(ctx, req.Current)
	if err != nil {
		h.logger.WithError(err).Error("Failed to plan rebalance")
		respondError(w, http.StatusInternalServerError, "Failed to plan rebalance")
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
