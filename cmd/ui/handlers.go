package main

import (
	"encoding/json"
	"net/http"
	"time"

	"alpaca-trade-bot-go/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log *zap.Logger
	db  *gorm.DB
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, db *gorm.DB) *APIHandler {
	return &APIHandler{log: log, db: db}
}

// PositionsHandler returns all positions, open ones first.
func (h *APIHandler) PositionsHandler(w http.ResponseWriter, r *http.Request) {
	var positions []models.Position
	if err := h.db.Order("status asc, symbol asc").Find(&positions).Error; err != nil {
		h.log.Error("Failed to get positions from database", zap.Error(err))
		http.Error(w, "Failed to get positions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(positions)
}

// TradesHandler returns the full audit trail, most recent first.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	var trades []models.TradeRecord
	if err := h.db.Order("timestamp desc, id desc").Find(&trades).Error; err != nil {
		h.log.Error("Failed to get trades from database", zap.Error(err))
		http.Error(w, "Failed to get trades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trades)
}

// StatsDetail holds calculated statistics for a given period.
type StatsDetail struct {
	TotalSells      int64   `json:"total_sells"`
	ProfitableSells int64   `json:"profitable_sells"`
	WinRate         float64 `json:"win_rate"`
	RealizedPnL     float64 `json:"realized_pnl"`
}

// StatisticsResponse is the structure for the /api/statistics endpoint.
type StatisticsResponse struct {
	Since24h StatsDetail `json:"since_24h"`
	AllTime  StatsDetail `json:"all_time"`
}

// StatisticsHandler calculates realized profit statistics from sell records.
func (h *APIHandler) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	var sells []models.TradeRecord
	if err := h.db.Where("side = ? AND pnl IS NOT NULL", models.SideSell).Find(&sells).Error; err != nil {
		h.log.Error("Failed to get trades for statistics", zap.Error(err))
		http.Error(w, "Failed to calculate statistics", http.StatusInternalServerError)
		return
	}

	since24h := time.Now().Add(-24 * time.Hour).Unix()

	stats24h := StatsDetail{}
	statsAllTime := StatsDetail{}

	for _, trade := range sells {
		pnl := *trade.PnL

		statsAllTime.TotalSells++
		if pnl > 0 {
			statsAllTime.ProfitableSells++
		}
		statsAllTime.RealizedPnL += pnl

		if trade.Timestamp >= since24h {
			stats24h.TotalSells++
			if pnl > 0 {
				stats24h.ProfitableSells++
			}
			stats24h.RealizedPnL += pnl
		}
	}

	if statsAllTime.TotalSells > 0 {
		statsAllTime.WinRate = float64(statsAllTime.ProfitableSells) / float64(statsAllTime.TotalSells)
	}
	if stats24h.TotalSells > 0 {
		stats24h.WinRate = float64(stats24h.ProfitableSells) / float64(stats24h.TotalSells)
	}

	response := StatisticsResponse{
		Since24h: stats24h,
		AllTime:  statsAllTime,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
