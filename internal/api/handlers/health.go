package handlers

import (
	"net/http"

	"github.com/wonny/covidtrend/internal/contracts"
	"github.com/wonny/covidtrend/internal/dataset"
	"github.com/wonny/covidtrend/pkg/logger"
)

// StatsSource reports dataset bounds (query.Facade)
type StatsSource interface {
	Stats() dataset.Stats
}

// HealthResponse is the /health body
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Regions   int    `json:"regions"`
	Rows      int    `json:"rows"`
	FirstDate string `json:"first_date,omitempty"`
	LastDate  string `json:"last_date,omitempty"`
}

// Health returns liveness plus the loaded dataset bounds
func Health(source StatsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := source.Stats()
		resp := HealthResponse{
			Status:  "ok",
			Service: logger.ServiceName,
			Regions: stats.Regions,
			Rows:    stats.Rows,
		}
		if !stats.FirstDate.IsZero() {
			resp.FirstDate = stats.FirstDate.Format(contracts.DateLayout)
			resp.LastDate = stats.LastDate.Format(contracts.DateLayout)
		}
		RespondJSON(w, http.StatusOK, resp)
	}
}
