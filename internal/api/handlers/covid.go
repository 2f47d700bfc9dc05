package handlers

import (
	"net/http"

	"github.com/wonny/covidtrend/internal/query"
	"github.com/wonny/covidtrend/pkg/logger"
)

// CovidHandler serves the JSON analytics endpoints
// ⭐ SSOT: /api/* JSON 핸들러는 이 구조체에서만
type CovidHandler struct {
	facade *query.Facade
	logger *logger.Logger
}

// NewCovidHandler creates a new handler over the query facade
func NewCovidHandler(facade *query.Facade, log *logger.Logger) *CovidHandler {
	return &CovidHandler{
		facade: facade,
		logger: log,
	}
}

// dataRequest reads state/start_date/end_date
func dataRequest(r *http.Request) query.DataRequest {
	q := r.URL.Query()
	return query.DataRequest{
		Region: q.Get("state"),
		Start:  q.Get("start_date"),
		End:    q.Get("end_date"),
	}
}

// GetStates lists regions alphabetically
// GET /api/states
func (h *CovidHandler) GetStates(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.facade.ListRegions(r.Context()))
}

// GetSummaries returns the latest snapshot per region
// GET /api/states/summary
func (h *CovidHandler) GetSummaries(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.facade.RegionSummaries(r.Context()))
}

// GetData returns raw cumulative counts
// GET /api/data?state=&start_date=&end_date=
func (h *CovidHandler) GetData(w http.ResponseWriter, r *http.Request) {
	resp, err := h.facade.GetData(r.Context(), dataRequest(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, resp)
}

// GetGrowthRate returns day-over-day growth in percent
// GET /api/growth-rate?state=&start_date=&end_date=
func (h *CovidHandler) GetGrowthRate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.facade.GetGrowthRate(r.Context(), dataRequest(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, resp)
}

// GetRecoveryRate returns cured/confirmed in percent
// GET /api/recovery-rate?state=&start_date=&end_date=
func (h *CovidHandler) GetRecoveryRate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.facade.GetRecoveryRate(r.Context(), dataRequest(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, resp)
}

// GetPredictions forecasts confirmed cases
// GET /api/predictions?state=&days=30
func (h *CovidHandler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	days, err := optionalInt(r, "days")
	if err != nil {
		RespondError(w, err)
		return
	}

	resp, err := h.facade.GetPredictions(r.Context(), query.PredictionRequest{
		Region:      r.URL.Query().Get("state"),
		HorizonDays: days,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, resp)
}

// EvaluatePredictions backtests the forecaster on the last holdout days
// GET /api/predictions/evaluate?state=&holdout=7
func (h *CovidHandler) EvaluatePredictions(w http.ResponseWriter, r *http.Request) {
	holdout, err := optionalInt(r, "holdout")
	if err != nil {
		RespondError(w, err)
		return
	}

	resp, err := h.facade.EvaluateForecast(r.Context(), query.EvaluationRequest{
		Region:      r.URL.Query().Get("state"),
		HoldoutDays: holdout,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, resp)
}

// GetMovingAverage returns trailing means of confirmed and deaths
// GET /api/moving-average?state=&window=7&start_date=&end_date=
func (h *CovidHandler) GetMovingAverage(w http.ResponseWriter, r *http.Request) {
	window, err := optionalInt(r, "window")
	if err != nil {
		RespondError(w, err)
		return
	}

	q := r.URL.Query()
	resp, err := h.facade.GetMovingAverage(r.Context(), query.MovingAverageRequest{
		Region: q.Get("state"),
		Window: window,
		Start:  q.Get("start_date"),
		End:    q.Get("end_date"),
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, resp)
}

// CompareStates returns confirmed series for several regions
// GET /api/state-comparison?states[]=A&states[]=B
func (h *CovidHandler) CompareStates(w http.ResponseWriter, r *http.Request) {
	resp, err := h.facade.CompareRegions(r.Context(), query.ComparisonRequest{Regions: stateList(r)})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, resp)
}
