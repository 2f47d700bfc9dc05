package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/covidtrend/internal/api/handlers"
	"github.com/wonny/covidtrend/internal/contracts"
	"github.com/wonny/covidtrend/internal/query"
	"github.com/wonny/covidtrend/pkg/config"
	"github.com/wonny/covidtrend/pkg/logger"
	"github.com/wonny/covidtrend/pkg/redis"
)

// RouterDeps wires the router
type RouterDeps struct {
	Facade  *query.Facade
	Config  *config.Config
	Logger  *logger.Logger
	Limiter *redis.RateLimiter // nil → in-process limiter only
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	covid := handlers.NewCovidHandler(deps.Facade, log)
	chart := handlers.NewChartHandler(deps.Facade, log)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)

	// Health check
	r.HandleFunc("/health", handlers.Health(deps.Facade)).Methods(http.MethodGet)

	if deps.Config.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	// OPTIONS도 매칭시켜야 CORS preflight가 미들웨어까지 도달함
	get := []string{http.MethodGet, http.MethodOptions}
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/states", covid.GetStates).Methods(get...)
	api.HandleFunc("/states/summary", covid.GetSummaries).Methods(get...)
	api.HandleFunc("/data", covid.GetData).Methods(get...)
	api.HandleFunc("/predictions", covid.GetPredictions).Methods(get...)
	api.HandleFunc("/predictions/evaluate", covid.EvaluatePredictions).Methods(get...)
	api.HandleFunc("/growth-rate", covid.GetGrowthRate).Methods(get...)
	api.HandleFunc("/recovery-rate", covid.GetRecoveryRate).Methods(get...)
	api.HandleFunc("/moving-average", covid.GetMovingAverage).Methods(get...)
	api.HandleFunc("/state-comparison", covid.CompareStates).Methods(get...)
	api.HandleFunc("/charts/{kind}.png", chart.GetChart).Methods(get...)

	// Apply middleware (outermost first)
	r.Use(requestIDMiddleware)
	r.Use(recoveryMiddleware(log))
	r.Use(loggingMiddleware(log))
	r.Use(metricsMiddleware)
	// 429 응답에도 CORS 헤더가 붙도록 rate limit보다 먼저
	r.Use(corsMiddleware(deps.Config.HTTP))
	r.Use(rateLimitMiddleware(newClientLimiter(deps.Config.HTTP, deps.Limiter, log)))

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusNotFound, contracts.ErrorResponse{
		Error: "route not found: " + r.URL.Path,
		Code:  "NOT_FOUND",
	})
}
