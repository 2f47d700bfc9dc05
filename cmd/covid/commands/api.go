package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/covidtrend/internal/api"
	"github.com/wonny/covidtrend/internal/scheduler"
	"github.com/wonny/covidtrend/internal/scheduler/jobs"
	"github.com/wonny/covidtrend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- 데이터셋 로드 (형식 오류 시 즉시 종료)
- HTTP API 서버 시작
- WARM_ENABLED=true 이면 예측 캐시 워밍 스케줄러 시작

Endpoints:
  GET  /health
  GET  /api/states
  GET  /api/states/summary
  GET  /api/data                 ?state&start_date&end_date
  GET  /api/predictions          ?state&days
  GET  /api/predictions/evaluate ?state&holdout
  GET  /api/growth-rate          ?state&start_date&end_date
  GET  /api/recovery-rate        ?state&start_date&end_date
  GET  /api/moving-average       ?state&window
  GET  /api/state-comparison     ?states[]
  GET  /api/charts/{kind}.png
  GET  /metrics

Example:
  go run ./cmd/covid api
  go run ./cmd/covid api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default is PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Config, logger, dataset, facade
	a, err := bootstrap(ctx, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	stats := a.store.Stats()
	log.WithFields(map[string]interface{}{
		"port":    a.cfg.Port,
		"env":     a.cfg.Env,
		"regions": stats.Regions,
		"rows":    stats.Rows,
	}).Info("Initializing API server")

	// 2. Router (shared rate limit when redis is up)
	deps := api.RouterDeps{
		Facade: a.facade,
		Config: a.cfg,
		Logger: log,
	}
	if a.redis.Enabled() {
		deps.Limiter = redis.NewRateLimiter(a.redis, redis.KeyPrefix)
	}
	server := api.New(a.cfg, log, api.NewRouter(deps))

	// 3. Scheduler
	var sched *scheduler.Scheduler
	if a.cfg.Warm.Enabled {
		sched = scheduler.New(log.WithField("component", "scheduler"))
		warm := jobs.NewWarmForecastJob(
			a.facade,
			a.cfg.Warm.Schedule,
			[]int{a.model.Forecast.DefaultHorizon},
			a.cfg.Warm.Concurrency,
			log.WithField("component", "warm_forecast"),
		)
		if err := sched.AddJob(warm); err != nil {
			return fmt.Errorf("register warm job: %w", err)
		}
		sched.Start()
		if err := sched.RunJob(warm.Name()); err != nil {
			return fmt.Errorf("initial warm-up: %w", err)
		}
	}

	// 4. Start server
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.WithError(err).Warn("Scheduler did not stop cleanly")
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
