package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/covidtrend/internal/charts"
	"github.com/wonny/covidtrend/pkg/logger"
)

// ChartHandler renders PNG charts
type ChartHandler struct {
	source charts.Source
	opts   charts.Options
	logger *logger.Logger
}

// NewChartHandler creates a chart handler over a facade
func NewChartHandler(source charts.Source, log *logger.Logger) *ChartHandler {
	return &ChartHandler{
		source: source,
		opts:   charts.DefaultOptions(),
		logger: log,
	}
}

// GetChart renders one chart kind
// GET /api/charts/{kind}.png?state=&days=&start_date=&end_date=&states[]=
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	kind, err := charts.ParseKind(strings.TrimSuffix(mux.Vars(r)["kind"], ".png"))
	if err != nil {
		RespondError(w, err)
		return
	}

	days, err := optionalInt(r, "days")
	if err != nil {
		RespondError(w, err)
		return
	}

	q := r.URL.Query()
	req := charts.Request{
		Kind:        kind,
		Region:      q.Get("state"),
		Regions:     stateList(r),
		Start:       q.Get("start_date"),
		End:         q.Get("end_date"),
		HorizonDays: days,
	}

	// 에러 시 JSON 응답을 위해 버퍼에 먼저 렌더링
	var buf bytes.Buffer
	if err := charts.Render(r.Context(), &buf, h.source, req, h.opts); err != nil {
		RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
