package forecast

import (
	"fmt"

	"github.com/wonny/covidtrend/internal/contracts"
)

// Config 예측 모델 파라미터
type Config struct {
	Degree          int     // 다항식 차수 (1 = 선형, 2 = 2차)
	MinHistory      int     // 최소 관측 일수
	ConfidenceLevel float64 // 예측 구간 신뢰수준 (0, 1)
	FitWindow       int     // 최근 N일만 적합, 0 = 전체
}

// DefaultConfig 기본 설정
func DefaultConfig() Config {
	return Config{
		Degree:          2,
		MinHistory:      7,
		ConfidenceLevel: 0.95,
		FitWindow:       0,
	}
}

// Validate checks parameter ranges
func (c Config) Validate() error {
	if c.Degree < 1 || c.Degree > 5 {
		return &contracts.InvalidParameterError{Field: "degree", Reason: fmt.Sprintf("must be in [1, 5], got %d", c.Degree)}
	}
	if c.MinHistory < 2 {
		return &contracts.InvalidParameterError{Field: "min_history", Reason: fmt.Sprintf("must be >= 2, got %d", c.MinHistory)}
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return &contracts.InvalidParameterError{Field: "confidence_level", Reason: fmt.Sprintf("must be in (0, 1), got %g", c.ConfidenceLevel)}
	}
	if c.FitWindow != 0 && c.FitWindow < c.MinHistory {
		return &contracts.InvalidParameterError{Field: "fit_window", Reason: fmt.Sprintf("must be 0 or >= min_history (%d), got %d", c.MinHistory, c.FitWindow)}
	}
	return nil
}
