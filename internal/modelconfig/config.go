package modelconfig

import "github.com/wonny/covidtrend/internal/forecast"

// Config 분석/예측 파라미터 전체 설정 (MODEL_CONFIG YAML)
type Config struct {
	Forecast   Forecast   `yaml:"forecast" json:"forecast"`
	Rates      Rates      `yaml:"rates" json:"rates"`
	Evaluation Evaluation `yaml:"evaluation" json:"evaluation"`
}

// Forecast 추세 예측 설정
type Forecast struct {
	Degree          int     `yaml:"degree" json:"degree"`
	MinHistory      int     `yaml:"min_history" json:"min_history"`
	DefaultHorizon  int     `yaml:"default_horizon" json:"default_horizon"`
	MaxHorizon      int     `yaml:"max_horizon" json:"max_horizon"`
	ConfidenceLevel float64 `yaml:"confidence_level" json:"confidence_level"`
	FitWindow       int     `yaml:"fit_window" json:"fit_window"` // 0 = 전체 이력
}

// Rates 비율/이동평균 설정
type Rates struct {
	Precision           int `yaml:"precision" json:"precision"` // 응답 소수점 자리수
	MovingAverageWindow int `yaml:"moving_average_window" json:"moving_average_window"`
	MaxWindow           int `yaml:"max_window" json:"max_window"`
}

// Evaluation 홀드아웃 검증 설정
type Evaluation struct {
	DefaultHoldout int `yaml:"default_holdout" json:"default_holdout"`
}

// Default returns the built-in parameters used when no file is configured
func Default() *Config {
	fc := forecast.DefaultConfig()
	return &Config{
		Forecast: Forecast{
			Degree:          fc.Degree,
			MinHistory:      fc.MinHistory,
			DefaultHorizon:  30,
			MaxHorizon:      365,
			ConfidenceLevel: fc.ConfidenceLevel,
			FitWindow:       fc.FitWindow,
		},
		Rates: Rates{
			Precision:           2,
			MovingAverageWindow: 7,
			MaxWindow:           90,
		},
		Evaluation: Evaluation{
			DefaultHoldout: 7,
		},
	}
}

// ForecasterConfig converts the forecast section for forecast.New
func (c *Config) ForecasterConfig() forecast.Config {
	return forecast.Config{
		Degree:          c.Forecast.Degree,
		MinHistory:      c.Forecast.MinHistory,
		ConfidenceLevel: c.Forecast.ConfidenceLevel,
		FitWindow:       c.Forecast.FitWindow,
	}
}
