package modelconfig

import "fmt"

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Forecast ===
	f := cfg.Forecast
	if f.Degree < 1 || f.Degree > 5 {
		return ValidationError{"forecast.degree", "must be in [1, 5]"}
	}
	if f.MinHistory < 2 {
		return ValidationError{"forecast.min_history", "must be >= 2"}
	}
	if f.MinHistory <= f.Degree {
		return ValidationError{"forecast.min_history", "must be greater than forecast.degree"}
	}
	if f.MaxHorizon < 1 {
		return ValidationError{"forecast.max_horizon", "must be >= 1"}
	}
	if f.DefaultHorizon < 1 || f.DefaultHorizon > f.MaxHorizon {
		return ValidationError{"forecast.default_horizon", fmt.Sprintf("must be in [1, %d]", f.MaxHorizon)}
	}
	if f.ConfidenceLevel <= 0 || f.ConfidenceLevel >= 1 {
		return ValidationError{"forecast.confidence_level", "must be in (0, 1)"}
	}
	if f.FitWindow != 0 && f.FitWindow < f.MinHistory {
		return ValidationError{"forecast.fit_window", "must be 0 or >= forecast.min_history"}
	}

	// === Rates ===
	if cfg.Rates.Precision < 0 || cfg.Rates.Precision > 10 {
		return ValidationError{"rates.precision", "must be in [0, 10]"}
	}
	if cfg.Rates.MaxWindow < 1 {
		return ValidationError{"rates.max_window", "must be >= 1"}
	}
	if cfg.Rates.MovingAverageWindow < 1 || cfg.Rates.MovingAverageWindow > cfg.Rates.MaxWindow {
		return ValidationError{"rates.moving_average_window", fmt.Sprintf("must be in [1, %d]", cfg.Rates.MaxWindow)}
	}

	// === Evaluation ===
	if cfg.Evaluation.DefaultHoldout < 1 || cfg.Evaluation.DefaultHoldout > f.MaxHorizon {
		return ValidationError{"evaluation.default_holdout", fmt.Sprintf("must be in [1, %d]", f.MaxHorizon)}
	}

	return nil
}
