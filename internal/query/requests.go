package query

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/covidtrend/internal/contracts"
)

// DataRequest selects a region and an optional inclusive date range.
// Empty Region means the national aggregate; dates are YYYY-MM-DD.
type DataRequest struct {
	Region string `validate:"max=128"`
	Start  string `validate:"omitempty,datetime=2006-01-02"`
	End    string `validate:"omitempty,datetime=2006-01-02"`
}

// RateRequest has the same shape as DataRequest
type RateRequest = DataRequest

// PredictionRequest asks for HorizonDays days past the last date (nil = default)
type PredictionRequest struct {
	Region      string `validate:"max=128"`
	HorizonDays *int
}

// MovingAverageRequest asks for trailing means (nil Window = default)
type MovingAverageRequest struct {
	Region string `validate:"max=128"`
	Window *int
	Start  string `validate:"omitempty,datetime=2006-01-02"`
	End    string `validate:"omitempty,datetime=2006-01-02"`
}

// EvaluationRequest asks for a holdout evaluation (nil HoldoutDays = default)
type EvaluationRequest struct {
	Region      string `validate:"max=128"`
	HoldoutDays *int
}

// ComparisonRequest lists regions to compare side by side
type ComparisonRequest struct {
	Regions []string `validate:"max=20,dive,required,max=128"`
}

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateStruct runs tag validation and maps the first failure to the
// public error taxonomy
func validateStruct(req interface{}) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &contracts.InvalidParameterError{Field: "request", Reason: err.Error()}
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "Start", "End":
		return &contracts.InvalidDateRangeError{
			Start:  fieldString(req, "Start"),
			End:    fieldString(req, "End"),
			Reason: fmt.Sprintf("%s %q is not a YYYY-MM-DD date", strings.ToLower(fe.Field()), fe.Value()),
		}
	default:
		return &contracts.InvalidParameterError{
			Field:  paramName(fe.Field()),
			Reason: describeTag(fe),
		}
	}
}

// validateBound checks an integer parameter against [1, max]
func validateBound(field string, value, max int) error {
	if err := getValidator().Var(value, fmt.Sprintf("min=1,max=%d", max)); err != nil {
		return &contracts.InvalidParameterError{
			Field:  field,
			Reason: fmt.Sprintf("must be between 1 and %d, got %d", max, value),
		}
	}
	return nil
}

// parseRange converts validated date strings to an inclusive range
func parseRange(start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if start != "" {
		t, err := time.Parse(contracts.DateLayout, start)
		if err != nil {
			return nil, nil, &contracts.InvalidDateRangeError{Start: start, End: end, Reason: "unparseable start date"}
		}
		from = &t
	}
	if end != "" {
		t, err := time.Parse(contracts.DateLayout, end)
		if err != nil {
			return nil, nil, &contracts.InvalidDateRangeError{Start: start, End: end, Reason: "unparseable end date"}
		}
		to = &t
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, &contracts.InvalidDateRangeError{Start: start, End: end, Reason: "start date is after end date"}
	}
	return from, to, nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return "must have at most " + fe.Param() + " entries or characters"
	case "required":
		return "must not be empty"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func paramName(field string) string {
	switch {
	case field == "Region":
		return "state"
	case strings.HasPrefix(field, "Regions"):
		return "states"
	default:
		return strings.ToLower(field)
	}
}

func fieldString(req interface{}, name string) string {
	switch r := req.(type) {
	case *DataRequest:
		if name == "Start" {
			return r.Start
		}
		return r.End
	case *MovingAverageRequest:
		if name == "Start" {
			return r.Start
		}
		return r.End
	}
	return ""
}
