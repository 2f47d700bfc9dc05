package contracts

import (
	"errors"
	"fmt"
)

// Error codes surfaced in ErrorResponse.Code
const (
	CodeDataLoad         = "DATA_LOAD_ERROR"
	CodeUnknownRegion    = "UNKNOWN_REGION"
	CodeInvalidDateRange = "INVALID_DATE_RANGE"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeInternal         = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks
var (
	ErrDataLoad         = errors.New("data load failed")
	ErrUnknownRegion    = errors.New("unknown region")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// DataLoadError is fatal at startup: the dataset is malformed
type DataLoadError struct {
	Line   int // 1-based CSV line, 0 when not line specific
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	msg := "data load failed"
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at line %d", msg, e.Line)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataLoadError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDataLoad, e.Err}
	}
	return []error{ErrDataLoad}
}

// UnknownRegionError means the requested region is not in the dataset
type UnknownRegionError struct {
	Region string
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("unknown region %q", e.Region)
}

func (e *UnknownRegionError) Unwrap() error { return ErrUnknownRegion }

// InvalidDateRangeError covers unparseable dates and start after end
type InvalidDateRangeError struct {
	Start  string
	End    string
	Reason string
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("invalid date range [%s, %s]: %s", e.Start, e.End, e.Reason)
}

func (e *InvalidDateRangeError) Unwrap() error { return ErrInvalidDateRange }

// InsufficientDataError is returned when a forecast is asked for on a short series
type InsufficientDataError struct {
	Region   string
	Have     int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: have %d points, need at least %d",
		RegionLabel(e.Region), e.Have, e.Required)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// InvalidParameterError is a request parameter outside its allowed domain
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

func (e *InvalidParameterError) Unwrap() error { return ErrInvalidParameter }

// ErrorCode maps an error to its public code
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnknownRegion):
		return CodeUnknownRegion
	case errors.Is(err, ErrInvalidDateRange):
		return CodeInvalidDateRange
	case errors.Is(err, ErrInsufficientData):
		return CodeInsufficientData
	case errors.Is(err, ErrInvalidParameter):
		return CodeInvalidParameter
	case errors.Is(err, ErrDataLoad):
		return CodeDataLoad
	default:
		return CodeInternal
	}
}

// IsClientError reports whether err is caused by the request rather than the server
func IsClientError(err error) bool {
	switch ErrorCode(err) {
	case CodeUnknownRegion, CodeInvalidDateRange, CodeInsufficientData, CodeInvalidParameter:
		return true
	default:
		return false
	}
}
