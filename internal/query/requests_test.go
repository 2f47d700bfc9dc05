package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/covidtrend/internal/contracts"
)

func TestValidateStruct_DateFields(t *testing.T) {
	err := validateStruct(&DataRequest{Start: "2020-01-01", End: "yesterday"})

	var rangeErr *contracts.InvalidDateRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "2020-01-01", rangeErr.Start)
	assert.Equal(t, "yesterday", rangeErr.End)
	assert.Contains(t, rangeErr.Reason, "end")
}

func TestValidateStruct_RegionTooLong(t *testing.T) {
	err := validateStruct(&DataRequest{Region: strings.Repeat("x", 200)})

	var invalid *contracts.InvalidParameterError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "state", invalid.Field)
}

func TestValidateBound(t *testing.T) {
	assert.NoError(t, validateBound("days", 1, 30))
	assert.NoError(t, validateBound("days", 30, 30))
	assert.ErrorIs(t, validateBound("days", 0, 30), contracts.ErrInvalidParameter)
	assert.ErrorIs(t, validateBound("days", 31, 30), contracts.ErrInvalidParameter)
}

func TestParseRange(t *testing.T) {
	from, to, err := parseRange("", "")
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)

	from, to, err = parseRange("2020-03-01", "2020-03-01")
	require.NoError(t, err)
	assert.Equal(t, *from, *to)

	_, _, err = parseRange("2020-03-02", "2020-03-01")
	assert.ErrorIs(t, err, contracts.ErrInvalidDateRange)
}
