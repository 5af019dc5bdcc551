package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsAppError_ThroughWrapping(t *testing.T) {
	base := NewNotFound("supplier", "abc")
	wrapped := fmt.Errorf("resolve supplier: %w", base)

	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, got.Code)
	assert.Equal(t, "abc", got.Details["id"])
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
}

func TestNewInsufficientStock_Details(t *testing.T) {
	err := NewInsufficientStock("p1", decimal.NewFromInt(5), decimal.NewFromInt(2))

	assert.True(t, IsInsufficientStock(err))
	assert.Equal(t, http.StatusConflict, err.HTTPStatus)
	assert.Equal(t, "5", err.Details["requested"])
	assert.Equal(t, "2", err.Details["available"])
}

func TestSequenceAndRenderErrors_KeepCause(t *testing.T) {
	cause := errors.New("connection refused")

	seqErr := NewSequenceAllocation("invoice", cause)
	assert.ErrorIs(t, seqErr, cause)
	assert.Equal(t, http.StatusServiceUnavailable, seqErr.HTTPStatus)

	renderErr := NewRenderOrPublish("upload", cause).WithDetail("burned_code", "VF2025-0003")
	assert.ErrorIs(t, renderErr, cause)
	assert.Equal(t, "VF2025-0003", renderErr.Details["burned_code"])
	assert.Contains(t, renderErr.Error(), CodeRenderOrPublish)
}
