package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	upstream := errors.New("dial tcp: connection refused")

	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{name: "validation", err: NewValidationError("priority invalid", nil), wantCode: CodeValidation, wantStatus: http.StatusBadRequest},
		{name: "not found", err: NewNotFound("case", nil), wantCode: CodeNotFound, wantStatus: http.StatusNotFound},
		{name: "invalid transition", err: NewInvalidTransition("case is already resolved", nil), wantCode: CodeInvalidTransition, wantStatus: http.StatusBadRequest},
		{name: "service unavailable", err: NewServiceUnavailable(upstream), wantCode: CodeServiceUnavailable, wantStatus: http.StatusServiceUnavailable},
		{name: "wrapped domain error", err: fmt.Errorf("resolve: %w", NewNotFound("case", nil)), wantCode: CodeNotFound, wantStatus: http.StatusNotFound},
		{name: "sql no rows", err: sql.ErrNoRows, wantCode: CodeNotFound, wantStatus: http.StatusNotFound},
		{name: "plain error", err: upstream, wantCode: CodeInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.wantCode, de.Code)
			assert.Equal(t, tt.wantStatus, de.HTTPStatus)
		})
	}

	assert.Nil(t, ToDomainError(nil))
}

func TestServiceUnavailableUnwraps(t *testing.T) {
	upstream := errors.New("classifier timeout")
	err := NewServiceUnavailable(upstream)

	assert.ErrorIs(t, err, upstream)
	assert.Contains(t, err.Error(), "classifier timeout")
	assert.True(t, IsCode(err, CodeServiceUnavailable))
	assert.False(t, IsCode(upstream, CodeServiceUnavailable))
}

func TestToDomainErrorKeepsCause(t *testing.T) {
	upstream := errors.New("disk I/O error")

	de := ToDomainError(fmt.Errorf("update case: %w", upstream))
	assert.Equal(t, CodeInternal, de.Code)
	assert.ErrorIs(t, de, upstream)
}
