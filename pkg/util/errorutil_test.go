package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorCodesAndStatuses(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{NewNotFound("event", nil), "NOT_FOUND", http.StatusNotFound},
		{NewUnauthorized("nope"), "UNAUTHORIZED", http.StatusUnauthorized},
		{NewForbidden("nope"), "FORBIDDEN", http.StatusForbidden},
		{NewConflict("dup", nil), "CONFLICT", http.StatusConflict},
		{NewInvalidStateTransition("pending only", nil), "INVALID_STATE_TRANSITION", http.StatusConflict},
		{NewDuplicateApplication(nil), "DUPLICATE_APPLICATION", http.StatusConflict},
		{NewAlreadyPaid(nil), "ALREADY_PAID", http.StatusConflict},
		{NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		domainErr := ToDomainError(tc.err)
		assert.Equal(t, tc.code, domainErr.Code)
		assert.Equal(t, tc.status, domainErr.HTTPStatus)
		assert.Equal(t, tc.code, CodeOf(tc.err))
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	domainErr := ToDomainError(errors.New("surprise"))
	require.NotNil(t, domainErr)
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
}

func TestToDomainErrorMapsRowMisses(t *testing.T) {
	for _, err := range []error{sql.ErrNoRows, pgx.ErrNoRows, fmt.Errorf("update assignment: %w", pgx.ErrNoRows)} {
		domainErr := ToDomainError(err)
		require.NotNil(t, domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
		assert.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
	}
}

func TestMapErrorPreservesDomainErrors(t *testing.T) {
	original := NewConflict("dup", nil)
	assert.Equal(t, "CONFLICT", CodeOf(MapError(original)))
}
