package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
)

func TestErrorHandler_Handle(t *testing.T) {
	handler := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	validation := apperrors.NewValidationErrors()
	validation.Add("grouping", "Must be one of: status, user, priority")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid grouping", fmt.Errorf("%w: %q", apperrors.ErrInvalidGrouping, "team"), stdhttp.StatusBadRequest, "INVALID_VIEW_OPTIONS"},
		{"invalid locale", apperrors.ErrInvalidLocale, stdhttp.StatusBadRequest, "INVALID_VIEW_OPTIONS"},
		{"no snapshot", apperrors.ErrSnapshotUnavailable, stdhttp.StatusServiceUnavailable, "SNAPSHOT_UNAVAILABLE"},
		{"upstream down", fmt.Errorf("refresh board: %w", apperrors.ErrUpstreamUnavailable), stdhttp.StatusBadGateway, "UPSTREAM_UNAVAILABLE"},
		{"upstream garbage", apperrors.ErrMalformedSnapshot, stdhttp.StatusBadGateway, "UPSTREAM_MALFORMED"},
		{"validation", validation, stdhttp.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"app error", apperrors.NewInternalError(errors.New("template broke")), stdhttp.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unknown", errors.New("boom"), stdhttp.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			handler.Handle(rec, httptest.NewRequest(stdhttp.MethodGet, "/api/v1/board", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
		})
	}
}
