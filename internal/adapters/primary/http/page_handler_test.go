package http

import (
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPageRouter(t *testing.T) (*boardFixture, *chi.Mux) {
	t.Helper()
	f := newBoardFixture(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := chi.NewRouter()
	NewPageHandler(f.svc, NewErrorHandler(logger), logger).RegisterRoutes(router)
	return f, router
}

func TestPageHandler_RendersColumns(t *testing.T) {
	f, router := newPageRouter(t)
	snapshot := f.load(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/?grouping=user&ordering=title", nil))

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, snapshot.Revision, rec.Header().Get(RevisionHeader))

	body := rec.Body.String()
	assert.Contains(t, body, `<option value="user" selected>User</option>`)
	assert.Contains(t, body, `<option value="title" selected>Title</option>`)
	assert.Contains(t, body, "Anoop sharma")
	assert.Contains(t, body, "Unassigned")
	assert.Contains(t, body, "Add multi-language support")
	assert.Contains(t, body, `data-revision="`+snapshot.Revision+`"`)
}

func TestPageHandler_NoSnapshot(t *testing.T) {
	_, router := newPageRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/", nil))

	assert.Equal(t, stdhttp.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "No ticket data is available yet.")
	assert.Contains(t, rec.Body.String(), `<option value="status" selected>Status</option>`)
}

func TestPageHandler_InvalidOptions(t *testing.T) {
	_, router := newPageRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/?ordering=random", nil))

	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
}
