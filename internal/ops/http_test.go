package ops

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthzAllOK(t *testing.T) {
	srv := NewServer(0, map[string]Check{
		"backend": func(ctx context.Context) error { return nil },
		"redis":   func(ctx context.Context) error { return nil },
	}, zerolog.New(io.Discard))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend":"ok"`)
}

func TestHealthzDependencyDown(t *testing.T) {
	srv := NewServer(0, map[string]Check{
		"backend": func(ctx context.Context) error { return errors.New("unreachable") },
	}, zerolog.New(io.Discard))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unreachable")
}

func TestHealthzRejectsPost(t *testing.T) {
	srv := NewServer(0, nil, zerolog.New(io.Discard))

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
