package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lorrc/ticket-board/internal/auth"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ShowFromFile(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{
		"show", "--file", "testdata/board.json", "--grouping", "user", "--ordering", "title", "--width", "200",
	}, &stdout, &stderr)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "grouping: User · ordering: Title · 5 tickets")
	assert.Less(t, strings.Index(out, "Anoop sharma"), strings.Index(out, "Yogesh"))
	assert.Less(t, strings.Index(out, "Yogesh"), strings.Index(out, "Unassigned"))
	assert.Less(t, strings.Index(out, "Add multi-language support"), strings.Index(out, "Optimize database queries"))
}

func TestRun_ShowRejectsUnknownGrouping(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"show", "--file", "testdata/board.json", "--grouping", "team"}, &stdout, &stderr)

	assert.ErrorIs(t, err, apperrors.ErrInvalidGrouping)
	assert.Empty(t, stdout.String())
}

func TestRun_ShowMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"show", "--file", "testdata/missing.json"}, &stdout, &stderr)

	assert.Error(t, err)
}

func TestRun_Token(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_TOKEN_TTL", "1h")
	var stdout, stderr bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"token", "--subject", "ops"}, &stdout, &stderr))

	claims, err := auth.NewTokenManager("cli-secret", time.Hour).ValidateToken(strings.TrimSpace(stdout.String()))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.True(t, claims.HasScope(auth.ScopeRefresh))
}

func TestRun_TokenNeedsSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"token", "--subject", "ops"}, &stdout, &stderr)

	assert.EqualError(t, err, "JWT_SECRET is not set")
}
