package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// DefaultURL is the public endpoint serving the ticket/user dataset.
const DefaultURL = "https://api.quicksell.co/v1/internal/frontend-assignment"

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 10 << 20

// Client fetches snapshots from the upstream HTTP API.
type Client struct {
	url    string
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.SnapshotSource = (*Client)(nil)

// NewClient creates a client for url with the given request timeout.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	if url == "" {
		url = DefaultURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger.With("component", "remote_source"),
		now:    time.Now,
	}
}

// Fetch performs one GET and decodes the response. Transport failures and
// non-2xx responses are reported as apperrors.ErrUpstreamUnavailable.
func (c *Client) Fetch(ctx context.Context) (*domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", apperrors.ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}

	snapshot, err := DecodeSnapshot(io.LimitReader(resp.Body, maxBodyBytes), c.now())
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched snapshot",
		"url", c.url,
		"tickets", len(snapshot.Tickets),
		"users", len(snapshot.Users),
		"duration", time.Since(start),
	)
	return snapshot, nil
}

// FileSource reads a snapshot document from disk. It backs offline runs of
// the terminal board.
type FileSource struct {
	Path string
}

var _ ports.SnapshotSource = FileSource{}

func (f FileSource) Fetch(ctx context.Context) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat snapshot file: %w", err)
	}

	return DecodeSnapshot(file, info.ModTime())
}
