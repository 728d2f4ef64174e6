package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Vovarama1992/braille_bridge/internal/apperr"
	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

// GET /api/files
func (c *Client) ListFiles(ctx context.Context, token string) (ports.RawBody, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/files", token, nil)
	if err != nil {
		return ports.RawBody{}, err
	}
	return c.do(req)
}

// DELETE /api/files/{id}
func (c *Client) DeleteFile(ctx context.Context, token, id string) (ports.RawBody, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(id), token, nil)
	if err != nil {
		return ports.RawBody{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// Fetch downloads an artifact by absolute URL (cloud storage, not the API).
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build fetch: %w", err)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		c.logf("warn", req, "fetch failed", err)
		return nil, "", apperr.Wrap(apperr.KindTransport, TransportMessage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetch %s: bad status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read artifact: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
