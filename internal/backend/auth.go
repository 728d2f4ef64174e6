package backend

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

// POST /api/auth/login
func (c *Client) Login(ctx context.Context, in ports.LoginInput) (ports.RawBody, error) {
	return c.postJSON(ctx, "/api/auth/login", in)
}

// POST /api/auth/register
func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (ports.RawBody, error) {
	return c.postJSON(ctx, "/api/auth/register", in)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (ports.RawBody, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return ports.RawBody{}, fmt.Errorf("encode %s: %w", path, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, "", bytes.NewReader(data))
	if err != nil {
		return ports.RawBody{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}
