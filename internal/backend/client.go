package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/dustin/go-humanize"

	"github.com/Vovarama1992/braille_bridge/internal/apperr"
	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

const service = "braille_bridge"

// TransportMessage: shown when the backend cannot be reached at all
const TransportMessage = "Network error: could not reach the server."

type Client struct {
	baseURL string
	httpCli *http.Client
	log     *logger.ZapLogger
}

var _ ports.Backend = (*Client)(nil)

// NewClient: httpCli may be nil
func NewClient(baseURL string, httpCli *http.Client, log *logger.ZapLogger) *Client {
	if httpCli == nil {
		httpCli = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCli: httpCli,
		log:     log,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do reads the whole body as text. Interpretation is left to the caller.
func (c *Client) do(req *http.Request) (ports.RawBody, error) {
	resp, err := c.httpCli.Do(req)
	if err != nil {
		c.logf("warn", req, "request failed", err)
		return ports.RawBody{}, apperr.Wrap(apperr.KindTransport, TransportMessage, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logf("warn", req, "read body failed", err)
		return ports.RawBody{}, apperr.Wrap(apperr.KindTransport, TransportMessage, err)
	}

	c.logf("info", req, fmt.Sprintf("status=%d body=%s", resp.StatusCode, humanize.Bytes(uint64(len(b)))), nil)

	return ports.RawBody{StatusCode: resp.StatusCode, Text: string(b)}, nil
}

func (c *Client) logf(level string, req *http.Request, msg string, err error) {
	if c.log == nil {
		return
	}
	c.log.Log(logger.LogEntry{
		Level:   level,
		Message: fmt.Sprintf("[backend] %s %s %s", req.Method, req.URL.Path, msg),
		Service: service,
		Error:   err,
	})
}
