package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/sso-harvest/internal/domain"
	"github.com/bnema/sso-harvest/internal/ports"
)

const (
	tokensPath      = "/v1/admin/tokens"
	maxResponseBody = 1 << 20
	DefaultTimeout  = 30 * time.Second
)

var ErrUnauthorized = errors.New("registry rejected admin token")

var _ ports.TokenRegistry = (*Client)(nil)

// TokenFunc resolves the bearer credential lazily so commands that never
// reach the registry do not need one.
type TokenFunc func(ctx context.Context) (string, error)

// Client talks to the registry admin endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenFunc
	logger     *zap.Logger
}

func NewClient(baseURL string, httpClient *http.Client, token TokenFunc, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		token:      token,
		logger:     logger.Named("registry"),
	}
}

func (c *Client) Endpoint() string {
	return c.baseURL + tokensPath
}

// Import posts every entry of pool in a single request.
func (c *Client) Import(ctx context.Context, pool domain.ImportPool) error {
	body, err := json.Marshal(pool.Payload())
	if err != nil {
		return fmt.Errorf("%w: encode payload: %w", domain.ErrImport, err)
	}

	respBody, err := c.do(ctx, http.MethodPost, body)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrImport, err)
	}

	c.logger.Debug("import accepted",
		zap.String("pool", pool.Name),
		zap.Int("entries", len(pool.Entries)),
		zap.String("response", truncate(respBody, 200)),
	)
	return nil
}

// Counts returns the number of tokens per pool. Values that are not lists
// are skipped.
func (c *Client) Counts(ctx context.Context) (map[string]int, error) {
	respBody, err := c.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("decode registry tokens: %w", err)
	}

	counts := make(map[string]int, len(raw))
	for pool, value := range raw {
		var entries []json.RawMessage
		if err := json.Unmarshal(value, &entries); err != nil {
			continue
		}
		counts[pool] = len(entries)
	}
	return counts, nil
}

func (c *Client) do(ctx context.Context, method string, body []byte) ([]byte, error) {
	if c.baseURL == "" {
		return nil, errors.New("registry url is not configured")
	}
	if c.token == nil {
		return nil, domain.ErrRegistryTokenMissing
	}
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.Endpoint(), reader)
	if err != nil {
		return nil, fmt.Errorf("build registry request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+token)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, c.Endpoint(), err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read registry response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		if response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: status %d: %s", ErrUnauthorized, response.StatusCode, truncate(respBody, 200))
		}
		return nil, fmt.Errorf("status %d: %s", response.StatusCode, truncate(respBody, 200))
	}

	return respBody, nil
}

func truncate(body []byte, limit int) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
