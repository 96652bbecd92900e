// Package shopify reads orders and order metafields from the Shopify Admin
// GraphQL API.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gitshopapp/trackpage/internal/logging"
	"github.com/gitshopapp/trackpage/internal/observability"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrUnavailable wraps transport failures, non-200 responses and GraphQL
	// errors.
	ErrUnavailable = errors.New("shopify unavailable")
)

const maxErrorBody = 512

type Config struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	Timeout     time.Duration
	// Endpoint overrides the GraphQL URL derived from ShopDomain.
	Endpoint string
	// MetafieldNamespace and MetafieldKey locate the replacement tracking
	// metafield on orders.
	MetafieldNamespace string
	MetafieldKey       string
}

type Client struct {
	endpoint    string
	accessToken string
	namespace   string
	key         string
	httpClient  *http.Client
	logger      *slog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, fmt.Errorf("shopify access token is required")
	}

	domain := normalizeShopDomain(cfg.ShopDomain)
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		if domain == "" {
			return nil, fmt.Errorf("shopify shop domain is required")
		}
		if cfg.APIVersion == "" {
			return nil, fmt.Errorf("shopify api version is required")
		}
		endpoint = fmt.Sprintf("https://%s/admin/api/%s/graphql.json", domain, cfg.APIVersion)
	}

	if httpClient == nil {
		var traceTargets []string
		if domain != "" {
			traceTargets = []string{domain}
		}
		httpClient = observability.NewHTTPClient(cfg.Timeout, traceTargets...)
	}

	namespace := cfg.MetafieldNamespace
	if namespace == "" {
		namespace = "custom"
	}
	key := cfg.MetafieldKey
	if key == "" {
		key = "replacement_tracking"
	}

	return &Client{
		endpoint:    endpoint,
		accessToken: cfg.AccessToken,
		namespace:   namespace,
		key:         key,
		httpClient:  httpClient,
		logger:      logging.FromContext(context.Background(), logger),
	}, nil
}

func normalizeShopDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return strings.TrimSuffix(domain, "/")
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// execute runs a GraphQL operation and decodes its data into out.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", ErrUnavailable, err)
	}

	logger := logging.FromContext(ctx, c.logger)
	logger.Debug("shopify request completed",
		"status", resp.StatusCode,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, truncate(string(payload), maxErrorBody))
	}

	var decoded graphQLResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", ErrUnavailable, err)
	}

	if len(decoded.Errors) > 0 {
		messages := make([]string, len(decoded.Errors))
		for i, gqlErr := range decoded.Errors {
			messages[i] = gqlErr.Message
		}
		return fmt.Errorf("%w: graphql errors: %s", ErrUnavailable, strings.Join(messages, "; "))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(decoded.Data, out); err != nil {
		return fmt.Errorf("%w: failed to decode data: %w", ErrUnavailable, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
