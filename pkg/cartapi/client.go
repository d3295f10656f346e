package cartapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/microshop/microshop-backend/pkg/errors"
)

const (
	// OwnerHeader identifies the cart owner on cross-service calls.
	OwnerHeader = "X-Owner-Id"

	responseBodyReadLimit int64 = 1024
)

// Client calls the cart service over HTTP. The order service uses it to
// snapshot a cart at checkout and to clear it after the order commits.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the cart client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("cart base url is required")
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Item is one cart line as served by the cart service.
type Item struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Cart is the cart payload consumed by checkout.
type Cart struct {
	ID      uuid.UUID       `json:"id"`
	OwnerID string          `json:"owner_id"`
	Items   []Item          `json:"items"`
	Total   decimal.Decimal `json:"total"`
}

// Fetch returns the owner's cart. The cart service creates carts
// implicitly, so a reachable upstream never yields NOT_FOUND here.
func (c *Client) Fetch(ctx context.Context, ownerID string) (*Cart, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart client not configured")
	}

	endpoint := c.baseURL + "/api/v1/cart"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build cart fetch request")
	}
	httpReq.Header.Set(OwnerHeader, ownerID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute cart fetch request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "cart fetch failed")
	}

	var envelope struct {
		Data Cart `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cart response")
	}
	return &envelope.Data, nil
}

// Clear empties the owner's cart. Clearing is idempotent upstream, so a
// success here means the cart is empty regardless of its prior state.
func (c *Client) Clear(ctx context.Context, ownerID string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "cart client not configured")
	}

	endpoint := c.baseURL + "/api/v1/cart"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build cart clear request")
	}
	httpReq.Header.Set(OwnerHeader, ownerID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute cart clear request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "cart clear failed")
	}
	return nil
}
