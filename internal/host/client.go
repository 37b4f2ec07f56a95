// Package host bridges the overlay and the game client: Client posts
// callbacks to the client's resource endpoint, Dispatcher applies the pushes
// it sends back, and StreamHandler carries those pushes over a websocket.
package host

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

	"github.com/angelmondragon/shopoverlay/internal/cart"
	"github.com/angelmondragon/shopoverlay/internal/session"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
)

const (
	EndpointGetInventory  = "getInventory"
	EndpointPurchaseItems = "purchaseItems"
	EndpointSellItems     = "sellItems"
	EndpointSellItem      = "sellItem"
	EndpointStartRobbery  = "startRobbery"
	EndpointHideFrame     = "hideFrame"
	defaultResource       = "shops"
	defaultTimeout        = 10 * time.Second
	responseBodyReadLimit = 4096
	errorBodyReadLimit    = 1024
)

// ErrEndpointUnavailable is returned when the game client does not register
// a callback, which older clients do for sellItems.
var ErrEndpointUnavailable = errors.New("host endpoint unavailable")

var errBaseURLRequired = errors.New("host base url is required")

// Client posts NUI-style callbacks to <base>/<resource>/<endpoint>.
type Client struct {
	httpClient *http.Client
	baseURL    string
	resource   string
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

// WithResource overrides the resource path segment.
func WithResource(resource string) Option {
	return func(c *Client) {
		if trimmed := strings.Trim(strings.TrimSpace(resource), "/"); trimmed != "" {
			c.resource = trimmed
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds a callback client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		resource:   defaultResource,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// PurchaseRequest is the purchaseItems body.
type PurchaseRequest struct {
	Items    []cart.Line  `json:"items"`
	Shop     session.Shop `json:"shop"`
	Currency string       `json:"currency"`
}

// SaleRequest is the sellItems body.
type SaleRequest struct {
	Items []cart.Line `json:"items"`
	Shop  string      `json:"shop"`
}

type saleUnitRequest struct {
	Name string `json:"name"`
	Shop string `json:"shop"`
}

type shopRequest struct {
	Shop string `json:"shop"`
}

// PurchaseItems asks the host to charge and deliver the cart.
func (c *Client) PurchaseItems(ctx context.Context, req PurchaseRequest) (bool, error) {
	return c.post(ctx, EndpointPurchaseItems, req)
}

// SellItems asks the host to take the whole sell-cart in one call.
func (c *Client) SellItems(ctx context.Context, req SaleRequest) (bool, error) {
	return c.post(ctx, EndpointSellItems, req)
}

// SellItem sells a single unit by item name.
func (c *Client) SellItem(ctx context.Context, name, shopID string) (bool, error) {
	return c.post(ctx, EndpointSellItem, saleUnitRequest{Name: name, Shop: shopID})
}

// RequestInventory asks the host to push setInventoryItems.
func (c *Client) RequestInventory(ctx context.Context, shopID string) error {
	_, err := c.post(ctx, EndpointGetInventory, shopRequest{Shop: shopID})
	return err
}

// StartRobbery asks the host to start a robbery of the shop.
func (c *Client) StartRobbery(ctx context.Context, shopID string) error {
	_, err := c.post(ctx, EndpointStartRobbery, shopRequest{Shop: shopID})
	return err
}

// HideFrame asks the host to close the overlay.
func (c *Client) HideFrame(ctx context.Context) error {
	_, err := c.post(ctx, EndpointHideFrame, struct{}{})
	return err
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (bool, error) {
	if c == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "host client not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal "+endpoint+" request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(endpoint), bytes.NewReader(body))
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+endpoint+" request")
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+endpoint+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNotImplemented:
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, ErrEndpointUnavailable, endpoint+" not registered")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), endpoint+" request failed")
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+endpoint+" response")
	}
	return Truthy(raw), nil
}

func (c *Client) buildURL(endpoint string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.resource, strings.TrimLeft(endpoint, "/"))
}

// Truthy interprets a callback response the way the game client's scripts
// do: false, 0, "", null and an empty body are negative, anything else is a
// positive acknowledgement. Non-JSON bodies count when non-empty.
func Truthy(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	var value any
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return true
	}
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	}
	return true
}
