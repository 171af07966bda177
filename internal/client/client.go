// Package client is a typed HTTP client for the storefront API. It is what a
// non-browser frontend (or the admin CLI) uses to drive a cart, and it plugs
// straight into cartstore.Store as its Backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/01moynul/storefront-golang/internal/account"
	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/checkout"
	"github.com/01moynul/storefront-golang/internal/events"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/pricing"
)

// Client talks to one API server. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses a copy of hc. The copy's CheckRedirect is overridden
// because the API's 303 answers carry data and must not be followed; hc
// itself is left untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.http = &cp
	}
}

// WithToken starts the client with an existing session.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		dialer:  websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c
}

// BaseURL is the server this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Token returns the current session token ("" when signed out).
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// errorBody covers both {"error": ...} and the uniform cart Result.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do sends a JSON request and decodes a JSON response into out. Statuses in
// accept are treated as success; anything else becomes an apperr kind.
func (c *Client) do(ctx context.Context, method, path string, in, out any, accept ...int) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, apperr.Backend(method+" "+path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, apperr.Backend("read "+path, err)
	}

	if len(accept) == 0 {
		accept = []int{http.StatusOK}
	}
	for _, status := range accept {
		if resp.StatusCode != status {
			continue
		}
		if out != nil && len(raw) > 0 {
			if err := json.Unmarshal(raw, out); err != nil {
				return resp.StatusCode, apperr.Backend("decode "+path, err)
			}
		}
		return resp.StatusCode, nil
	}

	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	return resp.StatusCode, apperr.FromStatus(resp.StatusCode, eb.Error)
}

//
// --- Account ---
//

// Register creates an account and keeps its session token.
func (c *Client) Register(ctx context.Context, in account.RegisterInput) (account.Session, error) {
	var session account.Session
	if _, err := c.do(ctx, http.MethodPost, "/v1/auth/register", in, &session, http.StatusCreated); err != nil {
		return account.Session{}, err
	}
	c.setToken(session.Token)
	return session, nil
}

// Login signs in and keeps the session token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (account.Session, error) {
	var session account.Session
	in := account.LoginInput{Email: email, Password: password}
	if _, err := c.do(ctx, http.MethodPost, "/v1/auth/login", in, &session); err != nil {
		return account.Session{}, err
	}
	c.setToken(session.Token)
	return session, nil
}

// Logout forgets the session token.
func (c *Client) Logout() { c.setToken("") }

//
// --- Cart ---
//

// CartView is the decoded GET /v1/cart body.
type CartView struct {
	Items     []models.CartItemWithProduct `json:"items"`
	Totals    pricing.Totals               `json:"totals"`
	ItemCount int                          `json:"itemCount"`
}

// Cart fetches the cart with server-computed totals.
func (c *Client) Cart(ctx context.Context) (CartView, error) {
	var view CartView
	if _, err := c.do(ctx, http.MethodGet, "/v1/cart", nil, &view); err != nil {
		return CartView{}, err
	}
	if view.Items == nil {
		view.Items = []models.CartItemWithProduct{}
	}
	return view, nil
}

// ListCart returns just the items.
func (c *Client) ListCart(ctx context.Context) ([]models.CartItemWithProduct, error) {
	view, err := c.Cart(ctx)
	if err != nil {
		return nil, err
	}
	return view.Items, nil
}

// mutate runs a cart mutation and returns the Result message.
func (c *Client) mutate(ctx context.Context, method, path string, in any, accept ...int) (string, error) {
	var res cart.Result
	if _, err := c.do(ctx, method, path, in, &res, accept...); err != nil {
		return "", err
	}
	if !res.Success {
		return "", apperr.New(apperr.ErrBackend, "%s", res.Error)
	}
	return res.Message, nil
}

// AddToCart adds quantity of a product (merging with an existing row).
func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) (string, error) {
	in := map[string]any{"product_id": productID}
	if quantity != 0 {
		in["quantity"] = quantity
	}
	return c.mutate(ctx, http.MethodPost, "/v1/cart/items", in, http.StatusCreated, http.StatusOK)
}

// UpdateCartItemQuantity sets a row's quantity; zero or less removes it.
func (c *Client) UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) (string, error) {
	in := map[string]int{"quantity": quantity}
	return c.mutate(ctx, http.MethodPut, fmt.Sprintf("/v1/cart/items/%d", itemID), in)
}

// RemoveFromCart deletes one row.
func (c *Client) RemoveFromCart(ctx context.Context, itemID int64) (string, error) {
	return c.mutate(ctx, http.MethodDelete, fmt.Sprintf("/v1/cart/items/%d", itemID), nil)
}

// ClearCart empties the cart.
func (c *Client) ClearCart(ctx context.Context) error {
	_, err := c.mutate(ctx, http.MethodDelete, "/v1/cart", nil)
	return err
}

//
// --- Checkout ---
//

// CheckoutResult is the answer to a checkout call. Redirect is always set:
// "/order-success" after a confirmed order, "/products" for an empty cart.
type CheckoutResult struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Error    string         `json:"error"`
	Redirect string         `json:"redirect"`
	Totals   pricing.Totals `json:"totals"`
}

// Summary fetches the checkout totals. An empty cart yields Redirect
// "/products" and no error.
func (c *Client) Summary(ctx context.Context) (CheckoutResult, error) {
	var res CheckoutResult
	status, err := c.do(ctx, http.MethodGet, "/v1/checkout", nil, &res, http.StatusOK, http.StatusSeeOther)
	if err != nil {
		return CheckoutResult{}, err
	}
	if status == http.StatusOK {
		res.Success = true
	}
	return res, nil
}

// Checkout confirms the order with the shipping form.
func (c *Client) Checkout(ctx context.Context, form checkout.ShippingForm) (CheckoutResult, error) {
	var res CheckoutResult
	if _, err := c.do(ctx, http.MethodPost, "/v1/checkout/confirm", form, &res, http.StatusOK, http.StatusSeeOther); err != nil {
		return CheckoutResult{}, err
	}
	return res, nil
}

//
// --- Invalidation feed ---
//

// Watch opens the cart events websocket and delivers invalidations on the
// returned channel until ctx is cancelled or the connection drops, at which
// point the channel is closed.
func (c *Client) Watch(ctx context.Context) (<-chan events.Invalidation, error) {
	u, err := url.Parse(c.baseURL + "/v1/cart/events")
	if err != nil {
		return nil, fmt.Errorf("client: events url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	header := http.Header{}
	if token := c.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, apperr.FromStatus(resp.StatusCode, "")
		}
		return nil, apperr.Backend("dial events", err)
	}

	out := make(chan events.Invalidation, 8)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(out)
		defer close(done)
		defer conn.Close()
		for {
			var inv events.Invalidation
			if err := conn.ReadJSON(&inv); err != nil {
				return
			}
			select {
			case out <- inv:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
