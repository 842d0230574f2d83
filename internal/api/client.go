// Package api is the HTTP client for the storefront backend. All
// business logic lives server-side; this layer builds requests,
// decodes responses, and classifies failures into domain error codes.
//
// Token transport follows the backend's two conventions: auth
// endpoints take an Authorization bearer header, everything else
// takes a token query parameter.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stackmill/storefront/internal/domain"
)

// Client talks to the storefront backend. Safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	clientID string
	validate *validator.Validate
	logger   *slog.Logger
}

// NewClient creates a backend client. clientID is the persistent
// anonymous instance id sent on every request as X-Client-ID.
func NewClient(baseURL string, timeout time.Duration, clientID string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		clientID: clientID,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "api")),
	}
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	if err := c.validate.Struct(creds); err != nil {
		return "", &domain.Error{Code: domain.EINVALID, Message: "Email and password are required", Op: "auth.login", Err: err}
	}

	var result tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, "", creds, &result); err != nil {
		return "", err
	}
	if result.Token == "" {
		return "", &domain.Error{Code: domain.EINTERNAL, Message: "Login succeeded but no token was returned", Op: "auth.login"}
	}
	return result.Token, nil
}

// Me fetches the authenticated profile for token.
func (c *Client) Me(ctx context.Context, token string) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, token, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// AddCartItem adds quantity of a product to the server-side cart.
// Quantities are additive on top of whatever the cart already holds.
func (c *Client) AddCartItem(ctx context.Context, token string, productID, quantity int64) error {
	payload := addCartRequest{ProductID: productID, Quantity: quantity}
	if err := c.validate.Struct(payload); err != nil {
		return &domain.Error{Code: domain.EINVALID, Message: "Product id and quantity must be positive", Op: "cart.add", Err: err}
	}
	return c.do(ctx, http.MethodPost, "/api/cart/add", tokenQuery(token), "", payload, nil)
}

// Cart fetches the server-side cart.
func (c *Client) Cart(ctx context.Context, token string) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := c.do(ctx, http.MethodGet, "/api/cart", tokenQuery(token), "", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveCartItem deletes one server-side cart line by its server id.
func (c *Client) RemoveCartItem(ctx context.Context, token string, cartItemID int64) error {
	path := "/api/cart/" + strconv.FormatInt(cartItemID, 10)
	return c.do(ctx, http.MethodDelete, path, tokenQuery(token), "", nil, nil)
}

// ClearCart empties the server-side cart.
func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/api/cart/clear", tokenQuery(token), "", nil, nil)
}

// AddFavourite marks a product as favourite and returns the created
// favourite id (needed later to delete it).
func (c *Client) AddFavourite(ctx context.Context, token string, productID int64) (int64, error) {
	query := tokenQuery(token)
	query.Set("productId", strconv.FormatInt(productID, 10))

	var result favouriteResponse
	if err := c.do(ctx, http.MethodPost, "/api/favourite/add", query, "", nil, &result); err != nil {
		return 0, err
	}
	return result.ID, nil
}

// DeleteFavourite removes a favourite by its favourite id.
func (c *Client) DeleteFavourite(ctx context.Context, token string, favouriteID int64) error {
	path := "/api/favourite/delete/" + strconv.FormatInt(favouriteID, 10)
	return c.do(ctx, http.MethodDelete, path, tokenQuery(token), "", nil, nil)
}

// Product fetches one product record, used to enrich placeholder
// cart snapshots.
func (c *Client) Product(ctx context.Context, productID int64) (*domain.Product, error) {
	var product domain.Product
	path := "/api/products/" + strconv.FormatInt(productID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, "", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Products fetches the product catalog.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func tokenQuery(token string) url.Values {
	q := url.Values{}
	q.Set("token", token)
	return q
}

// do runs one request. bearer goes into the Authorization header,
// query carries endpoint parameters (including the token convention),
// body is JSON-encoded when non-nil, and out is JSON-decoded when
// non-nil and the response has content.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, bearer string, body, out any) error {
	op := method + " " + path

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Client-ID", c.clientID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.Error{Code: domain.EUNAVAILABLE, Message: "Could not reach the store", Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("backend rejected request",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode))
		return statusError(op, resp.StatusCode, data)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response for %s: %w", op, err)
		}
	}

	return nil
}

// statusError classifies a non-2xx response into a domain error.
func statusError(op string, status int, body []byte) error {
	message := backendMessage(body)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if message == "" {
			message = "You need to sign in"
		}
		return &domain.Error{Code: domain.EUNAUTHORIZED, Message: message, Op: op}
	case status == http.StatusNotFound:
		if message == "" {
			message = "Not found"
		}
		return &domain.Error{Code: domain.ENOTFOUND, Message: message, Op: op}
	case status == http.StatusConflict:
		if message == "" {
			message = "Already exists"
		}
		return &domain.Error{Code: domain.ECONFLICT, Message: message, Op: op}
	case status >= 400 && status < 500:
		if message == "" {
			message = "Invalid request"
		}
		return &domain.Error{Code: domain.EINVALID, Message: message, Op: op}
	default:
		return &domain.Error{
			Code:    domain.EUNAVAILABLE,
			Message: "The store is having trouble right now",
			Op:      op,
			Err:     fmt.Errorf("backend returned status %d: %s", status, body),
		}
	}
}

// backendMessage pulls the error text the backend puts in its JSON
// error envelope, if any.
func backendMessage(body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Message
}
