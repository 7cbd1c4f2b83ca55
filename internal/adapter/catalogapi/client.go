// Package catalogapi is the HTTP client for the remote product catalog.
// Calls are one-shot; retrying is left to callers.
package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/storefront/internal/domain"
)

// DefaultBaseURL is the public catalog the storefront reads from.
const DefaultBaseURL = "https://fakestoreapi.com"

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client for baseURL. A zero timeout leaves the http.Client
// default (no timeout) in place.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchList(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := c.get(ctx, "/products", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Product{}
	}
	return out, nil
}

// FetchByID returns one product. A missing product is reported like any
// other failure.
func (c *Client) FetchByID(ctx context.Context, id int64) (domain.Product, error) {
	var out domain.Product
	if err := c.get(ctx, "/products/"+strconv.FormatInt(id, 10), &out); err != nil {
		return domain.Product{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return &domain.NetworkError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return &domain.NetworkError{Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &domain.NetworkError{Message: fmt.Sprintf("Request failed with status code %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.NetworkError{Message: transportMessage(err), Err: err}
	}
	// The public catalog answers an unknown id with 200 and an empty body.
	if len(bytes.TrimSpace(body)) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return &domain.NetworkError{Message: "Empty response from catalog"}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &domain.NetworkError{Message: "Invalid response from catalog", Err: err}
	}
	return nil
}

func transportMessage(err error) string {
	var ne net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "Request canceled"
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return "Request timed out"
	default:
		return domain.DefaultNetworkMessage
	}
}

var _ domain.CatalogClient = (*Client)(nil)
