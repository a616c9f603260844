// Package transit talks to the LTA DataMall bus and rail datasets.
package transit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoAccountKey is returned before any request when no DataMall key is
	// configured.
	ErrNoAccountKey = errors.New("LTA_ACCOUNT_KEY not configured")

	// ErrUpstream wraps transport failures, non-200 statuses and bodies that
	// cannot be parsed.
	ErrUpstream = errors.New("transit upstream error")

	// ErrInvalidQuery is returned for a malformed service number, direction
	// or stop code.
	ErrInvalidQuery = errors.New("invalid transit query")
)

// Client issues authenticated GETs against DataMall
type Client struct {
	baseURL    string
	accountKey string
	client     *http.Client
}

// NewClient creates a DataMall client
func NewClient(baseURL, accountKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountKey: accountKey,
		client:     &http.Client{Timeout: timeout},
	}
}

// HasAccountKey returns true if the client has a DataMall key configured
func (c *Client) HasAccountKey() bool {
	return c.accountKey != ""
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.accountKey == "" {
		return ErrNoAccountKey
	}

	apiURL := c.baseURL + path
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("AccountKey", c.accountKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetching %s: %w", ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned status %d: %s", ErrUpstream, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: parsing %s: %w", ErrUpstream, path, err)
	}
	return nil
}

// page is the OData envelope every DataMall dataset uses
type page[T any] struct {
	Value []T `json:"value"`
}

func fetchPage[T any](ctx context.Context, c *Client, path string, skip int) ([]T, error) {
	params := url.Values{}
	if skip > 0 {
		params.Set("$skip", strconv.Itoa(skip))
	}

	var p page[T]
	if err := c.get(ctx, path, params, &p); err != nil {
		return nil, err
	}
	return p.Value, nil
}

// flexInt accepts a JSON number or numeric string. Anything unreadable
// decodes to 0.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexInt(v)
	return nil
}
