// Package places wraps the Places API autocomplete and place-location
// lookups used when picking trip endpoints.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/peatergripin/ecocommute/internal/geo"
)

// MinInputRunes is the shortest input worth sending upstream
const MinInputRunes = 2

var (
	ErrNoAPIKey = errors.New("PLACES_API_KEY not configured")
	ErrUpstream = errors.New("places upstream error")
)

// Suggestion is one autocomplete prediction
type Suggestion struct {
	PlaceID string `json:"placeId"`
	Text    string `json:"text"`
}

// Client calls the Places API
type Client struct {
	baseURL string
	apiKey  string
	region  string
	client  *http.Client
}

// NewClient creates a Places client. region is the CLDR region code used
// to bias suggestions.
func NewClient(baseURL, apiKey, region string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		region:  region,
		client:  &http.Client{Timeout: timeout},
	}
}

// HasAPIKey returns true if the client has a Places key configured
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// Autocomplete returns suggestions for input. Inputs shorter than
// MinInputRunes return no suggestions without calling upstream.
func (c *Client) Autocomplete(ctx context.Context, input, sessionToken string) ([]Suggestion, error) {
	if utf8.RuneCountInString(strings.TrimSpace(input)) < MinInputRunes {
		return []Suggestion{}, nil
	}

	body := autocompleteRequest{
		Input:                input,
		RegionCode:           c.region,
		IncludedPrimaryTypes: []string{"geocode"},
		SessionToken:         sessionToken,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding autocomplete request: %w", err)
	}

	var result autocompleteResponse
	if err := c.do(ctx, http.MethodPost, "/places:autocomplete", bytes.NewReader(payload), &result); err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(result.Suggestions))
	for _, s := range result.Suggestions {
		p := s.PlacePrediction
		if p == nil || p.PlaceID == "" {
			continue
		}
		suggestions = append(suggestions, Suggestion{PlaceID: p.PlaceID, Text: p.Text.Text})
	}
	return suggestions, nil
}

// Location returns a place's coordinates, or nil if it has none
func (c *Client) Location(ctx context.Context, placeID, sessionToken string) (*geo.Point, error) {
	if placeID == "" {
		return nil, fmt.Errorf("%w: empty place id", ErrUpstream)
	}

	params := url.Values{}
	params.Set("fields", "location")
	if sessionToken != "" {
		params.Set("sessionToken", sessionToken)
	}
	path := "/places/" + url.PathEscape(placeID) + "?" + params.Encode()

	var result placeResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	if result.Location == nil {
		return nil, nil
	}
	return &geo.Point{Lat: result.Location.Latitude, Lng: result.Location.Longitude}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrUpstream, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: parsing %s: %w", ErrUpstream, path, err)
	}
	return nil
}

// API request/response structures

type autocompleteRequest struct {
	Input                string   `json:"input"`
	RegionCode           string   `json:"regionCode,omitempty"`
	IncludedPrimaryTypes []string `json:"includedPrimaryTypes"`
	SessionToken         string   `json:"sessionToken,omitempty"`
}

type autocompleteResponse struct {
	Suggestions []struct {
		PlacePrediction *struct {
			PlaceID string `json:"placeId"`
			Text    struct {
				Text string `json:"text"`
			} `json:"text"`
		} `json:"placePrediction"`
	} `json:"suggestions"`
}

type placeResponse struct {
	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}
