// Package backend is the REST client for the commute backend. It translates
// between the backend's snake_case rows and the client-side records.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/peatergripin/ecocommute/internal/models"
)

// Client talks to the commute backend
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a backend client for the given origin
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// ListTrips returns every trip owned by userID. A non-array body yields an
// empty list. Rows that cannot be decoded are logged and skipped, so only
// transport failures fail the call.
func (c *Client) ListTrips(ctx context.Context, userID string) ([]models.Trip, error) {
	body, err := c.do(ctx, http.MethodGet, "/commutes", userQuery(userID), nil, "")
	if err != nil {
		return nil, err
	}

	raw := rows(body)
	trips := make([]models.Trip, 0, len(raw))
	for _, r := range raw {
		trip, err := decodeTrip(r)
		if err != nil {
			slog.Warn("skipping commute row", "id", rowID(r), "error", err)
			continue
		}
		trips = append(trips, trip)
	}
	return trips, nil
}

// GetTrip returns the trip, or nil when it does not exist or is not owned
// by userID.
func (c *Client) GetTrip(ctx context.Context, id, userID string) (*models.Trip, error) {
	body, err := c.do(ctx, http.MethodGet, "/commutes/"+url.PathEscape(id), userQuery(userID), nil, "")
	if err != nil {
		return nil, err
	}

	raw := rows(body)
	if len(raw) == 0 {
		return nil, nil
	}
	trip, err := decodeTrip(raw[0])
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// CreateTrip stores a new trip and returns the server-assigned id. It does
// not attach a photo; see UploadTripImage.
func (c *Client) CreateTrip(ctx context.Context, trip models.Trip) (string, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/commutes", nil, encodeTrip(trip))
	if err != nil {
		return "", err
	}

	var created struct {
		ID        flexString `json:"id"`
		CommuteID flexString `json:"commuteId"`
		InsertID  flexString `json:"insertId"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("%w: create response: %w", ErrDecode, err)
	}

	for _, id := range []flexString{created.ID, created.CommuteID, created.InsertID} {
		if id != "" {
			return string(id), nil
		}
	}
	return "", fmt.Errorf("%w: create response carried no id", ErrDecode)
}

// UpdateTrip replaces a trip. userID scopes the request; when empty the
// trip's own UserID is used.
func (c *Client) UpdateTrip(ctx context.Context, id string, trip models.Trip, userID string) error {
	if userID == "" {
		userID = trip.UserID
	}
	_, err := c.doJSON(ctx, http.MethodPut, "/commutes/"+url.PathEscape(id), userQuery(userID), encodeTrip(trip))
	return err
}

// DeleteTrip removes a trip owned by userID
func (c *Client) DeleteTrip(ctx context.Context, id, userID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/commutes/"+url.PathEscape(id), userQuery(userID), nil, "")
	return err
}

// TripImage describes the photo attached to a trip
type TripImage struct {
	FilePath string `json:"filePath"`
	FileName string `json:"fileName,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// GetTripImage returns the trip's photo metadata, or nil when there is none
func (c *Client) GetTripImage(ctx context.Context, id, userID string) (*TripImage, error) {
	body, err := c.do(ctx, http.MethodGet, "/commutes/"+url.PathEscape(id)+"/image", userQuery(userID), nil, "")
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil
	}

	var obj struct {
		FilePathSnake string `json:"file_path"`
		FilePath      string `json:"filePath"`
		FileNameSnake string `json:"file_name"`
		FileName      string `json:"fileName"`
		ImageURL      string `json:"imageUrl"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("%w: image response: %w", ErrDecode, err)
	}

	path := firstNonEmpty(obj.FilePathSnake, obj.FilePath)
	if path == "" {
		return nil, nil
	}
	return &TripImage{
		FilePath: path,
		FileName: firstNonEmpty(obj.FileNameSnake, obj.FileName),
		ImageURL: obj.ImageURL,
	}, nil
}

// ResolveUploadURL turns a stored upload reference into a fetchable URL.
// Absolute URLs pass through, rooted paths get the backend origin and bare
// file names are placed under /uploads/.
func (c *Client) ResolveUploadURL(pathOrURL string) string {
	return ResolveUploadURL(c.baseURL, pathOrURL)
}

// ResolveUploadURL is the origin-explicit form of Client.ResolveUploadURL
func ResolveUploadURL(origin, pathOrURL string) string {
	if pathOrURL == "" {
		return ""
	}
	if strings.HasPrefix(pathOrURL, "http") {
		return pathOrURL
	}
	origin = strings.TrimRight(origin, "/")
	if strings.HasPrefix(pathOrURL, "/") {
		return origin + pathOrURL
	}
	return origin + "/uploads/" + pathOrURL
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	return c.do(ctx, method, path, query, bytes.NewReader(data), "application/json")
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	apiURL := c.baseURL + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %w", ErrNetwork, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

func userQuery(userID string) url.Values {
	q := url.Values{}
	q.Set("user_id", userID)
	return q
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
