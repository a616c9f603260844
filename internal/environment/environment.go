// Package environment aggregates the government real-time weather and air
// quality feeds into a single snapshot.
package environment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrFeed is returned when any of the four feeds cannot be read. A snapshot
// is never assembled from a subset of feeds.
var ErrFeed = errors.New("environment feed unavailable")

// DefaultRegion is the PSI region used when none is given.
const DefaultRegion = "central"

// Snapshot is the combined environment reading. Nil fields mean the feed
// carried no usable value; a zero rainfall means it is not raining.
type Snapshot struct {
	TempC     *float64  `json:"tempC"`
	RainMaxMm *float64  `json:"rainMaxMm"`
	PSI24     *float64  `json:"psi24"`
	UV        *float64  `json:"uv"`
	APITime   time.Time `json:"apiTime"`
}

// DisplayTime formats APITime for people
func (s Snapshot) DisplayTime() string {
	return s.APITime.Format("02 Jan 2006, 3:04 pm")
}

// Client fetches the four real-time feeds
type Client struct {
	baseURL string
	client  *http.Client
	loc     *time.Location
	now     func() time.Time
}

// NewClient creates an environment client. loc is the zone APITime is
// reported in.
func NewClient(baseURL string, timeout time.Duration, loc *time.Location) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		loc:     loc,
		now:     time.Now,
	}
}

// Snapshot fetches every feed and combines them. region selects the PSI
// reading (case-insensitive); if it is missing the first numeric region is
// used.
func (c *Client) Snapshot(ctx context.Context, region string) (Snapshot, error) {
	var temp, rain stationFeed
	if err := c.fetch(ctx, "air-temperature", &temp); err != nil {
		return Snapshot{}, err
	}
	if err := c.fetch(ctx, "rainfall", &rain); err != nil {
		return Snapshot{}, err
	}

	var psi psiFeed
	if err := c.fetch(ctx, "psi", &psi); err != nil {
		return Snapshot{}, err
	}

	var uv uvFeed
	if err := c.fetch(ctx, "uv", &uv); err != nil {
		return Snapshot{}, err
	}

	tempBatch := temp.latest()
	rainBatch := rain.latest()
	psiItem := psi.latest()
	uvRecord := uv.latest()

	snap := Snapshot{
		TempC:     average(tempBatch.Data),
		RainMaxMm: maximum(rainBatch.Data),
		PSI24:     psiItem.Readings.TwentyFourHourly.pick(region),
		UV:        uvRecord.first(),
	}

	latest, ok := latestTimestamp(
		tempBatch.Timestamp,
		rainBatch.Timestamp,
		firstNonEmpty(psiItem.UpdatedTimestamp, psiItem.Timestamp),
		firstNonEmpty(uvRecord.UpdatedTimestamp, uvRecord.Timestamp),
	)
	if !ok {
		latest = c.now()
	}
	snap.APITime = latest.In(c.loc)

	return snap, nil
}

func (c *Client) fetch(ctx context.Context, feed string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+feed, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFeed, feed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetching %s: %w", ErrFeed, feed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrFeed, feed, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: parsing %s: %w", ErrFeed, feed, err)
	}
	return nil
}

func average(readings []stationReading) *float64 {
	sum, count := 0.0, 0
	for _, r := range readings {
		if v, ok := r.Value.(float64); ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

func maximum(readings []stationReading) *float64 {
	var max *float64
	for _, r := range readings {
		if v, ok := r.Value.(float64); ok {
			if max == nil || v > *max {
				max = &v
			}
		}
	}
	return max
}

func latestTimestamp(stamps ...string) (time.Time, bool) {
	var best time.Time
	found := false
	for _, s := range stamps {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			continue
		}
		if !found || t.After(best) {
			best = t
			found = true
		}
	}
	return best, found
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
