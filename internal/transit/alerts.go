package transit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const trainAlertsPath = "/TrainServiceAlerts"

// StatusDisrupted is the DataMall status code for a major disruption
const StatusDisrupted = 2

var lineNames = map[string]string{
	"EWL": "East West Line (EWL)",
	"NSL": "North South Line (NSL)",
	"NEL": "North East Line (NEL)",
	"CCL": "Circle Line (CCL)",
	"DTL": "Downtown Line (DTL)",
	"TEL": "Thomson-East Coast Line (TEL)",
	"BPL": "Bukit Panjang LRT (BPL)",
	"STL": "Sengkang LRT (STL)",
	"PTL": "Punggol LRT (PTL)",
}

// LineName returns the full name of a rail line code
func LineName(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if name, ok := lineNames[c]; ok {
		return name
	}
	if c == "" {
		return "Unknown line"
	}
	return c
}

// Cluster is one train service alert
type Cluster struct {
	Status              int    `json:"status"`
	Line                string `json:"line"`
	Direction           string `json:"direction,omitempty"`
	Stations            string `json:"stations,omitempty"`
	FreePublicBus       string `json:"freePublicBus,omitempty"`
	FreeMRTShuttle      string `json:"freeMrtShuttle,omitempty"`
	MRTShuttleDirection string `json:"mrtShuttleDirection,omitempty"`
	Message             string `json:"message,omitempty"`
	MessageCreated      string `json:"messageCreated,omitempty"`
}

// Disrupted reports a major disruption on the cluster's line
func (c Cluster) Disrupted() bool {
	return c.Status == StatusDisrupted
}

// AnyDisrupted reports whether any cluster is disrupted
func AnyDisrupted(clusters []Cluster) bool {
	for _, c := range clusters {
		if c.Disrupted() {
			return true
		}
	}
	return false
}

// FetchTrainAlerts returns the current train service alerts. Unlike the
// bus datasets this one is not paginated.
func FetchTrainAlerts(ctx context.Context, c *Client) ([]Cluster, error) {
	var result struct {
		Value json.RawMessage `json:"value"`
	}
	if err := c.get(ctx, trainAlertsPath, nil, &result); err != nil {
		return nil, fmt.Errorf("fetching train alerts: %w", err)
	}

	clusters, err := parseClusters(result.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing train alerts: %w", ErrUpstream, err)
	}
	return clusters, nil
}

// parseClusters accepts either a list of clusters or a single status object
// whose AffectedSegments are expanded into one cluster each.
func parseClusters(raw json.RawMessage) ([]Cluster, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Cluster{}, nil
	}

	var rows []alertRow
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, err
		}
	case '{':
		var row alertRow
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return nil, err
		}
		rows = []alertRow{row}
	default:
		return []Cluster{}, nil
	}

	clusters := make([]Cluster, 0, len(rows))
	for _, row := range rows {
		clusters = append(clusters, row.clusters()...)
	}
	return clusters, nil
}

// Upstream response structures

type alertSegment struct {
	Line                string `json:"Line"`
	Direction           string `json:"Direction"`
	Stations            string `json:"Stations"`
	FreePublicBus       string `json:"FreePublicBus"`
	FreeMRTShuttle      string `json:"FreeMRTShuttle"`
	MRTShuttleDirection string `json:"MRTShuttleDirection"`
}

type alertRow struct {
	Status flexInt `json:"Status"`
	alertSegment
	AffectedSegments []alertSegment `json:"AffectedSegments"`
	Message          alertMessage   `json:"Message"`
}

func (r alertRow) clusters() []Cluster {
	segments := r.AffectedSegments
	if len(segments) == 0 {
		segments = []alertSegment{r.alertSegment}
	}

	out := make([]Cluster, 0, len(segments))
	for _, seg := range segments {
		out = append(out, Cluster{
			Status:              int(r.Status),
			Line:                strings.ToUpper(strings.TrimSpace(seg.Line)),
			Direction:           seg.Direction,
			Stations:            seg.Stations,
			FreePublicBus:       seg.FreePublicBus,
			FreeMRTShuttle:      seg.FreeMRTShuttle,
			MRTShuttleDirection: seg.MRTShuttleDirection,
			Message:             r.Message.Content,
			MessageCreated:      r.Message.CreatedDate,
		})
	}
	return out
}

// alertMessage decodes a message given as an object, a list of objects (the
// first is used) or a bare string.
type alertMessage struct {
	Content     string
	CreatedDate string
}

func (m *alertMessage) UnmarshalJSON(b []byte) error {
	*m = alertMessage{}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '"':
		return json.Unmarshal(trimmed, &m.Content)
	case '[':
		var list []alertMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			*m = list[0]
		}
		return nil
	case '{':
		var obj map[string]any
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		m.Content = firstString(obj, "Content", "content")
		m.CreatedDate = firstString(obj, "CreatedDate", "createdDate", "Created")
		return nil
	}
	return nil
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// AlertService fetches train service alerts
type AlertService struct {
	client *Client
}

// NewAlertService creates a new alert service
func NewAlertService(client *Client) *AlertService {
	return &AlertService{client: client}
}

// HasAccountKey returns true if alerts can be fetched
func (s *AlertService) HasAccountKey() bool {
	return s.client.HasAccountKey()
}

// TrainAlerts returns the current alert clusters
func (s *AlertService) TrainAlerts(ctx context.Context) ([]Cluster, error) {
	return FetchTrainAlerts(ctx, s.client)
}
