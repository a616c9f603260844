package environment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var sgt = time.FixedZone("SGT", 8*3600)

const (
	tempBody = `{"data":{"readings":[{"timestamp":"2025-03-12T10:00:00+08:00","data":[
		{"stationId":"S1","value":30},{"stationId":"S2","value":32},{"stationId":"S3","value":"n/a"}]}]}}`
	rainBody = `{"data":{"readings":[{"timestamp":"2025-03-12T10:05:00+08:00","data":[
		{"stationId":"S1","value":0},{"stationId":"S2","value":0}]}]}}`
	psiBody = `{"data":{"items":[{"timestamp":"2025-03-12T09:00:00+08:00","updatedTimestamp":"2025-03-12T09:10:00+08:00",
		"readings":{"psi_twenty_four_hourly":{"west":41,"east":44,"central":52,"south":47,"north":39}}}]}}`
	uvBody = `{"data":{"records":[{"timestamp":"2025-03-12T09:59:00+08:00","updatedTimestamp":"2025-03-12T10:01:00+08:00",
		"index":[{"hour":"2025-03-12T10:00:00+08:00","value":6},{"hour":"2025-03-12T09:00:00+08:00","value":4}]}]}}`
)

type feeds map[string]string

func newFeedServer(t *testing.T, bodies feeds) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func allFeeds() feeds {
	return feeds{
		"air-temperature": tempBody,
		"rainfall":        rainBody,
		"psi":             psiBody,
		"uv":              uvBody,
	}
}

func TestSnapshot(t *testing.T) {
	server := newFeedServer(t, allFeeds())
	client := NewClient(server.URL, 5*time.Second, sgt)

	snap, err := client.Snapshot(context.Background(), "Central")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.TempC == nil || *snap.TempC != 31 {
		t.Errorf("expected mean temperature 31, got %v", snap.TempC)
	}
	if snap.RainMaxMm == nil || *snap.RainMaxMm != 0 {
		t.Errorf("expected rain 0 (not raining), got %v", snap.RainMaxMm)
	}
	if snap.PSI24 == nil || *snap.PSI24 != 52 {
		t.Errorf("expected central psi 52, got %v", snap.PSI24)
	}
	if snap.UV == nil || *snap.UV != 6 {
		t.Errorf("expected uv 6, got %v", snap.UV)
	}

	want := time.Date(2025, 3, 12, 10, 5, 0, 0, sgt)
	if !snap.APITime.Equal(want) {
		t.Errorf("expected apiTime %v, got %v", want, snap.APITime)
	}
	if snap.APITime.Location() != sgt {
		t.Errorf("expected apiTime in SGT, got %v", snap.APITime.Location())
	}
}

func TestSnapshotFailsWhenAnyFeedFails(t *testing.T) {
	for _, missing := range []string{"air-temperature", "rainfall", "psi", "uv"} {
		t.Run(missing, func(t *testing.T) {
			bodies := allFeeds()
			delete(bodies, missing)
			server := newFeedServer(t, bodies)
			client := NewClient(server.URL, 5*time.Second, sgt)

			_, err := client.Snapshot(context.Background(), "central")
			if !errors.Is(err, ErrFeed) {
				t.Fatalf("expected ErrFeed, got %v", err)
			}
			if !strings.Contains(err.Error(), missing) {
				t.Errorf("expected error to name %q, got %v", missing, err)
			}
		})
	}
}

func TestSnapshotMalformedFeed(t *testing.T) {
	bodies := allFeeds()
	bodies["uv"] = `{"data":`
	server := newFeedServer(t, bodies)
	client := NewClient(server.URL, 5*time.Second, sgt)

	if _, err := client.Snapshot(context.Background(), "central"); !errors.Is(err, ErrFeed) {
		t.Fatalf("expected ErrFeed, got %v", err)
	}
}

func TestSnapshotEmptyFeeds(t *testing.T) {
	server := newFeedServer(t, feeds{
		"air-temperature": `{"data":{"readings":[]}}`,
		"rainfall":        `{"data":{"readings":[{"timestamp":"bad","data":[]}]}}`,
		"psi":             `{"data":{"items":[{"readings":{"psi_twenty_four_hourly":{}}}]}}`,
		"uv":              `{"data":{"records":[]}}`,
	})
	client := NewClient(server.URL, 5*time.Second, sgt)
	fixed := time.Date(2025, 3, 12, 2, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return fixed }

	snap, err := client.Snapshot(context.Background(), "central")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.TempC != nil || snap.RainMaxMm != nil || snap.PSI24 != nil || snap.UV != nil {
		t.Errorf("expected all readings nil, got %+v", snap)
	}
	if !snap.APITime.Equal(fixed) {
		t.Errorf("expected fallback to fetch time, got %v", snap.APITime)
	}
}

func TestRegionValuesPick(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		region string
		want   *float64
	}{
		{"preferred region", `{"west":41,"central":52}`, "central", ptr(52)},
		{"case insensitive", `{"west":41,"central":52}`, "CENTRAL", ptr(52)},
		{"falls back to first numeric", `{"west":"x","east":44,"north":39}`, "central", ptr(44)},
		{"preferred region not numeric", `{"central":null,"south":47}`, "central", ptr(47)},
		{"no numeric values", `{"west":"x"}`, "central", nil},
		{"empty block", `{}`, "central", nil},
		{"absent block", `null`, "central", nil},
		{"default region", `{"east":44,"central":52}`, "", ptr(52)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rv regionValues
			if err := json.Unmarshal([]byte(tt.body), &rv); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got := rv.pick(tt.region)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("expected nil, got %v", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("expected %v, got %v", *tt.want, got)
			}
		})
	}
}

func TestRegionValuesRejectsNonObject(t *testing.T) {
	var rv regionValues
	if err := json.Unmarshal([]byte(`[1,2]`), &rv); err == nil {
		t.Error("expected error for array block")
	}
}

func ptr(v float64) *float64 { return &v }
