package transit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

func TestParseClusters(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		disrupt bool
		message string
		firstLn string
	}{
		{
			name: "list of clusters",
			body: `[{"Status":1,"Line":"ewl","Message":{"Content":"All good","CreatedDate":"2025-03-12 08:00:00"}},
				{"Status":"2","Line":"NSL","Direction":"Jurong East","Stations":"NS1,NS2","Message":[{"Content":"Fault at Jurong East"}]}]`,
			want: 2, disrupt: true, message: "All good", firstLn: "EWL",
		},
		{
			name: "status object with segments",
			body: `{"Status":2,"AffectedSegments":[{"Line":"CCL","Direction":"HarbourFront","Stations":"CC1,CC2","FreePublicBus":"CC1,CC2"},{"Line":"CCL","Direction":"Dhoby Ghaut","Stations":"CC2,CC1"}],
				"Message":[{"Content":"Train fault","CreatedDate":"2025-03-12 08:10:00"}]}`,
			want: 2, disrupt: true, message: "Train fault", firstLn: "CCL",
		},
		{
			name: "normal status object",
			body: `{"Status":1,"AffectedSegments":[],"Message":[]}`,
			want: 1, disrupt: false, message: "", firstLn: "",
		},
		{
			name: "string message",
			body: `[{"Status":1,"Line":"DTL","Message":"Minor delay"}]`,
			want: 1, disrupt: false, message: "Minor delay", firstLn: "DTL",
		},
		{name: "null", body: `null`, want: 0},
		{name: "scalar", body: `42`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clusters, err := parseClusters([]byte(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(clusters) != tt.want {
				t.Fatalf("expected %d clusters, got %d", tt.want, len(clusters))
			}
			if tt.want == 0 {
				return
			}
			if AnyDisrupted(clusters) != tt.disrupt {
				t.Errorf("expected AnyDisrupted=%v", tt.disrupt)
			}
			if clusters[0].Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, clusters[0].Message)
			}
			if clusters[0].Line != tt.firstLn {
				t.Errorf("expected line %q, got %q", tt.firstLn, clusters[0].Line)
			}
		})
	}
}

func TestFetchTrainAlerts(t *testing.T) {
	f, client := newFakeDataMall(t)
	f.alerts = `{"odata.metadata":"x","value":{"Status":2,"AffectedSegments":[{"Line":"NEL","Direction":"Punggol","Stations":"NE1,NE3"}],"Message":[{"Content":"Signal fault","CreatedDate":"2025-03-12 07:45:00"}]}}`

	svc := NewAlertService(client)
	clusters, err := svc.TrainAlerts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clusters) != 1 || !clusters[0].Disrupted() || clusters[0].MessageCreated != "2025-03-12 07:45:00" {
		t.Errorf("unexpected clusters %+v", clusters)
	}
}

func TestFetchTrainAlertsBadBody(t *testing.T) {
	f, client := newFakeDataMall(t)
	f.alerts = `{"value":[{"Status":1,"Message":{"Content":5}}]}`

	if _, err := FetchTrainAlerts(context.Background(), client); err != nil {
		t.Fatalf("expected non-string content to be ignored, got %v", err)
	}

	f.mu.Lock()
	f.alerts = `{"value":[`
	f.mu.Unlock()
	if _, err := FetchTrainAlerts(context.Background(), client); !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestLineName(t *testing.T) {
	tests := map[string]string{
		"ewl":  "East West Line (EWL)",
		" TEL": "Thomson-East Coast Line (TEL)",
		"XYZ":  "XYZ",
		"":     "Unknown line",
	}
	for in, want := range tests {
		if got := LineName(in); got != want {
			t.Errorf("LineName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAlertsFeed(t *testing.T) {
	sgt := time.FixedZone("SGT", 8*3600)
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, sgt)
	clusters := []Cluster{
		{Status: 1, Line: "EWL"},
		{Status: 2, Line: "NSL", Direction: "Jurong East", Message: "Fault", MessageCreated: "2025-03-12 08:30:00"},
		{Status: 1, Line: "DTL", Message: "Slower trains"},
	}

	data, err := MarshalAlertsFeed(clusters, now, sgt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(data, feed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if feed.GetHeader().GetGtfsRealtimeVersion() != "2.0" {
		t.Errorf("unexpected version %q", feed.GetHeader().GetGtfsRealtimeVersion())
	}
	if feed.GetHeader().GetIncrementality() != gtfs.FeedHeader_FULL_DATASET {
		t.Errorf("expected FULL_DATASET")
	}
	if feed.GetHeader().GetTimestamp() != uint64(now.Unix()) {
		t.Errorf("unexpected timestamp %d", feed.GetHeader().GetTimestamp())
	}

	if len(feed.GetEntity()) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(feed.GetEntity()))
	}

	disrupted := feed.GetEntity()[0]
	if disrupted.GetId() != "NSL-2" {
		t.Errorf("unexpected id %q", disrupted.GetId())
	}
	alert := disrupted.GetAlert()
	if alert.GetEffect() != gtfs.Alert_SIGNIFICANT_DELAYS {
		t.Errorf("expected SIGNIFICANT_DELAYS, got %v", alert.GetEffect())
	}
	if alert.GetInformedEntity()[0].GetRouteId() != "NSL" {
		t.Errorf("unexpected route %q", alert.GetInformedEntity()[0].GetRouteId())
	}
	if got := alert.GetHeaderText().GetTranslation()[0].GetText(); got != "North South Line (NSL) disrupted towards Jurong East" {
		t.Errorf("unexpected header %q", got)
	}
	wantStart := uint64(time.Date(2025, 3, 12, 8, 30, 0, 0, sgt).Unix())
	if alert.GetActivePeriod()[0].GetStart() != wantStart {
		t.Errorf("unexpected active period start %d", alert.GetActivePeriod()[0].GetStart())
	}

	advisory := feed.GetEntity()[1].GetAlert()
	if advisory.GetEffect() != gtfs.Alert_UNKNOWN_EFFECT || len(advisory.GetActivePeriod()) != 0 {
		t.Errorf("unexpected advisory %v", advisory)
	}
}
