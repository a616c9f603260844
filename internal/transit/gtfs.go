package transit

import (
	"fmt"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// alertTimeLayout is how DataMall stamps alert messages
const alertTimeLayout = "2006-01-02 15:04:05"

// AlertsFeed converts train alerts into a GTFS-realtime feed. Every
// disrupted cluster, and every cluster carrying a message, becomes one
// alert entity. loc is the zone DataMall's message timestamps are in.
func AlertsFeed(clusters []Cluster, now time.Time, loc *time.Location) *gtfs.FeedMessage {
	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(uint64(now.Unix())),
		},
	}

	for i, c := range clusters {
		if !c.Disrupted() && c.Message == "" {
			continue
		}

		effect := gtfs.Alert_UNKNOWN_EFFECT
		if c.Disrupted() {
			effect = gtfs.Alert_SIGNIFICANT_DELAYS
		}

		alert := &gtfs.Alert{
			Effect:     effect.Enum(),
			HeaderText: englishText(alertHeader(c)),
		}
		if c.Line != "" {
			alert.InformedEntity = []*gtfs.EntitySelector{{RouteId: proto.String(c.Line)}}
		}
		if c.Message != "" {
			alert.DescriptionText = englishText(c.Message)
		}
		if created, err := time.ParseInLocation(alertTimeLayout, c.MessageCreated, loc); err == nil {
			alert.ActivePeriod = []*gtfs.TimeRange{{Start: proto.Uint64(uint64(created.Unix()))}}
		}

		feed.Entity = append(feed.Entity, &gtfs.FeedEntity{
			Id:    proto.String(fmt.Sprintf("%s-%d", lineOrUnknown(c.Line), i+1)),
			Alert: alert,
		})
	}

	return feed
}

// MarshalAlertsFeed encodes the GTFS-realtime feed as protobuf bytes
func MarshalAlertsFeed(clusters []Cluster, now time.Time, loc *time.Location) ([]byte, error) {
	data, err := proto.Marshal(AlertsFeed(clusters, now, loc))
	if err != nil {
		return nil, fmt.Errorf("encoding alerts feed: %w", err)
	}
	return data, nil
}

func alertHeader(c Cluster) string {
	if c.Disrupted() {
		if c.Direction != "" {
			return fmt.Sprintf("%s disrupted towards %s", LineName(c.Line), c.Direction)
		}
		return LineName(c.Line) + " disrupted"
	}
	return LineName(c.Line) + " advisory"
}

func lineOrUnknown(line string) string {
	if line == "" {
		return "UNKNOWN"
	}
	return line
}

func englishText(s string) *gtfs.TranslatedString {
	return &gtfs.TranslatedString{
		Translation: []*gtfs.TranslatedString_Translation{
			{Text: proto.String(s), Language: proto.String("en")},
		},
	}
}
