package commute

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/peatergripin/ecocommute/internal/backend"
	"github.com/peatergripin/ecocommute/internal/models"
)

// TripWriter is the part of the backend client the save flow uses
type TripWriter interface {
	CreateTrip(ctx context.Context, trip models.Trip) (string, error)
	UpdateTrip(ctx context.Context, id string, trip models.Trip, userID string) error
	UploadTripImage(ctx context.Context, tripID, userID string, img backend.Upload) error
}

// Saver validates drafts and writes them to the backend
type Saver struct {
	trips TripWriter
}

// NewSaver creates a saver
func NewSaver(trips TripWriter) *Saver {
	return &Saver{trips: trips}
}

// Create validates the draft, creates the trip and then attaches its photo.
// A failed photo upload is logged and does not fail the save: the trip id
// is still returned.
func (s *Saver) Create(ctx context.Context, d *Draft) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}

	id, err := s.trips.CreateTrip(ctx, d.Trip())
	if err != nil {
		return "", fmt.Errorf("saving commute: %w", err)
	}

	s.attachPhoto(ctx, id, d)
	return id, nil
}

// Update validates the draft and replaces trip id. A new photo, if any,
// is attached the same way as on Create.
func (s *Saver) Update(ctx context.Context, id string, d *Draft) error {
	if err := d.Validate(); err != nil {
		return err
	}

	if err := s.trips.UpdateTrip(ctx, id, d.Trip(), d.UserID); err != nil {
		return fmt.Errorf("updating commute %s: %w", id, err)
	}

	s.attachPhoto(ctx, id, d)
	return nil
}

func (s *Saver) attachPhoto(ctx context.Context, id string, d *Draft) {
	if d.Photo == nil {
		return
	}
	if err := s.trips.UploadTripImage(ctx, id, d.UserID, *d.Photo); err != nil {
		slog.Warn("commute photo upload failed", "commute_id", id, "error", err)
	}
}
