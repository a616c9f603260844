// Package commute holds the trip entry form: its fields, the rules that
// keep them consistent and the save flow.
package commute

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/peatergripin/ecocommute/internal/backend"
	"github.com/peatergripin/ecocommute/internal/geo"
	"github.com/peatergripin/ecocommute/internal/models"
)

// DefaultSpan is the gap put between start and end on a new draft, and
// when the start is moved past the end
const DefaultSpan = 30 * time.Minute

// Draft is a trip being entered or edited
type Draft struct {
	UserID    string
	FromLabel string
	ToLabel   string
	Mode      models.Mode
	Purpose   string
	Notes     string

	// Photo is uploaded after the trip is saved
	Photo *backend.Upload

	start, end time.Time
	duration   Duration

	startPoint, endPoint *geo.Point
	distanceKm           *float64
}

// NewDraft starts an empty trip at now lasting DefaultSpan
func NewDraft(userID string, now time.Time) *Draft {
	now = now.Truncate(time.Minute)
	return &Draft{
		UserID: userID,
		Mode:   models.ModeMRT,
		start:  now,
		end:    now.Add(DefaultSpan),
	}
}

// DraftFromTrip loads a saved trip for editing. Times are read in loc. A
// stored duration that differs from the time range is kept as manual.
func DraftFromTrip(t models.Trip, loc *time.Location) (*Draft, error) {
	start, err := models.ParseWallClock(t.StartTime, loc)
	if err != nil {
		return nil, fmt.Errorf("trip %s start: %w", t.ID, err)
	}
	end, err := models.ParseWallClock(t.EndTime, loc)
	if err != nil {
		return nil, fmt.Errorf("trip %s end: %w", t.ID, err)
	}

	d := &Draft{
		UserID:     t.UserID,
		FromLabel:  t.FromLabel,
		ToLabel:    t.ToLabel,
		Mode:       t.Mode,
		Purpose:    t.Purpose,
		Notes:      t.Notes,
		start:      start,
		end:        end,
		startPoint: t.StartPoint(),
		endPoint:   t.EndPoint(),
		distanceKm: t.DistanceKm,
	}
	if t.DurationMin != d.autoMinutes() {
		d.duration = ManualDuration(t.DurationMin)
	}
	return d, nil
}

// Start returns the trip start
func (d *Draft) Start() time.Time { return d.start }

// End returns the trip end
func (d *Draft) End() time.Time { return d.end }

// Duration returns the duration state
func (d *Draft) Duration() Duration { return d.duration }

// DistanceKm returns the distance between the picked points, if both are set
func (d *Draft) DistanceKm() *float64 { return d.distanceKm }

// Points returns the picked start and end points
func (d *Draft) Points() (start, end *geo.Point) { return d.startPoint, d.endPoint }

// SetStart moves the start. If it lands after the end, the end is pushed
// to start + DefaultSpan. This suits a picker where the user adjusts one
// field at a time; use SetRange when both values are given.
func (d *Draft) SetStart(t time.Time) {
	d.start = t
	d.keepOrdered()
}

// SetEnd moves the end, with the same push rule as SetStart
func (d *Draft) SetEnd(t time.Time) {
	d.end = t
	d.keepOrdered()
}

// SetRange sets both times as given. An inverted range is kept so that
// Validate reports it.
func (d *Draft) SetRange(start, end time.Time) {
	d.start, d.end = start, end
}

func (d *Draft) keepOrdered() {
	if d.end.Before(d.start) {
		d.end = d.start.Add(DefaultSpan)
	}
}

// SetPoints sets both endpoints and recomputes the distance, rounded to
// two decimals. Either point may be nil, which clears the distance.
func (d *Draft) SetPoints(start, end *geo.Point) {
	d.startPoint, d.endPoint = start, end
	d.distanceKm = nil
	if km := geo.DistanceKm(start, end); km != nil {
		rounded := math.Round(*km*100) / 100
		d.distanceKm = &rounded
	}
}

// SetManualDuration pins the duration to the typed value. Invalid text
// leaves the duration unchanged.
func (d *Draft) SetManualDuration(text string) error {
	n, err := ParseMinutes(text)
	if err != nil {
		return err
	}
	d.duration = ManualDuration(n)
	return nil
}

// RecomputeDuration drops a manual duration and follows the time range
// again. It fails if the range is inverted.
func (d *Draft) RecomputeDuration() error {
	if d.end.Before(d.start) {
		return invalid("endTime", "End time must be after start time.")
	}
	d.duration = AutoDuration()
	return nil
}

// DurationMinutes is the duration that will be saved
func (d *Draft) DurationMinutes() int {
	return d.duration.Minutes(d.autoMinutes())
}

func (d *Draft) autoMinutes() int {
	return int(math.Round(d.end.Sub(d.start).Minutes()))
}

// draftForm is the validated view of a draft, fields in form order
type draftForm struct {
	UserID    string `validate:"required"`
	FromLabel string `validate:"required"`
	ToLabel   string `validate:"required"`
	Start     time.Time
	End       time.Time   `validate:"gtefield=Start"`
	Duration  int         `validate:"min=0"`
	Mode      models.Mode `validate:"commutemode"`
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("commutemode", func(fl validator.FieldLevel) bool {
		return models.Mode(fl.Field().String()).Valid()
	})
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks the draft in form order and returns the first problem:
// sign-in, from, to, time range, duration, mode.
func (d *Draft) Validate() error {
	form := draftForm{
		UserID:    strings.TrimSpace(d.UserID),
		FromLabel: strings.TrimSpace(d.FromLabel),
		ToLabel:   strings.TrimSpace(d.ToLabel),
		Start:     d.start,
		End:       d.end,
		Duration:  d.DurationMinutes(),
		Mode:      d.Mode,
	}

	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	switch fieldErrs[0].StructField() {
	case "UserID":
		return ErrSignInRequired
	case "FromLabel":
		return invalid("fromLabel", "Please enter a start location.")
	case "ToLabel":
		return invalid("toLabel", "Please enter a destination.")
	case "End":
		return invalid("endTime", "End time must be after start time.")
	case "Duration":
		return invalid("duration", "Duration must be a non-negative number.")
	default:
		return invalid("mode", fmt.Sprintf("Unknown mode %q.", d.Mode))
	}
}

// Trip converts the draft to a trip record, with times as wall-clock
// strings in the draft's own zone
func (d *Draft) Trip() models.Trip {
	t := models.Trip{
		UserID:      d.UserID,
		FromLabel:   strings.TrimSpace(d.FromLabel),
		ToLabel:     strings.TrimSpace(d.ToLabel),
		Mode:        d.Mode,
		StartTime:   models.FormatWallClock(d.start),
		EndTime:     models.FormatWallClock(d.end),
		DurationMin: d.DurationMinutes(),
		Purpose:     strings.TrimSpace(d.Purpose),
		Notes:       strings.TrimSpace(d.Notes),
		DistanceKm:  d.distanceKm,
	}
	if p := d.startPoint; p != nil {
		lat, lng := p.Lat, p.Lng
		t.StartLat, t.StartLng = &lat, &lng
	}
	if p := d.endPoint; p != nil {
		lat, lng := p.Lat, p.Lng
		t.EndLat, t.EndLng = &lat, &lng
	}
	return t
}
