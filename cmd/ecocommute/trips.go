package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peatergripin/ecocommute/internal/analytics"
	"github.com/peatergripin/ecocommute/internal/backend"
	"github.com/peatergripin/ecocommute/internal/commute"
	"github.com/peatergripin/ecocommute/internal/geo"
	"github.com/peatergripin/ecocommute/internal/models"
	"github.com/peatergripin/ecocommute/internal/places"
)

func runLogin(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errUsage
	}

	user, err := a.backend.Login(ctx, strings.TrimSpace(args[0]), args[1])
	if err != nil {
		return fmt.Errorf("signing in: %w", err)
	}
	if user == nil {
		return errors.New("invalid email or password")
	}
	if err := a.session.Save(ctx, *user); err != nil {
		return err
	}

	a.printf("Signed in as %s\n", displayName(*user))
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	if err := a.session.Clear(ctx); err != nil {
		return err
	}
	a.printf("Signed out\n")
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	user, ok := a.session.Current()
	if !ok {
		a.printf("Not signed in\n")
		return nil
	}

	a.printf("%s (id %s)\n", displayName(user), user.ID)
	if user.Email != "" {
		a.printf("  email:  %s\n", user.Email)
	}
	if user.Avatar != "" {
		a.printf("  avatar: %s\n", a.backend.ResolveUploadURL(user.Avatar))
	}
	return nil
}

func runTrips(ctx context.Context, a *app, args []string) error {
	trips, err := a.userTrips(ctx)
	if err != nil {
		return err
	}
	if len(trips) == 0 {
		a.printf("No commutes yet\n")
		return nil
	}

	for _, t := range trips {
		a.printf("%-6s %s  %-5s %s -> %s  %d min%s\n",
			t.ID, t.StartTime, t.Mode, t.FromLabel, t.ToLabel, t.DurationMin, formatKm(t.DistanceKm))
	}
	return nil
}

func runAdd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	from := fs.String("from", "", "Start location")
	to := fs.String("to", "", "Destination")
	mode := fs.String("mode", string(models.ModeMRT), "Travel mode")
	start := fs.String("start", "", "Start time (YYYY-MM-DD HH:MM:SS)")
	end := fs.String("end", "", "End time (YYYY-MM-DD HH:MM:SS)")
	duration := fs.String("duration", "", "Duration in minutes, overriding start/end")
	purpose := fs.String("purpose", "", "Trip purpose")
	notes := fs.String("notes", "", "Notes")
	photo := fs.String("photo", "", "Photo to attach")
	geocode := fs.Bool("geocode", false, "Look up coordinates for --from and --to")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	draft := commute.NewDraft(a.session.UserID(), a.now().In(a.loc))
	draft.FromLabel = *from
	draft.ToLabel = *to
	draft.Purpose = *purpose
	draft.Notes = *notes

	m, err := models.ParseMode(*mode)
	if err != nil {
		return err
	}
	draft.Mode = m

	if err := setTimes(draft, *start, *end, a.loc); err != nil {
		return err
	}
	if *duration != "" {
		if err := draft.SetManualDuration(*duration); err != nil {
			return err
		}
	}

	if *geocode {
		if err := a.geocode(ctx, draft); err != nil {
			return err
		}
	}

	if *photo != "" {
		f, err := os.Open(*photo)
		if err != nil {
			return fmt.Errorf("opening photo: %w", err)
		}
		defer f.Close()
		draft.Photo = photoUpload(*photo, f)
	}

	id, err := commute.NewSaver(a.backend).Create(ctx, draft)
	if err != nil {
		return err
	}

	a.printf("Saved commute %s (%d min%s)\n", id, draft.DurationMinutes(), formatKm(draft.DistanceKm()))
	return nil
}

func runDelete(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	userID, err := a.requireUser()
	if err != nil {
		return err
	}

	if err := a.backend.DeleteTrip(ctx, args[0], userID); err != nil {
		return fmt.Errorf("deleting commute: %w", err)
	}
	a.printf("Deleted commute %s\n", args[0])
	return nil
}

func runStats(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	weeks := fs.Int("weeks", analytics.DefaultWeeks, "Weeks in the weekly series")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	trips, err := a.userTrips(ctx)
	if err != nil {
		return err
	}

	now := a.now().In(a.loc)
	home := analytics.Home(trips, now)
	report := analytics.BuildReport(trips, *weeks, now)

	a.printf("Today:      %d trips, %d min\n", home.TodayTrips, home.TodayMinutes)
	a.printf("Last 7 days: %d trips, %d min, %.1f km\n", home.WeekTrips, home.WeekMinutes, home.WeekKm)
	if home.TopMode != nil {
		a.printf("Top mode:   %s (%d)\n", home.TopMode.Mode, home.TopMode.Count)
	}

	o := report.Overview
	a.printf("\nTotal trips: %d\n", o.Total)
	a.printf("Eligible distance: %.2f km\n", o.EligibleKm)
	a.printf("Carbon saved: %.2f kg\n", o.CarbonSavedKg)
	if o.TreesPlanted != nil {
		a.printf("Trees equivalent: %d\n", *o.TreesPlanted)
	}

	a.printf("\nBy mode:\n")
	for _, s := range report.ByMode {
		avg := "--"
		if s.AvgMin != nil {
			avg = fmt.Sprintf("%.0f min", *s.AvgMin)
		}
		a.printf("  %-6s %3d trips  avg %s\n", s.Mode, s.Count, avg)
	}

	a.printf("\nWeekly minutes:\n")
	for _, b := range report.Weekly {
		a.printf("  %s  %4d\n", b.Label, b.Minutes)
	}
	return nil
}

// userTrips lists the signed-in user's trips, newest first
func (a *app) userTrips(ctx context.Context) ([]models.Trip, error) {
	userID, err := a.requireUser()
	if err != nil {
		return nil, err
	}

	trips, err := a.backend.ListTrips(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading commutes: %w", err)
	}
	analytics.SortNewestFirst(trips, a.loc)
	return trips, nil
}

func (a *app) requireUser() (string, error) {
	id := a.session.UserID()
	if id == "" {
		return "", commute.ErrSignInRequired
	}
	return id, nil
}

// geocode resolves the draft's labels to coordinates using the first
// place suggestion for each
func (a *app) geocode(ctx context.Context, d *commute.Draft) error {
	client := places.NewClient(a.cfg.PlacesBaseURL, a.cfg.PlacesAPIKey, a.cfg.PlacesRegion, a.cfg.HTTPTimeout)
	if !client.HasAPIKey() {
		return places.ErrNoAPIKey
	}

	resolve := func(label string) (*geo.Point, error) {
		field := places.NewField(client)
		suggestions, _, err := field.Query(ctx, label)
		if err != nil {
			return nil, err
		}
		if len(suggestions) == 0 {
			return nil, fmt.Errorf("no place found for %q", label)
		}
		a.printf("%s -> %s\n", label, suggestions[0].Text)
		return field.Select(ctx, suggestions[0])
	}

	start, err := resolve(d.FromLabel)
	if err != nil {
		return err
	}
	end, err := resolve(d.ToLabel)
	if err != nil {
		return err
	}
	d.SetPoints(start, end)
	return nil
}

// photoUpload names the photo with a random id, keeping its extension
func photoUpload(path string, data io.Reader) *backend.Upload {
	ext := strings.ToLower(filepath.Ext(path))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return &backend.Upload{
		FileName:    uuid.NewString() + ext,
		ContentType: contentType,
		Data:        data,
	}
}

func displayName(u models.User) string {
	for _, s := range []string{u.Name, u.Username, u.Email} {
		if s != "" {
			return s
		}
	}
	return u.ID
}

func formatKm(km *float64) string {
	if km == nil {
		return ""
	}
	return fmt.Sprintf(", %.2f km", *km)
}

func formatClock(t time.Time) string {
	return t.Format("15:04")
}

// setTimes applies --start and --end as typed. With only one of them the
// other is DefaultSpan away; an inverted pair is left for Validate.
func setTimes(d *commute.Draft, start, end string, loc *time.Location) error {
	if start == "" && end == "" {
		return nil
	}

	var s, e time.Time
	if start != "" {
		t, err := models.ParseWallClock(start, loc)
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		s = t
	}
	if end != "" {
		t, err := models.ParseWallClock(end, loc)
		if err != nil {
			return fmt.Errorf("--end: %w", err)
		}
		e = t
	}

	switch {
	case end == "":
		e = s.Add(commute.DefaultSpan)
	case start == "":
		s = e.Add(-commute.DefaultSpan)
	}
	d.SetRange(s, e)
	return nil
}
