package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/peatergripin/ecocommute/internal/environment"
	"github.com/peatergripin/ecocommute/internal/refresh"
	"github.com/peatergripin/ecocommute/internal/transit"
)

// watchPoll is how often --watch checks the runner for a new value
const watchPoll = time.Second

func (a *app) busService() *transit.BusService {
	client := transit.NewClient(a.cfg.LTABaseURL, a.cfg.LTAAccountKey, a.cfg.HTTPTimeout)
	scan := transit.DefaultScanOptions()
	scan.EarlyStopPages = a.cfg.RouteEarlyStopPages
	return transit.NewBusService(client, scan, a.cfg.CacheTTL)
}

func runRoute(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	direction := 1
	if len(args) == 2 {
		d, err := strconv.Atoi(args[1])
		if err != nil {
			return errUsage
		}
		direction = d
	}

	svc := a.busService()
	defer svc.Close()

	stops, err := svc.RouteWithStops(ctx, args[0], direction)
	if err != nil {
		return err
	}
	if len(stops) == 0 {
		a.printf("No stops found for service %s direction %d\n", transit.NormalizeService(args[0]), direction)
		return nil
	}

	a.printf("Service %s, direction %d (%d stops)\n", stops[0].ServiceNo, direction, len(stops))
	for _, s := range stops {
		name := s.StopName
		if name == "" {
			name = "(unknown stop)"
		}
		a.printf("  %3d  %s  %s, %s\n", s.StopSequence, s.BusStopCode, name, s.RoadName)
	}
	return nil
}

func runArrivals(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("arrivals", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	watch := fs.Bool("watch", false, "Keep refreshing until interrupted")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	code := transit.CleanStopCode(fs.Arg(0))
	if len(code) != 5 {
		return fmt.Errorf("%w: bus stop code must be 5 digits", transit.ErrInvalidQuery)
	}

	svc := a.busService()
	defer svc.Close()

	if !*watch {
		arrivals, err := svc.Arrivals(ctx, code)
		if err != nil {
			return err
		}
		a.printArrivals(arrivals, false)
		return nil
	}

	runner := refresh.New("arrivals", a.cfg.ArrivalsRefresh, func(ctx context.Context) (transit.StopArrivals, error) {
		return svc.Arrivals(ctx, code)
	})
	go runner.Run(ctx)
	defer runner.Stop()

	ticker := time.NewTicker(watchPoll)
	defer ticker.Stop()

	var shown refresh.State[transit.StopArrivals]
	for {
		state := runner.State()
		if state.Status != shown.Status || !state.UpdatedAt.Equal(shown.UpdatedAt) {
			switch {
			case state.HasValue:
				a.printf("\n[%s]\n", formatClock(state.UpdatedAt.In(a.loc)))
				a.printArrivals(state.Value, state.Status == refresh.StatusStale)
			case state.Err != nil:
				a.printf("Could not load arrivals: %v\n", state.Err)
			}
			shown = state
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (a *app) printArrivals(arrivals transit.StopArrivals, stale bool) {
	now := a.now()
	if stale {
		a.printf("(showing last known arrivals)\n")
	}
	if len(arrivals.Services) == 0 {
		a.printf("No buses in service at stop %s\n", arrivals.BusStopCode)
		return
	}

	a.printf("Stop %s\n", arrivals.BusStopCode)
	for _, s := range arrivals.Services {
		a.printf("  %-5s", s.ServiceNo)
		for _, bus := range s.Buses() {
			wab := " "
			if bus.WheelchairAccessible() {
				wab = "♿"
			}
			a.printf("  %-7s %-3s %s", transit.ETALabel(bus.EstimatedArrival, now), transit.LoadLabel(bus.Load), wab)
		}
		a.printf("\n")
	}
}

func runAlerts(ctx context.Context, a *app, args []string) error {
	client := transit.NewClient(a.cfg.LTABaseURL, a.cfg.LTAAccountKey, a.cfg.HTTPTimeout)
	clusters, err := transit.NewAlertService(client).TrainAlerts(ctx)
	if err != nil {
		return err
	}

	if !transit.AnyDisrupted(clusters) {
		a.printf("All train lines running normally\n")
	}
	for _, c := range clusters {
		if !c.Disrupted() && c.Message == "" {
			continue
		}
		a.printf("%s", transit.LineName(c.Line))
		if c.Disrupted() {
			a.printf(": disrupted")
			if c.Direction != "" {
				a.printf(" towards %s", c.Direction)
			}
		}
		a.printf("\n")
		if c.Stations != "" {
			a.printf("  stations: %s\n", c.Stations)
		}
		if c.FreePublicBus != "" {
			a.printf("  free public bus: %s\n", c.FreePublicBus)
		}
		if c.FreeMRTShuttle != "" {
			a.printf("  free MRT shuttle: %s\n", c.FreeMRTShuttle)
		}
		if c.Message != "" {
			a.printf("  %s\n", c.Message)
		}
	}
	return nil
}

func runEnv(ctx context.Context, a *app, args []string) error {
	client := environment.NewClient(a.cfg.EnvAPIBaseURL, a.cfg.HTTPTimeout, a.loc)
	snap, err := client.Snapshot(ctx, a.cfg.PSIRegion)
	if err != nil {
		return err
	}

	a.printf("As of %s\n", snap.DisplayTime())
	a.printf("  Temperature: %s\n", formatReading(snap.TempC, "%.1f°C"))
	a.printf("  Rainfall:    %s\n", formatReading(snap.RainMaxMm, "%.1f mm"))
	a.printf("  PSI (24h):   %s\n", formatReading(snap.PSI24, "%.0f"))
	a.printf("  UV index:    %s\n", formatReading(snap.UV, "%.0f"))
	return nil
}

func formatReading(v *float64, format string) string {
	if v == nil {
		return "--"
	}
	return fmt.Sprintf(format, *v)
}
