// Command ecocommute is the terminal client: sign in, log commutes, view
// stats and check buses, train alerts and the weather.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/peatergripin/ecocommute/internal/backend"
	"github.com/peatergripin/ecocommute/internal/config"
	"github.com/peatergripin/ecocommute/internal/session"
)

var errUsage = errors.New("usage")

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":    {"login EMAIL PASSWORD", runLogin},
	"logout":   {"logout", runLogout},
	"whoami":   {"whoami", runWhoami},
	"trips":    {"trips", runTrips},
	"add":      {"add --from A --to B --mode M --start T --end T [--duration N] [--photo FILE] [--geocode]", runAdd},
	"delete":   {"delete ID", runDelete},
	"stats":    {"stats [--weeks N]", runStats},
	"route":    {"route SERVICE [DIRECTION]", runRoute},
	"arrivals": {"arrivals STOPCODE [--watch]", runArrivals},
	"alerts":   {"alerts", runAlerts},
	"env":      {"env", runEnv},
}

// app holds what every subcommand needs
type app struct {
	cfg     *config.Config
	loc     *time.Location
	out     io.Writer
	now     func() time.Time
	backend *backend.Client
	session *session.Session
}

func main() {
	verbose := flag.Bool("v", false, "Log debug output to stderr")
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := session.OpenSQLite(ctx, cfg.SessionDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening session store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	a, err := newApp(ctx, cfg, store, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := cmd.run(ctx, a, flag.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "usage: ecocommute %s\n", cmd.usage)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config, store session.Store, out io.Writer) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	sess := session.New(store)
	if err := sess.Load(ctx); err != nil {
		return nil, fmt.Errorf("restoring session: %w", err)
	}

	return &app{
		cfg:     cfg,
		loc:     loc,
		out:     out,
		now:     time.Now,
		backend: backend.NewClient(cfg.BackendURL, cfg.HTTPTimeout),
		session: sess,
	}, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ecocommute [-v] COMMAND [ARGS]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
