package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/nearby-events/internal/calendar"
	"github.com/pfrederiksen/nearby-events/internal/config"
	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/filter"
	"github.com/pfrederiksen/nearby-events/internal/finder"
	"github.com/pfrederiksen/nearby-events/internal/logger"
	"github.com/pfrederiksen/nearby-events/internal/metrics"
	"github.com/pfrederiksen/nearby-events/internal/server"
	"github.com/pfrederiksen/nearby-events/internal/source"
	"github.com/pfrederiksen/nearby-events/internal/status"
	"github.com/pfrederiksen/nearby-events/internal/store"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitNoMatch = 2
)

// errNoMatch reports a city lookup without result; it is not printed as an error
var errNoMatch = errors.New(status.CityNotFound)

var (
	flagConfig  string
	flagSource  string
	flagFormat  string
	flagVerbose bool

	flagLat      float64
	flagLon      float64
	flagCity     string
	flagIPLocate bool
	flagRadius   float64
	flagLimit    int
	flagUpcoming bool
	flagSort     string

	flagOutput string
	flagListen string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nearby-events",
		Short: "Find events near you",
		Long: `A CLI tool to search an event listing by distance and text.
Events within a radius of your position (or of a city that appears in the
listing) are listed nearest first; without a position the whole listing is
searched.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&flagSource, "source", "", "Event listing: URL, s3://bucket/key or file path (overrides config)")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "auto", "Output format: text, json, ics or auto")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newSearchCmd(), newLocateCmd(), newExportCmd(), newServeCmd())
	return cmd
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search events by position, city and text",
		Long: `Search events by position, city and text.

With --lat/--lon (or --ip-locate) events within --radius km are listed
nearest first. When the position cannot be determined, --city is used
instead, and if that city is not in the listing all events are searched
by text. Without any query or position the first events of the listing
are shown.`,
		RunE: runSearch,
	}

	cmd.Flags().Float64Var(&flagLat, "lat", 0, "Latitude of your position")
	cmd.Flags().Float64Var(&flagLon, "lon", 0, "Longitude of your position")
	cmd.Flags().StringVar(&flagCity, "city", "", "City or postal code to search around")
	cmd.Flags().BoolVar(&flagIPLocate, "ip-locate", false, "Determine your position from your IP address")
	cmd.Flags().Float64Var(&flagRadius, "radius", filter.DefaultRadiusKm, "Search radius in km")
	cmd.Flags().IntVar(&flagLimit, "limit", finder.DefaultInitialLimit, "Number of events shown without query or position")
	cmd.Flags().BoolVar(&flagUpcoming, "upcoming", false, "Only show events today or later")
	cmd.Flags().StringVar(&flagSort, "sort", "", "Sort results by: distance, date or title")

	return cmd
}

func newLocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate <city-or-postal-code>",
		Short: "Resolve a city or postal code to a position from the listing",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runLocate,
	}
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <event-id>...",
		Short: "Export events as an iCalendar file",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runExport,
	}
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the event search over HTTP",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (overrides config)")
	return cmd
}

// app holds what every command needs
type app struct {
	cfg   *config.Config
	store *store.Store
}

// setup loads the configuration, configures logging and creates the store
func setup(m *metrics.Metrics) (*app, error) {
	config.LoadEnv()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagSource != "" {
		cfg.Source.Location = flagSource
	}

	level := cfg.LogLevel()
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	fetcher, err := source.New(cfg.Source.Location, cfg.SourceOptions())
	if err != nil {
		return nil, fmt.Errorf("initializing source: %w", err)
	}
	logger.Debug("Using event source", logger.Fields{"source": fetcher.String()})

	return &app{cfg: cfg, store: store.New(fetcher, m)}, nil
}

// runSearch is the search command logic
func runSearch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	format, err := resolveFormat(flagFormat, out)
	if err != nil {
		return err
	}
	order, err := parseSortOrder(flagSort)
	if err != nil {
		return err
	}

	a, err := setup(nil)
	if err != nil {
		return err
	}

	position, err := positionFromFlags(cmd, a.cfg)
	if err != nil {
		return err
	}

	radius := flagRadius
	if !cmd.Flags().Changed("radius") {
		radius = a.cfg.Search.RadiusKm
	}
	fcfg := a.cfg.FinderConfig()
	if cmd.Flags().Changed("limit") {
		fcfg.InitialLimit = flagLimit
	}

	f := finder.New(a.store, position, nil, fcfg)
	req := finder.Request{
		Query:        strings.Join(args, " "),
		City:         flagCity,
		RadiusKm:     radius,
		UpcomingOnly: flagUpcoming,
	}

	// Progress lines go to stderr and only accompany text output
	progress := func(string) {}
	if format == FormatText {
		progress = func(msg string) { fmt.Fprintln(cmd.ErrOrStderr(), msg) }
	}

	ctx := cmd.Context()
	progress(status.Loading)
	events, err := a.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("searching events: %w", err)
	}
	progress(status.Loaded(len(events)))

	var outcome finder.Outcome
	switch {
	case strings.TrimSpace(req.Query) == "" && position == nil && strings.TrimSpace(req.City) == "":
		outcome, err = f.Initial(ctx, req.UpcomingOnly)
	case position == nil && strings.TrimSpace(req.City) != "":
		progress(status.SearchingNear)
		outcome, err = f.UseCity(ctx, req)
	default:
		if flagIPLocate {
			progress(status.AskingLocation)
		} else if position != nil {
			progress(status.SearchingNear)
		} else {
			progress(status.Searching)
		}
		outcome, err = f.Submit(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("searching events: %w", err)
	}

	if outcome.Mode == finder.ModeNoMatch {
		return errNoMatch
	}

	sortResults(outcome.Results, order)

	result := &OutputResult{
		GeneratedAt: time.Now().UTC(),
		Mode:        string(outcome.Mode),
		Status:      outcome.Status,
		Query:       strings.TrimSpace(req.Query),
		Location:    outcome.Location,
		Events:      outcome.Results,
		EventCount:  len(outcome.Results),
	}
	if outcome.Location != nil {
		result.RadiusKm = &radius
		if outcome.Location.City != "" {
			logger.Info(status.UsingCity(outcome.Location.City), nil)
		}
	}

	if err := WriteOutput(out, result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// positionFromFlags returns the device position source selected on the command line, or nil
func positionFromFlags(cmd *cobra.Command, cfg *config.Config) (finder.PositionProvider, error) {
	latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
	switch {
	case latSet != lonSet:
		return nil, fmt.Errorf("--lat and --lon must be given together")
	case latSet && flagIPLocate:
		return nil, fmt.Errorf("--ip-locate cannot be combined with --lat/--lon")
	case latSet:
		return finder.StaticPosition{Lat: flagLat, Lon: flagLon}, nil
	case flagIPLocate:
		return finder.NewIPPosition(cfg.Search.IPLocateURL, cfg.Search.NearMeTimeout, cfg.Source.UserAgent), nil
	}
	return nil, nil
}

// runLocate is the locate command logic
func runLocate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	format, err := resolveFormat(flagFormat, out)
	if err != nil {
		return err
	}

	a, err := setup(nil)
	if err != nil {
		return err
	}

	events, err := a.store.Load(cmd.Context())
	if err != nil {
		return err
	}

	loc, ok := filter.Locate(events, strings.Join(args, " "))
	if !ok {
		return errNoMatch
	}

	switch format {
	case FormatJSON:
		return writeJSON(out, loc)
	case FormatText:
		fmt.Fprintf(out, "%s (%s)\n", loc.City, loc.Point)
		return nil
	default:
		return fmt.Errorf("format %s is not supported by locate", format)
	}
}

// runExport is the export command logic
func runExport(cmd *cobra.Command, args []string) error {
	a, err := setup(nil)
	if err != nil {
		return err
	}
	if _, err := a.store.Load(cmd.Context()); err != nil {
		return err
	}

	events := make([]event.Event, 0, len(args))
	for _, id := range args {
		evt, err := a.store.ByID(id)
		if err != nil {
			return err
		}
		events = append(events, evt)
	}

	var ics string
	if len(events) == 1 {
		ics, err = calendar.GenerateICS(events[0])
		if err != nil {
			return fmt.Errorf("exporting %s: %w", events[0].ID, err)
		}
	} else {
		ics = calendar.GenerateBulkICS(events, "Nearby Events")
		if ics == "" {
			return fmt.Errorf("exporting events: %w", calendar.ErrNoDate)
		}
	}

	var w io.Writer = cmd.OutOrStdout()
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := io.WriteString(w, ics); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// runServe is the serve command logic
func runServe(cmd *cobra.Command, args []string) error {
	m := metrics.New()
	a, err := setup(m)
	if err != nil {
		return err
	}
	if flagListen != "" {
		a.cfg.Server.ListenAddress = flagListen
	}

	srv := server.New(a.cfg.Server, a.store, finder.New(a.store, nil, m, a.cfg.FinderConfig()), m, a.cfg.Search.RadiusKm)
	return srv.Run(cmd.Context())
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, errNoMatch) {
			fmt.Fprintln(os.Stderr, status.CityNotFound)
			stop()
			os.Exit(ExitNoMatch)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
