package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spektr-org/menulens/cache"
	"github.com/spektr-org/menulens/config"
	"github.com/spektr-org/menulens/dataset"
	"github.com/spektr-org/menulens/engine"
	"github.com/spektr-org/menulens/export"
	"github.com/spektr-org/menulens/logging"
	"github.com/spektr-org/menulens/normalize"
	"github.com/spektr-org/menulens/report"
	"github.com/spektr-org/menulens/server"
)

// ============================================================================
// MENULENS CLI — Menu intelligence for the Italian on-trade
// ============================================================================

const version = "0.1.0"

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.toml", "Path to TOML config file")
	filePath := flag.String("file", "", "Listings CSV (overrides the configured source)")
	universePath := flag.String("universe", "", "Market universe CSV (region, city, customer_type, venues)")
	masterPath := flag.String("master", "", "Product master YAML")
	tablesPath := flag.String("tables", "", "Normalization tables YAML")
	queryPath := flag.String("query", "", "Dashboard query JSON file (default: all records, all time)")
	owners := flag.String("owners", "", "Comma-separated brand owners the caller may see")
	scorecards := flag.Bool("scorecards", false, "Output owner scorecards instead of the dashboard")
	format := flag.String("format", "json", "Output format: json, pretty, text, csv, xlsx")
	outFile := flag.String("out", "", "Write output to file instead of stdout")
	serve := flag.Bool("serve", false, "Start the HTTP API instead of printing one dashboard")
	discover := flag.Bool("discover", false, "Report how the source columns map to listing fields, then exit")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `menulens — menu intelligence for HORECA listings

Usage:
  menulens --file listings.csv --query q.json --format pretty
  menulens --file listings.csv --format xlsx --out listings.xlsx
  menulens --file listings.csv --scorecards --format text
  menulens --file new_export.csv --discover
  menulens --config config.toml --serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Formats:
  json      Dashboard JSON (default)
  pretty    Indented dashboard JSON
  text      KPI and ranking tables
  csv       Filtered primary-period listings as CSV
  xlsx      Filtered listings plus heatmap sheets

Environment:
  MENULENS_*  overrides config keys (see config.toml); .env is loaded if present
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("menulens %s\n", version)
		os.Exit(0)
	}

	switch *format {
	case "json", "pretty", "text", "csv", "xlsx":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown --format %q\n", *format)
		flag.Usage()
		os.Exit(1)
	}

	// ── Config & logging ──────────────────────────────────────────────────
	if err := config.LoadDotEnv(); err != nil {
		fatalf("%v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("%v", err)
	}
	overridePaths(cfg, *filePath, *universePath, *masterPath, *tablesPath)

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fatalf("%v", err)
	}
	defer logger.Sync()
	defer logging.Install(logger)()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Data ──────────────────────────────────────────────────────────────
	norm, err := buildNormalizer(cfg, logger)
	if err != nil {
		fatalf("%v", err)
	}
	src, closeSource, err := buildSource(ctx, cfg)
	if err != nil {
		fatalf("%v", err)
	}
	defer closeSource()

	if *discover {
		rows, err := src.Fetch(ctx)
		if err != nil {
			fatalf("%v", err)
		}
		if err := writeDiscovery(os.Stdout, normalize.Discover(rows, 0)); err != nil {
			fatalf("%v", err)
		}
		return
	}

	loader, closeCache, err := buildLoader(src, cfg, norm, logger)
	if err != nil {
		fatalf("%v", err)
	}
	defer closeCache()

	var universe []engine.MarketUniverseEntry
	if cfg.Data.Universe != "" {
		universe, err = dataset.LoadUniverseCSV(cfg.Data.Universe, norm)
		if err != nil {
			fatalf("%v", err)
		}
		logger.Info("universe loaded", zap.Int("slices", len(universe)))
	}

	engineOpts := []engine.Option{
		engine.WithTopN(cfg.Engine.TopN),
		engine.WithHeatmapSize(cfg.Engine.HeatmapRows, cfg.Engine.HeatmapCols),
		engine.WithCoOccurrenceLimit(cfg.Engine.CoOccurrence),
		engine.WithLogger(logger),
	}
	formatter := report.NewFormatter(cfg.Report.Locale, cfg.Report.Currency)

	// ── Serve mode ────────────────────────────────────────────────────────
	if *serve {
		if !cfg.Server.DevMode {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := server.New(loader,
			server.WithUniverse(universe),
			server.WithEngineOptions(engineOpts...),
			server.WithWorkers(cfg.Engine.Workers),
			server.WithFormatter(formatter),
			server.WithLogger(logger),
		)
		if err := srv.Run(cfg.Server.Addr); err != nil {
			fatalf("server: %v", err)
		}
		return
	}

	// ── One-shot mode ─────────────────────────────────────────────────────
	q, err := loadQuery(*queryPath)
	if err != nil {
		fatalf("%v", err)
	}
	q.Scope = parseScope(*owners)

	records, err := loader.Load(ctx)
	if err != nil {
		fatalf("%v", err)
	}
	if universe == nil {
		universe = engine.BuildUniverse(records)
	}

	writer := io.Writer(os.Stdout)
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		writer = f
	}

	if *scorecards {
		visible := q.Scope.Restrict(records)
		primary := engine.Partition(visible, q.Time).Primary
		cards, err := engine.OwnerScorecards(ctx, engine.MarketContext(primary, q.Filters),
			engine.FilterUniverse(universe, q.Filters), cfg.Engine.Workers)
		if err != nil {
			fatalf("scorecards: %v", err)
		}
		if *format == "text" {
			err = report.WriteText(writer, formatter.ScorecardTable("Owner scorecards", cards))
		} else {
			err = writeJSON(writer, cards, *format)
		}
		if err != nil {
			fatalf("%v", err)
		}
		return
	}

	d := engine.Analyze(records, universe, q, engineOpts...)
	if err := render(writer, *format, d, records, q, formatter); err != nil {
		fatalf("%v", err)
	}
	if *outFile != "" {
		logger.Info("output written", zap.String("path", *outFile), zap.String("format", *format))
	}
}

// ============================================================================
// WIRING
// ============================================================================

func overridePaths(cfg *config.Config, file, universe, master, tables string) {
	if file != "" {
		cfg.Data.Source = config.SourceCSV
		cfg.Data.Path = file
	}
	if universe != "" {
		cfg.Data.Universe = universe
	}
	if master != "" {
		cfg.Data.Master = master
	}
	if tables != "" {
		cfg.Data.Tables = tables
	}
}

func buildNormalizer(cfg *config.Config, logger *zap.Logger) (*normalize.Normalizer, error) {
	opts := []normalize.Option{normalize.WithLogger(logger)}
	if cfg.Data.Tables != "" {
		tables, err := normalize.LoadTables(cfg.Data.Tables)
		if err != nil {
			return nil, err
		}
		opts = append(opts, normalize.WithTables(tables))
	}
	if cfg.Data.Master != "" {
		master, err := normalize.LoadProductMaster(cfg.Data.Master)
		if err != nil {
			return nil, err
		}
		logger.Info("product master loaded", zap.Int("brands", master.Len()))
		opts = append(opts, normalize.WithProductMaster(master))
	}
	return normalize.New(opts...), nil
}

func buildSource(ctx context.Context, cfg *config.Config) (dataset.Source, func(), error) {
	switch cfg.Data.Source {
	case config.SourcePostgres, config.SourceSQLite:
		driver, dsn := dataset.DriverPostgres, cfg.Data.DSN
		if cfg.Data.Source == config.SourceSQLite {
			driver = dataset.DriverSQLite
			if dsn == "" {
				dsn = cfg.Data.Path
			}
		}
		sqlSrc, err := dataset.OpenSQL(ctx, driver, dsn, cfg.Data.Query)
		if err != nil {
			return nil, nil, err
		}
		return sqlSrc, func() { _ = sqlSrc.Close() }, nil
	default:
		return dataset.CSVSource{Path: cfg.Data.Path, Delimiter: cfg.Data.Delim()}, func() {}, nil
	}
}

func buildLoader(src dataset.Source, cfg *config.Config, norm *normalize.Normalizer, logger *zap.Logger) (*dataset.Loader, func(), error) {
	closeCache := func() {}
	opts := []dataset.LoaderOption{dataset.WithNormalizer(norm), dataset.WithLogger(logger)}
	switch cfg.Cache.Backend {
	case config.CacheMemory:
		opts = append(opts, dataset.WithCache(cache.NewMemory(), "", cfg.Cache.TTL()))
	case config.CacheRedis:
		client, err := cache.Connect(cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		closeCache = func() { _ = client.Close() }
		opts = append(opts, dataset.WithCache(cache.NewRedis(client, cfg.Cache.Prefix), "", cfg.Cache.TTL()))
	}
	return dataset.NewLoader(src, opts...), closeCache, nil
}

func loadQuery(path string) (engine.Query, error) {
	var q engine.Query
	if path == "" {
		return q, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return q, fmt.Errorf("read query: %w", err)
	}
	if err := json.Unmarshal(data, &q); err != nil {
		return q, fmt.Errorf("parse query %s: %w", path, err)
	}
	return q, nil
}

func parseScope(owners string) engine.AccessScope {
	var scope engine.AccessScope
	for _, o := range strings.Split(owners, ",") {
		if o = strings.TrimSpace(o); o != "" {
			scope.AllowedOwners = append(scope.AllowedOwners, o)
		}
	}
	return scope
}

// ============================================================================
// OUTPUT
// ============================================================================

func render(w io.Writer, format string, d *engine.Dashboard, records []engine.ListingRecord, q engine.Query, f *report.Formatter) error {
	switch format {
	case "text":
		r := f.Dashboard(d)
		fmt.Fprintln(w, r.Title)
		return report.WriteText(w, r.Tables...)
	case "csv", "xlsx":
		visible := q.Scope.Restrict(records)
		filtered := engine.ApplyFilters(engine.Partition(visible, q.Time).Primary, q.Filters)
		if format == "csv" {
			return export.WriteCSV(w, filtered, ',')
		}
		return export.WriteXLSX(w, filtered, d.OwnerShareHeatmap, d.RegionHeatmap)
	default:
		return writeJSON(w, d, format)
	}
}

func writeJSON(w io.Writer, v any, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func writeDiscovery(w io.Writer, r *normalize.ColumnReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%d rows sampled\n\n", r.Rows)
	fmt.Fprintln(tw, "COLUMN\tFIELD\tKIND\tFILLED\tUNIQUE\tSAMPLES\tNOTE")
	for _, c := range r.Columns {
		field := c.Field
		if field == "" {
			field = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			c.Header, field, c.Kind, c.Filled, c.Unique, strings.Join(c.Samples, " | "), c.Note)
	}
	if len(r.Missing) > 0 {
		fmt.Fprintf(tw, "\nMissing fields: %s\n", strings.Join(r.Missing, ", "))
	}
	return tw.Flush()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
