// mtga-match-parser reconstructs revealed cards from MTG Arena match logs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramonehamilton/mtga-match-parser/internal/carddb"
	"github.com/ramonehamilton/mtga-match-parser/internal/charts"
	"github.com/ramonehamilton/mtga-match-parser/internal/config"
	"github.com/ramonehamilton/mtga-match-parser/internal/display"
	"github.com/ramonehamilton/mtga-match-parser/internal/logreader"
	"github.com/ramonehamilton/mtga-match-parser/internal/matchparser"
	"github.com/ramonehamilton/mtga-match-parser/internal/monitor"
	"github.com/ramonehamilton/mtga-match-parser/internal/storage"
)

var (
	logFilePath = flag.String("log-file-path", "", "Path to MTGA Player.log file (auto-detected if not specified)")
	cardDBDir   = flag.String("card-db-dir", "", "Directory holding Raw_CardDatabase_*.mtga (auto-detected if not specified)")
	debugMode   = flag.Bool("debug-mode", false, "Enable verbose debug logging")
	debugShort  = flag.Bool("d", false, "Enable debug logging (shorthand for -debug-mode)")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <command> [command flags]\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  list                List matches found in the log")
	fmt.Fprintln(os.Stderr, "  parse [-match id]   Parse one match and show revealed cards")
	fmt.Fprintln(os.Stderr, "  monitor             Watch the log and report reveals live")
	fmt.Fprintln(os.Stderr, "  export [-match id]  Export a match chart as HTML")
	fmt.Fprintln(os.Stderr, "  extract-db          Extract the card catalog from Arena's database")
	fmt.Fprintln(os.Stderr, "  archive <sub>       Inspect the match archive (list, show, delete)")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Without a command an interactive match picker is shown.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Flags override the config file
	if *logFilePath != "" {
		cfg.Log.FilePath = *logFilePath
	}
	if *cardDBDir != "" {
		cfg.Cards.DatabaseDir = *cardDBDir
	}
	if *debugMode || *debugShort {
		cfg.App.DebugMode = true
	}

	if !cfg.App.DebugMode {
		log.SetFlags(0)
	}

	command := flag.Arg(0)
	switch command {
	case "":
		err = runInteractive(cfg)
	case "list":
		err = runList(cfg)
	case "parse":
		err = runParse(cfg, flag.Args()[1:])
	case "monitor":
		err = runMonitor(cfg, flag.Args()[1:])
	case "export":
		err = runExport(cfg, flag.Args()[1:])
	case "extract-db":
		err = runExtractDB(cfg, flag.Args()[1:])
	case "archive":
		err = runArchive(cfg, flag.Args()[1:])
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// resolveLogPath picks the configured log path or the platform default.
func resolveLogPath(cfg *config.Config) (string, error) {
	if cfg.Log.FilePath != "" {
		return cfg.Log.FilePath, nil
	}
	return logreader.DefaultLogPath()
}

// loadCatalog loads the extracted card catalog, extracting it from the
// Arena installation on first use.
func loadCatalog(cfg *config.Config) (carddb.Catalog, error) {
	cachePath, err := cfg.CatalogCachePath()
	if err != nil {
		return nil, err
	}

	catalog, err := carddb.Load(cachePath)
	if err == nil {
		if cfg.App.DebugMode {
			log.Printf("Loaded %d cards from %s", len(catalog), cachePath)
		}
		return catalog, nil
	}

	catalog, err = extractCatalog(cfg)
	if err != nil {
		return nil, err
	}

	if saveErr := catalog.Save(cachePath); saveErr != nil {
		log.Printf("Warning: could not cache card catalog: %v", saveErr)
	}
	return catalog, nil
}

// extractCatalog pulls the catalog out of Arena's SQLite card database.
func extractCatalog(cfg *config.Config) (carddb.Catalog, error) {
	dir := cfg.Cards.DatabaseDir
	if dir == "" {
		var err error
		dir, err = logreader.DefaultCardDatabaseDir()
		if err != nil {
			return nil, fmt.Errorf("locate card database directory: %w", err)
		}
	}

	dbPath, err := carddb.FindDatabase(dir)
	if err != nil {
		return nil, err
	}

	log.Printf("Extracting card catalog from %s", dbPath)
	catalog, err := carddb.Extract(dbPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Extracted %d cards", len(catalog))

	return catalog, nil
}

// parseMatch runs the interpreter for one match id.
func parseMatch(catalog carddb.Catalog, logPath, matchID string) (*matchparser.Result, error) {
	parser, err := matchparser.New(logPath, matchID, catalog, nil)
	if err != nil {
		return nil, err
	}
	return parser.Parse()
}

// displayAndArchive shows a parse result and stores it when enabled.
func displayAndArchive(cfg *config.Config, catalog carddb.Catalog, result *matchparser.Result) error {
	display.NewMatchDisplayer(catalog, os.Stdout).DisplayResult(result)

	if !cfg.Archive.Enabled {
		return nil
	}

	archivePath, err := cfg.ArchivePath()
	if err != nil {
		return err
	}
	db, err := storage.Open(storage.DefaultConfig(archivePath))
	if err != nil {
		return fmt.Errorf("open match archive: %w", err)
	}
	defer db.Close()

	if err := db.SaveMatch(context.Background(), storage.RecordFromResult(result)); err != nil {
		return fmt.Errorf("archive match: %w", err)
	}
	if cfg.App.DebugMode {
		log.Printf("Archived match %s", result.MatchID)
	}
	return nil
}

// checkDetailedLogging prints enablement instructions when detailed logs
// are off. Returns true when parsing can proceed.
func checkDetailedLogging(logPath string) (bool, error) {
	enabled, err := logreader.DetailedLoggingEnabled(logPath)
	if err != nil {
		return false, err
	}
	if enabled {
		return true, nil
	}

	fmt.Println("============================================================")
	fmt.Println("DETAILED LOGGING NOT ENABLED")
	fmt.Println("============================================================")
	fmt.Println()
	fmt.Println("To use this parser, you must enable detailed logging in MTG Arena:")
	fmt.Println()
	fmt.Println("1. Launch MTG Arena")
	fmt.Println("2. Click the gear icon in the top right")
	fmt.Println("3. Go to 'View Account' (bottom of settings menu)")
	fmt.Println("4. Enable 'Detailed Logs (Plugin Support)'")
	fmt.Println("5. Restart MTG Arena")
	return false, nil
}

func runList(cfg *config.Config) error {
	logPath, err := resolveLogPath(cfg)
	if err != nil {
		return err
	}

	matches, err := logreader.ListMatches(logPath)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matches found in the log.")
		return nil
	}

	fmt.Printf("%-4s %-20s %-20s %-20s %s\n", "#", "Start Time", "End Time", "Opponent", "Match ID")
	for i, m := range matches {
		start := m.StartTime
		if start == "" {
			start = "Unknown"
		}
		end := m.EndTime
		if end == "" {
			end = "In Progress"
		}
		opponent := m.OpponentName
		if opponent == "" {
			opponent = "Unknown"
		}
		fmt.Printf("%-4d %-20s %-20s %-20s %s\n", i+1, start, end, opponent, m.MatchID)
	}
	return nil
}

func runParse(cfg *config.Config, args []string) error {
	parseFlags := flag.NewFlagSet("parse", flag.ExitOnError)
	matchID := parseFlags.String("match", "", "Match id to parse (defaults to the most recent match)")
	if err := parseFlags.Parse(args); err != nil {
		return err
	}

	logPath, err := resolveLogPath(cfg)
	if err != nil {
		return err
	}

	ok, err := checkDetailedLogging(logPath)
	if err != nil || !ok {
		return err
	}

	id := *matchID
	if id == "" {
		matches, err := logreader.ListMatches(logPath)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return errors.New("no matches found in the log")
		}
		id = matches[len(matches)-1].MatchID
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	result, err := parseMatch(catalog, logPath, id)
	if err != nil {
		return err
	}
	return displayAndArchive(cfg, catalog, result)
}

func runMonitor(cfg *config.Config, args []string) error {
	monitorFlags := flag.NewFlagSet("monitor", flag.ExitOnError)
	fromStart := monitorFlags.Bool("from-start", false, "Replay the existing log before waiting for new lines")
	if err := monitorFlags.Parse(args); err != nil {
		return err
	}

	logPath, err := resolveLogPath(cfg)
	if err != nil {
		return err
	}
	exists, err := logreader.LogExists(logPath)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("player log not found at %s", logPath)
	}

	// Monitoring works with basic logs too; the catalog only improves names
	catalog, err := loadCatalog(cfg)
	if err != nil {
		log.Printf("Warning: no card catalog available, reporting card ids only: %v", err)
		catalog = carddb.Catalog{}
	}

	interval, err := cfg.GetLogPollInterval()
	if err != nil {
		return err
	}

	m, err := monitor.New(monitor.Config{
		LogPath:   logPath,
		Catalog:   catalog,
		Out:       os.Stdout,
		Interval:  interval,
		FromStart: *fromStart,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Monitoring: %s\n", logPath)
	fmt.Println("Press Ctrl+C to stop")
	return m.Run(ctx)
}

func runExport(cfg *config.Config, args []string) error {
	exportFlags := flag.NewFlagSet("export", flag.ExitOnError)
	matchID := exportFlags.String("match", "", "Match id to export (defaults to the most recent match)")
	output := exportFlags.String("output", "", "Output HTML file (defaults to match_<id>.html)")
	openChart := exportFlags.Bool("open", false, "Open the chart in the default browser")
	if err := exportFlags.Parse(args); err != nil {
		return err
	}

	logPath, err := resolveLogPath(cfg)
	if err != nil {
		return err
	}

	ok, err := checkDetailedLogging(logPath)
	if err != nil || !ok {
		return err
	}

	id := *matchID
	if id == "" {
		matches, err := logreader.ListMatches(logPath)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return errors.New("no matches found in the log")
		}
		id = matches[len(matches)-1].MatchID
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	result, err := parseMatch(catalog, logPath, id)
	if err != nil {
		return err
	}

	outputPath := *output
	if outputPath == "" {
		outputPath = fmt.Sprintf("match_%.8s.html", id)
	}

	if err := charts.RenderMatchChart(result, catalog, charts.DefaultChartConfig(), outputPath); err != nil {
		return err
	}
	fmt.Printf("Chart written to %s\n", outputPath)

	if *openChart {
		if err := charts.OpenInBrowser(outputPath); err != nil {
			log.Printf("Warning: could not open browser: %v", err)
		}
	}
	return nil
}

func runExtractDB(cfg *config.Config, args []string) error {
	extractFlags := flag.NewFlagSet("extract-db", flag.ExitOnError)
	output := extractFlags.String("output", "", "Output JSON file (defaults to the catalog cache path)")
	if err := extractFlags.Parse(args); err != nil {
		return err
	}

	catalog, err := extractCatalog(cfg)
	if err != nil {
		return err
	}

	outputPath := *output
	if outputPath == "" {
		outputPath, err = cfg.CatalogCachePath()
		if err != nil {
			return err
		}
	}

	if err := catalog.Save(outputPath); err != nil {
		return err
	}
	fmt.Printf("Card catalog written to %s (%d cards)\n", outputPath, len(catalog))
	return nil
}

func runArchive(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("archive requires a subcommand: list, show, delete")
	}

	archivePath, err := cfg.ArchivePath()
	if err != nil {
		return err
	}
	db, err := storage.Open(storage.DefaultConfig(archivePath))
	if err != nil {
		return fmt.Errorf("open match archive: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	switch args[0] {
	case "list":
		records, err := db.ListMatches(ctx, 0)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("Archive is empty.")
			return nil
		}
		fmt.Printf("%-38s %-20s %-20s %s\n", "Match ID", "Opponent", "Parsed", "Revealed")
		for _, r := range records {
			revealed := 0
			for _, count := range r.OpponentCards {
				revealed += count
			}
			opponent := r.OpponentName
			if opponent == "" {
				opponent = "Unknown"
			}
			fmt.Printf("%-38s %-20s %-20s %d\n",
				r.MatchID, opponent, r.ParsedAt.Format(time.DateTime), revealed)
		}
		return nil

	case "show":
		if len(args) < 2 {
			return errors.New("archive show requires a match id")
		}
		record, err := db.GetMatch(ctx, args[1])
		if err != nil {
			return err
		}
		catalog, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		display.NewMatchDisplayer(catalog, os.Stdout).DisplayResult(recordToResult(record))
		return nil

	case "delete":
		if len(args) < 2 {
			return errors.New("archive delete requires a match id")
		}
		if err := db.DeleteMatch(ctx, args[1]); err != nil {
			return err
		}
		fmt.Printf("Deleted match %s from the archive\n", args[1])
		return nil

	default:
		return fmt.Errorf("unknown archive subcommand: %s", args[0])
	}
}

// recordToResult rebuilds a displayable result from an archived record.
func recordToResult(record *storage.MatchRecord) *matchparser.Result {
	return &matchparser.Result{
		MatchID:           record.MatchID,
		PlayerSeat:        record.PlayerSeat,
		OpponentSeat:      record.OpponentSeat,
		OpponentName:      record.OpponentName,
		PlayerCards:       record.PlayerCards,
		OpponentCards:     record.OpponentCards,
		PlayerDeck:        record.PlayerDeck,
		OpponentDeckSize:  record.OpponentDeckSize,
		PlayerCommander:   record.PlayerCommander,
		OpponentCommander: record.OpponentCommander,
	}
}
