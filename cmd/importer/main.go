package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/rvberkel/waarneemadmin/internal/config"
	"github.com/rvberkel/waarneemadmin/internal/domain/entity"
	"github.com/rvberkel/waarneemadmin/internal/importer"
	"github.com/rvberkel/waarneemadmin/internal/parse"
	"github.com/rvberkel/waarneemadmin/internal/pdftext"
	"github.com/rvberkel/waarneemadmin/internal/reconcile"
	"github.com/rvberkel/waarneemadmin/internal/report"
	"github.com/rvberkel/waarneemadmin/internal/repository"
	"github.com/rvberkel/waarneemadmin/internal/storage"
	"github.com/rvberkel/waarneemadmin/pkg/database"
	"github.com/rvberkel/waarneemadmin/pkg/utils"
)

func main() {
	var (
		configPath = flag.String("config", "configs/config.yaml", "path to configuration file")
		dir        = flag.String("dir", "", "import all PDF invoices in this directory")
		file       = flag.String("file", "", "import a single PDF invoice")
		writeXLSX  = flag.Bool("report", true, "write an Excel run report")
	)
	flag.Parse()

	if (*dir == "") == (*file == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -dir or -file is required")
		os.Exit(2)
	}

	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting waarneem invoice import",
		zap.String("dir", *dir),
		zap.String("file", *file))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	store := repository.NewStore(db, logger)
	archive := storage.NewArchive(cfg.Storage.ArchiveDir, logger)
	extractor := pdftext.NewExtractor(cfg.Import.MaxPages, logger)
	parser := parse.NewParser(parseOptions(cfg.Import), logger)
	engine := reconcile.NewEngine(logger)
	resolver := importer.NewClientResolver(store, cfg.Clients, logger)
	gate := importer.NewDeduplicationGate(store, logger)
	orch := importer.NewOrchestrator(extractor, store, archive, parser, engine, resolver, gate, logger)

	ctx := context.Background()

	var results []entity.ImportResult
	if *dir != "" {
		results, err = orch.ImportDirectory(ctx, *dir)
		if err != nil {
			logger.Fatal("Batch import aborted", zap.Error(err))
		}
	} else {
		results = []entity.ImportResult{orch.ImportFile(ctx, *file)}
	}

	printSummary(results)

	if *writeXLSX && len(results) > 0 {
		if err := os.MkdirAll(cfg.Storage.ReportDir, 0755); err != nil {
			logger.Error("Failed to create report directory", zap.Error(err))
			return
		}
		name := fmt.Sprintf("import_%s.xlsx", time.Now().Format("20060102_150405"))
		path := filepath.Join(cfg.Storage.ReportDir, name)
		if err := report.WriteRunReport(path, results, logger); err != nil {
			logger.Error("Failed to write run report", zap.Error(err))
		}
	}
}

func parseOptions(cfg config.ImportConfig) parse.Options {
	opts := parse.DefaultOptions()
	opts.WindowPastMonths = cfg.WindowPastMonths
	opts.WindowFutureMonths = cfg.WindowFutureMonths
	opts.HourlyRateMin = decimal.NewFromFloat(cfg.HourlyRateMin)
	opts.HourlyRateMax = decimal.NewFromFloat(cfg.HourlyRateMax)
	opts.StandbyRateMax = decimal.NewFromFloat(cfg.StandbyRateMax)
	opts.MaxDayHours = decimal.NewFromFloat(cfg.MaxDayHours)
	opts.MaxCommuteKm = decimal.NewFromFloat(cfg.MaxCommuteKm)
	return opts
}

func printSummary(results []entity.ImportResult) {
	succeeded, skipped, failed := 0, 0, 0
	for _, res := range results {
		switch {
		case res.Skipped:
			skipped++
		case res.Success:
			succeeded++
		default:
			failed++
		}
		status := "FAIL"
		switch {
		case res.Skipped:
			status = "SKIP"
		case res.Success:
			status = "OK"
		}
		fmt.Printf("%-4s  %-20s  %3d regels  € %10s  %s\n",
			status, res.InvoiceNumber, res.EntriesCreated,
			res.TotalAmount.StringFixed(2), res.Message)
	}
	fmt.Printf("\n%d geïmporteerd, %d overgeslagen, %d mislukt\n", succeeded, skipped, failed)
}
