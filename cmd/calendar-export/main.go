package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/seminary-calendar/internal/dto"
	"github.com/noah-isme/seminary-calendar/internal/models"
	"github.com/noah-isme/seminary-calendar/internal/repository"
	"github.com/noah-isme/seminary-calendar/internal/service"
	"github.com/noah-isme/seminary-calendar/pkg/config"
	"github.com/noah-isme/seminary-calendar/pkg/export"
	"github.com/noah-isme/seminary-calendar/pkg/logger"
	"github.com/noah-isme/seminary-calendar/pkg/storage"
)

type options struct {
	format   string
	dir      string
	base     string
	retain   time.Duration
	filters  map[string]*string
	featured bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path, err := run(ctx, cfg, logr, os.Args[1:], os.Stderr)
	if err != nil {
		logr.Error("Export failed", zap.Error(err))
		_ = logr.Sync()
		stop()
		os.Exit(1)
	}
	fmt.Println(path)
}

func parseOptions(cfg *config.Config, args []string, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet("calendar-export", flag.ContinueOnError)
	fs.SetOutput(output)

	opts := &options{filters: map[string]*string{}}
	fs.StringVar(&opts.format, "format", "csv", "Export format: csv, excel, ics or pdf")
	fs.StringVar(&opts.dir, "out", cfg.Export.Dir, "Directory that receives the export")
	fs.StringVar(&opts.base, "name", cfg.Export.FilenameBase, "Base file name, the date and extension are appended")
	fs.DurationVar(&opts.retain, "retain", 0, "Delete exports in the directory older than this (0 keeps everything)")
	fs.BoolVar(&opts.featured, "featured", false, "Only featured events")
	for _, key := range []string{
		models.FilterAcademicYear, models.FilterCategory, models.FilterEventType, models.FilterPriority,
		models.FilterTimeFilter, models.FilterSearch, models.FilterStartDate, models.FilterEndDate,
	} {
		opts.filters[key] = fs.String(key, "", "Filter events by "+key)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// filterValues keeps only flags that were given so the backend sees the same
// query a browser session would send.
func (o *options) filterValues() map[string][]string {
	values := map[string][]string{}
	for key, value := range o.filters {
		if value != nil && *value != "" {
			values[key] = []string{*value}
		}
	}
	if o.featured {
		values[models.FilterFeatured] = []string{"true"}
	}
	return values
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger, args []string, output io.Writer) (string, error) {
	opts, err := parseOptions(cfg, args, output)
	if err != nil {
		return "", err
	}

	store, err := storage.NewLocalStorage(opts.dir)
	if err != nil {
		return "", err
	}
	if opts.retain > 0 {
		removed, err := store.CleanupOlderThan(opts.retain)
		if err != nil {
			logr.Warn("export cleanup failed", zap.Error(err))
		} else if len(removed) > 0 {
			logr.Info("removed old exports", zap.Strings("files", removed))
		}
	}

	backend := repository.NewCalendarRepository(cfg.Backend.BaseURL, cfg.Backend.Timeout, nil, nil, logr)
	exportCfg := service.ExportConfig{
		FilenameBase:       opts.base,
		UIDDomain:          cfg.Export.UIDDomain,
		ProductID:          cfg.Export.ProductID,
		AllDayEndExclusive: cfg.Export.AllDayEndExclusive,
		PageSize:           cfg.Export.PageSize,
		MaxPages:           cfg.Export.MaxPages,
		Location:           cfg.Calendar.Location(),
	}
	svc := service.NewExportService(backend, nil, nil, exportCfg, logr, nil)

	result, err := svc.Export(ctx, dto.ExportRequest{
		Format:  opts.format,
		Filters: service.FiltersFromQuery(opts.filterValues()),
	}, export.NewFileSink(store))
	if err != nil {
		return "", err
	}
	logr.Info("export written",
		zap.String("path", result.Location),
		zap.String("format", string(result.Format)),
		zap.Int("events", result.Events),
	)
	return result.Location, nil
}
