package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"leilao_scraper/ai"
	"leilao_scraper/browser"
	"leilao_scraper/config"
	"leilao_scraper/geocode"
	"leilao_scraper/logging"
	"leilao_scraper/scheduler"
	"leilao_scraper/scraper"
	"leilao_scraper/services"
	"leilao_scraper/storage"
	"leilao_scraper/workers"
)

const usage = `Usage: leilao_scraper <command> [options]

Commands:
  fetch [-only-refresh] [-all] [scraper...]   discover and fetch listings
                                              (all scrapers when none given)
  list                                        print registered scrapers
  fix-status                                  recompute fetch statuses
  backfill                                    classify scraps missing legal analysis
  daemon                                      run on a schedule with a command queue
`

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	logFile, err := logging.Setup("scraper.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	registry := scraper.NewRegistry(cfg)

	if command == "list" {
		for _, id := range registry.IDs() {
			fmt.Println(id)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer store.Close()

	var uploader *storage.S3Uploader
	if cfg.S3.Bucket != "" {
		uploader, err = storage.NewS3Uploader(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("Failed to set up S3: %v", err)
		}
	}
	files, err := storage.NewFileStore(cfg.FilesDir, uploader)
	if err != nil {
		log.Fatalf("Failed to set up file store: %v", err)
	}

	var aiClient *ai.Client
	var aiIface services.AI
	if cfg.Anthropic.APIKey != "" {
		aiClient = ai.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
		aiIface = aiClient
	} else {
		log.Println("No ANTHROPIC_API_KEY: markdown, classification and analysis disabled")
	}

	var geoIface services.Geocoder
	if cfg.Geocoding.APIKey != "" {
		geoIface = geocode.NewClient(cfg.Geocoding.APIKey)
	} else {
		log.Println("No GOOGLE_MAPS_API_KEY: address validation disabled")
	}

	svc := services.New(store, files, aiIface, geoIface, registry)

	browserOpts := browser.Options{Headless: cfg.Headless}
	if cfg.Warmup {
		for _, sc := range cfg.Sites {
			if sc.BaseURL != "" && !sc.Disabled {
				browserOpts.Warmup = append(browserOpts.Warmup, sc.BaseURL)
			}
		}
	}

	switch command {
	case "fetch":
		runFetch(ctx, svc, registry, browserOpts, os.Args[2:])
	case "fix-status":
		n, err := svc.FixFetchStatuses(ctx, "")
		if err != nil {
			log.Fatalf("Fix statuses failed: %v", err)
		}
		log.Printf("Fixed %d fetch statuses", n)
	case "backfill":
		if aiClient == nil {
			log.Fatal("Backfill needs ANTHROPIC_API_KEY")
		}
		n, err := workers.BackfillClassifications(ctx, store, aiClient)
		if err != nil {
			log.Fatalf("Backfill failed: %v", err)
		}
		log.Printf("Backfill classified %d scraps", n)
	case "daemon":
		runDaemon(ctx, cfg, svc, registry, browserOpts, store, aiClient)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runFetch(ctx context.Context, svc *services.Service, registry *scraper.Registry, browserOpts browser.Options, args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	onlyRefresh := fs.Bool("only-refresh", false, "discover new listings without fetching them")
	all := fs.Bool("all", false, "re-fetch every scrap, not just pending ones")
	fs.Parse(args)

	ids := fs.Args()
	for _, id := range ids {
		if _, err := registry.Get(id); err != nil {
			log.Fatalf("%v (known: %v)", err, registry.IDs())
		}
	}

	runner := services.NewRunner(svc, registry, nil, browserOpts)
	opts := services.ScrapeOptions{OnlyRefresh: *onlyRefresh, All: *all}
	if err := runner.RunSites(ctx, ids, opts); err != nil {
		log.Fatalf("Fetch failed: %v", err)
	}
}

func runDaemon(ctx context.Context, cfg *config.Config, svc *services.Service, registry *scraper.Registry, browserOpts browser.Options, store *storage.PostgresStore, aiClient *ai.Client) {
	ops, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer ops.Close()

	runner := services.NewRunner(svc, registry, ops, browserOpts)

	var backfill func(context.Context) (int, error)
	if aiClient != nil {
		backfill = func(ctx context.Context) (int, error) {
			return workers.BackfillClassifications(ctx, store, aiClient)
		}
	}

	sched := scheduler.New(cfg.Scheduler, runner, ops, backfill)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Println("Daemon running. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Println("Shutting down...")
	sched.Stop()
}
