package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"leilao_scraper/browser"
	"leilao_scraper/models"
	"leilao_scraper/scraper"
)

// OpsStore records run history in the operational store. Implemented by
// storage.SQLiteStore; nil-safe wrappers below let the CLI run without one.
type OpsStore interface {
	CreateRun(run *models.ScrapeRun) (int64, error)
	UpdateRun(run *models.ScrapeRun) error
	Log(runID *int64, level models.LogLevel, message, scraperID string) error
}

// Runner executes site cycles end to end: browser lifecycle, discovery,
// fetching and run bookkeeping. One Runner serves both the CLI and the
// daemon.
type Runner struct {
	svc         *Service
	registry    *scraper.Registry
	ops         OpsStore
	browserOpts browser.Options
}

func NewRunner(svc *Service, registry *scraper.Registry, ops OpsStore, browserOpts browser.Options) *Runner {
	return &Runner{svc: svc, registry: registry, ops: ops, browserOpts: browserOpts}
}

// RunSites runs a full cycle for the given scraper ids, sharing one browser.
// Empty ids means every registered site. A site failing is logged and the
// cycle moves on; only a browser launch failure is fatal.
func (r *Runner) RunSites(ctx context.Context, ids []string, opts ScrapeOptions) error {
	if len(ids) == 0 {
		ids = r.registry.IDs()
	}

	b, err := browser.Launch(r.browserOpts)
	if err != nil {
		return fmt.Errorf("run sites: %w", err)
	}
	defer b.Close()

	var failed int
	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := r.runSite(ctx, b, id, opts); err != nil {
			log.Printf("Error: site %s: %v", id, err)
			failed++
		}
	}
	if failed == len(ids) && failed > 0 {
		return fmt.Errorf("run sites: all %d sites failed", failed)
	}
	return nil
}

// RunAll is RunSites over every registered scraper.
func (r *Runner) RunAll(ctx context.Context) error {
	return r.RunSites(ctx, nil, ScrapeOptions{})
}

// RunSite runs one site's cycle with its own browser.
func (r *Runner) RunSite(ctx context.Context, id string) error {
	return r.RunSites(ctx, []string{id}, ScrapeOptions{})
}

func (r *Runner) runSite(ctx context.Context, b *browser.Browser, id string, opts ScrapeOptions) error {
	sc, err := r.registry.Get(id)
	if err != nil {
		return err
	}

	run := &models.ScrapeRun{
		ScraperID: id,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	run.ID = r.createRun(run)
	r.log(run, models.LogLevelInfo, "cycle started")

	result, err := r.svc.ScrapeSite(ctx, b, sc, opts)
	now := time.Now()
	run.FinishedAt = &now

	if err != nil {
		run.Status = models.RunStatusFailed
		r.log(run, models.LogLevelError, err.Error())
		r.updateRun(run)
		return err
	}

	run.Status = models.RunStatusCompleted
	run.URLsFound = result.Refresh.URLsFound
	run.ScrapsNew = result.Refresh.New
	run.ScrapsFetched = result.Fetched
	run.ScrapsFailed = result.Failed
	r.log(run, models.LogLevelInfo, fmt.Sprintf(
		"cycle completed: %d urls, %d new, %d fetched, %d failed",
		run.URLsFound, run.ScrapsNew, run.ScrapsFetched, run.ScrapsFailed))
	r.updateRun(run)
	return nil
}

func (r *Runner) createRun(run *models.ScrapeRun) int64 {
	if r.ops == nil {
		return 0
	}
	id, err := r.ops.CreateRun(run)
	if err != nil {
		log.Printf("Error: record run for %s: %v", run.ScraperID, err)
		return 0
	}
	return id
}

func (r *Runner) updateRun(run *models.ScrapeRun) {
	if r.ops == nil || run.ID == 0 {
		return
	}
	if err := r.ops.UpdateRun(run); err != nil {
		log.Printf("Error: update run %d: %v", run.ID, err)
	}
}

func (r *Runner) log(run *models.ScrapeRun, level models.LogLevel, msg string) {
	if r.ops == nil || run.ID == 0 {
		return
	}
	runID := run.ID
	if err := r.ops.Log(&runID, level, msg, run.ScraperID); err != nil {
		log.Printf("Error: record run log: %v", err)
	}
}

// FixFetchStatuses exposes the maintenance routine to the scheduler.
func (r *Runner) FixFetchStatuses(ctx context.Context) (int, error) {
	return r.svc.FixFetchStatuses(ctx, "")
}
