package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"leilao_scraper/config"
	"leilao_scraper/models"
	"leilao_scraper/services"
	"leilao_scraper/storage"
)

const commandPollInterval = 2 * time.Second

// Scheduler drives the daemon: periodic full cycles plus a command queue
// polled from the operational store so external tooling can steer the
// scraper without restarting it.
type Scheduler struct {
	cfg    config.SchedulerConfig
	runner *services.Runner
	store  *storage.SQLiteStore

	// backfill is optional; nil when no AI client is configured.
	backfill func(ctx context.Context) (int, error)

	cron   *cron.Cron
	ticker *time.Ticker
	stopCh chan struct{}
	paused atomic.Bool
}

func New(cfg config.SchedulerConfig, runner *services.Runner, store *storage.SQLiteStore, backfill func(ctx context.Context) (int, error)) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		runner:   runner,
		store:    store,
		backfill: backfill,
		cron:     cron.New(),
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollCommands(ctx)

	if s.cfg.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Cron)
		_, err := s.cron.AddFunc(s.cfg.Cron, func() { s.scheduledRun(ctx) })
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Interval > 0 {
		log.Printf("Starting scheduler with interval: %s", s.cfg.Interval)
		s.ticker = time.NewTicker(s.cfg.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.scheduledRun(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Println("No schedule configured, daemon will only respond to commands")
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

func (s *Scheduler) scheduledRun(ctx context.Context) {
	if s.paused.Load() {
		log.Println("Scheduled run skipped: paused")
		return
	}
	if err := s.runner.RunAll(ctx); err != nil {
		log.Printf("Scheduled run error: %v", err)
	}
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(commandPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cmds, err := s.store.GetPendingCommands()
			if err != nil {
				log.Printf("Error getting commands: %v", err)
				continue
			}

			for _, cmd := range cmds {
				log.Printf("Processing command: %s", cmd.Command)
				if err := s.handleCommand(ctx, &cmd); err != nil {
					log.Printf("Command error: %v", err)
				}
				if err := s.store.MarkCommandProcessed(cmd.ID); err != nil {
					log.Printf("Error marking command processed: %v", err)
				}
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

type commandParams struct {
	ScraperID string `json:"scraper_id"`
}

func (s *Scheduler) handleCommand(ctx context.Context, cmd *models.Command) error {
	var params commandParams
	if cmd.Params != "" && cmd.Params != "null" {
		if err := json.Unmarshal([]byte(cmd.Params), &params); err != nil {
			return fmt.Errorf("parse params: %w", err)
		}
	}

	switch cmd.Command {
	case models.CmdScrapeNow:
		return s.runner.RunAll(ctx)
	case models.CmdScrapeSite:
		if params.ScraperID == "" {
			return fmt.Errorf("scrape_site needs a scraper_id")
		}
		return s.runner.RunSite(ctx, params.ScraperID)
	case models.CmdPause:
		s.paused.Store(true)
		log.Println("Scheduled runs paused")
		return nil
	case models.CmdResume:
		s.paused.Store(false)
		log.Println("Scheduled runs resumed")
		return nil
	case models.CmdRunBackfill:
		if s.backfill == nil {
			return fmt.Errorf("backfill unavailable: no AI client configured")
		}
		n, err := s.backfill(ctx)
		if err != nil {
			return err
		}
		log.Printf("Backfill classified %d scraps", n)
		return nil
	case models.CmdFixStatus:
		n, err := s.runner.FixFetchStatuses(ctx)
		if err != nil {
			return err
		}
		log.Printf("Fixed %d fetch statuses", n)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd.Command)
	}
}
