package models

import "time"

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ScrapeRun records one discovery+fetch cycle for one scraper.
type ScrapeRun struct {
	ID            int64      `json:"id" db:"id"`
	ScraperID     string     `json:"scraper_id" db:"scraper_id"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at" db:"finished_at"`
	Status        string     `json:"status" db:"status"`
	URLsFound     int        `json:"urls_found" db:"urls_found"`
	ScrapsNew     int        `json:"scraps_new" db:"scraps_new"`
	ScrapsFetched int        `json:"scraps_fetched" db:"scraps_fetched"`
	ScrapsFailed  int        `json:"scraps_failed" db:"scraps_failed"`
}

// LogLevel for scrape run logs.
type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ScrapeLog is one log line attached to a run, kept in the operational store
// so past cycles can be inspected without grepping the daemon log.
type ScrapeLog struct {
	ID        int64     `json:"id" db:"id"`
	RunID     *int64    `json:"run_id" db:"run_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Level     LogLevel  `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
	ScraperID string    `json:"scraper_id" db:"scraper_id"`
}

// Command kinds accepted through the operational store.
const (
	CmdScrapeNow   = "scrape_now"
	CmdScrapeSite  = "scrape_site"
	CmdPause       = "pause"
	CmdResume      = "resume"
	CmdRunBackfill = "run_backfill"
	CmdFixStatus   = "fix_status"
)

// Command is an operator instruction queued by external tooling and polled
// by the daemon.
type Command struct {
	ID          int64      `json:"id" db:"id"`
	Command     string     `json:"command" db:"command"`
	Params      string     `json:"params" db:"params"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time `json:"processed_at" db:"processed_at"`
}
