package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"leilao_scraper/models"
)

// SQLiteStore is the operational side store: run history, run logs and the
// command queue the daemon polls. Listing data never lives here.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scrape_runs (
		id INTEGER PRIMARY KEY,
		scraper_id TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		urls_found INTEGER DEFAULT 0,
		scraps_new INTEGER DEFAULT 0,
		scraps_fetched INTEGER DEFAULT 0,
		scraps_failed INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS scrape_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		scraper_id TEXT
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		params TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_runs_status ON scrape_runs(status, started_at);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON scrape_logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.ScrapeRun) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO scrape_runs (scraper_id, started_at, status, urls_found, scraps_new, scraps_fetched, scraps_failed)
		VALUES (?, ?, ?, 0, 0, 0, 0)`,
		run.ScraperID, run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(run *models.ScrapeRun) error {
	_, err := s.db.Exec(`
		UPDATE scrape_runs SET finished_at = ?, status = ?, urls_found = ?,
			scraps_new = ?, scraps_fetched = ?, scraps_failed = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.URLsFound,
		run.ScrapsNew, run.ScrapsFetched, run.ScrapsFailed, run.ID)
	return err
}

func (s *SQLiteStore) GetRecentRuns(limit int) ([]models.ScrapeRun, error) {
	rows, err := s.db.Query(`
		SELECT id, scraper_id, started_at, finished_at, status,
			urls_found, scraps_new, scraps_fetched, scraps_failed
		FROM scrape_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ScrapeRun
	for rows.Next() {
		var r models.ScrapeRun
		if err := rows.Scan(&r.ID, &r.ScraperID, &r.StartedAt, &r.FinishedAt, &r.Status,
			&r.URLsFound, &r.ScrapsNew, &r.ScrapsFetched, &r.ScrapsFailed); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, scraperID string) error {
	_, err := s.db.Exec(`
		INSERT INTO scrape_logs (run_id, timestamp, level, message, scraper_id)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, scraperID)
	return err
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, params, created_at, processed_at
		FROM commands WHERE processed_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		var params sql.NullString
		if err := rows.Scan(&cmd.ID, &cmd.Command, &params, &cmd.CreatedAt, &cmd.ProcessedAt); err != nil {
			return nil, err
		}
		cmd.Params = params.String
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) EnqueueCommand(command, params string) error {
	_, err := s.db.Exec(`INSERT INTO commands (command, params) VALUES (?, ?)`, command, params)
	return err
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}
