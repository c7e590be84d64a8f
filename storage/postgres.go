package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"leilao_scraper/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// =============================================================================
// Scraps
// =============================================================================

const scrapColumns = `id, scraper_id, url, name, address, description, description_markdown,
	status, case_number, case_link, bid, appraisal,
	first_auction_date, first_auction_bid, second_auction_date, second_auction_bid,
	laudo_link, matricula_link, edital_link, laudo_file, matricula_file, edital_file,
	fetch_status,
	analise_tipo_direito, analise_tipo_direito_verificada,
	analise_tipo_imovel, analise_tipo_imovel_verificada,
	analise_hipoteca, analise_hipoteca_verificada,
	analise_alienacao_fiduciaria, analise_alienacao_fiduciaria_verificada,
	analise_debito_exequendo, analise_debito_exequendo_verificada,
	created_at, updated_at`

func scanScrap(row pgx.Row) (*models.Scrap, error) {
	var sc models.Scrap
	err := row.Scan(
		&sc.ID, &sc.ScraperID, &sc.URL, &sc.Name, &sc.Address, &sc.Description, &sc.DescriptionMarkdown,
		&sc.Status, &sc.CaseNumber, &sc.CaseLink, &sc.Bid, &sc.Appraisal,
		&sc.FirstAuctionDate, &sc.FirstAuctionBid, &sc.SecondAuctionDate, &sc.SecondAuctionBid,
		&sc.LaudoLink, &sc.MatriculaLink, &sc.EditalLink, &sc.LaudoFile, &sc.MatriculaFile, &sc.EditalFile,
		&sc.FetchStatus,
		&sc.TipoDireito, &sc.TipoDireitoVerificada,
		&sc.TipoImovel, &sc.TipoImovelVerificada,
		&sc.Hipoteca, &sc.HipotecaVerificada,
		&sc.AlienacaoFiduciaria, &sc.AlienacaoFiduciariaVerificada,
		&sc.DebitoExequendo, &sc.DebitoExequendoVerificada,
		&sc.CreatedAt, &sc.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *PostgresStore) GetScrap(ctx context.Context, id uuid.UUID) (*models.Scrap, error) {
	query := `SELECT ` + scrapColumns + ` FROM scraps WHERE id = $1`
	return scanScrap(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresStore) GetScrapByURL(ctx context.Context, scraperID, url string) (*models.Scrap, error) {
	query := `SELECT ` + scrapColumns + ` FROM scraps WHERE scraper_id = $1 AND url = $2`
	return scanScrap(s.pool.QueryRow(ctx, query, scraperID, url))
}

func (s *PostgresStore) InsertStub(ctx context.Context, scraperID, url string) (*models.Scrap, error) {
	query := `
		INSERT INTO scraps (id, scraper_id, url, status, fetch_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (scraper_id, url) DO NOTHING
		RETURNING ` + scrapColumns

	sc, err := scanScrap(s.pool.QueryRow(ctx, query,
		uuid.New(), scraperID, url, models.StatusUnknown, models.FetchStatusNotFetched))
	if err != nil {
		return nil, err
	}
	if sc == nil {
		// Lost the race; someone inserted this url between diff and insert.
		return s.GetScrapByURL(ctx, scraperID, url)
	}
	return sc, nil
}

func (s *PostgresStore) UpdateScrap(ctx context.Context, sc *models.Scrap) error {
	query := `
		UPDATE scraps SET
			name = $2, address = $3, description = $4, description_markdown = $5,
			status = $6, case_number = $7, case_link = $8, bid = $9, appraisal = $10,
			first_auction_date = $11, first_auction_bid = $12,
			second_auction_date = $13, second_auction_bid = $14,
			laudo_link = $15, matricula_link = $16, edital_link = $17,
			laudo_file = $18, matricula_file = $19, edital_file = $20,
			fetch_status = $21,
			analise_tipo_direito = $22, analise_tipo_imovel = $23,
			analise_hipoteca = $24, analise_alienacao_fiduciaria = $25,
			analise_debito_exequendo = $26,
			updated_at = NOW()
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		sc.ID, sc.Name, sc.Address, sc.Description, sc.DescriptionMarkdown,
		sc.Status, sc.CaseNumber, sc.CaseLink, sc.Bid, sc.Appraisal,
		sc.FirstAuctionDate, sc.FirstAuctionBid,
		sc.SecondAuctionDate, sc.SecondAuctionBid,
		sc.LaudoLink, sc.MatriculaLink, sc.EditalLink,
		sc.LaudoFile, sc.MatriculaFile, sc.EditalFile,
		sc.FetchStatus,
		sc.TipoDireito, sc.TipoImovel,
		sc.Hipoteca, sc.AlienacaoFiduciaria,
		sc.DebitoExequendo,
	)
	return err
}

func (s *PostgresStore) SetFetchStatus(ctx context.Context, id uuid.UUID, status models.FetchStatus) error {
	query := `UPDATE scraps SET fetch_status = $2, updated_at = NOW() WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, status)
	return err
}

func (s *PostgresStore) ExistingURLs(ctx context.Context, scraperID string, urls []string) (map[string]bool, error) {
	query := `SELECT url FROM scraps WHERE scraper_id = $1 AND url = ANY($2)`

	rows, err := s.pool.Query(ctx, query, scraperID, urls)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[string]bool, len(urls))
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		existing[u] = true
	}
	return existing, rows.Err()
}

func (s *PostgresStore) listScraps(ctx context.Context, query string, args ...interface{}) ([]*models.Scrap, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scraps []*models.Scrap
	for rows.Next() {
		sc, err := scanScrap(rows)
		if err != nil {
			return nil, err
		}
		scraps = append(scraps, sc)
	}
	return scraps, rows.Err()
}

// ListPending returns the scraps still worth fetching: never fetched, or
// failed last time.
func (s *PostgresStore) ListPending(ctx context.Context, scraperID string) ([]*models.Scrap, error) {
	query := `SELECT ` + scrapColumns + ` FROM scraps
		WHERE scraper_id = $1 AND fetch_status IN ($2, $3)
		ORDER BY created_at`
	return s.listScraps(ctx, query, scraperID, models.FetchStatusNotFetched, models.FetchStatusFailed)
}

// ListScraps returns every scrap of a site, or of all sites when scraperID
// is empty.
func (s *PostgresStore) ListScraps(ctx context.Context, scraperID string) ([]*models.Scrap, error) {
	if scraperID == "" {
		return s.listScraps(ctx, `SELECT `+scrapColumns+` FROM scraps ORDER BY created_at`)
	}
	query := `SELECT ` + scrapColumns + ` FROM scraps WHERE scraper_id = $1 ORDER BY created_at`
	return s.listScraps(ctx, query, scraperID)
}

// =============================================================================
// Images
// =============================================================================

func (s *PostgresStore) GetImages(ctx context.Context, scrapID uuid.UUID) ([]models.ScrapImage, error) {
	query := `SELECT id, scrap_id, url, display_order FROM scrap_images
		WHERE scrap_id = $1 ORDER BY display_order`

	rows, err := s.pool.Query(ctx, query, scrapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.ScrapImage
	for rows.Next() {
		var img models.ScrapImage
		if err := rows.Scan(&img.ID, &img.ScrapID, &img.URL, &img.Order); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ReplaceImages swaps the whole image set atomically. Readers never observe
// a half-replaced gallery.
func (s *PostgresStore) ReplaceImages(ctx context.Context, scrapID uuid.UUID, urls []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM scrap_images WHERE scrap_id = $1`, scrapID); err != nil {
		return err
	}
	for i, u := range urls {
		if _, err := tx.Exec(ctx,
			`INSERT INTO scrap_images (scrap_id, url, display_order) VALUES ($1, $2, $3)`,
			scrapID, u, i); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// =============================================================================
// Analyses
// =============================================================================

func (s *PostgresStore) CountAnalyses(ctx context.Context, scrapID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM analyses WHERE scrap_id = $1`, scrapID).Scan(&n)
	return n, err
}

func (s *PostgresStore) InsertAnalysis(ctx context.Context, a *models.Analysis) error {
	query := `
		INSERT INTO analyses (scrap_id, model, content, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`

	return s.pool.QueryRow(ctx, query, a.ScrapID, a.Model, a.Content).Scan(&a.ID, &a.CreatedAt)
}

// ListAnalyses returns a scrap's analyses newest first.
func (s *PostgresStore) ListAnalyses(ctx context.Context, scrapID uuid.UUID) ([]models.Analysis, error) {
	query := `
		SELECT id, scrap_id, model, content, created_at
		FROM analyses
		WHERE scrap_id = $1
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, scrapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Analysis
	for rows.Next() {
		var a models.Analysis
		if err := rows.Scan(&a.ID, &a.ScrapID, &a.Model, &a.Content, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// Profits
// =============================================================================

func (s *PostgresStore) GetProfit(ctx context.Context, scrapID uuid.UUID) (*models.Profit, error) {
	query := `
		SELECT id, scrap_id, auctioneer_fee_pct, itbi_pct, registry_pct, lawyer_pct,
			renovation_pct, broker_fee_pct, capital_gains_pct,
			total_cost, gross_profit, net_profit, profit_pct, updated_at
		FROM profits WHERE scrap_id = $1`

	var p models.Profit
	err := s.pool.QueryRow(ctx, query, scrapID).Scan(
		&p.ID, &p.ScrapID, &p.AuctioneerFeePct, &p.ITBIPct, &p.RegistryPct, &p.LawyerPct,
		&p.RenovationPct, &p.BrokerFeePct, &p.CapitalGainsPct,
		&p.TotalCost, &p.GrossProfit, &p.NetProfit, &p.ProfitPct, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) UpsertProfit(ctx context.Context, p *models.Profit) error {
	query := `
		INSERT INTO profits (
			scrap_id, auctioneer_fee_pct, itbi_pct, registry_pct, lawyer_pct,
			renovation_pct, broker_fee_pct, capital_gains_pct,
			total_cost, gross_profit, net_profit, profit_pct, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (scrap_id) DO UPDATE SET
			total_cost = EXCLUDED.total_cost,
			gross_profit = EXCLUDED.gross_profit,
			net_profit = EXCLUDED.net_profit,
			profit_pct = EXCLUDED.profit_pct,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		p.ScrapID, p.AuctioneerFeePct, p.ITBIPct, p.RegistryPct, p.LawyerPct,
		p.RenovationPct, p.BrokerFeePct, p.CapitalGainsPct,
		p.TotalCost, p.GrossProfit, p.NetProfit, p.ProfitPct, p.UpdatedAt,
	).Scan(&p.ID)
}

// =============================================================================
// Validated Addresses
// =============================================================================

func (s *PostgresStore) GetValidatedAddress(ctx context.Context, raw string) (*models.ValidatedAddress, error) {
	query := `
		SELECT id, raw_address, status, formatted_address, lat, lng, created_at
		FROM validated_addresses WHERE raw_address = $1`

	var v models.ValidatedAddress
	err := s.pool.QueryRow(ctx, query, raw).Scan(
		&v.ID, &v.RawAddress, &v.Status, &v.FormattedAddress, &v.Lat, &v.Lng, &v.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *PostgresStore) InsertValidatedAddress(ctx context.Context, v *models.ValidatedAddress) error {
	query := `
		INSERT INTO validated_addresses (raw_address, status, formatted_address, lat, lng, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (raw_address) DO NOTHING
		RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query,
		v.RawAddress, v.Status, v.FormattedAddress, v.Lat, v.Lng,
	).Scan(&v.ID, &v.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil // conflict, already cached
	}
	return err
}

// =============================================================================
// Backfill Queries
// =============================================================================

// ListUnclassified returns scraps with a description but no legal
// classification yet, for the backfill worker.
func (s *PostgresStore) ListUnclassified(ctx context.Context, limit int) ([]*models.Scrap, error) {
	query := `SELECT ` + scrapColumns + ` FROM scraps
		WHERE description IS NOT NULL
		  AND analise_tipo_direito IS NULL
		  AND NOT analise_tipo_direito_verificada
		ORDER BY created_at
		LIMIT $1`
	return s.listScraps(ctx, query, limit)
}
