package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leilao_scraper/models"
	"leilao_scraper/scraper"
)

// Store is what the pipeline needs from the listings database. The pgx
// implementation lives in storage; tests use an in-memory fake.
type Store interface {
	GetScrap(ctx context.Context, id uuid.UUID) (*models.Scrap, error)
	UpdateScrap(ctx context.Context, s *models.Scrap) error
	SetFetchStatus(ctx context.Context, id uuid.UUID, status models.FetchStatus) error

	// Discovery.
	ExistingURLs(ctx context.Context, scraperID string, urls []string) (map[string]bool, error)
	InsertStub(ctx context.Context, scraperID, url string) (*models.Scrap, error)
	ListPending(ctx context.Context, scraperID string) ([]*models.Scrap, error)
	ListScraps(ctx context.Context, scraperID string) ([]*models.Scrap, error)

	// Derived state.
	GetImages(ctx context.Context, scrapID uuid.UUID) ([]models.ScrapImage, error)
	ReplaceImages(ctx context.Context, scrapID uuid.UUID, urls []string) error
	CountAnalyses(ctx context.Context, scrapID uuid.UUID) (int, error)
	InsertAnalysis(ctx context.Context, a *models.Analysis) error
	GetProfit(ctx context.Context, scrapID uuid.UUID) (*models.Profit, error)
	UpsertProfit(ctx context.Context, p *models.Profit) error
	GetValidatedAddress(ctx context.Context, raw string) (*models.ValidatedAddress, error)
	InsertValidatedAddress(ctx context.Context, v *models.ValidatedAddress) error
}

// AI is the language-model surface the derived-state updaters use.
type AI interface {
	FormatMarkdown(ctx context.Context, description string) (string, error)
	ClassifyLegal(ctx context.Context, description string) (*models.LegalClassification, error)
	Analyze(ctx context.Context, s *models.Scrap) (*models.Analysis, error)
}

// Geocoder validates a raw address string. Implementations return a record
// with status not_found rather than an error when the address doesn't match;
// errors are reserved for transport and quota failures.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*models.ValidatedAddress, error)
}

// FileStore persists downloaded documents and reports whether one is already
// present. Write returns the stored location recorded on the scrap.
type FileStore interface {
	Exists(name string) bool
	Write(ctx context.Context, name string, data []byte) (string, error)
}

// Service wires the pipeline's collaborators together. All blocking work
// takes the caller's context.
type Service struct {
	store    Store
	files    FileStore
	ai       AI
	geo      Geocoder
	registry *scraper.Registry

	now func() time.Time
}

// New builds a Service. ai and geo may be nil; the derived-state updaters
// that need them turn into no-ops.
func New(store Store, files FileStore, ai AI, geo Geocoder, registry *scraper.Registry) *Service {
	return &Service{
		store:    store,
		files:    files,
		ai:       ai,
		geo:      geo,
		registry: registry,
		now:      time.Now,
	}
}
