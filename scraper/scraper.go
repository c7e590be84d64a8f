package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leilao_scraper/browser"
	"leilao_scraper/models"
)

// defaultMaxSearchPages bounds pagination when a site config doesn't: the
// "no more results" sentinel text has changed under us before, and an
// unbounded crawl is worse than a truncated one.
const defaultMaxSearchPages = 50

// Fields holds one extractor per business field. A nil extractor means the
// site never exposes that field; every non-nil extractor succeeds or fails
// independently of the others at runtime.
type Fields struct {
	Name        Extractor[string]
	Address     Extractor[string]
	Description Extractor[string]
	Status      Extractor[models.AuctionStatus]
	CaseNumber  Extractor[string]
	CaseLink    Extractor[string]

	Bid               Extractor[float64]
	Appraisal         Extractor[float64]
	FirstAuctionDate  Extractor[time.Time]
	FirstAuctionBid   Extractor[float64]
	SecondAuctionDate Extractor[time.Time]
	SecondAuctionBid  Extractor[float64]

	LaudoLink     Extractor[string]
	MatriculaLink Extractor[string]
	EditalLink    Extractor[string]
	Images        Extractor[[]string]
}

// Scraper is the capability record for one auction site. This is the one
// interface every new site integration implements; orchestration code never
// changes for a new site.
type Scraper struct {
	ID string

	// Search enumerates listing URLs, deduplicated, with bounded pagination.
	Search func(ctx context.Context, pg *browser.Page) ([]string, error)

	// Login and WaitUntilLoaded are best-effort hooks; the pipeline logs
	// their failures and proceeds.
	Login           func(ctx context.Context, pg *browser.Page) error
	WaitUntilLoaded func(ctx context.Context, pg *browser.Page) error

	// Fetch retrieves document bytes. Nil means plain HTTP; sites that gate
	// downloads by referrer or session cookie set FetchFromPageContext.
	Fetch FetchFunc

	Fields Fields
}

// SearchSpec is the shared pagination loop behind most sites' Search.
// It walks numbered result pages until the sentinel text appears, the page
// stops yielding new URLs, or the page ceiling is hit - whichever first.
type SearchSpec struct {
	PageURL  func(page int) string
	Links    Extractor[[]string]
	Sentinel string
	MaxPages int
}

// Run executes the pagination loop and returns deduplicated listing URLs.
func (sp SearchSpec) Run(ctx context.Context, pg *browser.Page) ([]string, error) {
	max := sp.MaxPages
	if max <= 0 {
		max = defaultMaxSearchPages
	}

	seen := make(map[string]bool)
	var urls []string

	for page := 1; page <= max; page++ {
		if err := pg.Goto(sp.PageURL(page)); err != nil {
			return nil, fmt.Errorf("search page %d: %w", page, err)
		}

		if sp.Sentinel != "" {
			doc, err := pg.Document()
			if err != nil {
				return nil, fmt.Errorf("search page %d: %w", page, err)
			}
			if strings.Contains(doc.Text(), sp.Sentinel) {
				break
			}
		}

		links, err := sp.Links(ctx, pg)
		if err != nil {
			return nil, fmt.Errorf("search page %d: %w", page, err)
		}
		if links == nil {
			break
		}

		added := 0
		for _, u := range *links {
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
				added++
			}
		}
		// A page serving only URLs we already saw means pagination wrapped.
		if added == 0 {
			break
		}
	}

	return urls, nil
}
