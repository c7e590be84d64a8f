package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"leilao_scraper/browser"
	"leilao_scraper/models"
	"leilao_scraper/scraper"
)

// RefreshResult summarizes one discovery pass.
type RefreshResult struct {
	URLsFound int
	New       int
}

// RefreshScraps runs a site's search on the given page and inserts a stub row
// for every listing URL not seen before. Already-known URLs are left
// untouched; a later fetch pass fills the stubs in. Rerunning is free.
func (s *Service) RefreshScraps(ctx context.Context, pg *browser.Page, sc *scraper.Scraper) (*RefreshResult, error) {
	urls, err := sc.Search(ctx, pg)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: search: %w", sc.ID, err)
	}

	result := &RefreshResult{URLsFound: len(urls)}
	if len(urls) == 0 {
		return result, nil
	}

	existing, err := s.store.ExistingURLs(ctx, sc.ID, urls)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", sc.ID, err)
	}

	for _, u := range urls {
		if existing[u] {
			continue
		}
		if _, err := s.store.InsertStub(ctx, sc.ID, u); err != nil {
			return nil, fmt.Errorf("refresh %s: insert %s: %w", sc.ID, u, err)
		}
		result.New++
	}

	log.Printf("%s: discovery found %d urls, %d new", sc.ID, result.URLsFound, result.New)
	return result, nil
}

// ScrapeOptions tunes one site cycle.
type ScrapeOptions struct {
	OnlyRefresh bool // discovery only, skip fetching
	All         bool // re-fetch every scrap, not just pending ones
}

// ScrapeResult summarizes one full site cycle.
type ScrapeResult struct {
	Refresh RefreshResult
	Fetched int
	Failed  int
}

// ScrapeSite runs discovery then fetches the site's scraps, one fresh tab
// per listing. Per-listing failures are tallied, not fatal; only
// driver-level errors abort the cycle.
func (s *Service) ScrapeSite(ctx context.Context, b *browser.Browser, sc *scraper.Scraper, opts ScrapeOptions) (*ScrapeResult, error) {
	result := &ScrapeResult{}

	pg, err := b.NewPage()
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", sc.ID, err)
	}
	refresh, err := s.RefreshScraps(ctx, pg, sc)
	pg.Close()
	if err != nil {
		return nil, err
	}
	result.Refresh = *refresh

	if opts.OnlyRefresh {
		return result, nil
	}

	list := s.store.ListPending
	if opts.All {
		list = s.store.ListScraps
	}
	pending, err := list(ctx, sc.ID)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: list scraps: %w", sc.ID, err)
	}

	for _, scrap := range pending {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		pg, err := b.NewPage()
		if err != nil {
			return result, fmt.Errorf("scrape %s: %w", sc.ID, err)
		}

		err = s.FetchScrapFromSource(ctx, pg, sc, scrap)
		pg.Close()

		if err != nil {
			var perr *PipelineError
			if errors.As(err, &perr) {
				log.Printf("Error: %s: %v", sc.ID, perr)
			} else {
				log.Printf("Error: %s: fetch %s: %v", sc.ID, scrap.URL, err)
			}
			result.Failed++
			continue
		}

		if scrap.FetchStatus == models.FetchStatusFetched {
			result.Fetched++
		} else {
			result.Failed++
		}
	}

	log.Printf("%s: cycle done: %d fetched, %d failed of %d pending",
		sc.ID, result.Fetched, result.Failed, len(pending))
	return result, nil
}
