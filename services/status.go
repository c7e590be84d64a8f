package services

import (
	"context"
	"fmt"
	"log"

	"leilao_scraper/models"
)

// FixFetchStatuses recomputes every scrap's fetch status from its stored
// fields and corrects drift. Stubs that were never fetched are left alone;
// deriving a status for them would misreport discovery backlog as failure.
// Pass an empty scraperID to cover every site.
func (s *Service) FixFetchStatuses(ctx context.Context, scraperID string) (int, error) {
	scraps, err := s.store.ListScraps(ctx, scraperID)
	if err != nil {
		return 0, fmt.Errorf("fix fetch statuses: %w", err)
	}

	fixed := 0
	for _, scrap := range scraps {
		if scrap.FetchStatus == models.FetchStatusNotFetched {
			continue
		}
		want := models.DeriveFetchStatus(
			scrap.Name, scrap.Address, scrap.CaseNumber, scrap.EditalLink, scrap.MatriculaLink)
		if scrap.FetchStatus == want {
			continue
		}
		if err := s.store.SetFetchStatus(ctx, scrap.ID, want); err != nil {
			return fixed, fmt.Errorf("fix fetch statuses: scrap %s: %w", scrap.ID, err)
		}
		log.Printf("fixed fetch status of %s: %s -> %s", scrap.ID, scrap.FetchStatus, want)
		fixed++
	}
	return fixed, nil
}
