package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"leilao_scraper/browser"
	"leilao_scraper/httputil"
	"leilao_scraper/models"
	"leilao_scraper/scraper"
)

// ScrapData is one extraction pass over a loaded listing page. Every field is
// a pointer; nil means the site didn't expose it or its extractor failed.
type ScrapData struct {
	Name        *string
	Address     *string
	Description *string
	Status      *models.AuctionStatus
	CaseNumber  *string
	CaseLink    *string

	Bid               *float64
	Appraisal         *float64
	FirstAuctionDate  *time.Time
	FirstAuctionBid   *float64
	SecondAuctionDate *time.Time
	SecondAuctionBid  *float64

	LaudoLink     *string
	MatriculaLink *string
	EditalLink    *string
	Images        *[]string
}

// tryField runs one extractor in isolation. A failing extractor costs its own
// field and nothing else; sixteen fields means sixteen independent outcomes.
func tryField[T any](ctx context.Context, pg *browser.Page, scraperID, name string, e scraper.Extractor[T], dst **T) {
	if e == nil {
		return
	}
	v, err := e(ctx, pg)
	if err != nil {
		log.Printf("Error: %s: extract %s: %v", scraperID, name, err)
		return
	}
	*dst = v
}

// ExtractAll runs every configured field extractor against the loaded page.
func ExtractAll(ctx context.Context, pg *browser.Page, sc *scraper.Scraper) *ScrapData {
	f := sc.Fields
	data := &ScrapData{}

	tryField(ctx, pg, sc.ID, "name", f.Name, &data.Name)
	tryField(ctx, pg, sc.ID, "address", f.Address, &data.Address)
	tryField(ctx, pg, sc.ID, "description", f.Description, &data.Description)
	tryField(ctx, pg, sc.ID, "status", f.Status, &data.Status)
	tryField(ctx, pg, sc.ID, "caseNumber", f.CaseNumber, &data.CaseNumber)
	tryField(ctx, pg, sc.ID, "caseLink", f.CaseLink, &data.CaseLink)
	tryField(ctx, pg, sc.ID, "bid", f.Bid, &data.Bid)
	tryField(ctx, pg, sc.ID, "appraisal", f.Appraisal, &data.Appraisal)
	tryField(ctx, pg, sc.ID, "firstAuctionDate", f.FirstAuctionDate, &data.FirstAuctionDate)
	tryField(ctx, pg, sc.ID, "firstAuctionBid", f.FirstAuctionBid, &data.FirstAuctionBid)
	tryField(ctx, pg, sc.ID, "secondAuctionDate", f.SecondAuctionDate, &data.SecondAuctionDate)
	tryField(ctx, pg, sc.ID, "secondAuctionBid", f.SecondAuctionBid, &data.SecondAuctionBid)
	tryField(ctx, pg, sc.ID, "laudoLink", f.LaudoLink, &data.LaudoLink)
	tryField(ctx, pg, sc.ID, "matriculaLink", f.MatriculaLink, &data.MatriculaLink)
	tryField(ctx, pg, sc.ID, "editalLink", f.EditalLink, &data.EditalLink)
	tryField(ctx, pg, sc.ID, "images", f.Images, &data.Images)

	return data
}

// coalesce keeps the persisted value when the new pass didn't produce one.
// An extractor that found nothing must never erase data an earlier pass found.
func coalesce[T any](next, prev *T) *T {
	if next != nil {
		return next
	}
	return prev
}

// Reconcile folds one extraction pass into the persisted scrap and reports
// whether the description text changed. The change flag is computed against
// the value held before this pass, since the markdown updater keys off it.
func Reconcile(scrap *models.Scrap, data *ScrapData, now time.Time) (descriptionChanged bool) {
	descriptionChanged = data.Description != nil &&
		(scrap.Description == nil || *scrap.Description != *data.Description)

	scrap.Name = coalesce(data.Name, scrap.Name)
	scrap.Address = coalesce(data.Address, scrap.Address)
	scrap.Description = coalesce(data.Description, scrap.Description)
	scrap.CaseNumber = coalesce(data.CaseNumber, scrap.CaseNumber)
	scrap.CaseLink = coalesce(data.CaseLink, scrap.CaseLink)
	if data.Status != nil {
		scrap.Status = *data.Status
	}

	scrap.Appraisal = coalesce(data.Appraisal, scrap.Appraisal)
	scrap.FirstAuctionDate = coalesce(data.FirstAuctionDate, scrap.FirstAuctionDate)
	scrap.FirstAuctionBid = coalesce(data.FirstAuctionBid, scrap.FirstAuctionBid)
	scrap.SecondAuctionDate = coalesce(data.SecondAuctionDate, scrap.SecondAuctionDate)
	scrap.SecondAuctionBid = coalesce(data.SecondAuctionBid, scrap.SecondAuctionBid)

	// The headline bid is the extracted one when the site shows it, otherwise
	// the minimum bid of whichever auction round is currently relevant.
	if data.Bid != nil {
		scrap.Bid = data.Bid
	} else if derived := models.PreferredAuctionBid(now, scrap.FirstAuctionDate, scrap.FirstAuctionBid, scrap.SecondAuctionDate, scrap.SecondAuctionBid); derived != nil {
		scrap.Bid = derived
	}

	scrap.LaudoLink = coalesce(data.LaudoLink, scrap.LaudoLink)
	scrap.MatriculaLink = coalesce(data.MatriculaLink, scrap.MatriculaLink)
	scrap.EditalLink = coalesce(data.EditalLink, scrap.EditalLink)

	scrap.FetchStatus = models.DeriveFetchStatus(
		scrap.Name, scrap.Address, scrap.CaseNumber, scrap.EditalLink, scrap.MatriculaLink)
	scrap.UpdatedAt = now
	return descriptionChanged
}

// FetchScrapFromSource runs the full per-listing pipeline: navigate, wait,
// extract, reconcile, persist, then refresh derived state. Fatal failures
// force-mark the scrap failed and come back as a *PipelineError carrying the
// state reached and whatever was extracted.
func (s *Service) FetchScrapFromSource(ctx context.Context, pg *browser.Page, sc *scraper.Scraper, scrap *models.Scrap) error {
	state := stateStart
	var data *ScrapData

	fail := func(err error) error {
		if serr := s.store.SetFetchStatus(ctx, scrap.ID, models.FetchStatusFailed); serr != nil {
			log.Printf("Error: mark scrap %s failed: %v", scrap.ID, serr)
		}
		return &PipelineError{ScrapID: scrap.ID, State: state, Snapshot: data, Err: err}
	}

	if sc.Login != nil {
		if err := sc.Login(ctx, pg); err != nil {
			log.Printf("Error: %s: login: %v", sc.ID, err)
		}
	}
	state = stateLoggedIn

	if err := pg.Goto(scrap.URL); err != nil {
		return fail(err)
	}
	state = stateNavigated

	if sc.WaitUntilLoaded != nil {
		if err := sc.WaitUntilLoaded(ctx, pg); err != nil {
			log.Printf("%s: page load wait: %v", sc.ID, err)
		}
	}
	state = stateReady

	data = ExtractAll(ctx, pg, sc)
	state = stateExtracted

	// Documents first: change detection compares the fresh links against the
	// ones persisted before this pass, which Reconcile overwrites.
	s.downloadDocuments(ctx, pg, sc, scrap, data)

	descriptionChanged := Reconcile(scrap, data, s.now())

	if err := s.store.UpdateScrap(ctx, scrap); err != nil {
		return fail(fmt.Errorf("persist: %w", err))
	}
	state = stateReconciled

	s.updateDerivedState(ctx, scrap, data, descriptionChanged)
	state = stateDerivedUpdated

	return nil
}

// downloadDocuments fetches the laudo, matrícula and edital files. A document
// is downloaded when its link is new or changed, or the file went missing.
// Individual download failures are logged and skipped.
func (s *Service) downloadDocuments(ctx context.Context, pg *browser.Page, sc *scraper.Scraper, scrap *models.Scrap, data *ScrapData) {
	fetch := sc.Fetch
	if fetch == nil {
		fetch = scraper.FetchDirect(httputil.ScrapingClient())
	}

	type doc struct {
		kind     string
		newLink  *string
		prevLink *string
		file     **string
	}
	docs := []doc{
		{"laudo", data.LaudoLink, scrap.LaudoLink, &scrap.LaudoFile},
		{"matricula", data.MatriculaLink, scrap.MatriculaLink, &scrap.MatriculaFile},
		{"edital", data.EditalLink, scrap.EditalLink, &scrap.EditalFile},
	}

	for _, d := range docs {
		link := coalesce(d.newLink, d.prevLink)
		if link == nil {
			continue
		}

		name := fmt.Sprintf("%s/%s-%s.pdf", scrap.ScraperID, scrap.ID, d.kind)
		linkChanged := d.newLink != nil && (d.prevLink == nil || *d.prevLink != *d.newLink)
		if !linkChanged && *d.file != nil && s.files.Exists(name) {
			continue
		}

		bytes, err := fetch(ctx, pg, *link)
		if err != nil {
			log.Printf("Error: %s: download %s for %s: %v", sc.ID, d.kind, scrap.ID, err)
			continue
		}
		stored, err := s.files.Write(ctx, name, bytes)
		if err != nil {
			log.Printf("Error: %s: store %s for %s: %v", sc.ID, d.kind, scrap.ID, err)
			continue
		}
		*d.file = &stored
	}
}
