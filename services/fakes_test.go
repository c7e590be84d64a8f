package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leilao_scraper/models"
)

// fakeStore is an in-memory Store for pipeline tests.
type fakeStore struct {
	scraps   map[uuid.UUID]*models.Scrap
	images   map[uuid.UUID][]models.ScrapImage
	analyses map[uuid.UUID][]*models.Analysis
	profits  map[uuid.UUID]*models.Profit
	addrs    map[string]*models.ValidatedAddress

	updateCalls  int
	replaceCalls int
	statusCalls  []models.FetchStatus
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		scraps:   map[uuid.UUID]*models.Scrap{},
		images:   map[uuid.UUID][]models.ScrapImage{},
		analyses: map[uuid.UUID][]*models.Analysis{},
		profits:  map[uuid.UUID]*models.Profit{},
		addrs:    map[string]*models.ValidatedAddress{},
	}
}

func (f *fakeStore) add(s *models.Scrap) *models.Scrap {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	f.scraps[s.ID] = s
	return s
}

func (f *fakeStore) GetScrap(_ context.Context, id uuid.UUID) (*models.Scrap, error) {
	return f.scraps[id], nil
}

func (f *fakeStore) UpdateScrap(_ context.Context, s *models.Scrap) error {
	f.updateCalls++
	f.scraps[s.ID] = s
	return nil
}

func (f *fakeStore) SetFetchStatus(_ context.Context, id uuid.UUID, status models.FetchStatus) error {
	f.statusCalls = append(f.statusCalls, status)
	if s, ok := f.scraps[id]; ok {
		s.FetchStatus = status
	}
	return nil
}

func (f *fakeStore) ExistingURLs(_ context.Context, scraperID string, urls []string) (map[string]bool, error) {
	known := map[string]bool{}
	for _, s := range f.scraps {
		if s.ScraperID == scraperID {
			known[s.URL] = true
		}
	}
	out := map[string]bool{}
	for _, u := range urls {
		if known[u] {
			out[u] = true
		}
	}
	return out, nil
}

func (f *fakeStore) InsertStub(_ context.Context, scraperID, url string) (*models.Scrap, error) {
	s := &models.Scrap{
		ID:          uuid.New(),
		ScraperID:   scraperID,
		URL:         url,
		FetchStatus: models.FetchStatusNotFetched,
	}
	f.scraps[s.ID] = s
	return s, nil
}

func (f *fakeStore) ListPending(_ context.Context, scraperID string) ([]*models.Scrap, error) {
	var out []*models.Scrap
	for _, s := range f.scraps {
		if s.ScraperID != scraperID {
			continue
		}
		if s.FetchStatus == models.FetchStatusNotFetched || s.FetchStatus == models.FetchStatusFailed {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListScraps(_ context.Context, scraperID string) ([]*models.Scrap, error) {
	var out []*models.Scrap
	for _, s := range f.scraps {
		if scraperID == "" || s.ScraperID == scraperID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) GetImages(_ context.Context, scrapID uuid.UUID) ([]models.ScrapImage, error) {
	return f.images[scrapID], nil
}

func (f *fakeStore) ReplaceImages(_ context.Context, scrapID uuid.UUID, urls []string) error {
	f.replaceCalls++
	imgs := make([]models.ScrapImage, len(urls))
	for i, u := range urls {
		imgs[i] = models.ScrapImage{ScrapID: scrapID, URL: u, Order: i}
	}
	f.images[scrapID] = imgs
	return nil
}

func (f *fakeStore) CountAnalyses(_ context.Context, scrapID uuid.UUID) (int, error) {
	return len(f.analyses[scrapID]), nil
}

func (f *fakeStore) InsertAnalysis(_ context.Context, a *models.Analysis) error {
	f.analyses[a.ScrapID] = append(f.analyses[a.ScrapID], a)
	return nil
}

func (f *fakeStore) GetProfit(_ context.Context, scrapID uuid.UUID) (*models.Profit, error) {
	return f.profits[scrapID], nil
}

func (f *fakeStore) UpsertProfit(_ context.Context, p *models.Profit) error {
	f.profits[p.ScrapID] = p
	return nil
}

func (f *fakeStore) GetValidatedAddress(_ context.Context, raw string) (*models.ValidatedAddress, error) {
	return f.addrs[raw], nil
}

func (f *fakeStore) InsertValidatedAddress(_ context.Context, v *models.ValidatedAddress) error {
	f.addrs[v.RawAddress] = v
	return nil
}

// fakeAI returns canned results and counts calls.
type fakeAI struct {
	markdown string
	classify *models.LegalClassification

	markdownCalls int
	classifyCalls int
	analyzeCalls  int
}

func (f *fakeAI) FormatMarkdown(_ context.Context, _ string) (string, error) {
	f.markdownCalls++
	return f.markdown, nil
}

func (f *fakeAI) ClassifyLegal(_ context.Context, _ string) (*models.LegalClassification, error) {
	f.classifyCalls++
	if f.classify != nil {
		return f.classify, nil
	}
	return &models.LegalClassification{}, nil
}

func (f *fakeAI) Analyze(_ context.Context, s *models.Scrap) (*models.Analysis, error) {
	f.analyzeCalls++
	return &models.Analysis{ScrapID: s.ID, Model: "fake", Content: "análise"}, nil
}

type fakeGeocoder struct {
	result *models.ValidatedAddress
	calls  int
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (*models.ValidatedAddress, error) {
	f.calls++
	if f.result != nil {
		return f.result, nil
	}
	return &models.ValidatedAddress{RawAddress: address, Status: models.AddressStatusValidated}, nil
}

// fakeFiles records writes and answers Exists from them.
type fakeFiles struct {
	stored map[string][]byte
	writes []string
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{stored: map[string][]byte{}}
}

func (f *fakeFiles) Exists(name string) bool {
	_, ok := f.stored[name]
	return ok
}

func (f *fakeFiles) Write(_ context.Context, name string, data []byte) (string, error) {
	f.stored[name] = data
	f.writes = append(f.writes, name)
	return name, nil
}

// newTestService wires the fakes into a Service with a frozen clock.
func newTestService(store *fakeStore, files *fakeFiles, ai AI, geo Geocoder) *Service {
	svc := New(store, files, ai, geo, nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}
