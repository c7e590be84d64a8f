package scraper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"leilao_scraper/browser"
	"leilao_scraper/config"
	"leilao_scraper/models"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return string(data)
}

func TestWspleiloesFields(t *testing.T) {
	sc := newWspleiloes(nil)
	pg := browser.NewStaticPage(
		"https://www.wspleiloes.com.br/item/detalhes/1203",
		loadFixture(t, "wspleiloes_lot.html"),
	)
	ctx := context.Background()

	name, err := sc.Fields.Name(ctx, pg)
	if err != nil {
		t.Fatalf("name: %v", err)
	}
	if name == nil || *name != "Apartamento 64m² - Vila Mariana - São Paulo/SP" {
		t.Fatalf("name = %v", name)
	}

	address, err := sc.Fields.Address(ctx, pg)
	if err != nil {
		t.Fatalf("address: %v", err)
	}
	if address == nil || *address != "Rua Domingos de Morais, 2455 - Vila Mariana, São Paulo/SP" {
		t.Fatalf("address = %v", address)
	}

	status, err := sc.Fields.Status(ctx, pg)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status == nil || *status != models.StatusOpenForBids {
		t.Fatalf("status = %v", status)
	}

	caseNumber, err := sc.Fields.CaseNumber(ctx, pg)
	if err != nil {
		t.Fatalf("caseNumber: %v", err)
	}
	if caseNumber == nil || *caseNumber != "1029384-75.2023.8.26.0100" {
		t.Fatalf("caseNumber = %v", caseNumber)
	}

	bid, err := sc.Fields.Bid(ctx, pg)
	if err != nil {
		t.Fatalf("bid: %v", err)
	}
	if bid == nil || *bid != 256500 {
		t.Fatalf("bid = %v", bid)
	}

	appraisal, err := sc.Fields.Appraisal(ctx, pg)
	if err != nil {
		t.Fatalf("appraisal: %v", err)
	}
	if appraisal == nil || *appraisal != 480000 {
		t.Fatalf("appraisal = %v", appraisal)
	}

	firstDate, err := sc.Fields.FirstAuctionDate(ctx, pg)
	if err != nil {
		t.Fatalf("firstAuctionDate: %v", err)
	}
	wantFirst := time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC)
	if firstDate == nil || !firstDate.Equal(wantFirst) {
		t.Fatalf("firstAuctionDate = %v, want %v", firstDate, wantFirst)
	}

	firstBid, err := sc.Fields.FirstAuctionBid(ctx, pg)
	if err != nil {
		t.Fatalf("firstAuctionBid: %v", err)
	}
	if firstBid == nil || *firstBid != 480000 {
		t.Fatalf("firstAuctionBid = %v", firstBid)
	}

	secondBid, err := sc.Fields.SecondAuctionBid(ctx, pg)
	if err != nil {
		t.Fatalf("secondAuctionBid: %v", err)
	}
	if secondBid == nil || *secondBid != 240000 {
		t.Fatalf("secondAuctionBid = %v", secondBid)
	}

	description, err := sc.Fields.Description(ctx, pg)
	if err != nil {
		t.Fatalf("description: %v", err)
	}
	if description == nil || !strings.Contains(*description, "matrícula 112.233") {
		t.Fatalf("description = %v", description)
	}

	edital, err := sc.Fields.EditalLink(ctx, pg)
	if err != nil {
		t.Fatalf("editalLink: %v", err)
	}
	if edital == nil || *edital != "https://www.wspleiloes.com.br/documentos/1203/edital.pdf" {
		t.Fatalf("editalLink = %v", edital)
	}

	matricula, err := sc.Fields.MatriculaLink(ctx, pg)
	if err != nil {
		t.Fatalf("matriculaLink: %v", err)
	}
	if matricula == nil || !strings.HasSuffix(*matricula, "/matricula.pdf") {
		t.Fatalf("matriculaLink = %v", matricula)
	}

	images, err := sc.Fields.Images(ctx, pg)
	if err != nil {
		t.Fatalf("images: %v", err)
	}
	if images == nil || len(*images) != 3 {
		t.Fatalf("images = %v", images)
	}
}

func TestRegistryKnowsEverySite(t *testing.T) {
	r := NewRegistry(nil)
	for _, id := range []string{"wspleiloes", "megaleiloes", "superbid", "portalzuk", "freitas"} {
		sc, err := r.Get(id)
		if err != nil {
			t.Fatalf("missing scraper %s: %v", id, err)
		}
		if sc.Search == nil {
			t.Fatalf("scraper %s has no search", id)
		}
		if sc.Fields.Name == nil || sc.Fields.Address == nil {
			t.Fatalf("scraper %s missing core fields", id)
		}
	}

	if _, err := r.Get("nope"); err == nil {
		t.Fatal("expected error for unknown scraper")
	}
}

func TestRegistrySkipsDisabledSites(t *testing.T) {
	cfg := &config.Config{Sites: map[string]*config.SiteConfig{
		"wspleiloes": {ID: "wspleiloes", Disabled: true},
	}}
	r := NewRegistry(cfg)

	if _, err := r.Get("wspleiloes"); err == nil {
		t.Fatal("disabled scraper should not be registered")
	}
	if len(r.IDs()) != 4 {
		t.Fatalf("expected 4 scrapers, got %d: %v", len(r.IDs()), r.IDs())
	}
}

func TestSiteConfigOverridesDefaults(t *testing.T) {
	d := siteDefaults{
		BaseURL:   "https://a.example",
		SearchURL: "https://a.example/busca?page=%d",
		Sentinel:  "nada",
		MaxPages:  10,
	}
	got := d.apply(&config.SiteConfig{SearchURL: "https://b.example/s?p=%d", MaxPages: 3})

	if got.SearchURL != "https://b.example/s?p=%d" || got.MaxPages != 3 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.BaseURL != "https://a.example" || got.Sentinel != "nada" {
		t.Fatalf("defaults lost: %+v", got)
	}
}
