package services

import (
	"context"
	"testing"

	"leilao_scraper/models"
)

func TestSyncImages_EmptyPassKeepsExisting(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeFiles(), nil, nil)
	scrap := store.add(&models.Scrap{ScraperID: "test"})
	store.images[scrap.ID] = []models.ScrapImage{{ScrapID: scrap.ID, URL: "https://x/1.jpg"}}

	svc.syncImages(context.Background(), scrap, &ScrapData{})
	empty := []string{}
	svc.syncImages(context.Background(), scrap, &ScrapData{Images: &empty})

	if store.replaceCalls != 0 {
		t.Fatalf("empty pass replaced images %d times", store.replaceCalls)
	}
}

func TestSyncImages_AllKnownIsNoop(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeFiles(), nil, nil)
	scrap := store.add(&models.Scrap{ScraperID: "test"})
	store.images[scrap.ID] = []models.ScrapImage{
		{ScrapID: scrap.ID, URL: "https://x/1.jpg"},
		{ScrapID: scrap.ID, URL: "https://x/2.jpg"},
	}

	found := []string{"https://x/1.jpg", "https://x/2.jpg"}
	svc.syncImages(context.Background(), scrap, &ScrapData{Images: &found})

	if store.replaceCalls != 0 {
		t.Fatal("identical set replaced images")
	}
}

func TestSyncImages_NewSetReplacesWholesale(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeFiles(), nil, nil)
	scrap := store.add(&models.Scrap{ScraperID: "test"})
	store.images[scrap.ID] = []models.ScrapImage{{ScrapID: scrap.ID, URL: "https://x/old.jpg"}}

	found := []string{"https://x/1.jpg", "https://x/2.jpg"}
	svc.syncImages(context.Background(), scrap, &ScrapData{Images: &found})

	if store.replaceCalls != 1 {
		t.Fatalf("replace calls = %d", store.replaceCalls)
	}
	imgs := store.images[scrap.ID]
	if len(imgs) != 2 || imgs[0].URL != "https://x/1.jpg" || imgs[1].Order != 1 {
		t.Fatalf("stored set = %+v", imgs)
	}
}

func TestUpdateMarkdown_OnlyOnChange(t *testing.T) {
	store := newFakeStore()
	ai := &fakeAI{markdown: "# Casa"}
	svc := newTestService(store, newFakeFiles(), ai, nil)
	scrap := store.add(&models.Scrap{ScraperID: "test", Description: sptr("Casa no centro")})

	if svc.updateMarkdown(context.Background(), scrap, false) {
		t.Fatal("unchanged description triggered a rewrite")
	}
	if ai.markdownCalls != 0 {
		t.Fatalf("markdown calls = %d", ai.markdownCalls)
	}

	if !svc.updateMarkdown(context.Background(), scrap, true) {
		t.Fatal("changed description did not trigger a rewrite")
	}
	if scrap.DescriptionMarkdown == nil || *scrap.DescriptionMarkdown != "# Casa" {
		t.Fatalf("markdown = %v", scrap.DescriptionMarkdown)
	}
}

func TestUpdateMarkdown_NoAIIsNoop(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeFiles(), nil, nil)
	scrap := store.add(&models.Scrap{ScraperID: "test", Description: sptr("Casa")})

	if svc.updateMarkdown(context.Background(), scrap, true) {
		t.Fatal("updater ran without an AI client")
	}
}

func TestInferLegal_FreezesVerifiedFields(t *testing.T) {
	store := newFakeStore()
	ai := &fakeAI{classify: &models.LegalClassification{
		TipoDireito: sptr("propriedade"),
		TipoImovel:  sptr("apartamento"),
		Hipoteca:    func() *bool { b := true; return &b }(),
	}}
	svc := newTestService(store, newFakeFiles(), ai, nil)

	scrap := store.add(&models.Scrap{
		ScraperID:             "test",
		Description:           sptr("Apartamento com hipoteca"),
		TipoDireito:           sptr("posse"),
		TipoDireitoVerificada: true,
	})

	if !svc.inferLegal(context.Background(), scrap, true) {
		t.Fatal("classification did not run")
	}

	if *scrap.TipoDireito != "posse" {
		t.Fatalf("verified field overwritten: %q", *scrap.TipoDireito)
	}
	if scrap.TipoImovel == nil || *scrap.TipoImovel != "apartamento" {
		t.Fatalf("unverified field not filled: %v", scrap.TipoImovel)
	}
	if scrap.Hipoteca == nil || !*scrap.Hipoteca {
		t.Fatalf("hipoteca = %v", scrap.Hipoteca)
	}
}

func TestInferLegal_SkipsWhenAllVerified(t *testing.T) {
	store := newFakeStore()
	ai := &fakeAI{}
	svc := newTestService(store, newFakeFiles(), ai, nil)

	scrap := store.add(&models.Scrap{
		ScraperID:                     "test",
		Description:                   sptr("Apartamento"),
		TipoDireitoVerificada:         true,
		TipoImovelVerificada:          true,
		HipotecaVerificada:            true,
		AlienacaoFiduciariaVerificada: true,
		DebitoExequendoVerificada:     true,
	})

	if svc.inferLegal(context.Background(), scrap, true) {
		t.Fatal("fully verified scrap was re-classified")
	}
	if ai.classifyCalls != 0 {
		t.Fatalf("classify calls = %d", ai.classifyCalls)
	}
}

func TestInferLegal_SkipsWhenUnchanged(t *testing.T) {
	store := newFakeStore()
	ai := &fakeAI{}
	svc := newTestService(store, newFakeFiles(), ai, nil)
	scrap := store.add(&models.Scrap{ScraperID: "test", Description: sptr("Apartamento")})

	if svc.inferLegal(context.Background(), scrap, false) {
		t.Fatal("unchanged description was re-classified")
	}
}

func TestValidateAddress_FirstSeenOnly(t *testing.T) {
	store := newFakeStore()
	geo := &fakeGeocoder{}
	svc := newTestService(store, newFakeFiles(), nil, geo)
	scrap := store.add(&models.Scrap{ScraperID: "test", Address: sptr("Rua A, 123")})

	svc.validateAddress(context.Background(), scrap)
	svc.validateAddress(context.Background(), scrap)

	if geo.calls != 1 {
		t.Fatalf("geocode calls = %d, want 1", geo.calls)
	}
	if store.addrs["Rua A, 123"] == nil {
		t.Fatal("result not cached")
	}
}

func TestValidateAddress_NotFoundIsCachedToo(t *testing.T) {
	store := newFakeStore()
	geo := &fakeGeocoder{result: &models.ValidatedAddress{
		RawAddress: "Rua Inexistente, 999",
		Status:     models.AddressStatusNotFound,
	}}
	svc := newTestService(store, newFakeFiles(), nil, geo)
	scrap := store.add(&models.Scrap{ScraperID: "test", Address: sptr("Rua Inexistente, 999")})

	svc.validateAddress(context.Background(), scrap)
	svc.validateAddress(context.Background(), scrap)

	if geo.calls != 1 {
		t.Fatalf("not_found address geocoded %d times", geo.calls)
	}
	if got := store.addrs["Rua Inexistente, 999"]; got == nil || got.Status != models.AddressStatusNotFound {
		t.Fatalf("cached entry = %+v", got)
	}
}

func TestKickoffAnalysis_OnlyWhenNone(t *testing.T) {
	store := newFakeStore()
	ai := &fakeAI{}
	svc := newTestService(store, newFakeFiles(), ai, nil)
	scrap := store.add(&models.Scrap{ScraperID: "test", Description: sptr("Apartamento")})

	svc.kickoffAnalysis(context.Background(), scrap)
	svc.kickoffAnalysis(context.Background(), scrap)

	if ai.analyzeCalls != 1 {
		t.Fatalf("analyze calls = %d, want 1", ai.analyzeCalls)
	}
	if len(store.analyses[scrap.ID]) != 1 {
		t.Fatalf("stored analyses = %d", len(store.analyses[scrap.ID]))
	}
}

func TestRecomputeProfit_DefaultsOnFirstTouch(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeFiles(), nil, nil)
	scrap := store.add(&models.Scrap{
		ScraperID: "test",
		Bid:       fptr(100000),
		Appraisal: fptr(200000),
	})

	svc.recomputeProfit(context.Background(), scrap)

	p := store.profits[scrap.ID]
	if p == nil {
		t.Fatal("profit record not created")
	}
	if p.AuctioneerFeePct != models.DefaultAuctioneerFeePct {
		t.Fatalf("assumptions not defaulted: %+v", p)
	}
	if p.NetProfit <= 0 {
		t.Fatalf("net profit = %v", p.NetProfit)
	}
}

func TestRecomputeProfit_KeepsEditedAssumptions(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeFiles(), nil, nil)
	scrap := store.add(&models.Scrap{
		ScraperID: "test",
		Bid:       fptr(100000),
		Appraisal: fptr(200000),
	})

	edited := models.NewDefaultProfit(scrap.ID)
	edited.RenovationPct = 0.20
	store.profits[scrap.ID] = edited

	svc.recomputeProfit(context.Background(), scrap)

	p := store.profits[scrap.ID]
	if p.RenovationPct != 0.20 {
		t.Fatalf("edited assumption lost: %v", p.RenovationPct)
	}
	if p.TotalCost == 0 {
		t.Fatal("derived values not recomputed")
	}
}

func TestUpdateDerivedState_PersistsOnlyWhenInferredFieldsChange(t *testing.T) {
	store := newFakeStore()
	ai := &fakeAI{markdown: "# Casa", classify: &models.LegalClassification{TipoDireito: sptr("propriedade")}}
	svc := newTestService(store, newFakeFiles(), ai, nil)
	scrap := store.add(&models.Scrap{ScraperID: "test", Description: sptr("Casa")})

	svc.updateDerivedState(context.Background(), scrap, &ScrapData{}, false)
	if store.updateCalls != 0 {
		t.Fatalf("no-change pass persisted %d times", store.updateCalls)
	}

	svc.updateDerivedState(context.Background(), scrap, &ScrapData{}, true)
	if store.updateCalls != 1 {
		t.Fatalf("update calls = %d, want 1", store.updateCalls)
	}
}
