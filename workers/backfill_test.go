package workers

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"leilao_scraper/models"
)

type fakeBackfillStore struct {
	mu      sync.Mutex
	scraps  []*models.Scrap
	updated int
}

func (f *fakeBackfillStore) ListUnclassified(_ context.Context, limit int) ([]*models.Scrap, error) {
	if len(f.scraps) > limit {
		return f.scraps[:limit], nil
	}
	return f.scraps, nil
}

func (f *fakeBackfillStore) UpdateScrap(_ context.Context, _ *models.Scrap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated++
	return nil
}

type fakeClassifier struct {
	result models.LegalClassification
}

func (f *fakeClassifier) ClassifyLegal(_ context.Context, _ string) (*models.LegalClassification, error) {
	cls := f.result
	return &cls, nil
}

func bptr(b bool) *bool { return &b }
func sptr(s string) *string { return &s }
func fptr(f float64) *float64 { return &f }

func TestBackfillClassifications_FillsUnverifiedFields(t *testing.T) {
	store := &fakeBackfillStore{scraps: []*models.Scrap{
		{ID: uuid.New(), Description: sptr("Apartamento com hipoteca")},
	}}
	ai := &fakeClassifier{result: models.LegalClassification{
		TipoDireito: sptr("propriedade"),
		TipoImovel:  sptr("apartamento"),
		Hipoteca:    bptr(true),
	}}

	n, err := BackfillClassifications(context.Background(), store, ai)
	if err != nil {
		t.Fatalf("backfill failed: %v", err)
	}
	if n != 1 || store.updated != 1 {
		t.Fatalf("classified %d, updated %d", n, store.updated)
	}

	sc := store.scraps[0]
	if sc.TipoDireito == nil || *sc.TipoDireito != "propriedade" {
		t.Fatalf("tipo direito = %v", sc.TipoDireito)
	}
	if sc.Hipoteca == nil || !*sc.Hipoteca {
		t.Fatalf("hipoteca = %v", sc.Hipoteca)
	}
}

func TestBackfillClassifications_KeepsVerifiedFieldsFrozen(t *testing.T) {
	store := &fakeBackfillStore{scraps: []*models.Scrap{
		{
			ID:                        uuid.New(),
			Description:               sptr("Apartamento livre de ônus"),
			Hipoteca:                  bptr(false),
			HipotecaVerificada:        true,
			DebitoExequendo:           fptr(12345),
			DebitoExequendoVerificada: true,
		},
	}}
	ai := &fakeClassifier{result: models.LegalClassification{
		TipoDireito:     sptr("propriedade"),
		Hipoteca:        bptr(true),
		DebitoExequendo: fptr(99999),
	}}

	if _, err := BackfillClassifications(context.Background(), store, ai); err != nil {
		t.Fatalf("backfill failed: %v", err)
	}

	sc := store.scraps[0]
	if *sc.Hipoteca {
		t.Fatal("verified hipoteca overwritten")
	}
	if *sc.DebitoExequendo != 12345 {
		t.Fatalf("verified debito overwritten: %v", *sc.DebitoExequendo)
	}
	if sc.TipoDireito == nil || *sc.TipoDireito != "propriedade" {
		t.Fatalf("unverified field not filled: %v", sc.TipoDireito)
	}
}

func TestBackfillClassifications_EmptyBatch(t *testing.T) {
	n, err := BackfillClassifications(context.Background(), &fakeBackfillStore{}, &fakeClassifier{})
	if err != nil || n != 0 {
		t.Fatalf("got %d, %v", n, err)
	}
}
