package services

import (
	"context"
	"log"

	"leilao_scraper/models"
)

// updateDerivedState refreshes everything computed from the scraped fields.
// Updaters are idempotent and individually tolerant: one failing leaves a
// stale corner, never a broken scrap.
func (s *Service) updateDerivedState(ctx context.Context, scrap *models.Scrap, data *ScrapData, descriptionChanged bool) {
	s.syncImages(ctx, scrap, data)
	s.validateAddress(ctx, scrap)

	changed := s.updateMarkdown(ctx, scrap, descriptionChanged)
	if s.inferLegal(ctx, scrap, descriptionChanged) {
		changed = true
	}
	if changed {
		if err := s.store.UpdateScrap(ctx, scrap); err != nil {
			log.Printf("Error: persist derived fields for %s: %v", scrap.ID, err)
		}
	}

	s.kickoffAnalysis(ctx, scrap)
	s.recomputeProfit(ctx, scrap)
}

// syncImages replaces the stored image set when this pass found a different
// one. A pass that found no images keeps the existing set; a gallery that
// failed to render must not wipe photos we already have.
func (s *Service) syncImages(ctx context.Context, scrap *models.Scrap, data *ScrapData) {
	if data.Images == nil || len(*data.Images) == 0 {
		return
	}
	found := *data.Images

	existing, err := s.store.GetImages(ctx, scrap.ID)
	if err != nil {
		log.Printf("Error: load images for %s: %v", scrap.ID, err)
		return
	}

	have := make(map[string]bool, len(existing))
	for _, img := range existing {
		have[img.URL] = true
	}
	allKnown := len(existing) >= len(found)
	for _, u := range found {
		if !have[u] {
			allKnown = false
			break
		}
	}
	if allKnown {
		return
	}

	if err := s.store.ReplaceImages(ctx, scrap.ID, found); err != nil {
		log.Printf("Error: replace images for %s: %v", scrap.ID, err)
	}
}

// updateMarkdown re-renders the description as markdown, but only when the
// description actually changed; the conversion is an API call.
func (s *Service) updateMarkdown(ctx context.Context, scrap *models.Scrap, descriptionChanged bool) bool {
	if s.ai == nil || !descriptionChanged || scrap.Description == nil {
		return false
	}
	md, err := s.ai.FormatMarkdown(ctx, *scrap.Description)
	if err != nil {
		log.Printf("Error: format markdown for %s: %v", scrap.ID, err)
		return false
	}
	scrap.DescriptionMarkdown = &md
	return true
}

// inferLegal re-classifies the lot's legal situation when the description
// changed and at least one analysis field is still unverified.
func (s *Service) inferLegal(ctx context.Context, scrap *models.Scrap, descriptionChanged bool) bool {
	if s.ai == nil || !descriptionChanged || scrap.Description == nil {
		return false
	}
	allVerified := scrap.TipoDireitoVerificada && scrap.TipoImovelVerificada &&
		scrap.HipotecaVerificada && scrap.AlienacaoFiduciariaVerificada &&
		scrap.DebitoExequendoVerificada
	if allVerified {
		return false
	}

	cls, err := s.ai.ClassifyLegal(ctx, *scrap.Description)
	if err != nil {
		log.Printf("Error: classify legal for %s: %v", scrap.ID, err)
		return false
	}

	models.ApplyUnlessVerified(&scrap.TipoDireito, scrap.TipoDireitoVerificada, cls.TipoDireito)
	models.ApplyUnlessVerified(&scrap.TipoImovel, scrap.TipoImovelVerificada, cls.TipoImovel)
	models.ApplyUnlessVerified(&scrap.Hipoteca, scrap.HipotecaVerificada, cls.Hipoteca)
	models.ApplyUnlessVerified(&scrap.AlienacaoFiduciaria, scrap.AlienacaoFiduciariaVerificada, cls.AlienacaoFiduciaria)
	models.ApplyUnlessVerified(&scrap.DebitoExequendo, scrap.DebitoExequendoVerificada, cls.DebitoExequendo)
	return true
}

// validateAddress geocodes the raw address string the first time it is seen.
// not_found results are cached too, so a bad address costs exactly one call.
func (s *Service) validateAddress(ctx context.Context, scrap *models.Scrap) {
	if s.geo == nil || scrap.Address == nil {
		return
	}
	raw := *scrap.Address

	cached, err := s.store.GetValidatedAddress(ctx, raw)
	if err != nil {
		log.Printf("Error: load validated address for %s: %v", scrap.ID, err)
		return
	}
	if cached != nil {
		return
	}

	v, err := s.geo.Geocode(ctx, raw)
	if err != nil {
		log.Printf("Error: geocode %q: %v", raw, err)
		return
	}
	if err := s.store.InsertValidatedAddress(ctx, v); err != nil {
		log.Printf("Error: cache validated address %q: %v", raw, err)
	}
}

// kickoffAnalysis produces the first AI report for a scrap that has none.
// Re-analysis is operator-triggered, never automatic.
func (s *Service) kickoffAnalysis(ctx context.Context, scrap *models.Scrap) {
	if s.ai == nil || scrap.Description == nil {
		return
	}
	n, err := s.store.CountAnalyses(ctx, scrap.ID)
	if err != nil {
		log.Printf("Error: count analyses for %s: %v", scrap.ID, err)
		return
	}
	if n > 0 {
		return
	}

	a, err := s.ai.Analyze(ctx, scrap)
	if err != nil {
		log.Printf("Error: analyze %s: %v", scrap.ID, err)
		return
	}
	if err := s.store.InsertAnalysis(ctx, a); err != nil {
		log.Printf("Error: store analysis for %s: %v", scrap.ID, err)
	}
}

// recomputeProfit re-derives the profit figures after every fetch, creating
// the record with default assumptions on first touch.
func (s *Service) recomputeProfit(ctx context.Context, scrap *models.Scrap) {
	p, err := s.store.GetProfit(ctx, scrap.ID)
	if err != nil {
		log.Printf("Error: load profit for %s: %v", scrap.ID, err)
		return
	}
	if p == nil {
		p = models.NewDefaultProfit(scrap.ID)
	}

	var bid, resale float64
	if scrap.Bid != nil {
		bid = *scrap.Bid
	}
	if scrap.Appraisal != nil {
		resale = *scrap.Appraisal
	}
	p.Recompute(bid, resale)
	p.UpdatedAt = s.now()

	if err := s.store.UpsertProfit(ctx, p); err != nil {
		log.Printf("Error: persist profit for %s: %v", scrap.ID, err)
	}
}
