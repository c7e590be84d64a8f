package workers

import (
	"context"
	"log"
	"sync/atomic"

	"leilao_scraper/models"
)

const (
	backfillWorkers   = 100
	backfillBatchSize = 1000
)

type backfillStore interface {
	ListUnclassified(ctx context.Context, limit int) ([]*models.Scrap, error)
	UpdateScrap(ctx context.Context, s *models.Scrap) error
}

type classifier interface {
	ClassifyLegal(ctx context.Context, description string) (*models.LegalClassification, error)
}

// BackfillClassifications runs the legal classifier over scraps that have a
// description but were scraped before classification existed. Heavily
// parallel since the work is pure API latency. Per-scrap failures are logged
// and skipped; a rerun picks them up.
func BackfillClassifications(ctx context.Context, store backfillStore, ai classifier) (int, error) {
	scraps, err := store.ListUnclassified(ctx, backfillBatchSize)
	if err != nil {
		return 0, err
	}
	if len(scraps) == 0 {
		return 0, nil
	}
	log.Printf("backfill: classifying %d scraps", len(scraps))

	var done atomic.Int64
	err = MapAsync(ctx, backfillWorkers, scraps, func(ctx context.Context, sc *models.Scrap) error {
		cls, err := ai.ClassifyLegal(ctx, *sc.Description)
		if err != nil {
			log.Printf("Error: backfill classify %s: %v", sc.ID, err)
			return nil
		}

		// The batch selects on tipo_direito alone, so a scrap can arrive with
		// some fields already human-verified. Those stay frozen.
		models.ApplyUnlessVerified(&sc.TipoDireito, sc.TipoDireitoVerificada, cls.TipoDireito)
		models.ApplyUnlessVerified(&sc.TipoImovel, sc.TipoImovelVerificada, cls.TipoImovel)
		models.ApplyUnlessVerified(&sc.Hipoteca, sc.HipotecaVerificada, cls.Hipoteca)
		models.ApplyUnlessVerified(&sc.AlienacaoFiduciaria, sc.AlienacaoFiduciariaVerificada, cls.AlienacaoFiduciaria)
		models.ApplyUnlessVerified(&sc.DebitoExequendo, sc.DebitoExequendoVerificada, cls.DebitoExequendo)

		if err := store.UpdateScrap(ctx, sc); err != nil {
			log.Printf("Error: backfill persist %s: %v", sc.ID, err)
			return nil
		}
		done.Add(1)
		return nil
	})
	return int(done.Load()), err
}
