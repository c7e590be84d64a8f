package models

import (
	"time"

	"github.com/google/uuid"
)

// Analysis is one AI-generated report for a scrap. Listings keep every
// analysis ever produced; the newest one is the one shown.
type Analysis struct {
	ID        int64     `json:"id" db:"id"`
	ScrapID   uuid.UUID `json:"scrap_id" db:"scrap_id"`
	Model     string    `json:"model" db:"model"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LegalClassification is the structured result of the legal-type inference
// over a lot's description text.
type LegalClassification struct {
	TipoDireito         *string  `json:"tipo_direito"`
	TipoImovel          *string  `json:"tipo_imovel"`
	Hipoteca            *bool    `json:"hipoteca"`
	AlienacaoFiduciaria *bool    `json:"alienacao_fiduciaria"`
	DebitoExequendo     *float64 `json:"debito_exequendo"`
}
