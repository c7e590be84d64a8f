package models

import (
	"time"

	"github.com/google/uuid"
)

// AuctionStatus is the canonical status vocabulary every site's wording is
// mapped onto.
type AuctionStatus string

const (
	StatusWaitingToStart AuctionStatus = "waiting-to-start"
	StatusOpenForBids    AuctionStatus = "open-for-bids"
	StatusSold           AuctionStatus = "sold"
	StatusClosed         AuctionStatus = "closed"
	StatusImpaired       AuctionStatus = "impaired"
	StatusSuspended      AuctionStatus = "suspended"
	StatusUnknown        AuctionStatus = "unknown"
)

// FetchStatus summarizes whether a scrap has the minimum usable field set.
// It is derived from field presence, not from the outcome of the last fetch.
type FetchStatus string

const (
	FetchStatusNotFetched FetchStatus = "not-fetched"
	FetchStatusFetched    FetchStatus = "fetched"
	FetchStatusFailed     FetchStatus = "failed"
)

// Scrap is one auction lot sourced from one auction site.
// Scraped fields are pointers: nil means the field was never extracted.
type Scrap struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ScraperID string    `json:"scraper_id" db:"scraper_id"`
	URL       string    `json:"url" db:"url"`

	Name                *string       `json:"name" db:"name"`
	Address             *string       `json:"address" db:"address"`
	Description         *string       `json:"description" db:"description"`
	DescriptionMarkdown *string       `json:"description_markdown" db:"description_markdown"`
	Status              AuctionStatus `json:"status" db:"status"`
	CaseNumber          *string       `json:"case_number" db:"case_number"`
	CaseLink            *string       `json:"case_link" db:"case_link"`

	Bid               *float64   `json:"bid" db:"bid"`
	Appraisal         *float64   `json:"appraisal" db:"appraisal"`
	FirstAuctionDate  *time.Time `json:"first_auction_date" db:"first_auction_date"`
	FirstAuctionBid   *float64   `json:"first_auction_bid" db:"first_auction_bid"`
	SecondAuctionDate *time.Time `json:"second_auction_date" db:"second_auction_date"`
	SecondAuctionBid  *float64   `json:"second_auction_bid" db:"second_auction_bid"`

	LaudoLink     *string `json:"laudo_link" db:"laudo_link"`
	MatriculaLink *string `json:"matricula_link" db:"matricula_link"`
	EditalLink    *string `json:"edital_link" db:"edital_link"`
	LaudoFile     *string `json:"laudo_file" db:"laudo_file"`
	MatriculaFile *string `json:"matricula_file" db:"matricula_file"`
	EditalFile    *string `json:"edital_file" db:"edital_file"`

	FetchStatus FetchStatus `json:"fetch_status" db:"fetch_status"`

	// Analysis fields. Each one is frozen against automated overwrite once
	// its Verificada flag is set by a human.
	TipoDireito                   *string  `json:"analise_tipo_direito" db:"analise_tipo_direito"`
	TipoDireitoVerificada         bool     `json:"analise_tipo_direito_verificada" db:"analise_tipo_direito_verificada"`
	TipoImovel                    *string  `json:"analise_tipo_imovel" db:"analise_tipo_imovel"`
	TipoImovelVerificada          bool     `json:"analise_tipo_imovel_verificada" db:"analise_tipo_imovel_verificada"`
	Hipoteca                      *bool    `json:"analise_hipoteca" db:"analise_hipoteca"`
	HipotecaVerificada            bool     `json:"analise_hipoteca_verificada" db:"analise_hipoteca_verificada"`
	AlienacaoFiduciaria           *bool    `json:"analise_alienacao_fiduciaria" db:"analise_alienacao_fiduciaria"`
	AlienacaoFiduciariaVerificada bool     `json:"analise_alienacao_fiduciaria_verificada" db:"analise_alienacao_fiduciaria_verificada"`
	DebitoExequendo               *float64 `json:"analise_debito_exequendo" db:"analise_debito_exequendo"`
	DebitoExequendoVerificada     bool     `json:"analise_debito_exequendo_verificada" db:"analise_debito_exequendo_verificada"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DeriveFetchStatus is the single place the fetched/failed decision lives.
// A scrap is fetched iff all five mandatory fields are present. The pipeline
// and the maintenance routine both call this; do not reimplement it.
func DeriveFetchStatus(name, address, caseNumber, editalLink, matriculaLink *string) FetchStatus {
	if name != nil && address != nil && caseNumber != nil && editalLink != nil && matriculaLink != nil {
		return FetchStatusFetched
	}
	return FetchStatusFailed
}

// PreferredAuctionBid picks the minimum bid of the auction round that is
// currently relevant: the first round while its date is still in the future,
// otherwise the second round when one exists.
func PreferredAuctionBid(now time.Time, firstDate *time.Time, firstBid *float64, secondDate *time.Time, secondBid *float64) *float64 {
	if firstDate != nil && firstDate.After(now) {
		return firstBid
	}
	if secondDate != nil || secondBid != nil {
		return secondBid
	}
	return nil
}

// ApplyUnlessVerified writes an automated value into a classification field
// unless a human already verified it or the automation produced nothing.
// Every automated writer of analysis fields must go through this; bypassing
// it silently undoes human review.
func ApplyUnlessVerified[T any](dst **T, verified bool, val *T) {
	if verified || val == nil {
		return
	}
	*dst = val
}

// ScrapImage is one photo attached to a scrap. The image set is always
// replaced wholesale, never patched.
type ScrapImage struct {
	ID      int64     `json:"id" db:"id"`
	ScrapID uuid.UUID `json:"scrap_id" db:"scrap_id"`
	URL     string    `json:"url" db:"url"`
	Order   int       `json:"display_order" db:"display_order"`
}
