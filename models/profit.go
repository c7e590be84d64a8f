package models

import (
	"time"

	"github.com/google/uuid"
)

// Default cost assumptions for a judicial auction purchase, as fractions of
// the winning bid (acquisition side) or of the resale value (sale side).
const (
	DefaultAuctioneerFeePct = 0.05
	DefaultITBIPct          = 0.03
	DefaultRegistryPct      = 0.015
	DefaultLawyerPct        = 0.02
	DefaultRenovationPct    = 0.05
	DefaultBrokerFeePct     = 0.06
	DefaultCapitalGainsPct  = 0.15
)

// Profit holds the cost-ratio assumptions for one scrap plus the values
// derived from them. Assumptions are editable; derived values are recomputed
// on every fetch.
type Profit struct {
	ID      int64     `json:"id" db:"id"`
	ScrapID uuid.UUID `json:"scrap_id" db:"scrap_id"`

	AuctioneerFeePct float64 `json:"auctioneer_fee_pct" db:"auctioneer_fee_pct"`
	ITBIPct          float64 `json:"itbi_pct" db:"itbi_pct"`
	RegistryPct      float64 `json:"registry_pct" db:"registry_pct"`
	LawyerPct        float64 `json:"lawyer_pct" db:"lawyer_pct"`
	RenovationPct    float64 `json:"renovation_pct" db:"renovation_pct"`
	BrokerFeePct     float64 `json:"broker_fee_pct" db:"broker_fee_pct"`
	CapitalGainsPct  float64 `json:"capital_gains_pct" db:"capital_gains_pct"`

	TotalCost   float64 `json:"total_cost" db:"total_cost"`
	GrossProfit float64 `json:"gross_profit" db:"gross_profit"`
	NetProfit   float64 `json:"net_profit" db:"net_profit"`
	ProfitPct   float64 `json:"profit_pct" db:"profit_pct"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewDefaultProfit initializes a profit record with the default assumptions.
func NewDefaultProfit(scrapID uuid.UUID) *Profit {
	return &Profit{
		ScrapID:          scrapID,
		AuctioneerFeePct: DefaultAuctioneerFeePct,
		ITBIPct:          DefaultITBIPct,
		RegistryPct:      DefaultRegistryPct,
		LawyerPct:        DefaultLawyerPct,
		RenovationPct:    DefaultRenovationPct,
		BrokerFeePct:     DefaultBrokerFeePct,
		CapitalGainsPct:  DefaultCapitalGainsPct,
	}
}

// Recompute re-derives the profit figures from a bid and an expected resale
// value (the appraisal). Zero inputs zero the derived values.
func (p *Profit) Recompute(bid, resale float64) {
	if bid <= 0 || resale <= 0 {
		p.TotalCost = 0
		p.GrossProfit = 0
		p.NetProfit = 0
		p.ProfitPct = 0
		return
	}

	acquisition := bid * (1 + p.AuctioneerFeePct + p.ITBIPct + p.RegistryPct + p.LawyerPct + p.RenovationPct)
	saleCosts := resale * p.BrokerFeePct

	p.TotalCost = acquisition + saleCosts
	p.GrossProfit = resale - p.TotalCost

	tax := 0.0
	if p.GrossProfit > 0 {
		tax = p.GrossProfit * p.CapitalGainsPct
	}
	p.NetProfit = p.GrossProfit - tax
	if p.TotalCost > 0 {
		p.ProfitPct = p.NetProfit / p.TotalCost
	}
}
