package scraper

import (
	"leilao_scraper/config"
	"leilao_scraper/models"
)

// brDateTimeLayout is how every supported site prints auction dates.
const brDateTimeLayout = "02/01/2006 15:04"

// defaultStatusVocab covers the wording shared across most Brazilian auction
// sites. Sites with their own phrasing extend a copy of this map.
var defaultStatusVocab = map[string]models.AuctionStatus{
	"aguardando início":  models.StatusWaitingToStart,
	"aguardando inicio":  models.StatusWaitingToStart,
	"aberto para lances": models.StatusOpenForBids,
	"em andamento":       models.StatusOpenForBids,
	"vendido":            models.StatusSold,
	"arrematado":         models.StatusSold,
	"encerrado":          models.StatusClosed,
	"prejudicado":        models.StatusImpaired,
	"suspenso":           models.StatusSuspended,
	"cancelado":          models.StatusSuspended,
}

func extendVocab(extra map[string]models.AuctionStatus) map[string]models.AuctionStatus {
	vocab := make(map[string]models.AuctionStatus, len(defaultStatusVocab)+len(extra))
	for k, v := range defaultStatusVocab {
		vocab[k] = v
	}
	for k, v := range extra {
		vocab[k] = v
	}
	return vocab
}

// siteDefaults are the built-in crawl parameters of a site definition.
// A config/sites/*.yaml entry overrides any subset of them.
type siteDefaults struct {
	BaseURL   string
	SearchURL string // %d is the page number
	Sentinel  string
	MaxPages  int
}

func (d siteDefaults) apply(cfg *config.SiteConfig) siteDefaults {
	if cfg == nil {
		return d
	}
	if cfg.BaseURL != "" {
		d.BaseURL = cfg.BaseURL
	}
	if cfg.SearchURL != "" {
		d.SearchURL = cfg.SearchURL
	}
	if cfg.Sentinel != "" {
		d.Sentinel = cfg.Sentinel
	}
	if cfg.MaxPages > 0 {
		d.MaxPages = cfg.MaxPages
	}
	return d
}
