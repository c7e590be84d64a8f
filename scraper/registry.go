package scraper

import (
	"fmt"
	"sort"

	"leilao_scraper/config"
)

// Registry is the read-only table of every supported site, built once at
// process start. There is no runtime registration.
type Registry struct {
	scrapers map[string]*Scraper
}

// NewRegistry builds the scraper table. A nil config, or a config without a
// YAML entry for a site, leaves that site on its built-in defaults.
func NewRegistry(cfg *config.Config) *Registry {
	site := func(id string) *config.SiteConfig {
		if cfg == nil {
			return nil
		}
		return cfg.Site(id)
	}

	all := []*Scraper{
		newWspleiloes(site("wspleiloes")),
		newMegaLeiloes(site("megaleiloes")),
		newSuperbid(site("superbid")),
		newPortalZuk(site("portalzuk")),
		newFreitasLeiloeiro(site("freitas")),
	}

	scrapers := make(map[string]*Scraper, len(all))
	for _, s := range all {
		if site(s.ID) != nil && site(s.ID).Disabled {
			continue
		}
		scrapers[s.ID] = s
	}
	return &Registry{scrapers: scrapers}
}

// Get returns the scraper for an id.
func (r *Registry) Get(id string) (*Scraper, error) {
	s, ok := r.scrapers[id]
	if !ok {
		return nil, fmt.Errorf("unknown scraper: %s", id)
	}
	return s, nil
}

// IDs returns every registered scraper id, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.scrapers))
	for id := range r.scrapers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns every registered scraper in id order.
func (r *Registry) All() []*Scraper {
	var out []*Scraper
	for _, id := range r.IDs() {
		out = append(out, r.scrapers[id])
	}
	return out
}
