package scraper

import (
	"fmt"

	"leilao_scraper/config"
	"leilao_scraper/models"
)

// newPortalZuk defines the Portal Zuk integration. Zuk mixes judicial lots
// with bank-owned direct sales; the status vocabulary covers both.
func newPortalZuk(cfg *config.SiteConfig) *Scraper {
	d := siteDefaults{
		BaseURL:   "https://www.portalzuk.com.br",
		SearchURL: "https://www.portalzuk.com.br/leilao-de-imoveis/judicial?page=%d",
		Sentinel:  "Nenhum imóvel encontrado",
	}.apply(cfg)

	vocab := extendVocab(map[string]models.AuctionStatus{
		"proposta":      models.StatusOpenForBids,
		"compra direta": models.StatusOpenForBids,
		"indisponível":  models.StatusSuspended,
	})

	search := SearchSpec{
		PageURL: func(page int) string { return fmt.Sprintf(d.SearchURL, page) },
		Links: FromSelectorAll(
			Finder{Selector: "a.card-property", Attr: "href", AttrContains: "/imovel/"},
			Filter{},
			Getter{Attr: "href", Resolve: true},
		),
		Sentinel: d.Sentinel,
		MaxPages: d.MaxPages,
	}

	return &Scraper{
		ID: "portalzuk",

		Search: search.Run,

		Fields: Fields{
			Name: FromSelector(
				Finder{Selector: "h1.property-title"},
				Getter{},
			),
			Address: Pipe(
				FromSelector(Finder{Selector: "p.property-address"}, Getter{}),
				CleanText,
			),
			Description: FromSelector(
				Finder{Selector: "div.property-description"},
				Getter{},
			),
			Status: Pipe(
				FromSelector(Finder{Selector: ".property-tag"}, Getter{}),
				StatusMap(vocab),
			),
			CaseNumber: Pipe(
				Or(
					FromSelector(
						Finder{Selector: ".property-data li", TextContains: "Processo"},
						Getter{},
					),
					// Some lots only mention the case inside the description.
					FromSelector(Finder{Selector: "div.property-description"}, Getter{}),
				),
				CaseNumber,
			),
			CaseLink: FromSelector(
				Finder{Selector: ".property-data a", TextContains: "Acompanhe o processo"},
				Getter{Attr: "href", Resolve: true},
			),

			Bid: Pipe(
				FromSelector(Finder{Selector: ".property-price .value"}, Getter{}),
				FindCurrency,
			),
			Appraisal: Pipe(
				FromSelector(
					Finder{Selector: ".property-data li", TextContains: "Valor de avaliação"},
					Getter{},
				),
				FindCurrency,
			),
			FirstAuctionDate: Pipe(
				FromSelector(
					Finder{Selector: ".auction-stage", TextContains: "1ª praça"},
					Getter{},
				),
				FindDateTime,
			),
			FirstAuctionBid: Pipe(
				FromSelector(
					Finder{Selector: ".auction-stage", TextContains: "1ª praça"},
					Getter{},
				),
				FindCurrency,
			),
			SecondAuctionDate: Pipe(
				FromSelector(
					Finder{Selector: ".auction-stage", TextContains: "2ª praça"},
					Getter{},
				),
				FindDateTime,
			),
			SecondAuctionBid: Pipe(
				FromSelector(
					Finder{Selector: ".auction-stage", TextContains: "2ª praça"},
					Getter{},
				),
				FindCurrency,
			),

			LaudoLink: FromSelector(
				Finder{Selector: "a.property-doc", TextContains: "Laudo"},
				Getter{Attr: "href", Resolve: true},
			),
			MatriculaLink: FromSelector(
				Finder{Selector: "a.property-doc", TextContains: "Matrícula"},
				Getter{Attr: "href", Resolve: true},
			),
			EditalLink: FromSelector(
				Finder{Selector: "a.property-doc", TextContains: "Edital"},
				Getter{Attr: "href", Resolve: true},
			),
			Images: FromSelectorAll(
				Finder{Selector: ".property-gallery img"},
				Filter{Attr: "src", AttrContains: "portalzuk"},
				Getter{Attr: "src", Resolve: true},
			),
		},
	}
}
