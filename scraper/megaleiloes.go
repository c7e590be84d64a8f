package scraper

import (
	"fmt"

	"leilao_scraper/config"
	"leilao_scraper/models"
)

// newMegaLeiloes defines the Mega Leilões integration. The site shipped a
// redesign in 2024 and still serves the old markup on cached pages, so most
// fields try the new selector first and fall back to the legacy one.
func newMegaLeiloes(cfg *config.SiteConfig) *Scraper {
	d := siteDefaults{
		BaseURL:   "https://www.megaleiloes.com.br",
		SearchURL: "https://www.megaleiloes.com.br/imoveis?tipo=judicial&pagina=%d",
		Sentinel:  "Nenhum resultado encontrado",
	}.apply(cfg)

	vocab := extendVocab(map[string]models.AuctionStatus{
		"leilão encerrado": models.StatusClosed,
		"receba ofertas":   models.StatusClosed,
		"venda direta":     models.StatusOpenForBids,
	})

	search := SearchSpec{
		PageURL: func(page int) string { return fmt.Sprintf(d.SearchURL, page) },
		Links: FromSelectorAll(
			Finder{Selector: "a.card-link", Attr: "href", AttrContains: "/lote/"},
			Filter{},
			Getter{Attr: "href", Resolve: true},
		),
		Sentinel: d.Sentinel,
		MaxPages: d.MaxPages,
	}

	return &Scraper{
		ID: "megaleiloes",

		Search: search.Run,

		Fields: Fields{
			Name: Or(
				FromSelector(Finder{Selector: "h1.lot-title"}, Getter{}),
				FromSelector(Finder{Selector: ".batch-title h1"}, Getter{}),
			),
			Address: Or(
				Pipe(
					FromSelector(Finder{Selector: ".lot-address"}, Getter{}),
					CleanText,
				),
				Pipe(
					FromSelector(
						Finder{Selector: ".batch-info li", TextContains: "Endereço"},
						Getter{},
					),
					StripLabel("Endereço"),
				),
			),
			Description: Or(
				FromSelector(Finder{Selector: "div.lot-description"}, Getter{}),
				FromSelector(Finder{Selector: "div#descricao"}, Getter{}),
			),
			Status: Pipe(
				Or(
					FromSelector(Finder{Selector: ".lot-status-badge"}, Getter{}),
					FromSelector(Finder{Selector: ".batch-status"}, Getter{}),
				),
				StatusMap(vocab),
			),
			CaseNumber: Pipe(
				FromSelector(
					Finder{Selector: ".lot-info li", TextContains: "Processo"},
					Getter{},
				),
				CaseNumber,
			),
			CaseLink: FromSelector(
				Finder{Selector: ".lot-info a", Attr: "href", AttrContains: "esaj"},
				Getter{Attr: "href", Resolve: true},
			),

			Bid: Pipe(
				Or(
					FromSelector(Finder{Selector: ".current-bid .amount"}, Getter{}),
					FromSelector(Finder{Selector: ".lance-atual"}, Getter{}),
				),
				FindCurrency,
			),
			Appraisal: Pipe(
				FromSelector(
					Finder{Selector: ".lot-info li", TextContains: "Valor de avaliação"},
					Getter{},
				),
				FindCurrency,
			),
			FirstAuctionDate: Pipe(
				FromSelector(
					Finder{Selector: ".auction-round", TextContains: "1º Leilão"},
					Getter{},
				),
				FindDateTime,
			),
			FirstAuctionBid: Pipe(
				FromSelector(
					Finder{Selector: ".auction-round", TextContains: "1º Leilão"},
					Getter{},
				),
				FindCurrency,
			),
			SecondAuctionDate: Pipe(
				FromSelector(
					Finder{Selector: ".auction-round", TextContains: "2º Leilão"},
					Getter{},
				),
				FindDateTime,
			),
			SecondAuctionBid: Pipe(
				FromSelector(
					Finder{Selector: ".auction-round", TextContains: "2º Leilão"},
					Getter{},
				),
				FindCurrency,
			),

			LaudoLink: FromSelector(
				Finder{Selector: ".lot-documents a", TextContains: "Laudo"},
				Getter{Attr: "href", Resolve: true},
			),
			MatriculaLink: FromSelector(
				Finder{Selector: ".lot-documents a", TextContains: "Matrícula"},
				Getter{Attr: "href", Resolve: true},
			),
			EditalLink: FromSelector(
				Finder{Selector: ".lot-documents a", TextContains: "Edital"},
				Getter{Attr: "href", Resolve: true},
			),
			Images: FromSelectorAll(
				Finder{Selector: ".lot-gallery img"},
				Filter{Attr: "src", AttrContains: "/uploads/"},
				Getter{Attr: "src", Resolve: true},
			),
		},
	}
}
