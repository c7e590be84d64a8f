package scraper

import (
	"context"
	"fmt"
	"time"

	"leilao_scraper/browser"
	"leilao_scraper/config"
)

// newWspleiloes defines the WS Pleilões integration. This is the oldest site
// definition and the one new integrations get compared against.
func newWspleiloes(cfg *config.SiteConfig) *Scraper {
	d := siteDefaults{
		BaseURL:   "https://www.wspleiloes.com.br",
		SearchURL: "https://www.wspleiloes.com.br/lotes/imovel?tipo=judicial&page=%d",
		Sentinel:  "Nenhum lote encontrado",
	}.apply(cfg)

	search := SearchSpec{
		PageURL: func(page int) string { return fmt.Sprintf(d.SearchURL, page) },
		Links: FromSelectorAll(
			Finder{Selector: "a[href*='/item/detalhes/']"},
			Filter{},
			Getter{Attr: "href", Resolve: true},
		),
		Sentinel: d.Sentinel,
		MaxPages: d.MaxPages,
	}

	return &Scraper{
		ID: "wspleiloes",

		Search: search.Run,

		WaitUntilLoaded: func(ctx context.Context, pg *browser.Page) error {
			return pg.WaitFor(`document.querySelector('.lote-detalhes, .detalhes-lote') !== null`, 15*time.Second)
		},

		Fields: Fields{
			Name: FromSelector(
				Finder{Selector: "div.detalhes-lote h1"},
				Getter{},
			),
			Address: Pipe(
				FromSelector(
					Finder{Selector: ".lote-info p", TextContains: "Localização"},
					Getter{},
				),
				StripLabel("Localização"),
			),
			Description: FromSelector(
				Finder{Selector: "div#descricao-lote"},
				Getter{},
			),
			Status: Pipe(
				FromSelector(
					Finder{Selector: ".lote-status span"},
					Getter{},
				),
				StatusMap(defaultStatusVocab),
			),
			CaseNumber: Pipe(
				FromSelector(
					Finder{Selector: ".lote-info p", TextContains: "Processo"},
					Getter{},
				),
				CaseNumber,
			),
			CaseLink: FromSelector(
				Finder{Selector: ".lote-info a", TextContains: "Consultar processo"},
				Getter{Attr: "href", Resolve: true},
			),

			Bid: Pipe(
				FromSelector(
					Finder{Selector: ".lance-atual .valor"},
					Getter{},
				),
				Currency,
			),
			Appraisal: Pipe(
				FromSelector(
					Finder{Selector: ".lote-info p", TextContains: "Avaliação"},
					Getter{},
				),
				FindCurrency,
			),
			FirstAuctionDate: Pipe(
				FromSelector(
					Finder{Selector: ".praca", TextContains: "1ª Praça"},
					Getter{},
				),
				FindDateTime,
			),
			FirstAuctionBid: Pipe(
				FromSelector(
					Finder{Selector: ".praca", TextContains: "1ª Praça"},
					Getter{},
				),
				FindCurrency,
			),
			SecondAuctionDate: Pipe(
				FromSelector(
					Finder{Selector: ".praca", TextContains: "2ª Praça"},
					Getter{},
				),
				FindDateTime,
			),
			SecondAuctionBid: Pipe(
				FromSelector(
					Finder{Selector: ".praca", TextContains: "2ª Praça"},
					Getter{},
				),
				FindCurrency,
			),

			LaudoLink: FromSelector(
				Finder{Selector: "a.documento", TextContains: "Laudo"},
				Getter{Attr: "href", Resolve: true},
			),
			MatriculaLink: FromSelector(
				Finder{Selector: "a.documento", TextContains: "Matrícula"},
				Getter{Attr: "href", Resolve: true},
			),
			EditalLink: FromSelector(
				Finder{Selector: "a.documento", TextContains: "Edital"},
				Getter{Attr: "href", Resolve: true},
			),
			Images: FromSelectorAll(
				Finder{Selector: ".carousel-galeria img"},
				Filter{},
				Getter{Attr: "src", Resolve: true},
			),
		},
	}
}
