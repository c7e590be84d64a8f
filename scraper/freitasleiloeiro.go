package scraper

import (
	"context"
	"fmt"
	"time"

	"leilao_scraper/browser"
	"leilao_scraper/config"
)

// newFreitasLeiloeiro defines the Freitas Leiloeiro integration. Small
// leiloeiro site with server-rendered markup; the only quirk is that the
// gallery loads lazily, so image URLs live in data-src.
func newFreitasLeiloeiro(cfg *config.SiteConfig) *Scraper {
	d := siteDefaults{
		BaseURL:   "https://www.freitasleiloeiro.com.br",
		SearchURL: "https://www.freitasleiloeiro.com.br/leiloes/imoveis?pagina=%d",
		Sentinel:  "Nenhum leilão disponível",
	}.apply(cfg)

	search := SearchSpec{
		PageURL: func(page int) string { return fmt.Sprintf(d.SearchURL, page) },
		Links: FromSelectorAll(
			Finder{Selector: "a[href*='/lote/']"},
			Filter{},
			Getter{Attr: "href", Resolve: true},
		),
		Sentinel: d.Sentinel,
		MaxPages: d.MaxPages,
	}

	return &Scraper{
		ID: "freitas",

		Search: search.Run,

		WaitUntilLoaded: func(ctx context.Context, pg *browser.Page) error {
			return pg.WaitFor(`document.querySelectorAll('.galeria img[data-src]').length > 0`, 10*time.Second)
		},

		Fields: Fields{
			Name: FromSelector(
				Finder{Selector: ".lote-cabecalho h2"},
				Getter{},
			),
			Address: Pipe(
				FromSelector(
					Finder{Selector: ".lote-dados tr", TextContains: "Localização"},
					Getter{},
				),
				StripLabel("Localização"),
			),
			Description: FromSelector(
				Finder{Selector: "div.lote-descricao"},
				Getter{},
			),
			Status: Pipe(
				FromSelector(Finder{Selector: ".lote-cabecalho .situacao"}, Getter{}),
				StatusMap(defaultStatusVocab),
			),
			CaseNumber: Pipe(
				FromSelector(
					Finder{Selector: ".lote-dados tr", TextContains: "Processo"},
					Getter{},
				),
				CaseNumber,
			),
			CaseLink: FromSelector(
				Finder{Selector: ".lote-dados a", Attr: "href", AttrContains: "processo"},
				Getter{Attr: "href", Resolve: true},
			),

			Bid: Pipe(
				FromSelector(Finder{Selector: ".lance-atual strong"}, Getter{}),
				FindCurrency,
			),
			Appraisal: Pipe(
				FromSelector(
					Finder{Selector: ".lote-dados tr", TextContains: "Avaliação"},
					Getter{},
				),
				FindCurrency,
			),
			FirstAuctionDate: Pipe(
				FromSelector(
					Finder{Selector: ".leilao-datas li", TextContains: "1º Leilão"},
					Getter{},
				),
				FindDateTime,
			),
			FirstAuctionBid: Pipe(
				FromSelector(
					Finder{Selector: ".leilao-datas li", TextContains: "1º Leilão"},
					Getter{},
				),
				FindCurrency,
			),
			SecondAuctionDate: Pipe(
				FromSelector(
					Finder{Selector: ".leilao-datas li", TextContains: "2º Leilão"},
					Getter{},
				),
				FindDateTime,
			),
			SecondAuctionBid: Pipe(
				FromSelector(
					Finder{Selector: ".leilao-datas li", TextContains: "2º Leilão"},
					Getter{},
				),
				FindCurrency,
			),

			LaudoLink: FromSelector(
				Finder{Selector: ".lote-anexos a", TextContains: "Laudo"},
				Getter{Attr: "href", Resolve: true},
			),
			MatriculaLink: FromSelector(
				Finder{Selector: ".lote-anexos a", TextContains: "Matrícula"},
				Getter{Attr: "href", Resolve: true},
			),
			EditalLink: FromSelector(
				Finder{Selector: ".lote-anexos a", TextContains: "Edital"},
				Getter{Attr: "href", Resolve: true},
			),
			Images: Or(
				FromSelectorAll(
					Finder{Selector: ".galeria img"},
					Filter{Attr: "data-src", AttrContains: "/"},
					Getter{Attr: "data-src", Resolve: true},
				),
				FromSelectorAll(
					Finder{Selector: ".galeria img"},
					Filter{},
					Getter{Attr: "src", Resolve: true},
				),
			),
		},
	}
}
