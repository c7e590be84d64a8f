package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"leilao_scraper/browser"
	"leilao_scraper/config"
	"leilao_scraper/models"
)

// newSuperbid defines the Superbid integration. The site is a React app that
// renders after load, gates document downloads behind the session cookie, and
// shows bid values only to logged-in users - hence the login hook, the load
// wait and the page-context fetch.
func newSuperbid(cfg *config.SiteConfig) *Scraper {
	d := siteDefaults{
		BaseURL:   "https://www.superbid.net",
		SearchURL: "https://www.superbid.net/busca/imoveis-judiciais?pagina=%d",
		Sentinel:  "Não encontramos resultados",
	}.apply(cfg)

	var email, password string
	if cfg != nil {
		email, password = cfg.Email, cfg.Password
	}

	vocab := extendVocab(map[string]models.AuctionStatus{
		"lote vendido":   models.StatusSold,
		"lote encerrado": models.StatusClosed,
		"condicional":    models.StatusImpaired,
	})

	search := SearchSpec{
		PageURL: func(page int) string { return fmt.Sprintf(d.SearchURL, page) },
		Links: FromSelectorAll(
			Finder{Selector: "a[href*='/oferta/']"},
			Filter{},
			Getter{Attr: "href", Resolve: true},
		),
		Sentinel: d.Sentinel,
		MaxPages: d.MaxPages,
	}

	return &Scraper{
		ID: "superbid",

		Search: search.Run,

		Login: func(ctx context.Context, pg *browser.Page) error {
			if email == "" || password == "" {
				log.Printf("superbid: no credentials configured, fetching anonymously")
				return nil
			}
			if err := pg.Goto(d.BaseURL + "/login"); err != nil {
				return err
			}
			if err := pg.Fill("input[name='email']", email); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if err := pg.Fill("input[name='password']", password); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if err := pg.Click("button[type='submit']"); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			return pg.WaitFor(`document.cookie.includes('sbsession')`, 20*time.Second)
		},

		WaitUntilLoaded: func(ctx context.Context, pg *browser.Page) error {
			// The lot page hydrates client-side; the price block is the last
			// element to appear.
			return pg.WaitFor(`document.querySelector('[data-testid="offer-price"]') !== null`, 20*time.Second)
		},

		Fetch: FetchFromPageContext,

		Fields: Fields{
			Name: FromSelector(
				Finder{Selector: "h1[data-testid='offer-title']"},
				Getter{},
			),
			Address: Pipe(
				FromSelector(
					Finder{Selector: "[data-testid='offer-location']"},
					Getter{},
				),
				CleanText,
			),
			Description: FromSelector(
				Finder{Selector: "[data-testid='offer-description']"},
				Getter{},
			),
			Status: Pipe(
				FromSelector(
					Finder{Selector: "[data-testid='offer-status']"},
					Getter{},
				),
				StatusMap(vocab),
			),
			CaseNumber: Pipe(
				FromSelector(
					Finder{Selector: ".offer-details li", TextContains: "Processo"},
					Getter{},
				),
				CaseNumber,
			),
			CaseLink: FromSelector(
				Finder{Selector: ".offer-details a", TextContains: "processo"},
				Getter{Attr: "href", Resolve: true},
			),

			Bid: Pipe(
				FromSelector(
					Finder{Selector: "[data-testid='offer-price']"},
					Getter{},
				),
				FindCurrency,
			),
			Appraisal: Pipe(
				FromSelector(
					Finder{Selector: ".offer-details li", TextContains: "Avaliação"},
					Getter{},
				),
				FindCurrency,
			),
			FirstAuctionDate: Pipe(
				FromSelector(
					Finder{Selector: ".auction-dates li", TextContains: "1º Leilão"},
					Getter{},
				),
				FindDateTime,
			),
			FirstAuctionBid: Pipe(
				FromSelector(
					Finder{Selector: ".auction-dates li", TextContains: "1º Leilão"},
					Getter{},
				),
				FindCurrency,
			),
			SecondAuctionDate: Pipe(
				FromSelector(
					Finder{Selector: ".auction-dates li", TextContains: "2º Leilão"},
					Getter{},
				),
				FindDateTime,
			),
			SecondAuctionBid: Pipe(
				FromSelector(
					Finder{Selector: ".auction-dates li", TextContains: "2º Leilão"},
					Getter{},
				),
				FindCurrency,
			),

			LaudoLink: FromSelector(
				Finder{Selector: ".attachments a", TextContains: "Laudo"},
				Getter{Attr: "href", Resolve: true},
			),
			MatriculaLink: FromSelector(
				Finder{Selector: ".attachments a", TextContains: "Matrícula"},
				Getter{Attr: "href", Resolve: true},
			),
			EditalLink: FromSelector(
				Finder{Selector: ".attachments a", TextContains: "Edital"},
				Getter{Attr: "href", Resolve: true},
			),
			Images: FromSelectorAll(
				Finder{Selector: ".offer-gallery img"},
				Filter{},
				Getter{Attr: "src", Resolve: true},
			),
		},
	}
}
