package browser

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

	viewportWidth  = 1366
	viewportHeight = 768

	warmupPollInterval = 2 * time.Second
	warmupTimeout      = 90 * time.Second
)

// Options configures the shared browser instance.
type Options struct {
	Headless  bool
	UserAgent string
	// Warmup lists site URLs to pre-open at launch. Cold launches against
	// bot-protected sites need a few seconds of passive tab residency
	// before navigation succeeds reliably.
	Warmup []string
}

// Browser owns the playwright runtime and a single stealth-configured
// context. One CLI invocation owns exactly one Browser for its lifetime.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	ctx     playwright.BrowserContext
}

// Launch starts a chromium instance with anti-detection measures applied
// uniformly, so site definitions never repeat them.
func Launch(opts Options) (*Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	br, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	ctx, err := br.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(ua),
		Viewport:  &playwright.Size{Width: viewportWidth, Height: viewportHeight},
		Locale:    playwright.String("pt-BR"),
	})
	if err != nil {
		br.Close()
		pw.Stop()
		return nil, fmt.Errorf("create context: %w", err)
	}

	// Mask the one property headless chromium can't hide on its own.
	script := "Object.defineProperty(navigator, 'webdriver', { get: () => undefined })"
	if err := ctx.AddInitScript(playwright.Script{Content: playwright.String(script)}); err != nil {
		log.Printf("Warning: could not add stealth init script: %v", err)
	}

	b := &Browser{pw: pw, browser: br, ctx: ctx}

	if len(opts.Warmup) > 0 {
		if err := b.warmup(opts.Warmup); err != nil {
			log.Printf("Warning: warmup incomplete: %v", err)
		}
	}

	return b, nil
}

// NewPage creates a fresh tab. Tabs are never reused across listings to
// avoid cross-listing cookie and state leakage.
func (b *Browser) NewPage() (*Page, error) {
	pg, err := b.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return newPage(pg), nil
}

// warmup pre-opens one tab per URL and blocks until every tab reports
// document.readyState === "complete", polling with a visible log of which
// URLs are still pending.
func (b *Browser) warmup(urls []string) error {
	pages := make(map[string]playwright.Page, len(urls))
	for _, u := range urls {
		pg, err := b.ctx.NewPage()
		if err != nil {
			return fmt.Errorf("warmup tab for %s: %w", u, err)
		}
		if _, err := pg.Goto(u, playwright.PageGotoOptions{
			Timeout:   playwright.Float(60000),
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		}); err != nil {
			log.Printf("Warmup navigation error for %s (continuing): %v", u, err)
		}
		pages[u] = pg
	}

	deadline := time.Now().Add(warmupTimeout)
	for {
		var pending []string
		for u, pg := range pages {
			state, err := pg.Evaluate(`document.readyState`)
			if err != nil || state != "complete" {
				pending = append(pending, u)
			}
		}
		if len(pending) == 0 {
			log.Printf("Warmup complete: %d tabs ready", len(pages))
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out, still waiting on: [%s]", strings.Join(pending, ", "))
		}
		log.Printf("Warmup still waiting on: %v", pending)
		time.Sleep(warmupPollInterval)
	}
}

// Close releases every browser resource. Safe to call once on all exit paths.
func (b *Browser) Close() {
	if b.ctx != nil {
		b.ctx.Close()
	}
	if b.browser != nil {
		b.browser.Close()
	}
	if b.pw != nil {
		b.pw.Stop()
	}
}
