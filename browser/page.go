package browser

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

// Page wraps a live playwright page together with a lazily parsed goquery
// document over its current HTML. Selector-based extraction runs against the
// document; navigation and scripting run against the live page. A Page built
// with NewStaticPage has no live half, which is what makes the extraction
// engine testable without a browser.
type Page struct {
	pw playwright.Page

	staticURL  string
	staticHTML string
	doc        *goquery.Document
}

func newPage(pw playwright.Page) *Page {
	return &Page{pw: pw}
}

// NewStaticPage builds a page over fixed HTML, for tests and offline parsing.
func NewStaticPage(rawURL, html string) *Page {
	return &Page{staticURL: rawURL, staticHTML: html}
}

// Goto navigates and drops the cached document.
func (p *Page) Goto(target string) error {
	if p.pw == nil {
		return fmt.Errorf("goto %s: static page cannot navigate", target)
	}
	p.doc = nil
	_, err := p.pw.Goto(target, playwright.PageGotoOptions{
		Timeout:   playwright.Float(60000),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", target, err)
	}
	return nil
}

// URL returns the page's current address.
func (p *Page) URL() string {
	if p.pw != nil {
		return p.pw.URL()
	}
	return p.staticURL
}

// Document returns a parsed snapshot of the page's current HTML. The snapshot
// is cached until the next navigation or Invalidate call.
func (p *Page) Document() (*goquery.Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}

	html := p.staticHTML
	if p.pw != nil {
		var err error
		html, err = p.pw.Content()
		if err != nil {
			return nil, fmt.Errorf("page content: %w", err)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	p.doc = doc
	return doc, nil
}

// Invalidate drops the cached document after in-page interactions changed
// the DOM.
func (p *Page) Invalidate() {
	p.doc = nil
}

// Evaluate runs an expression in the page's JS context.
func (p *Page) Evaluate(expr string, args ...interface{}) (interface{}, error) {
	if p.pw == nil {
		return nil, fmt.Errorf("evaluate: static page has no js context")
	}
	return p.pw.Evaluate(expr, args...)
}

// Click clicks the first visible match of selector.
func (p *Page) Click(selector string) error {
	if p.pw == nil {
		return fmt.Errorf("click %s: static page", selector)
	}
	loc := p.pw.Locator(selector).First()
	visible, _ := loc.IsVisible()
	if !visible {
		return fmt.Errorf("click %s: not visible", selector)
	}
	p.doc = nil
	return loc.Click()
}

// Fill types a value into the first match of selector.
func (p *Page) Fill(selector, value string) error {
	if p.pw == nil {
		return fmt.Errorf("fill %s: static page", selector)
	}
	p.doc = nil
	return p.pw.Locator(selector).First().Fill(value)
}

// WaitFor polls a JS expression until it is truthy or the timeout elapses.
// Timeouts come back as errors; callers decide whether they are fatal.
func (p *Page) WaitFor(expr string, timeout time.Duration) error {
	if p.pw == nil {
		return nil
	}
	deadline := time.Now().Add(timeout)
	for {
		result, err := p.pw.Evaluate(expr)
		if err == nil && truthy(result) {
			p.doc = nil
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("wait for %q: timed out after %s", expr, timeout)
		}
		p.pw.WaitForTimeout(500)
	}
}

// Sleep pauses without blocking the page's event loop.
func (p *Page) Sleep(d time.Duration) {
	if p.pw != nil {
		p.pw.WaitForTimeout(float64(d.Milliseconds()))
		return
	}
	time.Sleep(d)
}

// ResolveURL resolves a possibly relative href against the page's address.
func (p *Page) ResolveURL(href string) string {
	base, err := url.Parse(p.URL())
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// Close closes the underlying tab.
func (p *Page) Close() {
	if p.pw != nil {
		p.pw.Close()
	}
}

func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}
