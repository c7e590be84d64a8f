package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"leilao_scraper/browser"
)

// Extractor pulls one field's value from a loaded page. A nil result with a
// nil error means the field is simply not present; errors are reserved for
// genuine automation failures and malformed-but-present values.
type Extractor[T any] func(ctx context.Context, pg *browser.Page) (*T, error)

// Transform converts a raw extracted value into a derived one. Returning
// (nil, nil) means the raw value carried no usable information.
type Transform[A, B any] func(A) (*B, error)

// Pipe threads an extractor's result through a transform. No raw value means
// no derived value: the transform is never invoked on absence.
func Pipe[A, B any](e Extractor[A], fn Transform[A, B]) Extractor[B] {
	return func(ctx context.Context, pg *browser.Page) (*B, error) {
		v, err := e(ctx, pg)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		return fn(*v)
	}
}

// Chain composes two transforms. Absence short-circuits like Pipe.
func Chain[A, B, C any](f Transform[A, B], g Transform[B, C]) Transform[A, C] {
	return func(a A) (*C, error) {
		b, err := f(a)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, nil
		}
		return g(*b)
	}
}

// Or evaluates extractors left to right and returns the first present value.
// Models "try the modern selector, fall back to the legacy one".
func Or[T any](extractors ...Extractor[T]) Extractor[T] {
	return func(ctx context.Context, pg *browser.Page) (*T, error) {
		for _, e := range extractors {
			v, err := e(ctx, pg)
			if err != nil {
				return nil, err
			}
			if v != nil {
				return v, nil
			}
		}
		return nil, nil
	}
}

// Finder describes which elements to consider. Descriptors are plain data so
// every site definition shares one evaluation engine.
type Finder struct {
	Selector     string
	TextContains string // keep only elements whose text contains this
	Attr         string // with AttrContains: keep only elements whose
	AttrContains string // attribute value contains this
	Index        int    // which surviving element to use (default first)
}

// Getter describes what to read off the chosen element.
type Getter struct {
	Attr    string // empty reads the element text
	Resolve bool   // resolve the value as a URL against the page address
}

// Filter narrows FromSelectorAll results.
type Filter struct {
	TextContains string
	Attr         string
	AttrContains string
}

func (f Finder) keep(s *goquery.Selection) bool {
	if f.TextContains != "" && !strings.Contains(s.Text(), f.TextContains) {
		return false
	}
	if f.Attr != "" {
		v, ok := s.Attr(f.Attr)
		if !ok || !strings.Contains(v, f.AttrContains) {
			return false
		}
	}
	return true
}

func (f Filter) keep(s *goquery.Selection) bool {
	if f.TextContains != "" && !strings.Contains(s.Text(), f.TextContains) {
		return false
	}
	if f.Attr != "" {
		v, ok := s.Attr(f.Attr)
		if !ok || !strings.Contains(v, f.AttrContains) {
			return false
		}
	}
	return true
}

func (g Getter) value(s *goquery.Selection, pg *browser.Page) string {
	var v string
	if g.Attr == "" {
		v = s.Text()
	} else {
		v, _ = s.Attr(g.Attr)
	}
	v = strings.TrimSpace(v)
	if v != "" && g.Resolve {
		v = pg.ResolveURL(v)
	}
	return v
}

// FromSelector returns the described value of the first element matching the
// finder, or absence when nothing matches or the value is empty.
func FromSelector(f Finder, g Getter) Extractor[string] {
	return func(ctx context.Context, pg *browser.Page) (*string, error) {
		doc, err := pg.Document()
		if err != nil {
			return nil, err
		}

		var out *string
		skipped := 0
		doc.Find(f.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if !f.keep(s) {
				return true
			}
			if skipped < f.Index {
				skipped++
				return true
			}
			if v := g.value(s, pg); v != "" {
				out = &v
			}
			return false
		})
		return out, nil
	}
}

// FromSelectorAll returns every described value matching finder and filter,
// deduplicated in document order. An empty result is absence, not an error.
func FromSelectorAll(f Finder, flt Filter, g Getter) Extractor[[]string] {
	return func(ctx context.Context, pg *browser.Page) (*[]string, error) {
		doc, err := pg.Document()
		if err != nil {
			return nil, err
		}

		seen := make(map[string]bool)
		var out []string
		doc.Find(f.Selector).Each(func(_ int, s *goquery.Selection) {
			if !f.keep(s) || !flt.keep(s) {
				return
			}
			v := g.value(s, pg)
			if v == "" || seen[v] {
				return
			}
			seen[v] = true
			out = append(out, v)
		})
		if len(out) == 0 {
			return nil, nil
		}
		return &out, nil
	}
}
