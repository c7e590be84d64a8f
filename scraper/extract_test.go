package scraper

import (
	"context"
	"errors"
	"testing"

	"leilao_scraper/browser"
)

const lotHTML = `<!DOCTYPE html>
<html><body>
	<h1 class="title">Apartamento 52m² - Centro</h1>
	<div class="info">
		<p>Localização: Av. Paulista, 1000</p>
		<p>Avaliação: R$ 120.000,00</p>
	</div>
	<div class="docs">
		<a class="documento" href="/docs/laudo.pdf">Laudo de Avaliação</a>
		<a class="documento" href="/docs/edital.pdf">Edital do Leilão</a>
	</div>
	<div class="galeria">
		<img src="/img/1.jpg">
		<img src="/img/2.jpg">
		<img src="/img/1.jpg">
		<img src="/img/banner.png" class="ad">
	</div>
</body></html>`

func lotPage() *browser.Page {
	return browser.NewStaticPage("https://example.com/lote/42", lotHTML)
}

func TestFromSelector_Text(t *testing.T) {
	e := FromSelector(Finder{Selector: "h1.title"}, Getter{})
	got, err := e(context.Background(), lotPage())
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if got == nil || *got != "Apartamento 52m² - Centro" {
		t.Fatalf("got %v", got)
	}
}

func TestFromSelector_TextContainsFilter(t *testing.T) {
	e := FromSelector(Finder{Selector: ".info p", TextContains: "Avaliação"}, Getter{})
	got, err := e(context.Background(), lotPage())
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if got == nil || *got != "Avaliação: R$ 120.000,00" {
		t.Fatalf("got %v", got)
	}
}

func TestFromSelector_AttrResolved(t *testing.T) {
	e := FromSelector(
		Finder{Selector: "a.documento", TextContains: "Edital"},
		Getter{Attr: "href", Resolve: true},
	)
	got, err := e(context.Background(), lotPage())
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if got == nil || *got != "https://example.com/docs/edital.pdf" {
		t.Fatalf("got %v", got)
	}
}

func TestFromSelector_NoMatchIsAbsence(t *testing.T) {
	e := FromSelector(Finder{Selector: ".missing"}, Getter{})
	got, err := e(context.Background(), lotPage())
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected absence, got %q", *got)
	}
}

func TestFromSelectorAll_DedupesAndResolves(t *testing.T) {
	e := FromSelectorAll(
		Finder{Selector: ".galeria img"},
		Filter{Attr: "src", AttrContains: ".jpg"},
		Getter{Attr: "src", Resolve: true},
	)
	got, err := e(context.Background(), lotPage())
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected images")
	}
	want := []string{"https://example.com/img/1.jpg", "https://example.com/img/2.jpg"}
	if len(*got) != len(want) {
		t.Fatalf("got %d urls, want %d: %v", len(*got), len(want), *got)
	}
	for i := range want {
		if (*got)[i] != want[i] {
			t.Fatalf("url %d = %q, want %q", i, (*got)[i], want[i])
		}
	}
}

func TestFromSelectorAll_EmptyIsAbsence(t *testing.T) {
	e := FromSelectorAll(Finder{Selector: ".missing"}, Filter{}, Getter{})
	got, err := e(context.Background(), lotPage())
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected absence, got %v", *got)
	}
}

func TestPipe_TransformsPresentValue(t *testing.T) {
	e := Pipe(
		FromSelector(Finder{Selector: ".info p", TextContains: "Avaliação"}, Getter{}),
		FindCurrency,
	)
	got, err := e(context.Background(), lotPage())
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if got == nil || *got != 120000 {
		t.Fatalf("got %v, want 120000", got)
	}
}

func TestPipe_AbsenceSkipsTransform(t *testing.T) {
	called := false
	e := Pipe(
		FromSelector(Finder{Selector: ".missing"}, Getter{}),
		func(s string) (*float64, error) {
			called = true
			return nil, errors.New("should not run")
		},
	)
	got, err := e(context.Background(), lotPage())
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if got != nil || called {
		t.Fatal("transform ran on absence")
	}
}

func TestPipe_PropagatesErrors(t *testing.T) {
	e := Pipe(
		FromSelector(Finder{Selector: "h1.title"}, Getter{}),
		func(s string) (*int, error) { return nil, errors.New("bad value") },
	)
	if _, err := e(context.Background(), lotPage()); err == nil {
		t.Fatal("expected error")
	}
}

func TestOr_FirstPresentWins(t *testing.T) {
	e := Or(
		FromSelector(Finder{Selector: ".missing"}, Getter{}),
		FromSelector(Finder{Selector: "h1.title"}, Getter{}),
		FromSelector(Finder{Selector: ".info p"}, Getter{}),
	)
	got, err := e(context.Background(), lotPage())
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if got == nil || *got != "Apartamento 52m² - Centro" {
		t.Fatalf("got %v", got)
	}
}

func TestOr_AllAbsentIsAbsence(t *testing.T) {
	e := Or(
		FromSelector(Finder{Selector: ".missing"}, Getter{}),
		FromSelector(Finder{Selector: ".also-missing"}, Getter{}),
	)
	got, err := e(context.Background(), lotPage())
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected absence, got %q", *got)
	}
}

func TestOr_StopsOnError(t *testing.T) {
	fallbackRan := false
	boom := func(ctx context.Context, pg *browser.Page) (*string, error) {
		return nil, errors.New("boom")
	}
	fallback := func(ctx context.Context, pg *browser.Page) (*string, error) {
		fallbackRan = true
		s := "x"
		return &s, nil
	}
	if _, err := Or(boom, fallback)(context.Background(), lotPage()); err == nil {
		t.Fatal("expected error")
	}
	if fallbackRan {
		t.Fatal("fallback ran after error")
	}
}

func TestChain(t *testing.T) {
	fn := Chain(StripLabel("Avaliação"), Currency)
	got, err := fn("Avaliação: R$ 120.000,00")
	if err != nil {
		t.Fatalf("chain failed: %v", err)
	}
	if got == nil || *got != 120000 {
		t.Fatalf("got %v, want 120000", got)
	}

	none, err := fn("Avaliação:")
	if err != nil || none != nil {
		t.Fatalf("expected absence, got %v, %v", none, err)
	}
}
