package scraper

import (
	"testing"
	"time"

	"leilao_scraper/models"
)

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"R$ 1.234,56", 1234.56},
		{"R$1.234,56", 1234.56},
		{"1.234,56", 1234.56},
		{"R$ 120.000,00", 120000},
		{"R$ 85,50", 85.5},
		{"R$ 1.234.567,89", 1234567.89},
		{"42", 42},
	}
	for _, c := range cases {
		got, err := ParseCurrency(c.in)
		if err != nil {
			t.Fatalf("ParseCurrency(%q) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseCurrency(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseCurrency_Malformed(t *testing.T) {
	for _, in := range []string{"abc", "R$ abc", "R$ 12,345.67", ""} {
		if _, err := ParseCurrency(in); err == nil {
			t.Fatalf("ParseCurrency(%q) should have failed", in)
		}
	}
}

func TestFormatCurrency_RoundTrip(t *testing.T) {
	got := FormatCurrency(1234.56)
	if got != "R$ 1.234,56" {
		t.Fatalf("FormatCurrency(1234.56) = %q", got)
	}
	back, err := ParseCurrency(got)
	if err != nil {
		t.Fatalf("round trip parse failed: %v", err)
	}
	if back != 1234.56 {
		t.Fatalf("round trip = %v, want 1234.56", back)
	}
}

func TestCurrency_EmptyIsAbsence(t *testing.T) {
	v, err := Currency("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Fatalf("expected absence, got %v", *v)
	}
}

func TestParseDateTime_SaoPauloToUTC(t *testing.T) {
	// São Paulo is UTC-3 year round since 2019.
	got, err := ParseDateTime("15/03/2024 10:00", "02/01/2006 15:04")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Fatalf("result not in UTC: %v", got.Location())
	}
}

func TestFindDateTime(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"1ª Praça: 15/03/2024 às 10:00 - Lance mínimo R$ 100,00", time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC)},
		{"2º Leilão 01/12/2024 14:30", time.Date(2024, 12, 1, 17, 30, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := FindDateTime(c.in)
		if err != nil {
			t.Fatalf("FindDateTime(%q) failed: %v", c.in, err)
		}
		if got == nil {
			t.Fatalf("FindDateTime(%q) found nothing", c.in)
		}
		if !got.Equal(c.want) {
			t.Fatalf("FindDateTime(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	none, err := FindDateTime("encerrado")
	if err != nil || none != nil {
		t.Fatalf("expected absence for text without a date, got %v, %v", none, err)
	}
}

func TestFindCurrency(t *testing.T) {
	v, err := FindCurrency("Avaliação: R$ 120.000,00 conforme laudo")
	if err != nil {
		t.Fatalf("FindCurrency failed: %v", err)
	}
	if v == nil || *v != 120000 {
		t.Fatalf("got %v, want 120000", v)
	}

	none, err := FindCurrency("sem valor definido")
	if err != nil || none != nil {
		t.Fatalf("expected absence, got %v, %v", none, err)
	}
}

func TestNormalizeText(t *testing.T) {
	in := "  Rua das   Flores,\n\t123  "
	if got := NormalizeText(in); got != "Rua das Flores, 123" {
		t.Fatalf("NormalizeText = %q", got)
	}
}

func TestStripLabel(t *testing.T) {
	out, err := StripLabel("Localização")("Localização: Av. Paulista, 1000 - São Paulo/SP")
	if err != nil {
		t.Fatalf("StripLabel failed: %v", err)
	}
	if out == nil || *out != "Av. Paulista, 1000 - São Paulo/SP" {
		t.Fatalf("got %v", out)
	}
}

func TestCaseNumber(t *testing.T) {
	got, err := CaseNumber("Processo nº 1234567-89.2023.8.26.0100 da 2ª Vara Cível")
	if err != nil {
		t.Fatalf("CaseNumber failed: %v", err)
	}
	if got == nil || *got != "1234567-89.2023.8.26.0100" {
		t.Fatalf("got %v", got)
	}

	none, err := CaseNumber("sem processo informado")
	if err != nil || none != nil {
		t.Fatalf("expected absence, got %v, %v", none, err)
	}
}

func TestStatusMap_LongestKeyWins(t *testing.T) {
	fn := StatusMap(map[string]models.AuctionStatus{
		"leilão":           models.StatusOpenForBids,
		"leilão encerrado": models.StatusClosed,
	})

	got, err := fn("Leilão Encerrado")
	if err != nil {
		t.Fatalf("StatusMap failed: %v", err)
	}
	if got == nil || *got != models.StatusClosed {
		t.Fatalf("got %v, want closed", got)
	}
}

func TestStatusMap_UnmappedIsUnknown(t *testing.T) {
	fn := StatusMap(defaultStatusVocab)
	got, err := fn("alguma coisa nova")
	if err != nil {
		t.Fatalf("StatusMap failed: %v", err)
	}
	if got == nil || *got != models.StatusUnknown {
		t.Fatalf("got %v, want unknown", got)
	}
}

func TestStatusMap_EmptyIsAbsence(t *testing.T) {
	fn := StatusMap(defaultStatusVocab)
	got, err := fn("   ")
	if err != nil || got != nil {
		t.Fatalf("expected absence, got %v, %v", got, err)
	}
}
