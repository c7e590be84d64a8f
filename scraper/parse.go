package scraper

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"leilao_scraper/models"
)

var saoPaulo = loadSaoPaulo()

func loadSaoPaulo() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		// tzdata missing on the host; Brazil dropped DST in 2019 so the
		// fixed offset is equivalent for every date we care about.
		return time.FixedZone("-03", -3*60*60)
	}
	return loc
}

var (
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	currencyRegex   = regexp.MustCompile(`^\d{1,3}(\.\d{3})*(,\d{1,2})?$|^\d+(,\d{1,2})?$`)
)

// NormalizeText collapses runs of whitespace (including NBSP) into single
// spaces and trims the result.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(multiSpaceRegex.ReplaceAllString(s, " "))
}

// CleanText is the Transform form of NormalizeText; empty text is absence.
func CleanText(s string) (*string, error) {
	out := NormalizeText(s)
	if out == "" {
		return nil, nil
	}
	return &out, nil
}

// ParseCurrency converts a Brazilian currency string ("R$ 1.234,56") to a
// number. A present-but-malformed value is an error, not absence: it usually
// means the site changed its format and someone should hear about it.
func ParseCurrency(s string) (float64, error) {
	t := NormalizeText(s)
	t = strings.TrimPrefix(t, "R$")
	t = strings.TrimSpace(t)
	if t == "" || !currencyRegex.MatchString(t) {
		return 0, fmt.Errorf("malformed currency %q", s)
	}
	t = strings.ReplaceAll(t, ".", "")
	t = strings.ReplaceAll(t, ",", ".")
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed currency %q: %w", s, err)
	}
	return v, nil
}

// FormatCurrency renders a number the way auction sites print it.
func FormatCurrency(v float64) string {
	whole := int64(v)
	cents := int64((v-float64(whole))*100 + 0.5)
	digits := strconv.FormatInt(whole, 10)

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return fmt.Sprintf("R$ %s,%02d", b.String(), cents)
}

// Currency is the Transform form of ParseCurrency; empty text is absence.
func Currency(s string) (*float64, error) {
	t := strings.TrimSpace(strings.TrimPrefix(NormalizeText(s), "R$"))
	if t == "" {
		return nil, nil
	}
	v, err := ParseCurrency(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// embeddedCurrencyRegex finds an R$ amount inside free text.
var embeddedCurrencyRegex = regexp.MustCompile(`R\$\s*\d{1,3}(?:\.\d{3})*(?:,\d{1,2})?`)

// FindCurrency pulls the first R$ amount out of free text, for sites that
// print values inside sentences ("Avaliação: R$ 120.000,00 conforme laudo").
func FindCurrency(s string) (*float64, error) {
	m := embeddedCurrencyRegex.FindString(NormalizeText(s))
	if m == "" {
		return nil, nil
	}
	v, err := ParseCurrency(m)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseDateTime interprets a wall-clock string as America/Sao_Paulo time and
// returns the corresponding UTC instant, independent of the host timezone.
func ParseDateTime(s, layout string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, NormalizeText(s), saoPaulo)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed date %q: %w", s, err)
	}
	return t.UTC(), nil
}

// DateTime builds a Transform parsing the given Go layout; empty text is
// absence, anything else must parse.
func DateTime(layout string) Transform[string, time.Time] {
	return func(s string) (*time.Time, error) {
		if NormalizeText(s) == "" {
			return nil, nil
		}
		t, err := ParseDateTime(s, layout)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
}

// dateTimeRegex finds a dd/mm/yyyy hh:mm occurrence inside free text, with or
// without the "às" connective the sites like to put between date and time.
var dateTimeRegex = regexp.MustCompile(`\d{2}/\d{2}/\d{4}(?: +às)? +\d{2}:\d{2}`)

// FindDateTime pulls the first date-time out of free text ("1ª Praça:
// 15/03/2024 às 10:00"). Text without one is absence.
func FindDateTime(s string) (*time.Time, error) {
	m := dateTimeRegex.FindString(NormalizeText(s))
	if m == "" {
		return nil, nil
	}
	m = strings.ReplaceAll(m, " às ", " ")
	t, err := ParseDateTime(m, "02/01/2006 15:04")
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// StripLabel removes a leading "Label:" marker left by label+value markup.
func StripLabel(label string) Transform[string, string] {
	return func(s string) (*string, error) {
		out := NormalizeText(s)
		out = strings.TrimSpace(strings.TrimPrefix(out, label))
		out = strings.TrimSpace(strings.TrimPrefix(out, ":"))
		if out == "" {
			return nil, nil
		}
		return &out, nil
	}
}

// caseNumberRegex matches the CNJ unified numbering format.
var caseNumberRegex = regexp.MustCompile(`\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4}`)

// CaseNumber extracts a CNJ case number from surrounding text; text without
// one is absence, since many lots publish the case link but not the number.
func CaseNumber(s string) (*string, error) {
	m := caseNumberRegex.FindString(s)
	if m == "" {
		return nil, nil
	}
	return &m, nil
}

// StatusMap builds a Transform mapping a site's status wording onto the
// canonical enum. Longer vocabulary entries win over shorter ones so
// "leilão encerrado" is not swallowed by "leilão". Unmapped text is logged
// and mapped to unknown; one unexpected label must never abort a fetch.
func StatusMap(vocab map[string]models.AuctionStatus) Transform[string, models.AuctionStatus] {
	lowered := make(map[string]models.AuctionStatus, len(vocab))
	keys := make([]string, 0, len(vocab))
	for k, v := range vocab {
		lk := strings.ToLower(k)
		lowered[lk] = v
		keys = append(keys, lk)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	return func(s string) (*models.AuctionStatus, error) {
		normalized := strings.ToLower(NormalizeText(s))
		if normalized == "" {
			return nil, nil
		}
		for _, k := range keys {
			if strings.Contains(normalized, k) {
				st := lowered[k]
				return &st, nil
			}
		}
		log.Printf("Error: unmapped auction status %q", s)
		st := models.StatusUnknown
		return &st, nil
	}
}
