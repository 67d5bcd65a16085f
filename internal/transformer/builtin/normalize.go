// Package builtin contains the cleaning stages of the housing pipeline:
// Normalize, Impute, Outliers, DeDup and Derive. Each stage works on the
// whole table in place and never fails on an individual malformed value;
// such values become nil and are counted in the report.
package builtin

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"housing-etl/internal/housing"
	"housing-etl/internal/table"
	"housing-etl/internal/transformer"
)

var (
	digitRun    = regexp.MustCompile(`\p{Nd}+`)
	priceNumber = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

	lower = cases.Lower(language.Und)
	upper = cases.Upper(language.Und)

	priceNoise = strings.NewReplacer("₹", "", "$", "")
)

// Crore is the number of base currency units in one crore.
const Crore = 1e7

// StandardizeConfiguration turns labels such as "3bhk", "3-BHK" or "3 BHK"
// into "3BHK". Labels without digits are returned upper-cased with
// punctuation removed. nil passes through.
func StandardizeConfiguration(v any) any {
	s, ok := text(v)
	if !ok {
		return nil
	}
	s = lower.String(norm.NFKC.String(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
	if d := digitRun.FindString(s); d != "" {
		return canonicalInt(asciiDigits(d)) + "BHK"
	}
	return upper.String(s)
}

// ExtractBedrooms returns the first digit run of a configuration label as an
// int64, or nil when there is none. Digits of any script count.
func ExtractBedrooms(v any) any {
	s, ok := text(v)
	if !ok {
		return nil
	}
	d := digitRun.FindString(s)
	if d == "" {
		return nil
	}
	n, err := strconv.ParseInt(asciiDigits(d), 10, 64)
	if err != nil {
		return nil
	}
	return n
}

// ParseTicketPrice converts a price such as "₹1.5 Cr", "85 Lakh" or
// "1,20,00,000" into crore. The unit is taken from the text when present
// ("cr"/"crore" or "lakh"/"lac"); a bare number above 1000 is read as a raw
// currency amount, anything else as crore already. Unparseable input is nil.
func ParseTicketPrice(v any) any {
	s, ok := text(v)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(strings.ReplaceAll(strings.ToLower(s), ",", ""))
	s = priceNoise.Replace(s)
	if s == "" || s == "nan" || s == "none" {
		return nil
	}
	m := priceNumber.FindString(s)
	if m == "" {
		return nil
	}
	val, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	switch {
	case strings.Contains(s, "cr"):
		return val
	case strings.Contains(s, "lakh") || strings.Contains(s, "lac"):
		return val / 100
	case val > 1000:
		return val / Crore
	default:
		return val
	}
}

// ParseYesNo maps "yes"/"no" in any case to true/false. Anything else,
// including surrounding whitespace, is nil.
func ParseYesNo(v any) any {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	switch strings.ToLower(s) {
	case "yes":
		return true
	case "no":
		return false
	default:
		return nil
	}
}

// Normalize rewrites Configuration, Ticket_Price_Cr and NRI_Buyer into their
// canonical forms and appends Bedrooms.
type Normalize struct{}

func (Normalize) Name() string { return "normalize" }

func (Normalize) Apply(ctx context.Context, t *table.Table, rep *transformer.Report) error {
	cfg, err := requireColumn(t, housing.Configuration)
	if err != nil {
		return err
	}
	price, err := requireColumn(t, housing.TicketPriceCr)
	if err != nil {
		return err
	}
	nri, err := requireColumn(t, housing.NRIBuyer)
	if err != nil {
		return err
	}

	beds := t.AddColumn(table.Column{Name: housing.Bedrooms, Type: table.TypeInt})
	t.SetType(cfg, table.TypeText)
	t.SetType(price, table.TypeFloat)
	t.SetType(nri, table.TypeBool)

	var cfgFail, priceFail, nriFail int
	for r := 0; r < t.Len(); r++ {
		if r%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		row := t.Row(r)

		raw := row[cfg]
		c := StandardizeConfiguration(raw)
		row[cfg] = c
		row[beds] = ExtractBedrooms(c)
		if c != nil && row[beds] == nil {
			cfgFail++
		}

		raw = row[price]
		row[price] = ParseTicketPrice(raw)
		if present(raw) && row[price] == nil {
			priceFail++
		}

		raw = row[nri]
		row[nri] = ParseYesNo(raw)
		if present(raw) && row[nri] == nil {
			nriFail++
		}
	}
	rep.ParseFailed(housing.Configuration, cfgFail)
	rep.ParseFailed(housing.TicketPriceCr, priceFail)
	rep.ParseFailed(housing.NRIBuyer, nriFail)
	return nil
}

// text renders a cell as the string a parser should look at. Numbers are
// printed without an exponent so that digit extraction sees every digit.
func text(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case float64:
		if math.IsNaN(x) {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		if math.IsNaN(float64(x)) {
			return "", false
		}
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return "", false
		}
		return s, true
	}
}

// asciiDigits rewrites a run of decimal digits from any script ("३", "٣")
// as ASCII. Every range of unicode.Nd is a sequence of whole 0-9 blocks, so a
// digit's value is its offset from the range start modulo 10.
func asciiDigits(d string) string {
	var b strings.Builder
	b.Grow(len(d))
	for _, r := range d {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(byte('0' + digitValue(r)))
	}
	return b.String()
}

func digitValue(r rune) int {
	for _, rg := range unicode.Nd.R16 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return int(r-lo) % 10
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return int(r-lo) % 10
		}
	}
	return 0
}

// canonicalInt drops leading zeros from a digit run, keeping a single "0".
func canonicalInt(d string) string {
	d = strings.TrimLeft(d, "0")
	if d == "" {
		return "0"
	}
	return d
}

func present(v any) bool {
	s, ok := text(v)
	return ok && s != ""
}

func requireColumn(t *table.Table, name string) (int, error) {
	i, ok := t.Index(name)
	if !ok {
		return 0, missing(name)
	}
	return i, nil
}
