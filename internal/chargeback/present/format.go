package present

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/chargedesk/internal/chargeback/domain"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultCurrency   = "USD"
	DefaultDateLayout = "Jan 2, 2006"
)

var (
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvalidScore    = errors.New("invalid_fraud_score")
)

// displayLocale is fixed; month names come from the time package and are
// always English, so grouping follows the same locale.
var displayLocale = language.AmericanEnglish

// en-US symbols for the currencies the platform settles in. Other valid ISO
// codes render with the code as prefix.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "CN¥",
	"INR": "₹",
	"KRW": "₩",
	"CAD": "CA$",
	"AUD": "A$",
	"NZD": "NZ$",
	"HKD": "HK$",
	"MXN": "MX$",
	"BRL": "R$",
	"ILS": "₪",
	"PHP": "₱",
	"VND": "₫",
	"TWD": "NT$",
}

// FormatMoney renders amount in the given ISO 4217 currency using en-US
// grouping and the currency's standard minor-unit scale. An empty code
// defaults to USD.
func FormatMoney(amount float64, code string) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "", ErrInvalidAmount
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	scale, _ := currency.Standard.Rounding(unit)

	value := decimal.NewFromFloat(amount).Round(int32(scale))
	negative := value.IsNegative()
	value = value.Abs()

	printer := message.NewPrinter(displayLocale)
	out := printer.Sprintf("%d", value.Truncate(0).IntPart())
	if scale > 0 {
		fixed := value.StringFixed(int32(scale))
		if idx := strings.IndexByte(fixed, '.'); idx >= 0 {
			out += fixed[idx:]
		}
	}

	symbol, ok := currencySymbols[unit.String()]
	if !ok {
		symbol = unit.String() + " "
	}
	out = symbol + out
	if negative {
		out = "-" + out
	}
	return out, nil
}

// FormatDate renders a store date as "Jan 2, 2006", truncated to the day.
func FormatDate(value string) (string, error) {
	parsed, err := domain.ParseStoreTime(value)
	if err != nil {
		return "", err
	}
	return parsed.Format(DefaultDateLayout), nil
}

// FormatFraudScore renders a ratio as a whole percentage. Values outside
// [0,1] are rendered as given.
func FormatFraudScore(score float64) (string, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return "", ErrInvalidScore
	}
	return fmt.Sprintf("%d%%", int64(math.Round(score*100))), nil
}

// HumanizeLabel turns a raw snake_case value into a display label.
func HumanizeLabel(raw string) string {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "_", " "))
	if raw == "" {
		return ""
	}
	words := strings.Fields(raw)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
