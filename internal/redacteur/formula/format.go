package formula

import (
	"strings"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const DefaultLocale = "fr-FR"

const maxDecimals = 20

// Options задает отображение результата.
type Options struct {
	Format   edtypes.FormulaFormat
	Decimals int
	Currency string
	Locale   string
}

// OptionsFor возвращает параметры отображения блока.
func OptionsFor(f *edtypes.Formula, locale string) Options {
	return Options{
		Format:   f.Format,
		Decimals: f.Decimals,
		Currency: f.Currency,
		Locale:   locale,
	}
}

// Format форматирует число с учетом локали. Decimals задает одновременно
// минимальное и максимальное число знаков после запятой.
func Format(v float64, opts Options) string {
	tag := language.Make(opts.Locale)
	if opts.Locale == "" || tag == language.Und {
		tag = language.MustParse(DefaultLocale)
	}
	p := message.NewPrinter(tag)

	d := min(max(opts.Decimals, 0), maxDecimals)
	digits := []number.Option{number.MinFractionDigits(d), number.MaxFractionDigits(d)}

	switch opts.Format {
	case edtypes.FormatPercentage:
		return p.Sprint(number.Percent(v/100, digits...))
	case edtypes.FormatCurrency:
		code := strings.ToUpper(strings.TrimSpace(opts.Currency))
		if code == "" {
			code = "EUR"
		}
		amount := p.Sprint(number.Decimal(v, digits...))
		unit, err := currency.ParseISO(code)
		if err != nil {
			return amount + " " + code
		}
		symbol := p.Sprint(currency.Symbol(unit))
		if symbolFirst(tag) {
			return symbol + amount
		}
		return amount + "\u00a0" + symbol
	default:
		return p.Sprint(number.Decimal(v, digits...))
	}
}

// symbolFirst - в английской и японской/китайской типографике символ валюты идет перед суммой.
func symbolFirst(tag language.Tag) bool {
	base, _ := tag.Base()
	switch base.String() {
	case "en", "ja", "zh", "ko":
		return true
	}
	return false
}

// Display возвращает отображаемое значение блока: результат, ошибку или пустую строку.
func Display(f *edtypes.Formula, locale string) string {
	if f.Error != "" {
		return f.Error
	}
	if f.Result == nil {
		return ""
	}
	return Format(*f.Result, OptionsFor(f, locale))
}
