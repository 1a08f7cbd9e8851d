package aggregate

import (
	"golang.org/x/text/language"
)

// MonthNames maps a month (index 0 is January) to its abbreviated name.
type MonthNames [12]string

// Name returns the abbreviation of m.
func (n MonthNames) Name(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return n[m-1]
}

var (
	PortugueseMonths = MonthNames{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}
	EnglishMonths    = MonthNames{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	SpanishMonths    = MonthNames{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}
)

var (
	supportedLocales = []language.Tag{language.BrazilianPortuguese, language.English, language.Spanish}
	localeMonths     = []MonthNames{PortugueseMonths, EnglishMonths, SpanishMonths}
	localeMatcher    = language.NewMatcher(supportedLocales)
)

// MonthNamesFor picks the month names closest to the given locale
// ("pt-BR", "en-US", "es"). Unknown or empty locales get Portuguese.
func MonthNamesFor(locale string) MonthNames {
	if locale == "" {
		return PortugueseMonths
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return PortugueseMonths
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return PortugueseMonths
	}
	return localeMonths[idx]
}
