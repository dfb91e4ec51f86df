// Package locale provides the bundled vocabularies used to compose song
// metadata.
//
// The set of locales is closed: English (the default), German and
// Ukrainian. Requests for anything else resolve to English at the boundary
// via [Resolve]; generation code only ever sees a valid [Locale].
//
// Word lists ship as YAML files embedded into the binary. They are parsed,
// validated and frozen once by [Load] or [MustLoad] and shared read-only by
// every generation call afterwards.
package locale

import (
	"strings"
)

// Locale is a supported vocabulary.
type Locale uint8

// Supported locales.
const (
	English Locale = iota
	German
	Ukrainian

	numLocales
)

// Default is the locale every unknown request resolves to.
const Default = English

// all lists supported locales in declaration order.
var all = [numLocales]Locale{English, German, Ukrainian}

// Supported returns every supported locale, default first.
func Supported() []Locale {
	out := make([]Locale, len(all))
	copy(out, all[:])
	return out
}

// Code returns the short language code ("en", "de", "uk").
func (l Locale) Code() string {
	switch l {
	case English:
		return "en"
	case German:
		return "de"
	case Ukrainian:
		return "uk"
	}
	return Default.Code()
}

// Tag returns the regional tag of the locale ("en_US", "de_DE", "uk_UA").
func (l Locale) Tag() string {
	switch l {
	case English:
		return "en_US"
	case German:
		return "de_DE"
	case Ukrainian:
		return "uk_UA"
	}
	return Default.Tag()
}

// String returns the short code.
func (l Locale) String() string {
	return l.Code()
}

// Resolve maps a requested locale code to a supported locale.
//
// Codes are matched case-insensitively by language, with an optional region
// separated by '_' or '-': "en", "EN", "en_US", "en-GB" all resolve to
// English. Unknown or empty codes resolve to [Default].
func Resolve(requested string) Locale {
	lang := strings.ToLower(strings.TrimSpace(requested))
	if i := strings.IndexAny(lang, "_-"); i >= 0 {
		lang = lang[:i]
	}
	for _, l := range all {
		if l.Code() == lang {
			return l
		}
	}
	return Default
}
