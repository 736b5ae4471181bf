package prompts

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jinzhu/inflection"
)

// PluralizeEnglish returns the English plural of an occupation ("baker" -> "bakers")
func PluralizeEnglish(occupation string) string {
	return inflection.Plural(occupation)
}

// PluralizeGerman derives a dative plural from the genitive singular found in
// the direct prompts ("Bäckers" -> "Bäckern"). The rules are approximate and
// the output is meant to be reviewed.
func PluralizeGerman(occupation string) string {
	last, _ := utf8.DecodeLastRuneInString(occupation)
	if last == utf8.RuneError {
		return occupation
	}

	if last == 'n' {
		return occupation
	}
	for _, suffix := range []string{"tors", "kars", "iers", "tivs"} {
		if strings.HasSuffix(occupation, suffix) {
			return strings.TrimSuffix(occupation, "s") + "en"
		}
	}
	if last == 's' {
		switch {
		case strings.HasSuffix(occupation, "eurs"):
			return strings.TrimSuffix(occupation, "s") + "en"
		case strings.HasSuffix(occupation, "manns"):
			return strings.TrimSuffix(occupation, "manns") + "männern"
		default:
			return strings.TrimSuffix(occupation, "s") + "n"
		}
	}
	if unicode.IsUpper(last) {
		return occupation + "s"
	}
	return occupation + "n"
}
