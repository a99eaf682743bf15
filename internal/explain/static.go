package explain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// Lookup returns the curated lay text for symptom, if there is one.
func Lookup(symptom string) (string, bool) {
	text, ok := layTable[symptom]
	return text, ok
}

// Static explains a symptom without a model. Curated entries win; a label
// with a parenthetical gloss such as "Rhinorrhea (runny nose)" becomes
// "Runny nose."; anything else is "Plain terms: <label>.".
func Static(symptom string) string {
	if text, ok := Lookup(symptom); ok {
		return text
	}
	if gloss, ok := parenthetical(symptom); ok {
		return capitalize(gloss) + "."
	}
	return "Plain terms: " + lower.String(symptom) + "."
}

// parenthetical returns the text after the first "(" up to the last ")"
// that follows it.
func parenthetical(s string) (string, bool) {
	if !strings.Contains(s, ")") {
		return "", false
	}
	_, after, ok := strings.Cut(s, "(")
	if !ok {
		return "", false
	}
	if end := strings.LastIndex(after, ")"); end >= 0 {
		after = after[:end]
	}
	return strings.TrimSpace(after), true
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + lower.String(s[size:])
}
