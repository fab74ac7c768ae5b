package util

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces = regexp.MustCompile(`\s+`)

	// Byte sequences left behind when UTF-8 text was decoded as a single-byte codepage.
	mojibakeMarkers = []string{"Ã", "Â", "â€", "Å", "Ä"}

	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

func NormalizeSpaces(input string) string {
	s := strings.ReplaceAll(input, "\u00a0", " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// RepairEncoding undoes the common "UTF-8 read as Latin-1" damage, e.g.
// "JosÃ©" -> "José". Input that does not round-trip cleanly is returned as is.
func RepairEncoding(input string) string {
	if !hasMojibake(input) {
		return input
	}
	for _, cm := range []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1} {
		raw, err := cm.NewEncoder().String(input)
		if err != nil {
			continue
		}
		if utf8.ValidString(raw) && raw != input {
			return raw
		}
	}
	return input
}

func hasMojibake(s string) bool {
	for _, m := range mojibakeMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// StripDiacritics removes combining marks: "Müller" -> "Muller".
func StripDiacritics(input string) string {
	out, _, err := transform.String(stripMarks, input)
	if err != nil {
		return input
	}
	return out
}

// FoldKey is the comparison form of a display value: no diacritics,
// lower-case, single spaces.
func FoldKey(input string) string {
	return strings.ToLower(NormalizeSpaces(StripDiacritics(input)))
}

// Clean applies the hygiene steps shared by all free-text fields.
func Clean(input string) string {
	return NormalizeSpaces(RepairEncoding(input))
}

func IsAllUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters > 0
}

func IsAllLower(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsLower(r) {
				return false
			}
		}
	}
	return letters > 0
}

// UniformCase reports input that carries no casing information of its own.
func UniformCase(s string) bool {
	return IsAllUpper(s) || IsAllLower(s)
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(word string) string {
	if word == "" {
		return word
	}
	r, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}

// TitleCase capitalizes every space-separated word.
func TitleCase(input string) string {
	words := strings.Split(input, " ")
	for i, w := range words {
		words[i] = Capitalize(w)
	}
	return strings.Join(words, " ")
}

func HasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
