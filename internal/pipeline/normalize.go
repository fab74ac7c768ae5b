package pipeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"leadclean/internal/lookup"
	"leadclean/internal/util"
)

// lowerParticles stay lower-case inside a name unless they open it.
var lowerParticles = map[string]struct{}{
	"van": {}, "von": {}, "de": {}, "da": {}, "del": {}, "della": {},
	"der": {}, "den": {}, "di": {}, "du": {}, "la": {}, "le": {}, "dos": {}, "das": {},
}

// NormalizePersonName cleans a first or last name.
func NormalizePersonName(raw string) (string, bool) {
	clean := util.Clean(raw)
	if util.UniformCase(clean) {
		clean = caseName(clean)
	}
	return clean, clean != raw
}

func caseName(name string) string {
	words := strings.Split(strings.ToLower(name), " ")
	for i, w := range words {
		if _, ok := lowerParticles[w]; ok && i > 0 {
			continue
		}
		words[i] = caseNameWord(w)
	}
	return strings.Join(words, " ")
}

// caseNameWord capitalizes each hyphen/apostrophe separated part and the
// letter after a "Mc" prefix.
func caseNameWord(word string) string {
	var b strings.Builder
	upperNext := true
	for i, r := range word {
		switch {
		case r == '-' || r == '\'' || r == '’':
			b.WriteRune(r)
			upperNext = true
			continue
		case upperNext:
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(r)
		}
		upperNext = false
		if r == 'c' && i == 1 && strings.HasPrefix(word, "mc") && utf8.RuneCountInString(word) > 2 {
			upperNext = true
		}
	}
	return b.String()
}

type suffixForm struct {
	pattern *regexp.Regexp
	form    string
}

// corporateSuffixes canonicalize punctuation variants of legal suffixes.
// The suffix is kept, only its spelling changes.
var corporateSuffixes = func() []suffixForm {
	table := []struct{ expr, form string }{
		{`l\.?\s?l\.?\s?c\.?`, "LLC"},
		{`l\.?\s?l\.?\s?p\.?`, "LLP"},
		{`inc\.?`, "Inc"},
		{`corp\.?`, "Corp"},
		{`ltd\.?`, "Ltd"},
		{`co\.?`, "Co"},
		{`plc\.?`, "PLC"},
		{`gmbh\.?`, "GmbH"},
		{`ag\.?`, "AG"},
		{`s\.?\s?a\.?`, "SA"},
		{`b\.?\s?v\.?`, "BV"},
		{`n\.?\s?v\.?`, "NV"},
		{`pty\.?`, "Pty"},
	}
	out := make([]suffixForm, 0, len(table))
	for _, s := range table {
		out = append(out, suffixForm{
			pattern: regexp.MustCompile(`(?i)(^|[\s,])` + s.expr + `$`),
			form:    s.form,
		})
	}
	return out
}()

var (
	reCompanyNoise  = regexp.MustCompile(`[^\p{L}\p{N}\s&\-'’.,+/]`)
	reTrailingComma = regexp.MustCompile(`[\s,]+$`)
)

// CompanyNormalizer resolves known variants and tidies the rest.
type CompanyNormalizer struct {
	Resolver      *lookup.Resolver
	FuzzyDistance int
}

func (n CompanyNormalizer) Normalize(raw string) (string, bool) {
	clean := util.Clean(raw)
	if clean == "" {
		return "", raw != ""
	}
	if canonical, ok := n.Resolver.LookupFuzzy(clean, n.FuzzyDistance); ok {
		return canonical, canonical != raw
	}

	clean = util.NormalizeSpaces(reCompanyNoise.ReplaceAllString(clean, " "))
	if util.UniformCase(clean) {
		clean = util.TitleCase(strings.ToLower(clean))
	}
	clean = canonicalSuffix(clean)
	clean = strings.Trim(reTrailingComma.ReplaceAllString(clean, ""), " ")
	return clean, clean != raw
}

// canonicalSuffix rewrites a trailing legal suffix and drops the comma
// in front of it: "Acme, inc." -> "Acme Inc".
func canonicalSuffix(name string) string {
	for _, s := range corporateSuffixes {
		loc := s.pattern.FindStringIndex(name)
		if loc == nil {
			continue
		}
		head := strings.TrimRight(name[:loc[0]], " ,")
		if head == "" {
			return s.form
		}
		return head + " " + s.form
	}
	return name
}

var reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail lowercases and trims an address, dropping "mailto:" and
// angle brackets.
func NormalizeEmail(raw string) (string, bool) {
	clean := strings.ToLower(strings.TrimSpace(raw))
	clean = strings.TrimPrefix(clean, "mailto:")
	clean = strings.TrimSpace(strings.Trim(clean, "<>"))
	return clean, clean != raw
}

// ValidEmail applies the permissive local@domain.tld rule.
func ValidEmail(email string) bool {
	if !reEmail.MatchString(email) {
		return false
	}
	domain := EmailDomain(email)
	return !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".") && !strings.Contains(domain, "..")
}

func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return email[at+1:]
}

func EmailLocalPart(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at]
}
