package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"leadclean/internal/util"
)

var defaultAbbreviations = map[string]string{
	"VP":    "Vice President",
	"SVP":   "Senior Vice President",
	"EVP":   "Executive Vice President",
	"AVP":   "Assistant Vice President",
	"Sr":    "Senior",
	"Jr":    "Junior",
	"Dir":   "Director",
	"Mgr":   "Manager",
	"Mngr":  "Manager",
	"Mgmt":  "Management",
	"Asst":  "Assistant",
	"Assoc": "Associate",
	"Exec":  "Executive",
	"Admin": "Administrator",
	"Acct":  "Account",
	"Coord": "Coordinator",
	"Rep":   "Representative",
	"Engr":  "Engineer",
	"Mktg":  "Marketing",
	"Ops":   "Operations",
	"Dept":  "Department",
	"Intl":  "International",
	"Natl":  "National",
	"HR":    "Human Resources",
	"Biz":   "Business",
}

// titleAcronyms keep their capitals when an all-caps or all-lower title is recased.
var titleAcronyms = map[string]struct{}{
	"ceo": {}, "cfo": {}, "cto": {}, "coo": {}, "cmo": {}, "cio": {}, "ciso": {}, "cro": {},
	"it": {}, "qa": {}, "ux": {}, "ui": {}, "pr": {}, "emea": {}, "apac": {}, "b2b": {},
}

// TitleExpander expands abbreviations in job titles. Matching is whole-word
// and case-insensitive; a trailing dot after the abbreviation is consumed.
type TitleExpander struct {
	pattern   *regexp.Regexp
	expansion map[string]string
}

// NewTitleExpander builds the expander from the built-in table with extra
// entries layered on top. An empty expansion removes a built-in entry.
func NewTitleExpander(extra map[string]string) *TitleExpander {
	table := map[string]string{}
	for k, v := range defaultAbbreviations {
		table[strings.ToLower(k)] = v
	}
	for k, v := range extra {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		if strings.TrimSpace(v) == "" {
			delete(table, key)
			continue
		}
		table[key] = strings.TrimSpace(v)
	}

	t := &TitleExpander{expansion: table}
	if len(table) == 0 {
		return t
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, regexp.QuoteMeta(k))
	}
	// Longest first so "svp" wins over "vp" at the same position.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	t.pattern = regexp.MustCompile(`(?i)\b(` + strings.Join(keys, "|") + `)\b\.?`)
	return t
}

func (t *TitleExpander) Normalize(raw string) (string, bool) {
	clean := util.Clean(raw)
	if util.UniformCase(clean) {
		clean = caseTitle(clean)
	}
	if t != nil && t.pattern != nil {
		clean = t.pattern.ReplaceAllStringFunc(clean, func(m string) string {
			key := strings.ToLower(strings.TrimSuffix(m, "."))
			if exp, ok := t.expansion[key]; ok {
				return exp
			}
			return m
		})
	}
	return clean, clean != raw
}

func caseTitle(title string) string {
	words := strings.Split(strings.ToLower(title), " ")
	for i, w := range words {
		if _, ok := titleAcronyms[strings.Trim(w, ",.;:()/")]; ok {
			words[i] = strings.ToUpper(w)
			continue
		}
		words[i] = util.Capitalize(w)
	}
	return strings.Join(words, " ")
}
