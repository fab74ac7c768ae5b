package ingest

import (
	"strings"

	"leadclean/internal"
	"leadclean/internal/util"
)

// headerAliases lists the accepted spellings of each canonical column.
var headerAliases = map[string][]string{
	internal.FieldFirstName: {"first name", "firstname", "first", "given name", "forename", "fname"},
	internal.FieldLastName:  {"last name", "lastname", "last", "surname", "family name", "lname"},
	internal.FieldEmail:     {"email", "e-mail", "mail", "email address", "e-mail address", "work email", "business email"},
	internal.FieldPhone:     {"phone", "phone number", "telephone", "tel", "mobile", "mobile phone", "direct phone", "work phone"},
	internal.FieldCompany:   {"company", "company name", "organization", "organisation", "account name", "employer"},
	internal.FieldJobTitle:  {"job title", "title", "position", "role", "designation", "jobtitle"},
}

var aliasIndex = func() map[string]string {
	idx := map[string]string{}
	for field, aliases := range headerAliases {
		for _, a := range aliases {
			idx[headerKey(a)] = field
		}
		idx[headerKey(field)] = field
	}
	return idx
}()

func headerKey(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.NewReplacer("_", " ", "-", " ").Replace(h)
	return strings.ToLower(util.NormalizeSpaces(h))
}

// ResolveHeader maps a column header to its canonical field name. Unknown
// headers come back trimmed and unchanged.
func ResolveHeader(h string) string {
	if field, ok := aliasIndex[headerKey(h)]; ok {
		return field
	}
	return util.NormalizeSpaces(strings.TrimPrefix(h, "\ufeff"))
}

// ResolveHeaders maps a header row. When two columns resolve to the same
// canonical field, only the first keeps it.
func ResolveHeaders(headers []string) []string {
	out := make([]string, len(headers))
	taken := map[string]bool{}
	for i, h := range headers {
		name := ResolveHeader(h)
		if internal.IsCanonicalField(name) && taken[name] {
			name = util.NormalizeSpaces(h)
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

// hasKnownColumn reports whether a header row names at least one field the
// pipeline understands.
func hasKnownColumn(headers []string) bool {
	for _, h := range ResolveHeaders(headers) {
		if internal.IsCanonicalField(h) {
			return true
		}
	}
	return false
}
