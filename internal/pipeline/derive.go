package pipeline

import (
	"strings"

	"leadclean/internal"
	"leadclean/internal/util"
)

// InferLastName fills an empty last name from a "first.last@" style address.
// Only a local part that splits into exactly two tokens is used.
func InferLastName(c *internal.Contact) bool {
	if strings.TrimSpace(c.LastName) != "" || c.Email == "" || !c.EmailValid {
		return false
	}
	tokens := strings.FieldsFunc(EmailLocalPart(c.Email), func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	if len(tokens) != 2 {
		return false
	}
	candidate := tokens[1]
	// Plus-addressing tags are not part of the name.
	if i := strings.Index(candidate, "+"); i >= 0 {
		candidate = candidate[:i]
	}
	if len([]rune(candidate)) < 2 || util.HasDigit(candidate) {
		return false
	}
	last, _ := NormalizePersonName(candidate)
	if last == "" {
		return false
	}
	c.RecordChange(internal.FieldLastName, c.LastName, last, internal.ChangeInferred)
	c.LastName = last
	return true
}
