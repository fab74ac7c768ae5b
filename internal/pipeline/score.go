package pipeline

import (
	"strings"

	"leadclean/internal"
)

const (
	pointsEmail     = 30
	pointsFirstName = 20
	pointsLastName  = 20
	pointsCompany   = 15
	pointsPhone     = 15
)

// Score is the additive 0-100 completeness score of a contact's current fields.
func Score(c internal.Contact) int {
	score := 0
	if c.EmailValid {
		score += pointsEmail
	}
	if strings.TrimSpace(c.FirstName) != "" {
		score += pointsFirstName
	}
	if strings.TrimSpace(c.LastName) != "" {
		score += pointsLastName
	}
	if strings.TrimSpace(c.Company) != "" {
		score += pointsCompany
	}
	if c.PhoneValid {
		score += pointsPhone
	}
	return score
}

func rescore(c *internal.Contact) {
	c.QualityScore = Score(*c)
}
