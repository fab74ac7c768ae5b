package pipeline

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"leadclean/internal/config"
)

// PhoneNormalizer turns raw phone text into E.164 when it can. valid is false
// when the number could not be understood; text is then the trimmed original.
type PhoneNormalizer interface {
	Normalize(raw string) (text string, valid bool)
}

// NewPhoneNormalizer picks the implementation named by kind.
func NewPhoneNormalizer(kind, region string) PhoneNormalizer {
	if strings.EqualFold(strings.TrimSpace(kind), config.PhoneParserHeuristic) {
		return HeuristicPhoneNormalizer{}
	}
	return LibPhoneNormalizer{Region: region}
}

// LibPhoneNormalizer validates against libphonenumber metadata.
type LibPhoneNormalizer struct {
	Region string
}

func (n LibPhoneNormalizer) Normalize(raw string) (string, bool) {
	original := strings.TrimSpace(raw)
	stripped := stripPhoneFormatting(original)
	if stripped == "" {
		return original, false
	}
	region := strings.ToUpper(n.Region)
	if region == "" {
		region = "US"
	}
	num, err := phonenumbers.Parse(stripped, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return original, false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// HeuristicPhoneNormalizer is used when metadata-backed parsing is not
// wanted: digits only, "00" becomes "+", 7 to 15 digits count as valid.
type HeuristicPhoneNormalizer struct{}

func (HeuristicPhoneNormalizer) Normalize(raw string) (string, bool) {
	original := strings.TrimSpace(raw)
	stripped := stripPhoneFormatting(original)
	plus := strings.HasPrefix(stripped, "+")
	digits := onlyDigits(stripped)
	if !plus && strings.HasPrefix(digits, "00") {
		plus = true
		digits = digits[2:]
	}
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return original, false
	}
	if plus {
		return "+" + digits, true
	}
	return digits, true
}

// stripPhoneFormatting drops separators and extension markers, keeping a
// leading plus sign.
func stripPhoneFormatting(s string) string {
	lower := strings.ToLower(s)
	for _, marker := range []string{"ext.", "ext", " x", "#"} {
		if i := strings.Index(lower, marker); i > 0 {
			s = s[:i]
			lower = lower[:i]
		}
	}
	var b strings.Builder
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case strings.ContainsRune(" -./() \t", r):
		default:
			// Letters and other symbols mean this is not a phone number.
			return ""
		}
	}
	return b.String()
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
