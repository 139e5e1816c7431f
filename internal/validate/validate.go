package validate

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reCrop  = regexp.MustCompile(`^[\p{L}0-9][\p{L}0-9 '()-]{0,59}$`)
	reGrade = regexp.MustCompile(`^[A-Za-z0-9+-]{0,8}$`)
)

// maxAmount caps quantities and prices to keep totals in a sane range.
var maxAmount = decimal.NewFromInt(1_000_000_000)

// maxScale is the number of fractional digits an amount may carry.
const maxScale = 6

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID validates a simple resource identifier (crop/demand/deal ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// CropName trims surrounding space only. Case is kept as typed because
// matching compares names exactly.
func CropName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reCrop.MatchString(s)
}

func Grade(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reGrade.MatchString(s)
}

// Date accepts an empty string or YYYY-MM-DD.
func Date(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", false
	}
	return s, true
}

// bounded rejects exponents far outside the accepted range before any
// arithmetic, then requires at most maxScale fractional digits.
func bounded(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > 9 || exp < -3*maxScale {
		return false
	}
	return d.LessThanOrEqual(maxAmount) && d.Equal(d.Round(maxScale))
}

// Positive accepts decimal amounts in (0, maxAmount] with at most six
// fractional digits.
func Positive(d decimal.Decimal) bool {
	return d.IsPositive() && bounded(d)
}

// NonNegative accepts decimal amounts in [0, maxAmount] with at most six
// fractional digits.
func NonNegative(d decimal.Decimal) bool {
	return !d.IsNegative() && bounded(d)
}

// Message trims free text and reports whether it fits.
func Message(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= 500
}

// Password enforces a simple length window for login checks.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 20 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
