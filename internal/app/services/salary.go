package services

import (
	"strconv"
	"strings"

	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

const (
	// SalaryNegotiable is shown instead of bounds for negotiable salaries
	SalaryNegotiable = "Thương lượng"
	// DefaultCurrency applies when a job does not name one
	DefaultCurrency = "VND"
)

// ParseAmount parses a salary bound written with optional comma thousands
// separators. An empty string yields nil.
func ParseAmount(raw string) (*int64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return nil, nil
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return nil, apperrors.NewValidationError("salary", "salary must be a non-negative whole number")
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.NewValidationError("salary", "salary is out of range")
	}
	return &n, nil
}

// groupThousands formats n with comma separators: 15000000 -> 15,000,000
func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatSalary renders the stored salary text of a job
func FormatSalary(lo, hi *int64, currency string, negotiable bool) string {
	if negotiable {
		return SalaryNegotiable
	}
	currency = strings.TrimSpace(currency)
	if currency == "" {
		currency = DefaultCurrency
	}

	switch {
	case lo != nil && hi != nil:
		return groupThousands(*lo) + " - " + groupThousands(*hi) + " " + currency
	case lo != nil:
		return "Từ " + groupThousands(*lo) + " " + currency
	case hi != nil:
		return "Đến " + groupThousands(*hi) + " " + currency
	}
	return ""
}

// SalaryDisplay parses the raw bounds and formats them, rejecting min > max
func SalaryDisplay(minRaw, maxRaw, currency string, negotiable bool) (string, error) {
	if negotiable {
		return SalaryNegotiable, nil
	}
	lo, err := ParseAmount(minRaw)
	if err != nil {
		return "", err
	}
	hi, err := ParseAmount(maxRaw)
	if err != nil {
		return "", err
	}
	if lo != nil && hi != nil && *lo > *hi {
		return "", apperrors.NewValidationError("salaryMax", "maximum salary must not be below the minimum")
	}
	return FormatSalary(lo, hi, currency, false), nil
}
