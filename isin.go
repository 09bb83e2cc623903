package reportprep

import (
	"fmt"
	"regexp"
	"strings"
)

// isinRegex checks for the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// NormalizeISIN trims surrounding spaces and uppercases s.
func NormalizeISIN(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// ValidateISIN checks if a normalized string is a valid ISIN (ISO 6166).
// It returns nil if valid, or a descriptive error if invalid.
func ValidateISIN(isin string) error {
	if isin == "" {
		return fmt.Errorf("empty identifier")
	}
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}
	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}

	// Letters expand to two digits (A=10 ... Z=35), digits stay as they are.
	var digits strings.Builder
	for _, char := range isin {
		if char >= 'A' && char <= 'Z' {
			fmt.Fprintf(&digits, "%d", char-'A'+10)
		} else {
			digits.WriteRune(char)
		}
	}

	// Luhn over the whole string, check digit included.
	sum := 0
	s := digits.String()
	for i := 0; i < len(s); i++ {
		digit := int(s[len(s)-1-i] - '0')
		if i%2 == 1 {
			digit *= 2
		}
		sum += digit/10 + digit%10
	}
	if sum%10 != 0 {
		return fmt.Errorf("invalid check digit %c", isin[11])
	}
	return nil
}

// IsISIN reports whether raw is a valid ISIN once normalized.
func IsISIN(raw string) bool { return ValidateISIN(NormalizeISIN(raw)) == nil }

// Dedupe returns items without repetitions, in first occurrence order, and
// the number of dropped duplicates.
func Dedupe(items []string) (unique []string, duplicates int) {
	seen := make(map[string]struct{}, len(items))
	unique = make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			duplicates++
			continue
		}
		seen[item] = struct{}{}
		unique = append(unique, item)
	}
	return unique, duplicates
}

// Rejection is a raw identifier refused by ValidateISIN.
type Rejection struct {
	Raw    string
	Reason string
}

// Screening is the outcome of Screen.
type Screening struct {
	Raw        int         // number of raw identifiers received.
	Valid      []string    // normalized, valid and unique identifiers.
	Rejected   []Rejection // invalid identifiers, in input order.
	Duplicates int         // valid identifiers dropped as repetitions.
}

// Screen normalizes, validates and deduplicates raw identifiers.
func Screen(raw []string) Screening {
	s := Screening{Raw: len(raw)}
	valid := make([]string, 0, len(raw))
	for _, r := range raw {
		isin := NormalizeISIN(r)
		if err := ValidateISIN(isin); err != nil {
			s.Rejected = append(s.Rejected, Rejection{Raw: r, Reason: err.Error()})
			continue
		}
		valid = append(valid, isin)
	}
	s.Valid, s.Duplicates = Dedupe(valid)
	return s
}
