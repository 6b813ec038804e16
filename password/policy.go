package password

import (
	"errors"
	"fmt"
	"unicode"
)

// ValidateStrength checks a candidate password against the credential
// policy: minimum length plus at least one uppercase letter, one lowercase
// letter, one digit, and one character outside those three classes. The
// returned error names the first unmet rule.
func ValidateStrength(candidate string, minLength int) error {
	if len([]rune(candidate)) < minLength {
		return fmt.Errorf("password must be at least %d characters", minLength)
	}

	var upper, lower, digit, special bool
	for _, r := range candidate {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	switch {
	case !upper:
		return errors.New("password must contain an uppercase letter")
	case !lower:
		return errors.New("password must contain a lowercase letter")
	case !digit:
		return errors.New("password must contain a digit")
	case !special:
		return errors.New("password must contain a special character")
	}
	return nil
}
