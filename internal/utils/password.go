package utils

import "strings"

const passwordSpecialChars = "@$!%*?&"

// ValidatePassword enforces the password policy: at least 6 characters,
// at least one lowercase letter, one uppercase letter, one digit and one
// of @$!%*?&, with no characters outside those classes. Returns a
// client-facing message when the password is rejected.
func ValidatePassword(password string) (bool, string) {
	if len(password) < 6 {
		return false, "Password must be at least 6 characters long!"
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecialChars, c):
			hasSpecial = true
		default:
			return false, "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character!"
		}
	}

	if !hasLower || !hasUpper || !hasDigit || !hasSpecial {
		return false, "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character!"
	}
	return true, ""
}
