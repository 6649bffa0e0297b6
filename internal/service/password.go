package service

import (
	"strings"
	"unicode"
)

const minPasswordLength = 8

// commonPasswords is a short denylist of the most frequently breached
// passwords. Matching is case-insensitive.
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"qwerty123":   {},
	"qwertyuiop":  {},
	"iloveyou":    {},
	"admin123":    {},
	"letmein1":    {},
	"welcome1":    {},
	"monkey123":   {},
	"sunshine1":   {},
	"football1":   {},
}

// validatePasswordPolicy applies the account password policy: minimum
// length, not purely numeric, not a common password, and not too similar
// to the user's own attributes (email, name).
func validatePasswordPolicy(password string, userAttributes ...string) []string {
	var msgs []string

	if len(password) < minPasswordLength {
		msgs = append(msgs, "This password is too short. It must contain at least 8 characters.")
	}

	numeric := len(password) > 0
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		msgs = append(msgs, "This password is entirely numeric.")
	}

	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		msgs = append(msgs, "This password is too common.")
	}

	if similarToAttributes(password, userAttributes) {
		msgs = append(msgs, "The password is too similar to your personal information.")
	}

	return msgs
}

// similarToAttributes checks whether the password contains (or is contained
// in) any substantial token of the user's attributes. The email local part
// is tokenized on non-letter boundaries; tokens shorter than 4 runes are
// ignored to avoid false positives.
func similarToAttributes(password string, attrs []string) bool {
	lower := strings.ToLower(password)

	for _, attr := range attrs {
		attr = strings.ToLower(strings.TrimSpace(attr))
		if attr == "" {
			continue
		}
		if at := strings.IndexByte(attr, '@'); at > 0 {
			attr = attr[:at]
		}
		for _, token := range strings.FieldsFunc(attr, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			if len(token) < 4 {
				continue
			}
			if strings.Contains(lower, token) || strings.Contains(token, lower) {
				return true
			}
		}
	}
	return false
}
