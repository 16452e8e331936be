package handler

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// passwordSpecials lists the non-word characters a password may contain.
const passwordSpecials = "`-~!@#$%^&*()=_+[]{};:'\"\\|<>/?№.,"

// bcryptMaxBytes is the longest input bcrypt accepts.
const bcryptMaxBytes = 72

// PasswordPolicy describes the complexity rules applied to new passwords.
type PasswordPolicy struct {
	MinLength int
	MaxLength int
}

// DefaultPasswordPolicy allows 8 to 32 characters.
var DefaultPasswordPolicy = PasswordPolicy{MinLength: 8, MaxLength: 32}

// Allows reports whether password has the required length, at least one
// lowercase letter, uppercase letter, digit and special character, and no
// characters outside word characters and passwordSpecials.
func (p PasswordPolicy) Allows(password string) bool {
	n := utf8.RuneCountInString(password)
	if n < p.MinLength || n > p.MaxLength || len(password) > bcryptMaxBytes {
		return false
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}

		if strings.ContainsRune(passwordSpecials, r) {
			special = true
			continue
		}
		if !isWordRune(r) {
			return false
		}
	}
	return lower && upper && digit && special
}

func (p PasswordPolicy) message() string {
	return fmt.Sprintf("Password must be between %d and %d characters long and meet complexity requirements.", p.MinLength, p.MaxLength)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
