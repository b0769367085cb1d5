package auth

import (
	"regexp"
	"unicode/utf16"

	"github.com/ayush/taskgate/internal/models"
)

// Inline field messages.
const (
	MsgInvalidEmail    = "Invalid email format"
	MsgInvalidUsername = "Username must be 3-15 characters long and contain only letters, numbers, and underscores"
	MsgShortPassword   = "Password must be at least 8 characters long"
	MsgShortIdentifier = "Must be at least 3 characters"
)

const (
	minPasswordLen   = 8
	minIdentifierLen = 3
	minUsernameLen   = 3
	maxUsernameLen   = 15
)

// whitespace is the set of characters browsers treat as \s: ASCII whitespace
// plus the Unicode space separators, line and paragraph separators and BOM.
// RE2's \s only covers the ASCII ones.
const whitespace = `\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

var (
	emailPattern    = regexp.MustCompile(`^[^` + whitespace + `@]+@[^` + whitespace + `@]+\.[^` + whitespace + `@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidateUsername(username string) bool {
	n := len(username)
	return n >= minUsernameLen && n <= maxUsernameLen && usernamePattern.MatchString(username)
}

func ValidatePassword(password string) bool {
	return textLen(password) >= minPasswordLen
}

// textLen counts UTF-16 code units, the length a browser form reports.
// Characters outside the Basic Multilingual Plane count twice.
func textLen(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// CheckRegistration returns the inline errors a registration form shows while
// the user types. Empty fields are left to the submit check.
func CheckRegistration(req models.RegisterRequest) FieldErrors {
	errs := FieldErrors{}
	if req.Email != "" && !ValidateEmail(req.Email) {
		errs[FieldEmail] = MsgInvalidEmail
	}
	if req.Username != "" && !ValidateUsername(req.Username) {
		errs[FieldUsername] = MsgInvalidUsername
	}
	if req.Password != "" && !ValidatePassword(req.Password) {
		errs[FieldPassword] = MsgShortPassword
	}
	return errs
}

// CheckLogin returns the inline hints for a login form. They never block
// submission.
func CheckLogin(req models.LoginRequest) FieldErrors {
	errs := FieldErrors{}
	if n := textLen(req.Identifier); n > 0 && n < minIdentifierLen {
		errs[FieldIdentifier] = MsgShortIdentifier
	}
	if req.Password != "" && !ValidatePassword(req.Password) {
		errs[FieldPassword] = MsgShortPassword
	}
	return errs
}
