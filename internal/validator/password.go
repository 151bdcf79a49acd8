package validator

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt accepts
	MaxPasswordBytes = 72
	maxSimilarity    = 0.7
)

//go:embed common_passwords.txt
var commonPasswordList string

var commonPasswords = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(commonPasswordList, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			set[strings.ToLower(line)] = struct{}{}
		}
	}
	return set
}()

var nonWordRegex = regexp.MustCompile(`\W+`)

// UserAttribute is a user field the password must not resemble
type UserAttribute struct {
	Name  string
	Value string
}

// ValidatePassword returns one message per failed strength rule, or nil
func ValidatePassword(password string, attrs ...UserAttribute) []string {
	var msgs []string

	lower := strings.ToLower(password)
	for _, attr := range attrs {
		if attr.Value == "" {
			continue
		}
		if tooSimilar(lower, strings.ToLower(attr.Value)) {
			msgs = append(msgs, fmt.Sprintf("The password is too similar to the %s.", attr.Name))
			break
		}
	}

	if len([]rune(password)) < MinPasswordLength {
		msgs = append(msgs, fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		msgs = append(msgs, fmt.Sprintf("This password is too long. It must contain no more than %d bytes.", MaxPasswordBytes))
	}
	if _, ok := commonPasswords[strings.TrimSpace(lower)]; ok {
		msgs = append(msgs, "This password is too common.")
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		msgs = append(msgs, "This password is entirely numeric.")
	}
	if strings.IndexFunc(password, unicode.IsUpper) < 0 {
		msgs = append(msgs, "This password must contain at least one uppercase letter.")
	}
	return msgs
}

func tooSimilar(password, value string) bool {
	parts := append(nonWordRegex.Split(value, -1), value)
	for _, part := range parts {
		if part == "" || exceedsLengthRatio(password, part) {
			continue
		}
		if quickRatio(password, part) >= maxSimilarity {
			return true
		}
	}
	return false
}

// exceedsLengthRatio skips parts far shorter than the password, which can
// never reach the similarity threshold
func exceedsLengthRatio(password, value string) bool {
	pwdLen := len([]rune(password))
	valueLen := len([]rune(value))
	bound := maxSimilarity / 2 * float64(pwdLen)
	return pwdLen >= 10*valueLen && float64(valueLen) < bound
}

// quickRatio is 2*M/T where M counts characters shared as multisets
func quickRatio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1
	}
	avail := make(map[rune]int, len(br))
	for _, r := range br {
		avail[r]++
	}
	matches := 0
	for _, r := range ar {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}
