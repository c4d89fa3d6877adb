package ussd

import "strings"

const (
	separator = "*"
	pinLength = 4
)

// input is the raw text of a request. Gateways either send the whole dialog
// so far joined by separator or only the newest keystroke, so handlers read
// the newest segment.
type input string

// segments returns the non-empty segments, oldest first.
func (in input) segments() []string {
	parts := strings.Split(string(in), separator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// last returns the newest segment, or "" when there is none.
func (in input) last() string {
	segments := in.segments()
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// first returns the oldest segment, or "" when there is none.
func (in input) first() string {
	segments := in.segments()
	if len(segments) == 0 {
		return ""
	}
	return segments[0]
}

// pin returns the PIN typed at a PIN-entry step. Some gateways glue the PIN
// to the preceding menu digit ("24" + "1234" as "241234"), so an all-digit
// token longer than a PIN yields its trailing digits.
func (in input) pin() string {
	token := in.last()
	if len(token) > pinLength && isDigits(token) {
		return token[len(token)-pinLength:]
	}
	return token
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isPIN(s string) bool {
	return len(s) == pinLength && isDigits(s)
}
