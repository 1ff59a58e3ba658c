// Package inputval holds small input validators shared by form handlers.
package inputval

import (
	"net/mail"
	"strings"
)

// IsValidEmail reports whether s looks like a plain RFC 5322 address.
// Display-name forms ("Name <a@b>") and addresses with spaces are
// rejected even though the RFC allows them; users type bare addresses.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	if addr.Address != s {
		return false
	}
	// mail.ParseAddress tolerates some forms we don't want stored.
	local, domain, found := strings.Cut(s, "@")
	if !found || local == "" || domain == "" {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return false
	}
	if strings.HasPrefix(domain, ".") || strings.Contains(domain, "..") {
		return false
	}
	return true
}

// IsValidPhone accepts digits, spaces, and common separators, with at
// least seven digits. Empty is allowed; phone is optional everywhere.
func IsValidPhone(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '+' || r == '.':
		default:
			return false
		}
	}
	return digits >= 7
}
