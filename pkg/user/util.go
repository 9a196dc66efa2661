package user

import (
	"strings"
)

// NormalizeUsername trims a username, its case is kept so "Art" and "art" are different users
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// NormalizeEmail trims an email address and lower-cases its domain part,
// the local part is left as is because it may be case sensitive
func NormalizeEmail(addr string) string {
	addr = strings.TrimSpace(addr)

	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return addr
	}

	return addr[:at] + "@" + strings.ToLower(addr[at+1:])
}
