package domain

import "strings"

// CookieRecord is one cookie as reported by the browser's debug endpoint.
type CookieRecord struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	HTTPOnly bool
	Secure   bool
}

// StoredCookie is a row read straight from a profile's cookie database.
// Value is only set when the row carried a plaintext value; otherwise
// EncryptedLen holds the size of the encrypted blob.
type StoredCookie struct {
	Profile      ProfileID
	Host         string
	Name         string
	Path         string
	Value        string
	EncryptedLen int
}

func (c StoredCookie) Encrypted() bool {
	return c.Value == "" && c.EncryptedLen > 0
}

// MatchesDomain reports whether host is domain or one of its subdomains.
func MatchesDomain(host, domain string) bool {
	host = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), ".")
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
