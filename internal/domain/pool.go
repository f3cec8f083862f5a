package domain

import (
	"fmt"
	"strings"
)

type TokenStatus string

const (
	TokenStatusActive TokenStatus = "active"

	PoolBasic = "ssoBasic"

	basicPoolQuota   = 80
	defaultPoolQuota = 140
)

type ImportEntry struct {
	Token  string      `json:"token"`
	Status TokenStatus `json:"status"`
	Quota  int         `json:"quota"`
	Tags   []string    `json:"tags"`
	Note   string      `json:"note"`
}

type ImportPool struct {
	Name    string
	Entries []ImportEntry
}

// DefaultQuota returns the per-token quota the registry expects for a pool.
func DefaultQuota(pool string) int {
	if pool == PoolBasic {
		return basicPoolQuota
	}
	return defaultPoolQuota
}

func NoteForProfile(profile ProfileID) string {
	return "auto-" + string(profile)
}

// NewImportPool builds one pool holding every token. A quota <= 0 selects DefaultQuota.
func NewImportPool(name string, quota int, tokens []ExtractedToken) ImportPool {
	if quota <= 0 {
		quota = DefaultQuota(name)
	}

	entries := make([]ImportEntry, 0, len(tokens))
	for _, token := range tokens {
		entries = append(entries, ImportEntry{
			Token:  token.Token,
			Status: TokenStatusActive,
			Quota:  quota,
			Tags:   []string{},
			Note:   NoteForProfile(token.Profile),
		})
	}

	return ImportPool{Name: name, Entries: entries}
}

func (p ImportPool) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("pool name is required")
	}
	if len(p.Entries) == 0 {
		return fmt.Errorf("pool %q has no entries", p.Name)
	}
	seen := make(map[string]struct{}, len(p.Entries))
	for i, entry := range p.Entries {
		if strings.TrimSpace(entry.Token) == "" {
			return fmt.Errorf("entry %d: token is required", i)
		}
		if entry.Quota <= 0 {
			return fmt.Errorf("entry %d: quota must be positive", i)
		}
		if _, ok := seen[entry.Token]; ok {
			return fmt.Errorf("entry %d: duplicate token", i)
		}
		seen[entry.Token] = struct{}{}
	}
	return nil
}

// Payload is the request body shape the registry admin endpoint accepts.
func (p ImportPool) Payload() map[string][]ImportEntry {
	return map[string][]ImportEntry{p.Name: p.Entries}
}
