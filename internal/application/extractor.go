package application

import "github.com/bnema/sso-harvest/internal/domain"

type ExtractStatus string

const (
	ExtractFound     ExtractStatus = "found"
	ExtractMissing   ExtractStatus = "missing"
	ExtractDuplicate ExtractStatus = "duplicate"
)

// SeenSet is an immutable set of token values. With returns a new set and
// leaves the receiver untouched.
type SeenSet struct {
	tokens map[string]struct{}
}

func NewSeenSet(tokens ...string) SeenSet {
	set := SeenSet{tokens: make(map[string]struct{}, len(tokens))}
	for _, token := range tokens {
		set.tokens[token] = struct{}{}
	}
	return set
}

func (s SeenSet) Contains(token string) bool {
	_, ok := s.tokens[token]
	return ok
}

func (s SeenSet) With(token string) SeenSet {
	if s.Contains(token) {
		return s
	}
	next := SeenSet{tokens: make(map[string]struct{}, len(s.tokens)+1)}
	for existing := range s.tokens {
		next.tokens[existing] = struct{}{}
	}
	next.tokens[token] = struct{}{}
	return next
}

func (s SeenSet) Len() int {
	return len(s.tokens)
}

// Extract picks the first cookie named target with a non-empty value.
// Only that first match is considered: if its value was already seen the
// result is a duplicate, even when a later record would be new.
func Extract(records []domain.CookieRecord, target string, profile domain.ProfileID, seen SeenSet) (domain.ExtractedToken, ExtractStatus) {
	for _, record := range records {
		if record.Name != target || record.Value == "" {
			continue
		}
		if seen.Contains(record.Value) {
			return domain.ExtractedToken{}, ExtractDuplicate
		}
		return domain.ExtractedToken{
			Token:   record.Value,
			Domain:  record.Domain,
			Profile: profile,
		}, ExtractFound
	}

	return domain.ExtractedToken{}, ExtractMissing
}
