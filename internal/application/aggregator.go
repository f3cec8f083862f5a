package application

import "github.com/bnema/sso-harvest/internal/domain"

// Aggregator collects tokens in extraction order and refuses repeats.
type Aggregator struct {
	tokens []domain.ExtractedToken
	seen   SeenSet
}

func NewAggregator() *Aggregator {
	return &Aggregator{seen: NewSeenSet()}
}

// Record appends token unless its value is already held. It reports whether
// the token was added.
func (a *Aggregator) Record(token domain.ExtractedToken) bool {
	if token.Token == "" || a.seen.Contains(token.Token) {
		return false
	}
	a.seen = a.seen.With(token.Token)
	a.tokens = append(a.tokens, token)
	return true
}

func (a *Aggregator) Seen() SeenSet {
	return a.seen
}

func (a *Aggregator) Len() int {
	return len(a.tokens)
}

// Finalize returns a copy of the collected tokens. It is never nil so an
// empty run still serializes as an empty list.
func (a *Aggregator) Finalize() []domain.ExtractedToken {
	out := make([]domain.ExtractedToken, len(a.tokens))
	copy(out, a.tokens)
	return out
}
