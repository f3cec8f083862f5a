package domain

import (
	"fmt"
	"strings"
)

type ExtractedToken struct {
	Token   string    `json:"token"`
	Domain  string    `json:"domain"`
	Profile ProfileID `json:"profile"`
}

func (t ExtractedToken) Validate() error {
	if strings.TrimSpace(t.Token) == "" {
		return fmt.Errorf("token is required")
	}
	if strings.TrimSpace(string(t.Profile)) == "" {
		return fmt.Errorf("profile is required")
	}
	return nil
}

// MaskToken keeps the head and tail of long tokens for display.
func MaskToken(token string) string {
	const head, tail = 25, 10
	if len(token) <= head+tail {
		return token
	}
	return token[:head] + "..." + token[len(token)-tail:]
}
