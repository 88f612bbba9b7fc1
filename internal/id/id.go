package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MinPrefix is the shortest id prefix accepted by MatchPrefix.
const MinPrefix = 4

// New returns a fresh random identifier for an account or transaction.
func New() string {
	return uuid.NewString()
}

// Short returns the first block of an identifier, used in listings.
// "0b1e6a52-..." -> "0b1e6a52"
func Short(s string) string {
	if i := strings.IndexByte(s, '-'); i > 0 {
		return s[:i]
	}
	return s
}

// MatchPrefix resolves ref against ids: an exact match wins, otherwise ref
// must be a case-insensitive prefix of exactly one id.
func MatchPrefix(ref string, ids []string) (string, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return "", fmt.Errorf("empty id")
	}
	for _, s := range ids {
		if strings.ToLower(s) == ref {
			return s, nil
		}
	}
	if len(ref) < MinPrefix {
		return "", fmt.Errorf("id prefix %q is shorter than %d characters", ref, MinPrefix)
	}

	var matches []string
	for _, s := range ids {
		if strings.HasPrefix(strings.ToLower(s), ref) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no account matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}
