package gate

import (
	"fmt"
	"strings"

	"github.com/vk/rulegridgo/internal/result"
)

// Policy decides which severities make an entity fail.
type Policy string

const (
	// Strict fails on warnings and errors.
	Strict Policy = "STRICT"
	// Lax fails on errors only.
	Lax Policy = "LAX"
)

// ParsePolicy resolves a policy name, case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToUpper(strings.TrimSpace(s))); p {
	case Strict, Lax:
		return p, nil
	}
	return "", fmt.Errorf("unknown validation policy %q (want strict or lax)", s)
}

// Threshold is the lowest severity that fails the policy.
func (p Policy) Threshold() result.Severity {
	if p == Lax {
		return result.Error
	}
	return result.Warning
}
