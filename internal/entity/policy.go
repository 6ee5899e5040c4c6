package entity

import (
	"fmt"
	"strings"
)

// ValidationPolicy describes how many of a parent profile's attributes a
// child profile must also declare. The zero value imposes no constraint.
type ValidationPolicy string

const (
	PolicyNone ValidationPolicy = "NONE"
	PolicyAll  ValidationPolicy = "ALL"
	PolicyAny  ValidationPolicy = "ANY"
	PolicyOne  ValidationPolicy = "ONE"
)

// ParseValidationPolicy normalises s. An empty string yields the zero value.
func ParseValidationPolicy(s string) (ValidationPolicy, error) {
	p := ValidationPolicy(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case "", PolicyAll, PolicyAny, PolicyOne, PolicyNone:
		return p, nil
	}
	return "", fmt.Errorf("unknown validation policy %q", s)
}
