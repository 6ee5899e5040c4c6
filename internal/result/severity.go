package result

import (
	"fmt"
	"strings"
)

// Severity grades a message. Severities are ordered: Info < Warning < Error.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// Severities returns all severities from lowest to highest.
func Severities() []Severity {
	return []Severity{Info, Warning, Error}
}

func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ParseSeverity resolves a severity by name, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INFO":
		return Info, nil
	case "WARNING", "WARN":
		return Warning, nil
	case "ERROR":
		return Error, nil
	}
	return Info, fmt.Errorf("unknown severity %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
