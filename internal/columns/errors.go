package columns

import "fmt"

// MappingError reports a row that does not match what its mapper expects:
// a required column is absent or holds a value of the wrong shape. On load
// this means corrupt storage or version skew between writer and reader.
type MappingError struct {
	Kind   string
	Column string
	Reason string
	Cause  error
}

func (e *MappingError) Error() string {
	if e == nil {
		return "mapping failed"
	}
	msg := "mapping failed"
	if e.Kind != "" {
		msg += fmt.Sprintf(" (kind=%s)", e.Kind)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" column %q", e.Column)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *MappingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func missing(col string) error {
	return &MappingError{Column: col, Reason: "required column missing"}
}

func nonFinite(col string, f float64) error {
	return &MappingError{Column: col, Reason: fmt.Sprintf("float %v cannot be stored", f)}
}

func invalid(col string, v any, want string) error {
	return &MappingError{Column: col, Reason: fmt.Sprintf("expected %s, got %T", want, v)}
}
