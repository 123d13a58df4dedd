package strategy

import (
	"errors"
	"fmt"
)

var (
	ErrFrozen       = errors.New("strategy registry is frozen")
	ErrDuplicate    = errors.New("duplicate registration")
	ErrUnknownKind  = errors.New("kind not declared")
	ErrAbstractKind = errors.New("kind is abstract")
)

// StrategyNotFoundError is returned when no mapper or constructor can be
// resolved for a kind. It points at a configuration bug.
type StrategyNotFoundError struct {
	Family Family
	Kind   string
	Reason string
}

func (e *StrategyNotFoundError) Error() string {
	if e == nil {
		return "strategy not found"
	}
	msg := fmt.Sprintf("strategy not found (family=%s kind=%s)", e.Family, e.Kind)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
