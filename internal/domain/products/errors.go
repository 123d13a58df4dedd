package products

import (
	"errors"
	"fmt"
)

// ErrInvalidGraph marks a product graph that violates a structural invariant
// (empty or duplicate role, missing child, unusable identity).
var ErrInvalidGraph = errors.New("invalid product graph")

type Entity string

const (
	EntityType     Entity = "product_type"
	EntityInstance Entity = "product_instance"
	EntityRecipe   Entity = "product_recipe"
	EntityPartLink Entity = "part_link"
)

// NotFoundError reports an identity or id absent from storage.
type NotFoundError struct {
	Entity   Entity
	ID       int64
	Identity string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "not found"
	}
	if e.Identity != "" {
		return fmt.Sprintf("%s not found (identity=%s)", e.Entity, e.Identity)
	}
	return fmt.Sprintf("%s not found (id=%d)", e.Entity, e.ID)
}

// ConcurrencyConflictError is returned when the stored version advanced since
// the in-memory object was loaded.
type ConcurrencyConflictError struct {
	Entity   Entity
	ID       int64
	Expected int64
	Actual   int64
}

func (e *ConcurrencyConflictError) Error() string {
	if e == nil {
		return "concurrency conflict"
	}
	return fmt.Sprintf(
		"concurrency conflict on %s %d (expected version=%d stored version=%d)",
		e.Entity, e.ID, e.Expected, e.Actual,
	)
}

// IdentityConflictError is returned when creating or duplicating a product
// type under an identity that is already stored.
type IdentityConflictError struct {
	Identity ProductIdentity
	Cause    error
}

func (e *IdentityConflictError) Error() string {
	if e == nil {
		return "identity conflict"
	}
	return fmt.Sprintf("identity conflict: %s already exists", e.Identity)
}

func (e *IdentityConflictError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
