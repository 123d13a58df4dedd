package products

import "strings"

type RevisionFilter int

const (
	RevisionAll RevisionFilter = iota
	RevisionLatest
	RevisionSpecific
)

// ProductQuery selects stored types. Empty fields do not filter.
type ProductQuery struct {
	// Identifier matches exactly, or as a prefix when it ends with "*".
	Identifier     string
	Name           string
	Kind           string
	// Subkinds widens Kind to every kind declared as descending from it.
	Subkinds       bool
	RevisionFilter RevisionFilter
	Revision       int
}

// IdentifierPrefix reports the prefix form of Identifier.
func (q ProductQuery) IdentifierPrefix() (string, bool) {
	if strings.HasSuffix(q.Identifier, "*") {
		return strings.TrimSuffix(q.Identifier, "*"), true
	}
	return q.Identifier, false
}
