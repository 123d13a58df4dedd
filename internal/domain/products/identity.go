package products

import (
	"fmt"
	"strings"
)

// LatestRevision asks a lookup for the highest stored revision.
const LatestRevision = -1

// ProductIdentity identifies one revision of a product type. Identifier plus
// Revision is unique across the catalog.
type ProductIdentity struct {
	Identifier string `json:"identifier"`
	Revision   int    `json:"revision"`
}

func NewIdentity(identifier string, revision int) ProductIdentity {
	return ProductIdentity{Identifier: strings.TrimSpace(identifier), Revision: revision}
}

// Latest is the lookup identity for the newest revision of identifier.
func Latest(identifier string) ProductIdentity {
	return ProductIdentity{Identifier: strings.TrimSpace(identifier), Revision: LatestRevision}
}

func (p ProductIdentity) IsLatest() bool { return p.Revision == LatestRevision }

func (p ProductIdentity) String() string {
	if p.IsLatest() {
		return p.Identifier + "-latest"
	}
	return fmt.Sprintf("%s-%02d", p.Identifier, p.Revision)
}

// Validate checks that the identity can be stored.
func (p ProductIdentity) Validate() error {
	if strings.TrimSpace(p.Identifier) == "" {
		return fmt.Errorf("%w: empty identifier", ErrInvalidGraph)
	}
	if p.Revision < 0 {
		return fmt.Errorf("%w: negative revision %d for %s", ErrInvalidGraph, p.Revision, p.Identifier)
	}
	return nil
}
