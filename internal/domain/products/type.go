// Package products holds the in-memory product model: polymorphic product
// types composed through part links, their instances and their recipes.
//
// Concrete kinds embed the matching base struct (TypeBase, LinkBase,
// InstanceBase, RecipeBase) and report a stable kind name used as the stored
// discriminator.
package products

import (
	"fmt"
	"sort"
	"strings"
)

// Abstract kind names every concrete kind descends from.
const (
	KindProductType     = "ProductType"
	KindPartLink        = "PartLink"
	KindProductInstance = "ProductInstance"
	KindProductRecipe   = "ProductRecipe"
)

type ProductState int

const (
	StateCreated ProductState = iota
	StateReleased
	StateDeprecated
)

func (s ProductState) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateReleased:
		return "Released"
	case StateDeprecated:
		return "Deprecated"
	default:
		return "Unknown"
	}
}

func ParseProductState(s string) (ProductState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "created":
		return StateCreated, nil
	case "released":
		return StateReleased, nil
	case "deprecated":
		return StateDeprecated, nil
	default:
		return StateCreated, fmt.Errorf("unknown product state %q", s)
	}
}

// ProductType is implemented by every concrete product kind.
type ProductType interface {
	Base() *TypeBase
	Kind() string
}

// TypeBase carries the state shared by all product types. ID is zero until
// the type was stored; Version is the optimistic concurrency stamp.
type TypeBase struct {
	ID       int64
	Identity ProductIdentity
	Name     string
	State    ProductState
	Version  int64
	Parts    []PartLink
}

func (b *TypeBase) Base() *TypeBase { return b }

// Part returns the link stored under role, or nil.
func (b *TypeBase) Part(role string) PartLink {
	for _, p := range b.Parts {
		if p != nil && p.Link().Role == role {
			return p
		}
	}
	return nil
}

// SetPart replaces the link under role in place or appends it.
func (b *TypeBase) SetPart(role string, link PartLink) {
	if link == nil {
		b.RemovePart(role)
		return
	}
	link.Link().Role = role
	for i, p := range b.Parts {
		if p != nil && p.Link().Role == role {
			b.Parts[i] = link
			return
		}
	}
	b.Parts = append(b.Parts, link)
}

func (b *TypeBase) RemovePart(role string) bool {
	for i, p := range b.Parts {
		if p != nil && p.Link().Role == role {
			b.Parts = append(b.Parts[:i], b.Parts[i+1:]...)
			return true
		}
	}
	return false
}

// IndexedParts returns the links under prefix[n] roles ordered by n.
func (b *TypeBase) IndexedParts(prefix string) []PartLink {
	type entry struct {
		idx  int
		link PartLink
	}
	var found []entry
	for _, p := range b.Parts {
		if p == nil {
			continue
		}
		if i, ok := ParseIndexedRole(prefix, p.Link().Role); ok {
			found = append(found, entry{i, p})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].idx < found[j].idx })
	out := make([]PartLink, len(found))
	for i, e := range found {
		out[i] = e.link
	}
	return out
}

// NextIndex returns one past the highest prefix[n] index in use. Indices
// freed by RemovePart are not reused.
func (b *TypeBase) NextIndex(prefix string) int {
	next := 0
	for _, p := range b.Parts {
		if p == nil {
			continue
		}
		if i, ok := ParseIndexedRole(prefix, p.Link().Role); ok && i >= next {
			next = i + 1
		}
	}
	return next
}

// IsNew reports whether the type was never stored.
func IsNew(t ProductType) bool { return t == nil || t.Base().ID == 0 }
