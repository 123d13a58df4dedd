package strategy

import (
	"github.com/yungbote/productgraph/internal/columns"
	"github.com/yungbote/productgraph/internal/domain/products"
)

// TypeMapper converts the scalar state of a product type to and from a
// column row. Part links are never written by a type mapper.
//
// Implementations must be idempotent on save and must ignore columns they
// do not own so several mappers can share one row.
type TypeMapper interface {
	SaveType(t products.ProductType, row *columns.Row) error
	LoadType(row *columns.Row, t products.ProductType) error
}

// InstanceMapper converts instance state. The owning type reference is
// stored by the caller next to the row.
type InstanceMapper interface {
	SaveInstance(i products.ProductInstance, row *columns.Row) error
	LoadInstance(row *columns.Row, i products.ProductInstance) error
}

// LinkMapper converts the scalar payload of a part link. Parent, role and
// child are stored by the caller.
type LinkMapper interface {
	SavePartLink(l products.PartLink, row *columns.Row) error
	LoadPartLink(row *columns.Row, l products.PartLink) error
}

type RecipeMapper interface {
	SaveRecipe(r products.ProductRecipe, row *columns.Row) error
	LoadRecipe(row *columns.Row, r products.ProductRecipe) error
}

// Null mappers are the property-less defaults.
type (
	NullTypeMapper     struct{}
	NullInstanceMapper struct{}
	NullLinkMapper     struct{}
	NullRecipeMapper   struct{}
)

func (NullTypeMapper) SaveType(products.ProductType, *columns.Row) error { return nil }
func (NullTypeMapper) LoadType(*columns.Row, products.ProductType) error { return nil }

func (NullInstanceMapper) SaveInstance(products.ProductInstance, *columns.Row) error { return nil }
func (NullInstanceMapper) LoadInstance(*columns.Row, products.ProductInstance) error { return nil }

func (NullLinkMapper) SavePartLink(products.PartLink, *columns.Row) error { return nil }
func (NullLinkMapper) LoadPartLink(*columns.Row, products.PartLink) error { return nil }

func (NullRecipeMapper) SaveRecipe(products.ProductRecipe, *columns.Row) error { return nil }
func (NullRecipeMapper) LoadRecipe(*columns.Row, products.ProductRecipe) error { return nil }
