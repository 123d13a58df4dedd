package strategy

import (
	"errors"
	"fmt"

	"github.com/yungbote/productgraph/internal/domain/products"
)

type (
	TypeKinds     = Kinds[products.ProductType, TypeMapper]
	LinkKinds     = Kinds[products.PartLink, LinkMapper]
	InstanceKinds = Kinds[products.ProductInstance, InstanceMapper]
	RecipeKinds   = Kinds[products.ProductRecipe, RecipeMapper]
)

// Builder collects kind declarations and mapper registrations during
// startup. Build freezes them into Strategies.
type Builder struct {
	Types     *TypeKinds
	Links     *LinkKinds
	Instances *InstanceKinds
	Recipes   *RecipeKinds
	built     bool
}

// NewBuilder starts with the abstract family roots, the topology-only
// SimpleLink, GenericInstance and ProductionRecipe kinds and null default
// mappers.
func NewBuilder() *Builder {
	b := &Builder{
		Types:     newKinds[products.ProductType, TypeMapper](FamilyType, products.KindProductType, NullTypeMapper{}),
		Links:     newKinds[products.PartLink, LinkMapper](FamilyLink, products.KindPartLink, NullLinkMapper{}),
		Instances: newKinds[products.ProductInstance, InstanceMapper](FamilyInstance, products.KindProductInstance, NullInstanceMapper{}),
		Recipes:   newKinds[products.ProductRecipe, RecipeMapper](FamilyRecipe, products.KindProductRecipe, NullRecipeMapper{}),
	}
	b.Links.Declare(products.KindSimpleLink, func() products.PartLink { return &products.SimpleLink{} })
	b.Instances.Declare(products.KindGenericInstance, func() products.ProductInstance { return &products.GenericInstance{} })
	b.Recipes.Declare(products.KindProductionRecipe, func() products.ProductRecipe { return &products.ProductionRecipe{} })
	return b
}

// Apply binds kinds to published strategies as configured.
func (b *Builder) Apply(cfg *BindingConfig) error {
	if cfg == nil {
		return nil
	}
	var errs []error
	for i, entry := range cfg.Bindings {
		var err error
		switch Family(entry.Family) {
		case FamilyType:
			err = b.Types.Bind(entry.Kind, entry.Strategy)
		case FamilyLink:
			err = b.Links.Bind(entry.Kind, entry.Strategy)
		case FamilyInstance:
			err = b.Instances.Bind(entry.Kind, entry.Strategy)
		case FamilyRecipe:
			err = b.Recipes.Bind(entry.Kind, entry.Strategy)
		default:
			err = fmt.Errorf("unknown family %q", entry.Family)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("binding %d (%s %s): %w", i, entry.Family, entry.Kind, err))
		}
	}
	return errors.Join(errs...)
}

// Build reports every declaration or registration error collected so far.
func (b *Builder) Build() (*Strategies, error) {
	if b.built {
		return nil, ErrFrozen
	}
	var errs []error
	errs = append(errs, b.Types.errs...)
	errs = append(errs, b.Links.errs...)
	errs = append(errs, b.Instances.errs...)
	errs = append(errs, b.Recipes.errs...)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	for _, freeze := range []func() error{b.Types.freeze, b.Links.freeze, b.Instances.freeze, b.Recipes.freeze} {
		if err := freeze(); err != nil {
			return nil, err
		}
	}
	b.built = true
	return &Strategies{types: b.Types, links: b.Links, instances: b.Instances, recipes: b.Recipes}, nil
}

// Strategies is the immutable registry used at runtime.
type Strategies struct {
	types     *TypeKinds
	links     *LinkKinds
	instances *InstanceKinds
	recipes   *RecipeKinds
}

func (s *Strategies) Types() *TypeKinds         { return s.types }
func (s *Strategies) Links() *LinkKinds         { return s.links }
func (s *Strategies) Instances() *InstanceKinds { return s.instances }
func (s *Strategies) Recipes() *RecipeKinds     { return s.recipes }
