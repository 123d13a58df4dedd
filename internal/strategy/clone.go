package strategy

import (
	"fmt"

	"github.com/yungbote/productgraph/internal/columns"
	"github.com/yungbote/productgraph/internal/domain/products"
)

// CloneType copies the mapped scalar state of src into a new unsaved object
// of the same kind. Identity, parts and storage fields are left to the
// caller; name and state are copied.
func (s *Strategies) CloneType(src products.ProductType) (products.ProductType, error) {
	m, err := s.types.Resolve(src.Kind())
	if err != nil {
		return nil, err
	}
	row := columns.NewRow()
	if err := m.SaveType(src, row); err != nil {
		return nil, err
	}
	dst, err := s.types.New(src.Kind())
	if err != nil {
		return nil, err
	}
	if err := m.LoadType(row, dst); err != nil {
		return nil, err
	}
	db, sb := dst.Base(), src.Base()
	db.Name = sb.Name
	db.State = sb.State
	return dst, nil
}

// CloneLink copies role, child reference and mapped payload of src.
func (s *Strategies) CloneLink(src products.PartLink) (products.PartLink, error) {
	m, err := s.links.Resolve(src.Kind())
	if err != nil {
		return nil, err
	}
	row := columns.NewRow()
	if err := m.SavePartLink(src, row); err != nil {
		return nil, err
	}
	dst, err := s.links.New(src.Kind())
	if err != nil {
		return nil, err
	}
	if err := m.LoadPartLink(row, dst); err != nil {
		return nil, err
	}
	dst.Link().Role = src.Link().Role
	dst.Link().Product = src.Link().Product
	return dst, nil
}

// CloneRecipe copies a recipe without its product binding.
func (s *Strategies) CloneRecipe(src products.ProductRecipe) (products.ProductRecipe, error) {
	m, err := s.recipes.Resolve(src.Kind())
	if err != nil {
		return nil, err
	}
	row := columns.NewRow()
	if err := m.SaveRecipe(src, row); err != nil {
		return nil, err
	}
	dst, err := s.recipes.New(src.Kind())
	if err != nil {
		return nil, err
	}
	if err := m.LoadRecipe(row, dst); err != nil {
		return nil, fmt.Errorf("clone recipe %q: %w", src.Recipe().Name, err)
	}
	d, r := dst.Recipe(), src.Recipe()
	d.Name = r.Name
	d.Revision = r.Revision
	d.State = r.State
	d.Classification = r.Classification
	return dst, nil
}
