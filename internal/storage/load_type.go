package storage

import (
	"errors"
	"fmt"

	"github.com/yungbote/productgraph/internal/columns"
	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/domain/rows"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
)

// typeLoader materializes stored types for one call. Objects enter the cache
// before their links are followed, so a child reached twice, or through a
// cycle, is the same in-memory object.
type typeLoader struct {
	s     *ProductStorage
	dbc   dbctx.Context
	cache map[int64]products.ProductType
}

func (s *ProductStorage) newLoader(dbc dbctx.Context) *typeLoader {
	return &typeLoader{s: s, dbc: dbc, cache: map[int64]products.ProductType{}}
}

// LoadType loads the type stored under id with its full part graph.
func (s *ProductStorage) LoadType(dbc dbctx.Context, id int64) (products.ProductType, error) {
	var out products.ProductType
	err := s.inTx(dbc, "load_type", func(dbc dbctx.Context, _ func(func())) error {
		var err error
		out, err = s.newLoader(dbc).load(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadTypeByIdentity resolves identity, picking the highest revision for a
// latest identity.
func (s *ProductStorage) LoadTypeByIdentity(dbc dbctx.Context, identity products.ProductIdentity) (products.ProductType, error) {
	var out products.ProductType
	err := s.inTx(dbc, "load_type_by_identity", func(dbc dbctx.Context, _ func(func())) error {
		row, err := s.repos.Types.GetByIdentity(dbc, identity)
		if err != nil {
			return err
		}
		if row == nil {
			return &products.NotFoundError{Entity: products.EntityType, Identity: identity.String()}
		}
		out, err = s.newLoader(dbc).materialize(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadTypes returns every type matching q. Graphs share objects across the
// result.
func (s *ProductStorage) LoadTypes(dbc dbctx.Context, q products.ProductQuery) ([]products.ProductType, error) {
	var kinds map[string]bool
	if q.Kind != "" && q.Subkinds {
		kinds = s.kindsOf(q.Kind)
		q.Kind = ""
	}
	var out []products.ProductType
	err := s.inTx(dbc, "load_types", func(dbc dbctx.Context, _ func(func())) error {
		found, err := s.repos.Types.Find(dbc, q)
		if err != nil {
			return err
		}
		ld := s.newLoader(dbc)
		out = make([]products.ProductType, 0, len(found))
		for _, row := range found {
			if kinds != nil && !kinds[row.TypeName] {
				continue
			}
			t, err := ld.materialize(row)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadParents returns the stored types that link to id as a part, ordered by
// id. A type nothing uses yields an empty slice.
func (s *ProductStorage) LoadParents(dbc dbctx.Context, id int64) ([]products.ProductType, error) {
	var out []products.ProductType
	err := s.inTx(dbc, "load_parents", func(dbc dbctx.Context, _ func(func())) error {
		child, err := s.repos.Types.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if child == nil {
			return &products.NotFoundError{Entity: products.EntityType, ID: id}
		}
		links, err := s.repos.Links.ListByChild(dbc, id)
		if err != nil {
			return err
		}
		seen := map[int64]bool{}
		var ids []int64
		for _, lr := range links {
			if !seen[lr.ParentID] {
				seen[lr.ParentID] = true
				ids = append(ids, lr.ParentID)
			}
		}
		parents, err := s.repos.Types.GetByIDs(dbc, ids)
		if err != nil {
			return err
		}
		ld := s.newLoader(dbc)
		out = make([]products.ProductType, 0, len(parents))
		for _, row := range parents {
			t, err := ld.materialize(row)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// kindsOf returns base and every declared type kind descending from it.
func (s *ProductStorage) kindsOf(base string) map[string]bool {
	types := s.strategies.Types()
	out := map[string]bool{base: true}
	for _, name := range types.Declared() {
		if types.IsA(name, base) {
			out[name] = true
		}
	}
	return out
}

func (ld *typeLoader) load(id int64) (products.ProductType, error) {
	if t, ok := ld.cache[id]; ok {
		return t, nil
	}
	row, err := ld.s.repos.Types.GetByID(ld.dbc, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, &products.NotFoundError{Entity: products.EntityType, ID: id}
	}
	return ld.materialize(row)
}

func (ld *typeLoader) materialize(row *rows.ProductType) (products.ProductType, error) {
	if t, ok := ld.cache[row.ID]; ok {
		return t, nil
	}
	kinds := ld.s.strategies.Types()
	t, err := kinds.New(row.TypeName)
	if err != nil {
		return nil, err
	}
	mapper, err := kinds.Resolve(row.TypeName)
	if err != nil {
		return nil, err
	}
	cols, err := columns.Decode(row.Columns)
	if err != nil {
		return nil, withKind(err, row.TypeName)
	}
	if err := mapper.LoadType(cols, t); err != nil {
		return nil, err
	}
	base := t.Base()
	base.ID = row.ID
	base.Identity = products.NewIdentity(row.Identifier, row.Revision)
	base.Name = row.Name
	base.State = products.ProductState(row.State)
	base.Version = row.Version
	base.Parts = nil
	ld.cache[row.ID] = t

	links, err := ld.s.repos.Links.ListByParent(ld.dbc, row.ID)
	if err != nil {
		return nil, err
	}
	for _, lr := range links {
		link, err := ld.loadLink(t, lr)
		if err != nil {
			return nil, err
		}
		base.Parts = append(base.Parts, link)
	}
	return t, nil
}

func (ld *typeLoader) loadLink(parent products.ProductType, lr *rows.PartLink) (products.PartLink, error) {
	kinds := ld.s.strategies.Links()
	link, err := kinds.New(lr.TypeName)
	if err != nil {
		return nil, err
	}
	mapper, err := kinds.Resolve(lr.TypeName)
	if err != nil {
		return nil, err
	}
	cols, err := columns.Decode(lr.Columns)
	if err != nil {
		return nil, withKind(err, lr.TypeName)
	}
	if err := mapper.LoadPartLink(cols, link); err != nil {
		return nil, err
	}
	child, err := ld.load(lr.ChildID)
	if err != nil {
		if products.IsNotFound(err) {
			return nil, fmt.Errorf("%w: link %q of %s points to missing type %d", products.ErrInvalidGraph, lr.Role, parent.Base().Identity, lr.ChildID)
		}
		return nil, err
	}
	lb := link.Link()
	lb.ID = lr.ID
	lb.Role = lr.Role
	lb.Parent = parent
	lb.Product = child
	return link, nil
}

func withKind(err error, kind string) error {
	var me *columns.MappingError
	if errors.As(err, &me) && me.Kind == "" {
		me.Kind = kind
	}
	return err
}
