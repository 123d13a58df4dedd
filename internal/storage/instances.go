package storage

import (
	"fmt"

	"github.com/yungbote/productgraph/internal/columns"
	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/domain/rows"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
	"github.com/yungbote/productgraph/internal/strategy"
)

type instanceGroup struct {
	mapper    strategy.InstanceMapper
	instances []products.ProductInstance
}

// SaveInstances writes a batch of instances. The mapper is resolved once per
// binding and every referenced type must already be stored.
func (s *ProductStorage) SaveInstances(dbc dbctx.Context, instances []products.ProductInstance) error {
	if len(instances) == 0 {
		return nil
	}
	return s.inTx(dbc, "save_instances", func(dbc dbctx.Context, onCommit func(func())) error {
		var order []string
		groups := map[string]*instanceGroup{}
		for _, inst := range instances {
			if inst == nil {
				return fmt.Errorf("%w: nil instance", products.ErrInvalidGraph)
			}
			b, err := s.strategies.Instances().ResolveBinding(inst.Kind())
			if err != nil {
				return err
			}
			g, ok := groups[b.Key()]
			if !ok {
				g = &instanceGroup{mapper: b.Mapper}
				groups[b.Key()] = g
				order = append(order, b.Key())
			}
			g.instances = append(g.instances, inst)
		}

		typeExists := map[int64]bool{}
		for _, key := range order {
			g := groups[key]
			var created []*rows.ProductInstance
			var createdFrom []*products.InstanceBase
			for _, inst := range g.instances {
				base := inst.Instance()
				productID, err := s.requireType(dbc, base.Type, typeExists)
				if err != nil {
					return err
				}
				cols := columns.NewRow()
				if err := g.mapper.SaveInstance(inst, cols); err != nil {
					return withKind(err, inst.Kind())
				}
				encoded, err := encodeRow(cols, inst.Kind())
				if err != nil {
					return err
				}
				row := &rows.ProductInstance{
					ID:        base.ID,
					ProductID: productID,
					TypeName:  inst.Kind(),
					Identity:  base.Identity,
					State:     int(base.State),
					Columns:   encoded,
				}
				if base.ID == 0 {
					created = append(created, row)
					createdFrom = append(createdFrom, base)
					continue
				}
				if err := s.updateInstance(dbc, base, row, cols, onCommit); err != nil {
					return err
				}
			}
			if err := s.repos.Instances.Create(dbc, created); err != nil {
				return err
			}
			for i, row := range created {
				base, id, version := createdFrom[i], row.ID, row.Version
				onCommit(func() {
					base.ID = id
					base.Version = version
				})
			}
		}
		return nil
	})
}

func (s *ProductStorage) SaveInstance(dbc dbctx.Context, inst products.ProductInstance) error {
	return s.SaveInstances(dbc, []products.ProductInstance{inst})
}

func (s *ProductStorage) updateInstance(dbc dbctx.Context, base *products.InstanceBase, row *rows.ProductInstance, cols *columns.Row, onCommit func(func())) error {
	stored, err := s.repos.Instances.GetByID(dbc, base.ID)
	if err != nil {
		return err
	}
	if stored == nil {
		return &products.NotFoundError{Entity: products.EntityInstance, ID: base.ID}
	}
	if stored.Version != base.Version {
		return &products.ConcurrencyConflictError{Entity: products.EntityInstance, ID: base.ID, Expected: base.Version, Actual: stored.Version}
	}
	if stored.ProductID == row.ProductID && stored.TypeName == row.TypeName &&
		stored.Identity == row.Identity && stored.State == row.State && sameColumns(stored.Columns, cols) {
		return nil
	}
	ok, err := s.repos.Instances.UpdateVersioned(dbc, row, base.Version)
	if err != nil {
		return err
	}
	if !ok {
		actual, _, verr := s.repos.Instances.GetVersion(dbc, base.ID)
		if verr != nil {
			return verr
		}
		return &products.ConcurrencyConflictError{Entity: products.EntityInstance, ID: base.ID, Expected: base.Version, Actual: actual}
	}
	version := row.Version
	onCommit(func() { base.Version = version })
	return nil
}

// requireType returns the stored id of t or a NotFoundError.
func (s *ProductStorage) requireType(dbc dbctx.Context, t products.ProductType, known map[int64]bool) (int64, error) {
	if t == nil {
		return 0, &products.NotFoundError{Entity: products.EntityType}
	}
	base := t.Base()
	if base.ID == 0 {
		return 0, &products.NotFoundError{Entity: products.EntityType, Identity: base.Identity.String()}
	}
	if known[base.ID] {
		return base.ID, nil
	}
	row, err := s.repos.Types.GetByID(dbc, base.ID)
	if err != nil {
		return 0, err
	}
	if row == nil {
		return 0, &products.NotFoundError{Entity: products.EntityType, ID: base.ID}
	}
	known[base.ID] = true
	return base.ID, nil
}

func (s *ProductStorage) LoadInstance(dbc dbctx.Context, id int64) (products.ProductInstance, error) {
	var out products.ProductInstance
	err := s.inTx(dbc, "load_instance", func(dbc dbctx.Context, _ func(func())) error {
		row, err := s.repos.Instances.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if row == nil {
			return &products.NotFoundError{Entity: products.EntityInstance, ID: id}
		}
		out, err = s.materializeInstance(s.newLoader(dbc), row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadInstanceByIdentity returns the newest instance with the given
// application identity.
func (s *ProductStorage) LoadInstanceByIdentity(dbc dbctx.Context, identity string) (products.ProductInstance, error) {
	var out products.ProductInstance
	err := s.inTx(dbc, "load_instance_by_identity", func(dbc dbctx.Context, _ func(func())) error {
		row, err := s.repos.Instances.GetByIdentity(dbc, identity)
		if err != nil {
			return err
		}
		if row == nil {
			return &products.NotFoundError{Entity: products.EntityInstance, Identity: identity}
		}
		out, err = s.materializeInstance(s.newLoader(dbc), row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadInstances returns the instances of one product type. They share a
// single loaded type graph.
func (s *ProductStorage) LoadInstances(dbc dbctx.Context, productID int64) ([]products.ProductInstance, error) {
	var out []products.ProductInstance
	err := s.inTx(dbc, "load_instances", func(dbc dbctx.Context, _ func(func())) error {
		found, err := s.repos.Instances.ListByProduct(dbc, productID)
		if err != nil {
			return err
		}
		ld := s.newLoader(dbc)
		out = make([]products.ProductInstance, 0, len(found))
		for _, row := range found {
			inst, err := s.materializeInstance(ld, row)
			if err != nil {
				return err
			}
			out = append(out, inst)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ProductStorage) materializeInstance(ld *typeLoader, row *rows.ProductInstance) (products.ProductInstance, error) {
	kinds := s.strategies.Instances()
	inst, err := kinds.New(row.TypeName)
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
	if err := mapper.LoadInstance(cols, inst); err != nil {
		return nil, err
	}
	t, err := ld.load(row.ProductID)
	if err != nil {
		return nil, err
	}
	base := inst.Instance()
	base.ID = row.ID
	base.Type = t
	base.Identity = row.Identity
	base.State = products.InstanceState(row.State)
	base.Version = row.Version
	return inst, nil
}
