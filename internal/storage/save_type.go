package storage

import (
	"fmt"
	"strings"

	"github.com/yungbote/productgraph/internal/columns"
	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/domain/rows"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
)

type savedType struct {
	id      int64
	version int64
}

// typeSaver holds the per-call state of one graph save. visited is keyed by
// identity and filled before a type's parts are followed, so shared children
// are written once and cycles terminate.
type typeSaver struct {
	s        *ProductStorage
	dbc      dbctx.Context
	onCommit func(func())
	visited  map[products.ProductIdentity]*savedType
}

// SaveType writes t and every type reachable through its part links. It
// returns the id of t. IDs, versions and link parents are assigned to the
// in-memory graph only after the transaction committed.
func (s *ProductStorage) SaveType(dbc dbctx.Context, t products.ProductType) (int64, error) {
	var id int64
	err := s.inTx(dbc, "save_type", func(dbc dbctx.Context, onCommit func(func())) error {
		sv := &typeSaver{s: s, dbc: dbc, onCommit: onCommit, visited: map[products.ProductIdentity]*savedType{}}
		var err error
		id, err = sv.save(t)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (sv *typeSaver) save(t products.ProductType) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("%w: nil product type", products.ErrInvalidGraph)
	}
	base := t.Base()
	if err := base.Identity.Validate(); err != nil {
		return 0, err
	}
	if rec, ok := sv.visited[base.Identity]; ok {
		return rec.id, nil
	}

	mapper, err := sv.s.strategies.Types().Resolve(t.Kind())
	if err != nil {
		return 0, err
	}
	cols := columns.NewRow()
	if err := mapper.SaveType(t, cols); err != nil {
		return 0, withKind(err, t.Kind())
	}
	encoded, err := encodeRow(cols, t.Kind())
	if err != nil {
		return 0, err
	}
	row := &rows.ProductType{
		ID:         base.ID,
		Identifier: base.Identity.Identifier,
		Revision:   base.Identity.Revision,
		Name:       base.Name,
		TypeName:   t.Kind(),
		State:      int(base.State),
		Columns:    encoded,
	}

	rec := &savedType{}
	sv.visited[base.Identity] = rec

	if base.ID == 0 {
		if err := sv.create(row); err != nil {
			return 0, err
		}
		rec.id, rec.version = row.ID, row.Version
		if _, err := sv.saveParts(t, row.ID, nil); err != nil {
			return 0, err
		}
	} else {
		stored, err := sv.s.repos.Types.GetByID(sv.dbc, base.ID)
		if err != nil {
			return 0, err
		}
		if stored == nil {
			return 0, &products.NotFoundError{Entity: products.EntityType, ID: base.ID, Identity: base.Identity.String()}
		}
		if stored.Version != base.Version {
			return 0, &products.ConcurrencyConflictError{Entity: products.EntityType, ID: base.ID, Expected: base.Version, Actual: stored.Version}
		}
		rec.id, rec.version = stored.ID, stored.Version

		existing, err := sv.s.repos.Links.ListByParent(sv.dbc, base.ID)
		if err != nil {
			return 0, err
		}
		linksChanged, err := sv.saveParts(t, base.ID, existing)
		if err != nil {
			return 0, err
		}
		if linksChanged || !sameType(stored, row, cols) {
			ok, err := sv.s.repos.Types.UpdateVersioned(sv.dbc, row, base.Version)
			if err != nil {
				return 0, err
			}
			if !ok {
				actual, _, verr := sv.s.repos.Types.GetVersion(sv.dbc, base.ID)
				if verr != nil {
					return 0, verr
				}
				return 0, &products.ConcurrencyConflictError{Entity: products.EntityType, ID: base.ID, Expected: base.Version, Actual: actual}
			}
			rec.version = row.Version
		}
	}

	sv.onCommit(func() {
		base.ID = rec.id
		base.Version = rec.version
	})
	return rec.id, nil
}

func (sv *typeSaver) create(row *rows.ProductType) error {
	identity := products.NewIdentity(row.Identifier, row.Revision)
	taken, err := sv.s.repos.Types.GetByIdentity(sv.dbc, identity)
	if err != nil {
		return err
	}
	if taken != nil {
		return &products.IdentityConflictError{Identity: identity}
	}
	row.Version = 1
	return sv.s.repos.Types.Create(sv.dbc, row)
}

// saveParts writes the link rows of parentID in slice order, recursing into
// each child first. Stored links whose role disappeared are deleted. It
// reports whether any link row changed.
func (sv *typeSaver) saveParts(t products.ProductType, parentID int64, existing []*rows.PartLink) (bool, error) {
	byRole := make(map[string]*rows.PartLink, len(existing))
	for _, lr := range existing {
		byRole[lr.Role] = lr
	}
	seen := map[string]bool{}
	changed := false

	for i, link := range t.Base().Parts {
		if link == nil {
			return false, fmt.Errorf("%w: nil part link on %s", products.ErrInvalidGraph, t.Base().Identity)
		}
		lb := link.Link()
		role := strings.TrimSpace(lb.Role)
		if role == "" {
			return false, fmt.Errorf("%w: empty role on %s", products.ErrInvalidGraph, t.Base().Identity)
		}
		if seen[role] {
			return false, fmt.Errorf("%w: duplicate role %q on %s", products.ErrInvalidGraph, role, t.Base().Identity)
		}
		seen[role] = true
		if lb.Product == nil {
			return false, fmt.Errorf("%w: link %q on %s has no child", products.ErrInvalidGraph, role, t.Base().Identity)
		}

		childID, err := sv.save(lb.Product)
		if err != nil {
			return false, err
		}

		mapper, err := sv.s.strategies.Links().Resolve(link.Kind())
		if err != nil {
			return false, err
		}
		cols := columns.NewRow()
		if err := mapper.SavePartLink(link, cols); err != nil {
			return false, withKind(err, link.Kind())
		}
		encoded, err := encodeRow(cols, link.Kind())
		if err != nil {
			return false, err
		}
		row := &rows.PartLink{
			ParentID: parentID,
			Role:     role,
			Position: i,
			ChildID:  childID,
			TypeName: link.Kind(),
			Columns:  encoded,
		}

		if stored, ok := byRole[role]; ok {
			row.ID = stored.ID
			if stored.Position != row.Position || stored.ChildID != row.ChildID ||
				stored.TypeName != row.TypeName || !sameColumns(stored.Columns, cols) {
				if err := sv.s.repos.Links.Update(sv.dbc, row); err != nil {
					return false, err
				}
				changed = true
			}
		} else {
			if err := sv.s.repos.Links.Create(sv.dbc, row); err != nil {
				return false, err
			}
			changed = true
		}

		linkID := row.ID
		sv.onCommit(func() {
			lb.ID = linkID
			lb.Role = role
			lb.Parent = t
		})
	}

	var stale []int64
	for _, lr := range existing {
		if !seen[lr.Role] {
			stale = append(stale, lr.ID)
		}
	}
	if len(stale) > 0 {
		if err := sv.s.repos.Links.DeleteByIDs(sv.dbc, stale); err != nil {
			return false, err
		}
		changed = true
	}
	return changed, nil
}

func sameType(stored, row *rows.ProductType, cols *columns.Row) bool {
	return stored.Identifier == row.Identifier &&
		stored.Revision == row.Revision &&
		stored.Name == row.Name &&
		stored.TypeName == row.TypeName &&
		stored.State == row.State &&
		sameColumns(stored.Columns, cols)
}
