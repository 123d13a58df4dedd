package handlers

import (
	"github.com/yungbote/productgraph/internal/columns"
	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/strategy"
)

type ProductRef struct {
	ID         int64  `json:"id"`
	Kind       string `json:"kind"`
	Identifier string `json:"identifier"`
	Revision   int    `json:"revision"`
	Name       string `json:"name,omitempty"`
}

type PartView struct {
	ID      int64          `json:"id"`
	Role    string         `json:"role"`
	Kind    string         `json:"kind"`
	Columns map[string]any `json:"columns,omitempty"`
	Product ProductRef     `json:"product"`
}

type TypeView struct {
	ProductRef
	State   string         `json:"state"`
	Version int64          `json:"version"`
	Columns map[string]any `json:"columns"`
	Parts   []PartView     `json:"parts"`
}

type RecipeView struct {
	ID             int64          `json:"id"`
	Kind           string         `json:"kind"`
	Name           string         `json:"name"`
	Revision       int            `json:"revision"`
	State          int            `json:"state"`
	Classification string         `json:"classification"`
	Version        int64          `json:"version"`
	Columns        map[string]any `json:"columns"`
}

type InstanceView struct {
	ID       int64          `json:"id"`
	Kind     string         `json:"kind"`
	Identity string         `json:"identity,omitempty"`
	State    string         `json:"state"`
	Version  int64          `json:"version"`
	Columns  map[string]any `json:"columns"`
	Product  ProductRef     `json:"product"`
}

type ImporterView struct {
	Name       string            `json:"name"`
	Parameters map[string]string `json:"parameters"`
}

func refOf(t products.ProductType) ProductRef {
	if t == nil {
		return ProductRef{}
	}
	b := t.Base()
	return ProductRef{
		ID:         b.ID,
		Kind:       t.Kind(),
		Identifier: b.Identity.Identifier,
		Revision:   b.Identity.Revision,
		Name:       b.Name,
	}
}

// viewType renders t with its direct parts. Children appear as references.
func viewType(s *strategy.Strategies, t products.ProductType) (TypeView, error) {
	m, err := s.Types().Resolve(t.Kind())
	if err != nil {
		return TypeView{}, err
	}
	row := columns.NewRow()
	if err := m.SaveType(t, row); err != nil {
		return TypeView{}, err
	}
	b := t.Base()
	out := TypeView{
		ProductRef: refOf(t),
		State:      b.State.String(),
		Version:    b.Version,
		Columns:    row.Values(),
		Parts:      make([]PartView, 0, len(b.Parts)),
	}
	for _, p := range b.Parts {
		if p == nil {
			continue
		}
		lm, err := s.Links().Resolve(p.Kind())
		if err != nil {
			return TypeView{}, err
		}
		lrow := columns.NewRow()
		if err := lm.SavePartLink(p, lrow); err != nil {
			return TypeView{}, err
		}
		l := p.Link()
		pv := PartView{ID: l.ID, Role: l.Role, Kind: p.Kind(), Product: refOf(l.Product)}
		if lrow.Len() > 0 {
			pv.Columns = lrow.Values()
		}
		out.Parts = append(out.Parts, pv)
	}
	return out, nil
}

func viewRecipe(s *strategy.Strategies, r products.ProductRecipe) (RecipeView, error) {
	m, err := s.Recipes().Resolve(r.Kind())
	if err != nil {
		return RecipeView{}, err
	}
	row := columns.NewRow()
	if err := m.SaveRecipe(r, row); err != nil {
		return RecipeView{}, err
	}
	b := r.Recipe()
	return RecipeView{
		ID:             b.ID,
		Kind:           r.Kind(),
		Name:           b.Name,
		Revision:       b.Revision,
		State:          int(b.State),
		Classification: b.Classification.String(),
		Version:        b.Version,
		Columns:        row.Values(),
	}, nil
}

func viewInstance(s *strategy.Strategies, inst products.ProductInstance) (InstanceView, error) {
	m, err := s.Instances().Resolve(inst.Kind())
	if err != nil {
		return InstanceView{}, err
	}
	row := columns.NewRow()
	if err := m.SaveInstance(inst, row); err != nil {
		return InstanceView{}, err
	}
	b := inst.Instance()
	return InstanceView{
		ID:       b.ID,
		Kind:     inst.Kind(),
		Identity: b.Identity,
		State:    b.State.String(),
		Version:  b.Version,
		Columns:  row.Values(),
		Product:  refOf(b.Type),
	}, nil
}
