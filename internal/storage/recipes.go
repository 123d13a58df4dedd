package storage

import (
	"fmt"

	"github.com/yungbote/productgraph/internal/columns"
	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/domain/rows"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
)

// SaveRecipe writes one recipe and returns its id. The recipe's product must
// be stored.
func (s *ProductStorage) SaveRecipe(dbc dbctx.Context, r products.ProductRecipe) (int64, error) {
	var id int64
	err := s.inTx(dbc, "save_recipe", func(dbc dbctx.Context, onCommit func(func())) error {
		var err error
		id, err = s.saveRecipe(dbc, r, 0, map[int64]bool{}, onCommit)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SaveRecipes makes recipes the complete recipe set of productID: listed
// recipes are written, stored ones missing from the list are removed.
// Recipes without a product are bound to the loaded productID on commit.
func (s *ProductStorage) SaveRecipes(dbc dbctx.Context, productID int64, recipes []products.ProductRecipe) error {
	return s.inTx(dbc, "save_recipes", func(dbc dbctx.Context, onCommit func(func())) error {
		stored, err := s.repos.Types.GetByID(dbc, productID)
		if err != nil {
			return err
		}
		if stored == nil {
			return &products.NotFoundError{Entity: products.EntityType, ID: productID}
		}
		known := map[int64]bool{productID: true}
		keep := map[int64]bool{}
		var owner products.ProductType
		for _, r := range recipes {
			id, err := s.saveRecipe(dbc, r, productID, known, onCommit)
			if err != nil {
				return err
			}
			keep[id] = true
			if base := r.Recipe(); base.Product == nil {
				if owner == nil {
					if owner, err = s.newLoader(dbc).materialize(stored); err != nil {
						return err
					}
				}
				bound := owner
				onCommit(func() { base.Product = bound })
			}
		}
		existing, err := s.repos.Recipes.ListByProduct(dbc, productID, products.ClassificationUnset)
		if err != nil {
			return err
		}
		var stale []int64
		for _, row := range existing {
			if !keep[row.ID] {
				stale = append(stale, row.ID)
			}
		}
		return s.repos.Recipes.DeleteByIDs(dbc, stale)
	})
}

func (s *ProductStorage) saveRecipe(dbc dbctx.Context, r products.ProductRecipe, productID int64, known map[int64]bool, onCommit func(func())) (int64, error) {
	if r == nil {
		return 0, fmt.Errorf("%w: nil recipe", products.ErrInvalidGraph)
	}
	base := r.Recipe()
	if productID != 0 && base.Product != nil && base.Product.Base().ID != productID {
		return 0, fmt.Errorf("%w: recipe %q belongs to product %d, not %d", products.ErrInvalidGraph, base.Name, base.Product.Base().ID, productID)
	}
	if productID == 0 {
		var err error
		productID, err = s.requireType(dbc, base.Product, known)
		if err != nil {
			return 0, err
		}
	}

	mapper, err := s.strategies.Recipes().Resolve(r.Kind())
	if err != nil {
		return 0, err
	}
	cols := columns.NewRow()
	if err := mapper.SaveRecipe(r, cols); err != nil {
		return 0, withKind(err, r.Kind())
	}
	encoded, err := encodeRow(cols, r.Kind())
	if err != nil {
		return 0, err
	}
	row := &rows.ProductRecipe{
		ID:             base.ID,
		ProductID:      productID,
		TypeName:       r.Kind(),
		Name:           base.Name,
		Revision:       base.Revision,
		State:          int(base.State),
		Classification: int(base.Classification),
		Columns:        encoded,
	}

	version := base.Version
	if base.ID == 0 {
		if err := s.repos.Recipes.Create(dbc, row); err != nil {
			return 0, err
		}
		version = row.Version
	} else {
		stored, err := s.repos.Recipes.GetByID(dbc, base.ID)
		if err != nil {
			return 0, err
		}
		if stored == nil {
			return 0, &products.NotFoundError{Entity: products.EntityRecipe, ID: base.ID}
		}
		if stored.Version != base.Version {
			return 0, &products.ConcurrencyConflictError{Entity: products.EntityRecipe, ID: base.ID, Expected: base.Version, Actual: stored.Version}
		}
		if !sameRecipe(stored, row, cols) {
			ok, err := s.repos.Recipes.UpdateVersioned(dbc, row, base.Version)
			if err != nil {
				return 0, err
			}
			if !ok {
				actual, _, verr := s.repos.Recipes.GetVersion(dbc, base.ID)
				if verr != nil {
					return 0, verr
				}
				return 0, &products.ConcurrencyConflictError{Entity: products.EntityRecipe, ID: base.ID, Expected: base.Version, Actual: actual}
			}
			version = row.Version
		}
	}

	id := row.ID
	onCommit(func() {
		base.ID = id
		base.Version = version
	})
	return id, nil
}

func sameRecipe(stored, row *rows.ProductRecipe, cols *columns.Row) bool {
	return stored.ProductID == row.ProductID &&
		stored.TypeName == row.TypeName &&
		stored.Name == row.Name &&
		stored.Revision == row.Revision &&
		stored.State == row.State &&
		stored.Classification == row.Classification &&
		sameColumns(stored.Columns, cols)
}

func (s *ProductStorage) LoadRecipe(dbc dbctx.Context, id int64) (products.ProductRecipe, error) {
	var out products.ProductRecipe
	err := s.inTx(dbc, "load_recipe", func(dbc dbctx.Context, _ func(func())) error {
		row, err := s.repos.Recipes.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if row == nil {
			return &products.NotFoundError{Entity: products.EntityRecipe, ID: id}
		}
		out, err = s.materializeRecipe(s.newLoader(dbc), row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadRecipes returns the recipes of productID matching classification;
// ClassificationUnset returns all of them.
func (s *ProductStorage) LoadRecipes(dbc dbctx.Context, productID int64, classification products.RecipeClassification) ([]products.ProductRecipe, error) {
	var out []products.ProductRecipe
	err := s.inTx(dbc, "load_recipes", func(dbc dbctx.Context, _ func(func())) error {
		found, err := s.repos.Recipes.ListByProduct(dbc, productID, classification)
		if err != nil {
			return err
		}
		ld := s.newLoader(dbc)
		out = make([]products.ProductRecipe, 0, len(found))
		for _, row := range found {
			r, err := s.materializeRecipe(ld, row)
			if err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ProductStorage) materializeRecipe(ld *typeLoader, row *rows.ProductRecipe) (products.ProductRecipe, error) {
	kinds := s.strategies.Recipes()
	r, err := kinds.New(row.TypeName)
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
	if err := mapper.LoadRecipe(cols, r); err != nil {
		return nil, err
	}
	product, err := ld.load(row.ProductID)
	if err != nil {
		return nil, err
	}
	base := r.Recipe()
	base.ID = row.ID
	base.Name = row.Name
	base.Revision = row.Revision
	base.State = products.RecipeState(row.State)
	base.Classification = products.RecipeClassification(row.Classification)
	base.Product = product
	base.Version = row.Version
	return r, nil
}
