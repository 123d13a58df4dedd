package catalog

import (
	"gorm.io/gorm"

	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/domain/rows"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
	"github.com/yungbote/productgraph/internal/platform/logger"
)

type ProductRecipeRepo interface {
	Create(dbc dbctx.Context, row *rows.ProductRecipe) error
	UpdateVersioned(dbc dbctx.Context, row *rows.ProductRecipe, expected int64) (bool, error)
	GetByID(dbc dbctx.Context, id int64) (*rows.ProductRecipe, error)
	ListByProduct(dbc dbctx.Context, productID int64, classification products.RecipeClassification) ([]*rows.ProductRecipe, error)
	DeleteByIDs(dbc dbctx.Context, ids []int64) error
	GetVersion(dbc dbctx.Context, id int64) (int64, bool, error)
}

type productRecipeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRecipeRepo(db *gorm.DB, baseLog *logger.Logger) ProductRecipeRepo {
	return &productRecipeRepo{
		db:  db,
		log: baseLog.With("repo", "ProductRecipeRepo"),
	}
}

func (r *productRecipeRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Context())
}

func (r *productRecipeRepo) Create(dbc dbctx.Context, row *rows.ProductRecipe) error {
	if row.Version == 0 {
		row.Version = 1
	}
	return r.tx(dbc).Create(row).Error
}

func (r *productRecipeRepo) UpdateVersioned(dbc dbctx.Context, row *rows.ProductRecipe, expected int64) (bool, error) {
	ok, err := versionedUpdate(r.tx(dbc), &rows.ProductRecipe{}, row.ID, expected, map[string]interface{}{
		"product_id":     row.ProductID,
		"type_name":      row.TypeName,
		"name":           row.Name,
		"revision":       row.Revision,
		"state":          row.State,
		"classification": row.Classification,
		"columns":        row.Columns,
	})
	if err == nil && ok {
		row.Version = expected + 1
	}
	return ok, err
}

func (r *productRecipeRepo) GetByID(dbc dbctx.Context, id int64) (*rows.ProductRecipe, error) {
	if id <= 0 {
		return nil, nil
	}
	var out []*rows.ProductRecipe
	if err := r.tx(dbc).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// ListByProduct returns the recipes of productID sharing a flag with
// classification. Unset returns all of them.
func (r *productRecipeRepo) ListByProduct(dbc dbctx.Context, productID int64, classification products.RecipeClassification) ([]*rows.ProductRecipe, error) {
	q := r.tx(dbc).Where("product_id = ?", productID)
	if classification != products.ClassificationUnset {
		q = q.Where("(classification & ?) <> 0", int(classification))
	}
	var out []*rows.ProductRecipe
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRecipeRepo) DeleteByIDs(dbc dbctx.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.tx(dbc).Where("id IN ?", ids).Delete(&rows.ProductRecipe{}).Error
}

func (r *productRecipeRepo) GetVersion(dbc dbctx.Context, id int64) (int64, bool, error) {
	return storedVersion(r.tx(dbc), &rows.ProductRecipe{}, id)
}
