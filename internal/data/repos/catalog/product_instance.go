package catalog

import (
	"gorm.io/gorm"

	"github.com/yungbote/productgraph/internal/domain/rows"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
	"github.com/yungbote/productgraph/internal/platform/logger"
)

type ProductInstanceRepo interface {
	Create(dbc dbctx.Context, in []*rows.ProductInstance) error
	UpdateVersioned(dbc dbctx.Context, row *rows.ProductInstance, expected int64) (bool, error)
	GetByID(dbc dbctx.Context, id int64) (*rows.ProductInstance, error)
	GetByIdentity(dbc dbctx.Context, identity string) (*rows.ProductInstance, error)
	ListByProduct(dbc dbctx.Context, productID int64) ([]*rows.ProductInstance, error)
	GetVersion(dbc dbctx.Context, id int64) (int64, bool, error)
}

type productInstanceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductInstanceRepo(db *gorm.DB, baseLog *logger.Logger) ProductInstanceRepo {
	return &productInstanceRepo{
		db:  db,
		log: baseLog.With("repo", "ProductInstanceRepo"),
	}
}

func (r *productInstanceRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Context())
}

func (r *productInstanceRepo) Create(dbc dbctx.Context, in []*rows.ProductInstance) error {
	if len(in) == 0 {
		return nil
	}
	for _, row := range in {
		if row.Version == 0 {
			row.Version = 1
		}
	}
	return r.tx(dbc).Create(&in).Error
}

func (r *productInstanceRepo) UpdateVersioned(dbc dbctx.Context, row *rows.ProductInstance, expected int64) (bool, error) {
	ok, err := versionedUpdate(r.tx(dbc), &rows.ProductInstance{}, row.ID, expected, map[string]interface{}{
		"product_id": row.ProductID,
		"type_name":  row.TypeName,
		"identity":   row.Identity,
		"state":      row.State,
		"columns":    row.Columns,
	})
	if err == nil && ok {
		row.Version = expected + 1
	}
	return ok, err
}

func (r *productInstanceRepo) GetByID(dbc dbctx.Context, id int64) (*rows.ProductInstance, error) {
	if id <= 0 {
		return nil, nil
	}
	var out []*rows.ProductInstance
	if err := r.tx(dbc).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// GetByIdentity returns the newest instance carrying identity.
func (r *productInstanceRepo) GetByIdentity(dbc dbctx.Context, identity string) (*rows.ProductInstance, error) {
	if identity == "" {
		return nil, nil
	}
	var out []*rows.ProductInstance
	if err := r.tx(dbc).Where("identity = ?", identity).Order("id DESC").Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *productInstanceRepo) ListByProduct(dbc dbctx.Context, productID int64) ([]*rows.ProductInstance, error) {
	var out []*rows.ProductInstance
	if err := r.tx(dbc).Where("product_id = ?", productID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productInstanceRepo) GetVersion(dbc dbctx.Context, id int64) (int64, bool, error) {
	return storedVersion(r.tx(dbc), &rows.ProductInstance{}, id)
}
