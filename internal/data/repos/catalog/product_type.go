package catalog

import (
	"gorm.io/gorm"

	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/domain/rows"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
	"github.com/yungbote/productgraph/internal/platform/logger"
)

type ProductTypeRepo interface {
	Create(dbc dbctx.Context, row *rows.ProductType) error
	GetByID(dbc dbctx.Context, id int64) (*rows.ProductType, error)
	GetByIDs(dbc dbctx.Context, ids []int64) ([]*rows.ProductType, error)
	GetByIdentity(dbc dbctx.Context, identity products.ProductIdentity) (*rows.ProductType, error)
	Find(dbc dbctx.Context, q products.ProductQuery) ([]*rows.ProductType, error)
	UpdateVersioned(dbc dbctx.Context, row *rows.ProductType, expected int64) (bool, error)
	GetVersion(dbc dbctx.Context, id int64) (int64, bool, error)
}

type productTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductTypeRepo(db *gorm.DB, baseLog *logger.Logger) ProductTypeRepo {
	return &productTypeRepo{
		db:  db,
		log: baseLog.With("repo", "ProductTypeRepo"),
	}
}

func (r *productTypeRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Context())
}

// Create inserts row with version 1. A taken identity yields
// *products.IdentityConflictError.
func (r *productTypeRepo) Create(dbc dbctx.Context, row *rows.ProductType) error {
	if row.Version == 0 {
		row.Version = 1
	}
	if err := r.tx(dbc).Create(row).Error; err != nil {
		if IsUniqueViolation(err) {
			return &products.IdentityConflictError{
				Identity: products.NewIdentity(row.Identifier, row.Revision),
				Cause:    err,
			}
		}
		return err
	}
	return nil
}

func (r *productTypeRepo) GetByID(dbc dbctx.Context, id int64) (*rows.ProductType, error) {
	if id <= 0 {
		return nil, nil
	}
	var out []*rows.ProductType
	if err := r.tx(dbc).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *productTypeRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*rows.ProductType, error) {
	var out []*rows.ProductType
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIdentity returns nil when the identity is not stored. A latest
// identity selects the highest revision.
func (r *productTypeRepo) GetByIdentity(dbc dbctx.Context, identity products.ProductIdentity) (*rows.ProductType, error) {
	if identity.Identifier == "" {
		return nil, nil
	}
	q := r.tx(dbc).Where("identifier = ?", identity.Identifier)
	if identity.IsLatest() {
		q = q.Order("revision DESC")
	} else {
		q = q.Where("revision = ?", identity.Revision)
	}
	var out []*rows.ProductType
	if err := q.Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *productTypeRepo) Find(dbc dbctx.Context, q products.ProductQuery) ([]*rows.ProductType, error) {
	db := r.tx(dbc).Model(&rows.ProductType{})
	if q.Identifier != "" {
		if prefix, ok := q.IdentifierPrefix(); ok {
			db = db.Where("identifier LIKE ?", prefix+"%")
		} else {
			db = db.Where("identifier = ?", q.Identifier)
		}
	}
	if q.Name != "" {
		db = db.Where("name LIKE ?", "%"+q.Name+"%")
	}
	if q.Kind != "" {
		db = db.Where("type_name = ?", q.Kind)
	}
	switch q.RevisionFilter {
	case products.RevisionLatest:
		db = db.Where("revision = (SELECT MAX(p2.revision) FROM product_type p2 WHERE p2.identifier = product_type.identifier)")
	case products.RevisionSpecific:
		db = db.Where("revision = ?", q.Revision)
	}
	var out []*rows.ProductType
	if err := db.Order("identifier ASC").Order("revision ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateVersioned writes row only if the stored version equals expected. On
// success row.Version holds the new version.
func (r *productTypeRepo) UpdateVersioned(dbc dbctx.Context, row *rows.ProductType, expected int64) (bool, error) {
	ok, err := versionedUpdate(r.tx(dbc), &rows.ProductType{}, row.ID, expected, map[string]interface{}{
		"identifier": row.Identifier,
		"revision":   row.Revision,
		"name":       row.Name,
		"type_name":  row.TypeName,
		"state":      row.State,
		"columns":    row.Columns,
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return false, &products.IdentityConflictError{
				Identity: products.NewIdentity(row.Identifier, row.Revision),
				Cause:    err,
			}
		}
		return false, err
	}
	if ok {
		row.Version = expected + 1
	}
	return ok, nil
}

func (r *productTypeRepo) GetVersion(dbc dbctx.Context, id int64) (int64, bool, error) {
	return storedVersion(r.tx(dbc), &rows.ProductType{}, id)
}
