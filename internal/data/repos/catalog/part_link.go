package catalog

import (
	"gorm.io/gorm"

	"github.com/yungbote/productgraph/internal/domain/rows"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
	"github.com/yungbote/productgraph/internal/platform/logger"
)

type PartLinkRepo interface {
	Create(dbc dbctx.Context, row *rows.PartLink) error
	Update(dbc dbctx.Context, row *rows.PartLink) error
	ListByParent(dbc dbctx.Context, parentID int64) ([]*rows.PartLink, error)
	ListByChild(dbc dbctx.Context, childID int64) ([]*rows.PartLink, error)
	DeleteByIDs(dbc dbctx.Context, ids []int64) error
}

type partLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPartLinkRepo(db *gorm.DB, baseLog *logger.Logger) PartLinkRepo {
	return &partLinkRepo{
		db:  db,
		log: baseLog.With("repo", "PartLinkRepo"),
	}
}

func (r *partLinkRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Context())
}

func (r *partLinkRepo) Create(dbc dbctx.Context, row *rows.PartLink) error {
	return r.tx(dbc).Create(row).Error
}

// Update rewrites the link payload. Parent and role identify the row and
// never change.
func (r *partLinkRepo) Update(dbc dbctx.Context, row *rows.PartLink) error {
	return r.tx(dbc).Model(&rows.PartLink{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"position":  row.Position,
			"child_id":  row.ChildID,
			"type_name": row.TypeName,
			"columns":   row.Columns,
		}).Error
}

// ListByParent returns the links of one parent in stored order.
func (r *partLinkRepo) ListByParent(dbc dbctx.Context, parentID int64) ([]*rows.PartLink, error) {
	var out []*rows.PartLink
	if err := r.tx(dbc).
		Where("parent_id = ?", parentID).
		Order("position ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *partLinkRepo) ListByChild(dbc dbctx.Context, childID int64) ([]*rows.PartLink, error) {
	var out []*rows.PartLink
	if err := r.tx(dbc).
		Where("child_id = ?", childID).
		Order("parent_id ASC").
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *partLinkRepo) DeleteByIDs(dbc dbctx.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.tx(dbc).Where("id IN ?", ids).Delete(&rows.PartLink{}).Error
}
