package testutil

import (
	"context"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/productgraph/internal/domain/rows"
)

// SeedProductType inserts a bare type row, bypassing the repos.
func SeedProductType(tb testing.TB, ctx context.Context, tx *gorm.DB, identifier string, revision int, typeName string) *rows.ProductType {
	tb.Helper()
	row := &rows.ProductType{
		Identifier: identifier,
		Revision:   revision,
		Name:       identifier,
		TypeName:   typeName,
		Columns:    datatypes.JSON([]byte("{}")),
		Version:    1,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed product type: %v", err)
	}
	return row
}

func SeedPartLink(tb testing.TB, ctx context.Context, tx *gorm.DB, parentID, childID int64, role string) *rows.PartLink {
	tb.Helper()
	row := &rows.PartLink{
		ParentID: parentID,
		ChildID:  childID,
		Role:     role,
		TypeName: "SimpleLink",
		Columns:  datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed part link: %v", err)
	}
	return row
}
