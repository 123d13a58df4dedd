// Package rows holds the stored form of the product catalog: one generic row
// per entity with a kind discriminator and a JSON column document written by
// the kind's mapper.
package rows

import (
	"time"

	"gorm.io/datatypes"
)

type ProductType struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Identifier string         `gorm:"column:identifier;not null;uniqueIndex:idx_product_type_identity,priority:1" json:"identifier"`
	Revision   int            `gorm:"column:revision;not null;uniqueIndex:idx_product_type_identity,priority:2" json:"revision"`
	Name       string         `gorm:"column:name;index" json:"name"`
	TypeName   string         `gorm:"column:type_name;not null;index" json:"type_name"`
	State      int            `gorm:"column:state;not null;default:0" json:"state"`
	Columns    datatypes.JSON `gorm:"column:columns" json:"columns"`
	Version    int64          `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt  time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ProductType) TableName() string { return "product_type" }
