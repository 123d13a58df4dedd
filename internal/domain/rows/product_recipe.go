package rows

import (
	"time"

	"gorm.io/datatypes"
)

type ProductRecipe struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID      int64          `gorm:"column:product_id;not null;index" json:"product_id"`
	TypeName       string         `gorm:"column:type_name;not null" json:"type_name"`
	Name           string         `gorm:"column:name;not null" json:"name"`
	Revision       int            `gorm:"column:revision;not null;default:0" json:"revision"`
	State          int            `gorm:"column:state;not null;default:0" json:"state"`
	Classification int            `gorm:"column:classification;not null;default:0;index" json:"classification"`
	Columns        datatypes.JSON `gorm:"column:columns" json:"columns"`
	Version        int64          `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt      time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ProductRecipe) TableName() string { return "product_recipe" }

// All lists every row entity for migration.
func All() []any {
	return []any{
		&ProductType{},
		&PartLink{},
		&ProductInstance{},
		&ProductRecipe{},
	}
}
