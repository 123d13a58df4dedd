package rows

import (
	"time"

	"gorm.io/datatypes"
)

type ProductInstance struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64          `gorm:"column:product_id;not null;index" json:"product_id"`
	TypeName  string         `gorm:"column:type_name;not null" json:"type_name"`
	Identity  string         `gorm:"column:identity;index" json:"identity,omitempty"`
	State     int            `gorm:"column:state;not null;default:0" json:"state"`
	Columns   datatypes.JSON `gorm:"column:columns" json:"columns"`
	Version   int64          `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ProductInstance) TableName() string { return "product_instance" }
