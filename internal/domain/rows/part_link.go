package rows

import (
	"time"

	"gorm.io/datatypes"
)

// PartLink is owned by its parent row; the child is only referenced.
type PartLink struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ParentID  int64          `gorm:"column:parent_id;not null;uniqueIndex:idx_part_link_role,priority:1" json:"parent_id"`
	Role      string         `gorm:"column:role;not null;uniqueIndex:idx_part_link_role,priority:2" json:"role"`
	Position  int            `gorm:"column:position;not null;default:0" json:"position"`
	ChildID   int64          `gorm:"column:child_id;not null;index" json:"child_id"`
	TypeName  string         `gorm:"column:type_name;not null" json:"type_name"`
	Columns   datatypes.JSON `gorm:"column:columns" json:"columns"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (PartLink) TableName() string { return "part_link" }
