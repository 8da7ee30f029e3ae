package types

import (
	"time"

	"gorm.io/datatypes"

	"github.com/urbanatlas/urban-backend/internal/geometry"
)

// Territory is a node of the administrative division tree. Level and
// ListLabel are maintained by the hierarchy resolver inside the same
// transaction as any structural change.
type Territory struct {
	TerritoryID int64            `gorm:"column:territory_id;primaryKey;autoIncrement" json:"territory_id"`
	ParentID    *int64           `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	Parent      *Territory       `gorm:"constraint:OnDelete:RESTRICT;foreignKey:ParentID;references:TerritoryID" json:"-"`
	Name        string           `gorm:"column:name;not null" json:"name"`
	IsCity      bool             `gorm:"column:is_city;not null;default:false" json:"is_city"`
	Level       int              `gorm:"column:level;not null" json:"level"`
	ListLabel   string           `gorm:"column:list_label;not null" json:"list_label"`
	Geometry    geometry.GeoJSON `gorm:"column:geometry" json:"geometry"`
	CentrePoint geometry.GeoJSON `gorm:"column:centre_point" json:"centre_point"`
	Properties  datatypes.JSON   `gorm:"column:properties;type:jsonb" json:"properties"`
	CreatedAt   time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (Territory) TableName() string { return "territories" }
