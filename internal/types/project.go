package types

import (
	"time"

	"gorm.io/datatypes"

	"github.com/urbanatlas/urban-backend/internal/geometry"
)

// Project is a planning effort anchored to a territory. A regional
// project spans its whole anchor territory and its overlays skip
// boundary clipping.
type Project struct {
	ProjectID   int64          `gorm:"column:project_id;primaryKey;autoIncrement" json:"project_id"`
	UserID      string         `gorm:"column:user_id;not null;index" json:"user_id"`
	TerritoryID int64          `gorm:"column:territory_id;not null;index" json:"territory_id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Description *string        `gorm:"column:description" json:"description,omitempty"`
	IsRegional  bool           `gorm:"column:is_regional;not null;default:false" json:"is_regional"`
	Public      bool           `gorm:"column:public;not null;default:false" json:"public"`
	Properties  datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

// ProjectTerritory stores the drawn project boundary and its centre.
type ProjectTerritory struct {
	ProjectTerritoryID int64            `gorm:"column:project_territory_id;primaryKey;autoIncrement" json:"project_territory_id"`
	ProjectID          int64            `gorm:"column:project_id;not null;uniqueIndex" json:"project_id"`
	Geometry           geometry.GeoJSON `gorm:"column:geometry;not null" json:"geometry"`
	CentrePoint        geometry.GeoJSON `gorm:"column:centre_point;not null" json:"centre_point"`
	Properties         datatypes.JSON   `gorm:"column:properties;type:jsonb" json:"properties"`
	CreatedAt          time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (ProjectTerritory) TableName() string { return "project_territories" }
