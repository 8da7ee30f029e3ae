package types

import (
	"time"

	"github.com/urbanatlas/urban-backend/internal/geometry"
)

type ObjectGeometry struct {
	ObjectGeometryID int64            `gorm:"column:object_geometry_id;primaryKey;autoIncrement" json:"object_geometry_id"`
	TerritoryID      int64            `gorm:"column:territory_id;not null;index" json:"territory_id"`
	Geometry         geometry.GeoJSON `gorm:"column:geometry;not null" json:"geometry"`
	CentrePoint      geometry.GeoJSON `gorm:"column:centre_point;not null" json:"centre_point"`
	Address          *string          `gorm:"column:address" json:"address,omitempty"`
	OsmID            *string          `gorm:"column:osm_id" json:"osm_id,omitempty"`
	CreatedAt        time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (ObjectGeometry) TableName() string { return "object_geometries" }

type ScenarioObjectGeometry struct {
	ObjectGeometryID       int64            `gorm:"column:object_geometry_id;primaryKey;autoIncrement" json:"object_geometry_id"`
	PublicObjectGeometryID *int64           `gorm:"column:public_object_geometry_id;index" json:"public_object_geometry_id,omitempty"`
	TerritoryID            int64            `gorm:"column:territory_id;not null;index" json:"territory_id"`
	Geometry               geometry.GeoJSON `gorm:"column:geometry;not null" json:"geometry"`
	CentrePoint            geometry.GeoJSON `gorm:"column:centre_point;not null" json:"centre_point"`
	Address                *string          `gorm:"column:address" json:"address,omitempty"`
	OsmID                  *string          `gorm:"column:osm_id" json:"osm_id,omitempty"`
	CreatedAt              time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt              time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (ScenarioObjectGeometry) TableName() string { return "scenario_object_geometries" }
