package types

import (
	"time"

	"gorm.io/datatypes"

	"github.com/urbanatlas/urban-backend/internal/geometry"
)

type FunctionalZone struct {
	FunctionalZoneID     int64            `gorm:"column:functional_zone_id;primaryKey;autoIncrement" json:"functional_zone_id"`
	TerritoryID          int64            `gorm:"column:territory_id;not null;index" json:"territory_id"`
	FunctionalZoneTypeID int64            `gorm:"column:functional_zone_type_id;not null;index" json:"functional_zone_type_id"`
	Geometry             geometry.GeoJSON `gorm:"column:geometry;not null" json:"geometry"`
	Year                 int              `gorm:"column:year;not null" json:"year"`
	Source               string           `gorm:"column:source;not null" json:"source"`
	Properties           datatypes.JSON   `gorm:"column:properties;type:jsonb" json:"properties"`
	CreatedAt            time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt            time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (FunctionalZone) TableName() string { return "functional_zones" }

type ScenarioFunctionalZone struct {
	FunctionalZoneID     int64            `gorm:"column:functional_zone_id;primaryKey;autoIncrement" json:"functional_zone_id"`
	ScenarioID           int64            `gorm:"column:scenario_id;not null;index" json:"scenario_id"`
	FunctionalZoneTypeID int64            `gorm:"column:functional_zone_type_id;not null;index" json:"functional_zone_type_id"`
	Geometry             geometry.GeoJSON `gorm:"column:geometry;not null" json:"geometry"`
	Year                 int              `gorm:"column:year;not null" json:"year"`
	Source               string           `gorm:"column:source;not null" json:"source"`
	Properties           datatypes.JSON   `gorm:"column:properties;type:jsonb" json:"properties"`
	CreatedAt            time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt            time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (ScenarioFunctionalZone) TableName() string { return "scenario_functional_zones" }
