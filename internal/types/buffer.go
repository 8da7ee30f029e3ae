package types

import (
	"github.com/urbanatlas/urban-backend/internal/geometry"
)

// Buffer is a service coverage zone around an urban object. IsCustom
// marks a user-supplied geometry that must survive default recomputes.
type Buffer struct {
	BufferTypeID  int64            `gorm:"column:buffer_type_id;primaryKey" json:"buffer_type_id"`
	UrbanObjectID int64            `gorm:"column:urban_object_id;primaryKey" json:"urban_object_id"`
	Geometry      geometry.GeoJSON `gorm:"column:geometry;not null" json:"geometry"`
	IsCustom      bool             `gorm:"column:is_custom;not null;default:false" json:"is_custom"`
}

func (Buffer) TableName() string { return "buffers" }

// ScenarioBuffer keys on a scenario urban object id.
type ScenarioBuffer struct {
	BufferTypeID  int64            `gorm:"column:buffer_type_id;primaryKey" json:"buffer_type_id"`
	UrbanObjectID int64            `gorm:"column:urban_object_id;primaryKey" json:"urban_object_id"`
	Geometry      geometry.GeoJSON `gorm:"column:geometry;not null" json:"geometry"`
	IsCustom      bool             `gorm:"column:is_custom;not null;default:false" json:"is_custom"`
}

func (ScenarioBuffer) TableName() string { return "scenario_buffers" }
