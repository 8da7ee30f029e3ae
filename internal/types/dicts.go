package types

import (
	"gorm.io/datatypes"
)

// PhysicalObjectFunction is a node of the physical object function tree.
type PhysicalObjectFunction struct {
	PhysicalObjectFunctionID int64                   `gorm:"column:physical_object_function_id;primaryKey;autoIncrement" json:"physical_object_function_id"`
	ParentID                 *int64                  `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	Parent                   *PhysicalObjectFunction `gorm:"constraint:OnDelete:CASCADE;foreignKey:ParentID;references:PhysicalObjectFunctionID" json:"-"`
	Name                     string                  `gorm:"column:name;not null" json:"name"`
	Code                     string                  `gorm:"column:code;not null" json:"code"`
	Level                    int                     `gorm:"column:level;not null" json:"level"`
	ListLabel                string                  `gorm:"column:list_label;not null" json:"list_label"`
}

func (PhysicalObjectFunction) TableName() string { return "physical_object_functions_dict" }

type PhysicalObjectType struct {
	PhysicalObjectTypeID     int64                   `gorm:"column:physical_object_type_id;primaryKey;autoIncrement" json:"physical_object_type_id"`
	PhysicalObjectFunctionID *int64                  `gorm:"column:physical_object_function_id;index" json:"physical_object_function_id,omitempty"`
	PhysicalObjectFunction   *PhysicalObjectFunction `gorm:"foreignKey:PhysicalObjectFunctionID;references:PhysicalObjectFunctionID" json:"-"`
	Name                     string                  `gorm:"column:name;not null;uniqueIndex" json:"name"`
}

func (PhysicalObjectType) TableName() string { return "physical_object_types_dict" }

// UrbanFunction is a node of the urban function tree under which service
// types are classified.
type UrbanFunction struct {
	UrbanFunctionID int64          `gorm:"column:urban_function_id;primaryKey;autoIncrement" json:"urban_function_id"`
	ParentID        *int64         `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	Parent          *UrbanFunction `gorm:"constraint:OnDelete:CASCADE;foreignKey:ParentID;references:UrbanFunctionID" json:"-"`
	Name            string         `gorm:"column:name;not null" json:"name"`
	Code            string         `gorm:"column:code;not null" json:"code"`
	Level           int            `gorm:"column:level;not null" json:"level"`
	ListLabel       string         `gorm:"column:list_label;not null" json:"list_label"`
}

func (UrbanFunction) TableName() string { return "urban_functions_dict" }

type ServiceType struct {
	ServiceTypeID   int64          `gorm:"column:service_type_id;primaryKey;autoIncrement" json:"service_type_id"`
	UrbanFunctionID *int64         `gorm:"column:urban_function_id;index" json:"urban_function_id,omitempty"`
	UrbanFunction   *UrbanFunction `gorm:"foreignKey:UrbanFunctionID;references:UrbanFunctionID" json:"-"`
	Name            string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Code            string         `gorm:"column:code;not null" json:"code"`
	CapacityModeled *int           `gorm:"column:capacity_modeled" json:"capacity_modeled,omitempty"`
	Properties      datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties"`
}

func (ServiceType) TableName() string { return "service_types_dict" }

type BufferType struct {
	BufferTypeID int64  `gorm:"column:buffer_type_id;primaryKey;autoIncrement" json:"buffer_type_id"`
	Name         string `gorm:"column:name;not null;uniqueIndex" json:"name"`
}

func (BufferType) TableName() string { return "buffer_types_dict" }

// DefaultBufferValue is the default buffer radius in meters for a
// (buffer type, physical object type) pair. Non-custom buffers are
// rebuilt from this radius when their object geometry changes.
type DefaultBufferValue struct {
	BufferTypeID         int64   `gorm:"column:buffer_type_id;primaryKey" json:"buffer_type_id"`
	PhysicalObjectTypeID int64   `gorm:"column:physical_object_type_id;primaryKey" json:"physical_object_type_id"`
	BufferValue          float64 `gorm:"column:buffer_value;not null" json:"buffer_value"`
}

func (DefaultBufferValue) TableName() string { return "default_buffer_values_dict" }

type MeasurementUnit struct {
	MeasurementUnitID int64  `gorm:"column:measurement_unit_id;primaryKey;autoIncrement" json:"measurement_unit_id"`
	Name              string `gorm:"column:name;not null;uniqueIndex" json:"name"`
}

func (MeasurementUnit) TableName() string { return "measurement_units_dict" }

// Indicator is a node of the indicator tree scenario values attach to.
type Indicator struct {
	IndicatorID       int64            `gorm:"column:indicator_id;primaryKey;autoIncrement" json:"indicator_id"`
	ParentID          *int64           `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	Parent            *Indicator       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ParentID;references:IndicatorID" json:"-"`
	Name              string           `gorm:"column:name;not null" json:"name"`
	MeasurementUnitID *int64           `gorm:"column:measurement_unit_id" json:"measurement_unit_id,omitempty"`
	MeasurementUnit   *MeasurementUnit `gorm:"foreignKey:MeasurementUnitID;references:MeasurementUnitID" json:"-"`
	Level             int              `gorm:"column:level;not null" json:"level"`
	ListLabel         string           `gorm:"column:list_label;not null" json:"list_label"`
}

func (Indicator) TableName() string { return "indicators_dict" }

type FunctionalZoneType struct {
	FunctionalZoneTypeID int64   `gorm:"column:functional_zone_type_id;primaryKey;autoIncrement" json:"functional_zone_type_id"`
	Name                 string  `gorm:"column:name;not null;uniqueIndex" json:"name"`
	ZoneNickname         *string `gorm:"column:zone_nickname" json:"zone_nickname,omitempty"`
	Description          *string `gorm:"column:description" json:"description,omitempty"`
}

func (FunctionalZoneType) TableName() string { return "functional_zone_types_dict" }
