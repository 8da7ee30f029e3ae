package types

import (
	"time"

	"gorm.io/datatypes"
)

type Service struct {
	ServiceID      int64          `gorm:"column:service_id;primaryKey;autoIncrement" json:"service_id"`
	ServiceTypeID  int64          `gorm:"column:service_type_id;not null;index" json:"service_type_id"`
	Name           *string        `gorm:"column:name" json:"name,omitempty"`
	Capacity       *int           `gorm:"column:capacity" json:"capacity,omitempty"`
	IsCapacityReal *bool          `gorm:"column:is_capacity_real" json:"is_capacity_real,omitempty"`
	Properties     datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Service) TableName() string { return "services" }

type ScenarioService struct {
	ServiceID       int64          `gorm:"column:service_id;primaryKey;autoIncrement" json:"service_id"`
	PublicServiceID *int64         `gorm:"column:public_service_id;index" json:"public_service_id,omitempty"`
	ServiceTypeID   int64          `gorm:"column:service_type_id;not null;index" json:"service_type_id"`
	Name            *string        `gorm:"column:name" json:"name,omitempty"`
	Capacity        *int           `gorm:"column:capacity" json:"capacity,omitempty"`
	IsCapacityReal  *bool          `gorm:"column:is_capacity_real" json:"is_capacity_real,omitempty"`
	Properties      datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ScenarioService) TableName() string { return "scenario_services" }
