package types

import (
	"time"

	"gorm.io/datatypes"
)

type PhysicalObject struct {
	PhysicalObjectID     int64          `gorm:"column:physical_object_id;primaryKey;autoIncrement" json:"physical_object_id"`
	PhysicalObjectTypeID int64          `gorm:"column:physical_object_type_id;not null;index" json:"physical_object_type_id"`
	Name                 *string        `gorm:"column:name" json:"name,omitempty"`
	Properties           datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties"`
	CreatedAt            time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (PhysicalObject) TableName() string { return "physical_objects" }

// ScenarioPhysicalObject is a scenario-local physical object. When it was
// forked from a public one, PublicPhysicalObjectID records the origin.
type ScenarioPhysicalObject struct {
	PhysicalObjectID       int64          `gorm:"column:physical_object_id;primaryKey;autoIncrement" json:"physical_object_id"`
	PublicPhysicalObjectID *int64         `gorm:"column:public_physical_object_id;index" json:"public_physical_object_id,omitempty"`
	PhysicalObjectTypeID   int64          `gorm:"column:physical_object_type_id;not null;index" json:"physical_object_type_id"`
	Name                   *string        `gorm:"column:name" json:"name,omitempty"`
	Properties             datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties"`
	CreatedAt              time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt              time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ScenarioPhysicalObject) TableName() string { return "scenario_physical_objects" }
