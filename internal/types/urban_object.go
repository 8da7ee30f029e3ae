package types

import "time"

// UrbanObject links a physical object, its geometry and an optional
// service into one addressable city object.
type UrbanObject struct {
	UrbanObjectID    int64     `gorm:"column:urban_object_id;primaryKey;autoIncrement" json:"urban_object_id"`
	PhysicalObjectID int64     `gorm:"column:physical_object_id;not null;index" json:"physical_object_id"`
	ObjectGeometryID int64     `gorm:"column:object_geometry_id;not null;index" json:"object_geometry_id"`
	ServiceID        *int64    `gorm:"column:service_id;index" json:"service_id,omitempty"`
	CreatedAt        time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UrbanObject) TableName() string { return "urban_objects" }

// ScenarioUrbanObject is the scenario-side link row. Each component slot
// holds exactly one of a scenario-local id or a public id. A non-nil
// PublicUrbanObjectID marks the row as superseding that public link for
// the scenario; the pair (ScenarioID, PublicUrbanObjectID) is unique so
// two concurrent forks of the same public object cannot both commit.
type ScenarioUrbanObject struct {
	UrbanObjectID          int64     `gorm:"column:urban_object_id;primaryKey;autoIncrement" json:"urban_object_id"`
	ScenarioID             int64     `gorm:"column:scenario_id;not null;index;uniqueIndex:scenario_urban_objects_fork_key" json:"scenario_id"`
	PublicUrbanObjectID    *int64    `gorm:"column:public_urban_object_id;uniqueIndex:scenario_urban_objects_fork_key" json:"public_urban_object_id,omitempty"`
	PhysicalObjectID       *int64    `gorm:"column:physical_object_id;index" json:"physical_object_id,omitempty"`
	PublicPhysicalObjectID *int64    `gorm:"column:public_physical_object_id;index" json:"public_physical_object_id,omitempty"`
	ObjectGeometryID       *int64    `gorm:"column:object_geometry_id;index" json:"object_geometry_id,omitempty"`
	PublicObjectGeometryID *int64    `gorm:"column:public_object_geometry_id;index" json:"public_object_geometry_id,omitempty"`
	ServiceID              *int64    `gorm:"column:service_id;index" json:"service_id,omitempty"`
	PublicServiceID        *int64    `gorm:"column:public_service_id;index" json:"public_service_id,omitempty"`
	CreatedAt              time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt              time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ScenarioUrbanObject) TableName() string { return "scenario_urban_objects" }

// IsSupersedeMarker reports whether the row only hides a public link
// without carrying any components of its own.
func (o ScenarioUrbanObject) IsSupersedeMarker() bool {
	return o.PublicUrbanObjectID != nil &&
		o.PhysicalObjectID == nil && o.PublicPhysicalObjectID == nil &&
		o.ObjectGeometryID == nil && o.PublicObjectGeometryID == nil &&
		o.ServiceID == nil && o.PublicServiceID == nil
}
