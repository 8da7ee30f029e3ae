package types

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Provenance tells a merged-view consumer where a row came from.
// IsScenarioObject marks rows owned by the scenario branch; IsLocked
// marks read-only context rows from outside the project boundary or
// from the parent scenario.
type Provenance struct {
	IsScenarioObject bool `json:"is_scenario_object"`
	IsLocked         bool `json:"is_locked"`
}

// PhysicalObjectView is a physical object row of a merged scenario view.
type PhysicalObjectView struct {
	PhysicalObjectID           int64          `json:"physical_object_id"`
	PhysicalObjectTypeID       int64          `json:"physical_object_type_id"`
	PhysicalObjectTypeName     string         `json:"physical_object_type_name"`
	PhysicalObjectFunctionID   *int64         `json:"physical_object_function_id,omitempty"`
	PhysicalObjectFunctionName *string        `json:"physical_object_function_name,omitempty"`
	Name                       *string        `json:"name,omitempty"`
	Properties                 datatypes.JSON `json:"properties"`
	CreatedAt                  time.Time      `json:"created_at"`
	UpdatedAt                  time.Time      `json:"updated_at"`
	Provenance
}

type ServiceView struct {
	ServiceID         int64          `json:"service_id"`
	ServiceTypeID     int64          `json:"service_type_id"`
	ServiceTypeName   string         `json:"service_type_name"`
	UrbanFunctionID   *int64         `json:"urban_function_id,omitempty"`
	UrbanFunctionName *string        `json:"urban_function_name,omitempty"`
	Name              *string        `json:"name,omitempty"`
	Capacity          *int           `json:"capacity,omitempty"`
	IsCapacityReal    *bool          `json:"is_capacity_real,omitempty"`
	Properties        datatypes.JSON `json:"properties"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	Provenance
}

// GeometryView carries geometries as raw GeoJSON produced by the
// database, already clipped to the project boundary where applicable.
type GeometryView struct {
	ObjectGeometryID int64           `json:"object_geometry_id"`
	TerritoryID      int64           `json:"territory_id"`
	TerritoryName    string          `json:"territory_name"`
	Geometry         json.RawMessage `json:"geometry"`
	CentrePoint      json.RawMessage `json:"centre_point"`
	Address          *string         `json:"address,omitempty"`
	OsmID            *string         `json:"osm_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Provenance
}

// UrbanObjectView is one fully resolved link row of a merged view.
type UrbanObjectView struct {
	UrbanObjectID  int64               `json:"urban_object_id"`
	ScenarioID     *int64              `json:"scenario_id,omitempty"`
	PhysicalObject PhysicalObjectView  `json:"physical_object"`
	ObjectGeometry GeometryView        `json:"object_geometry"`
	Service        *ServiceView        `json:"service,omitempty"`
	Provenance
}

type BufferView struct {
	BufferTypeID   int64           `json:"buffer_type_id"`
	BufferTypeName string          `json:"buffer_type_name"`
	UrbanObjectID  int64           `json:"urban_object_id"`
	Geometry       json.RawMessage `json:"geometry"`
	IsCustom       bool            `json:"is_custom"`
	Provenance
}

type FunctionalZoneView struct {
	FunctionalZoneID       int64           `json:"functional_zone_id"`
	FunctionalZoneTypeID   int64           `json:"functional_zone_type_id"`
	FunctionalZoneTypeName string          `json:"functional_zone_type_name"`
	TerritoryID            *int64          `json:"territory_id,omitempty"`
	Geometry               json.RawMessage `json:"geometry"`
	Year                   int             `json:"year"`
	Source                 string          `json:"source"`
	Properties             datatypes.JSON  `json:"properties"`
	Provenance
}

type IndicatorValueView struct {
	IndicatorValueID    int64          `json:"indicator_value_id"`
	IndicatorID         int64          `json:"indicator_id"`
	IndicatorName       string         `json:"indicator_name"`
	MeasurementUnitName *string        `json:"measurement_unit_name,omitempty"`
	ScenarioID          int64          `json:"scenario_id"`
	TerritoryID         *int64         `json:"territory_id,omitempty"`
	Value               float64        `json:"value"`
	Comment             *string        `json:"comment,omitempty"`
	InformationSource   *string        `json:"information_source,omitempty"`
	Properties          datatypes.JSON `json:"properties"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// ProjectView embeds the boundary alongside the project row.
type ProjectView struct {
	Project
	Geometry       json.RawMessage `json:"geometry,omitempty"`
	CentrePoint    json.RawMessage `json:"centre_point,omitempty"`
	BaseScenarioID *int64          `json:"base_scenario_id,omitempty"`
}
