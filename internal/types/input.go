package types

import (
	"gorm.io/datatypes"

	"github.com/urbanatlas/urban-backend/internal/geometry"
)

type ProjectPost struct {
	Name        string           `json:"name" binding:"required"`
	Description *string          `json:"description"`
	TerritoryID int64            `json:"territory_id" binding:"required"`
	IsRegional  bool             `json:"is_regional"`
	Public      bool             `json:"public"`
	Geometry    geometry.GeoJSON `json:"geometry"`
	Properties  datatypes.JSON   `json:"properties"`
}

type ProjectPatch struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Public      *bool          `json:"public"`
	Properties  datatypes.JSON `json:"properties"`
}

type ScenarioPost struct {
	ProjectID            int64          `json:"project_id" binding:"required"`
	Name                 string         `json:"name" binding:"required"`
	FunctionalZoneTypeID *int64         `json:"functional_zone_type_id"`
	Properties           datatypes.JSON `json:"properties"`
}

type ScenarioPatch struct {
	Name                 *string        `json:"name"`
	FunctionalZoneTypeID *int64         `json:"functional_zone_type_id"`
	Properties           datatypes.JSON `json:"properties"`
}

// PhysicalObjectWithGeometryPost creates a physical object together with
// its geometry and link row in one request.
type PhysicalObjectWithGeometryPost struct {
	PhysicalObjectTypeID int64            `json:"physical_object_type_id" binding:"required"`
	TerritoryID          int64            `json:"territory_id" binding:"required"`
	Name                 *string          `json:"name"`
	Properties           datatypes.JSON   `json:"properties"`
	Geometry             geometry.GeoJSON `json:"geometry" binding:"required"`
	CentrePoint          geometry.GeoJSON `json:"centre_point"`
	Address              *string          `json:"address"`
	OsmID                *string          `json:"osm_id"`
}

type PhysicalObjectPatch struct {
	PhysicalObjectTypeID *int64         `json:"physical_object_type_id"`
	Name                 *string        `json:"name"`
	Properties           datatypes.JSON `json:"properties"`
}

type ServicePost struct {
	ServiceTypeID  int64          `json:"service_type_id" binding:"required"`
	Name           *string        `json:"name"`
	Capacity       *int           `json:"capacity"`
	IsCapacityReal *bool          `json:"is_capacity_real"`
	Properties     datatypes.JSON `json:"properties"`
}

type ServicePatch struct {
	ServiceTypeID  *int64         `json:"service_type_id"`
	Name           *string        `json:"name"`
	Capacity       *int           `json:"capacity"`
	IsCapacityReal *bool          `json:"is_capacity_real"`
	Properties     datatypes.JSON `json:"properties"`
}

type ObjectGeometryPut struct {
	TerritoryID int64            `json:"territory_id" binding:"required"`
	Geometry    geometry.GeoJSON `json:"geometry" binding:"required"`
	CentrePoint geometry.GeoJSON `json:"centre_point"`
	Address     *string          `json:"address"`
	OsmID       *string          `json:"osm_id"`
}

// BufferPut targets an urban object by the id its merged view exposes.
// A nil Geometry requests a rebuild from the default radius for the
// object's type pair.
type BufferPut struct {
	BufferTypeID     int64             `json:"buffer_type_id" binding:"required"`
	UrbanObjectID    int64             `json:"urban_object_id" binding:"required"`
	IsScenarioObject bool              `json:"is_scenario_object"`
	Geometry         *geometry.GeoJSON `json:"geometry"`
}

type BufferDelete struct {
	BufferTypeID     int64 `json:"buffer_type_id" binding:"required"`
	UrbanObjectID    int64 `json:"urban_object_id" binding:"required"`
	IsScenarioObject bool  `json:"is_scenario_object"`
}

type BoundaryPut struct {
	Geometry geometry.GeoJSON `json:"geometry" binding:"required"`
}

type IndicatorValuePut struct {
	IndicatorID       int64          `json:"indicator_id" binding:"required"`
	TerritoryID       *int64         `json:"territory_id"`
	Value             float64        `json:"value"`
	Comment           *string        `json:"comment"`
	InformationSource *string        `json:"information_source"`
	Properties        datatypes.JSON `json:"properties"`
}

type FunctionalZonePost struct {
	FunctionalZoneTypeID int64            `json:"functional_zone_type_id" binding:"required"`
	Geometry             geometry.GeoJSON `json:"geometry" binding:"required"`
	Year                 int              `json:"year" binding:"required"`
	Source               string           `json:"source" binding:"required"`
	Properties           datatypes.JSON   `json:"properties"`
}

type TerritoryPost struct {
	Name        string           `json:"name" binding:"required"`
	ParentID    *int64           `json:"parent_id"`
	IsCity      bool             `json:"is_city"`
	Geometry    geometry.GeoJSON `json:"geometry" binding:"required"`
	CentrePoint geometry.GeoJSON `json:"centre_point"`
	Properties  datatypes.JSON   `json:"properties"`
}

type TerritoryPatch struct {
	Name       *string        `json:"name"`
	ParentID   *int64         `json:"parent_id"`
	IsCity     *bool          `json:"is_city"`
	Properties datatypes.JSON `json:"properties"`
}
