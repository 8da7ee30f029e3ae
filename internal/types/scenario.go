package types

import (
	"time"

	"gorm.io/datatypes"
)

// Scenario is a copy-on-write branch over the public city model. The
// base scenario of a project is created with it and cannot be deleted
// on its own. ParentID points at the scenario this one was copied from.
type Scenario struct {
	ScenarioID           int64          `gorm:"column:scenario_id;primaryKey;autoIncrement" json:"scenario_id"`
	ProjectID            int64          `gorm:"column:project_id;not null;index" json:"project_id"`
	ParentID             *int64         `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	FunctionalZoneTypeID *int64         `gorm:"column:functional_zone_type_id" json:"functional_zone_type_id,omitempty"`
	Name                 string         `gorm:"column:name;not null" json:"name"`
	IsBased              bool           `gorm:"column:is_based;not null;default:false" json:"is_based"`
	Properties           datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties"`
	CreatedAt            time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Scenario) TableName() string { return "scenarios" }

// ScenarioIndicatorValue holds one indicator measurement for a scenario,
// optionally scoped to a territory. At most one value may exist per
// (indicator, scenario, territory) combination.
type ScenarioIndicatorValue struct {
	IndicatorValueID  int64          `gorm:"column:indicator_value_id;primaryKey;autoIncrement" json:"indicator_value_id"`
	IndicatorID       int64          `gorm:"column:indicator_id;not null;uniqueIndex:scenario_indicator_values_key" json:"indicator_id"`
	ScenarioID        int64          `gorm:"column:scenario_id;not null;index;uniqueIndex:scenario_indicator_values_key" json:"scenario_id"`
	TerritoryID       *int64         `gorm:"column:territory_id;uniqueIndex:scenario_indicator_values_key" json:"territory_id,omitempty"`
	Value             float64        `gorm:"column:value;not null" json:"value"`
	Comment           *string        `gorm:"column:comment" json:"comment,omitempty"`
	InformationSource *string        `gorm:"column:information_source" json:"information_source,omitempty"`
	Properties        datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ScenarioIndicatorValue) TableName() string { return "scenario_indicator_values" }
