package types

import "github.com/urbanatlas/urban-backend/internal/hierarchy"

// Table specs for the hierarchical dictionaries served by the resolver.
var (
	TerritorySpec = hierarchy.TableSpec{
		Entity:       "territory",
		Table:        Territory{}.TableName(),
		IDColumn:     "territory_id",
		ParentColumn: "parent_id",
	}

	PhysicalObjectFunctionSpec = hierarchy.TableSpec{
		Entity:       "physical_object_function",
		Table:        PhysicalObjectFunction{}.TableName(),
		IDColumn:     "physical_object_function_id",
		ParentColumn: "parent_id",
	}

	UrbanFunctionSpec = hierarchy.TableSpec{
		Entity:       "urban_function",
		Table:        UrbanFunction{}.TableName(),
		IDColumn:     "urban_function_id",
		ParentColumn: "parent_id",
	}

	IndicatorSpec = hierarchy.TableSpec{
		Entity:       "indicator",
		Table:        Indicator{}.TableName(),
		IDColumn:     "indicator_id",
		ParentColumn: "parent_id",
	}
)
