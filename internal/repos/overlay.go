package repos

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/queryfilter"
)

// UrbanObjectRow is one flat row of a merged scenario view before it is
// folded into the nested response shape.
type UrbanObjectRow struct {
	UrbanObjectID              int64           `gorm:"column:urban_object_id"`
	PhysicalObjectID           int64           `gorm:"column:physical_object_id"`
	PhysicalObjectTypeID       int64           `gorm:"column:physical_object_type_id"`
	PhysicalObjectTypeName     string          `gorm:"column:physical_object_type_name"`
	PhysicalObjectFunctionID   *int64          `gorm:"column:physical_object_function_id"`
	PhysicalObjectFunctionName *string         `gorm:"column:physical_object_function_name"`
	PhysicalObjectName         *string         `gorm:"column:physical_object_name"`
	PhysicalObjectProperties   datatypes.JSON  `gorm:"column:physical_object_properties"`
	ObjectGeometryID           int64           `gorm:"column:object_geometry_id"`
	TerritoryID                int64           `gorm:"column:territory_id"`
	TerritoryName              string          `gorm:"column:territory_name"`
	Geometry                   json.RawMessage `gorm:"column:geometry"`
	CentrePoint                json.RawMessage `gorm:"column:centre_point"`
	Address                    *string         `gorm:"column:address"`
	OsmID                      *string         `gorm:"column:osm_id"`
	ServiceID                  *int64          `gorm:"column:service_id"`
	ServiceTypeID              *int64          `gorm:"column:service_type_id"`
	ServiceTypeName            *string         `gorm:"column:service_type_name"`
	UrbanFunctionID            *int64          `gorm:"column:urban_function_id"`
	UrbanFunctionName          *string         `gorm:"column:urban_function_name"`
	ServiceName                *string         `gorm:"column:service_name"`
	Capacity                   *int            `gorm:"column:capacity"`
	IsCapacityReal             *bool           `gorm:"column:is_capacity_real"`
	ServiceProperties          datatypes.JSON  `gorm:"column:service_properties"`
	CreatedAt                  time.Time       `gorm:"column:created_at"`
	UpdatedAt                  time.Time       `gorm:"column:updated_at"`
}

// BufferRow is one flat buffer row of a merged scenario view.
type BufferRow struct {
	BufferTypeID   int64           `gorm:"column:buffer_type_id"`
	BufferTypeName string          `gorm:"column:buffer_type_name"`
	UrbanObjectID  int64           `gorm:"column:urban_object_id"`
	Geometry       json.RawMessage `gorm:"column:geometry"`
	IsCustom       bool            `gorm:"column:is_custom"`
}

// Boundary selects which spatial window a merged branch reads.
type Boundary int

const (
	// BoundaryProject restricts to the drawn project boundary and clips
	// geometries to it.
	BoundaryProject Boundary = iota
	// BoundaryProjectUnclipped restricts to the boundary but returns
	// whole geometries. Regional projects read this way.
	BoundaryProjectUnclipped
	// BoundaryContext restricts to the buffered ring around the
	// boundary, excluding the boundary itself.
	BoundaryContext
)

// ContextBufferMeters is the width of the ring around a project
// boundary from which read-only context objects are served.
const ContextBufferMeters = 3000

type OverlayRepo interface {
	// ShadowedPublicIDs lists public urban object ids that a scenario
	// has superseded, either by forking or by deletion.
	ShadowedPublicIDs(ctx context.Context, tx *gorm.DB, scenarioID int64) ([]int64, error)
	PublicRows(ctx context.Context, tx *gorm.DB, projectID int64, boundary Boundary, excludeIDs []int64, filters ...queryfilter.Filter) ([]*UrbanObjectRow, error)
	ScenarioRows(ctx context.Context, tx *gorm.DB, scenarioID int64, filters ...queryfilter.Filter) ([]*UrbanObjectRow, error)
	// ScenarioRowsInContext narrows ScenarioRows to rows whose resolved
	// geometry falls inside the context ring around the project boundary.
	ScenarioRowsInContext(ctx context.Context, tx *gorm.DB, scenarioID, projectID int64, filters ...queryfilter.Filter) ([]*UrbanObjectRow, error)
	PublicBufferRows(ctx context.Context, tx *gorm.DB, projectID int64, excludeIDs []int64) ([]*BufferRow, error)
	ScenarioBufferRows(ctx context.Context, tx *gorm.DB, scenarioID int64) ([]*BufferRow, error)
}

type overlayRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOverlayRepo(db *gorm.DB, baseLog *logger.Logger) OverlayRepo {
	repoLog := baseLog.With("repo", "OverlayRepo")
	return &overlayRepo{db: db, log: repoLog}
}

func (or *overlayRepo) ShadowedPublicIDs(ctx context.Context, tx *gorm.DB, scenarioID int64) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	var ids []int64
	err := transaction.WithContext(ctx).
		Table("scenario_urban_objects").
		Where("scenario_id = ? AND public_urban_object_id IS NOT NULL", scenarioID).
		Pluck("public_urban_object_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (or *overlayRepo) PublicRows(ctx context.Context, tx *gorm.DB, projectID int64, boundary Boundary, excludeIDs []int64, filters ...queryfilter.Filter) ([]*UrbanObjectRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	geometryExpr := "og.geometry"
	windowCond := "ST_Intersects(og.geometry, pt.geometry)"
	switch boundary {
	case BoundaryProject:
		geometryExpr = "ST_Intersection(og.geometry, pt.geometry)"
	case BoundaryContext:
		windowCond = `ST_Intersects(og.geometry, ST_Buffer(pt.geometry::geography, ?)::geometry)
			AND NOT ST_Intersects(og.geometry, pt.geometry)`
	}

	query := transaction.WithContext(ctx).
		Table("urban_objects uo").
		Select(`uo.urban_object_id,
			po.physical_object_id, po.physical_object_type_id,
			pot.name AS physical_object_type_name,
			pof.physical_object_function_id, pof.name AS physical_object_function_name,
			po.name AS physical_object_name, po.properties AS physical_object_properties,
			og.object_geometry_id, og.territory_id, t.name AS territory_name,
			ST_AsGeoJSON(`+geometryExpr+`)::jsonb AS geometry,
			ST_AsGeoJSON(og.centre_point)::jsonb AS centre_point,
			og.address, og.osm_id,
			s.service_id, s.service_type_id, st.name AS service_type_name,
			uf.urban_function_id, uf.name AS urban_function_name,
			s.name AS service_name, s.capacity, s.is_capacity_real,
			s.properties AS service_properties,
			uo.created_at, uo.updated_at`).
		Joins("JOIN physical_objects po ON po.physical_object_id = uo.physical_object_id").
		Joins("JOIN physical_object_types_dict pot ON pot.physical_object_type_id = po.physical_object_type_id").
		Joins("LEFT JOIN physical_object_functions_dict pof ON pof.physical_object_function_id = pot.physical_object_function_id").
		Joins("JOIN object_geometries og ON og.object_geometry_id = uo.object_geometry_id").
		Joins("JOIN territories t ON t.territory_id = og.territory_id").
		Joins("LEFT JOIN services s ON s.service_id = uo.service_id").
		Joins("LEFT JOIN service_types_dict st ON st.service_type_id = s.service_type_id").
		Joins("LEFT JOIN urban_functions_dict uf ON uf.urban_function_id = st.urban_function_id").
		Joins("JOIN project_territories pt ON pt.project_id = ?", projectID)

	if boundary == BoundaryContext {
		query = query.Where(windowCond, ContextBufferMeters)
	} else {
		query = query.Where(windowCond)
	}
	if len(excludeIDs) > 0 {
		query = query.Where("uo.urban_object_id NOT IN ?", excludeIDs)
	}
	query = queryfilter.Apply(query, filters...)

	var results []*UrbanObjectRow
	if err := query.Order("uo.urban_object_id").Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (or *overlayRepo) ScenarioRows(ctx context.Context, tx *gorm.DB, scenarioID int64, filters ...queryfilter.Filter) ([]*UrbanObjectRow, error) {
	query := or.scenarioRowsQuery(ctx, tx, scenarioID, filters...)

	var results []*UrbanObjectRow
	if err := query.Order("suo.urban_object_id").Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (or *overlayRepo) ScenarioRowsInContext(ctx context.Context, tx *gorm.DB, scenarioID, projectID int64, filters ...queryfilter.Filter) ([]*UrbanObjectRow, error) {
	query := or.scenarioRowsQuery(ctx, tx, scenarioID, filters...).
		Joins("JOIN project_territories pt ON pt.project_id = ?", projectID).
		Where(`ST_Intersects(COALESCE(sog.geometry, og.geometry), ST_Buffer(pt.geometry::geography, ?)::geometry)
			AND NOT ST_Intersects(COALESCE(sog.geometry, og.geometry), pt.geometry)`, ContextBufferMeters)

	var results []*UrbanObjectRow
	if err := query.Order("suo.urban_object_id").Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (or *overlayRepo) scenarioRowsQuery(ctx context.Context, tx *gorm.DB, scenarioID int64, filters ...queryfilter.Filter) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	// Each component slot resolves through COALESCE of the scenario and
	// public sides. Pure supersede markers carry no components and are
	// filtered out here.
	query := transaction.WithContext(ctx).
		Table("scenario_urban_objects suo").
		Select(`suo.urban_object_id,
			COALESCE(spo.physical_object_id, po.physical_object_id) AS physical_object_id,
			COALESCE(spo.physical_object_type_id, po.physical_object_type_id) AS physical_object_type_id,
			pot.name AS physical_object_type_name,
			pof.physical_object_function_id, pof.name AS physical_object_function_name,
			COALESCE(spo.name, po.name) AS physical_object_name,
			COALESCE(spo.properties, po.properties) AS physical_object_properties,
			COALESCE(sog.object_geometry_id, og.object_geometry_id) AS object_geometry_id,
			COALESCE(sog.territory_id, og.territory_id) AS territory_id,
			t.name AS territory_name,
			ST_AsGeoJSON(COALESCE(sog.geometry, og.geometry))::jsonb AS geometry,
			ST_AsGeoJSON(COALESCE(sog.centre_point, og.centre_point))::jsonb AS centre_point,
			COALESCE(sog.address, og.address) AS address,
			COALESCE(sog.osm_id, og.osm_id) AS osm_id,
			COALESCE(ss.service_id, s.service_id) AS service_id,
			COALESCE(ss.service_type_id, s.service_type_id) AS service_type_id,
			st.name AS service_type_name,
			uf.urban_function_id, uf.name AS urban_function_name,
			COALESCE(ss.name, s.name) AS service_name,
			COALESCE(ss.capacity, s.capacity) AS capacity,
			COALESCE(ss.is_capacity_real, s.is_capacity_real) AS is_capacity_real,
			COALESCE(ss.properties, s.properties) AS service_properties,
			suo.created_at, suo.updated_at`).
		Joins("LEFT JOIN scenario_physical_objects spo ON spo.physical_object_id = suo.physical_object_id").
		Joins("LEFT JOIN physical_objects po ON po.physical_object_id = suo.public_physical_object_id").
		Joins("JOIN physical_object_types_dict pot ON pot.physical_object_type_id = COALESCE(spo.physical_object_type_id, po.physical_object_type_id)").
		Joins("LEFT JOIN physical_object_functions_dict pof ON pof.physical_object_function_id = pot.physical_object_function_id").
		Joins("LEFT JOIN scenario_object_geometries sog ON sog.object_geometry_id = suo.object_geometry_id").
		Joins("LEFT JOIN object_geometries og ON og.object_geometry_id = suo.public_object_geometry_id").
		Joins("JOIN territories t ON t.territory_id = COALESCE(sog.territory_id, og.territory_id)").
		Joins("LEFT JOIN scenario_services ss ON ss.service_id = suo.service_id").
		Joins("LEFT JOIN services s ON s.service_id = suo.public_service_id").
		Joins("LEFT JOIN service_types_dict st ON st.service_type_id = COALESCE(ss.service_type_id, s.service_type_id)").
		Joins("LEFT JOIN urban_functions_dict uf ON uf.urban_function_id = st.urban_function_id").
		Where("suo.scenario_id = ?", scenarioID).
		Where("COALESCE(suo.physical_object_id, suo.public_physical_object_id) IS NOT NULL")
	return queryfilter.Apply(query, filters...)
}

func (or *overlayRepo) PublicBufferRows(ctx context.Context, tx *gorm.DB, projectID int64, excludeIDs []int64) ([]*BufferRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	query := transaction.WithContext(ctx).
		Table("buffers b").
		Select(`b.buffer_type_id, bt.name AS buffer_type_name, b.urban_object_id,
			ST_AsGeoJSON(b.geometry)::jsonb AS geometry, b.is_custom`).
		Joins("JOIN buffer_types_dict bt ON bt.buffer_type_id = b.buffer_type_id").
		Joins("JOIN urban_objects uo ON uo.urban_object_id = b.urban_object_id").
		Joins("JOIN object_geometries og ON og.object_geometry_id = uo.object_geometry_id").
		Joins("JOIN project_territories pt ON pt.project_id = ?", projectID).
		Where("ST_Intersects(og.geometry, pt.geometry)")
	if len(excludeIDs) > 0 {
		query = query.Where("b.urban_object_id NOT IN ?", excludeIDs)
	}

	var results []*BufferRow
	if err := query.Order("b.urban_object_id, b.buffer_type_id").Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (or *overlayRepo) ScenarioBufferRows(ctx context.Context, tx *gorm.DB, scenarioID int64) ([]*BufferRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	var results []*BufferRow
	err := transaction.WithContext(ctx).
		Table("scenario_buffers sb").
		Select(`sb.buffer_type_id, bt.name AS buffer_type_name, sb.urban_object_id,
			ST_AsGeoJSON(sb.geometry)::jsonb AS geometry, sb.is_custom`).
		Joins("JOIN buffer_types_dict bt ON bt.buffer_type_id = sb.buffer_type_id").
		Joins("JOIN scenario_urban_objects suo ON suo.urban_object_id = sb.urban_object_id").
		Where("suo.scenario_id = ?", scenarioID).
		Order("sb.urban_object_id, sb.buffer_type_id").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
