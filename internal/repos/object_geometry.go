package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type ObjectGeometryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, geometry *types.ObjectGeometry) (*types.ObjectGeometry, error)
	GetByID(ctx context.Context, tx *gorm.DB, objectGeometryID int64) (*types.ObjectGeometry, error)
	Update(ctx context.Context, tx *gorm.DB, objectGeometryID int64, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, objectGeometryID int64) error

	CreateScenario(ctx context.Context, tx *gorm.DB, geometry *types.ScenarioObjectGeometry) (*types.ScenarioObjectGeometry, error)
	GetScenarioByID(ctx context.Context, tx *gorm.DB, objectGeometryID int64) (*types.ScenarioObjectGeometry, error)
	UpdateScenario(ctx context.Context, tx *gorm.DB, objectGeometryID int64, updates map[string]any) error
	DeleteScenario(ctx context.Context, tx *gorm.DB, objectGeometryID int64) error
	DeleteScenarioByScenario(ctx context.Context, tx *gorm.DB, scenarioID int64) error

	Clone(ctx context.Context, tx *gorm.DB, publicObjectGeometryID int64) (int64, error)
	WithinProject(ctx context.Context, tx *gorm.DB, objectGeometryID, projectID int64) (bool, error)
	CrossingProjectBoundary(ctx context.Context, tx *gorm.DB, projectID int64, minShare float64) ([]int64, error)
	ClipScenarioToProject(ctx context.Context, tx *gorm.DB, objectGeometryID, projectID int64) error
}

type objectGeometryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewObjectGeometryRepo(db *gorm.DB, baseLog *logger.Logger) ObjectGeometryRepo {
	repoLog := baseLog.With("repo", "ObjectGeometryRepo")
	return &objectGeometryRepo{db: db, log: repoLog}
}

func (gr *objectGeometryRepo) Create(ctx context.Context, tx *gorm.DB, geometry *types.ObjectGeometry) (*types.ObjectGeometry, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	if err := transaction.WithContext(ctx).Create(geometry).Error; err != nil {
		return nil, err
	}
	return geometry, nil
}

func (gr *objectGeometryRepo) GetByID(ctx context.Context, tx *gorm.DB, objectGeometryID int64) (*types.ObjectGeometry, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	var result types.ObjectGeometry
	if err := transaction.WithContext(ctx).
		Where("object_geometry_id = ?", objectGeometryID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("object geometry", objectGeometryID)
		}
		return nil, err
	}
	return &result, nil
}

func (gr *objectGeometryRepo) Update(ctx context.Context, tx *gorm.DB, objectGeometryID int64, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.ObjectGeometry{}).
		Where("object_geometry_id = ?", objectGeometryID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("object geometry", objectGeometryID)
	}
	return nil
}

func (gr *objectGeometryRepo) Delete(ctx context.Context, tx *gorm.DB, objectGeometryID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	result := transaction.WithContext(ctx).
		Where("object_geometry_id = ?", objectGeometryID).
		Delete(&types.ObjectGeometry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("object geometry", objectGeometryID)
	}
	return nil
}

func (gr *objectGeometryRepo) CreateScenario(ctx context.Context, tx *gorm.DB, geometry *types.ScenarioObjectGeometry) (*types.ScenarioObjectGeometry, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	if err := transaction.WithContext(ctx).Create(geometry).Error; err != nil {
		return nil, err
	}
	return geometry, nil
}

func (gr *objectGeometryRepo) GetScenarioByID(ctx context.Context, tx *gorm.DB, objectGeometryID int64) (*types.ScenarioObjectGeometry, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	var result types.ScenarioObjectGeometry
	if err := transaction.WithContext(ctx).
		Where("object_geometry_id = ?", objectGeometryID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("scenario object geometry", objectGeometryID)
		}
		return nil, err
	}
	return &result, nil
}

func (gr *objectGeometryRepo) UpdateScenario(ctx context.Context, tx *gorm.DB, objectGeometryID int64, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.ScenarioObjectGeometry{}).
		Where("object_geometry_id = ?", objectGeometryID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("scenario object geometry", objectGeometryID)
	}
	return nil
}

func (gr *objectGeometryRepo) DeleteScenario(ctx context.Context, tx *gorm.DB, objectGeometryID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	result := transaction.WithContext(ctx).
		Where("object_geometry_id = ?", objectGeometryID).
		Delete(&types.ScenarioObjectGeometry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("scenario object geometry", objectGeometryID)
	}
	return nil
}

func (gr *objectGeometryRepo) DeleteScenarioByScenario(ctx context.Context, tx *gorm.DB, scenarioID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	return transaction.WithContext(ctx).Exec(`
		DELETE FROM scenario_object_geometries
		WHERE object_geometry_id IN (
			SELECT object_geometry_id FROM scenario_urban_objects
			WHERE scenario_id = ? AND object_geometry_id IS NOT NULL
		)`, scenarioID).Error
}

func (gr *objectGeometryRepo) Clone(ctx context.Context, tx *gorm.DB, publicObjectGeometryID int64) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	var newID int64
	err := transaction.WithContext(ctx).Raw(`
		INSERT INTO scenario_object_geometries
			(public_object_geometry_id, territory_id, geometry, centre_point, address, osm_id, created_at, updated_at)
		SELECT object_geometry_id, territory_id, geometry, centre_point, address, osm_id, now(), now()
		FROM object_geometries
		WHERE object_geometry_id = ?
		RETURNING object_geometry_id
	`, publicObjectGeometryID).Scan(&newID).Error
	if err != nil {
		return 0, err
	}
	if newID == 0 {
		return 0, apierr.NotFound("object geometry", publicObjectGeometryID)
	}
	return newID, nil
}

// CrossingProjectBoundary lists public urban objects whose geometry
// straddles the project boundary with at least minShare of its area
// inside. These get forked into the base scenario with a clipped copy
// so the working set never leaks past the boundary.
func (gr *objectGeometryRepo) CrossingProjectBoundary(ctx context.Context, tx *gorm.DB, projectID int64, minShare float64) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	var ids []int64
	err := transaction.WithContext(ctx).Raw(`
		SELECT uo.urban_object_id
		FROM urban_objects uo
		JOIN object_geometries og ON og.object_geometry_id = uo.object_geometry_id
		JOIN project_territories pt ON pt.project_id = ?
		WHERE ST_Intersects(og.geometry, pt.geometry)
		  AND NOT ST_Within(og.geometry, pt.geometry)
		  AND ST_Area(og.geometry) > 0
		  AND ST_Area(ST_Intersection(og.geometry, pt.geometry)) / ST_Area(og.geometry) >= ?
		ORDER BY uo.urban_object_id
	`, projectID, minShare).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ClipScenarioToProject trims a scenario geometry to the project
// boundary in place and recenters its centre point.
func (gr *objectGeometryRepo) ClipScenarioToProject(ctx context.Context, tx *gorm.DB, objectGeometryID, projectID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	return transaction.WithContext(ctx).Exec(`
		UPDATE scenario_object_geometries sog
		SET geometry = ST_Intersection(sog.geometry, pt.geometry),
		    centre_point = ST_Centroid(ST_Intersection(sog.geometry, pt.geometry)),
		    updated_at = now()
		FROM project_territories pt
		WHERE pt.project_id = ? AND sog.object_geometry_id = ?
	`, projectID, objectGeometryID).Error
}

// WithinProject reports whether a public geometry intersects the project
// boundary. Objects outside it are context only and must stay locked.
func (gr *objectGeometryRepo) WithinProject(ctx context.Context, tx *gorm.DB, objectGeometryID, projectID int64) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	var intersects bool
	err := transaction.WithContext(ctx).Raw(`
		SELECT ST_Intersects(og.geometry, pt.geometry)
		FROM object_geometries og, project_territories pt
		WHERE og.object_geometry_id = ? AND pt.project_id = ?
	`, objectGeometryID, projectID).Scan(&intersects).Error
	if err != nil {
		return false, err
	}
	return intersects, nil
}
