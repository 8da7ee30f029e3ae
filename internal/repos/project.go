package repos

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/queryfilter"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type ProjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, project *types.Project) (*types.Project, error)
	GetByID(ctx context.Context, tx *gorm.DB, projectID int64) (*types.Project, error)
	List(ctx context.Context, tx *gorm.DB, filters ...queryfilter.Filter) ([]*types.Project, error)
	Update(ctx context.Context, tx *gorm.DB, projectID int64, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, projectID int64) error

	CreateTerritory(ctx context.Context, tx *gorm.DB, territory *types.ProjectTerritory) (*types.ProjectTerritory, error)
	GetTerritory(ctx context.Context, tx *gorm.DB, projectID int64) (*types.ProjectTerritory, error)
	UpdateTerritory(ctx context.Context, tx *gorm.DB, projectID int64, updates map[string]any) error
	BoundaryGeoJSON(ctx context.Context, tx *gorm.DB, projectID int64) (json.RawMessage, json.RawMessage, error)
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	repoLog := baseLog.With("repo", "ProjectRepo")
	return &projectRepo{db: db, log: repoLog}
}

func (pr *projectRepo) Create(ctx context.Context, tx *gorm.DB, project *types.Project) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if err := transaction.WithContext(ctx).Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func (pr *projectRepo) GetByID(ctx context.Context, tx *gorm.DB, projectID int64) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.Project
	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("project", projectID)
		}
		return nil, err
	}
	return &result, nil
}

func (pr *projectRepo) List(ctx context.Context, tx *gorm.DB, filters ...queryfilter.Filter) ([]*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Project
	query := transaction.WithContext(ctx).Model(&types.Project{})
	query = queryfilter.Apply(query, filters...)
	if err := query.Order("project_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *projectRepo) Update(ctx context.Context, tx *gorm.DB, projectID int64, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.Project{}).
		Where("project_id = ?", projectID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("project", projectID)
	}
	return nil
}

func (pr *projectRepo) Delete(ctx context.Context, tx *gorm.DB, projectID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	result := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&types.Project{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("project", projectID)
	}
	return nil
}

func (pr *projectRepo) CreateTerritory(ctx context.Context, tx *gorm.DB, territory *types.ProjectTerritory) (*types.ProjectTerritory, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if err := transaction.WithContext(ctx).Create(territory).Error; err != nil {
		return nil, err
	}
	return territory, nil
}

func (pr *projectRepo) GetTerritory(ctx context.Context, tx *gorm.DB, projectID int64) (*types.ProjectTerritory, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.ProjectTerritory
	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFoundByParams("project territory", "project_id", projectID)
		}
		return nil, err
	}
	return &result, nil
}

func (pr *projectRepo) UpdateTerritory(ctx context.Context, tx *gorm.DB, projectID int64, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.ProjectTerritory{}).
		Where("project_id = ?", projectID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFoundByParams("project territory", "project_id", projectID)
	}
	return nil
}

// BoundaryGeoJSON returns the boundary and centre of a project rendered
// by the database, so callers never re-encode geometry client side.
func (pr *projectRepo) BoundaryGeoJSON(ctx context.Context, tx *gorm.DB, projectID int64) (json.RawMessage, json.RawMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var row struct {
		Geometry    []byte
		CentrePoint []byte
	}
	err := transaction.WithContext(ctx).Raw(`
		SELECT ST_AsGeoJSON(geometry)::jsonb AS geometry,
		       ST_AsGeoJSON(centre_point)::jsonb AS centre_point
		FROM project_territories
		WHERE project_id = ?
	`, projectID).Scan(&row).Error
	if err != nil {
		return nil, nil, err
	}
	if len(row.Geometry) == 0 {
		return nil, nil, apierr.NotFoundByParams("project territory", "project_id", projectID)
	}
	return row.Geometry, row.CentrePoint, nil
}
