package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/queryfilter"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type TerritoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, territory *types.Territory) (*types.Territory, error)
	GetByID(ctx context.Context, tx *gorm.DB, territoryID int64) (*types.Territory, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, territoryIDs []int64) ([]*types.Territory, error)
	List(ctx context.Context, tx *gorm.DB, filters ...queryfilter.Filter) ([]*types.Territory, error)
	Update(ctx context.Context, tx *gorm.DB, territoryID int64, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, territoryID int64) error
	HasChildren(ctx context.Context, tx *gorm.DB, territoryID int64) (bool, error)
	ContainingGeometry(ctx context.Context, tx *gorm.DB, geometryTable string, geometryID int64) (*types.Territory, error)
	IntersectingProjectContext(ctx context.Context, tx *gorm.DB, projectID int64, bufferMeters float64) ([]*types.Territory, error)
}

type territoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTerritoryRepo(db *gorm.DB, baseLog *logger.Logger) TerritoryRepo {
	repoLog := baseLog.With("repo", "TerritoryRepo")
	return &territoryRepo{db: db, log: repoLog}
}

func (tr *territoryRepo) Create(ctx context.Context, tx *gorm.DB, territory *types.Territory) (*types.Territory, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if err := transaction.WithContext(ctx).Create(territory).Error; err != nil {
		return nil, err
	}
	return territory, nil
}

func (tr *territoryRepo) GetByID(ctx context.Context, tx *gorm.DB, territoryID int64) (*types.Territory, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var result types.Territory
	if err := transaction.WithContext(ctx).
		Where("territory_id = ?", territoryID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("territory", territoryID)
		}
		return nil, err
	}
	return &result, nil
}

func (tr *territoryRepo) GetByIDs(ctx context.Context, tx *gorm.DB, territoryIDs []int64) ([]*types.Territory, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Territory
	if len(territoryIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("territory_id IN ?", territoryIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *territoryRepo) List(ctx context.Context, tx *gorm.DB, filters ...queryfilter.Filter) ([]*types.Territory, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Territory
	query := transaction.WithContext(ctx).Model(&types.Territory{})
	query = queryfilter.Apply(query, filters...)
	if err := query.Order("territory_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *territoryRepo) Update(ctx context.Context, tx *gorm.DB, territoryID int64, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.Territory{}).
		Where("territory_id = ?", territoryID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("territory", territoryID)
	}
	return nil
}

func (tr *territoryRepo) Delete(ctx context.Context, tx *gorm.DB, territoryID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	result := transaction.WithContext(ctx).
		Where("territory_id = ?", territoryID).
		Delete(&types.Territory{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("territory", territoryID)
	}
	return nil
}

func (tr *territoryRepo) HasChildren(ctx context.Context, tx *gorm.DB, territoryID int64) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.Territory{}).
		Where("parent_id = ?", territoryID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ContainingGeometry finds the deepest territory whose boundary contains
// the centre point of the given geometry row. Used to re-anchor objects
// whose geometry moved.
func (tr *territoryRepo) ContainingGeometry(ctx context.Context, tx *gorm.DB, geometryTable string, geometryID int64) (*types.Territory, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var result types.Territory
	err := transaction.WithContext(ctx).Raw(`
		SELECT t.*
		FROM territories t
		JOIN `+geometryTable+` g ON ST_Within(g.centre_point, t.geometry)
		WHERE g.object_geometry_id = ?
		ORDER BY t.level DESC
		LIMIT 1
	`, geometryID).Scan(&result).Error
	if err != nil {
		return nil, err
	}
	if result.TerritoryID == 0 {
		return nil, apierr.NotFoundByParams("territory", "containing geometry", geometryID)
	}
	return &result, nil
}

// IntersectingProjectContext lists the deepest-level territories that
// touch the buffered ring around a project boundary. The geography cast
// keeps the buffer width in meters.
func (tr *territoryRepo) IntersectingProjectContext(ctx context.Context, tx *gorm.DB, projectID int64, bufferMeters float64) ([]*types.Territory, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Territory
	err := transaction.WithContext(ctx).Raw(`
		SELECT t.*
		FROM territories t
		JOIN project_territories pt ON pt.project_id = ?
		WHERE ST_Intersects(t.geometry, ST_Buffer(pt.geometry::geography, ?)::geometry)
		  AND t.level = (SELECT MAX(level) FROM territories)
		ORDER BY t.territory_id
	`, projectID, bufferMeters).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
