package repos

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/types"
)

const pgUniqueViolation = "23505"

type UrbanObjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, object *types.UrbanObject) (*types.UrbanObject, error)
	GetByID(ctx context.Context, tx *gorm.DB, urbanObjectID int64) (*types.UrbanObject, error)
	GetByComponents(ctx context.Context, tx *gorm.DB, physicalObjectID, objectGeometryID int64, serviceID *int64) (*types.UrbanObject, error)
	ListByPhysicalObject(ctx context.Context, tx *gorm.DB, physicalObjectID int64) ([]*types.UrbanObject, error)
	ListByObjectGeometry(ctx context.Context, tx *gorm.DB, objectGeometryID int64) ([]*types.UrbanObject, error)
	Delete(ctx context.Context, tx *gorm.DB, urbanObjectID int64) error

	CreateScenario(ctx context.Context, tx *gorm.DB, object *types.ScenarioUrbanObject) (*types.ScenarioUrbanObject, error)
	GetScenarioByID(ctx context.Context, tx *gorm.DB, urbanObjectID int64) (*types.ScenarioUrbanObject, error)
	GetShadow(ctx context.Context, tx *gorm.DB, scenarioID, publicUrbanObjectID int64) (*types.ScenarioUrbanObject, error)
	ListScenario(ctx context.Context, tx *gorm.DB, scenarioID int64) ([]*types.ScenarioUrbanObject, error)
	UpdateScenario(ctx context.Context, tx *gorm.DB, urbanObjectID int64, updates map[string]any) error
	DeleteScenario(ctx context.Context, tx *gorm.DB, urbanObjectID int64) error
	DeleteScenarioByScenario(ctx context.Context, tx *gorm.DB, scenarioID int64) error
}

type urbanObjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUrbanObjectRepo(db *gorm.DB, baseLog *logger.Logger) UrbanObjectRepo {
	repoLog := baseLog.With("repo", "UrbanObjectRepo")
	return &urbanObjectRepo{db: db, log: repoLog}
}

func (ur *urbanObjectRepo) Create(ctx context.Context, tx *gorm.DB, object *types.UrbanObject) (*types.UrbanObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	if err := transaction.WithContext(ctx).Create(object).Error; err != nil {
		return nil, err
	}
	return object, nil
}

func (ur *urbanObjectRepo) GetByID(ctx context.Context, tx *gorm.DB, urbanObjectID int64) (*types.UrbanObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var result types.UrbanObject
	if err := transaction.WithContext(ctx).
		Where("urban_object_id = ?", urbanObjectID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("urban object", urbanObjectID)
		}
		return nil, err
	}
	return &result, nil
}

func (ur *urbanObjectRepo) GetByComponents(ctx context.Context, tx *gorm.DB, physicalObjectID, objectGeometryID int64, serviceID *int64) (*types.UrbanObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	query := transaction.WithContext(ctx).
		Where("physical_object_id = ? AND object_geometry_id = ?", physicalObjectID, objectGeometryID)
	if serviceID != nil {
		query = query.Where("service_id = ?", *serviceID)
	} else {
		query = query.Where("service_id IS NULL")
	}

	var result types.UrbanObject
	if err := query.First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFoundByParams("urban object", "physical_object_id", physicalObjectID, "object_geometry_id", objectGeometryID)
		}
		return nil, err
	}
	return &result, nil
}

func (ur *urbanObjectRepo) ListByPhysicalObject(ctx context.Context, tx *gorm.DB, physicalObjectID int64) ([]*types.UrbanObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*types.UrbanObject
	if err := transaction.WithContext(ctx).
		Where("physical_object_id = ?", physicalObjectID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *urbanObjectRepo) ListByObjectGeometry(ctx context.Context, tx *gorm.DB, objectGeometryID int64) ([]*types.UrbanObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*types.UrbanObject
	if err := transaction.WithContext(ctx).
		Where("object_geometry_id = ?", objectGeometryID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *urbanObjectRepo) Delete(ctx context.Context, tx *gorm.DB, urbanObjectID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	result := transaction.WithContext(ctx).
		Where("urban_object_id = ?", urbanObjectID).
		Delete(&types.UrbanObject{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("urban object", urbanObjectID)
	}
	return nil
}

// CreateScenario inserts a scenario link row. A unique violation on the
// (scenario_id, public_urban_object_id) pair means another request
// already forked the same public object, which surfaces as a conflict
// rather than a storage error.
func (ur *urbanObjectRepo) CreateScenario(ctx context.Context, tx *gorm.DB, object *types.ScenarioUrbanObject) (*types.ScenarioUrbanObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	if err := transaction.WithContext(ctx).Create(object).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && object.PublicUrbanObjectID != nil {
			return nil, apierr.AlreadyEdited("urban object", object.ScenarioID)
		}
		return nil, err
	}
	return object, nil
}

func (ur *urbanObjectRepo) GetScenarioByID(ctx context.Context, tx *gorm.DB, urbanObjectID int64) (*types.ScenarioUrbanObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var result types.ScenarioUrbanObject
	if err := transaction.WithContext(ctx).
		Where("urban_object_id = ?", urbanObjectID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("scenario urban object", urbanObjectID)
		}
		return nil, err
	}
	return &result, nil
}

// GetShadow returns the scenario row superseding a public urban object,
// or nil when the public object is untouched in this scenario.
func (ur *urbanObjectRepo) GetShadow(ctx context.Context, tx *gorm.DB, scenarioID, publicUrbanObjectID int64) (*types.ScenarioUrbanObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var result types.ScenarioUrbanObject
	err := transaction.WithContext(ctx).
		Where("scenario_id = ? AND public_urban_object_id = ?", scenarioID, publicUrbanObjectID).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (ur *urbanObjectRepo) ListScenario(ctx context.Context, tx *gorm.DB, scenarioID int64) ([]*types.ScenarioUrbanObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*types.ScenarioUrbanObject
	if err := transaction.WithContext(ctx).
		Where("scenario_id = ?", scenarioID).
		Order("urban_object_id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *urbanObjectRepo) UpdateScenario(ctx context.Context, tx *gorm.DB, urbanObjectID int64, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.ScenarioUrbanObject{}).
		Where("urban_object_id = ?", urbanObjectID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("scenario urban object", urbanObjectID)
	}
	return nil
}

func (ur *urbanObjectRepo) DeleteScenario(ctx context.Context, tx *gorm.DB, urbanObjectID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	result := transaction.WithContext(ctx).
		Where("urban_object_id = ?", urbanObjectID).
		Delete(&types.ScenarioUrbanObject{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("scenario urban object", urbanObjectID)
	}
	return nil
}

func (ur *urbanObjectRepo) DeleteScenarioByScenario(ctx context.Context, tx *gorm.DB, scenarioID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	return transaction.WithContext(ctx).
		Where("scenario_id = ?", scenarioID).
		Delete(&types.ScenarioUrbanObject{}).Error
}
