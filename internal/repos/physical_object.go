package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type PhysicalObjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, object *types.PhysicalObject) (*types.PhysicalObject, error)
	GetByID(ctx context.Context, tx *gorm.DB, physicalObjectID int64) (*types.PhysicalObject, error)
	Update(ctx context.Context, tx *gorm.DB, physicalObjectID int64, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, physicalObjectID int64) error

	CreateScenario(ctx context.Context, tx *gorm.DB, object *types.ScenarioPhysicalObject) (*types.ScenarioPhysicalObject, error)
	GetScenarioByID(ctx context.Context, tx *gorm.DB, physicalObjectID int64) (*types.ScenarioPhysicalObject, error)
	UpdateScenario(ctx context.Context, tx *gorm.DB, physicalObjectID int64, updates map[string]any) error
	DeleteScenario(ctx context.Context, tx *gorm.DB, physicalObjectID int64) error
	// DeleteScenarioByScenario removes every component row a scenario's
	// link rows point at. Call it while the link rows still exist.
	DeleteScenarioByScenario(ctx context.Context, tx *gorm.DB, scenarioID int64) error

	// Clone copies a public row into the scenario table inside the
	// database and returns the new scenario-local id.
	Clone(ctx context.Context, tx *gorm.DB, publicPhysicalObjectID int64) (int64, error)
}

type physicalObjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPhysicalObjectRepo(db *gorm.DB, baseLog *logger.Logger) PhysicalObjectRepo {
	repoLog := baseLog.With("repo", "PhysicalObjectRepo")
	return &physicalObjectRepo{db: db, log: repoLog}
}

func (pr *physicalObjectRepo) Create(ctx context.Context, tx *gorm.DB, object *types.PhysicalObject) (*types.PhysicalObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if err := transaction.WithContext(ctx).Create(object).Error; err != nil {
		return nil, err
	}
	return object, nil
}

func (pr *physicalObjectRepo) GetByID(ctx context.Context, tx *gorm.DB, physicalObjectID int64) (*types.PhysicalObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.PhysicalObject
	if err := transaction.WithContext(ctx).
		Where("physical_object_id = ?", physicalObjectID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("physical object", physicalObjectID)
		}
		return nil, err
	}
	return &result, nil
}

func (pr *physicalObjectRepo) Update(ctx context.Context, tx *gorm.DB, physicalObjectID int64, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.PhysicalObject{}).
		Where("physical_object_id = ?", physicalObjectID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("physical object", physicalObjectID)
	}
	return nil
}

func (pr *physicalObjectRepo) Delete(ctx context.Context, tx *gorm.DB, physicalObjectID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	result := transaction.WithContext(ctx).
		Where("physical_object_id = ?", physicalObjectID).
		Delete(&types.PhysicalObject{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("physical object", physicalObjectID)
	}
	return nil
}

func (pr *physicalObjectRepo) CreateScenario(ctx context.Context, tx *gorm.DB, object *types.ScenarioPhysicalObject) (*types.ScenarioPhysicalObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if err := transaction.WithContext(ctx).Create(object).Error; err != nil {
		return nil, err
	}
	return object, nil
}

func (pr *physicalObjectRepo) GetScenarioByID(ctx context.Context, tx *gorm.DB, physicalObjectID int64) (*types.ScenarioPhysicalObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.ScenarioPhysicalObject
	if err := transaction.WithContext(ctx).
		Where("physical_object_id = ?", physicalObjectID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("scenario physical object", physicalObjectID)
		}
		return nil, err
	}
	return &result, nil
}

func (pr *physicalObjectRepo) UpdateScenario(ctx context.Context, tx *gorm.DB, physicalObjectID int64, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.ScenarioPhysicalObject{}).
		Where("physical_object_id = ?", physicalObjectID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("scenario physical object", physicalObjectID)
	}
	return nil
}

func (pr *physicalObjectRepo) DeleteScenario(ctx context.Context, tx *gorm.DB, physicalObjectID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	result := transaction.WithContext(ctx).
		Where("physical_object_id = ?", physicalObjectID).
		Delete(&types.ScenarioPhysicalObject{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("scenario physical object", physicalObjectID)
	}
	return nil
}

func (pr *physicalObjectRepo) DeleteScenarioByScenario(ctx context.Context, tx *gorm.DB, scenarioID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	return transaction.WithContext(ctx).Exec(`
		DELETE FROM scenario_physical_objects
		WHERE physical_object_id IN (
			SELECT physical_object_id FROM scenario_urban_objects
			WHERE scenario_id = ? AND physical_object_id IS NOT NULL
		)`, scenarioID).Error
}

func (pr *physicalObjectRepo) Clone(ctx context.Context, tx *gorm.DB, publicPhysicalObjectID int64) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var newID int64
	err := transaction.WithContext(ctx).Raw(`
		INSERT INTO scenario_physical_objects
			(public_physical_object_id, physical_object_type_id, name, properties, created_at, updated_at)
		SELECT physical_object_id, physical_object_type_id, name, properties, now(), now()
		FROM physical_objects
		WHERE physical_object_id = ?
		RETURNING physical_object_id
	`, publicPhysicalObjectID).Scan(&newID).Error
	if err != nil {
		return 0, err
	}
	if newID == 0 {
		return 0, apierr.NotFound("physical object", publicPhysicalObjectID)
	}
	return newID, nil
}
