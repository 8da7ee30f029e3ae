package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type ServiceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, service *types.Service) (*types.Service, error)
	GetByID(ctx context.Context, tx *gorm.DB, serviceID int64) (*types.Service, error)
	Update(ctx context.Context, tx *gorm.DB, serviceID int64, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, serviceID int64) error

	CreateScenario(ctx context.Context, tx *gorm.DB, service *types.ScenarioService) (*types.ScenarioService, error)
	GetScenarioByID(ctx context.Context, tx *gorm.DB, serviceID int64) (*types.ScenarioService, error)
	UpdateScenario(ctx context.Context, tx *gorm.DB, serviceID int64, updates map[string]any) error
	DeleteScenario(ctx context.Context, tx *gorm.DB, serviceID int64) error
	DeleteScenarioByScenario(ctx context.Context, tx *gorm.DB, scenarioID int64) error

	Clone(ctx context.Context, tx *gorm.DB, publicServiceID int64) (int64, error)
}

type serviceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewServiceRepo(db *gorm.DB, baseLog *logger.Logger) ServiceRepo {
	repoLog := baseLog.With("repo", "ServiceRepo")
	return &serviceRepo{db: db, log: repoLog}
}

func (sr *serviceRepo) Create(ctx context.Context, tx *gorm.DB, service *types.Service) (*types.Service, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Create(service).Error; err != nil {
		return nil, err
	}
	return service, nil
}

func (sr *serviceRepo) GetByID(ctx context.Context, tx *gorm.DB, serviceID int64) (*types.Service, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.Service
	if err := transaction.WithContext(ctx).
		Where("service_id = ?", serviceID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("service", serviceID)
		}
		return nil, err
	}
	return &result, nil
}

func (sr *serviceRepo) Update(ctx context.Context, tx *gorm.DB, serviceID int64, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.Service{}).
		Where("service_id = ?", serviceID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("service", serviceID)
	}
	return nil
}

func (sr *serviceRepo) Delete(ctx context.Context, tx *gorm.DB, serviceID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	result := transaction.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Delete(&types.Service{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("service", serviceID)
	}
	return nil
}

func (sr *serviceRepo) CreateScenario(ctx context.Context, tx *gorm.DB, service *types.ScenarioService) (*types.ScenarioService, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Create(service).Error; err != nil {
		return nil, err
	}
	return service, nil
}

func (sr *serviceRepo) GetScenarioByID(ctx context.Context, tx *gorm.DB, serviceID int64) (*types.ScenarioService, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.ScenarioService
	if err := transaction.WithContext(ctx).
		Where("service_id = ?", serviceID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("scenario service", serviceID)
		}
		return nil, err
	}
	return &result, nil
}

func (sr *serviceRepo) UpdateScenario(ctx context.Context, tx *gorm.DB, serviceID int64, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.ScenarioService{}).
		Where("service_id = ?", serviceID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("scenario service", serviceID)
	}
	return nil
}

func (sr *serviceRepo) DeleteScenario(ctx context.Context, tx *gorm.DB, serviceID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	result := transaction.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Delete(&types.ScenarioService{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("scenario service", serviceID)
	}
	return nil
}

func (sr *serviceRepo) DeleteScenarioByScenario(ctx context.Context, tx *gorm.DB, scenarioID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).Exec(`
		DELETE FROM scenario_services
		WHERE service_id IN (
			SELECT service_id FROM scenario_urban_objects
			WHERE scenario_id = ? AND service_id IS NOT NULL
		)`, scenarioID).Error
}

func (sr *serviceRepo) Clone(ctx context.Context, tx *gorm.DB, publicServiceID int64) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var newID int64
	err := transaction.WithContext(ctx).Raw(`
		INSERT INTO scenario_services
			(public_service_id, service_type_id, name, capacity, is_capacity_real, properties, created_at, updated_at)
		SELECT service_id, service_type_id, name, capacity, is_capacity_real, properties, now(), now()
		FROM services
		WHERE service_id = ?
		RETURNING service_id
	`, publicServiceID).Scan(&newID).Error
	if err != nil {
		return 0, err
	}
	if newID == 0 {
		return 0, apierr.NotFound("service", publicServiceID)
	}
	return newID, nil
}
