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

type ScenarioRepo interface {
	Create(ctx context.Context, tx *gorm.DB, scenario *types.Scenario) (*types.Scenario, error)
	GetByID(ctx context.Context, tx *gorm.DB, scenarioID int64) (*types.Scenario, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID int64, filters ...queryfilter.Filter) ([]*types.Scenario, error)
	GetBase(ctx context.Context, tx *gorm.DB, projectID int64) (*types.Scenario, error)
	Update(ctx context.Context, tx *gorm.DB, scenarioID int64, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, scenarioID int64) error
	DetachChildren(ctx context.Context, tx *gorm.DB, scenarioID int64) error
}

type scenarioRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScenarioRepo(db *gorm.DB, baseLog *logger.Logger) ScenarioRepo {
	repoLog := baseLog.With("repo", "ScenarioRepo")
	return &scenarioRepo{db: db, log: repoLog}
}

func (sr *scenarioRepo) Create(ctx context.Context, tx *gorm.DB, scenario *types.Scenario) (*types.Scenario, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Create(scenario).Error; err != nil {
		return nil, err
	}
	return scenario, nil
}

func (sr *scenarioRepo) GetByID(ctx context.Context, tx *gorm.DB, scenarioID int64) (*types.Scenario, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.Scenario
	if err := transaction.WithContext(ctx).
		Where("scenario_id = ?", scenarioID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("scenario", scenarioID)
		}
		return nil, err
	}
	return &result, nil
}

func (sr *scenarioRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID int64, filters ...queryfilter.Filter) ([]*types.Scenario, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Scenario
	query := transaction.WithContext(ctx).
		Model(&types.Scenario{}).
		Where("project_id = ?", projectID)
	query = queryfilter.Apply(query, filters...)
	if err := query.Order("scenario_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *scenarioRepo) GetBase(ctx context.Context, tx *gorm.DB, projectID int64) (*types.Scenario, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.Scenario
	if err := transaction.WithContext(ctx).
		Where("project_id = ? AND is_based", projectID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFoundByParams("base scenario", "project_id", projectID)
		}
		return nil, err
	}
	return &result, nil
}

func (sr *scenarioRepo) Update(ctx context.Context, tx *gorm.DB, scenarioID int64, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.Scenario{}).
		Where("scenario_id = ?", scenarioID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("scenario", scenarioID)
	}
	return nil
}

func (sr *scenarioRepo) Delete(ctx context.Context, tx *gorm.DB, scenarioID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	result := transaction.WithContext(ctx).
		Where("scenario_id = ?", scenarioID).
		Delete(&types.Scenario{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("scenario", scenarioID)
	}
	return nil
}

// DetachChildren clears parent references before a scenario is removed,
// leaving copies of it in place as independent branches.
func (sr *scenarioRepo) DetachChildren(ctx context.Context, tx *gorm.DB, scenarioID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Scenario{}).
		Where("parent_id = ?", scenarioID).
		Update("parent_id", nil).Error
}
