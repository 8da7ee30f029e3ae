package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/queryfilter"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type IndicatorRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, indicatorID int64) (*types.Indicator, error)
	List(ctx context.Context, tx *gorm.DB, filters ...queryfilter.Filter) ([]*types.Indicator, error)

	PutValue(ctx context.Context, tx *gorm.DB, value *types.ScenarioIndicatorValue) (*types.ScenarioIndicatorValue, error)
	GetValue(ctx context.Context, tx *gorm.DB, indicatorValueID int64) (*types.ScenarioIndicatorValue, error)
	ListValues(ctx context.Context, tx *gorm.DB, scenarioID int64, filters ...queryfilter.Filter) ([]*types.IndicatorValueView, error)
	DeleteValue(ctx context.Context, tx *gorm.DB, indicatorValueID int64) error
	CopyValues(ctx context.Context, tx *gorm.DB, fromScenarioID, toScenarioID int64) error
}

type indicatorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIndicatorRepo(db *gorm.DB, baseLog *logger.Logger) IndicatorRepo {
	repoLog := baseLog.With("repo", "IndicatorRepo")
	return &indicatorRepo{db: db, log: repoLog}
}

func (ir *indicatorRepo) GetByID(ctx context.Context, tx *gorm.DB, indicatorID int64) (*types.Indicator, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var result types.Indicator
	if err := transaction.WithContext(ctx).
		Where("indicator_id = ?", indicatorID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("indicator", indicatorID)
		}
		return nil, err
	}
	return &result, nil
}

func (ir *indicatorRepo) List(ctx context.Context, tx *gorm.DB, filters ...queryfilter.Filter) ([]*types.Indicator, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var results []*types.Indicator
	query := transaction.WithContext(ctx).Model(&types.Indicator{})
	query = queryfilter.Apply(query, filters...)
	if err := query.Order("indicator_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *indicatorRepo) PutValue(ctx context.Context, tx *gorm.DB, value *types.ScenarioIndicatorValue) (*types.ScenarioIndicatorValue, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	err := transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "indicator_id"}, {Name: "scenario_id"}, {Name: "territory_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"value", "comment", "information_source", "properties", "updated_at",
		}),
	}).Create(value).Error
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (ir *indicatorRepo) GetValue(ctx context.Context, tx *gorm.DB, indicatorValueID int64) (*types.ScenarioIndicatorValue, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var result types.ScenarioIndicatorValue
	if err := transaction.WithContext(ctx).
		Where("indicator_value_id = ?", indicatorValueID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("indicator value", indicatorValueID)
		}
		return nil, err
	}
	return &result, nil
}

func (ir *indicatorRepo) ListValues(ctx context.Context, tx *gorm.DB, scenarioID int64, filters ...queryfilter.Filter) ([]*types.IndicatorValueView, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var results []*types.IndicatorValueView
	query := transaction.WithContext(ctx).
		Table("scenario_indicator_values siv").
		Select(`siv.*, i.name AS indicator_name, mu.name AS measurement_unit_name`).
		Joins("JOIN indicators_dict i ON i.indicator_id = siv.indicator_id").
		Joins("LEFT JOIN measurement_units_dict mu ON mu.measurement_unit_id = i.measurement_unit_id").
		Where("siv.scenario_id = ?", scenarioID)
	query = queryfilter.Apply(query, filters...)
	if err := query.Order("siv.indicator_value_id").Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *indicatorRepo) DeleteValue(ctx context.Context, tx *gorm.DB, indicatorValueID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	result := transaction.WithContext(ctx).
		Where("indicator_value_id = ?", indicatorValueID).
		Delete(&types.ScenarioIndicatorValue{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("indicator value", indicatorValueID)
	}
	return nil
}

func (ir *indicatorRepo) CopyValues(ctx context.Context, tx *gorm.DB, fromScenarioID, toScenarioID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	return transaction.WithContext(ctx).Exec(`
		INSERT INTO scenario_indicator_values
			(indicator_id, scenario_id, territory_id, value, comment, information_source, properties, created_at, updated_at)
		SELECT indicator_id, ?, territory_id, value, comment, information_source, properties, now(), now()
		FROM scenario_indicator_values
		WHERE scenario_id = ?
	`, toScenarioID, fromScenarioID).Error
}
