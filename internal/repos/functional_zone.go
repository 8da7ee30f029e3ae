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

type FunctionalZoneRepo interface {
	CreateScenario(ctx context.Context, tx *gorm.DB, zone *types.ScenarioFunctionalZone) (*types.ScenarioFunctionalZone, error)
	GetScenarioByID(ctx context.Context, tx *gorm.DB, functionalZoneID int64) (*types.ScenarioFunctionalZone, error)
	ListScenario(ctx context.Context, tx *gorm.DB, scenarioID int64, filters ...queryfilter.Filter) ([]*types.FunctionalZoneView, error)
	UpdateScenario(ctx context.Context, tx *gorm.DB, functionalZoneID int64, updates map[string]any) error
	DeleteScenario(ctx context.Context, tx *gorm.DB, functionalZoneID int64) error
	DeleteScenarioByScenario(ctx context.Context, tx *gorm.DB, scenarioID int64) error

	// CopyFromPublic clips the latest public zones to the project
	// boundary and installs them as a scenario's starting layer.
	CopyFromPublic(ctx context.Context, tx *gorm.DB, scenarioID, projectID int64) error
	CopyBetweenScenarios(ctx context.Context, tx *gorm.DB, fromScenarioID, toScenarioID int64) error
}

type functionalZoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFunctionalZoneRepo(db *gorm.DB, baseLog *logger.Logger) FunctionalZoneRepo {
	repoLog := baseLog.With("repo", "FunctionalZoneRepo")
	return &functionalZoneRepo{db: db, log: repoLog}
}

func (fr *functionalZoneRepo) CreateScenario(ctx context.Context, tx *gorm.DB, zone *types.ScenarioFunctionalZone) (*types.ScenarioFunctionalZone, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(ctx).Create(zone).Error; err != nil {
		return nil, err
	}
	return zone, nil
}

func (fr *functionalZoneRepo) GetScenarioByID(ctx context.Context, tx *gorm.DB, functionalZoneID int64) (*types.ScenarioFunctionalZone, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var result types.ScenarioFunctionalZone
	if err := transaction.WithContext(ctx).
		Where("functional_zone_id = ?", functionalZoneID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("scenario functional zone", functionalZoneID)
		}
		return nil, err
	}
	return &result, nil
}

func (fr *functionalZoneRepo) ListScenario(ctx context.Context, tx *gorm.DB, scenarioID int64, filters ...queryfilter.Filter) ([]*types.FunctionalZoneView, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.FunctionalZoneView
	query := transaction.WithContext(ctx).
		Table("scenario_functional_zones sfz").
		Select(`sfz.functional_zone_id, sfz.functional_zone_type_id,
			fzt.name AS functional_zone_type_name,
			ST_AsGeoJSON(sfz.geometry)::jsonb AS geometry,
			sfz.year, sfz.source, sfz.properties,
			true AS is_scenario_object, false AS is_locked`).
		Joins("JOIN functional_zone_types_dict fzt ON fzt.functional_zone_type_id = sfz.functional_zone_type_id").
		Where("sfz.scenario_id = ?", scenarioID)
	query = queryfilter.Apply(query, filters...)
	if err := query.Order("sfz.functional_zone_id").Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *functionalZoneRepo) UpdateScenario(ctx context.Context, tx *gorm.DB, functionalZoneID int64, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.ScenarioFunctionalZone{}).
		Where("functional_zone_id = ?", functionalZoneID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("scenario functional zone", functionalZoneID)
	}
	return nil
}

func (fr *functionalZoneRepo) DeleteScenario(ctx context.Context, tx *gorm.DB, functionalZoneID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	result := transaction.WithContext(ctx).
		Where("functional_zone_id = ?", functionalZoneID).
		Delete(&types.ScenarioFunctionalZone{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("scenario functional zone", functionalZoneID)
	}
	return nil
}

func (fr *functionalZoneRepo) DeleteScenarioByScenario(ctx context.Context, tx *gorm.DB, scenarioID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	return transaction.WithContext(ctx).
		Where("scenario_id = ?", scenarioID).
		Delete(&types.ScenarioFunctionalZone{}).Error
}

func (fr *functionalZoneRepo) CopyFromPublic(ctx context.Context, tx *gorm.DB, scenarioID, projectID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	// Latest year and source pair wins; degenerate clip results are
	// dropped so the scenario never starts with empty geometries.
	return transaction.WithContext(ctx).Exec(`
		WITH latest AS (
			SELECT fz.*
			FROM functional_zones fz
			WHERE (fz.year, fz.source) = (
				SELECT year, source FROM functional_zones
				ORDER BY year DESC, source DESC LIMIT 1
			)
		)
		INSERT INTO scenario_functional_zones
			(scenario_id, functional_zone_type_id, geometry, year, source, properties, created_at, updated_at)
		SELECT ?, l.functional_zone_type_id,
		       ST_Intersection(l.geometry, pt.geometry),
		       l.year, l.source, l.properties, now(), now()
		FROM latest l
		JOIN project_territories pt ON pt.project_id = ?
		WHERE ST_Intersects(l.geometry, pt.geometry)
		  AND NOT ST_IsEmpty(ST_Intersection(l.geometry, pt.geometry))
	`, scenarioID, projectID).Error
}

func (fr *functionalZoneRepo) CopyBetweenScenarios(ctx context.Context, tx *gorm.DB, fromScenarioID, toScenarioID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	return transaction.WithContext(ctx).Exec(`
		INSERT INTO scenario_functional_zones
			(scenario_id, functional_zone_type_id, geometry, year, source, properties, created_at, updated_at)
		SELECT ?, functional_zone_type_id, geometry, year, source, properties, now(), now()
		FROM scenario_functional_zones
		WHERE scenario_id = ?
	`, toScenarioID, fromScenarioID).Error
}
