package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/repos"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type FunctionalZoneService interface {
	Add(ctx context.Context, scenarioID int64, post *types.FunctionalZonePost) (*types.ScenarioFunctionalZone, error)
	Delete(ctx context.Context, scenarioID, functionalZoneID int64) error
	ReplaceAll(ctx context.Context, scenarioID int64, posts []*types.FunctionalZonePost) error
}

type functionalZoneService struct {
	db                 *gorm.DB
	log                *logger.Logger
	scenarioRepo       repos.ScenarioRepo
	projectRepo        repos.ProjectRepo
	functionalZoneRepo repos.FunctionalZoneRepo
	dictRepo           repos.DictRepo
}

func NewFunctionalZoneService(
	db *gorm.DB,
	baseLog *logger.Logger,
	scenarioRepo repos.ScenarioRepo,
	projectRepo repos.ProjectRepo,
	functionalZoneRepo repos.FunctionalZoneRepo,
	dictRepo repos.DictRepo,
) FunctionalZoneService {
	return &functionalZoneService{
		db:                 db,
		log:                baseLog.With("service", "FunctionalZoneService"),
		scenarioRepo:       scenarioRepo,
		projectRepo:        projectRepo,
		functionalZoneRepo: functionalZoneRepo,
		dictRepo:           dictRepo,
	}
}

func (s *functionalZoneService) scope(ctx context.Context, scenarioID int64) (*types.Scenario, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	scenario, err := s.scenarioRepo.GetByID(ctx, nil, scenarioID)
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, nil, scenario.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := checkProjectEdit(rd, project); err != nil {
		return nil, err
	}
	return scenario, nil
}

func (s *functionalZoneService) Add(ctx context.Context, scenarioID int64, post *types.FunctionalZonePost) (*types.ScenarioFunctionalZone, error) {
	scenario, err := s.scope(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	if _, err := s.dictRepo.GetFunctionalZoneType(ctx, nil, post.FunctionalZoneTypeID); err != nil {
		return nil, err
	}

	zone := &types.ScenarioFunctionalZone{
		ScenarioID:           scenario.ScenarioID,
		FunctionalZoneTypeID: post.FunctionalZoneTypeID,
		Geometry:             post.Geometry,
		Year:                 post.Year,
		Source:               post.Source,
		Properties:           post.Properties,
	}
	return s.functionalZoneRepo.CreateScenario(ctx, nil, zone)
}

func (s *functionalZoneService) Delete(ctx context.Context, scenarioID, functionalZoneID int64) error {
	scenario, err := s.scope(ctx, scenarioID)
	if err != nil {
		return err
	}
	zone, err := s.functionalZoneRepo.GetScenarioByID(ctx, nil, functionalZoneID)
	if err != nil {
		return err
	}
	if zone.ScenarioID != scenario.ScenarioID {
		return apierr.NotFound("scenario functional zone", functionalZoneID)
	}
	return s.functionalZoneRepo.DeleteScenario(ctx, nil, functionalZoneID)
}

// ReplaceAll swaps a scenario's whole zone layer in one transaction.
func (s *functionalZoneService) ReplaceAll(ctx context.Context, scenarioID int64, posts []*types.FunctionalZonePost) error {
	scenario, err := s.scope(ctx, scenarioID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.functionalZoneRepo.DeleteScenarioByScenario(ctx, tx, scenario.ScenarioID); err != nil {
			return err
		}
		for _, post := range posts {
			if _, err := s.dictRepo.GetFunctionalZoneType(ctx, tx, post.FunctionalZoneTypeID); err != nil {
				return err
			}
			zone := &types.ScenarioFunctionalZone{
				ScenarioID:           scenario.ScenarioID,
				FunctionalZoneTypeID: post.FunctionalZoneTypeID,
				Geometry:             post.Geometry,
				Year:                 post.Year,
				Source:               post.Source,
				Properties:           post.Properties,
			}
			if _, err := s.functionalZoneRepo.CreateScenario(ctx, tx, zone); err != nil {
				return err
			}
		}
		return nil
	})
}
