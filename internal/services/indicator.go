package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/clients/hextech"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/queryfilter"
	"github.com/urbanatlas/urban-backend/internal/repos"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type IndicatorService interface {
	PutValue(ctx context.Context, scenarioID int64, put *types.IndicatorValuePut) (*types.ScenarioIndicatorValue, error)
	ListValues(ctx context.Context, scenarioID int64, indicatorIDs []int64) ([]*types.IndicatorValueView, error)
	DeleteValue(ctx context.Context, scenarioID, indicatorValueID int64) error
	Tree(ctx context.Context, parentID *int64) ([]*types.Indicator, error)
	UpdateAllValues(ctx context.Context, scenarioID int64) error
}

type indicatorService struct {
	db            *gorm.DB
	log           *logger.Logger
	indicatorRepo repos.IndicatorRepo
	scenarioRepo  repos.ScenarioRepo
	projectRepo   repos.ProjectRepo
	hextech       hextech.Client
}

func NewIndicatorService(
	db *gorm.DB,
	baseLog *logger.Logger,
	indicatorRepo repos.IndicatorRepo,
	scenarioRepo repos.ScenarioRepo,
	projectRepo repos.ProjectRepo,
	hextechClient hextech.Client,
) IndicatorService {
	return &indicatorService{
		db:            db,
		log:           baseLog.With("service", "IndicatorService"),
		indicatorRepo: indicatorRepo,
		scenarioRepo:  scenarioRepo,
		projectRepo:   projectRepo,
		hextech:       hextechClient,
	}
}

func (s *indicatorService) scope(ctx context.Context, scenarioID int64, edit bool) (*types.Scenario, error) {
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
	if edit {
		err = checkProjectEdit(rd, project)
	} else {
		err = checkProjectRead(rd, project)
	}
	if err != nil {
		return nil, err
	}
	return scenario, nil
}

func (s *indicatorService) PutValue(ctx context.Context, scenarioID int64, put *types.IndicatorValuePut) (*types.ScenarioIndicatorValue, error) {
	scenario, err := s.scope(ctx, scenarioID, true)
	if err != nil {
		return nil, err
	}
	if _, err := s.indicatorRepo.GetByID(ctx, nil, put.IndicatorID); err != nil {
		return nil, err
	}

	value := &types.ScenarioIndicatorValue{
		IndicatorID:       put.IndicatorID,
		ScenarioID:        scenario.ScenarioID,
		TerritoryID:       put.TerritoryID,
		Value:             put.Value,
		Comment:           put.Comment,
		InformationSource: put.InformationSource,
		Properties:        put.Properties,
	}
	if _, err := s.indicatorRepo.PutValue(ctx, nil, value); err != nil {
		return nil, err
	}

	// The stored value and the recomputed rollup must not drift apart,
	// so a recomputation failure fails the whole operation.
	if err := s.recompute(ctx, scenario.ScenarioID); err != nil {
		return nil, err
	}
	return value, nil
}

func (s *indicatorService) ListValues(ctx context.Context, scenarioID int64, indicatorIDs []int64) ([]*types.IndicatorValueView, error) {
	scenario, err := s.scope(ctx, scenarioID, false)
	if err != nil {
		return nil, err
	}
	return s.indicatorRepo.ListValues(ctx, nil, scenario.ScenarioID,
		queryfilter.In("siv.indicator_id", indicatorIDs))
}

func (s *indicatorService) DeleteValue(ctx context.Context, scenarioID, indicatorValueID int64) error {
	scenario, err := s.scope(ctx, scenarioID, true)
	if err != nil {
		return err
	}
	value, err := s.indicatorRepo.GetValue(ctx, nil, indicatorValueID)
	if err != nil {
		return err
	}
	if value.ScenarioID != scenario.ScenarioID {
		return apierr.NotFound("indicator value", indicatorValueID)
	}
	if err := s.indicatorRepo.DeleteValue(ctx, nil, indicatorValueID); err != nil {
		return err
	}
	return s.recompute(ctx, scenario.ScenarioID)
}

func (s *indicatorService) Tree(ctx context.Context, parentID *int64) ([]*types.Indicator, error) {
	return s.indicatorRepo.List(ctx, nil, queryfilter.Eq("parent_id", parentID))
}

// UpdateAllValues pushes the scenario through a full external
// recomputation. The upstream error is the result; nothing is retried
// or deferred here beyond what the client itself does.
func (s *indicatorService) UpdateAllValues(ctx context.Context, scenarioID int64) error {
	scenario, err := s.scope(ctx, scenarioID, true)
	if err != nil {
		return err
	}
	return s.recompute(ctx, scenario.ScenarioID)
}

func (s *indicatorService) recompute(ctx context.Context, scenarioID int64) error {
	if s.hextech == nil {
		return apierr.Upstream("hextech", errors.New("client not configured"))
	}
	return s.hextech.SaveScenarioIndicators(ctx, scenarioID)
}
