package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/clients/redis"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/repos"
	"github.com/urbanatlas/urban-backend/internal/types"
)

// BufferService manages coverage zones inside a scenario. Buffers of
// public objects are never touched directly: the object is forked first
// and the buffer lands on the scenario side.
type BufferService interface {
	Put(ctx context.Context, scenarioID int64, put *types.BufferPut) error
	Delete(ctx context.Context, scenarioID int64, del *types.BufferDelete) error
}

type bufferService struct {
	db              *gorm.DB
	log             *logger.Logger
	scenarioRepo    repos.ScenarioRepo
	projectRepo     repos.ProjectRepo
	urbanObjectRepo repos.UrbanObjectRepo
	bufferRepo      repos.BufferRepo
	dictRepo        repos.DictRepo
	materializer    Materializer
	events          redis.EventBus
}

func NewBufferService(
	db *gorm.DB,
	baseLog *logger.Logger,
	scenarioRepo repos.ScenarioRepo,
	projectRepo repos.ProjectRepo,
	urbanObjectRepo repos.UrbanObjectRepo,
	bufferRepo repos.BufferRepo,
	dictRepo repos.DictRepo,
	materializer Materializer,
	events redis.EventBus,
) BufferService {
	return &bufferService{
		db:              db,
		log:             baseLog.With("service", "BufferService"),
		scenarioRepo:    scenarioRepo,
		projectRepo:     projectRepo,
		urbanObjectRepo: urbanObjectRepo,
		bufferRepo:      bufferRepo,
		dictRepo:        dictRepo,
		materializer:    materializer,
		events:          events,
	}
}

func (s *bufferService) scope(ctx context.Context, scenarioID int64) (*types.Scenario, *types.Project, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, nil, err
	}
	scenario, err := s.scenarioRepo.GetByID(ctx, nil, scenarioID)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, nil, scenario.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if err := checkProjectEdit(rd, project); err != nil {
		return nil, nil, err
	}
	return scenario, project, nil
}

func (s *bufferService) Put(ctx context.Context, scenarioID int64, put *types.BufferPut) error {
	scenario, project, err := s.scope(ctx, scenarioID)
	if err != nil {
		return err
	}
	if _, err := s.dictRepo.GetBufferType(ctx, nil, put.BufferTypeID); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		link, err := s.resolveLink(ctx, tx, scenario, put.UrbanObjectID, put.IsScenarioObject)
		if err != nil {
			return err
		}

		if put.Geometry != nil {
			buffer := &types.ScenarioBuffer{
				BufferTypeID:  put.BufferTypeID,
				UrbanObjectID: link.UrbanObjectID,
				Geometry:      *put.Geometry,
				IsCustom:      true,
			}
			_, err := s.bufferRepo.PutScenario(ctx, tx, buffer)
			return err
		}
		return s.bufferRepo.PutScenarioDefault(ctx, tx, put.BufferTypeID, link.UrbanObjectID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, redis.EventUpdated, put.UrbanObjectID, project.ProjectID, scenario.ScenarioID)
	return nil
}

func (s *bufferService) Delete(ctx context.Context, scenarioID int64, del *types.BufferDelete) error {
	scenario, project, err := s.scope(ctx, scenarioID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if !del.IsScenarioObject {
			// Forking hides the public buffer from the merged view;
			// the fork itself starts with no buffers.
			_, err := s.materializer.Fork(ctx, tx, scenario.ScenarioID, del.UrbanObjectID)
			return err
		}
		link, err := s.urbanObjectRepo.GetScenarioByID(ctx, tx, del.UrbanObjectID)
		if err != nil {
			return err
		}
		if link.ScenarioID != scenario.ScenarioID {
			return apierr.NotFound("scenario urban object", del.UrbanObjectID)
		}
		return s.bufferRepo.DeleteScenario(ctx, tx, del.BufferTypeID, del.UrbanObjectID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, redis.EventDeleted, del.UrbanObjectID, project.ProjectID, scenario.ScenarioID)
	return nil
}

// resolveLink returns the scenario link row to hang the buffer on,
// forking the public object first when needed.
func (s *bufferService) resolveLink(ctx context.Context, tx *gorm.DB, scenario *types.Scenario, urbanObjectID int64, isScenarioObject bool) (*types.ScenarioUrbanObject, error) {
	if isScenarioObject {
		link, err := s.urbanObjectRepo.GetScenarioByID(ctx, tx, urbanObjectID)
		if err != nil {
			return nil, err
		}
		if link.ScenarioID != scenario.ScenarioID {
			return nil, apierr.NotFound("scenario urban object", urbanObjectID)
		}
		return link, nil
	}
	return s.materializer.Fork(ctx, tx, scenario.ScenarioID, urbanObjectID)
}

func (s *bufferService) publish(ctx context.Context, kind string, entityID, projectID, scenarioID int64) {
	if s.events == nil {
		return
	}
	rd, err := caller(ctx)
	userID := ""
	if err == nil {
		userID = rd.UserID
	}
	event := redis.ChangeEvent{
		Kind:       kind,
		Entity:     "buffer",
		EntityID:   entityID,
		ProjectID:  projectID,
		ScenarioID: scenarioID,
		UserID:     userID,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("event publish failed", "entity_id", entityID, "error", err)
	}
}
