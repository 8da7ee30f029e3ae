package services

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/clients/hextech"
	"github.com/urbanatlas/urban-backend/internal/clients/redis"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/repos"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type ScenarioService interface {
	Get(ctx context.Context, scenarioID int64) (*types.Scenario, error)
	ListByProject(ctx context.Context, projectID int64) ([]*types.Scenario, error)
	Create(ctx context.Context, post *types.ScenarioPost) (*types.Scenario, error)
	Copy(ctx context.Context, scenarioID int64, name string) (*types.Scenario, error)
	Patch(ctx context.Context, scenarioID int64, patch *types.ScenarioPatch) (*types.Scenario, error)
	Delete(ctx context.Context, scenarioID int64) error
}

type scenarioService struct {
	db                 *gorm.DB
	log                *logger.Logger
	scenarioRepo       repos.ScenarioRepo
	projectRepo        repos.ProjectRepo
	urbanObjectRepo    repos.UrbanObjectRepo
	physicalObjectRepo repos.PhysicalObjectRepo
	objectGeometryRepo repos.ObjectGeometryRepo
	serviceRepo        repos.ServiceRepo
	functionalZoneRepo repos.FunctionalZoneRepo
	indicatorRepo      repos.IndicatorRepo
	events             redis.EventBus
	hextech            hextech.Client
}

func NewScenarioService(
	db *gorm.DB,
	baseLog *logger.Logger,
	scenarioRepo repos.ScenarioRepo,
	projectRepo repos.ProjectRepo,
	urbanObjectRepo repos.UrbanObjectRepo,
	physicalObjectRepo repos.PhysicalObjectRepo,
	objectGeometryRepo repos.ObjectGeometryRepo,
	serviceRepo repos.ServiceRepo,
	functionalZoneRepo repos.FunctionalZoneRepo,
	indicatorRepo repos.IndicatorRepo,
	events redis.EventBus,
	hextechClient hextech.Client,
) ScenarioService {
	return &scenarioService{
		db:                 db,
		log:                baseLog.With("service", "ScenarioService"),
		scenarioRepo:       scenarioRepo,
		projectRepo:        projectRepo,
		urbanObjectRepo:    urbanObjectRepo,
		physicalObjectRepo: physicalObjectRepo,
		objectGeometryRepo: objectGeometryRepo,
		serviceRepo:        serviceRepo,
		functionalZoneRepo: functionalZoneRepo,
		indicatorRepo:      indicatorRepo,
		events:             events,
		hextech:            hextechClient,
	}
}

func (s *scenarioService) scope(ctx context.Context, scenarioID int64, edit bool) (*types.Scenario, *types.Project, error) {
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
	if edit {
		err = checkProjectEdit(rd, project)
	} else {
		err = checkProjectRead(rd, project)
	}
	if err != nil {
		return nil, nil, err
	}
	return scenario, project, nil
}

func (s *scenarioService) Get(ctx context.Context, scenarioID int64) (*types.Scenario, error) {
	scenario, _, err := s.scope(ctx, scenarioID, false)
	return scenario, err
}

func (s *scenarioService) ListByProject(ctx context.Context, projectID int64) ([]*types.Scenario, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if err := checkProjectRead(rd, project); err != nil {
		return nil, err
	}
	return s.scenarioRepo.ListByProject(ctx, nil, projectID)
}

// Create adds a scenario branching from the project's base scenario.
// Its working set starts with the base scenario's rows.
func (s *scenarioService) Create(ctx context.Context, post *types.ScenarioPost) (*types.Scenario, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, nil, post.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := checkProjectEdit(rd, project); err != nil {
		return nil, err
	}
	base, err := s.scenarioRepo.GetBase(ctx, nil, post.ProjectID)
	if err != nil {
		return nil, err
	}

	var created *types.Scenario
	err = s.db.Transaction(func(tx *gorm.DB) error {
		scenario := &types.Scenario{
			ProjectID:            post.ProjectID,
			ParentID:             &base.ScenarioID,
			FunctionalZoneTypeID: post.FunctionalZoneTypeID,
			Name:                 post.Name,
			Properties:           post.Properties,
		}
		if _, err := s.scenarioRepo.Create(ctx, tx, scenario); err != nil {
			return err
		}
		if err := s.copyWorkingSet(ctx, tx, base.ScenarioID, scenario.ScenarioID); err != nil {
			return err
		}
		created = scenario
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, redis.EventCreated, "scenario", created.ScenarioID, project.ProjectID, rd.UserID)
	return created, nil
}

// Copy duplicates a scenario inside its project, including every
// scenario-local component, link row, functional zone and indicator
// value. The copy records its origin through parent_id.
func (s *scenarioService) Copy(ctx context.Context, scenarioID int64, name string) (*types.Scenario, error) {
	source, project, err := s.scope(ctx, scenarioID, true)
	if err != nil {
		return nil, err
	}
	rd, _ := caller(ctx)

	var created *types.Scenario
	err = s.db.Transaction(func(tx *gorm.DB) error {
		scenario := &types.Scenario{
			ProjectID:            source.ProjectID,
			ParentID:             &source.ScenarioID,
			FunctionalZoneTypeID: source.FunctionalZoneTypeID,
			Name:                 name,
			Properties:           source.Properties,
		}
		if _, err := s.scenarioRepo.Create(ctx, tx, scenario); err != nil {
			return err
		}
		if err := s.copyWorkingSet(ctx, tx, source.ScenarioID, scenario.ScenarioID); err != nil {
			return err
		}
		if err := s.functionalZoneRepo.CopyBetweenScenarios(ctx, tx, source.ScenarioID, scenario.ScenarioID); err != nil {
			return err
		}
		if err := s.indicatorRepo.CopyValues(ctx, tx, source.ScenarioID, scenario.ScenarioID); err != nil {
			return err
		}
		created = scenario
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, redis.EventCreated, "scenario", created.ScenarioID, project.ProjectID, rd.UserID)
	return created, nil
}

// copyWorkingSet clones the scenario-owned component rows of one
// scenario into another and rebuilds the link rows on the new ids.
// Slots referencing public rows copy as-is.
func (s *scenarioService) copyWorkingSet(ctx context.Context, tx *gorm.DB, fromScenarioID, toScenarioID int64) error {
	links, err := s.urbanObjectRepo.ListScenario(ctx, tx, fromScenarioID)
	if err != nil {
		return err
	}

	physicalObjectIDs := map[int64]int64{}
	objectGeometryIDs := map[int64]int64{}
	serviceIDs := map[int64]int64{}

	for _, link := range links {
		clone := &types.ScenarioUrbanObject{
			ScenarioID:             toScenarioID,
			PublicUrbanObjectID:    link.PublicUrbanObjectID,
			PublicPhysicalObjectID: link.PublicPhysicalObjectID,
			PublicObjectGeometryID: link.PublicObjectGeometryID,
			PublicServiceID:        link.PublicServiceID,
		}

		if link.PhysicalObjectID != nil {
			newID, ok := physicalObjectIDs[*link.PhysicalObjectID]
			if !ok {
				source, err := s.physicalObjectRepo.GetScenarioByID(ctx, tx, *link.PhysicalObjectID)
				if err != nil {
					return err
				}
				copied := &types.ScenarioPhysicalObject{
					PublicPhysicalObjectID: source.PublicPhysicalObjectID,
					PhysicalObjectTypeID:   source.PhysicalObjectTypeID,
					Name:                   source.Name,
					Properties:             source.Properties,
				}
				if _, err := s.physicalObjectRepo.CreateScenario(ctx, tx, copied); err != nil {
					return err
				}
				newID = copied.PhysicalObjectID
				physicalObjectIDs[*link.PhysicalObjectID] = newID
			}
			clone.PhysicalObjectID = &newID
		}

		if link.ObjectGeometryID != nil {
			newID, ok := objectGeometryIDs[*link.ObjectGeometryID]
			if !ok {
				source, err := s.objectGeometryRepo.GetScenarioByID(ctx, tx, *link.ObjectGeometryID)
				if err != nil {
					return err
				}
				copied := &types.ScenarioObjectGeometry{
					PublicObjectGeometryID: source.PublicObjectGeometryID,
					TerritoryID:            source.TerritoryID,
					Geometry:               source.Geometry,
					CentrePoint:            source.CentrePoint,
					Address:                source.Address,
					OsmID:                  source.OsmID,
				}
				if _, err := s.objectGeometryRepo.CreateScenario(ctx, tx, copied); err != nil {
					return err
				}
				newID = copied.ObjectGeometryID
				objectGeometryIDs[*link.ObjectGeometryID] = newID
			}
			clone.ObjectGeometryID = &newID
		}

		if link.ServiceID != nil {
			newID, ok := serviceIDs[*link.ServiceID]
			if !ok {
				source, err := s.serviceRepo.GetScenarioByID(ctx, tx, *link.ServiceID)
				if err != nil {
					return err
				}
				copied := &types.ScenarioService{
					PublicServiceID: source.PublicServiceID,
					ServiceTypeID:   source.ServiceTypeID,
					Name:            source.Name,
					Capacity:        source.Capacity,
					IsCapacityReal:  source.IsCapacityReal,
					Properties:      source.Properties,
				}
				if _, err := s.serviceRepo.CreateScenario(ctx, tx, copied); err != nil {
					return err
				}
				newID = copied.ServiceID
				serviceIDs[*link.ServiceID] = newID
			}
			clone.ServiceID = &newID
		}

		if _, err := s.urbanObjectRepo.CreateScenario(ctx, tx, clone); err != nil {
			return err
		}
	}
	return nil
}

func (s *scenarioService) Patch(ctx context.Context, scenarioID int64, patch *types.ScenarioPatch) (*types.Scenario, error) {
	_, project, err := s.scope(ctx, scenarioID, true)
	if err != nil {
		return nil, err
	}
	rd, _ := caller(ctx)

	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.FunctionalZoneTypeID != nil {
		updates["functional_zone_type_id"] = *patch.FunctionalZoneTypeID
	}
	if patch.Properties != nil {
		updates["properties"] = patch.Properties
	}
	if len(updates) > 0 {
		if err := s.scenarioRepo.Update(ctx, nil, scenarioID, updates); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, redis.EventUpdated, "scenario", scenarioID, project.ProjectID, rd.UserID)
	if err := s.saveIndicators(ctx, scenarioID); err != nil {
		return nil, err
	}
	return s.scenarioRepo.GetByID(ctx, nil, scenarioID)
}

// Delete removes a scenario and everything it owns. The base scenario
// only goes away with its project.
func (s *scenarioService) Delete(ctx context.Context, scenarioID int64) error {
	scenario, project, err := s.scope(ctx, scenarioID, true)
	if err != nil {
		return err
	}
	rd, _ := caller(ctx)

	if scenario.IsBased {
		return apierr.New(http.StatusConflict, apierr.CodeInvariantViolation,
			errors.New("base scenario can only be deleted with its project"))
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.scenarioRepo.DetachChildren(ctx, tx, scenarioID); err != nil {
			return err
		}
		// Component rows are only reachable through this scenario's link
		// rows, so they go first, while the links still exist. Buffers
		// cascade off the link rows.
		if err := s.physicalObjectRepo.DeleteScenarioByScenario(ctx, tx, scenarioID); err != nil {
			return err
		}
		if err := s.objectGeometryRepo.DeleteScenarioByScenario(ctx, tx, scenarioID); err != nil {
			return err
		}
		if err := s.serviceRepo.DeleteScenarioByScenario(ctx, tx, scenarioID); err != nil {
			return err
		}
		if err := s.urbanObjectRepo.DeleteScenarioByScenario(ctx, tx, scenarioID); err != nil {
			return err
		}
		if err := s.functionalZoneRepo.DeleteScenarioByScenario(ctx, tx, scenarioID); err != nil {
			return err
		}
		return s.scenarioRepo.Delete(ctx, tx, scenarioID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, redis.EventDeleted, "scenario", scenarioID, project.ProjectID, rd.UserID)
	return nil
}

func (s *scenarioService) publish(ctx context.Context, kind, entity string, entityID, projectID int64, userID string) {
	if s.events == nil {
		return
	}
	event := redis.ChangeEvent{
		Kind:      kind,
		Entity:    entity,
		EntityID:  entityID,
		ProjectID: projectID,
		UserID:    userID,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("event publish failed", "entity", entity, "entity_id", entityID, "error", err)
	}
}

// saveIndicators triggers the external recomputation for a changed
// scenario. The caller decides whether the error is fatal.
func (s *scenarioService) saveIndicators(ctx context.Context, scenarioID int64) error {
	if s.hextech == nil {
		return nil
	}
	return s.hextech.SaveScenarioIndicators(ctx, scenarioID)
}
