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

// UrbanObjectService applies scenario edits to city objects. Edits of
// public objects go through the materializer first; the public tables
// themselves are never written from here.
type UrbanObjectService interface {
	AddPhysicalObject(ctx context.Context, scenarioID int64, post *types.PhysicalObjectWithGeometryPost) (*types.ScenarioUrbanObject, error)
	PatchPhysicalObject(ctx context.Context, scenarioID, physicalObjectID int64, isScenarioObject bool, patch *types.PhysicalObjectPatch) error
	PutObjectGeometry(ctx context.Context, scenarioID, objectGeometryID int64, isScenarioObject bool, put *types.ObjectGeometryPut) error
	AddService(ctx context.Context, scenarioID, urbanObjectID int64, isScenarioObject bool, post *types.ServicePost) error
	PatchService(ctx context.Context, scenarioID, serviceID int64, isScenarioObject bool, patch *types.ServicePatch) error
	DeleteObject(ctx context.Context, scenarioID, urbanObjectID int64, isScenarioObject bool) error
}

type urbanObjectService struct {
	db                 *gorm.DB
	log                *logger.Logger
	scenarioRepo       repos.ScenarioRepo
	projectRepo        repos.ProjectRepo
	urbanObjectRepo    repos.UrbanObjectRepo
	physicalObjectRepo repos.PhysicalObjectRepo
	objectGeometryRepo repos.ObjectGeometryRepo
	serviceRepo        repos.ServiceRepo
	territoryRepo      repos.TerritoryRepo
	bufferRepo         repos.BufferRepo
	materializer       Materializer
	events             redis.EventBus
}

func NewUrbanObjectService(
	db *gorm.DB,
	baseLog *logger.Logger,
	scenarioRepo repos.ScenarioRepo,
	projectRepo repos.ProjectRepo,
	urbanObjectRepo repos.UrbanObjectRepo,
	physicalObjectRepo repos.PhysicalObjectRepo,
	objectGeometryRepo repos.ObjectGeometryRepo,
	serviceRepo repos.ServiceRepo,
	territoryRepo repos.TerritoryRepo,
	bufferRepo repos.BufferRepo,
	materializer Materializer,
	events redis.EventBus,
) UrbanObjectService {
	return &urbanObjectService{
		db:                 db,
		log:                baseLog.With("service", "UrbanObjectService"),
		scenarioRepo:       scenarioRepo,
		projectRepo:        projectRepo,
		urbanObjectRepo:    urbanObjectRepo,
		physicalObjectRepo: physicalObjectRepo,
		objectGeometryRepo: objectGeometryRepo,
		serviceRepo:        serviceRepo,
		territoryRepo:      territoryRepo,
		bufferRepo:         bufferRepo,
		materializer:       materializer,
		events:             events,
	}
}

func (s *urbanObjectService) scope(ctx context.Context, scenarioID int64) (*types.Scenario, *types.Project, error) {
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

// AddPhysicalObject creates a fully scenario-owned object: component
// rows plus the link row, with no public side at all.
func (s *urbanObjectService) AddPhysicalObject(ctx context.Context, scenarioID int64, post *types.PhysicalObjectWithGeometryPost) (*types.ScenarioUrbanObject, error) {
	scenario, project, err := s.scope(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	var link *types.ScenarioUrbanObject
	err = s.db.Transaction(func(tx *gorm.DB) error {
		object := &types.ScenarioPhysicalObject{
			PhysicalObjectTypeID: post.PhysicalObjectTypeID,
			Name:                 post.Name,
			Properties:           post.Properties,
		}
		if _, err := s.physicalObjectRepo.CreateScenario(ctx, tx, object); err != nil {
			return err
		}

		centre := post.CentrePoint
		if centre.IsZero() {
			centre = post.Geometry.Centroid()
		}
		geom := &types.ScenarioObjectGeometry{
			TerritoryID: post.TerritoryID,
			Geometry:    post.Geometry,
			CentrePoint: centre,
			Address:     post.Address,
			OsmID:       post.OsmID,
		}
		if _, err := s.objectGeometryRepo.CreateScenario(ctx, tx, geom); err != nil {
			return err
		}

		link = &types.ScenarioUrbanObject{
			ScenarioID:       scenario.ScenarioID,
			PhysicalObjectID: &object.PhysicalObjectID,
			ObjectGeometryID: &geom.ObjectGeometryID,
		}
		_, err := s.urbanObjectRepo.CreateScenario(ctx, tx, link)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, redis.EventCreated, "urban_object", link.UrbanObjectID, project.ProjectID, scenario.ScenarioID)
	return link, nil
}

func (s *urbanObjectService) PatchPhysicalObject(ctx context.Context, scenarioID, physicalObjectID int64, isScenarioObject bool, patch *types.PhysicalObjectPatch) error {
	scenario, project, err := s.scope(ctx, scenarioID)
	if err != nil {
		return err
	}

	updates := map[string]any{}
	if patch.PhysicalObjectTypeID != nil {
		updates["physical_object_type_id"] = *patch.PhysicalObjectTypeID
	}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Properties != nil {
		updates["properties"] = patch.Properties
	}
	if len(updates) == 0 {
		return nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		targetID := physicalObjectID
		if !isScenarioObject {
			forked, err := s.forkByPhysicalObject(ctx, tx, scenario, project, physicalObjectID)
			if err != nil {
				return err
			}
			targetID = forked
		} else if err := s.ownedByScenario(ctx, tx, scenario.ScenarioID, "physical_object_id", physicalObjectID); err != nil {
			return err
		}
		if err := s.physicalObjectRepo.UpdateScenario(ctx, tx, targetID, updates); err != nil {
			return err
		}
		if patch.PhysicalObjectTypeID == nil {
			return nil
		}
		// A new type can change the default radii backing the object's
		// generated coverage zones.
		return s.bufferRepo.RebuildScenarioDefaultsByPhysicalObject(ctx, tx, targetID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, redis.EventUpdated, "physical_object", physicalObjectID, project.ProjectID, scenario.ScenarioID)
	return nil
}

func (s *urbanObjectService) PutObjectGeometry(ctx context.Context, scenarioID, objectGeometryID int64, isScenarioObject bool, put *types.ObjectGeometryPut) error {
	scenario, project, err := s.scope(ctx, scenarioID)
	if err != nil {
		return err
	}

	centre := put.CentrePoint
	if centre.IsZero() {
		centre = put.Geometry.Centroid()
	}
	updates := map[string]any{
		"territory_id": put.TerritoryID,
		"geometry":     put.Geometry,
		"centre_point": centre,
		"address":      put.Address,
		"osm_id":       put.OsmID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		targetID := objectGeometryID
		if !isScenarioObject {
			forked, err := s.forkByObjectGeometry(ctx, tx, scenario, project, objectGeometryID)
			if err != nil {
				return err
			}
			targetID = forked
		} else if err := s.ownedByScenario(ctx, tx, scenario.ScenarioID, "object_geometry_id", objectGeometryID); err != nil {
			return err
		}
		if err := s.objectGeometryRepo.UpdateScenario(ctx, tx, targetID, updates); err != nil {
			return err
		}
		// Moving an object invalidates its generated coverage zones.
		return s.bufferRepo.RebuildScenarioDefaults(ctx, tx, targetID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, redis.EventUpdated, "object_geometry", objectGeometryID, project.ProjectID, scenario.ScenarioID)
	return nil
}

// AddService attaches a new service to an existing object by creating a
// second link row carrying the same components plus the service.
func (s *urbanObjectService) AddService(ctx context.Context, scenarioID, urbanObjectID int64, isScenarioObject bool, post *types.ServicePost) error {
	scenario, project, err := s.scope(ctx, scenarioID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var link *types.ScenarioUrbanObject
		if isScenarioObject {
			link, err = s.urbanObjectRepo.GetScenarioByID(ctx, tx, urbanObjectID)
			if err != nil {
				return err
			}
			if link.ScenarioID != scenario.ScenarioID {
				return apierr.NotFound("scenario urban object", urbanObjectID)
			}
		} else {
			link, err = s.materializer.Fork(ctx, tx, scenario.ScenarioID, urbanObjectID)
			if err != nil {
				return err
			}
		}

		service := &types.ScenarioService{
			ServiceTypeID:  post.ServiceTypeID,
			Name:           post.Name,
			Capacity:       post.Capacity,
			IsCapacityReal: post.IsCapacityReal,
			Properties:     post.Properties,
		}
		if _, err := s.serviceRepo.CreateScenario(ctx, tx, service); err != nil {
			return err
		}

		if link.ServiceID == nil && link.PublicServiceID == nil {
			return s.urbanObjectRepo.UpdateScenario(ctx, tx, link.UrbanObjectID, map[string]any{
				"service_id": service.ServiceID,
			})
		}
		sibling := &types.ScenarioUrbanObject{
			ScenarioID:             scenario.ScenarioID,
			PhysicalObjectID:       link.PhysicalObjectID,
			PublicPhysicalObjectID: link.PublicPhysicalObjectID,
			ObjectGeometryID:       link.ObjectGeometryID,
			PublicObjectGeometryID: link.PublicObjectGeometryID,
			ServiceID:              &service.ServiceID,
		}
		_, err = s.urbanObjectRepo.CreateScenario(ctx, tx, sibling)
		return err
	})
	if err != nil {
		return err
	}

	s.publish(ctx, redis.EventCreated, "service", urbanObjectID, project.ProjectID, scenario.ScenarioID)
	return nil
}

func (s *urbanObjectService) PatchService(ctx context.Context, scenarioID, serviceID int64, isScenarioObject bool, patch *types.ServicePatch) error {
	scenario, project, err := s.scope(ctx, scenarioID)
	if err != nil {
		return err
	}

	updates := map[string]any{}
	if patch.ServiceTypeID != nil {
		updates["service_type_id"] = *patch.ServiceTypeID
	}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Capacity != nil {
		updates["capacity"] = *patch.Capacity
	}
	if patch.IsCapacityReal != nil {
		updates["is_capacity_real"] = *patch.IsCapacityReal
	}
	if patch.Properties != nil {
		updates["properties"] = patch.Properties
	}
	if len(updates) == 0 {
		return nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		targetID := serviceID
		if !isScenarioObject {
			forked, err := s.forkByService(ctx, tx, scenario, project, serviceID)
			if err != nil {
				return err
			}
			targetID = forked
		} else if err := s.ownedByScenario(ctx, tx, scenario.ScenarioID, "service_id", serviceID); err != nil {
			return err
		}
		return s.serviceRepo.UpdateScenario(ctx, tx, targetID, updates)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, redis.EventUpdated, "service", serviceID, project.ProjectID, scenario.ScenarioID)
	return nil
}

// DeleteObject removes an object from the scenario view. A scenario
// object is deleted outright with its owned components; a public object
// gets a supersede marker and stays untouched in the public tables.
func (s *urbanObjectService) DeleteObject(ctx context.Context, scenarioID, urbanObjectID int64, isScenarioObject bool) error {
	scenario, project, err := s.scope(ctx, scenarioID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if !isScenarioObject {
			return s.materializer.Supersede(ctx, tx, scenario.ScenarioID, urbanObjectID)
		}

		link, err := s.urbanObjectRepo.GetScenarioByID(ctx, tx, urbanObjectID)
		if err != nil {
			return err
		}
		if link.ScenarioID != scenario.ScenarioID {
			return apierr.NotFound("scenario urban object", urbanObjectID)
		}
		if err := s.urbanObjectRepo.DeleteScenario(ctx, tx, urbanObjectID); err != nil {
			return err
		}
		if link.PhysicalObjectID != nil {
			if err := s.physicalObjectRepo.DeleteScenario(ctx, tx, *link.PhysicalObjectID); err != nil && !apierr.Is(err, apierr.CodeNotFound) {
				return err
			}
		}
		if link.ObjectGeometryID != nil {
			if err := s.objectGeometryRepo.DeleteScenario(ctx, tx, *link.ObjectGeometryID); err != nil && !apierr.Is(err, apierr.CodeNotFound) {
				return err
			}
		}
		if link.ServiceID != nil {
			if err := s.serviceRepo.DeleteScenario(ctx, tx, *link.ServiceID); err != nil && !apierr.Is(err, apierr.CodeNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, redis.EventDeleted, "urban_object", urbanObjectID, project.ProjectID, scenario.ScenarioID)
	return nil
}

// forkByPhysicalObject materializes the public link row carrying the
// given physical object inside the project window and returns the
// scenario-local physical object id.
func (s *urbanObjectService) forkByPhysicalObject(ctx context.Context, tx *gorm.DB, scenario *types.Scenario, project *types.Project, physicalObjectID int64) (int64, error) {
	links, err := s.urbanObjectRepo.ListByPhysicalObject(ctx, tx, physicalObjectID)
	if err != nil {
		return 0, err
	}
	link, err := s.pickInProject(ctx, tx, project, links)
	if err != nil {
		return 0, apierr.NotFound("physical object", physicalObjectID)
	}
	forked, err := s.materializer.Fork(ctx, tx, scenario.ScenarioID, link.UrbanObjectID)
	if err != nil {
		return 0, err
	}
	return *forked.PhysicalObjectID, nil
}

func (s *urbanObjectService) forkByObjectGeometry(ctx context.Context, tx *gorm.DB, scenario *types.Scenario, project *types.Project, objectGeometryID int64) (int64, error) {
	links, err := s.urbanObjectRepo.ListByObjectGeometry(ctx, tx, objectGeometryID)
	if err != nil {
		return 0, err
	}
	link, err := s.pickInProject(ctx, tx, project, links)
	if err != nil {
		return 0, apierr.NotFound("object geometry", objectGeometryID)
	}
	forked, err := s.materializer.Fork(ctx, tx, scenario.ScenarioID, link.UrbanObjectID)
	if err != nil {
		return 0, err
	}
	return *forked.ObjectGeometryID, nil
}

func (s *urbanObjectService) forkByService(ctx context.Context, tx *gorm.DB, scenario *types.Scenario, project *types.Project, serviceID int64) (int64, error) {
	service, err := s.serviceRepo.GetByID(ctx, tx, serviceID)
	if err != nil {
		return 0, err
	}
	links, err := s.listByService(ctx, tx, service.ServiceID)
	if err != nil {
		return 0, err
	}
	link, err := s.pickInProject(ctx, tx, project, links)
	if err != nil {
		return 0, apierr.NotFound("service", serviceID)
	}
	forked, err := s.materializer.Fork(ctx, tx, scenario.ScenarioID, link.UrbanObjectID)
	if err != nil {
		return 0, err
	}
	if forked.ServiceID == nil {
		return 0, apierr.InvariantViolation("forked link row lost its service slot")
	}
	return *forked.ServiceID, nil
}

func (s *urbanObjectService) listByService(ctx context.Context, tx *gorm.DB, serviceID int64) ([]*types.UrbanObject, error) {
	var results []*types.UrbanObject
	if err := tx.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// pickInProject returns the first link whose geometry intersects the
// project boundary.
func (s *urbanObjectService) pickInProject(ctx context.Context, tx *gorm.DB, project *types.Project, links []*types.UrbanObject) (*types.UrbanObject, error) {
	for _, link := range links {
		inside, err := s.objectGeometryRepo.WithinProject(ctx, tx, link.ObjectGeometryID, project.ProjectID)
		if err != nil {
			return nil, err
		}
		if inside {
			return link, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ownedByScenario verifies a scenario component belongs to the scenario
// being edited before any direct update.
func (s *urbanObjectService) ownedByScenario(ctx context.Context, tx *gorm.DB, scenarioID int64, column string, componentID int64) error {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&types.ScenarioUrbanObject{}).
		Where("scenario_id = ? AND "+column+" = ?", scenarioID, componentID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apierr.NotFoundByParams("scenario component", column, componentID)
	}
	return nil
}

func (s *urbanObjectService) publish(ctx context.Context, kind, entity string, entityID, projectID, scenarioID int64) {
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
		Entity:     entity,
		EntityID:   entityID,
		ProjectID:  projectID,
		ScenarioID: scenarioID,
		UserID:     userID,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("event publish failed", "entity", entity, "entity_id", entityID, "error", err)
	}
}
