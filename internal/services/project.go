package services

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/clients/hextech"
	"github.com/urbanatlas/urban-backend/internal/clients/redis"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/queryfilter"
	"github.com/urbanatlas/urban-backend/internal/repos"
	"github.com/urbanatlas/urban-backend/internal/types"
)

// minCrossingShare is the smallest inside-area fraction at which a
// boundary-straddling public object is forked into the base scenario.
const minCrossingShare = 0.01

type ProjectService interface {
	Create(ctx context.Context, post *types.ProjectPost) (*types.ProjectView, error)
	Get(ctx context.Context, projectID int64) (*types.ProjectView, error)
	List(ctx context.Context, territoryID *int64, onlyOwn bool) ([]*types.Project, error)
	Patch(ctx context.Context, projectID int64, patch *types.ProjectPatch) (*types.Project, error)
	Delete(ctx context.Context, projectID int64) error
}

type projectService struct {
	db                 *gorm.DB
	log                *logger.Logger
	projectRepo        repos.ProjectRepo
	territoryRepo      repos.TerritoryRepo
	scenarioRepo       repos.ScenarioRepo
	physicalObjectRepo repos.PhysicalObjectRepo
	objectGeometryRepo repos.ObjectGeometryRepo
	serviceRepo        repos.ServiceRepo
	functionalZoneRepo repos.FunctionalZoneRepo
	materializer       Materializer
	events             redis.EventBus
	hextech            hextech.Client
}

func NewProjectService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	territoryRepo repos.TerritoryRepo,
	scenarioRepo repos.ScenarioRepo,
	physicalObjectRepo repos.PhysicalObjectRepo,
	objectGeometryRepo repos.ObjectGeometryRepo,
	serviceRepo repos.ServiceRepo,
	functionalZoneRepo repos.FunctionalZoneRepo,
	materializer Materializer,
	events redis.EventBus,
	hextechClient hextech.Client,
) ProjectService {
	return &projectService{
		db:                 db,
		log:                baseLog.With("service", "ProjectService"),
		projectRepo:        projectRepo,
		territoryRepo:      territoryRepo,
		scenarioRepo:       scenarioRepo,
		physicalObjectRepo: physicalObjectRepo,
		objectGeometryRepo: objectGeometryRepo,
		serviceRepo:        serviceRepo,
		functionalZoneRepo: functionalZoneRepo,
		materializer:       materializer,
		events:             events,
		hextech:            hextechClient,
	}
}

// Create sets up a project in one transaction: the project row, its
// drawn boundary, the base scenario, the functional zone layer clipped
// to the boundary, and clipped forks of every public object straddling
// the boundary. A regional project takes its anchor territory's
// geometry as the boundary and skips the fork pass.
func (s *projectService) Create(ctx context.Context, post *types.ProjectPost) (*types.ProjectView, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	territory, err := s.territoryRepo.GetByID(ctx, nil, post.TerritoryID)
	if err != nil {
		return nil, err
	}

	boundary := post.Geometry
	if post.IsRegional {
		boundary = territory.Geometry
	}

	var (
		project *types.Project
		base    *types.Scenario
	)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		project = &types.Project{
			UserID:      rd.UserID,
			TerritoryID: post.TerritoryID,
			Name:        post.Name,
			Description: post.Description,
			IsRegional:  post.IsRegional,
			Public:      post.Public,
			Properties:  post.Properties,
		}
		if _, err := s.projectRepo.Create(ctx, tx, project); err != nil {
			return err
		}

		centre := boundary.Centroid()
		projectTerritory := &types.ProjectTerritory{
			ProjectID:   project.ProjectID,
			Geometry:    boundary,
			CentrePoint: centre,
		}
		if _, err := s.projectRepo.CreateTerritory(ctx, tx, projectTerritory); err != nil {
			return err
		}

		base = &types.Scenario{
			ProjectID: project.ProjectID,
			Name:      "Base scenario",
			IsBased:   true,
		}
		if _, err := s.scenarioRepo.Create(ctx, tx, base); err != nil {
			return err
		}

		if err := s.functionalZoneRepo.CopyFromPublic(ctx, tx, base.ScenarioID, project.ProjectID); err != nil {
			return err
		}

		if err := s.enrichProperties(ctx, tx, project, territory); err != nil {
			return err
		}

		if !post.IsRegional {
			crossing, err := s.objectGeometryRepo.CrossingProjectBoundary(ctx, tx, project.ProjectID, minCrossingShare)
			if err != nil {
				return err
			}
			for _, urbanObjectID := range crossing {
				link, err := s.materializer.Fork(ctx, tx, base.ScenarioID, urbanObjectID)
				if err != nil {
					return err
				}
				if err := s.objectGeometryRepo.ClipScenarioToProject(ctx, tx, *link.ObjectGeometryID, project.ProjectID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, redis.EventCreated, "project", project.ProjectID, project.ProjectID, rd.UserID)
	go s.saveAllIndicators(project.ProjectID)

	return s.view(ctx, project, base)
}

// enrichProperties stamps the anchor territory name and the names of
// territories crossed by the context ring into the project's jsonb
// properties, so project cards can render placement without extra
// spatial queries. Caller-supplied keys win on collision.
func (s *projectService) enrichProperties(ctx context.Context, tx *gorm.DB, project *types.Project, territory *types.Territory) error {
	props := map[string]any{}
	if len(project.Properties) > 0 {
		if err := json.Unmarshal(project.Properties, &props); err != nil {
			return err
		}
	}
	if _, ok := props["territory"]; !ok {
		props["territory"] = territory.Name
	}
	if _, ok := props["context"]; !ok {
		contextTerritories, err := s.territoryRepo.IntersectingProjectContext(ctx, tx, project.ProjectID, repos.ContextBufferMeters)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(contextTerritories))
		for _, t := range contextTerritories {
			names = append(names, t.Name)
		}
		props["context"] = names
	}

	raw, err := json.Marshal(props)
	if err != nil {
		return err
	}
	project.Properties = raw
	return s.projectRepo.Update(ctx, tx, project.ProjectID, map[string]any{"properties": project.Properties})
}

func (s *projectService) view(ctx context.Context, project *types.Project, base *types.Scenario) (*types.ProjectView, error) {
	boundary, centre, err := s.projectRepo.BoundaryGeoJSON(ctx, nil, project.ProjectID)
	if err != nil {
		return nil, err
	}
	view := &types.ProjectView{
		Project:     *project,
		Geometry:    json.RawMessage(boundary),
		CentrePoint: json.RawMessage(centre),
	}
	if base != nil {
		view.BaseScenarioID = &base.ScenarioID
	}
	return view, nil
}

func (s *projectService) Get(ctx context.Context, projectID int64) (*types.ProjectView, error) {
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
	base, err := s.scenarioRepo.GetBase(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, project, base)
}

// List returns projects visible to the caller: their own plus public
// ones, optionally narrowed to a territory subtree.
func (s *projectService) List(ctx context.Context, territoryID *int64, onlyOwn bool) ([]*types.Project, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	filters := []queryfilter.Filter{
		queryfilter.Recursive("territory_id", territoryID, types.TerritorySpec),
	}
	if onlyOwn {
		filters = append(filters, queryfilter.Eq("user_id", &rd.UserID))
	} else if !rd.IsSuperuser {
		filters = append(filters, queryfilter.Custom(func(query *gorm.DB) *gorm.DB {
			return query.Where("user_id = ? OR public", rd.UserID)
		}))
	}
	return s.projectRepo.List(ctx, nil, filters...)
}

func (s *projectService) Patch(ctx context.Context, projectID int64, patch *types.ProjectPatch) (*types.Project, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if err := checkProjectEdit(rd, project); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Public != nil {
		updates["public"] = *patch.Public
	}
	if patch.Properties != nil {
		updates["properties"] = patch.Properties
	}
	if len(updates) > 0 {
		if err := s.projectRepo.Update(ctx, nil, projectID, updates); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, redis.EventUpdated, "project", projectID, projectID, rd.UserID)
	return s.projectRepo.GetByID(ctx, nil, projectID)
}

// Delete removes the project; scenario rows and the boundary cascade in
// the database.
func (s *projectService) Delete(ctx context.Context, projectID int64) error {
	rd, err := caller(ctx)
	if err != nil {
		return err
	}
	project, err := s.projectRepo.GetByID(ctx, nil, projectID)
	if err != nil {
		return err
	}
	if err := checkProjectEdit(rd, project); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		scenarios, err := s.scenarioRepo.ListByProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		// Scenario component rows carry no scenario id of their own;
		// they must be removed through the link rows before the cascade
		// from the project takes those links away.
		for _, scenario := range scenarios {
			if err := s.physicalObjectRepo.DeleteScenarioByScenario(ctx, tx, scenario.ScenarioID); err != nil {
				return err
			}
			if err := s.objectGeometryRepo.DeleteScenarioByScenario(ctx, tx, scenario.ScenarioID); err != nil {
				return err
			}
			if err := s.serviceRepo.DeleteScenarioByScenario(ctx, tx, scenario.ScenarioID); err != nil {
				return err
			}
			if err := s.functionalZoneRepo.DeleteScenarioByScenario(ctx, tx, scenario.ScenarioID); err != nil {
				return err
			}
		}
		return s.projectRepo.Delete(ctx, tx, projectID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, redis.EventDeleted, "project", projectID, projectID, rd.UserID)
	return nil
}

func (s *projectService) publish(ctx context.Context, kind, entity string, entityID, projectID int64, userID string) {
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

func (s *projectService) saveAllIndicators(projectID int64) {
	if s.hextech == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.hextech.SaveAllProjectIndicators(ctx, projectID); err != nil {
		s.log.Warn("hextech project indicator save failed", "project_id", projectID, "error", err)
	}
}
