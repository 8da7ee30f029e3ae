package services

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/queryfilter"
	"github.com/urbanatlas/urban-backend/internal/repos"
	"github.com/urbanatlas/urban-backend/internal/types"
)

// OverlayService builds merged scenario views: the public city model
// minus superseded rows, plus the scenario's own rows, each stamped
// with its provenance.
type OverlayService interface {
	UrbanObjects(ctx context.Context, scenarioID int64, filters ...queryfilter.Filter) ([]*types.UrbanObjectView, error)
	ContextObjects(ctx context.Context, scenarioID int64, filters ...queryfilter.Filter) ([]*types.UrbanObjectView, error)
	Buffers(ctx context.Context, scenarioID int64) ([]*types.BufferView, error)
	FunctionalZones(ctx context.Context, scenarioID int64, filters ...queryfilter.Filter) ([]*types.FunctionalZoneView, error)
}

type overlayService struct {
	db                 *gorm.DB
	log                *logger.Logger
	overlayRepo        repos.OverlayRepo
	scenarioRepo       repos.ScenarioRepo
	projectRepo        repos.ProjectRepo
	functionalZoneRepo repos.FunctionalZoneRepo
}

func NewOverlayService(
	db *gorm.DB,
	baseLog *logger.Logger,
	overlayRepo repos.OverlayRepo,
	scenarioRepo repos.ScenarioRepo,
	projectRepo repos.ProjectRepo,
	functionalZoneRepo repos.FunctionalZoneRepo,
) OverlayService {
	return &overlayService{
		db:                 db,
		log:                baseLog.With("service", "OverlayService"),
		overlayRepo:        overlayRepo,
		scenarioRepo:       scenarioRepo,
		projectRepo:        projectRepo,
		functionalZoneRepo: functionalZoneRepo,
	}
}

// scope loads the scenario and its project and verifies read access.
func (s *overlayService) scope(ctx context.Context, scenarioID int64) (*types.Scenario, *types.Project, error) {
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
	if err := checkProjectRead(rd, project); err != nil {
		return nil, nil, err
	}
	return scenario, project, nil
}

func (s *overlayService) UrbanObjects(ctx context.Context, scenarioID int64, filters ...queryfilter.Filter) ([]*types.UrbanObjectView, error) {
	scenario, project, err := s.scope(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	shadowed, err := s.overlayRepo.ShadowedPublicIDs(ctx, nil, scenarioID)
	if err != nil {
		return nil, err
	}

	boundary := repos.BoundaryProject
	if project.IsRegional {
		boundary = repos.BoundaryProjectUnclipped
	}

	// The two branches never see each other's rows, so they can load in
	// parallel on separate pooled connections.
	var publicRows, scenarioRows []*repos.UrbanObjectRow
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		publicRows, err = s.overlayRepo.PublicRows(groupCtx, nil, project.ProjectID, boundary, shadowed, filters...)
		return err
	})
	group.Go(func() error {
		var err error
		scenarioRows, err = s.overlayRepo.ScenarioRows(groupCtx, nil, scenario.ScenarioID, filters...)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return MergeUrbanObjectRows(publicRows, scenarioRows, &scenario.ScenarioID), nil
}

func (s *overlayService) ContextObjects(ctx context.Context, scenarioID int64, filters ...queryfilter.Filter) ([]*types.UrbanObjectView, error) {
	scenario, project, err := s.scope(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	// A regional project's boundary is the whole region; a ring around
	// it is meaningless, so there is no context to serve.
	if project.IsRegional {
		return nil, apierr.InvariantViolation("context is not defined for a regional scenario")
	}

	var ringRows, parentRows []*repos.UrbanObjectRow
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		ringRows, err = s.overlayRepo.PublicRows(groupCtx, nil, project.ProjectID, repos.BoundaryContext, nil, filters...)
		return err
	})
	if scenario.ParentID != nil {
		parentID := *scenario.ParentID
		group.Go(func() error {
			var err error
			parentRows, err = s.overlayRepo.ScenarioRowsInContext(groupCtx, nil, parentID, project.ProjectID, filters...)
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	views := make([]*types.UrbanObjectView, 0, len(ringRows)+len(parentRows))
	for _, row := range ringRows {
		views = append(views, RowToUrbanObjectView(row, types.Provenance{IsLocked: true}, nil))
	}
	for _, row := range parentRows {
		views = append(views, RowToUrbanObjectView(row, types.Provenance{IsScenarioObject: true, IsLocked: true}, scenario.ParentID))
	}
	return views, nil
}

func (s *overlayService) Buffers(ctx context.Context, scenarioID int64) ([]*types.BufferView, error) {
	scenario, project, err := s.scope(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	shadowed, err := s.overlayRepo.ShadowedPublicIDs(ctx, nil, scenarioID)
	if err != nil {
		return nil, err
	}

	var publicRows, scenarioRows []*repos.BufferRow
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		publicRows, err = s.overlayRepo.PublicBufferRows(groupCtx, nil, project.ProjectID, shadowed)
		return err
	})
	group.Go(func() error {
		var err error
		scenarioRows, err = s.overlayRepo.ScenarioBufferRows(groupCtx, nil, scenario.ScenarioID)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	views := make([]*types.BufferView, 0, len(publicRows)+len(scenarioRows))
	for _, row := range publicRows {
		views = append(views, bufferRowToView(row, types.Provenance{}))
	}
	for _, row := range scenarioRows {
		views = append(views, bufferRowToView(row, types.Provenance{IsScenarioObject: true}))
	}
	return views, nil
}

func (s *overlayService) FunctionalZones(ctx context.Context, scenarioID int64, filters ...queryfilter.Filter) ([]*types.FunctionalZoneView, error) {
	scenario, _, err := s.scope(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	return s.functionalZoneRepo.ListScenario(ctx, nil, scenario.ScenarioID, filters...)
}

// MergeUrbanObjectRows stamps provenance on both branches and returns
// the public branch followed by the scenario branch. Shadowed public
// rows must already be excluded from the public input.
func MergeUrbanObjectRows(publicRows, scenarioRows []*repos.UrbanObjectRow, scenarioID *int64) []*types.UrbanObjectView {
	views := make([]*types.UrbanObjectView, 0, len(publicRows)+len(scenarioRows))
	for _, row := range publicRows {
		views = append(views, RowToUrbanObjectView(row, types.Provenance{}, nil))
	}
	for _, row := range scenarioRows {
		views = append(views, RowToUrbanObjectView(row, types.Provenance{IsScenarioObject: true}, scenarioID))
	}
	return views
}

// RowToUrbanObjectView folds a flat merged-view row into the nested
// response shape. The service block stays nil for plain physical
// objects.
func RowToUrbanObjectView(row *repos.UrbanObjectRow, prov types.Provenance, scenarioID *int64) *types.UrbanObjectView {
	view := &types.UrbanObjectView{
		UrbanObjectID: row.UrbanObjectID,
		ScenarioID:    scenarioID,
		PhysicalObject: types.PhysicalObjectView{
			PhysicalObjectID:           row.PhysicalObjectID,
			PhysicalObjectTypeID:       row.PhysicalObjectTypeID,
			PhysicalObjectTypeName:     row.PhysicalObjectTypeName,
			PhysicalObjectFunctionID:   row.PhysicalObjectFunctionID,
			PhysicalObjectFunctionName: row.PhysicalObjectFunctionName,
			Name:                       row.PhysicalObjectName,
			Properties:                 row.PhysicalObjectProperties,
			CreatedAt:                  row.CreatedAt,
			UpdatedAt:                  row.UpdatedAt,
			Provenance:                 prov,
		},
		ObjectGeometry: types.GeometryView{
			ObjectGeometryID: row.ObjectGeometryID,
			TerritoryID:      row.TerritoryID,
			TerritoryName:    row.TerritoryName,
			Geometry:         row.Geometry,
			CentrePoint:      row.CentrePoint,
			Address:          row.Address,
			OsmID:            row.OsmID,
			CreatedAt:        row.CreatedAt,
			UpdatedAt:        row.UpdatedAt,
			Provenance:       prov,
		},
		Provenance: prov,
	}
	if row.ServiceID != nil {
		view.Service = &types.ServiceView{
			ServiceID:         *row.ServiceID,
			ServiceTypeID:     derefInt64(row.ServiceTypeID),
			ServiceTypeName:   derefString(row.ServiceTypeName),
			UrbanFunctionID:   row.UrbanFunctionID,
			UrbanFunctionName: row.UrbanFunctionName,
			Name:              row.ServiceName,
			Capacity:          row.Capacity,
			IsCapacityReal:    row.IsCapacityReal,
			Properties:        row.ServiceProperties,
			CreatedAt:         row.CreatedAt,
			UpdatedAt:         row.UpdatedAt,
			Provenance:        prov,
		}
	}
	return view
}

func bufferRowToView(row *repos.BufferRow, prov types.Provenance) *types.BufferView {
	return &types.BufferView{
		BufferTypeID:   row.BufferTypeID,
		BufferTypeName: row.BufferTypeName,
		UrbanObjectID:  row.UrbanObjectID,
		Geometry:       row.Geometry,
		IsCustom:       row.IsCustom,
		Provenance:     prov,
	}
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
