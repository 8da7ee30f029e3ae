package services

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/geometry"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/repos"
	"github.com/urbanatlas/urban-backend/internal/types"
)

// ProjectBoundary is the drawn boundary and its centre as the database
// renders them.
type ProjectBoundary struct {
	Geometry    json.RawMessage `json:"geometry"`
	CentrePoint json.RawMessage `json:"centre_point"`
}

// BoundaryService serves the spatial frame of a project: its drawn
// boundary and the territories around it that provide context.
type BoundaryService interface {
	Get(ctx context.Context, projectID int64) (*ProjectBoundary, error)
	Put(ctx context.Context, projectID int64, boundary geometry.GeoJSON) (*ProjectBoundary, error)
	ContextTerritories(ctx context.Context, projectID int64) ([]*types.Territory, error)
}

type boundaryService struct {
	db            *gorm.DB
	log           *logger.Logger
	projectRepo   repos.ProjectRepo
	territoryRepo repos.TerritoryRepo
}

func NewBoundaryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	territoryRepo repos.TerritoryRepo,
) BoundaryService {
	return &boundaryService{
		db:            db,
		log:           baseLog.With("service", "BoundaryService"),
		projectRepo:   projectRepo,
		territoryRepo: territoryRepo,
	}
}

func (s *boundaryService) Get(ctx context.Context, projectID int64) (*ProjectBoundary, error) {
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

	boundary, centre, err := s.projectRepo.BoundaryGeoJSON(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	return &ProjectBoundary{Geometry: boundary, CentrePoint: centre}, nil
}

// Put replaces the drawn boundary and recenters it. The working set is
// not re-derived: objects forked at creation time keep their clipped
// copies.
func (s *boundaryService) Put(ctx context.Context, projectID int64, boundary geometry.GeoJSON) (*ProjectBoundary, error) {
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

	err = s.projectRepo.UpdateTerritory(ctx, nil, projectID, map[string]any{
		"geometry":     boundary,
		"centre_point": boundary.Centroid(),
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, projectID)
}

func (s *boundaryService) ContextTerritories(ctx context.Context, projectID int64) ([]*types.Territory, error) {
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
	return s.territoryRepo.IntersectingProjectContext(ctx, nil, projectID, repos.ContextBufferMeters)
}
