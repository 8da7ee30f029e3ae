package services

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/hierarchy"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/repos"
	"github.com/urbanatlas/urban-backend/internal/types"
)

// TerritoryService maintains the administrative division tree. Reads
// are open to any authenticated caller; mutations are dictionary
// maintenance and need superuser rights.
type TerritoryService interface {
	Get(ctx context.Context, territoryID int64) (*types.Territory, error)
	Tree(ctx context.Context, rootID *int64, allLevels, citiesOnly bool) ([]*hierarchy.TreeNode[*types.Territory], error)
	Create(ctx context.Context, post *types.TerritoryPost) (*types.Territory, error)
	Patch(ctx context.Context, territoryID int64, patch *types.TerritoryPatch) (*types.Territory, error)
	Delete(ctx context.Context, territoryID int64) error
}

type territoryService struct {
	db            *gorm.DB
	log           *logger.Logger
	territoryRepo repos.TerritoryRepo
	resolver      *hierarchy.Resolver
}

func NewTerritoryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	territoryRepo repos.TerritoryRepo,
	resolver *hierarchy.Resolver,
) TerritoryService {
	return &territoryService{
		db:            db,
		log:           baseLog.With("service", "TerritoryService"),
		territoryRepo: territoryRepo,
		resolver:      resolver,
	}
}

func (s *territoryService) Get(ctx context.Context, territoryID int64) (*types.Territory, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	return s.territoryRepo.GetByID(ctx, nil, territoryID)
}

// Tree returns the subtree under rootID assembled into nested nodes, in
// label order. With citiesOnly set, non-city rows are dropped after
// traversal; cities whose parent is also dropped surface as roots.
func (s *territoryService) Tree(ctx context.Context, rootID *int64, allLevels, citiesOnly bool) ([]*hierarchy.TreeNode[*types.Territory], error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}

	nodes, err := s.resolver.Subtree(ctx, nil, types.TerritorySpec, rootID, allLevels)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(nodes))
	for i, node := range nodes {
		ids[i] = node.ID
	}
	territories, err := s.territoryRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}

	// Reorder the loaded rows to the resolver's label order before
	// nesting them.
	byID := make(map[int64]*types.Territory, len(territories))
	for _, territory := range territories {
		byID[territory.TerritoryID] = territory
	}
	ordered := make([]*types.Territory, 0, len(nodes))
	for _, node := range nodes {
		territory, ok := byID[node.ID]
		if !ok {
			continue
		}
		if citiesOnly && !territory.IsCity {
			continue
		}
		ordered = append(ordered, territory)
	}

	return hierarchy.BuildTree(ordered,
		func(t *types.Territory) int64 { return t.TerritoryID },
		func(t *types.Territory) *int64 { return t.ParentID },
	), nil
}

func (s *territoryService) Create(ctx context.Context, post *types.TerritoryPost) (*types.Territory, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if !rd.IsSuperuser {
		return nil, apierr.AccessDenied("territory", "create")
	}

	var created *types.Territory
	err = s.db.Transaction(func(tx *gorm.DB) error {
		level, label, err := s.resolver.PrepareInsert(ctx, tx, types.TerritorySpec, post.ParentID)
		if err != nil {
			return err
		}
		centre := post.CentrePoint
		if centre.IsZero() {
			centre = post.Geometry.Centroid()
		}
		territory := &types.Territory{
			ParentID:    post.ParentID,
			Name:        post.Name,
			IsCity:      post.IsCity,
			Level:       level,
			ListLabel:   label,
			Geometry:    post.Geometry,
			CentrePoint: centre,
			Properties:  post.Properties,
		}
		if _, err := s.territoryRepo.Create(ctx, tx, territory); err != nil {
			return err
		}
		created = territory
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *territoryService) Patch(ctx context.Context, territoryID int64, patch *types.TerritoryPatch) (*types.Territory, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if !rd.IsSuperuser {
		return nil, apierr.AccessDenied("territory", territoryID)
	}
	current, err := s.territoryRepo.GetByID(ctx, nil, territoryID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{}
		if patch.Name != nil {
			updates["name"] = *patch.Name
		}
		if patch.IsCity != nil {
			updates["is_city"] = *patch.IsCity
		}
		if patch.Properties != nil {
			updates["properties"] = patch.Properties
		}
		if len(updates) > 0 {
			if err := s.territoryRepo.Update(ctx, tx, territoryID, updates); err != nil {
				return err
			}
		}
		if patch.ParentID != nil && (current.ParentID == nil || *current.ParentID != *patch.ParentID) {
			return s.resolver.Reparent(ctx, tx, types.TerritorySpec, territoryID, patch.ParentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.territoryRepo.GetByID(ctx, nil, territoryID)
}

func (s *territoryService) Delete(ctx context.Context, territoryID int64) error {
	rd, err := caller(ctx)
	if err != nil {
		return err
	}
	if !rd.IsSuperuser {
		return apierr.AccessDenied("territory", territoryID)
	}
	current, err := s.territoryRepo.GetByID(ctx, nil, territoryID)
	if err != nil {
		return err
	}

	// The parent_id constraint restricts this delete anyway; checking
	// here turns the database error into a readable one.
	hasChildren, err := s.territoryRepo.HasChildren(ctx, nil, territoryID)
	if err != nil {
		return err
	}
	if hasChildren {
		return apierr.New(http.StatusConflict, apierr.CodeInvariantViolation,
			errors.New("territory still has child territories"))
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.territoryRepo.Delete(ctx, tx, territoryID); err != nil {
			return err
		}
		return s.resolver.AfterDelete(ctx, tx, types.TerritorySpec, current.ParentID)
	})
}
