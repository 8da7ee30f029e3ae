package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/queryfilter"
	"github.com/urbanatlas/urban-backend/internal/repos"
	"github.com/urbanatlas/urban-backend/internal/types"
)

// DictService reads the classification dictionaries. All of them are
// public, so there are no access checks here.
type DictService interface {
	PhysicalObjectTypes(ctx context.Context, functionID *int64, name string) ([]*types.PhysicalObjectType, error)
	ServiceTypes(ctx context.Context, urbanFunctionID *int64, name string) ([]*types.ServiceType, error)
	BufferTypes(ctx context.Context) ([]*types.BufferType, error)
	FunctionalZoneTypes(ctx context.Context) ([]*types.FunctionalZoneType, error)
	PhysicalObjectFunctions(ctx context.Context, parentID *int64, name string) ([]*types.PhysicalObjectFunction, error)
	UrbanFunctions(ctx context.Context, parentID *int64, name string) ([]*types.UrbanFunction, error)
}

type dictService struct {
	db       *gorm.DB
	log      *logger.Logger
	dictRepo repos.DictRepo
}

func NewDictService(db *gorm.DB, baseLog *logger.Logger, dictRepo repos.DictRepo) DictService {
	return &dictService{
		db:       db,
		log:      baseLog.With("service", "DictService"),
		dictRepo: dictRepo,
	}
}

func (s *dictService) PhysicalObjectTypes(ctx context.Context, functionID *int64, name string) ([]*types.PhysicalObjectType, error) {
	return s.dictRepo.ListPhysicalObjectTypes(ctx, nil,
		queryfilter.Recursive("physical_object_function_id", functionID, types.PhysicalObjectFunctionSpec),
		queryfilter.ILike("name", name),
	)
}

func (s *dictService) ServiceTypes(ctx context.Context, urbanFunctionID *int64, name string) ([]*types.ServiceType, error) {
	return s.dictRepo.ListServiceTypes(ctx, nil,
		queryfilter.Recursive("urban_function_id", urbanFunctionID, types.UrbanFunctionSpec),
		queryfilter.ILike("name", name),
	)
}

func (s *dictService) BufferTypes(ctx context.Context) ([]*types.BufferType, error) {
	return s.dictRepo.ListBufferTypes(ctx, nil)
}

func (s *dictService) FunctionalZoneTypes(ctx context.Context) ([]*types.FunctionalZoneType, error) {
	return s.dictRepo.ListFunctionalZoneTypes(ctx, nil)
}

func (s *dictService) PhysicalObjectFunctions(ctx context.Context, parentID *int64, name string) ([]*types.PhysicalObjectFunction, error) {
	return s.dictRepo.ListPhysicalObjectFunctions(ctx, nil,
		queryfilter.Eq("parent_id", parentID),
		queryfilter.ILike("name", name),
	)
}

func (s *dictService) UrbanFunctions(ctx context.Context, parentID *int64, name string) ([]*types.UrbanFunction, error) {
	return s.dictRepo.ListUrbanFunctions(ctx, nil,
		queryfilter.Eq("parent_id", parentID),
		queryfilter.ILike("name", name),
	)
}
