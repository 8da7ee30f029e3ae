package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/queryfilter"
	"github.com/urbanatlas/urban-backend/internal/types"
)

// DictRepo serves the flat classification dictionaries. The tree-shaped
// ones go through the hierarchy resolver instead.
type DictRepo interface {
	GetPhysicalObjectType(ctx context.Context, tx *gorm.DB, id int64) (*types.PhysicalObjectType, error)
	ListPhysicalObjectTypes(ctx context.Context, tx *gorm.DB, filters ...queryfilter.Filter) ([]*types.PhysicalObjectType, error)
	GetServiceType(ctx context.Context, tx *gorm.DB, id int64) (*types.ServiceType, error)
	ListServiceTypes(ctx context.Context, tx *gorm.DB, filters ...queryfilter.Filter) ([]*types.ServiceType, error)
	GetBufferType(ctx context.Context, tx *gorm.DB, id int64) (*types.BufferType, error)
	ListBufferTypes(ctx context.Context, tx *gorm.DB) ([]*types.BufferType, error)
	GetFunctionalZoneType(ctx context.Context, tx *gorm.DB, id int64) (*types.FunctionalZoneType, error)
	ListFunctionalZoneTypes(ctx context.Context, tx *gorm.DB) ([]*types.FunctionalZoneType, error)
	ListPhysicalObjectFunctions(ctx context.Context, tx *gorm.DB, filters ...queryfilter.Filter) ([]*types.PhysicalObjectFunction, error)
	ListUrbanFunctions(ctx context.Context, tx *gorm.DB, filters ...queryfilter.Filter) ([]*types.UrbanFunction, error)
}

type dictRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDictRepo(db *gorm.DB, baseLog *logger.Logger) DictRepo {
	repoLog := baseLog.With("repo", "DictRepo")
	return &dictRepo{db: db, log: repoLog}
}

func (dr *dictRepo) GetPhysicalObjectType(ctx context.Context, tx *gorm.DB, id int64) (*types.PhysicalObjectType, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var result types.PhysicalObjectType
	if err := transaction.WithContext(ctx).
		Where("physical_object_type_id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("physical object type", id)
		}
		return nil, err
	}
	return &result, nil
}

func (dr *dictRepo) ListPhysicalObjectTypes(ctx context.Context, tx *gorm.DB, filters ...queryfilter.Filter) ([]*types.PhysicalObjectType, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.PhysicalObjectType
	query := transaction.WithContext(ctx).Model(&types.PhysicalObjectType{})
	query = queryfilter.Apply(query, filters...)
	if err := query.Order("physical_object_type_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (dr *dictRepo) GetServiceType(ctx context.Context, tx *gorm.DB, id int64) (*types.ServiceType, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var result types.ServiceType
	if err := transaction.WithContext(ctx).
		Where("service_type_id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("service type", id)
		}
		return nil, err
	}
	return &result, nil
}

func (dr *dictRepo) ListServiceTypes(ctx context.Context, tx *gorm.DB, filters ...queryfilter.Filter) ([]*types.ServiceType, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.ServiceType
	query := transaction.WithContext(ctx).Model(&types.ServiceType{})
	query = queryfilter.Apply(query, filters...)
	if err := query.Order("service_type_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (dr *dictRepo) GetBufferType(ctx context.Context, tx *gorm.DB, id int64) (*types.BufferType, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var result types.BufferType
	if err := transaction.WithContext(ctx).
		Where("buffer_type_id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("buffer type", id)
		}
		return nil, err
	}
	return &result, nil
}

func (dr *dictRepo) ListBufferTypes(ctx context.Context, tx *gorm.DB) ([]*types.BufferType, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.BufferType
	if err := transaction.WithContext(ctx).
		Order("buffer_type_id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (dr *dictRepo) GetFunctionalZoneType(ctx context.Context, tx *gorm.DB, id int64) (*types.FunctionalZoneType, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var result types.FunctionalZoneType
	if err := transaction.WithContext(ctx).
		Where("functional_zone_type_id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("functional zone type", id)
		}
		return nil, err
	}
	return &result, nil
}

func (dr *dictRepo) ListFunctionalZoneTypes(ctx context.Context, tx *gorm.DB) ([]*types.FunctionalZoneType, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.FunctionalZoneType
	if err := transaction.WithContext(ctx).
		Order("functional_zone_type_id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (dr *dictRepo) ListPhysicalObjectFunctions(ctx context.Context, tx *gorm.DB, filters ...queryfilter.Filter) ([]*types.PhysicalObjectFunction, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.PhysicalObjectFunction
	query := transaction.WithContext(ctx).Model(&types.PhysicalObjectFunction{})
	query = queryfilter.Apply(query, filters...)
	if err := query.Order("physical_object_function_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (dr *dictRepo) ListUrbanFunctions(ctx context.Context, tx *gorm.DB, filters ...queryfilter.Filter) ([]*types.UrbanFunction, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.UrbanFunction
	query := transaction.WithContext(ctx).Model(&types.UrbanFunction{})
	query = queryfilter.Apply(query, filters...)
	if err := query.Order("urban_function_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
