package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type BufferRepo interface {
	Put(ctx context.Context, tx *gorm.DB, buffer *types.Buffer) (*types.Buffer, error)
	PutScenario(ctx context.Context, tx *gorm.DB, buffer *types.ScenarioBuffer) (*types.ScenarioBuffer, error)
	Delete(ctx context.Context, tx *gorm.DB, bufferTypeID, urbanObjectID int64) error
	DeleteScenario(ctx context.Context, tx *gorm.DB, bufferTypeID, urbanObjectID int64) error

	// PutDefault upserts a buffer built in the database from the object
	// geometry and the default radius for its type pair. The geography
	// cast keeps the radius in meters.
	PutDefault(ctx context.Context, tx *gorm.DB, bufferTypeID, urbanObjectID int64) error
	PutScenarioDefault(ctx context.Context, tx *gorm.DB, bufferTypeID, urbanObjectID int64) error

	// RebuildScenarioDefaults regenerates every non-custom buffer whose
	// link row points at the given scenario geometry. Custom buffers are
	// left alone.
	RebuildScenarioDefaults(ctx context.Context, tx *gorm.DB, objectGeometryID int64) error

	// RebuildScenarioDefaultsByPhysicalObject does the same keyed on the
	// scenario physical object, for when a type change shifts the
	// default radius.
	RebuildScenarioDefaultsByPhysicalObject(ctx context.Context, tx *gorm.DB, physicalObjectID int64) error

	DefaultRadius(ctx context.Context, tx *gorm.DB, bufferTypeID, physicalObjectTypeID int64) (float64, error)
}

type bufferRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBufferRepo(db *gorm.DB, baseLog *logger.Logger) BufferRepo {
	repoLog := baseLog.With("repo", "BufferRepo")
	return &bufferRepo{db: db, log: repoLog}
}

func (br *bufferRepo) Put(ctx context.Context, tx *gorm.DB, buffer *types.Buffer) (*types.Buffer, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	err := transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "buffer_type_id"}, {Name: "urban_object_id"}},
		UpdateAll: true,
	}).Create(buffer).Error
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

func (br *bufferRepo) PutScenario(ctx context.Context, tx *gorm.DB, buffer *types.ScenarioBuffer) (*types.ScenarioBuffer, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	err := transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "buffer_type_id"}, {Name: "urban_object_id"}},
		UpdateAll: true,
	}).Create(buffer).Error
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

func (br *bufferRepo) Delete(ctx context.Context, tx *gorm.DB, bufferTypeID, urbanObjectID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	result := transaction.WithContext(ctx).
		Where("buffer_type_id = ? AND urban_object_id = ?", bufferTypeID, urbanObjectID).
		Delete(&types.Buffer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFoundByParams("buffer", "buffer_type_id", bufferTypeID, "urban_object_id", urbanObjectID)
	}
	return nil
}

func (br *bufferRepo) DeleteScenario(ctx context.Context, tx *gorm.DB, bufferTypeID, urbanObjectID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	result := transaction.WithContext(ctx).
		Where("buffer_type_id = ? AND urban_object_id = ?", bufferTypeID, urbanObjectID).
		Delete(&types.ScenarioBuffer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFoundByParams("scenario buffer", "buffer_type_id", bufferTypeID, "urban_object_id", urbanObjectID)
	}
	return nil
}

func (br *bufferRepo) PutDefault(ctx context.Context, tx *gorm.DB, bufferTypeID, urbanObjectID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	result := transaction.WithContext(ctx).Exec(`
		INSERT INTO buffers (buffer_type_id, urban_object_id, geometry, is_custom)
		SELECT ?, uo.urban_object_id,
		       ST_Buffer(og.geometry::geography, dbv.buffer_value)::geometry,
		       false
		FROM urban_objects uo
		JOIN object_geometries og ON og.object_geometry_id = uo.object_geometry_id
		JOIN physical_objects po ON po.physical_object_id = uo.physical_object_id
		JOIN default_buffer_values_dict dbv
		  ON dbv.buffer_type_id = ? AND dbv.physical_object_type_id = po.physical_object_type_id
		WHERE uo.urban_object_id = ?
		ON CONFLICT (buffer_type_id, urban_object_id)
		DO UPDATE SET geometry = EXCLUDED.geometry, is_custom = false
	`, bufferTypeID, bufferTypeID, urbanObjectID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFoundByParams("default buffer value", "buffer_type_id", bufferTypeID, "urban_object_id", urbanObjectID)
	}
	return nil
}

func (br *bufferRepo) PutScenarioDefault(ctx context.Context, tx *gorm.DB, bufferTypeID, urbanObjectID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	result := transaction.WithContext(ctx).Exec(`
		INSERT INTO scenario_buffers (buffer_type_id, urban_object_id, geometry, is_custom)
		SELECT ?, suo.urban_object_id,
		       ST_Buffer(COALESCE(sog.geometry, og.geometry)::geography, dbv.buffer_value)::geometry,
		       false
		FROM scenario_urban_objects suo
		LEFT JOIN scenario_object_geometries sog ON sog.object_geometry_id = suo.object_geometry_id
		LEFT JOIN object_geometries og ON og.object_geometry_id = suo.public_object_geometry_id
		LEFT JOIN scenario_physical_objects spo ON spo.physical_object_id = suo.physical_object_id
		LEFT JOIN physical_objects po ON po.physical_object_id = suo.public_physical_object_id
		JOIN default_buffer_values_dict dbv
		  ON dbv.buffer_type_id = ?
		 AND dbv.physical_object_type_id = COALESCE(spo.physical_object_type_id, po.physical_object_type_id)
		WHERE suo.urban_object_id = ?
		ON CONFLICT (buffer_type_id, urban_object_id)
		DO UPDATE SET geometry = EXCLUDED.geometry, is_custom = false
	`, bufferTypeID, bufferTypeID, urbanObjectID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierr.NotFoundByParams("default buffer value", "buffer_type_id", bufferTypeID, "urban_object_id", urbanObjectID)
	}
	return nil
}

func (br *bufferRepo) RebuildScenarioDefaults(ctx context.Context, tx *gorm.DB, objectGeometryID int64) error {
	return br.rebuildScenarioDefaults(ctx, tx, "suo.object_geometry_id", objectGeometryID)
}

func (br *bufferRepo) RebuildScenarioDefaultsByPhysicalObject(ctx context.Context, tx *gorm.DB, physicalObjectID int64) error {
	return br.rebuildScenarioDefaults(ctx, tx, "suo.physical_object_id", physicalObjectID)
}

func (br *bufferRepo) rebuildScenarioDefaults(ctx context.Context, tx *gorm.DB, linkColumn string, id int64) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	return transaction.WithContext(ctx).Exec(`
		UPDATE scenario_buffers sb
		SET geometry = ST_Buffer(sog.geometry::geography, dbv.buffer_value)::geometry
		FROM scenario_urban_objects suo
		JOIN scenario_object_geometries sog ON sog.object_geometry_id = suo.object_geometry_id
		LEFT JOIN scenario_physical_objects spo ON spo.physical_object_id = suo.physical_object_id
		LEFT JOIN physical_objects po ON po.physical_object_id = suo.public_physical_object_id
		JOIN default_buffer_values_dict dbv
		  ON dbv.physical_object_type_id = COALESCE(spo.physical_object_type_id, po.physical_object_type_id)
		WHERE sb.urban_object_id = suo.urban_object_id
		  AND sb.buffer_type_id = dbv.buffer_type_id
		  AND `+linkColumn+` = ?
		  AND sb.is_custom = false
	`, id).Error
}

func (br *bufferRepo) DefaultRadius(ctx context.Context, tx *gorm.DB, bufferTypeID, physicalObjectTypeID int64) (float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var row types.DefaultBufferValue
	if err := transaction.WithContext(ctx).
		Where("buffer_type_id = ? AND physical_object_type_id = ?", bufferTypeID, physicalObjectTypeID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apierr.NotFoundByParams("default buffer value", "buffer_type_id", bufferTypeID, "physical_object_type_id", physicalObjectTypeID)
		}
		return 0, err
	}
	return row.BufferValue, nil
}
