package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/apierr"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/repos"
	"github.com/urbanatlas/urban-backend/internal/types"
)

// Materializer forks public urban objects into a scenario before any
// scenario-side edit touches them. Public tables are never written.
type Materializer interface {
	// Fork clones all components of a public urban object into the
	// scenario tables and returns the editable link row. The public
	// object must not have been forked in this scenario before.
	Fork(ctx context.Context, tx *gorm.DB, scenarioID, publicUrbanObjectID int64) (*types.ScenarioUrbanObject, error)
	// Supersede hides a public urban object from the scenario without
	// cloning anything. Used when the scenario deletes the object.
	Supersede(ctx context.Context, tx *gorm.DB, scenarioID, publicUrbanObjectID int64) error
}

type materializer struct {
	db                 *gorm.DB
	log                *logger.Logger
	urbanObjectRepo    repos.UrbanObjectRepo
	physicalObjectRepo repos.PhysicalObjectRepo
	objectGeometryRepo repos.ObjectGeometryRepo
	serviceRepo        repos.ServiceRepo
}

func NewMaterializer(
	db *gorm.DB,
	baseLog *logger.Logger,
	urbanObjectRepo repos.UrbanObjectRepo,
	physicalObjectRepo repos.PhysicalObjectRepo,
	objectGeometryRepo repos.ObjectGeometryRepo,
	serviceRepo repos.ServiceRepo,
) Materializer {
	return &materializer{
		db:                 db,
		log:                baseLog.With("service", "Materializer"),
		urbanObjectRepo:    urbanObjectRepo,
		physicalObjectRepo: physicalObjectRepo,
		objectGeometryRepo: objectGeometryRepo,
		serviceRepo:        serviceRepo,
	}
}

func (m *materializer) Fork(ctx context.Context, tx *gorm.DB, scenarioID, publicUrbanObjectID int64) (*types.ScenarioUrbanObject, error) {
	public, err := m.urbanObjectRepo.GetByID(ctx, tx, publicUrbanObjectID)
	if err != nil {
		return nil, err
	}

	// The supersede marker goes in first: its unique key on
	// (scenario_id, public_urban_object_id) is the real guard against
	// two requests forking the same object concurrently. The check
	// above it only gives a friendlier error on the common path.
	if err := m.insertMarker(ctx, tx, scenarioID, publicUrbanObjectID); err != nil {
		return nil, err
	}

	physicalObjectID, err := m.physicalObjectRepo.Clone(ctx, tx, public.PhysicalObjectID)
	if err != nil {
		m.log.Error("Fork: physical object clone failed", "error", err, "urban_object_id", publicUrbanObjectID)
		return nil, err
	}
	objectGeometryID, err := m.objectGeometryRepo.Clone(ctx, tx, public.ObjectGeometryID)
	if err != nil {
		m.log.Error("Fork: geometry clone failed", "error", err, "urban_object_id", publicUrbanObjectID)
		return nil, err
	}
	var serviceID *int64
	if public.ServiceID != nil {
		id, err := m.serviceRepo.Clone(ctx, tx, *public.ServiceID)
		if err != nil {
			m.log.Error("Fork: service clone failed", "error", err, "urban_object_id", publicUrbanObjectID)
			return nil, err
		}
		serviceID = &id
	}

	editable := &types.ScenarioUrbanObject{
		ScenarioID:       scenarioID,
		PhysicalObjectID: &physicalObjectID,
		ObjectGeometryID: &objectGeometryID,
		ServiceID:        serviceID,
	}
	if _, err := m.urbanObjectRepo.CreateScenario(ctx, tx, editable); err != nil {
		return nil, err
	}

	m.log.Info("Fork: public urban object materialized",
		"scenario_id", scenarioID, "public_urban_object_id", publicUrbanObjectID,
		"urban_object_id", editable.UrbanObjectID)
	return editable, nil
}

func (m *materializer) Supersede(ctx context.Context, tx *gorm.DB, scenarioID, publicUrbanObjectID int64) error {
	if _, err := m.urbanObjectRepo.GetByID(ctx, tx, publicUrbanObjectID); err != nil {
		return err
	}
	return m.insertMarker(ctx, tx, scenarioID, publicUrbanObjectID)
}

func (m *materializer) insertMarker(ctx context.Context, tx *gorm.DB, scenarioID, publicUrbanObjectID int64) error {
	shadow, err := m.urbanObjectRepo.GetShadow(ctx, tx, scenarioID, publicUrbanObjectID)
	if err != nil {
		return err
	}
	if shadow != nil {
		return apierr.AlreadyEdited("urban object", scenarioID)
	}

	marker := &types.ScenarioUrbanObject{
		ScenarioID:          scenarioID,
		PublicUrbanObjectID: &publicUrbanObjectID,
	}
	_, err = m.urbanObjectRepo.CreateScenario(ctx, tx, marker)
	return err
}
