package app

import (
	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/repos"
)

type Repos struct {
	Project        repos.ProjectRepo
	Scenario       repos.ScenarioRepo
	UrbanObject    repos.UrbanObjectRepo
	PhysicalObject repos.PhysicalObjectRepo
	ObjectGeometry repos.ObjectGeometryRepo
	Service        repos.ServiceRepo
	Overlay        repos.OverlayRepo
	Buffer         repos.BufferRepo
	FunctionalZone repos.FunctionalZoneRepo
	Indicator      repos.IndicatorRepo
	Territory      repos.TerritoryRepo
	Dict           repos.DictRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Project:        repos.NewProjectRepo(db, log),
		Scenario:       repos.NewScenarioRepo(db, log),
		UrbanObject:    repos.NewUrbanObjectRepo(db, log),
		PhysicalObject: repos.NewPhysicalObjectRepo(db, log),
		ObjectGeometry: repos.NewObjectGeometryRepo(db, log),
		Service:        repos.NewServiceRepo(db, log),
		Overlay:        repos.NewOverlayRepo(db, log),
		Buffer:         repos.NewBufferRepo(db, log),
		FunctionalZone: repos.NewFunctionalZoneRepo(db, log),
		Indicator:      repos.NewIndicatorRepo(db, log),
		Territory:      repos.NewTerritoryRepo(db, log),
		Dict:           repos.NewDictRepo(db, log),
	}
}
