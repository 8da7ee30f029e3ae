package app

import (
	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/clients/hextech"
	"github.com/urbanatlas/urban-backend/internal/clients/redis"
	"github.com/urbanatlas/urban-backend/internal/hierarchy"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/services"
)

type Services struct {
	Materializer   services.Materializer
	Project        services.ProjectService
	Scenario       services.ScenarioService
	Overlay        services.OverlayService
	UrbanObject    services.UrbanObjectService
	Buffer         services.BufferService
	Indicator      services.IndicatorService
	FunctionalZone services.FunctionalZoneService
	Territory      services.TerritoryService
	Boundary       services.BoundaryService
	Dict           services.DictService
}

func wireServices(db *gorm.DB, log *logger.Logger, r Repos, events redis.EventBus, hextechClient hextech.Client) Services {
	log.Info("Wiring services...")

	resolver := hierarchy.NewResolver(db, log)
	materializer := services.NewMaterializer(db, log, r.UrbanObject, r.PhysicalObject, r.ObjectGeometry, r.Service)

	return Services{
		Materializer: materializer,
		Project: services.NewProjectService(db, log,
			r.Project, r.Territory, r.Scenario, r.PhysicalObject, r.ObjectGeometry,
			r.Service, r.FunctionalZone, materializer, events, hextechClient),
		Scenario: services.NewScenarioService(db, log,
			r.Scenario, r.Project, r.UrbanObject, r.PhysicalObject, r.ObjectGeometry,
			r.Service, r.FunctionalZone, r.Indicator, events, hextechClient),
		Overlay: services.NewOverlayService(db, log,
			r.Overlay, r.Scenario, r.Project, r.FunctionalZone),
		UrbanObject: services.NewUrbanObjectService(db, log,
			r.Scenario, r.Project, r.UrbanObject, r.PhysicalObject, r.ObjectGeometry,
			r.Service, r.Territory, r.Buffer, materializer, events),
		Buffer: services.NewBufferService(db, log,
			r.Scenario, r.Project, r.UrbanObject, r.Buffer, r.Dict, materializer, events),
		Indicator: services.NewIndicatorService(db, log,
			r.Indicator, r.Scenario, r.Project, hextechClient),
		FunctionalZone: services.NewFunctionalZoneService(db, log,
			r.Scenario, r.Project, r.FunctionalZone, r.Dict),
		Territory: services.NewTerritoryService(db, log, r.Territory, resolver),
		Boundary:  services.NewBoundaryService(db, log, r.Project, r.Territory),
		Dict:      services.NewDictService(db, log, r.Dict),
	}
}
