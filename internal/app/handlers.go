package app

import (
	"github.com/urbanatlas/urban-backend/internal/handlers"
	"github.com/urbanatlas/urban-backend/internal/logger"
)

type Handlers struct {
	Project        *handlers.ProjectHandler
	Scenario       *handlers.ScenarioHandler
	UrbanObject    *handlers.UrbanObjectHandler
	Buffer         *handlers.BufferHandler
	Indicator      *handlers.IndicatorHandler
	FunctionalZone *handlers.FunctionalZoneHandler
	Territory      *handlers.TerritoryHandler
	Dict           *handlers.DictHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Project:        handlers.NewProjectHandler(log, s.Project, s.Boundary),
		Scenario:       handlers.NewScenarioHandler(log, s.Scenario, s.Overlay),
		UrbanObject:    handlers.NewUrbanObjectHandler(log, s.UrbanObject),
		Buffer:         handlers.NewBufferHandler(log, s.Buffer),
		Indicator:      handlers.NewIndicatorHandler(log, s.Indicator),
		FunctionalZone: handlers.NewFunctionalZoneHandler(log, s.FunctionalZone),
		Territory:      handlers.NewTerritoryHandler(log, s.Territory),
		Dict:           handlers.NewDictHandler(log, s.Dict),
	}
}
