package app

import (
	"github.com/gin-gonic/gin"

	"github.com/urbanatlas/urban-backend/internal/middleware"
	"github.com/urbanatlas/urban-backend/internal/server"
)

func wireRouter(cfg Config, h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AllowOrigins:          cfg.AllowOrigins,
		AuthMiddleware:        auth,
		ProjectHandler:        h.Project,
		ScenarioHandler:       h.Scenario,
		UrbanObjectHandler:    h.UrbanObject,
		BufferHandler:         h.Buffer,
		IndicatorHandler:      h.Indicator,
		FunctionalZoneHandler: h.FunctionalZone,
		TerritoryHandler:      h.Territory,
		DictHandler:           h.Dict,
	})
}
