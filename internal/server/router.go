package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/urbanatlas/urban-backend/internal/handlers"
	"github.com/urbanatlas/urban-backend/internal/middleware"
)

type RouterConfig struct {
	AllowOrigins          []string
	AuthMiddleware        *middleware.AuthMiddleware
	ProjectHandler        *handlers.ProjectHandler
	ScenarioHandler       *handlers.ScenarioHandler
	UrbanObjectHandler    *handlers.UrbanObjectHandler
	BufferHandler         *handlers.BufferHandler
	IndicatorHandler      *handlers.IndicatorHandler
	FunctionalZoneHandler *handlers.FunctionalZoneHandler
	TerritoryHandler      *handlers.TerritoryHandler
	DictHandler           *handlers.DictHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("urban-backend"))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api/v1")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Dictionaries
	api.GET("/physical_object_types", cfg.DictHandler.PhysicalObjectTypes)
	api.GET("/service_types", cfg.DictHandler.ServiceTypes)
	api.GET("/buffer_types", cfg.DictHandler.BufferTypes)
	api.GET("/functional_zone_types", cfg.DictHandler.FunctionalZoneTypes)
	api.GET("/physical_object_functions", cfg.DictHandler.PhysicalObjectFunctions)
	api.GET("/urban_functions", cfg.DictHandler.UrbanFunctions)
	api.GET("/indicators", cfg.IndicatorHandler.Tree)

	// Territories
	api.GET("/territories", cfg.TerritoryHandler.Tree)
	api.GET("/territories/:territory_id", cfg.TerritoryHandler.Get)
	api.POST("/territories", cfg.TerritoryHandler.Create)
	api.PATCH("/territories/:territory_id", cfg.TerritoryHandler.Patch)
	api.DELETE("/territories/:territory_id", cfg.TerritoryHandler.Delete)

	// Projects
	api.POST("/projects", cfg.ProjectHandler.Create)
	api.GET("/projects", cfg.ProjectHandler.List)
	api.GET("/projects/:project_id", cfg.ProjectHandler.Get)
	api.PATCH("/projects/:project_id", cfg.ProjectHandler.Patch)
	api.DELETE("/projects/:project_id", cfg.ProjectHandler.Delete)
	api.GET("/projects/:project_id/territory", cfg.ProjectHandler.GetBoundary)
	api.PUT("/projects/:project_id/territory", cfg.ProjectHandler.PutBoundary)
	api.GET("/projects/:project_id/context_territories", cfg.ProjectHandler.ContextTerritories)
	api.GET("/projects/:project_id/scenarios", cfg.ScenarioHandler.ListByProject)

	// Scenarios
	api.POST("/scenarios", cfg.ScenarioHandler.Create)
	api.GET("/scenarios/:scenario_id", cfg.ScenarioHandler.Get)
	api.POST("/scenarios/:scenario_id/copy", cfg.ScenarioHandler.Copy)
	api.PATCH("/scenarios/:scenario_id", cfg.ScenarioHandler.Patch)
	api.DELETE("/scenarios/:scenario_id", cfg.ScenarioHandler.Delete)

	// Merged scenario views
	api.GET("/scenarios/:scenario_id/urban_objects", cfg.ScenarioHandler.UrbanObjects)
	api.GET("/scenarios/:scenario_id/context_objects", cfg.ScenarioHandler.ContextObjects)
	api.GET("/scenarios/:scenario_id/buffers", cfg.ScenarioHandler.Buffers)
	api.GET("/scenarios/:scenario_id/functional_zones", cfg.ScenarioHandler.FunctionalZones)

	// Scenario-scoped edits
	api.POST("/scenarios/:scenario_id/physical_objects", cfg.UrbanObjectHandler.AddPhysicalObject)
	api.PATCH("/scenarios/:scenario_id/physical_objects/:physical_object_id", cfg.UrbanObjectHandler.PatchPhysicalObject)
	api.PUT("/scenarios/:scenario_id/object_geometries/:object_geometry_id", cfg.UrbanObjectHandler.PutObjectGeometry)
	api.POST("/scenarios/:scenario_id/urban_objects/:urban_object_id/services", cfg.UrbanObjectHandler.AddService)
	api.PATCH("/scenarios/:scenario_id/services/:service_id", cfg.UrbanObjectHandler.PatchService)
	api.DELETE("/scenarios/:scenario_id/urban_objects/:urban_object_id", cfg.UrbanObjectHandler.DeleteObject)

	// Buffers
	api.PUT("/scenarios/:scenario_id/buffers", cfg.BufferHandler.Put)
	api.DELETE("/scenarios/:scenario_id/buffers", cfg.BufferHandler.Delete)

	// Indicators
	api.PUT("/scenarios/:scenario_id/indicator_values", cfg.IndicatorHandler.PutValue)
	api.PUT("/scenarios/:scenario_id/indicator_values/update_all", cfg.IndicatorHandler.UpdateAllValues)
	api.GET("/scenarios/:scenario_id/indicator_values", cfg.IndicatorHandler.ListValues)
	api.DELETE("/scenarios/:scenario_id/indicator_values/:indicator_value_id", cfg.IndicatorHandler.DeleteValue)

	// Functional zones
	api.POST("/scenarios/:scenario_id/functional_zones", cfg.FunctionalZoneHandler.Add)
	api.PUT("/scenarios/:scenario_id/functional_zones", cfg.FunctionalZoneHandler.ReplaceAll)
	api.DELETE("/scenarios/:scenario_id/functional_zones/:functional_zone_id", cfg.FunctionalZoneHandler.Delete)

	return router
}
