package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/services"
	"github.com/urbanatlas/urban-backend/internal/types"
)

// UrbanObjectHandler serves scenario-scoped edits. Every route carries
// is_scenario_object so ids from both branches of the merged view can be
// addressed.
type UrbanObjectHandler struct {
	log                *logger.Logger
	urbanObjectService services.UrbanObjectService
}

func NewUrbanObjectHandler(log *logger.Logger, urbanObjectService services.UrbanObjectService) *UrbanObjectHandler {
	return &UrbanObjectHandler{
		log:                log.With("handler", "UrbanObjectHandler"),
		urbanObjectService: urbanObjectService,
	}
}

func (h *UrbanObjectHandler) AddPhysicalObject(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var post types.PhysicalObjectWithGeometryPost
	if err := c.ShouldBindJSON(&post); err != nil {
		RespondBadRequest(c, err)
		return
	}
	link, err := h.urbanObjectService.AddPhysicalObject(c.Request.Context(), scenarioID, &post)
	if err != nil {
		h.log.Error("Add physical object failed", "error", err, "scenario_id", scenarioID)
		RespondError(c, err)
		return
	}
	RespondCreated(c, link)
}

func (h *UrbanObjectHandler) PatchPhysicalObject(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	physicalObjectID, err := pathID(c, "physical_object_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	isScenarioObject, err := queryBool(c, "is_scenario_object")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var patch types.PhysicalObjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondBadRequest(c, err)
		return
	}
	if err := h.urbanObjectService.PatchPhysicalObject(c.Request.Context(), scenarioID, physicalObjectID, isScenarioObject, &patch); err != nil {
		h.log.Error("Patch physical object failed", "error", err,
			"scenario_id", scenarioID, "physical_object_id", physicalObjectID)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}

func (h *UrbanObjectHandler) PutObjectGeometry(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	objectGeometryID, err := pathID(c, "object_geometry_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	isScenarioObject, err := queryBool(c, "is_scenario_object")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var put types.ObjectGeometryPut
	if err := c.ShouldBindJSON(&put); err != nil {
		RespondBadRequest(c, err)
		return
	}
	if err := h.urbanObjectService.PutObjectGeometry(c.Request.Context(), scenarioID, objectGeometryID, isScenarioObject, &put); err != nil {
		h.log.Error("Put object geometry failed", "error", err,
			"scenario_id", scenarioID, "object_geometry_id", objectGeometryID)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}

func (h *UrbanObjectHandler) AddService(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	urbanObjectID, err := pathID(c, "urban_object_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	isScenarioObject, err := queryBool(c, "is_scenario_object")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var post types.ServicePost
	if err := c.ShouldBindJSON(&post); err != nil {
		RespondBadRequest(c, err)
		return
	}
	if err := h.urbanObjectService.AddService(c.Request.Context(), scenarioID, urbanObjectID, isScenarioObject, &post); err != nil {
		h.log.Error("Add service failed", "error", err,
			"scenario_id", scenarioID, "urban_object_id", urbanObjectID)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}

func (h *UrbanObjectHandler) PatchService(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	serviceID, err := pathID(c, "service_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	isScenarioObject, err := queryBool(c, "is_scenario_object")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var patch types.ServicePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondBadRequest(c, err)
		return
	}
	if err := h.urbanObjectService.PatchService(c.Request.Context(), scenarioID, serviceID, isScenarioObject, &patch); err != nil {
		h.log.Error("Patch service failed", "error", err,
			"scenario_id", scenarioID, "service_id", serviceID)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}

func (h *UrbanObjectHandler) DeleteObject(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	urbanObjectID, err := pathID(c, "urban_object_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	isScenarioObject, err := queryBool(c, "is_scenario_object")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	if err := h.urbanObjectService.DeleteObject(c.Request.Context(), scenarioID, urbanObjectID, isScenarioObject); err != nil {
		h.log.Error("Delete urban object failed", "error", err,
			"scenario_id", scenarioID, "urban_object_id", urbanObjectID)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}
