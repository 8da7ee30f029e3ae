package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/queryfilter"
	"github.com/urbanatlas/urban-backend/internal/services"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type ScenarioHandler struct {
	log             *logger.Logger
	scenarioService services.ScenarioService
	overlayService  services.OverlayService
}

func NewScenarioHandler(log *logger.Logger, scenarioService services.ScenarioService, overlayService services.OverlayService) *ScenarioHandler {
	return &ScenarioHandler{
		log:             log.With("handler", "ScenarioHandler"),
		scenarioService: scenarioService,
		overlayService:  overlayService,
	}
}

func (h *ScenarioHandler) Get(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	scenario, err := h.scenarioService.Get(c.Request.Context(), scenarioID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, scenario)
}

func (h *ScenarioHandler) ListByProject(c *gin.Context) {
	projectID, err := pathID(c, "project_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	scenarios, err := h.scenarioService.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"scenarios": scenarios})
}

func (h *ScenarioHandler) Create(c *gin.Context) {
	var post types.ScenarioPost
	if err := c.ShouldBindJSON(&post); err != nil {
		RespondBadRequest(c, err)
		return
	}
	scenario, err := h.scenarioService.Create(c.Request.Context(), &post)
	if err != nil {
		h.log.Error("Create scenario failed", "error", err, "project_id", post.ProjectID)
		RespondError(c, err)
		return
	}
	RespondCreated(c, scenario)
}

func (h *ScenarioHandler) Copy(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondBadRequest(c, err)
		return
	}
	scenario, err := h.scenarioService.Copy(c.Request.Context(), scenarioID, body.Name)
	if err != nil {
		h.log.Error("Copy scenario failed", "error", err, "scenario_id", scenarioID)
		RespondError(c, err)
		return
	}
	RespondCreated(c, scenario)
}

func (h *ScenarioHandler) Patch(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var patch types.ScenarioPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondBadRequest(c, err)
		return
	}
	scenario, err := h.scenarioService.Patch(c.Request.Context(), scenarioID, &patch)
	if err != nil {
		h.log.Error("Patch scenario failed", "error", err, "scenario_id", scenarioID)
		RespondError(c, err)
		return
	}
	RespondOK(c, scenario)
}

func (h *ScenarioHandler) Delete(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	if err := h.scenarioService.Delete(c.Request.Context(), scenarioID); err != nil {
		h.log.Error("Delete scenario failed", "error", err, "scenario_id", scenarioID)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}

// overlayFilters collects the common merged-view query parameters.
func overlayFilters(c *gin.Context) ([]queryfilter.Filter, error) {
	physicalObjectTypeID, err := queryInt64Ptr(c, "physical_object_type_id")
	if err != nil {
		return nil, err
	}
	serviceTypeID, err := queryInt64Ptr(c, "service_type_id")
	if err != nil {
		return nil, err
	}
	physicalObjectFunctionID, err := queryInt64Ptr(c, "physical_object_function_id")
	if err != nil {
		return nil, err
	}
	urbanFunctionID, err := queryInt64Ptr(c, "urban_function_id")
	if err != nil {
		return nil, err
	}
	// Column aliases must resolve in both branches of the merged view.
	return []queryfilter.Filter{
		queryfilter.Eq("pot.physical_object_type_id", physicalObjectTypeID),
		queryfilter.Eq("st.service_type_id", serviceTypeID),
		queryfilter.Recursive("pof.physical_object_function_id", physicalObjectFunctionID, types.PhysicalObjectFunctionSpec),
		queryfilter.Recursive("uf.urban_function_id", urbanFunctionID, types.UrbanFunctionSpec),
	}, nil
}

func (h *ScenarioHandler) UrbanObjects(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	filters, err := overlayFilters(c)
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	views, err := h.overlayService.UrbanObjects(c.Request.Context(), scenarioID, filters...)
	if err != nil {
		h.log.Error("List scenario urban objects failed", "error", err, "scenario_id", scenarioID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"urban_objects": views})
}

func (h *ScenarioHandler) ContextObjects(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	filters, err := overlayFilters(c)
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	views, err := h.overlayService.ContextObjects(c.Request.Context(), scenarioID, filters...)
	if err != nil {
		h.log.Error("List scenario context objects failed", "error", err, "scenario_id", scenarioID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"urban_objects": views})
}

func (h *ScenarioHandler) Buffers(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	views, err := h.overlayService.Buffers(c.Request.Context(), scenarioID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"buffers": views})
}

func (h *ScenarioHandler) FunctionalZones(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	functionalZoneTypeID, err := queryInt64Ptr(c, "functional_zone_type_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	zones, err := h.overlayService.FunctionalZones(c.Request.Context(), scenarioID,
		queryfilter.Eq("sfz.functional_zone_type_id", functionalZoneTypeID))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"functional_zones": zones})
}
