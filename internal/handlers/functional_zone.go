package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/services"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type FunctionalZoneHandler struct {
	log                   *logger.Logger
	functionalZoneService services.FunctionalZoneService
}

func NewFunctionalZoneHandler(log *logger.Logger, functionalZoneService services.FunctionalZoneService) *FunctionalZoneHandler {
	return &FunctionalZoneHandler{
		log:                   log.With("handler", "FunctionalZoneHandler"),
		functionalZoneService: functionalZoneService,
	}
}

func (h *FunctionalZoneHandler) Add(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var post types.FunctionalZonePost
	if err := c.ShouldBindJSON(&post); err != nil {
		RespondBadRequest(c, err)
		return
	}
	zone, err := h.functionalZoneService.Add(c.Request.Context(), scenarioID, &post)
	if err != nil {
		h.log.Error("Add functional zone failed", "error", err, "scenario_id", scenarioID)
		RespondError(c, err)
		return
	}
	RespondCreated(c, zone)
}

func (h *FunctionalZoneHandler) ReplaceAll(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var body struct {
		FunctionalZones []*types.FunctionalZonePost `json:"functional_zones" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondBadRequest(c, err)
		return
	}
	if err := h.functionalZoneService.ReplaceAll(c.Request.Context(), scenarioID, body.FunctionalZones); err != nil {
		h.log.Error("Replace functional zones failed", "error", err, "scenario_id", scenarioID)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}

func (h *FunctionalZoneHandler) Delete(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	functionalZoneID, err := pathID(c, "functional_zone_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	if err := h.functionalZoneService.Delete(c.Request.Context(), scenarioID, functionalZoneID); err != nil {
		h.log.Error("Delete functional zone failed", "error", err,
			"scenario_id", scenarioID, "functional_zone_id", functionalZoneID)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}
