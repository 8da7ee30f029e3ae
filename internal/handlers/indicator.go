package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/services"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type IndicatorHandler struct {
	log              *logger.Logger
	indicatorService services.IndicatorService
}

func NewIndicatorHandler(log *logger.Logger, indicatorService services.IndicatorService) *IndicatorHandler {
	return &IndicatorHandler{
		log:              log.With("handler", "IndicatorHandler"),
		indicatorService: indicatorService,
	}
}

func (h *IndicatorHandler) PutValue(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var put types.IndicatorValuePut
	if err := c.ShouldBindJSON(&put); err != nil {
		RespondBadRequest(c, err)
		return
	}
	value, err := h.indicatorService.PutValue(c.Request.Context(), scenarioID, &put)
	if err != nil {
		h.log.Error("Put indicator value failed", "error", err,
			"scenario_id", scenarioID, "indicator_id", put.IndicatorID)
		RespondError(c, err)
		return
	}
	RespondOK(c, value)
}

func (h *IndicatorHandler) UpdateAllValues(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	if err := h.indicatorService.UpdateAllValues(c.Request.Context(), scenarioID); err != nil {
		h.log.Error("Update all indicator values failed", "error", err, "scenario_id", scenarioID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "ok"})
}

func (h *IndicatorHandler) ListValues(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	indicatorIDs, err := queryInt64List(c, "indicator_ids")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	values, err := h.indicatorService.ListValues(c.Request.Context(), scenarioID, indicatorIDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"indicator_values": values})
}

func (h *IndicatorHandler) DeleteValue(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	indicatorValueID, err := pathID(c, "indicator_value_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	if err := h.indicatorService.DeleteValue(c.Request.Context(), scenarioID, indicatorValueID); err != nil {
		h.log.Error("Delete indicator value failed", "error", err,
			"scenario_id", scenarioID, "indicator_value_id", indicatorValueID)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}

func (h *IndicatorHandler) Tree(c *gin.Context) {
	parentID, err := queryInt64Ptr(c, "parent_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	indicators, err := h.indicatorService.Tree(c.Request.Context(), parentID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"indicators": indicators})
}
