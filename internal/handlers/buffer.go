package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/services"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type BufferHandler struct {
	log           *logger.Logger
	bufferService services.BufferService
}

func NewBufferHandler(log *logger.Logger, bufferService services.BufferService) *BufferHandler {
	return &BufferHandler{
		log:           log.With("handler", "BufferHandler"),
		bufferService: bufferService,
	}
}

func (h *BufferHandler) Put(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var put types.BufferPut
	if err := c.ShouldBindJSON(&put); err != nil {
		RespondBadRequest(c, err)
		return
	}
	if err := h.bufferService.Put(c.Request.Context(), scenarioID, &put); err != nil {
		h.log.Error("Put buffer failed", "error", err,
			"scenario_id", scenarioID, "urban_object_id", put.UrbanObjectID)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}

func (h *BufferHandler) Delete(c *gin.Context) {
	scenarioID, err := pathID(c, "scenario_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var del types.BufferDelete
	if err := c.ShouldBindJSON(&del); err != nil {
		RespondBadRequest(c, err)
		return
	}
	if err := h.bufferService.Delete(c.Request.Context(), scenarioID, &del); err != nil {
		h.log.Error("Delete buffer failed", "error", err,
			"scenario_id", scenarioID, "urban_object_id", del.UrbanObjectID)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}
