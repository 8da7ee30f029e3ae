package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/services"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type TerritoryHandler struct {
	log              *logger.Logger
	territoryService services.TerritoryService
}

func NewTerritoryHandler(log *logger.Logger, territoryService services.TerritoryService) *TerritoryHandler {
	return &TerritoryHandler{
		log:              log.With("handler", "TerritoryHandler"),
		territoryService: territoryService,
	}
}

func (h *TerritoryHandler) Get(c *gin.Context) {
	territoryID, err := pathID(c, "territory_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	territory, err := h.territoryService.Get(c.Request.Context(), territoryID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, territory)
}

func (h *TerritoryHandler) Tree(c *gin.Context) {
	rootID, err := queryInt64Ptr(c, "root_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	allLevels, err := queryBool(c, "all_levels")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	citiesOnly, err := queryBool(c, "cities_only")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	tree, err := h.territoryService.Tree(c.Request.Context(), rootID, allLevels, citiesOnly)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"territories": tree})
}

func (h *TerritoryHandler) Create(c *gin.Context) {
	var post types.TerritoryPost
	if err := c.ShouldBindJSON(&post); err != nil {
		RespondBadRequest(c, err)
		return
	}
	territory, err := h.territoryService.Create(c.Request.Context(), &post)
	if err != nil {
		h.log.Error("Create territory failed", "error", err)
		RespondError(c, err)
		return
	}
	RespondCreated(c, territory)
}

func (h *TerritoryHandler) Patch(c *gin.Context) {
	territoryID, err := pathID(c, "territory_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var patch types.TerritoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondBadRequest(c, err)
		return
	}
	territory, err := h.territoryService.Patch(c.Request.Context(), territoryID, &patch)
	if err != nil {
		h.log.Error("Patch territory failed", "error", err, "territory_id", territoryID)
		RespondError(c, err)
		return
	}
	RespondOK(c, territory)
}

func (h *TerritoryHandler) Delete(c *gin.Context) {
	territoryID, err := pathID(c, "territory_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	if err := h.territoryService.Delete(c.Request.Context(), territoryID); err != nil {
		h.log.Error("Delete territory failed", "error", err, "territory_id", territoryID)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}
