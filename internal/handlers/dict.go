package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/services"
)

type DictHandler struct {
	log         *logger.Logger
	dictService services.DictService
}

func NewDictHandler(log *logger.Logger, dictService services.DictService) *DictHandler {
	return &DictHandler{
		log:         log.With("handler", "DictHandler"),
		dictService: dictService,
	}
}

func (h *DictHandler) PhysicalObjectTypes(c *gin.Context) {
	functionID, err := queryInt64Ptr(c, "physical_object_function_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	items, err := h.dictService.PhysicalObjectTypes(c.Request.Context(), functionID, c.Query("name"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"physical_object_types": items})
}

func (h *DictHandler) ServiceTypes(c *gin.Context) {
	urbanFunctionID, err := queryInt64Ptr(c, "urban_function_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	items, err := h.dictService.ServiceTypes(c.Request.Context(), urbanFunctionID, c.Query("name"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"service_types": items})
}

func (h *DictHandler) BufferTypes(c *gin.Context) {
	items, err := h.dictService.BufferTypes(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"buffer_types": items})
}

func (h *DictHandler) FunctionalZoneTypes(c *gin.Context) {
	items, err := h.dictService.FunctionalZoneTypes(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"functional_zone_types": items})
}

func (h *DictHandler) PhysicalObjectFunctions(c *gin.Context) {
	parentID, err := queryInt64Ptr(c, "parent_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	items, err := h.dictService.PhysicalObjectFunctions(c.Request.Context(), parentID, c.Query("name"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"physical_object_functions": items})
}

func (h *DictHandler) UrbanFunctions(c *gin.Context) {
	parentID, err := queryInt64Ptr(c, "parent_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	items, err := h.dictService.UrbanFunctions(c.Request.Context(), parentID, c.Query("name"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"urban_functions": items})
}
