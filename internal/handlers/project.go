package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/services"
	"github.com/urbanatlas/urban-backend/internal/types"
)

type ProjectHandler struct {
	log             *logger.Logger
	projectService  services.ProjectService
	boundaryService services.BoundaryService
}

func NewProjectHandler(log *logger.Logger, projectService services.ProjectService, boundaryService services.BoundaryService) *ProjectHandler {
	return &ProjectHandler{
		log:             log.With("handler", "ProjectHandler"),
		projectService:  projectService,
		boundaryService: boundaryService,
	}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var post types.ProjectPost
	if err := c.ShouldBindJSON(&post); err != nil {
		RespondBadRequest(c, err)
		return
	}
	view, err := h.projectService.Create(c.Request.Context(), &post)
	if err != nil {
		h.log.Error("Create project failed", "error", err)
		RespondError(c, err)
		return
	}
	RespondCreated(c, view)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, err := pathID(c, "project_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	view, err := h.projectService.Get(c.Request.Context(), projectID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, view)
}

func (h *ProjectHandler) List(c *gin.Context) {
	territoryID, err := queryInt64Ptr(c, "territory_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	onlyOwn, err := queryBool(c, "only_own")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	projects, err := h.projectService.List(c.Request.Context(), territoryID, onlyOwn)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"projects": projects})
}

func (h *ProjectHandler) Patch(c *gin.Context) {
	projectID, err := pathID(c, "project_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var patch types.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondBadRequest(c, err)
		return
	}
	project, err := h.projectService.Patch(c.Request.Context(), projectID, &patch)
	if err != nil {
		h.log.Error("Patch project failed", "error", err, "project_id", projectID)
		RespondError(c, err)
		return
	}
	RespondOK(c, project)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, err := pathID(c, "project_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	if err := h.projectService.Delete(c.Request.Context(), projectID); err != nil {
		h.log.Error("Delete project failed", "error", err, "project_id", projectID)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}

func (h *ProjectHandler) GetBoundary(c *gin.Context) {
	projectID, err := pathID(c, "project_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	boundary, err := h.boundaryService.Get(c.Request.Context(), projectID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, boundary)
}

func (h *ProjectHandler) PutBoundary(c *gin.Context) {
	projectID, err := pathID(c, "project_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	var put types.BoundaryPut
	if err := c.ShouldBindJSON(&put); err != nil {
		RespondBadRequest(c, err)
		return
	}
	boundary, err := h.boundaryService.Put(c.Request.Context(), projectID, put.Geometry)
	if err != nil {
		h.log.Error("Put project boundary failed", "error", err, "project_id", projectID)
		RespondError(c, err)
		return
	}
	RespondOK(c, boundary)
}

func (h *ProjectHandler) ContextTerritories(c *gin.Context) {
	projectID, err := pathID(c, "project_id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}
	territories, err := h.boundaryService.ContextTerritories(c.Request.Context(), projectID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"territories": territories})
}
