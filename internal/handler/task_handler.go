package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"teamhub/internal/services"
	"teamhub/internal/transport/httpdto"
)

// TaskHandler handles the task board endpoints.
type TaskHandler struct {
	service *services.TaskService
}

// NewTaskHandler creates a task handler.
func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /v1/tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	var req httpdto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	p, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	in := services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		CreatorID:   p.UserID,
	}
	if req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid due date", "INVALID_REQUEST"))
			return
		}
		in.DueDate = &due
	}
	if req.AssignedTo != "" {
		assignee, err := uuid.Parse(req.AssignedTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid assignee", "INVALID_REQUEST"))
			return
		}
		in.AssignedTo = &assignee
	}
	if req.ProjectID != "" {
		projectID, err := uuid.Parse(req.ProjectID)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid project id", "INVALID_REQUEST"))
			return
		}
		in.ProjectID = &projectID
	}

	created, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(created))
}

// List handles GET /v1/tasks with an optional ?status filter.
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(tasks))
}

// Get handles GET /v1/tasks/:id.
func (h *TaskHandler) Get(c *gin.Context) {
	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	t, err := h.service.Get(c.Request.Context(), taskID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(t))
}

// MoveStatus handles PATCH /v1/tasks/:id/status.
func (h *TaskHandler) MoveStatus(c *gin.Context) {
	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req httpdto.MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	p, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.MoveStatus(c.Request.Context(), p.UserID, taskID, req.Status); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": req.Status}))
}

// Assign handles PATCH /v1/tasks/:id/assignee.
func (h *TaskHandler) Assign(c *gin.Context) {
	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req httpdto.AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	p, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var assignee *uuid.UUID
	if req.AssignedTo != "" {
		parsed, err := uuid.Parse(req.AssignedTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid assignee", "INVALID_REQUEST"))
			return
		}
		assignee = &parsed
	}

	if err := h.service.Assign(c.Request.Context(), p.UserID, taskID, assignee); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"assigned": req.AssignedTo}))
}

// Delete handles DELETE /v1/tasks/:id.
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	p, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), p.UserID, taskID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"deleted": taskID.String()}))
}

// AddComment handles POST /v1/tasks/:id/comments.
func (h *TaskHandler) AddComment(c *gin.Context) {
	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req httpdto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	p, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), p.UserID, taskID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(comment))
}

// Comments handles GET /v1/tasks/:id/comments.
func (h *TaskHandler) Comments(c *gin.Context) {
	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	comments, err := h.service.Comments(c.Request.Context(), taskID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(comments))
}

// Activity handles GET /v1/tasks/:id/activity.
func (h *TaskHandler) Activity(c *gin.Context) {
	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	trail, err := h.service.Activity(c.Request.Context(), taskID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(trail))
}

// CreateProject handles POST /v1/projects.
func (h *TaskHandler) CreateProject(c *gin.Context) {
	var req httpdto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	p, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	project, err := h.service.CreateProject(c.Request.Context(), p.UserID, req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(project))
}

// ListProjects handles GET /v1/projects.
func (h *TaskHandler) ListProjects(c *gin.Context) {
	projects, err := h.service.ListProjects(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(projects))
}

// DeleteProject handles DELETE /v1/projects/:id. Admin only.
func (h *TaskHandler) DeleteProject(c *gin.Context) {
	projectID, ok := parseIDParam(c)
	if !ok {
		return
	}

	p, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.DeleteProject(c.Request.Context(), p.UserID, projectID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"deleted": projectID.String()}))
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid id", "INVALID_REQUEST"))
		return uuid.Nil, false
	}
	return id, true
}
