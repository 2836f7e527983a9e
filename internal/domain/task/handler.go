package task

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskboard/internal/pkg/response"
	"taskboard/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /projects/:id/tasks.
func (h *Handler) Create(c *gin.Context) {
	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || projectID <= 0 {
		response.Error(c, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", fields)
		return
	}

	t, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), projectID, req.Title, req.Description, req.AssigneeID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to create task")
		return
	}
	response.Success(c, http.StatusCreated, t)
}

// ListByProject handles GET /projects/:id/tasks.
func (h *Handler) ListByProject(c *gin.Context) {
	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || projectID <= 0 {
		response.Error(c, http.StatusBadRequest, "Invalid project ID")
		return
	}

	list, err := h.service.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list tasks")
		return
	}
	if list == nil {
		list = []Task{}
	}
	response.Success(c, http.StatusOK, list)
}

// Get handles GET /tasks/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to get task")
		return
	}
	response.Success(c, http.StatusOK, t)
}

// Update handles PUT /tasks/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	t, err := h.service.Update(c.Request.Context(), c.GetInt64("user_id"), id, req.Title, req.Description, req.Status, req.AssigneeID)
	if err != nil {
		writeError(c, err, "Failed to update task")
		return
	}
	response.Success(c, http.StatusOK, t)
}

// Delete handles DELETE /tasks/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err, "Failed to delete task")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "Invalid task ID")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "Task not found")
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "Invalid task status")
	default:
		response.Error(c, http.StatusInternalServerError, fallback)
	}
}
