package comment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain/task"
	"taskboard/internal/pkg/response"
	"taskboard/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /tasks/:id/comments.
func (h *Handler) Create(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || taskID <= 0 {
		response.Error(c, http.StatusBadRequest, "Invalid task ID")
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

	cm, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), taskID, req.Body)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "Task not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to create comment")
		return
	}
	response.Success(c, http.StatusCreated, cm)
}

// ListByTask handles GET /tasks/:id/comments.
func (h *Handler) ListByTask(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || taskID <= 0 {
		response.Error(c, http.StatusBadRequest, "Invalid task ID")
		return
	}

	list, err := h.service.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list comments")
		return
	}
	if list == nil {
		list = []Comment{}
	}
	response.Success(c, http.StatusOK, list)
}

// Update handles PUT /comments/:id.
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
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", fields)
		return
	}

	cm, err := h.service.Update(c.Request.Context(), c.GetInt64("user_id"), id, req.Body)
	if err != nil {
		writeError(c, err, "Failed to update comment")
		return
	}
	response.Success(c, http.StatusOK, cm)
}

// Delete handles DELETE /comments/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		writeError(c, err, "Failed to delete comment")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "Invalid comment ID")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "Comment not found")
	case errors.Is(err, ErrNotAuthor):
		response.Error(c, http.StatusForbidden, "Only the comment author can do this")
	default:
		response.Error(c, http.StatusInternalServerError, fallback)
	}
}
