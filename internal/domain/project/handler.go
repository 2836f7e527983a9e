package project

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

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", fields)
		return
	}

	p, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req.Name, req.Description)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to create project")
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.ListForUser(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list projects")
		return
	}
	if list == nil {
		list = []Project{}
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to get project")
		return
	}
	response.Success(c, http.StatusOK, p)
}

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

	p, err := h.service.Update(c.Request.Context(), c.GetInt64("user_id"), id, req.Name, req.Description)
	if err != nil {
		writeError(c, err, "Failed to update project")
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		writeError(c, err, "Failed to delete project")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) AddMember(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", fields)
		return
	}

	if err := h.service.AddMember(c.Request.Context(), c.GetInt64("user_id"), id, req.UserID); err != nil {
		writeError(c, err, "Failed to add member")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"status": "added"})
}

func (h *Handler) RemoveMember(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		response.Error(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.RemoveMember(c.Request.Context(), c.GetInt64("user_id"), id, userID); err != nil {
		writeError(c, err, "Failed to remove member")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "removed"})
}

func (h *Handler) ListMembers(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	members, err := h.service.ListMembers(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list members")
		return
	}
	if members == nil {
		members = []Member{}
	}
	response.Success(c, http.StatusOK, members)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "Invalid project ID")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "Project not found")
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "Only the project owner can do this")
	case errors.Is(err, ErrAlreadyMember):
		response.Error(c, http.StatusConflict, "User is already a member")
	case errors.Is(err, ErrNotMember):
		response.Error(c, http.StatusNotFound, "User is not a member")
	default:
		response.Error(c, http.StatusInternalServerError, fallback)
	}
}
