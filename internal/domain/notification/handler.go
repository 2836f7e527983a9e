package notification

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

// List returns the current user's notifications, newest first.
// GET /notifications?limit=&unreadOnly=
func (h *Handler) List(c *gin.Context) {
	userID := c.GetInt64("user_id")

	limit := 0
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
			if limit > 100 {
				limit = 100
			}
		}
	}

	var (
		list []Notification
		err  error
	)
	if c.Query("unreadOnly") == "true" {
		list, err = h.service.ListUnread(c.Request.Context(), userID)
	} else {
		list, err = h.service.List(c.Request.Context(), userID, limit)
	}
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get notifications")
		return
	}

	unread, err := h.service.CountUnread(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get notifications")
		return
	}
	total, err := h.service.Count(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get notifications")
		return
	}

	if list == nil {
		list = []Notification{}
	}
	response.Success(c, http.StatusOK, ListResponse{
		Notifications: list,
		UnreadCount:   unread,
		Total:         total,
	})
}

// Create persists and broadcasts a notification.
// POST /notifications
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

	userID := req.UserID
	if userID == 0 {
		userID = c.GetInt64("user_id")
	}

	n, err := h.service.Send(c.Request.Context(), req.Type, req.Message, userID, req.EntityID, req.EntityType)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) || errors.Is(err, ErrMissingUser) {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to create notification")
		return
	}

	response.Success(c, http.StatusCreated, n)
}

// Update marks a notification as read.
// PUT /notifications
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", fields)
		return
	}

	n, err := h.service.MarkRead(c.Request.Context(), req.ID, c.GetInt64("user_id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "Notification not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to update notification")
		return
	}

	response.Success(c, http.StatusOK, n)
}

// Delete removes a notification permanently.
// DELETE /notifications?id=
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, c.GetInt64("user_id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "Notification not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to delete notification")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

// UnreadCount returns the unread badge count.
// GET /notifications/unread-count
func (h *Handler) UnreadCount(c *gin.Context) {
	userID := c.GetInt64("user_id")

	unread, err := h.service.CountUnread(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get unread count")
		return
	}

	response.Success(c, http.StatusOK, UnreadCountResponse{UnreadCount: unread})
}

// MarkAllRead flips every unread notification of the current user.
// POST /notifications/read-all
func (h *Handler) MarkAllRead(c *gin.Context) {
	userID := c.GetInt64("user_id")

	updated, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to mark notifications as read")
		return
	}

	response.Success(c, http.StatusOK, MarkAllReadResponse{Updated: updated})
}
