// Package handlers holds the service's small HTTP surface: the notification
// publish entry point for out-of-process producers, and health.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hr-realtime/internal/models"
	"hr-realtime/internal/notifier"
)

type notificationPublisher interface {
	Notify(ctx context.Context, userID, message, kind string) (models.Notification, error)
}

// NotificationHandler exposes the bridge's publish entry point over HTTP so
// workflow collaborators (leave, payroll, tasks, geofence) can reach it.
type NotificationHandler struct {
	publisher notificationPublisher
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(publisher notificationPublisher) *NotificationHandler {
	return &NotificationHandler{publisher: publisher}
}

// Publish handles POST /internal/notifications.
func (h *NotificationHandler) Publish(c *gin.Context) {
	var req struct {
		UserID  string `json:"user_id" binding:"required"`
		Message string `json:"message" binding:"required"`
		Kind    string `json:"kind"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n, err := h.publisher.Notify(c.Request.Context(), req.UserID, req.Message, req.Kind)
	if err != nil {
		if errors.Is(err, notifier.ErrInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not publish notification"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"notification": n})
}
