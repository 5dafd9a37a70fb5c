package handlers

import (
	"net/http"

	"peer-delivery-api/middleware"
	"peer-delivery-api/models"

	"github.com/gin-gonic/gin"
)

// GetNotifications lists the caller's inbox; ?unread=true keeps unread ones only
func (h *Handler) GetNotifications(c *gin.Context) {
	userID := middleware.GetSession(c).UserID
	ctx := c.Request.Context()

	items, err := h.inbox.List(ctx, userID, c.Query("unread") == "true")
	if err != nil {
		h.fail(c, err)
		return
	}
	unread, err := h.inbox.UnreadCount(ctx, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "unread": unread, "notifications": items})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	done, err := h.inbox.MarkRead(c.Request.Context(), middleware.GetSession(c).UserID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !done {
		h.fail(c, models.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.inbox.MarkAllRead(c.Request.Context(), middleware.GetSession(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": n})
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	done, err := h.inbox.Delete(c.Request.Context(), middleware.GetSession(c).UserID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !done {
		h.fail(c, models.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
