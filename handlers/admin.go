package handlers

import (
	"net/http"
	"time"

	"peer-delivery-api/middleware"
	"peer-delivery-api/models"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// AdminGetAllOrders returns every order with a per-status summary
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	ctx := c.Request.Context()
	orders, err := h.orders.ListAll(ctx, models.OrderStatus(c.Query("status")))
	if err != nil {
		h.fail(c, err)
		return
	}
	summary, err := h.orders.Summary(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	total, err := h.ledger.Total(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_summary":  summary,
		"total_earnings": total,
		"count":          len(orders),
		"orders":         orders,
	})
}

// AdminCancelOrder force-cancels an order
func (h *Handler) AdminCancelOrder(c *gin.Context) {
	h.CancelOrder(c)
}

// AdminDeleteOrder removes an order and all its dependent rows
func (h *Handler) AdminDeleteOrder(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	done, err := h.orders.DeleteOrder(c.Request.Context(), middleware.GetSession(c), orderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !done {
		h.fail(c, models.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted", "order_id": orderID})
}

// AdminGetAllUsers returns all users; ?banned=true lists banned ones only
func (h *Handler) AdminGetAllUsers(c *gin.Context) {
	users, err := h.accounts.ListUsers(c.Request.Context(), middleware.GetSession(c), c.Query("banned") == "true")
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

// AdminSetBanned bans or unbans a user
func (h *Handler) AdminSetBanned(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Banned *bool `json:"banned" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	done, err := h.accounts.SetBanned(c.Request.Context(), middleware.GetSession(c), userID, *req.Banned)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !done {
		h.fail(c, models.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated", "user_id": userID, "banned": *req.Banned})
}

// AdminDeleteUser removes a user together with everything they own
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	done, err := h.accounts.DeleteUser(c.Request.Context(), middleware.GetSession(c), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !done {
		h.fail(c, models.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted", "user_id": userID})
}

// AdminEarningsReport totals earnings per partner. ?from=YYYY-MM-DD&to=YYYY-MM-DD
// adds the total for that inclusive date range.
func (h *Handler) AdminEarningsReport(c *gin.Context) {
	ctx := c.Request.Context()
	rows, err := h.ledger.TotalsByPartner(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	total, err := h.ledger.Total(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := gin.H{"total": total, "partners": rows}

	if fromStr, toStr := c.Query("from"), c.Query("to"); fromStr != "" || toStr != "" {
		from, err1 := time.Parse(dateLayout, fromStr)
		to, err2 := time.Parse(dateLayout, toStr)
		if err1 != nil || err2 != nil || to.Before(from) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be dates (YYYY-MM-DD), from <= to"})
			return
		}
		ranged, err := h.ledger.TotalBetween(ctx, from, to.AddDate(0, 0, 1))
		if err != nil {
			h.fail(c, err)
			return
		}
		resp["range"] = gin.H{"from": fromStr, "to": toStr, "total": ranged}
	}
	c.JSON(http.StatusOK, resp)
}

// AdminNotificationStats reports the dispatcher counters
func (h *Handler) AdminNotificationStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stats": h.dispatcher.Stats()})
}
