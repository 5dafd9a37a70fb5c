package handlers

import (
	"context"
	"net/http"

	"peer-delivery-api/middleware"
	"peer-delivery-api/models"
	"peer-delivery-api/session"

	"github.com/gin-gonic/gin"
)

// GetAvailableOrders shows PENDING orders the caller could accept
func (h *Handler) GetAvailableOrders(c *gin.Context) {
	orders, err := h.orders.ListAvailable(c.Request.Context(), middleware.GetSession(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetMyDeliveries returns every order the caller has accepted
func (h *Handler) GetMyDeliveries(c *gin.Context) {
	orders, err := h.orders.ListByPartner(c.Request.Context(), middleware.GetSession(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

type transitionFunc func(ctx context.Context, sess session.Session, orderID uint) (bool, error)

// transition runs one partner step and renders the outcome.
func (h *Handler) transition(c *gin.Context, action string, to models.OrderStatus, message string, fn transitionFunc) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	done, err := fn(c.Request.Context(), middleware.GetSession(c), orderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !done {
		h.conflict(c, action, orderID, to)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "order_id": orderID})
}

// AcceptOrder claims a PENDING order; only the first partner wins
func (h *Handler) AcceptOrder(c *gin.Context) {
	h.transition(c, "accept", models.StatusAccepted, "Order accepted", h.orders.Accept)
}

// PickupOrder marks an accepted order as picked up
func (h *Handler) PickupOrder(c *gin.Context) {
	h.transition(c, "pick up", models.StatusPickedUp, "Order picked up", h.orders.MarkPickedUp)
}

// OnTheWay marks a picked up order as travelling
func (h *Handler) OnTheWay(c *gin.Context) {
	h.transition(c, "dispatch", models.StatusOnTheWay, "Order is on the way", h.orders.MarkOnTheWay)
}

// DeliverOrder completes the order and books the order's fee as an earning
func (h *Handler) DeliverOrder(c *gin.Context) {
	h.transition(c, "deliver", models.StatusDelivered, "Order delivered", func(ctx context.Context, sess session.Session, orderID uint) (bool, error) {
		order, err := h.orders.Get(ctx, orderID)
		if err != nil {
			return false, err
		}
		return h.orders.Complete(ctx, sess, orderID, order.Fee)
	})
}

// GetMyEarnings returns the caller's earnings summary and entries
func (h *Handler) GetMyEarnings(c *gin.Context) {
	partnerID := middleware.GetSession(c).UserID
	ctx := c.Request.Context()

	summary, err := h.ledger.Summary(ctx, partnerID, h.now())
	if err != nil {
		h.fail(c, err)
		return
	}
	entries, err := h.ledger.ListByPartner(ctx, partnerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	avg, count, err := h.ratings.PartnerAverage(ctx, partnerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":        summary,
		"earnings":       entries,
		"average_rating": avg,
		"rating_count":   count,
	})
}
