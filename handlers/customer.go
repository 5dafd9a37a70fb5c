package handlers

import (
	"errors"
	"net/http"

	"peer-delivery-api/lifecycle"
	"peer-delivery-api/middleware"
	"peer-delivery-api/models"
	"peer-delivery-api/rating"

	"github.com/gin-gonic/gin"
)

type RateRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// PlaceOrder posts a new delivery request for the caller
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req lifecycle.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.Create(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
}

// GetMyOrders returns all orders posted by the caller
func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := h.orders.ListByCustomer(c.Request.Context(), middleware.GetSession(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns one order with its history and rating. Visible to the
// owner, the assigned partner and admins.
func (h *Handler) GetOrderDetail(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	sess := middleware.GetSession(c)
	ctx := c.Request.Context()

	order, err := h.orders.Get(ctx, orderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	assigned := order.Delivery != nil && order.Delivery.PartnerID == sess.UserID
	if order.CustomerID != sess.UserID && !assigned && !sess.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}

	history, err := h.orders.History(ctx, orderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := gin.H{"order": order, "history": history}
	r, err := h.ratings.ForOrder(ctx, orderID)
	switch {
	case err == nil:
		resp["rating"] = r
	case !errors.Is(err, models.ErrNotFound):
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelOrder cancels an order on behalf of its owner or assigned partner
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	done, err := h.orders.Cancel(c.Request.Context(), middleware.GetSession(c), orderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !done {
		h.conflict(c, "cancel", orderID, models.StatusCancelled)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order_id": orderID})
}

// RateOrder attaches the caller's rating to one of their delivered orders
func (h *Handler) RateOrder(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := middleware.GetSession(c)
	ctx := c.Request.Context()

	order, err := h.orders.Get(ctx, orderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if order.CustomerID != sess.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}
	if order.Status != models.StatusDelivered || order.Delivery == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "Only delivered orders can be rated",
			"current_status": order.Status,
		})
		return
	}

	r, done, err := h.ratings.Submit(ctx, sess, rating.SubmitInput{
		OrderID:   orderID,
		PartnerID: order.Delivery.PartnerID,
		Score:     req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if !done {
		c.JSON(http.StatusConflict, gin.H{"error": "This order has already been rated", "order_id": orderID})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Thank you for your rating", "rating": r})
}
