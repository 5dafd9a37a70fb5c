package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"peer-delivery-api/accounts"
	"peer-delivery-api/ledger"
	"peer-delivery-api/lifecycle"
	"peer-delivery-api/middleware"
	"peer-delivery-api/models"
	"peer-delivery-api/notify"
	"peer-delivery-api/rating"
	"peer-delivery-api/statemachine"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the JSON API on top of the domain services.
type Handler struct {
	accounts   *accounts.Service
	orders     *lifecycle.Service
	ledger     *ledger.Ledger
	ratings    *rating.Service
	inbox      *notify.Inbox
	dispatcher *notify.Dispatcher
	jwtSecret  []byte
	tokenTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

type Deps struct {
	Accounts   *accounts.Service
	Orders     *lifecycle.Service
	Ledger     *ledger.Ledger
	Ratings    *rating.Service
	Inbox      *notify.Inbox
	Dispatcher *notify.Dispatcher
	JWTSecret  []byte
	TokenTTL   time.Duration
	Logger     *zap.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		accounts:   d.Accounts,
		orders:     d.Orders,
		ledger:     d.Ledger,
		ratings:    d.Ratings,
		inbox:      d.Inbox,
		dispatcher: d.Dispatcher,
		jwtSecret:  d.JWTSecret,
		tokenTTL:   d.TokenTTL,
		logger:     d.Logger.Named("http"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// fail maps a service error onto an HTTP response.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnauthenticated), errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrForbidden), errors.Is(err, models.ErrBanned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		h.logger.Error("request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// conflict answers a transition whose guard did not hold, explaining the
// refusal from the order's current state. A vanished order is a 404.
func (h *Handler) conflict(c *gin.Context, action string, orderID uint, to models.OrderStatus) {
	order, err := h.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	sess := middleware.GetSession(c)
	actor := statemachine.ActorPartner
	if to == models.StatusCancelled {
		if actor = lifecycle.ActorFor(order, sess); actor == "" {
			actor = statemachine.ActorAdmin
		}
	}

	reason := "the order is assigned to another partner"
	if err := statemachine.CanTransition(order.Status, to, actor); err != nil {
		reason = err.Error()
	} else if to == models.StatusAccepted && order.CustomerID == sess.UserID {
		reason = "customers cannot accept their own orders"
	}
	c.JSON(http.StatusConflict, gin.H{
		"error":             "Cannot " + action + " order",
		"order_id":          orderID,
		"current_status":    order.Status,
		"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
		"reason":            reason,
	})
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
