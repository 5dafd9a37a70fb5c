// Package lifecycle moves delivery orders through
// PENDING → ACCEPTED → PICKED_UP → ON_THE_WAY → DELIVERED, with CANCELLED as a
// side exit.
//
// Every transition is one conditional UPDATE whose WHERE clause carries the
// status guard; zero affected rows means another actor got there first and the
// operation reports false. Side effects that must commit together (delivery
// row, earning row, status history) share the transaction. Notifications are
// dispatched after commit and never roll anything back.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"peer-delivery-api/ledger"
	"peer-delivery-api/models"
	"peer-delivery-api/session"
	"peer-delivery-api/statemachine"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier receives best-effort notifications. It must not block.
type Notifier interface {
	Notify(n models.Notification)
}

// Options selects the stricter readings of MarkOnTheWay and Cancel.
type Options struct {
	StrictOnTheWay bool
	StrictCancel   bool
}

type Service struct {
	db       *gorm.DB
	notifier Notifier
	logger   *zap.Logger
	validate *validator.Validate
	opts     Options
	now      func() time.Time
}

func NewService(db *gorm.DB, notifier Notifier, logger *zap.Logger, opts Options) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
		logger:   logger.Named("lifecycle"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// errGuard aborts a transition transaction whose status guard matched no row.
var errGuard = errors.New("transition guard not satisfied")

// CreateOrderInput is what a customer fills in to post a delivery request
type CreateOrderInput struct {
	ProductName      string          `json:"product_name" validate:"required,max=200"`
	Description      string          `json:"description" validate:"max=2000"`
	Photo            string          `json:"photo"`
	DeliveryLocation string          `json:"delivery_location" validate:"required,max=500"`
	TimeFrom         string          `json:"time_from" validate:"omitempty,datetime=15:04"`
	TimeTo           string          `json:"time_to" validate:"omitempty,datetime=15:04"`
	Fee              decimal.Decimal `json:"fee"`
	Notes            string          `json:"notes" validate:"max=2000"`
}

func (s *Service) validateInput(in CreateOrderInput) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", models.ErrValidation, err.Error())
	}
	if err := models.CheckAmount("fee", in.Fee); err != nil {
		return err
	}
	if in.TimeFrom != "" && in.TimeTo != "" && in.TimeTo < in.TimeFrom {
		return fmt.Errorf("%w: time window ends before it starts", models.ErrValidation)
	}
	return nil
}

// Create posts a new PENDING order owned by the session user.
func (s *Service) Create(ctx context.Context, sess session.Session, in CreateOrderInput) (*models.Order, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerID:       sess.UserID,
		ProductName:      in.ProductName,
		Description:      in.Description,
		Photo:            in.Photo,
		DeliveryLocation: in.DeliveryLocation,
		TimeFrom:         in.TimeFrom,
		TimeTo:           in.TimeTo,
		Fee:              in.Fee,
		Notes:            in.Notes,
		Status:           models.StatusPending,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: sess.UserID,
			Note:      "Order created by customer",
		}).Error
	})
	if err != nil {
		s.logger.Error("failed to create order", zap.Uint("customer_id", sess.UserID), zap.Error(err))
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order created", zap.Uint("order_id", order.ID), zap.Uint("customer_id", sess.UserID))
	s.send(sess.UserID, order.ID, models.NotifyOrderCreated, "Order created",
		fmt.Sprintf("Your delivery request for %q is waiting for a partner.", order.ProductName))
	return order, nil
}

// step describes one guarded transition
type step struct {
	name  string
	actor uint
	to    models.OrderStatus
	from  []models.OrderStatus // empty means unconditional
	guard func(tx, q *gorm.DB) *gorm.DB
	apply func(tx *gorm.DB, order *models.Order) error
	note  string

	// authorize sees the order as loaded inside the transaction and may
	// narrow from or reword note. An error aborts the transition.
	authorize func(order *models.Order, st *step) error
}

// assignedTo restricts q to orders whose delivery belongs to partnerID.
func assignedTo(partnerID uint) func(tx, q *gorm.DB) *gorm.DB {
	return func(tx, q *gorm.DB) *gorm.DB {
		return q.Where("order_id IN (?)",
			tx.Model(&models.Delivery{}).Select("order_id").Where("delivery_person_id = ?", partnerID))
	}
}

// run executes st inside one transaction. It returns the order as it stands
// after the transition, or ok=false when the guard matched nothing.
func (s *Service) run(ctx context.Context, orderID uint, st step) (*models.Order, bool, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Delivery").First(&order, orderID).Error; err != nil {
			return err
		}
		prev := order.Status

		if st.authorize != nil {
			if err := st.authorize(&order, &st); err != nil {
				return err
			}
		}
		q := tx.Model(&models.Order{}).Where("order_id = ?", orderID)
		if len(st.from) > 0 {
			q = q.Where("status IN ?", st.from)
		}
		if st.guard != nil {
			q = st.guard(tx, q)
		}
		res := q.Update("status", st.to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errGuard
		}
		order.Status = st.to

		if st.apply != nil {
			if err := st.apply(tx, &order); err != nil {
				return err
			}
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: prev,
			ToStatus:   st.to,
			ChangedBy:  st.actor,
			Note:       st.note,
		}).Error
	})

	fields := []zap.Field{zap.String("op", st.name), zap.Uint("order_id", orderID), zap.Uint("actor_id", st.actor)}
	switch {
	case err == nil:
		s.logger.Info("order transitioned", append(fields, zap.String("status", string(st.to)))...)
		return &order, true, nil
	case errors.Is(err, errGuard), errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Debug("transition rejected", append(fields, zap.NamedError("reason", err))...)
		return nil, false, nil
	case errors.Is(err, models.ErrForbidden):
		s.logger.Debug("transition refused", append(fields, zap.Error(err))...)
		return nil, false, err
	default:
		s.logger.Error("transition failed", append(fields, zap.Error(err))...)
		return nil, false, fmt.Errorf("%s order %d: %w", st.name, orderID, err)
	}
}

// Accept claims a PENDING order for the session user. Exactly one of several
// racing partners succeeds; the others get false. Customers cannot accept their
// own orders.
func (s *Service) Accept(ctx context.Context, sess session.Session, orderID uint) (bool, error) {
	if err := sess.Require(); err != nil {
		return false, err
	}
	partnerID := sess.UserID
	order, ok, err := s.run(ctx, orderID, step{
		name:  "accept",
		actor: partnerID,
		to:    models.StatusAccepted,
		from:  statemachine.Sources(models.StatusAccepted, statemachine.ActorPartner),
		guard: func(_, q *gorm.DB) *gorm.DB { return q.Where("customer_id <> ?", partnerID) },
		apply: func(tx *gorm.DB, order *models.Order) error {
			d := &models.Delivery{OrderID: order.ID, PartnerID: partnerID, Status: models.DeliveryAccepted}
			if err := tx.Create(d).Error; err != nil {
				return err
			}
			order.Delivery = d
			return nil
		},
		note: "Order accepted by delivery partner",
	})
	if ok {
		s.send(order.CustomerID, order.ID, models.NotifyOrderAccepted, "Order accepted",
			fmt.Sprintf("A delivery partner accepted your order for %q.", order.ProductName))
	}
	return ok, err
}

// MarkPickedUp moves an ACCEPTED order to PICKED_UP. Only the assigned partner may.
func (s *Service) MarkPickedUp(ctx context.Context, sess session.Session, orderID uint) (bool, error) {
	if err := sess.Require(); err != nil {
		return false, err
	}
	partnerID := sess.UserID
	order, ok, err := s.run(ctx, orderID, step{
		name:  "pickup",
		actor: partnerID,
		to:    models.StatusPickedUp,
		from:  statemachine.Sources(models.StatusPickedUp, statemachine.ActorPartner),
		guard: assignedTo(partnerID),
		apply: func(tx *gorm.DB, order *models.Order) error {
			return tx.Model(&models.Delivery{}).
				Where("order_id = ? AND delivery_person_id = ?", order.ID, partnerID).
				Updates(map[string]any{"status": models.DeliveryPickedUp, "pickup_time": s.now()}).Error
		},
		note: "Partner picked up the item",
	})
	if ok {
		s.send(order.CustomerID, order.ID, models.NotifyOrderPickedUp, "Order picked up",
			fmt.Sprintf("Your order for %q has been picked up.", order.ProductName))
	}
	return ok, err
}

// MarkOnTheWay moves a PICKED_UP order to ON_THE_WAY. Unless StrictOnTheWay is
// set the acting partner is not compared with the assigned one.
func (s *Service) MarkOnTheWay(ctx context.Context, sess session.Session, orderID uint) (bool, error) {
	if err := sess.Require(); err != nil {
		return false, err
	}
	st := step{
		name:  "on_the_way",
		actor: sess.UserID,
		to:    models.StatusOnTheWay,
		from:  statemachine.Sources(models.StatusOnTheWay, statemachine.ActorPartner),
		note:  "Partner is on the way",
	}
	if s.opts.StrictOnTheWay {
		st.guard = assignedTo(sess.UserID)
	}
	order, ok, err := s.run(ctx, orderID, st)
	if ok {
		s.send(order.CustomerID, order.ID, models.NotifyOrderOnTheWay, "Order on the way",
			fmt.Sprintf("Your order for %q is on its way to %s.", order.ProductName, order.DeliveryLocation))
	}
	return ok, err
}

// Complete delivers an order and appends exactly one earning of fee for the
// partner. The status change, delivery stamp and earning commit together. A
// second call finds the order DELIVERED and reports false.
func (s *Service) Complete(ctx context.Context, sess session.Session, orderID uint, fee decimal.Decimal) (bool, error) {
	if err := sess.Require(); err != nil {
		return false, err
	}
	if err := models.CheckAmount("fee", fee); err != nil {
		return false, err
	}
	partnerID := sess.UserID
	order, ok, err := s.run(ctx, orderID, step{
		name:  "complete",
		actor: partnerID,
		to:    models.StatusDelivered,
		from:  statemachine.Sources(models.StatusDelivered, statemachine.ActorPartner),
		guard: assignedTo(partnerID),
		apply: func(tx *gorm.DB, order *models.Order) error {
			err := tx.Model(&models.Delivery{}).
				Where("order_id = ? AND delivery_person_id = ?", order.ID, partnerID).
				Updates(map[string]any{"status": models.DeliveryDelivered, "delivered_time": s.now()}).Error
			if err != nil {
				return err
			}
			_, err = ledger.Append(tx, partnerID, order.ID, fee)
			return err
		},
		note: "Order delivered",
	})
	if ok {
		s.send(order.CustomerID, order.ID, models.NotifyOrderDelivered, "Order delivered",
			fmt.Sprintf("Your order for %q has been delivered.", order.ProductName))
		s.send(partnerID, order.ID, models.NotifyEarningRecorded, "Earning recorded",
			fmt.Sprintf("You earned %s for delivering %q.", fee.StringFixed(2), order.ProductName))
	}
	return ok, err
}

// Cancel moves an order to CANCELLED. By default no status guard applies, so
// even a DELIVERED order can be cancelled; StrictCancel limits it to
// non-terminal states. The owner, the assigned partner or an admin may cancel.
// The order and its delivery are read inside the cancelling transaction.
func (s *Service) Cancel(ctx context.Context, sess session.Session, orderID uint) (bool, error) {
	if err := sess.Require(); err != nil {
		return false, err
	}

	var actor statemachine.Actor
	order, ok, err := s.run(ctx, orderID, step{
		name:  "cancel",
		actor: sess.UserID,
		to:    models.StatusCancelled,
		authorize: func(order *models.Order, st *step) error {
			if actor = ActorFor(order, sess); actor == "" {
				return models.ErrForbidden
			}
			if s.opts.StrictCancel {
				st.from = statemachine.Sources(models.StatusCancelled, actor)
			}
			st.note = "Order cancelled by " + string(actor)
			return nil
		},
	})
	if !ok {
		return ok, err
	}

	msg := fmt.Sprintf("The order for %q was cancelled by the %s.", order.ProductName, actor)
	if order.CustomerID != sess.UserID {
		s.send(order.CustomerID, order.ID, models.NotifyOrderCancelled, "Order cancelled", msg)
	}
	if order.Delivery != nil && order.Delivery.PartnerID != sess.UserID {
		s.send(order.Delivery.PartnerID, order.ID, models.NotifyOrderCancelled, "Order cancelled", msg)
	}
	return true, nil
}

// ActorFor resolves the role sess plays on order: its customer, its assigned
// partner, or an admin. It returns "" for anyone else.
func ActorFor(order *models.Order, sess session.Session) statemachine.Actor {
	switch {
	case order.CustomerID == sess.UserID:
		return statemachine.ActorCustomer
	case order.Delivery != nil && order.Delivery.PartnerID == sess.UserID:
		return statemachine.ActorPartner
	case sess.IsAdmin:
		return statemachine.ActorAdmin
	}
	return ""
}

// send hands a notification to the dispatcher; failures are the dispatcher's to log.
func (s *Service) send(userID, orderID uint, typ models.NotificationType, title, message string) {
	if s.notifier == nil {
		return
	}
	id := orderID
	s.notifier.Notify(models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
		OrderID: &id,
	})
}
