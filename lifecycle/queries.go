package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"peer-delivery-api/models"
	"peer-delivery-api/session"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Get loads an order with its delivery, if any.
func (s *Service) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Delivery").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	return &order, nil
}

// ListByCustomer returns the orders a customer posted, newest first
func (s *Service) ListByCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	return s.list(ctx, s.db.Where("customer_id = ?", customerID))
}

// ListAvailable returns PENDING orders a partner could accept: everything but
// their own, oldest first.
func (s *Service) ListAvailable(ctx context.Context, partnerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Where("status = ? AND customer_id <> ?", models.StatusPending, partnerID).
		Order("created_at asc, order_id asc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list available orders: %w", err)
	}
	return orders, nil
}

// ListByPartner returns the orders a partner has accepted, newest first
func (s *Service) ListByPartner(ctx context.Context, partnerID uint) ([]models.Order, error) {
	return s.list(ctx, s.db.Where("order_id IN (?)",
		s.db.Model(&models.Delivery{}).Select("order_id").Where("delivery_person_id = ?", partnerID)))
}

// ListAll returns every order, optionally filtered by status (admin view)
func (s *Service) ListAll(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	q := s.db.Session(&gorm.Session{})
	if status != "" {
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
		}
		q = q.Where("status = ?", status)
	}
	return s.list(ctx, q)
}

func (s *Service) list(ctx context.Context, q *gorm.DB) ([]models.Order, error) {
	var orders []models.Order
	err := q.WithContext(ctx).Preload("Delivery").Order("created_at desc, order_id desc").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Summary counts orders per status; every status is present, possibly zero.
func (s *Service) Summary(ctx context.Context) (map[models.OrderStatus]int64, error) {
	type row struct {
		Status models.OrderStatus
		N      int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("summarise orders: %w", err)
	}

	summary := make(map[models.OrderStatus]int64, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		summary[st] = 0
	}
	for _, r := range rows {
		summary[r.Status] = r.N
	}
	return summary, nil
}

// History returns an order's status changes, oldest first
func (s *Service) History(ctx context.Context, orderID uint) ([]models.OrderStatusHistory, error) {
	var history []models.OrderStatusHistory
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	return history, nil
}

// DeleteOrder removes an order and everything hanging off it in one
// transaction. Admin only; false when the order does not exist.
func (s *Service) DeleteOrder(ctx context.Context, sess session.Session, orderID uint) (bool, error) {
	if err := sess.RequireAdmin(); err != nil {
		return false, err
	}
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := DeleteOrderRows(tx, orderID); err != nil {
			return err
		}
		res := tx.Where("order_id = ?", orderID).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		if !deleted {
			return errGuard
		}
		return nil
	})
	if errors.Is(err, errGuard) {
		return false, nil
	}
	if err != nil {
		s.logger.Error("failed to delete order", zap.Uint("order_id", orderID), zap.Error(err))
		return false, fmt.Errorf("delete order %d: %w", orderID, err)
	}
	s.logger.Info("order deleted by admin", zap.Uint("order_id", orderID), zap.Uint("admin_id", sess.UserID))
	return true, nil
}

// DeleteOrderRows removes the dependents of the given orders inside tx. The
// orders themselves are left to the caller.
func DeleteOrderRows(tx *gorm.DB, orderIDs ...uint) error {
	if len(orderIDs) == 0 {
		return nil
	}
	for _, model := range []any{
		&models.Rating{},
		&models.Earning{},
		&models.Notification{},
		&models.Delivery{},
		&models.OrderStatusHistory{},
	} {
		if err := tx.Where("order_id IN ?", orderIDs).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
