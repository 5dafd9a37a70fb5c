// Package rating lets a customer rate the partner of an order, at most once per
// order.
package rating

import (
	"context"
	"errors"
	"fmt"

	"peer-delivery-api/models"
	"peer-delivery-api/session"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier receives best-effort notifications
type Notifier interface {
	Notify(n models.Notification)
}

type Service struct {
	db       *gorm.DB
	notifier Notifier
	logger   *zap.Logger
	validate *validator.Validate
}

func NewService(db *gorm.DB, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
		logger:   logger.Named("rating"),
		validate: validator.New(),
	}
}

type SubmitInput struct {
	OrderID   uint   `json:"order_id" validate:"required"`
	PartnerID uint   `json:"delivery_person_id" validate:"required"`
	Score     int    `json:"rating" validate:"min=1,max=5"`
	Comment   string `json:"comment" validate:"max=1000"`
}

// Submit stores the session customer's rating. It reports false when the order
// already carries a rating. The existence check runs before the insert; the
// unique index on order_id turns a lost race into the same false.
func (s *Service) Submit(ctx context.Context, sess session.Session, in SubmitInput) (*models.Rating, bool, error) {
	if err := sess.Require(); err != nil {
		return nil, false, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, false, fmt.Errorf("%w: %s", models.ErrValidation, err.Error())
	}

	db := s.db.WithContext(ctx)
	var existing int64
	if err := db.Model(&models.Rating{}).Where("order_id = ?", in.OrderID).Count(&existing).Error; err != nil {
		s.logger.Error("failed to check existing rating", zap.Uint("order_id", in.OrderID), zap.Error(err))
		return nil, false, fmt.Errorf("check rating: %w", err)
	}
	if existing > 0 {
		return nil, false, nil
	}

	r := &models.Rating{
		OrderID:    in.OrderID,
		CustomerID: sess.UserID,
		PartnerID:  in.PartnerID,
		Score:      in.Score,
		Comment:    in.Comment,
	}
	if err := db.Create(r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, nil
		}
		s.logger.Error("failed to store rating", zap.Uint("order_id", in.OrderID), zap.Error(err))
		return nil, false, fmt.Errorf("store rating: %w", err)
	}

	s.logger.Info("rating submitted", zap.Uint("order_id", in.OrderID), zap.Int("score", in.Score))
	if s.notifier != nil {
		orderID := in.OrderID
		s.notifier.Notify(models.Notification{
			UserID:  in.PartnerID,
			Title:   "New rating",
			Message: fmt.Sprintf("A customer rated your delivery %d/5.", in.Score),
			Type:    models.NotifyRatingReceived,
			OrderID: &orderID,
		})
	}
	return r, true, nil
}

// ForOrder returns the rating attached to an order
func (s *Service) ForOrder(ctx context.Context, orderID uint) (*models.Rating, error) {
	var r models.Rating
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("rating for order %d: %w", orderID, err)
	}
	return &r, nil
}

// PartnerAverage returns a partner's mean score and how many ratings it covers
func (s *Service) PartnerAverage(ctx context.Context, partnerID uint) (float64, int64, error) {
	var out struct {
		Avg   float64
		Count int64
	}
	err := s.db.WithContext(ctx).Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("delivery_person_id = ?", partnerID).
		Scan(&out).Error
	if err != nil {
		return 0, 0, fmt.Errorf("partner rating: %w", err)
	}
	return out.Avg, out.Count, nil
}
