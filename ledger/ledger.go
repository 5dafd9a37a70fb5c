// Package ledger records partner earnings. Rows are appended once per completed
// delivery, inside the completing transaction, and never updated.
package ledger

import (
	"context"
	"fmt"
	"time"

	"peer-delivery-api/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Append inserts one earning row using tx, which must be the caller's open transaction.
func Append(tx *gorm.DB, partnerID, orderID uint, amount decimal.Decimal) (*models.Earning, error) {
	e := &models.Earning{PartnerID: partnerID, OrderID: orderID, Amount: amount}
	if err := tx.Create(e).Error; err != nil {
		return nil, fmt.Errorf("append earning for order %d: %w", orderID, err)
	}
	return e, nil
}

// PartnerTotal sums every earning of a partner
func (l *Ledger) PartnerTotal(ctx context.Context, partnerID uint) (decimal.Decimal, error) {
	return l.sum(l.db.WithContext(ctx).Where("delivery_person_id = ?", partnerID))
}

// PartnerTotalBetween sums a partner's earnings created in [from, to)
func (l *Ledger) PartnerTotalBetween(ctx context.Context, partnerID uint, from, to time.Time) (decimal.Decimal, error) {
	return l.sum(l.db.WithContext(ctx).
		Where("delivery_person_id = ?", partnerID).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()))
}

// Total sums the whole ledger
func (l *Ledger) Total(ctx context.Context) (decimal.Decimal, error) {
	return l.sum(l.db.WithContext(ctx))
}

// TotalBetween sums all earnings created in [from, to)
func (l *Ledger) TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return l.sum(l.db.WithContext(ctx).Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()))
}

// sum adds whole cents so totals stay exact.
func (l *Ledger) sum(q *gorm.DB) (decimal.Decimal, error) {
	var cents int64
	row := q.Model(&models.Earning{}).Select("COALESCE(SUM(amount_cents), 0)").Row()
	if err := row.Scan(&cents); err != nil {
		return decimal.Zero, fmt.Errorf("sum earnings: %w", err)
	}
	return models.FromCents(cents), nil
}

// ListByPartner returns a partner's earnings, newest first
func (l *Ledger) ListByPartner(ctx context.Context, partnerID uint) ([]models.Earning, error) {
	var earnings []models.Earning
	err := l.db.WithContext(ctx).
		Where("delivery_person_id = ?", partnerID).
		Order("created_at desc").
		Find(&earnings).Error
	if err != nil {
		return nil, fmt.Errorf("list earnings: %w", err)
	}
	return earnings, nil
}

// ForOrder returns every earning row for an order. Complete's status guard keeps
// this at most one.
func (l *Ledger) ForOrder(ctx context.Context, orderID uint) ([]models.Earning, error) {
	var earnings []models.Earning
	if err := l.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&earnings).Error; err != nil {
		return nil, fmt.Errorf("earnings for order %d: %w", orderID, err)
	}
	return earnings, nil
}

// PartnerTotalRow is one line of the admin earnings report
type PartnerTotalRow struct {
	PartnerID  uint            `json:"delivery_person_id"`
	Deliveries int64           `json:"deliveries"`
	Total      decimal.Decimal `json:"total"`
}

// TotalsByPartner groups the ledger by partner, highest total first
func (l *Ledger) TotalsByPartner(ctx context.Context) ([]PartnerTotalRow, error) {
	rows, err := l.db.WithContext(ctx).Model(&models.Earning{}).
		Select("delivery_person_id, COUNT(*), COALESCE(SUM(amount_cents), 0) AS total").
		Group("delivery_person_id").
		Order("total desc, delivery_person_id").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("earnings by partner: %w", err)
	}
	defer rows.Close()

	var out []PartnerTotalRow
	for rows.Next() {
		var r PartnerTotalRow
		var cents int64
		if err := rows.Scan(&r.PartnerID, &r.Deliveries, &cents); err != nil {
			return nil, fmt.Errorf("scan earnings row: %w", err)
		}
		r.Total = models.FromCents(cents)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary is what a partner sees on their earnings screen
type Summary struct {
	Total      decimal.Decimal `json:"total"`
	Today      decimal.Decimal `json:"today"`
	Last7Days  decimal.Decimal `json:"last_7_days"`
	Deliveries int64           `json:"deliveries"`
}

// Summary computes a partner's totals relative to now
func (l *Ledger) Summary(ctx context.Context, partnerID uint, now time.Time) (*Summary, error) {
	now = now.UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := now.Add(time.Second)

	var s Summary
	var err error
	if s.Total, err = l.PartnerTotal(ctx, partnerID); err != nil {
		return nil, err
	}
	if s.Today, err = l.PartnerTotalBetween(ctx, partnerID, startOfDay, end); err != nil {
		return nil, err
	}
	if s.Last7Days, err = l.PartnerTotalBetween(ctx, partnerID, startOfDay.AddDate(0, 0, -6), end); err != nil {
		return nil, err
	}
	err = l.db.WithContext(ctx).Model(&models.Earning{}).
		Where("delivery_person_id = ?", partnerID).
		Count(&s.Deliveries).Error
	if err != nil {
		return nil, fmt.Errorf("count earnings: %w", err)
	}
	return &s, nil
}
