package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Earning is an append-only ledger entry, one per completed delivery.
type Earning struct {
	ID          uint            `json:"id" gorm:"column:earning_id;primaryKey"`
	PartnerID   uint            `json:"delivery_person_id" gorm:"column:delivery_person_id;not null;index"`
	OrderID     uint            `json:"order_id" gorm:"not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	AmountCents int64           `json:"-" gorm:"not null;default:0"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
}

type Rating struct {
	ID         uint      `json:"id" gorm:"column:rating_id;primaryKey"`
	OrderID    uint      `json:"order_id" gorm:"not null;uniqueIndex"`
	CustomerID uint      `json:"customer_id" gorm:"not null"`
	PartnerID  uint      `json:"delivery_person_id" gorm:"column:delivery_person_id;not null;index"`
	Score      int       `json:"rating" gorm:"column:rating;not null;check:rating >= 1 AND rating <= 5"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotificationType categorises inbox entries
type NotificationType string

const (
	NotifyOrderCreated    NotificationType = "order_created"
	NotifyOrderAccepted   NotificationType = "order_accepted"
	NotifyOrderPickedUp   NotificationType = "order_picked_up"
	NotifyOrderOnTheWay   NotificationType = "order_on_the_way"
	NotifyOrderDelivered  NotificationType = "order_delivered"
	NotifyOrderCancelled  NotificationType = "order_cancelled"
	NotifyEarningRecorded NotificationType = "earning_recorded"
	NotifyRatingReceived  NotificationType = "rating_received"
)

type Notification struct {
	ID        uint             `json:"id" gorm:"column:notification_id;primaryKey"`
	UserID    uint             `json:"user_id" gorm:"not null;index"`
	Title     string           `json:"title" gorm:"not null"`
	Message   string           `json:"message" gorm:"not null"`
	Type      NotificationType `json:"type" gorm:"not null"`
	OrderID   *uint            `json:"order_id" gorm:"index"`
	IsRead    bool             `json:"is_read" gorm:"not null;default:false"`
	CreatedAt time.Time        `json:"created_at"`
}
