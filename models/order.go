package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents all possible states of a delivery request
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusAccepted  OrderStatus = "ACCEPTED"
	StatusPickedUp  OrderStatus = "PICKED_UP"
	StatusOnTheWay  OrderStatus = "ON_THE_WAY"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// AllStatuses lists the lifecycle states in order, CANCELLED last.
var AllStatuses = []OrderStatus{
	StatusPending,
	StatusAccepted,
	StatusPickedUp,
	StatusOnTheWay,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is one of the defined lifecycle states.
func (s OrderStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// DeliveryStatus is the narrower status kept on the delivery row.
type DeliveryStatus string

const (
	DeliveryAccepted  DeliveryStatus = "Accepted"
	DeliveryPickedUp  DeliveryStatus = "Picked Up"
	DeliveryDelivered DeliveryStatus = "Delivered"
)

type Order struct {
	ID               uint            `json:"id" gorm:"column:order_id;primaryKey"`
	CustomerID       uint            `json:"customer_id" gorm:"not null;index"`
	ProductName      string          `json:"product_name" gorm:"not null"`
	Description      string          `json:"description"`
	Photo            string          `json:"photo"`
	DeliveryLocation string          `json:"delivery_location" gorm:"not null"`
	TimeFrom         string          `json:"time_from"`
	TimeTo           string          `json:"time_to"`
	Fee              decimal.Decimal `json:"fee" gorm:"type:decimal(10,2);not null"`
	Notes            string          `json:"notes"`
	Status           OrderStatus     `json:"status" gorm:"not null;default:'PENDING';index"`
	Delivery         *Delivery       `json:"delivery,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Delivery links one order to the partner who accepted it. order_id is unique:
// acceptance is exclusive.
type Delivery struct {
	ID            uint           `json:"id" gorm:"column:delivery_id;primaryKey"`
	OrderID       uint           `json:"order_id" gorm:"not null;uniqueIndex"`
	PartnerID     uint           `json:"delivery_person_id" gorm:"column:delivery_person_id;not null;index"`
	Status        DeliveryStatus `json:"status" gorm:"not null"`
	PickupTime    *time.Time     `json:"pickup_time"`
	DeliveredTime *time.Time     `json:"delivered_time"`
	CreatedAt     time.Time      `json:"created_at"`
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
