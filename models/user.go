package models

import (
	"time"
)

// User is any account in the system. Customers and delivery partners share the
// same table: a partner is simply a user acting on an order they did not create.
type User struct {
	ID             uint      `json:"id" gorm:"column:user_id;primaryKey"`
	Name           string    `json:"name" gorm:"not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	Phone          string    `json:"phone"`
	PasswordHash   string    `json:"-" gorm:"not null"`
	DefaultAddress string    `json:"default_address"`
	ProfileImage   string    `json:"profile_image"`
	IsAdmin        bool      `json:"is_admin" gorm:"not null;default:false"`
	IsBanned       bool      `json:"is_banned" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`
}
