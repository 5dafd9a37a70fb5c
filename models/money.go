package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckAmount rejects negative money and amounts finer than one cent.
func CheckAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", ErrValidation, field)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: %s has more than 2 decimal places", ErrValidation, field)
	}
	return nil
}

// Cents converts a validated amount to whole cents.
func Cents(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}

// FromCents is the inverse of Cents.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// BeforeSave keeps AmountCents in step with Amount. Ledger sums run over the
// integer column, since SQLite stores decimal(10,2) as a float.
func (e *Earning) BeforeSave(*gorm.DB) error {
	if err := CheckAmount("amount", e.Amount); err != nil {
		return err
	}
	e.AmountCents = Cents(e.Amount)
	return nil
}
