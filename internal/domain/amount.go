package domain

import (
	"github.com/shopspring/decimal"
)

// centPlaces is the number of decimal places every Amount is kept at.
const centPlaces = 2

// Amount is a monetary value held at cent precision.
//
// Both operands of every mutation are rounded to the cent before they are
// combined, so any sequence of cent-aligned deposits and withdrawals is exact.
// Amount has no lower bound.
type Amount struct {
	value decimal.Decimal
}

// NewAmount creates an Amount rounded to the cent.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{value: d.Round(centPlaces)}
}

// AmountFromFloat creates an Amount from a float, rounded to the cent.
func AmountFromFloat(f float64) Amount {
	return NewAmount(decimal.NewFromFloat(f))
}

// ZeroAmount returns an Amount of 0.00.
func ZeroAmount() Amount {
	return Amount{value: decimal.Zero}
}

// Deposit adds d to the amount.
func (a *Amount) Deposit(d decimal.Decimal) {
	a.value = a.value.Round(centPlaces).Add(d.Round(centPlaces))
}

// Withdraw subtracts d from the amount.
func (a *Amount) Withdraw(d decimal.Decimal) {
	a.value = a.value.Round(centPlaces).Sub(d.Round(centPlaces))
}

// Decimal returns the underlying value.
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// Float64 returns the value as a float for display purposes.
func (a Amount) Float64() float64 {
	f, _ := a.value.Float64()
	return f
}

// Equal reports whether both amounts hold the same value.
func (a Amount) Equal(other Amount) bool {
	return a.value.Equal(other.value)
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool {
	return a.value.IsNegative()
}

// String formats the amount with exactly two decimals.
func (a Amount) String() string {
	return a.value.StringFixed(centPlaces)
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted or bare decimal.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*a = NewAmount(d)
	return nil
}
