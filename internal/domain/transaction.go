package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the display layout for transaction dates.
const DateLayout = "2006-01-02"

// usDateLayout is accepted by ParseDate for dates written as 01/02/2006.
const usDateLayout = "01/02/2006"

// TransactionKind tells whether a transaction takes money out or puts it in.
type TransactionKind string

const (
	TransactionKindWithdrawal TransactionKind = "withdrawal"
	TransactionKindDeposit    TransactionKind = "deposit"
)

// ParseTransactionKind parses a kind name.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(strings.ToLower(strings.TrimSpace(s))) {
	case TransactionKindWithdrawal:
		return TransactionKindWithdrawal, nil
	case TransactionKindDeposit:
		return TransactionKindDeposit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionKind, s)
	}
}

// Transaction is a dated monetary movement against one fund.
//
// Transactions are values: copying one clones it, and nothing in this package
// mutates a Transaction after construction.
type Transaction struct {
	Date        time.Time
	ID          string
	Kind        TransactionKind
	Fund        string
	Entity      string
	Description string
	Amount      decimal.Decimal
}

// NewWithdrawal creates a withdrawal transaction.
func NewWithdrawal(date time.Time, amount decimal.Decimal, fund, entity, description string) Transaction {
	return newTransaction(TransactionKindWithdrawal, date, amount, fund, entity, description)
}

// NewDeposit creates a deposit transaction.
func NewDeposit(date time.Time, amount decimal.Decimal, fund, entity, description string) Transaction {
	return newTransaction(TransactionKindDeposit, date, amount, fund, entity, description)
}

// NewTransaction creates a transaction of the given kind.
func NewTransaction(kind TransactionKind, date time.Time, amount decimal.Decimal, fund, entity, description string) (Transaction, error) {
	switch kind {
	case TransactionKindWithdrawal, TransactionKindDeposit:
		return newTransaction(kind, date, amount, fund, entity, description), nil
	default:
		return Transaction{}, fmt.Errorf("%w: %q", ErrInvalidTransactionKind, kind)
	}
}

func newTransaction(kind TransactionKind, date time.Time, amount decimal.Decimal, fund, entity, description string) Transaction {
	return Transaction{
		Date:        date,
		Kind:        kind,
		Amount:      amount,
		Fund:        fund,
		Entity:      entity,
		Description: description,
	}
}

// Today returns the current date at midnight UTC.
func Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// ParseDate parses a display date such as "2024-03-01" or "03/01/2024".
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(usDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM-DD or MM/DD/YYYY", ErrInvalidDate, s)
	}

	return t, nil
}

// WithID returns a copy of the transaction carrying id.
func (t Transaction) WithID(id string) Transaction {
	t.ID = id
	return t
}

// Clone returns a copy of the transaction.
func (t Transaction) Clone() Transaction {
	return t
}

// IsDeposit reports whether the transaction puts money in.
func (t Transaction) IsDeposit() bool {
	return t.Kind == TransactionKindDeposit
}

// SignedAmount returns the amount negated for withdrawals.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.IsDeposit() {
		return t.Amount
	}
	return t.Amount.Neg()
}

// DueBy reports whether the transaction is dated on or before asOf.
func (t Transaction) DueBy(asOf time.Time) bool {
	return !t.Date.After(asOf)
}

// Validate checks the fields outer surfaces require.
func (t Transaction) Validate() error {
	if _, err := ParseTransactionKind(string(t.Kind)); err != nil {
		return err
	}

	if strings.TrimSpace(t.Fund) == "" {
		return fmt.Errorf("%w: transaction has no fund", ErrInvalidFundName)
	}

	return nil
}

// String formats the transaction as a single display line.
func (t Transaction) String() string {
	sign := "-"
	if t.IsDeposit() {
		sign = "+"
	}

	return fmt.Sprintf("%s%s\t%s\t%s\t%s\t%s",
		sign,
		t.Amount.StringFixed(centPlaces),
		t.Date.Format(DateLayout),
		t.Fund,
		t.Entity,
		t.Description,
	)
}
