package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProgressScale is the value Progress reports for a fund that has reached its bound.
const ProgressScale = 20

// FundKind decides how a fund's bounds are read.
type FundKind string

const (
	// FundKindBudget starts fully funded and is spent down to zero.
	FundKindBudget FundKind = "budget"
	// FundKindSavings grows from a base toward base plus a goal increment.
	FundKindSavings FundKind = "savings"
	// FundKindIncome grows from zero toward a target.
	FundKindIncome FundKind = "income"
)

// ParseFundKind parses a kind name.
func ParseFundKind(s string) (FundKind, error) {
	switch FundKind(strings.ToLower(strings.TrimSpace(s))) {
	case FundKindBudget:
		return FundKindBudget, nil
	case FundKindSavings:
		return FundKindSavings, nil
	case FundKindIncome:
		return FundKindIncome, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFundKind, s)
	}
}

// Fund is a named bucket of money inside an Account.
type Fund struct {
	Name    string
	Kind    FundKind
	Current Amount
	Begin   decimal.Decimal
	End     decimal.Decimal
}

// NewBudgetFund creates a fully funded budget that spending depletes.
func NewBudgetFund(name string, amount decimal.Decimal) *Fund {
	return newFund(name, FundKindBudget, amount, decimal.Zero)
}

// NewSavingsFund creates a savings fund starting at start with a goal of start+goalIncrement.
func NewSavingsFund(name string, start, goalIncrement decimal.Decimal) *Fund {
	return newFund(name, FundKindSavings, start, start.Add(goalIncrement))
}

// NewIncomeFund creates an income fund that receipts grow toward goal.
func NewIncomeFund(name string, goal decimal.Decimal) *Fund {
	return newFund(name, FundKindIncome, decimal.Zero, goal)
}

// NewFund creates a fund of the given kind. For budget funds first is the
// budgeted amount; for savings funds first is the start and second the goal
// increment; for income funds first is the goal.
func NewFund(kind FundKind, name string, first, second decimal.Decimal) (*Fund, error) {
	switch kind {
	case FundKindBudget:
		return NewBudgetFund(name, first), nil
	case FundKindSavings:
		return NewSavingsFund(name, first, second), nil
	case FundKindIncome:
		return NewIncomeFund(name, first), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFundKind, kind)
	}
}

func newFund(name string, kind FundKind, begin, end decimal.Decimal) *Fund {
	return &Fund{
		Name:    name,
		Kind:    kind,
		Current: NewAmount(begin),
		Begin:   begin,
		End:     end,
	}
}

// Deposit credits the fund.
func (f *Fund) Deposit(amount decimal.Decimal) {
	f.Current.Deposit(amount)
}

// Withdraw debits the fund.
func (f *Fund) Withdraw(amount decimal.Decimal) {
	f.Current.Withdraw(amount)
}

// Reset restores the current amount to the fund's starting bound.
func (f *Fund) Reset() {
	f.Current = NewAmount(f.Begin)
}

// Progress returns how far the fund has moved toward its bound on a 0-20
// scale, truncated toward zero. Values outside 0-20 are returned as is when
// the current amount is past a bound. A zero-width range reports 0.
func (f *Fund) Progress() int {
	scale := decimal.NewFromInt(ProgressScale)
	current := f.Current.Decimal()

	var p decimal.Decimal

	switch f.Kind {
	case FundKindBudget:
		if f.Begin.IsZero() {
			return 0
		}
		p = scale.Mul(f.Begin.Sub(current)).Div(f.Begin)
	case FundKindSavings:
		span := f.End.Sub(f.Begin)
		if span.IsZero() {
			return 0
		}
		p = scale.Sub(scale.Mul(f.End.Sub(current)).Div(span))
	case FundKindIncome:
		if f.End.IsZero() {
			return 0
		}
		p = scale.Mul(current).Div(f.End)
	default:
		return 0
	}

	return int(p.Truncate(0).IntPart())
}

// Clone returns a copy of the fund.
func (f *Fund) Clone() *Fund {
	c := *f
	return &c
}
