package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account owns a set of funds and the transactions applied to them.
//
// Balance and every fund's Current amount are derived: they start at zero and
// at each fund's Begin bound, and are rebuilt by replaying Transactions in
// order. Pending holds transactions that were added but not yet applied.
//
// An Account is not safe for concurrent use.
type Account struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ID           string
	Name         string
	Starting     Amount
	Balance      Amount
	Funds        []*Fund
	Transactions []Transaction
	Pending      []Transaction
}

// NewAccount creates an account and replays transactions into its balance and funds.
func NewAccount(name string, starting Amount, funds []*Fund, transactions, future []Transaction) (*Account, error) {
	a := &Account{
		Name:         name,
		Starting:     starting,
		Balance:      ZeroAmount(),
		Funds:        make([]*Fund, 0, len(funds)),
		Transactions: append([]Transaction(nil), transactions...),
		Pending:      append([]Transaction(nil), future...),
	}

	for _, f := range funds {
		if err := a.AddFund(f); err != nil {
			return nil, err
		}
	}

	if err := a.Setup(); err != nil {
		return nil, err
	}

	return a, nil
}

// Setup resets balance and funds and replays every applied transaction.
// Calling it again yields the same state.
func (a *Account) Setup() error {
	if err := a.checkFunds(a.Transactions); err != nil {
		return err
	}

	a.Balance = ZeroAmount()
	for _, f := range a.Funds {
		f.Reset()
	}

	for _, tx := range a.Transactions {
		if err := a.apply(tx); err != nil {
			return err
		}
	}

	return nil
}

// AddFund appends a fund. Existing transactions are not reprocessed against it.
func (a *Account) AddFund(f *Fund) error {
	if _, err := a.FindFundIndex(f.Name); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateFund, f.Name)
	}

	a.Funds = append(a.Funds, f)
	return nil
}

// AddTransaction queues tx as pending. It is applied by ProcessTransactions.
func (a *Account) AddTransaction(tx Transaction) {
	a.Pending = append(a.Pending, tx)
}

// FindFundIndex returns the position of the fund called name.
func (a *Account) FindFundIndex(name string) (int, error) {
	for i, f := range a.Funds {
		if f.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrFundNotFound, name)
}

// Fund returns the fund called name.
func (a *Account) Fund(name string) (*Fund, error) {
	i, err := a.FindFundIndex(name)
	if err != nil {
		return nil, err
	}
	return a.Funds[i], nil
}

// ProcessTransaction applies tx to the balance and its fund and records it as applied.
func (a *Account) ProcessTransaction(tx Transaction) error {
	if err := a.apply(tx); err != nil {
		return err
	}

	a.Transactions = append(a.Transactions, tx)
	return nil
}

// ProcessTransactions applies every pending transaction in order and moves
// them to the applied list. It returns the number applied. If any pending
// transaction names an unknown fund nothing is applied.
func (a *Account) ProcessTransactions() (int, error) {
	return a.process(func(Transaction) bool { return true })
}

// ProcessDue applies the pending transactions dated on or before asOf. The
// remaining pending transactions keep their order.
func (a *Account) ProcessDue(asOf time.Time) (int, error) {
	return a.process(func(tx Transaction) bool { return tx.DueBy(asOf) })
}

func (a *Account) process(due func(Transaction) bool) (int, error) {
	var ready, rest []Transaction
	for _, tx := range a.Pending {
		if due(tx) {
			ready = append(ready, tx)
		} else {
			rest = append(rest, tx)
		}
	}

	if err := a.checkFunds(ready); err != nil {
		return 0, err
	}

	for _, tx := range ready {
		if err := a.ProcessTransaction(tx); err != nil {
			return 0, err
		}
	}

	a.Pending = rest
	return len(ready), nil
}

// Transfer moves tx.Amount from a to other: a records a withdrawal and other
// records a deposit, both against tx.Fund. The deposit leg carries creditID so
// each leg has its own ID. Both funds are looked up before either account
// changes.
func (a *Account) Transfer(tx Transaction, other *Account, creditID string) error {
	if other == a {
		return ErrSameAccount
	}

	if _, err := a.FindFundIndex(tx.Fund); err != nil {
		return fmt.Errorf("sender %s: %w", a.Name, err)
	}

	if _, err := other.FindFundIndex(tx.Fund); err != nil {
		return fmt.Errorf("receiver %s: %w", other.Name, err)
	}

	debit := tx.Clone()
	debit.Kind = TransactionKindWithdrawal

	credit := tx.Clone()
	credit.Kind = TransactionKindDeposit
	credit.ID = creditID

	if err := a.ProcessTransaction(debit); err != nil {
		return err
	}

	return other.ProcessTransaction(credit)
}

// Total returns the starting amount plus the balance.
func (a *Account) Total() Amount {
	total := a.Starting
	total.Deposit(a.Balance.Decimal())
	return total
}

// FundTotal returns the sum of every fund's current amount.
func (a *Account) FundTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, f := range a.Funds {
		sum = sum.Add(f.Current.Decimal())
	}
	return sum
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	c := *a

	c.Funds = make([]*Fund, len(a.Funds))
	for i, f := range a.Funds {
		c.Funds[i] = f.Clone()
	}

	c.Transactions = append([]Transaction(nil), a.Transactions...)
	c.Pending = append([]Transaction(nil), a.Pending...)

	return &c
}

func (a *Account) apply(tx Transaction) error {
	i, err := a.FindFundIndex(tx.Fund)
	if err != nil {
		return err
	}

	fund := a.Funds[i]

	switch tx.Kind {
	case TransactionKindDeposit:
		a.Balance.Deposit(tx.Amount)
		fund.Deposit(tx.Amount)
	case TransactionKindWithdrawal:
		a.Balance.Withdraw(tx.Amount)
		fund.Withdraw(tx.Amount)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransactionKind, tx.Kind)
	}

	return nil
}

// checkFunds verifies every transaction can be applied before any is.
func (a *Account) checkFunds(txs []Transaction) error {
	for _, tx := range txs {
		if tx.Kind != TransactionKindDeposit && tx.Kind != TransactionKindWithdrawal {
			return fmt.Errorf("%w: %q", ErrInvalidTransactionKind, tx.Kind)
		}
		if _, err := a.FindFundIndex(tx.Fund); err != nil {
			return err
		}
	}
	return nil
}
