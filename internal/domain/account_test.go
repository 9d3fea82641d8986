package domain

import (
	"errors"
	"testing"
	"time"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func sampleFunds() []*Fund {
	return []*Fund{
		NewBudgetFund("Groceries", dec("200.00")),
		NewBudgetFund("Gas", dec("50.00")),
		NewSavingsFund("Emergency Fund", dec("500.00"), dec("500.00")),
	}
}

func TestNewAccount_ReplaysTransactions(t *testing.T) {
	txs := []Transaction{
		NewDeposit(day, dec("18.34"), "Groceries", "HEB", "For kishik"),
		NewWithdrawal(day, dec("18.34"), "Groceries", "HEB", "For kishik"),
		NewDeposit(day, dec("18.34"), "Groceries", "HEB", "For kishik"),
		NewWithdrawal(day, dec("18.34"), "Groceries", "HEB", "For kishik"),
		NewWithdrawal(day, dec("20.10"), "Gas", "Shell", "fill up"),
	}
	future := []Transaction{
		NewDeposit(day.AddDate(0, 1, 0), dec("100"), "Emergency Fund", "Employer", "save"),
	}

	acc, err := NewAccount("BOA Checking", AmountFromFloat(823.00), sampleFunds(), txs, future)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if acc.Balance.String() != "-20.10" {
		t.Errorf("expected balance -20.10, got %s", acc.Balance)
	}
	if acc.Starting.String() != "823.00" {
		t.Errorf("expected starting 823.00, got %s", acc.Starting)
	}
	if acc.Total().String() != "802.90" {
		t.Errorf("expected total 802.90, got %s", acc.Total())
	}

	groceries, _ := acc.Fund("Groceries")
	if groceries.Current.String() != "200.00" {
		t.Errorf("expected groceries 200.00, got %s", groceries.Current)
	}

	gas, _ := acc.Fund("Gas")
	if gas.Current.String() != "29.90" {
		t.Errorf("expected gas 29.90, got %s", gas.Current)
	}

	if len(acc.Transactions) != 5 || len(acc.Pending) != 1 {
		t.Errorf("expected 5 applied and 1 pending, got %d and %d", len(acc.Transactions), len(acc.Pending))
	}
}

func TestNewAccount_UnknownFund(t *testing.T) {
	txs := []Transaction{NewDeposit(day, dec("1"), "Rent", "Landlord", "")}

	_, err := NewAccount("Checking", ZeroAmount(), sampleFunds(), txs, nil)
	if !errors.Is(err, ErrFundNotFound) {
		t.Fatalf("expected ErrFundNotFound, got %v", err)
	}
}

func TestNewAccount_DuplicateFund(t *testing.T) {
	funds := append(sampleFunds(), NewBudgetFund("Gas", dec("10")))

	_, err := NewAccount("Checking", ZeroAmount(), funds, nil, nil)
	if !errors.Is(err, ErrDuplicateFund) {
		t.Fatalf("expected ErrDuplicateFund, got %v", err)
	}
}

func TestAccount_ProcessTransaction(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		balance string
		fund    string
	}{
		{name: "deposit credits both", tx: NewDeposit(day, dec("25.50"), "Gas", "", ""), balance: "25.50", fund: "75.50"},
		{name: "withdrawal debits both", tx: NewWithdrawal(day, dec("25.50"), "Gas", "", ""), balance: "-25.50", fund: "24.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := NewAccount("Checking", ZeroAmount(), sampleFunds(), nil, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err := acc.ProcessTransaction(tt.tx); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			gas, _ := acc.Fund("Gas")
			if acc.Balance.String() != tt.balance {
				t.Errorf("expected balance %s, got %s", tt.balance, acc.Balance)
			}
			if gas.Current.String() != tt.fund {
				t.Errorf("expected fund %s, got %s", tt.fund, gas.Current)
			}
			if len(acc.Transactions) != 1 {
				t.Errorf("expected 1 applied transaction, got %d", len(acc.Transactions))
			}
		})
	}
}

func TestAccount_ProcessTransactionUnknownFund(t *testing.T) {
	acc, _ := NewAccount("Checking", ZeroAmount(), sampleFunds(), nil, nil)

	err := acc.ProcessTransaction(NewDeposit(day, dec("5"), "Rent", "", ""))
	if !errors.Is(err, ErrFundNotFound) {
		t.Fatalf("expected ErrFundNotFound, got %v", err)
	}
	if !acc.Balance.Equal(ZeroAmount()) || len(acc.Transactions) != 0 {
		t.Errorf("expected account untouched, got balance %s and %d transactions", acc.Balance, len(acc.Transactions))
	}
}

func TestAccount_AddTransactionDoesNotApply(t *testing.T) {
	acc, _ := NewAccount("Checking", ZeroAmount(), sampleFunds(), nil, nil)
	acc.AddTransaction(NewDeposit(day, dec("10"), "Gas", "", ""))

	if !acc.Balance.Equal(ZeroAmount()) {
		t.Errorf("expected pending transaction not applied, balance %s", acc.Balance)
	}
	if len(acc.Pending) != 1 {
		t.Errorf("expected 1 pending transaction, got %d", len(acc.Pending))
	}
}

func TestAccount_ProcessTransactionsIsIdempotent(t *testing.T) {
	acc, _ := NewAccount("Checking", ZeroAmount(), sampleFunds(), nil, nil)
	acc.AddTransaction(NewDeposit(day, dec("10"), "Gas", "", ""))
	acc.AddTransaction(NewWithdrawal(day, dec("4"), "Groceries", "", ""))

	n, err := acc.ProcessTransactions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 processed, got %d", n)
	}

	n, err = acc.ProcessTransactions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected second call to process nothing, got %d", n)
	}

	if acc.Balance.String() != "6.00" {
		t.Errorf("expected balance 6.00 after two calls, got %s", acc.Balance)
	}
	if len(acc.Pending) != 0 || len(acc.Transactions) != 2 {
		t.Errorf("expected 0 pending and 2 applied, got %d and %d", len(acc.Pending), len(acc.Transactions))
	}
}

func TestAccount_ProcessTransactionsAllOrNothing(t *testing.T) {
	acc, _ := NewAccount("Checking", ZeroAmount(), sampleFunds(), nil, nil)
	acc.AddTransaction(NewDeposit(day, dec("10"), "Gas", "", ""))
	acc.AddTransaction(NewDeposit(day, dec("10"), "Rent", "", ""))

	_, err := acc.ProcessTransactions()
	if !errors.Is(err, ErrFundNotFound) {
		t.Fatalf("expected ErrFundNotFound, got %v", err)
	}

	if !acc.Balance.Equal(ZeroAmount()) {
		t.Errorf("expected nothing applied, balance %s", acc.Balance)
	}
	if len(acc.Pending) != 2 {
		t.Errorf("expected both transactions still pending, got %d", len(acc.Pending))
	}
}

func TestAccount_ProcessDue(t *testing.T) {
	acc, _ := NewAccount("Checking", ZeroAmount(), sampleFunds(), nil, nil)
	acc.AddTransaction(NewDeposit(day, dec("1"), "Gas", "", "first"))
	acc.AddTransaction(NewDeposit(day.AddDate(0, 0, 10), dec("2"), "Gas", "", "later"))
	acc.AddTransaction(NewDeposit(day.AddDate(0, 0, 1), dec("4"), "Gas", "", "second"))

	n, err := acc.ProcessDue(day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 processed, got %d", n)
	}

	if acc.Balance.String() != "5.00" {
		t.Errorf("expected balance 5.00, got %s", acc.Balance)
	}
	if len(acc.Pending) != 1 || acc.Pending[0].Description != "later" {
		t.Errorf("expected only the later transaction pending, got %+v", acc.Pending)
	}
	if acc.Transactions[0].Description != "first" || acc.Transactions[1].Description != "second" {
		t.Errorf("expected applied order preserved, got %+v", acc.Transactions)
	}
}

func TestAccount_SetupIsIdempotent(t *testing.T) {
	txs := []Transaction{NewWithdrawal(day, dec("100.00"), "Groceries", "HEB", "")}
	acc, _ := NewAccount("Checking", ZeroAmount(), sampleFunds(), txs, nil)

	if err := acc.Setup(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := acc.Setup(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	groceries, _ := acc.Fund("Groceries")
	if acc.Balance.String() != "-100.00" {
		t.Errorf("expected balance -100.00, got %s", acc.Balance)
	}
	if groceries.Progress() != 10 {
		t.Errorf("expected groceries progress 10, got %d", groceries.Progress())
	}
}

func TestAccount_AddFundDoesNotReprocess(t *testing.T) {
	acc, _ := NewAccount("Checking", ZeroAmount(), sampleFunds(), nil, nil)
	_ = acc.ProcessTransaction(NewDeposit(day, dec("5"), "Gas", "", ""))

	if err := acc.AddFund(NewIncomeFund("Paycheck", dec("2000"))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	paycheck, err := acc.Fund("Paycheck")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paycheck.Current.String() != "0.00" {
		t.Errorf("expected new fund untouched, got %s", paycheck.Current)
	}

	if err := acc.AddFund(NewIncomeFund("Paycheck", dec("1"))); !errors.Is(err, ErrDuplicateFund) {
		t.Errorf("expected ErrDuplicateFund, got %v", err)
	}
}

func TestAccount_FindFundIndex(t *testing.T) {
	acc, _ := NewAccount("Checking", ZeroAmount(), sampleFunds(), nil, nil)

	i, err := acc.FindFundIndex("Emergency Fund")
	if err != nil || i != 2 {
		t.Fatalf("expected index 2, got %d (%v)", i, err)
	}

	i, err = acc.FindFundIndex("Vacation")
	if !errors.Is(err, ErrFundNotFound) {
		t.Fatalf("expected ErrFundNotFound, got %v", err)
	}
	if i != -1 {
		t.Errorf("expected -1 for missing fund, got %d", i)
	}
}

func TestAccount_Transfer(t *testing.T) {
	a, _ := NewAccount("A", ZeroAmount(), sampleFunds(), []Transaction{
		NewDeposit(day, dec("100.00"), "Emergency Fund", "Employer", ""),
	}, nil)
	b, _ := NewAccount("B", ZeroAmount(), sampleFunds(), nil, nil)

	err := a.Transfer(NewDeposit(day, dec("20.00"), "Emergency Fund", "B", "move").WithID("tx-debit"), b, "tx-credit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Balance.String() != "80.00" {
		t.Errorf("expected sender balance 80.00, got %s", a.Balance)
	}
	if b.Balance.String() != "20.00" {
		t.Errorf("expected receiver balance 20.00, got %s", b.Balance)
	}

	last := a.Transactions[len(a.Transactions)-1]
	if last.Kind != TransactionKindWithdrawal {
		t.Errorf("expected sender to record a withdrawal, got %q", last.Kind)
	}
	if b.Transactions[0].Kind != TransactionKindDeposit {
		t.Errorf("expected receiver to record a deposit, got %q", b.Transactions[0].Kind)
	}
	if last.ID != "tx-debit" || b.Transactions[0].ID != "tx-credit" {
		t.Errorf("expected legs tx-debit/tx-credit, got %s/%s", last.ID, b.Transactions[0].ID)
	}
}

func TestAccount_TransferFailures(t *testing.T) {
	a, _ := NewAccount("A", ZeroAmount(), sampleFunds(), nil, nil)
	b, _ := NewAccount("B", ZeroAmount(), []*Fund{NewBudgetFund("Rent", dec("900"))}, nil, nil)

	err := a.Transfer(NewDeposit(day, dec("20"), "Gas", "", ""), b, "")
	if !errors.Is(err, ErrFundNotFound) {
		t.Fatalf("expected ErrFundNotFound, got %v", err)
	}
	if !a.Balance.Equal(ZeroAmount()) || len(a.Transactions) != 0 {
		t.Errorf("expected sender untouched when receiver lacks the fund")
	}

	if err := a.Transfer(NewDeposit(day, dec("20"), "Gas", "", ""), a, ""); !errors.Is(err, ErrSameAccount) {
		t.Errorf("expected ErrSameAccount, got %v", err)
	}
}

func TestAccount_CloneIsDeep(t *testing.T) {
	acc, _ := NewAccount("Checking", ZeroAmount(), sampleFunds(), nil, nil)
	c := acc.Clone()

	_ = c.ProcessTransaction(NewWithdrawal(day, dec("10"), "Gas", "", ""))
	c.AddTransaction(NewDeposit(day, dec("1"), "Gas", "", ""))

	gas, _ := acc.Fund("Gas")
	if gas.Current.String() != "50.00" {
		t.Errorf("expected original fund untouched, got %s", gas.Current)
	}
	if len(acc.Transactions) != 0 || len(acc.Pending) != 0 {
		t.Errorf("expected original lists untouched")
	}
}

func TestAccount_FundTotal(t *testing.T) {
	acc, _ := NewAccount("Checking", ZeroAmount(), sampleFunds(), nil, nil)

	if !acc.FundTotal().Equal(dec("750")) {
		t.Errorf("expected fund total 750, got %s", acc.FundTotal())
	}
}
