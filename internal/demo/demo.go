// Package demo builds the sample checking account used by the CLI demo and
// by the server when SEED_DEMO is set.
package demo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/brook/internal/domain"
	"github.com/iho/brook/internal/usecase"
)

// AccountName is the name of the sample account.
const AccountName = "BOA Checking"

// AccountCreator creates accounts.
type AccountCreator interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
}

// Input returns the sample account, with amounts given as floats and rounded
// to the cent: 823.00 starting, three budget and savings funds plus a
// paycheck, four applied grocery transactions that net to zero and the same
// four queued as pending.
func Input(day time.Time) usecase.CreateAccountInput {
	groceries := domain.AmountFromFloat(18.34).Decimal()

	history := func() []usecase.TransactionInput {
		kinds := []domain.TransactionKind{
			domain.TransactionKindDeposit,
			domain.TransactionKindWithdrawal,
			domain.TransactionKindDeposit,
			domain.TransactionKindWithdrawal,
		}
		txs := make([]usecase.TransactionInput, len(kinds))
		for i, kind := range kinds {
			txs[i] = usecase.TransactionInput{
				Date:        &day,
				Kind:        kind,
				Fund:        "Groceries",
				Entity:      "HEB",
				Description: "For kishik",
				Amount:      groceries,
			}
		}
		return txs
	}

	return usecase.CreateAccountInput{
		Name:     AccountName,
		Starting: domain.AmountFromFloat(823.00).Decimal(),
		Funds: []usecase.FundInput{
			{Name: "Groceries", Kind: domain.FundKindBudget, Amount: decimal.NewFromInt(200)},
			{Name: "Gas", Kind: domain.FundKindBudget, Amount: decimal.NewFromInt(50)},
			{Name: "Emergency Fund", Kind: domain.FundKindSavings, Amount: decimal.NewFromInt(500), Goal: decimal.NewFromInt(500)},
			{Name: "Paycheck", Kind: domain.FundKindIncome, Goal: decimal.NewFromInt(2000)},
		},
		Transactions: history(),
		Future:       history(),
	}
}

// Seed creates the sample account through creator.
func Seed(ctx context.Context, creator AccountCreator) (*domain.Account, error) {
	return creator.CreateAccount(ctx, Input(domain.Today()))
}
