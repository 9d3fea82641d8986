package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/brook/internal/domain"
	"github.com/iho/brook/internal/usecase"
)

// FundRequest describes a fund. Budget funds use amount; savings funds use
// amount as the starting point and goal as the increment; income funds use goal.
type FundRequest struct {
	Name   string          `json:"name"`
	Kind   string          `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
	Goal   decimal.Decimal `json:"goal"`
}

// ToUseCaseInput converts to use case input.
func (r FundRequest) ToUseCaseInput() (usecase.FundInput, error) {
	kind, err := domain.ParseFundKind(r.Kind)
	if err != nil {
		return usecase.FundInput{}, err
	}

	return usecase.FundInput{
		Name:   r.Name,
		Kind:   kind,
		Amount: r.Amount,
		Goal:   r.Goal,
	}, nil
}

// TransactionRequest describes a deposit or withdrawal. Date is YYYY-MM-DD
// or MM/DD/YYYY; empty means today.
type TransactionRequest struct {
	Date        string          `json:"date,omitempty"`
	Kind        string          `json:"kind"`
	Fund        string          `json:"fund"`
	Entity      string          `json:"entity"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r TransactionRequest) ToUseCaseInput() (usecase.TransactionInput, error) {
	kind, err := domain.ParseTransactionKind(r.Kind)
	if err != nil {
		return usecase.TransactionInput{}, err
	}

	date, err := parseOptionalDate(r.Date)
	if err != nil {
		return usecase.TransactionInput{}, err
	}

	return usecase.TransactionInput{
		Date:        date,
		Kind:        kind,
		Fund:        r.Fund,
		Entity:      r.Entity,
		Description: r.Description,
		Amount:      r.Amount,
	}, nil
}

// TransactionRequestFromDomain builds a request that recreates tx.
func TransactionRequestFromDomain(tx domain.Transaction) TransactionRequest {
	return TransactionRequest{
		Date:        tx.Date.Format(domain.DateLayout),
		Kind:        string(tx.Kind),
		Fund:        tx.Fund,
		Entity:      tx.Entity,
		Description: tx.Description,
		Amount:      tx.Amount,
	}
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name         string               `json:"name"`
	Starting     decimal.Decimal      `json:"starting"`
	Funds        []FundRequest        `json:"funds,omitempty"`
	Transactions []TransactionRequest `json:"transactions,omitempty"`
	Future       []TransactionRequest `json:"future,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() (usecase.CreateAccountInput, error) {
	input := usecase.CreateAccountInput{
		Name:     r.Name,
		Starting: r.Starting,
	}

	for i, f := range r.Funds {
		fi, err := f.ToUseCaseInput()
		if err != nil {
			return usecase.CreateAccountInput{}, fmt.Errorf("funds[%d]: %w", i, err)
		}
		input.Funds = append(input.Funds, fi)
	}

	var err error
	if input.Transactions, err = transactionInputs("transactions", r.Transactions); err != nil {
		return usecase.CreateAccountInput{}, err
	}
	if input.Future, err = transactionInputs("future", r.Future); err != nil {
		return usecase.CreateAccountInput{}, err
	}

	return input, nil
}

// ProcessTransactionsRequest represents a request to apply pending
// transactions. With as_of set only transactions dated on or before it apply.
type ProcessTransactionsRequest struct {
	AsOf string `json:"as_of,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ProcessTransactionsRequest) ToUseCaseInput(accountID string) (usecase.ProcessTransactionsInput, error) {
	asOf, err := parseOptionalDate(r.AsOf)
	if err != nil {
		return usecase.ProcessTransactionsInput{}, err
	}

	return usecase.ProcessTransactionsInput{AccountID: accountID, AsOf: asOf}, nil
}

// CreateTransferRequest represents a request to move money between accounts.
type CreateTransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Fund          string          `json:"fund"`
	Entity        string          `json:"entity,omitempty"`
	Description   string          `json:"description,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() (usecase.TransferInput, error) {
	date, err := parseOptionalDate(r.Date)
	if err != nil {
		return usecase.TransferInput{}, err
	}

	return usecase.TransferInput{
		Date:          date,
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Fund:          r.Fund,
		Entity:        r.Entity,
		Description:   r.Description,
		Amount:        r.Amount,
	}, nil
}

func transactionInputs(field string, reqs []TransactionRequest) ([]usecase.TransactionInput, error) {
	var inputs []usecase.TransactionInput
	for i, tr := range reqs {
		in, err := tr.ToUseCaseInput()
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := domain.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
