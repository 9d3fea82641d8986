package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/brook/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
	recorder    Recorder
}

// NewAccountUseCase creates a new AccountUseCase. A nil recorder discards metrics.
func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator, recorder Recorder) *AccountUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}

	return &AccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
		recorder:    recorder,
	}
}

// FundInput describes a fund to create. Budget funds use Amount; savings
// funds start at Amount and aim for Amount+Goal; income funds aim for Goal.
type FundInput struct {
	Name   string
	Kind   domain.FundKind
	Amount decimal.Decimal
	Goal   decimal.Decimal
}

// TransactionInput describes a deposit or withdrawal. A nil Date means today.
type TransactionInput struct {
	Date        *time.Time
	Kind        domain.TransactionKind
	Fund        string
	Entity      string
	Description string
	Amount      decimal.Decimal
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name         string
	Starting     decimal.Decimal
	Funds        []FundInput
	Transactions []TransactionInput
	Future       []TransactionInput
}

// CreateAccount creates an account and replays its initial transactions.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	funds := make([]*domain.Fund, 0, len(input.Funds))
	for _, fi := range input.Funds {
		fund, err := buildFund(fi)
		if err != nil {
			return nil, err
		}
		funds = append(funds, fund)
	}

	transactions, err := buildTransactions(input.Transactions, uc.idGen)
	if err != nil {
		return nil, err
	}

	future, err := buildTransactions(input.Future, uc.idGen)
	if err != nil {
		return nil, err
	}

	account, err := domain.NewAccount(input.Name, domain.NewAmount(input.Starting), funds, transactions, future)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account.ID = uc.idGen.Generate()
	account.CreatedAt = now
	account.UpdatedAt = now

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.recorder.AccountCreated()
	uc.recorder.TransactionsApplied(len(transactions))
	uc.recorder.ObserveAccount(account)

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	input.Limit, input.Offset, _ = domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}

// AddFundInput represents input for adding a fund to an account.
type AddFundInput struct {
	AccountID string
	Fund      FundInput
}

// AddFund appends a fund to an account. Existing transactions are not reprocessed.
func (uc *AccountUseCase) AddFund(ctx context.Context, input AddFundInput) (*domain.Account, error) {
	fund, err := buildFund(input.Fund)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.Update(ctx, input.AccountID, func(account *domain.Account) error {
		if err := account.AddFund(fund); err != nil {
			return err
		}
		account.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recorder.ObserveAccount(account)
	return account, nil
}

// ReplayAccount recomputes an account's balance and funds from its applied transactions.
func (uc *AccountUseCase) ReplayAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.Update(ctx, id, func(account *domain.Account) error {
		if err := account.Setup(); err != nil {
			return err
		}
		account.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recorder.ObserveAccount(account)
	return account, nil
}

func buildFund(input FundInput) (*domain.Fund, error) {
	if err := domain.ValidateFundName(input.Name); err != nil {
		return nil, err
	}

	switch input.Kind {
	case domain.FundKindBudget:
		return domain.NewBudgetFund(input.Name, input.Amount), nil
	case domain.FundKindSavings:
		return domain.NewSavingsFund(input.Name, input.Amount, input.Goal), nil
	case domain.FundKindIncome:
		return domain.NewIncomeFund(input.Name, input.Goal), nil
	default:
		return domain.NewFund(input.Kind, input.Name, input.Amount, input.Goal)
	}
}

func buildTransaction(input TransactionInput, idGen IDGenerator) (domain.Transaction, error) {
	if err := domain.ValidateTransactionAmount(input.Amount); err != nil {
		return domain.Transaction{}, err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return domain.Transaction{}, err
	}

	date := domain.Today()
	if input.Date != nil {
		date = *input.Date
	}

	tx, err := domain.NewTransaction(input.Kind, date, input.Amount, input.Fund, input.Entity, input.Description)
	if err != nil {
		return domain.Transaction{}, err
	}

	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, err
	}

	return tx.WithID(idGen.Generate()), nil
}

func buildTransactions(inputs []TransactionInput, idGen IDGenerator) ([]domain.Transaction, error) {
	txs := make([]domain.Transaction, 0, len(inputs))
	for _, in := range inputs {
		tx, err := buildTransaction(in, idGen)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
