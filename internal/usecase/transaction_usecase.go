package usecase

import (
	"context"
	"time"

	"github.com/iho/brook/internal/domain"
)

// TransactionUseCase handles queuing and applying transactions on one account.
type TransactionUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
	recorder    Recorder
}

// NewTransactionUseCase creates a new TransactionUseCase. A nil recorder discards metrics.
func NewTransactionUseCase(accountRepo AccountRepository, idGen IDGenerator, recorder Recorder) *TransactionUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}

	return &TransactionUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
		recorder:    recorder,
	}
}

// AddTransactionInput represents input for queuing a transaction.
type AddTransactionInput struct {
	AccountID   string
	Transaction TransactionInput
}

// AddTransaction queues a transaction as pending on an account. It is not
// applied until ProcessTransactions runs.
func (uc *TransactionUseCase) AddTransaction(ctx context.Context, input AddTransactionInput) (*domain.Transaction, error) {
	tx, err := buildTransaction(input.Transaction, uc.idGen)
	if err != nil {
		return nil, err
	}

	_, err = uc.accountRepo.Update(ctx, input.AccountID, func(account *domain.Account) error {
		account.AddTransaction(tx)
		account.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &tx, nil
}

// ProcessTransactionsInput represents input for applying pending transactions.
// With AsOf set only transactions dated on or before it are applied.
type ProcessTransactionsInput struct {
	AsOf      *time.Time
	AccountID string
}

// ProcessTransactionsResult is the outcome of applying pending transactions.
type ProcessTransactionsResult struct {
	Account *domain.Account
	Applied int
}

// ProcessTransactions applies an account's pending transactions. A second
// call with nothing pending applies nothing.
func (uc *TransactionUseCase) ProcessTransactions(ctx context.Context, input ProcessTransactionsInput) (*ProcessTransactionsResult, error) {
	var applied int

	account, err := uc.accountRepo.Update(ctx, input.AccountID, func(account *domain.Account) error {
		var err error
		if input.AsOf != nil {
			applied, err = account.ProcessDue(*input.AsOf)
		} else {
			applied, err = account.ProcessTransactions()
		}
		if err != nil {
			return err
		}

		account.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recorder.TransactionsApplied(applied)
	uc.recorder.ObserveAccount(account)

	return &ProcessTransactionsResult{Account: account, Applied: applied}, nil
}
