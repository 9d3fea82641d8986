package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/brook/internal/domain"
)

// TransferUseCase handles transfers between two accounts.
type TransferUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
	recorder    Recorder
}

// NewTransferUseCase creates a new TransferUseCase. A nil recorder discards metrics.
func NewTransferUseCase(accountRepo AccountRepository, idGen IDGenerator, recorder Recorder) *TransferUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}

	return &TransferUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
		recorder:    recorder,
	}
}

// TransferInput represents input for a transfer. The fund must exist in both accounts.
type TransferInput struct {
	Date          *time.Time
	FromAccountID string
	ToAccountID   string
	Fund          string
	Entity        string
	Description   string
	Amount        decimal.Decimal
}

// TransferResult holds both accounts after a transfer. Transaction is the
// withdrawal recorded on From and CreditID the ID of the matching deposit on To.
type TransferResult struct {
	From        *domain.Account
	To          *domain.Account
	Transaction domain.Transaction
	CreditID    string
}

// Transfer debits the sender and credits the receiver by the same amount.
// Either both accounts change or neither does.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateTransferAmount(input.Amount); err != nil {
		return nil, err
	}

	tx, err := buildTransaction(TransactionInput{
		Date:        input.Date,
		Kind:        domain.TransactionKindWithdrawal,
		Fund:        input.Fund,
		Entity:      input.Entity,
		Description: input.Description,
		Amount:      input.Amount,
	}, uc.idGen)
	if err != nil {
		return nil, err
	}

	creditID := uc.idGen.Generate()

	from, to, err := uc.accountRepo.UpdatePair(ctx, input.FromAccountID, input.ToAccountID, func(from, to *domain.Account) error {
		if err := from.Transfer(tx, to, creditID); err != nil {
			return err
		}

		now := time.Now().UTC()
		from.UpdatedAt = now
		to.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recorder.TransferCompleted(input.Amount)
	uc.recorder.ObserveAccount(from)
	uc.recorder.ObserveAccount(to)

	return &TransferResult{From: from, To: to, Transaction: tx, CreditID: creditID}, nil
}
