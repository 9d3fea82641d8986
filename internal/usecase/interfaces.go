package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/brook/internal/domain"
)

// AccountRepository defines data access for accounts.
//
// Implementations hand out copies: mutating a returned account has no effect
// on the stored one. Update and UpdatePair run fn on a copy and store it only
// when fn returns nil.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	Update(ctx context.Context, id string, fn func(account *domain.Account) error) (*domain.Account, error)
	UpdatePair(ctx context.Context, firstID, secondID string, fn func(first, second *domain.Account) error) (*domain.Account, *domain.Account, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete releases a key whose request did not complete.
	Delete(ctx context.Context, key string) error
}

// Recorder receives ledger events for metrics.
type Recorder interface {
	AccountCreated()
	TransactionsApplied(count int)
	TransferCompleted(amount decimal.Decimal)
	ObserveAccount(account *domain.Account)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) AccountCreated()                   {}
func (NopRecorder) TransactionsApplied(int)           {}
func (NopRecorder) TransferCompleted(decimal.Decimal) {}
func (NopRecorder) ObserveAccount(*domain.Account)    {}
