package memory

import (
	"context"
	"sync"

	"github.com/iho/brook/internal/domain"
)

type entry struct {
	mu      sync.Mutex
	account *domain.Account
}

// AccountRepository implements usecase.AccountRepository in process memory.
//
// Stored accounts are never handed out: reads return clones, and Update
// works on a clone that replaces the stored account only when fn succeeds.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*entry
	order    []string
}

// NewAccountRepository creates an empty AccountRepository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*entry),
	}
}

// Create stores a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; ok {
		return domain.ErrAccountExists
	}

	r.accounts[account.ID] = &entry{account: account.Clone()}
	r.order = append(r.order, account.ID)

	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.account.Clone(), nil
}

// List returns accounts in creation order.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	ids := r.order
	if offset >= len(ids) {
		r.mu.RUnlock()
		return []*domain.Account{}, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}

	entries := make([]*entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, r.accounts[id])
	}
	r.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		accounts = append(accounts, e.account.Clone())
		e.mu.Unlock()
	}

	return accounts, nil
}

// Update runs fn on a copy of the account and stores the copy if fn
// returns nil. Calls for the same account are serialized.
func (r *AccountRepository) Update(ctx context.Context, id string, fn func(*domain.Account) error) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	working := e.account.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	e.account = working.Clone()
	return working, nil
}

// UpdatePair runs fn on copies of two accounts and stores both only if fn
// returns nil. Locks are taken in ID order so concurrent pairs cannot deadlock.
func (r *AccountRepository) UpdatePair(ctx context.Context, firstID, secondID string, fn func(first, second *domain.Account) error) (*domain.Account, *domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if firstID == secondID {
		return nil, nil, domain.ErrSameAccount
	}

	first, err := r.lookup(firstID)
	if err != nil {
		return nil, nil, err
	}

	second, err := r.lookup(secondID)
	if err != nil {
		return nil, nil, err
	}

	locked := []*entry{first, second}
	if secondID < firstID {
		locked[0], locked[1] = second, first
	}

	for _, e := range locked {
		e.mu.Lock()
		defer e.mu.Unlock()
	}

	a, b := first.account.Clone(), second.account.Clone()
	if err := fn(a, b); err != nil {
		return nil, nil, err
	}

	first.account = a.Clone()
	second.account = b.Clone()

	return a, b, nil
}

func (r *AccountRepository) lookup(id string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return e, nil
}
