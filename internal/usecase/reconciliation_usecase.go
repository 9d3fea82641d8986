package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/brook/internal/domain"
)

// ReconciliationUseCase checks stored account state against a replay of its transactions.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(accountRepo AccountRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
	}
}

// FundDiscrepancy is a fund whose stored amount differs from its replayed amount.
type FundDiscrepancy struct {
	Fund       string
	Recorded   decimal.Decimal
	Calculated decimal.Decimal
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	Funds             []FundDiscrepancy
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount replays a copy of the account and compares balance and
// fund amounts with what is stored. The stored account is not modified.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return reconcile(account)
}

func reconcile(account *domain.Account) (*ReconciliationResult, error) {
	replayed := account.Clone()
	if err := replayed.Setup(); err != nil {
		return nil, fmt.Errorf("failed to replay account %s: %w", account.ID, err)
	}

	result := &ReconciliationResult{
		AccountID:         account.ID,
		RecordedBalance:   account.Balance.Decimal(),
		CalculatedBalance: replayed.Balance.Decimal(),
		Difference:        account.Balance.Decimal().Sub(replayed.Balance.Decimal()),
		LastChecked:       time.Now().UTC(),
	}

	for i, fund := range account.Funds {
		calculated := replayed.Funds[i].Current
		if !fund.Current.Equal(calculated) {
			result.Funds = append(result.Funds, FundDiscrepancy{
				Fund:       fund.Name,
				Recorded:   fund.Current.Decimal(),
				Calculated: calculated.Decimal(),
			})
		}
	}

	result.IsReconciled = result.Difference.IsZero() && len(result.Funds) == 0
	return result, nil
}

// ReconcileAllAccounts reconciles all accounts in the system
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	accounts, err := uc.accountRepo.List(ctx, ReconcileAllLimit, 0)
	if err != nil {
		return nil, err
	}

	results := make([]*ReconciliationResult, 0, len(accounts))
	for _, account := range accounts {
		result, err := reconcile(account)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts: len(results),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
