package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/brook/internal/domain"
	"github.com/iho/brook/internal/usecase"
)

// FundResponse represents a fund in API responses.
type FundResponse struct {
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Current  domain.Amount   `json:"current"`
	Begin    decimal.Decimal `json:"begin"`
	End      decimal.Decimal `json:"end"`
	Progress int             `json:"progress"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Kind        string          `json:"kind"`
	Fund        string          `json:"fund"`
	Entity      string          `json:"entity"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Starting     domain.Amount         `json:"starting"`
	Balance      domain.Amount         `json:"balance"`
	Total        domain.Amount         `json:"total"`
	Funds        []FundResponse        `json:"funds"`
	Transactions []TransactionResponse `json:"transactions"`
	Pending      []TransactionResponse `json:"pending"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// FundFromDomain converts a domain fund to response.
func FundFromDomain(f *domain.Fund) FundResponse {
	return FundResponse{
		Name:     f.Name,
		Kind:     string(f.Kind),
		Current:  f.Current,
		Begin:    f.Begin,
		End:      f.End,
		Progress: f.Progress(),
	}
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(tx domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		Date:        tx.Date.Format(domain.DateLayout),
		Kind:        string(tx.Kind),
		Fund:        tx.Fund,
		Entity:      tx.Entity,
		Description: tx.Description,
		Amount:      tx.Amount,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []domain.Transaction) []TransactionResponse {
	result := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		result[i] = TransactionFromDomain(tx)
	}
	return result
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	funds := make([]FundResponse, len(a.Funds))
	for i, f := range a.Funds {
		funds[i] = FundFromDomain(f)
	}

	return &AccountResponse{
		ID:           a.ID,
		Name:         a.Name,
		Starting:     a.Starting,
		Balance:      a.Balance,
		Total:        a.Total(),
		Funds:        funds,
		Transactions: TransactionsFromDomain(a.Transactions),
		Pending:      TransactionsFromDomain(a.Pending),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ToDomain rebuilds a domain account from the response. Funds keep the
// amounts reported by the server; nothing is replayed.
func (r *AccountResponse) ToDomain() (*domain.Account, error) {
	account := &domain.Account{
		ID:        r.ID,
		Name:      r.Name,
		Starting:  r.Starting,
		Balance:   r.Balance,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	for _, f := range r.Funds {
		kind, err := domain.ParseFundKind(f.Kind)
		if err != nil {
			return nil, err
		}
		account.Funds = append(account.Funds, &domain.Fund{
			Name:    f.Name,
			Kind:    kind,
			Current: f.Current,
			Begin:   f.Begin,
			End:     f.End,
		})
	}

	var err error
	if account.Transactions, err = transactionsToDomain(r.Transactions); err != nil {
		return nil, err
	}
	if account.Pending, err = transactionsToDomain(r.Pending); err != nil {
		return nil, err
	}

	return account, nil
}

func transactionsToDomain(resps []TransactionResponse) ([]domain.Transaction, error) {
	txs := make([]domain.Transaction, 0, len(resps))
	for _, tr := range resps {
		kind, err := domain.ParseTransactionKind(tr.Kind)
		if err != nil {
			return nil, err
		}
		date, err := domain.ParseDate(tr.Date)
		if err != nil {
			return nil, err
		}
		tx, err := domain.NewTransaction(kind, date, tr.Amount, tr.Fund, tr.Entity, tr.Description)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx.WithID(tr.ID))
	}
	return txs, nil
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// ProcessTransactionsResponse reports how many pending transactions were applied.
type ProcessTransactionsResponse struct {
	Applied int              `json:"applied"`
	Account *AccountResponse `json:"account"`
}

// TransferResponse represents a completed transfer.
type TransferResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	CreditID    string              `json:"credit_id"`
	From        *AccountResponse    `json:"from"`
	To          *AccountResponse    `json:"to"`
}

// TransferFromUseCase converts a transfer result to response.
func TransferFromUseCase(r *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		Transaction: TransactionFromDomain(r.Transaction),
		CreditID:    r.CreditID,
		From:        AccountFromDomain(r.From),
		To:          AccountFromDomain(r.To),
	}
}

// FundDiscrepancyResponse is a fund whose stored amount differs from its replay.
type FundDiscrepancyResponse struct {
	Fund       string          `json:"fund"`
	Recorded   decimal.Decimal `json:"recorded"`
	Calculated decimal.Decimal `json:"calculated"`
}

// ReconciliationResponse represents the result of a reconciliation check.
type ReconciliationResponse struct {
	AccountID         string                    `json:"account_id"`
	RecordedBalance   decimal.Decimal           `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal           `json:"calculated_balance"`
	Difference        decimal.Decimal           `json:"difference"`
	Funds             []FundDiscrepancyResponse `json:"funds,omitempty"`
	IsReconciled      bool                      `json:"is_reconciled"`
	LastChecked       time.Time                 `json:"last_checked"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	resp := &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
	for _, f := range r.Funds {
		resp.Funds = append(resp.Funds, FundDiscrepancyResponse{
			Fund:       f.Fund,
			Recorded:   f.Recorded,
			Calculated: f.Calculated,
		})
	}
	return resp
}

// ReconciliationReportResponse summarizes reconciliation of every account.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a reconciliation report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	resp := &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      make([]*ReconciliationResponse, 0, len(r.Discrepancies)),
		CheckedAt:          r.CheckedAt,
	}
	for _, d := range r.Discrepancies {
		resp.Discrepancies = append(resp.Discrepancies, ReconciliationFromUseCase(d))
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
