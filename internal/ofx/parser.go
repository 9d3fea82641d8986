// Package ofx converts OFX/QFX bank and credit card statements into ledger
// transactions.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/brook/internal/domain"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// SGML files sometimes end a line with an opening tag missing its '>'.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// ErrEmptyFund is returned when no target fund is given.
var ErrEmptyFund = errors.New("ofx: fund name is required")

// Parser implements OFX/QFX statement parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads an OFX/QFX document and returns its transactions in file
// order, all assigned to fund. Credits become deposits and debits become
// withdrawals of the absolute amount. Returned transactions have no ID.
func (p *Parser) Parse(ctx context.Context, r io.Reader, fund string) ([]domain.Transaction, error) {
	if strings.TrimSpace(fund) == "" {
		return nil, ErrEmptyFund
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	log := zerolog.Ctx(ctx)

	var transactions []domain.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		for _, tx := range stmt.BankTranList.Transactions {
			converted, err := convert(tx, fund)
			if err != nil {
				log.Warn().Err(err).Str("account", string(stmt.BankAcctFrom.AcctID)).Msg("skipping OFX transaction")
				continue
			}
			transactions = append(transactions, converted)
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		for _, tx := range stmt.BankTranList.Transactions {
			converted, err := convert(tx, fund)
			if err != nil {
				log.Warn().Err(err).Str("account", string(stmt.CCAcctFrom.AcctID)).Msg("skipping OFX transaction")
				continue
			}
			transactions = append(transactions, converted)
		}
	}

	log.Info().
		Int("total_transactions", len(transactions)).
		Int("bank_statements", bankStmts).
		Int("cc_statements", ccStmts).
		Msg("parsed OFX file")

	return transactions, nil
}

func convert(tx ofxgo.Transaction, fund string) (domain.Transaction, error) {
	amount := decimal.NewFromBigRat(&tx.TrnAmt.Rat, 2)

	entity := strings.TrimSpace(string(tx.Name))
	if tx.Payee != nil && tx.Payee.Name != "" {
		entity = strings.TrimSpace(string(tx.Payee.Name))
	}

	posted := tx.DtPosted.Time
	date := time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC)

	kind := domain.TransactionKindDeposit
	if amount.IsNegative() {
		kind = domain.TransactionKindWithdrawal
	}

	converted, err := domain.NewTransaction(kind, date, amount.Abs(), fund, entity, strings.TrimSpace(string(tx.Memo)))
	if err != nil {
		return domain.Transaction{}, err
	}

	if err := domain.ValidateTransactionAmount(converted.Amount); err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", tx.FiTID, err)
	}

	return converted, nil
}

// preprocess fixes common formatting issues in OFX files.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	return tagFixRegex.ReplaceAllString(content, "$1>")
}
