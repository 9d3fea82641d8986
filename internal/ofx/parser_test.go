package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/brook/internal/domain"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-18.34
<FITID>2024011501
<NAME>HEB GROCERY
<MEMO>weekly shop
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>2000.00
<FITID>2024013101
<NAME>PAYROLL
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240201120000[0:GMT]
<DTEND>20240229120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240210120000[0:GMT]
<TRNAMT>-42.10
<FITID>2024021001
<NAME>SHELL OIL
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-42.10
<DTASOF>20240229120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParser_BankStatement(t *testing.T) {
	parser := NewParser()

	txs, err := parser.Parse(context.Background(), strings.NewReader(sampleBankOFX), "Groceries")
	require.NoError(t, err)
	require.Len(t, txs, 2)

	debit := txs[0]
	assert.Equal(t, domain.TransactionKindWithdrawal, debit.Kind)
	assert.Equal(t, "18.34", debit.Amount.StringFixed(2))
	assert.Equal(t, "Groceries", debit.Fund)
	assert.Equal(t, "HEB GROCERY", debit.Entity)
	assert.Equal(t, "weekly shop", debit.Description)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), debit.Date)
	assert.Empty(t, debit.ID)

	credit := txs[1]
	assert.Equal(t, domain.TransactionKindDeposit, credit.Kind)
	assert.Equal(t, "2000.00", credit.Amount.StringFixed(2))
	assert.Equal(t, "PAYROLL", credit.Entity)
}

func TestParser_CreditCardStatement(t *testing.T) {
	parser := NewParser()

	txs, err := parser.Parse(context.Background(), strings.NewReader(sampleCreditCardOFX), "Gas")
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, domain.TransactionKindWithdrawal, txs[0].Kind)
	assert.Equal(t, "42.10", txs[0].Amount.StringFixed(2))
	assert.Equal(t, "SHELL OIL", txs[0].Entity)
}

func TestParser_AppliesToAccount(t *testing.T) {
	txs, err := NewParser().Parse(context.Background(), strings.NewReader(sampleBankOFX), "Groceries")
	require.NoError(t, err)

	account, err := domain.NewAccount("Checking", domain.ZeroAmount(), []*domain.Fund{
		domain.NewBudgetFund("Groceries", decimal.NewFromInt(200)),
	}, nil, txs)
	require.NoError(t, err)

	applied, err := account.ProcessTransactions()
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.Equal(t, "1981.66", account.Balance.String())
}

func TestParser_Errors(t *testing.T) {
	parser := NewParser()

	_, err := parser.Parse(context.Background(), strings.NewReader(sampleBankOFX), " ")
	assert.ErrorIs(t, err, ErrEmptyFund)

	_, err = parser.Parse(context.Background(), strings.NewReader("not an ofx file"), "Gas")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = parser.Parse(ctx, strings.NewReader(sampleBankOFX), "Gas")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPreprocess(t *testing.T) {
	in := "\n\n<SEVERITY>Info</SEVERITY>\n<CODE\n"
	out := preprocess(in)

	assert.True(t, strings.HasPrefix(out, "<SEVERITY>INFO</SEVERITY>"), out)
	assert.Contains(t, out, "<CODE>")
}
