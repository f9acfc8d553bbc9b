package ofx

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/buildtrack/internal/model"
)

type line struct {
	posted string // YYYYMMDD
	amount string
	fitid  string
	name   string
	memo   string
}

const sgmlHeader = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

`

const okStatus = "<STATUS>\n<CODE>0\n<SEVERITY>INFO\n</STATUS>\n"

const signon = "<SIGNONMSGSRSV1>\n<SONRS>\n" + okStatus +
	"<DTSERVER>20240401093000[0:GMT]\n<LANGUAGE>ENG\n</SONRS>\n</SIGNONMSGSRSV1>\n"

func tranList(lines []line) string {
	var b strings.Builder
	b.WriteString("<BANKTRANLIST>\n<DTSTART>20240301000000[0:GMT]\n<DTEND>20240331000000[0:GMT]\n")
	for _, l := range lines {
		kind := "CREDIT"
		if strings.HasPrefix(l.amount, "-") {
			kind = "DEBIT"
		}
		fmt.Fprintf(&b, "<STMTTRN>\n<TRNTYPE>%s\n<DTPOSTED>%s120000[0:GMT]\n<TRNAMT>%s\n<FITID>%s\n<NAME>%s\n",
			kind, l.posted, l.amount, l.fitid, l.name)
		if l.memo != "" {
			fmt.Fprintf(&b, "<MEMO>%s\n", l.memo)
		}
		b.WriteString("</STMTTRN>\n")
	}
	b.WriteString("</BANKTRANLIST>\n")
	return b.String()
}

// bankStatement renders an SGML savings account statement.
func bankStatement(account string, lines ...line) string {
	return sgmlHeader + "<OFX>\n" + signon +
		"<BANKMSGSRSV1>\n<STMTTRNRS>\n<TRNUID>1\n" + okStatus + "<STMTRS>\n<CURDEF>INR\n" +
		"<BANKACCTFROM>\n<BANKID>HDFC0001234\n<ACCTID>" + account + "\n<ACCTTYPE>SAVINGS\n</BANKACCTFROM>\n" +
		tranList(lines) +
		"<LEDGERBAL>\n<BALAMT>0.00\n<DTASOF>20240331000000[0:GMT]\n</LEDGERBAL>\n</STMTRS>\n</STMTTRNRS>\n</BANKMSGSRSV1>\n</OFX>\n"
}

// cardStatement renders an SGML credit card statement.
func cardStatement(account string, lines ...line) string {
	return sgmlHeader + "<OFX>\n" + signon +
		"<CREDITCARDMSGSRSV1>\n<CCSTMTTRNRS>\n<TRNUID>1\n" + okStatus + "<CCSTMTRS>\n<CURDEF>INR\n" +
		"<CCACCTFROM>\n<ACCTID>" + account + "\n</CCACCTFROM>\n" +
		tranList(lines) +
		"<LEDGERBAL>\n<BALAMT>0.00\n<DTASOF>20240331000000[0:GMT]\n</LEDGERBAL>\n</CCSTMTRS>\n</CCSTMTTRNRS>\n</CREDITCARDMSGSRSV1>\n</OFX>\n"
}

var siteAccount = []line{
	{posted: "20240305", amount: "250000.00", fitid: "S1", name: "NEFT-RAO CONSTRUCTIONS"},
	{posted: "20240312", amount: "-12500.50", fitid: "S2", name: "UPI/Sri Balaji Cement"},
	{posted: "20240320", amount: "-500.00", fitid: "S3", name: "TRANSFER", memo: "Site 4 labour advance"},
}

func parse(t *testing.T, statement string) []model.BankTransaction {
	t.Helper()
	txs, err := NewParser().ParseFile(context.Background(), strings.NewReader(statement))
	require.NoError(t, err)
	return txs
}

func TestParseFile(t *testing.T) {
	tests := []struct {
		name      string
		statement string
		want      int
		wantErr   bool
	}{
		{name: "bank statement", statement: bankStatement("50100123", siteAccount...), want: 3},
		{
			name: "card statement",
			statement: cardStatement("4111222233334444",
				line{posted: "20240308", amount: "-3499.00", fitid: "C1", name: "BUILDMART HARDWARE"}),
			want: 1,
		},
		{name: "statement without transactions", statement: bankStatement("50100123"), want: 0},
		{name: "not ofx", statement: "date,amount\n2024-03-01,100", wantErr: true},
		{name: "empty input", statement: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := NewParser().ParseFile(context.Background(), strings.NewReader(tt.statement))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, txs, tt.want)
			for _, tx := range txs {
				assert.NoError(t, model.Validate(tx), tx.ID)
			}
		})
	}
}

func TestParseFileConvertsLines(t *testing.T) {
	txs := parse(t, bankStatement("50100123", siteAccount...))
	require.Len(t, txs, 3)

	receipt := txs[0]
	assert.Equal(t, model.StableID("ofx", "50100123:S1"), receipt.ID)
	assert.Equal(t, model.Deposit, receipt.Type)
	assert.Equal(t, "RAO CONSTRUCTIONS", receipt.Description)
	assert.True(t, receipt.Amount.Equal(decimal.NewFromInt(250000)), receipt.Amount.String())
	assert.Equal(t, model.ModeBank, receipt.Mode)
	y, m, d := receipt.Date.Date()
	assert.Equal(t, []int{2024, int(time.March), 5}, []int{y, int(m), d})

	cement := txs[1]
	assert.Equal(t, model.Withdrawal, cement.Type)
	assert.Equal(t, model.ModeUPI, cement.Mode)
	assert.Equal(t, "Sri Balaji Cement", cement.Description)
	assert.True(t, cement.Amount.Equal(decimal.RequireFromString("12500.50")), cement.Amount.String())

	advance := txs[2]
	assert.Equal(t, "Site 4 labour advance", advance.Description)
	assert.True(t, advance.Amount.Equal(decimal.NewFromInt(500)))
}

func TestParseFileStableIDs(t *testing.T) {
	first := parse(t, bankStatement("50100123", siteAccount...))
	again := parse(t, bankStatement("50100123", siteAccount...))
	other := parse(t, bankStatement("50100999", siteAccount...))

	for i := range first {
		assert.Equal(t, first[i].ID, again[i].ID, "re-import keeps ids")
		assert.NotEqual(t, first[i].ID, other[i].ID, "same FITID on another account differs")
	}
	assert.NotEqual(t, first[0].ID, first[1].ID)
}

func TestPreprocessOFX(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "leading blank lines", in: "\n\n  OFXHEADER:100", want: "OFXHEADER:100"},
		{name: "lower case severity", in: "<SEVERITY>Info</SEVERITY>", want: "<SEVERITY>INFO</SEVERITY>"},
		{name: "missing bracket", in: "<STMTTRN>\n<BANKTRANLIST\n", want: "<STMTTRN>\n<BANKTRANLIST>\n"},
		{name: "valued tag untouched", in: "<TRNAMT>-12.00", want: "<TRNAMT>-12.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.preprocessOFX(tt.in))
		})
	}
}

func TestDescribe(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name string
		tx   ofxgo.Transaction
		want string
	}{
		{name: "neft prefix", tx: ofxgo.Transaction{Name: "NEFT-IYER HOLDINGS"}, want: "IYER HOLDINGS"},
		{name: "imps prefix", tx: ofxgo.Transaction{Name: "IMPS/Kumar Tiles"}, want: "Kumar Tiles"},
		{name: "rtgs prefix", tx: ofxgo.Transaction{Name: "RTGS-SHREE STEEL"}, want: "SHREE STEEL"},
		{name: "plain name", tx: ofxgo.Transaction{Name: "CHQ 004512"}, want: "CHQ 004512"},
		{name: "surrounding space", tx: ofxgo.Transaction{Name: "  CEMENT DEPOT  "}, want: "CEMENT DEPOT"},
		{name: "memo over generic name", tx: ofxgo.Transaction{Name: "PAYMENT", Memo: "Plumbing stage 2"}, want: "Plumbing stage 2"},
		{name: "generic name without memo", tx: ofxgo.Transaction{Name: "DEBIT"}, want: "DEBIT"},
		{
			name: "payee first",
			tx:   ofxgo.Transaction{Name: "DEBIT", Payee: &ofxgo.Payee{Name: "Ramesh Electricals"}},
			want: "Ramesh Electricals",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.describe(tt.tx))
		})
	}
}

func TestAccounts(t *testing.T) {
	tests := []struct {
		name      string
		statement string
		want      []string
	}{
		{name: "bank", statement: bankStatement("50100123", siteAccount...), want: []string{"50100123"}},
		{name: "card", statement: cardStatement("4111222233334444"), want: []string{"4111222233334444"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewParser().Accounts(context.Background(), strings.NewReader(tt.statement))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
