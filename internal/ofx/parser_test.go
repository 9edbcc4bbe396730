package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/thrift/internal/model"
)

// Sample OFX data for testing.
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
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DIRECTDEP
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>3200.00
<FITID>2024013101
<NAME>ACME CORP PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>INT
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>1.25
<FITID>2024013102
<NAME>INTEREST PAID
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
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{name: "valid bank statement", ofxData: sampleBankOFX, expectedCount: 5},
		{name: "valid credit card statement", ofxData: sampleCreditCardOFX, expectedCount: 2},
		{name: "invalid OFX data", ofxData: "not valid OFX", expectedError: true},
		{name: "empty OFX", ofxData: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raws, err := NewParser(nil).Parse(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, raws, tt.expectedCount)
			for _, raw := range raws {
				assert.Equal(t, model.SourceOFX, raw.Source)
				assert.Positive(t, raw.Amount)
				assert.NotEmpty(t, raw.ExternalID)
			}
		})
	}
}

func TestParse_BankStatement(t *testing.T) {
	raws, err := NewParser(nil).Parse(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, raws, 5)

	coffee := raws[0]
	assert.Equal(t, "ofx:1234567890:2024011501", coffee.ExternalID)
	assert.Equal(t, "STARBUCKS STORE #1234", coffee.Merchant)
	assert.Equal(t, 25.50, coffee.Amount)
	assert.Empty(t, coffee.CategoryHint)
	assert.True(t, coffee.Date.Equal(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)), coffee.Date)

	assert.Equal(t, "Whole Foods Market", raws[1].Merchant)
	assert.Equal(t, 500.00, raws[2].Amount)

	payroll := raws[3]
	assert.Equal(t, 3200.00, payroll.Amount)
	assert.Equal(t, model.CategorySalary, payroll.CategoryHint)

	assert.Equal(t, model.CategoryOtherIncome, raws[4].CategoryHint)
}

func TestParse_CreditCardStatement(t *testing.T) {
	raws, err := NewParser(nil).Parse(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, raws, 2)

	assert.Equal(t, "ofx:4111111111111111:CC2024011001", raws[0].ExternalID)
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", raws[0].Merchant)
	assert.Equal(t, 45.99, raws[0].Amount)
	assert.Equal(t, 15.00, raws[1].Amount)
}

func TestParse_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(nil).Parse(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse_LeadingWhitespace(t *testing.T) {
	raws, err := NewParser(nil).Parse(context.Background(), strings.NewReader("\n\n  "+sampleCreditCardOFX))
	require.NoError(t, err)
	assert.Len(t, raws, 2)
}

func TestMerchantName(t *testing.T) {
	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{name: "remove POS prefix", tx: ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"}, expected: "STARBUCKS"},
		{name: "remove DEBIT CARD prefix", tx: ofxgo.Transaction{Name: "DEBIT CARD PURCHASE WHOLE FOODS"}, expected: "WHOLE FOODS"},
		{name: "keep clean name", tx: ofxgo.Transaction{Name: "NETFLIX.COM"}, expected: "NETFLIX.COM"},
		{name: "trim whitespace", tx: ofxgo.Transaction{Name: "  AMAZON.COM  "}, expected: "AMAZON.COM"},
		{name: "strip posting date", tx: ofxgo.Transaction{Name: "CHECK CARD 03/14 TRADER JOES"}, expected: "TRADER JOES"},
		{name: "generic name uses memo", tx: ofxgo.Transaction{Name: "PAYMENT", Memo: "CITY WATER"}, expected: "CITY WATER"},
		{name: "payee wins", tx: ofxgo.Transaction{Name: "SQ *BLUE BOTTLE", Payee: &ofxgo.Payee{Name: "Blue Bottle"}}, expected: "Blue Bottle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, merchantName(tt.tx))
		})
	}
}

func TestConvert(t *testing.T) {
	var spent, zero ofxgo.Amount
	spent.SetFloat64(-12.5)

	raws := NewParser(nil).convert([]ofxgo.Transaction{
		{Name: "CORNER SHOP", TrnAmt: spent},
		{Name: "ADJUSTMENT", TrnAmt: zero, FiTID: "z1"},
	}, "acct")

	require.Len(t, raws, 1, "zero amounts are skipped")
	assert.Equal(t, 12.5, raws[0].Amount)
	assert.Equal(t, "ofx:"+raws[0].GenerateHash(), raws[0].ExternalID)
}

func TestCreditHint(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		expected string
	}{
		{name: "direct deposit is salary", kind: "DIRECTDEP", expected: model.CategorySalary},
		{name: "plain credit", kind: "CREDIT", expected: model.CategoryOtherIncome},
		{name: "interest", kind: "INT", expected: model.CategoryOtherIncome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := ofxgo.NewTrnType(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, creditHint(ofxgo.Transaction{TrnType: kind}))
		})
	}
}
