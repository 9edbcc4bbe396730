// Package ofx reads OFX/QFX bank and credit card statements into raw records.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/thrift/internal/model"
)

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags at end of line that lost their closing bracket.
	openTagPattern = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	// A leading MM/DD posting date.
	postingDatePattern = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
)

var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
	"DIRECT DEPOSIT":  true,
}

// Parser converts statement files into raw records.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With("component", "ofx")}
}

func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagPattern.ReplaceAllString(content, "$1>")
}

// Parse reads every bank and credit card statement in r. Amounts are
// returned as positive values; credits carry an income category hint.
func (p *Parser) Parse(ctx context.Context, r io.Reader) ([]model.RawTransaction, error) {
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

	var raws []model.RawTransaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		raws = append(raws, p.convert(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		raws = append(raws, p.convert(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))...)
	}

	p.logger.Info("Parsed OFX file",
		"transactions", len(raws),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return raws, nil
}

func (p *Parser) convert(txns []ofxgo.Transaction, accountID string) []model.RawTransaction {
	raws := make([]model.RawTransaction, 0, len(txns))
	for _, tx := range txns {
		amount, _ := tx.TrnAmt.Float64()
		if amount == 0 {
			p.logger.Debug("Skipping zero-amount entry", "fitid", string(tx.FiTID))
			continue
		}

		raw := model.RawTransaction{
			Date:     tx.DtPosted.Time.UTC(),
			Merchant: merchantName(tx),
			Amount:   amount,
			Source:   model.SourceOFX,
		}
		if amount > 0 {
			raw.CategoryHint = creditHint(tx)
		} else {
			raw.Amount = -amount
		}

		if fitID := strings.TrimSpace(string(tx.FiTID)); fitID != "" {
			raw.ExternalID = fmt.Sprintf("ofx:%s:%s", accountID, fitID)
		} else {
			raw.ExternalID = "ofx:" + raw.GenerateHash()
		}

		raws = append(raws, raw)
	}
	return raws
}

func creditHint(tx ofxgo.Transaction) string {
	if tx.TrnType == ofxgo.TrnTypeDirectDep {
		return model.CategorySalary
	}
	return model.CategoryOtherIncome
}

// merchantName prefers PAYEE, then NAME, then MEMO when NAME is generic.
func merchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericNames[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(postingDatePattern.ReplaceAllString(name, ""))
}
