package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day layout used for every stored and compared date.
const DateLayout = "2006-01-02"

// TransactionSource records where a transaction entered the system.
type TransactionSource string

const (
	// SourceManual is a record typed in by the user.
	SourceManual TransactionSource = "manual"
	// SourceOFX is a record imported from an OFX/QFX statement.
	SourceOFX TransactionSource = "ofx"
	// SourcePlaid is a record fetched through Plaid.
	SourcePlaid TransactionSource = "plaid"
)

// RawTransaction is an incoming record before it has been classified.
type RawTransaction struct {
	Date          time.Time
	Merchant      string
	CategoryHint  string // Optional user-supplied category
	Justification string // Optional reason the user gives for the purchase
	ExternalID    string // Identifier assigned by the ingestion source, if any
	Source        TransactionSource
	Amount        float64
}

// Transaction is a classified spending or income record owned by one user.
type Transaction struct {
	Date                  time.Time
	CreatedAt             time.Time
	ID                    string
	UserID                string
	Merchant              string
	CategoryHint          string
	Justification         string
	Category              string
	Decision              DecisionLabel
	Explanation           string
	ExplanationTranslated string // Cached translation, populated best-effort
	ExternalID            string
	Source                TransactionSource
	Amount                float64
	IsImpulse             bool
}

// DateKey returns the calendar day of the transaction as YYYY-MM-DD.
func (t *Transaction) DateKey() string {
	return t.Date.Format(DateLayout)
}

// MonthKey returns the calendar month of the transaction as YYYY-MM.
func (t *Transaction) MonthKey() string {
	return t.Date.Format("2006-01")
}

// IsClassified reports whether all verdict fields are populated.
func (t *Transaction) IsClassified() bool {
	return strings.TrimSpace(t.Category) != "" &&
		t.Decision.Valid() &&
		strings.TrimSpace(t.Explanation) != ""
}

// ApplyVerdict copies a classification verdict onto the transaction.
func (t *Transaction) ApplyVerdict(v Verdict) {
	t.Category = v.Category
	t.IsImpulse = v.IsImpulse
	t.Decision = v.Decision
	t.Explanation = v.Explanation
}

// Raw returns the unclassified view of the transaction, used for re-classification.
func (t *Transaction) Raw() RawTransaction {
	return RawTransaction{
		Date:          t.Date,
		Merchant:      t.Merchant,
		Amount:        t.Amount,
		CategoryHint:  t.CategoryHint,
		Justification: t.Justification,
		ExternalID:    t.ExternalID,
		Source:        t.Source,
	}
}

// GenerateHash creates a stable hash for duplicate detection of imported records.
func (r *RawTransaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s",
		r.Date.Format(DateLayout),
		r.Amount,
		strings.ToLower(strings.TrimSpace(r.Merchant)))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
