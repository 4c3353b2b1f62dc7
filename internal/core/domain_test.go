package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validTransaction() Transaction {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return Transaction{
		ID:           "txn_test",
		Amount:       decimal.NewFromInt(500),
		Description:  "Sold tomatoes",
		Type:         Income,
		Category:     "sales",
		CurrencyCode: "KES",
		Date:         now,
		CreatedAt:    now,
		UpdatedAt:    now,
		EntryMethod:  EntryManual,
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{"empty id", func(tx *Transaction) { tx.ID = " " }},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) }},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }},
		{"empty category", func(tx *Transaction) { tx.Category = "" }},
		{"bad entry method", func(tx *Transaction) { tx.EntryMethod = "fax" }},
		{"unsupported currency", func(tx *Transaction) { tx.CurrencyCode = "XXX" }},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }},
		{"updated before created", func(tx *Transaction) { tx.UpdatedAt = tx.CreatedAt.Add(-time.Hour) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			if err := tx.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDraftValidate(t *testing.T) {
	good := Draft{
		Amount:       decimal.NewFromInt(250),
		Description:  "Paid for transport",
		Type:         Expense,
		Category:     "transport",
		CurrencyCode: "KES",
		Date:         time.Now(),
		EntryMethod:  EntryVoice,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.Amount = decimal.Zero
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for zero amount")
	}
}

func TestSummaryNetProfit(t *testing.T) {
	s := Summary{
		TotalIncome:   decimal.NewFromInt(1000),
		TotalExpenses: decimal.NewFromInt(400),
	}
	if got := s.NetProfit(); !got.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("net profit = %s, want 600", got)
	}
}
