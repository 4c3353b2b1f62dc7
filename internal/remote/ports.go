// Package remote defines the boundary to the cloud transaction store and
// the wire record exchanged with it.
package remote

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"trackrise/internal/core"
)

// Record is the wire form of a transaction. The image file itself never
// leaves the device; only a flag that one exists is synced.
type Record struct {
	ID           string    `json:"id"`
	Amount       string    `json:"amount"`
	Description  string    `json:"description"`
	Type         string    `json:"type"`
	Category     string    `json:"category"`
	CurrencyCode string    `json:"currency_code"`
	Date         time.Time `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	EntryMethod  string    `json:"entry_method"`
	HasImage     bool      `json:"has_image"`
}

// Store is the black-box remote endpoint. Upsert must be idempotent on
// Record.ID: a retry after a crash between remote success and the local
// synced-flag write must not duplicate the row.
type Store interface {
	Upsert(ctx context.Context, rec Record) error
	FetchDelta(ctx context.Context, since time.Time) ([]Record, error)
}

// FromTransaction builds the wire record for a ledger transaction.
func FromTransaction(t core.Transaction) Record {
	return Record{
		ID:           t.ID,
		Amount:       t.Amount.String(),
		Description:  t.Description,
		Type:         string(t.Type),
		Category:     t.Category,
		CurrencyCode: t.CurrencyCode,
		Date:         t.Date,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		EntryMethod:  string(t.EntryMethod),
		HasImage:     t.ImagePath != "",
	}
}

// Transaction converts a pulled record back into a ledger transaction.
// Pulled rows are already remote-confirmed, so they arrive synced.
func (r Record) Transaction() (core.Transaction, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:           r.ID,
		Amount:       amount,
		Description:  r.Description,
		Type:         core.TransactionType(r.Type),
		Category:     r.Category,
		CurrencyCode: r.CurrencyCode,
		Date:         r.Date,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		EntryMethod:  core.EntryMethod(r.EntryMethod),
		Synced:       true,
	}, nil
}
