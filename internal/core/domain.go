package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	EntryManual EntryMethod = "manual"
	EntryVoice  EntryMethod = "voice"
	EntryPhoto  EntryMethod = "photo"
)

type (
	TransactionType string

	EntryMethod string

	// Transaction is a single ledger record. Once synced it is immutable.
	Transaction struct {
		ID           string
		Amount       decimal.Decimal
		Description  string
		Type         TransactionType
		Category     string
		CurrencyCode string
		Date         time.Time
		CreatedAt    time.Time
		UpdatedAt    time.Time
		EntryMethod  EntryMethod
		ImagePath    string
		Synced       bool
	}

	// Draft is an unpersisted candidate transaction produced by extraction.
	// It carries everything a Transaction does minus identity, record
	// timestamps and sync state.
	Draft struct {
		Amount       decimal.Decimal
		Description  string
		Type         TransactionType
		Category     string
		CurrencyCode string
		Date         time.Time
		EntryMethod  EntryMethod
		ImagePath    string
	}

	Category struct {
		ID    string
		Name  string
		Icon  string
		Type  TransactionType
		Color string
	}

	// AppSettings is the singleton configuration record, read and written
	// as a whole.
	AppSettings struct {
		DefaultCurrency string
		Language        string
		Theme           string
		Notifications   bool
		AutoSync        bool
		SyncOnlyOnWifi  bool
	}
)

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrEmptyDescription    = errors.New("empty description")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrEmptyCategory       = errors.New("empty category")
	ErrInvalidEntryMethod  = errors.New("invalid entry method")
	ErrUnsupportedCurrency = errors.New("unsupported currency code")
	ErrZeroDate            = errors.New("date cannot be zero")

	ErrUnknownCategory      = errors.New("unknown category")
	ErrCategoryTypeMismatch = errors.New("category type does not match transaction type")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (m EntryMethod) Valid() bool {
	return m == EntryManual || m == EntryVoice || m == EntryPhoto
}

// Validate checks the fields the ledger can verify without reference data.
// Category existence and type matching are enforced by the store, which owns
// the category set.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("empty transaction id")
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.EntryMethod.Valid() {
		return ErrInvalidEntryMethod
	}
	if !SupportedCurrency(t.CurrencyCode) {
		return ErrUnsupportedCurrency
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return errors.New("updated_at before created_at")
	}
	return nil
}

func (d Draft) Validate() error {
	if !d.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(d.Description) == "" {
		return ErrEmptyDescription
	}
	if !d.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	if !d.EntryMethod.Valid() {
		return ErrInvalidEntryMethod
	}
	if !SupportedCurrency(d.CurrencyCode) {
		return ErrUnsupportedCurrency
	}
	if d.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}
