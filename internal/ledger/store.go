// Package ledger implements the durable on-device transaction store backed
// by SQLite. It is the single source of truth for transactions, categories
// and the settings singleton.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"trackrise/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so stored timestamps order lexicographically,
// which keeps the date/created_at ordering stable down to the nanosecond.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// defaultQueryLimit applies when a caller does not bound a query.
const defaultQueryLimit = 50

// Store serializes writes behind a mutex; reads run concurrently on the
// underlying pool. Every mutation is committed before the call returns.
type Store struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// QueryFilter bounds and filters a transaction listing. Zero times mean
// unbounded; an empty Type matches both income and expense.
type QueryFilter struct {
	Limit  int
	Offset int
	Type   core.TransactionType
	From   time.Time
	To     time.Time
}

func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Insert validates and persists a transaction. Re-inserting an existing id
// is a no-op success so sync retries and pull replays stay idempotent.
func (s *Store) Insert(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var catType string
	err := s.db.QueryRowContext(ctx, `SELECT type FROM categories WHERE id = ?`, t.Category).Scan(&catType)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("category %q: %w", t.Category, core.ErrUnknownCategory)
	}
	if err != nil {
		return fmt.Errorf("look up category: %w", err)
	}
	if core.TransactionType(catType) != t.Type {
		return fmt.Errorf("category %q is %s: %w", t.Category, catType, core.ErrCategoryTypeMismatch)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, amount, description, type, category, currency_code,
			date, created_at, updated_at, entry_method, image_path, synced
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Amount.String(),
		t.Description,
		string(t.Type),
		t.Category,
		t.CurrencyCode,
		formatTime(t.Date),
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
		string(t.EntryMethod),
		nullableString(t.ImagePath),
		boolToInt(t.Synced),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.DebugContext(ctx, "Duplicate transaction insert ignored", "id", t.ID)
		return nil
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", t.Type,
		"amount", t.Amount.String(),
		"category", t.Category,
		"entry_method", t.EntryMethod)

	return nil
}

// Get returns a single transaction by id.
func (s *Store) Get(ctx context.Context, id string) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ErrNotFound reports a lookup for an id the ledger does not hold.
var ErrNotFound = errors.New("not found")

// Query lists transactions ordered by date descending with created_at as the
// tiebreak, so pagination across calls is stable.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]core.Transaction, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		conds []string
		args  []any
	)
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if !f.From.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, formatTime(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, formatTime(f.To))
	}

	query := selectColumns + ` FROM transactions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListUnsynced returns every transaction not yet confirmed by the remote
// store, oldest first.
func (s *Store) ListUnsynced(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM transactions WHERE synced = 0 ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list unsynced transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// MarkSynced flags a transaction as accepted by the remote store. Already
// synced or absent ids are a no-op.
func (s *Store) MarkSynced(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.db.ExecContext(ctx, `UPDATE transactions SET synced = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

// Summary sums amounts per type over the inclusive [from, to] range.
func (s *Store) Summary(ctx context.Context, from, to time.Time) (core.Summary, error) {
	summary := core.Summary{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		PeriodStart:   from,
		PeriodEnd:     to,
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT type, amount FROM transactions WHERE date >= ? AND date <= ?`,
		formatTime(from), formatTime(to))
	if err != nil {
		return summary, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var typ, amountStr string
		if err := rows.Scan(&typ, &amountStr); err != nil {
			return summary, fmt.Errorf("scan summary row: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return summary, fmt.Errorf("parse stored amount %q: %w", amountStr, err)
		}
		switch core.TransactionType(typ) {
		case core.Income:
			summary.TotalIncome = summary.TotalIncome.Add(amount)
		case core.Expense:
			summary.TotalExpenses = summary.TotalExpenses.Add(amount)
		}
	}
	if err := rows.Err(); err != nil {
		return summary, fmt.Errorf("iterate summary rows: %w", err)
	}

	return summary, nil
}

// Settings reads the singleton settings record.
func (s *Store) Settings(ctx context.Context) (core.AppSettings, error) {
	var (
		settings                              core.AppSettings
		notifications, autoSync, wifiOnly int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT default_currency, language, theme, notifications, auto_sync, sync_only_on_wifi
		FROM settings WHERE id = 1`).Scan(
		&settings.DefaultCurrency,
		&settings.Language,
		&settings.Theme,
		&notifications,
		&autoSync,
		&wifiOnly,
	)
	if err != nil {
		return core.AppSettings{}, fmt.Errorf("read settings: %w", err)
	}

	settings.Notifications = notifications != 0
	settings.AutoSync = autoSync != 0
	settings.SyncOnlyOnWifi = wifiOnly != 0
	return settings, nil
}

// PutSettings replaces the singleton settings record as a whole.
func (s *Store) PutSettings(ctx context.Context, settings core.AppSettings) error {
	if !core.SupportedCurrency(settings.DefaultCurrency) {
		return core.ErrUnsupportedCurrency
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE settings SET
			default_currency = ?,
			language = ?,
			theme = ?,
			notifications = ?,
			auto_sync = ?,
			sync_only_on_wifi = ?
		WHERE id = 1`,
		settings.DefaultCurrency,
		settings.Language,
		settings.Theme,
		boolToInt(settings.Notifications),
		boolToInt(settings.AutoSync),
		boolToInt(settings.SyncOnlyOnWifi),
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// ListCategories returns the category reference set ordered by name,
// optionally filtered to one transaction type.
func (s *Store) ListCategories(ctx context.Context, typ core.TransactionType) ([]core.Category, error) {
	query := `SELECT id, name, icon, type, color FROM categories`
	var args []any
	if typ != "" {
		query += ` WHERE type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		var catType string
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &catType, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(catType)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

const selectColumns = `
	SELECT id, amount, description, type, category, currency_code,
	       date, created_at, updated_at, entry_method, image_path, synced`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                            core.Transaction
		amountStr, typ, method       string
		dateStr, createdStr, updStr  string
		imagePath                    sql.NullString
		synced                       int
	)
	err := row.Scan(
		&t.ID, &amountStr, &t.Description, &typ, &t.Category, &t.CurrencyCode,
		&dateStr, &createdStr, &updStr, &method, &imagePath, &synced,
	)
	if err != nil {
		return core.Transaction{}, err
	}

	if t.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amountStr, err)
	}
	if t.Date, err = parseTime(dateStr); err != nil {
		return core.Transaction{}, fmt.Errorf("parse date: %w", err)
	}
	if t.CreatedAt, err = parseTime(createdStr); err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(updStr); err != nil {
		return core.Transaction{}, fmt.Errorf("parse updated_at: %w", err)
	}

	t.Type = core.TransactionType(typ)
	t.EntryMethod = core.EntryMethod(method)
	t.ImagePath = imagePath.String
	t.Synced = synced != 0
	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
