package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"trackrise/internal/capture"
	"trackrise/internal/core"
	"trackrise/internal/ledger"
	"trackrise/internal/log"
)

type transactionPayload struct {
	ID           string `json:"id,omitempty"`
	Amount       string `json:"amount"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	Category     string `json:"category"`
	CurrencyCode string `json:"currency_code,omitempty"`
	Date         string `json:"date,omitempty"`
	EntryMethod  string `json:"entry_method,omitempty"`
	ImagePath    string `json:"image_path,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	Synced       bool   `json:"synced,omitempty"`
}

func transactionToPayload(t core.Transaction) transactionPayload {
	return transactionPayload{
		ID:           t.ID,
		Amount:       t.Amount.String(),
		Description:  t.Description,
		Type:         string(t.Type),
		Category:     t.Category,
		CurrencyCode: t.CurrencyCode,
		Date:         t.Date.UTC().Format(time.RFC3339),
		EntryMethod:  string(t.EntryMethod),
		ImagePath:    t.ImagePath,
		CreatedAt:    t.CreatedAt.UTC().Format(time.RFC3339),
		Synced:       t.Synced,
	}
}

// handleCreateTransaction records a confirmed draft. Manual entries omit
// entry_method; captured drafts echo back what the coordinator produced.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	settings, err := s.store.Settings(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "read settings", log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	currency := req.CurrencyCode
	if currency == "" {
		currency = settings.DefaultCurrency
	}

	date := time.Now().UTC()
	if req.Date != "" {
		date, err = time.Parse(time.RFC3339, req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, want RFC3339")
			return
		}
	}

	method := core.EntryManual
	if req.EntryMethod != "" {
		method = core.EntryMethod(req.EntryMethod)
	}

	draft := core.Draft{
		Amount:       amount,
		Description:  sanitizeInput(req.Description),
		Type:         core.TransactionType(req.Type),
		Category:     req.Category,
		CurrencyCode: currency,
		Date:         date,
		EntryMethod:  method,
		ImagePath:    req.ImagePath,
	}

	txn, err := s.transactions.ConfirmDraft(r.Context(), draft)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, transactionToPayload(txn))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := ledger.QueryFilter{
		Limit:  parseIntParam(r, "limit", 0),
		Offset: parseIntParam(r, "offset", 0),
	}
	if typ := r.URL.Query().Get("type"); typ != "" {
		filter.Type = core.TransactionType(typ)
		if !filter.Type.Valid() {
			respondError(w, http.StatusBadRequest, "invalid type filter")
			return
		}
	}
	if v := r.URL.Query().Get("from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		filter.From = from
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		filter.To = to
	}

	txns, err := s.transactions.List(r.Context(), filter)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list transactions", log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	payloads := make([]transactionPayload, 0, len(txns))
	for _, t := range txns {
		payloads = append(payloads, transactionToPayload(t))
	}
	respondJSON(w, http.StatusOK, payloads)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := s.transactions.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, ledger.ErrNotFound) {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "get transaction", log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, transactionToPayload(txn))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var typ core.TransactionType
	if v := r.URL.Query().Get("type"); v != "" {
		typ = core.TransactionType(v)
		if !typ.Valid() {
			respondError(w, http.StatusBadRequest, "invalid type filter")
			return
		}
	}

	categories, err := s.store.ListCategories(r.Context(), typ)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list categories", log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type categoryPayload struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Icon  string `json:"icon"`
		Type  string `json:"type"`
		Color string `json:"color"`
	}
	payloads := make([]categoryPayload, 0, len(categories))
	for _, c := range categories {
		payloads = append(payloads, categoryPayload{
			ID: c.ID, Name: c.Name, Icon: c.Icon, Type: string(c.Type), Color: c.Color,
		})
	}
	respondJSON(w, http.StatusOK, payloads)
}

func (s *Server) handleListCurrencies(w http.ResponseWriter, r *http.Request) {
	type currencyPayload struct {
		Code   string `json:"code"`
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	}
	payloads := make([]currencyPayload, 0, len(core.Currencies))
	for _, c := range core.Currencies {
		payloads = append(payloads, currencyPayload{Code: c.Code, Name: c.Name, Symbol: c.Symbol})
	}
	respondJSON(w, http.StatusOK, payloads)
}

type settingsPayload struct {
	DefaultCurrency string `json:"default_currency"`
	Language        string `json:"language"`
	Theme           string `json:"theme"`
	Notifications   bool   `json:"notifications"`
	AutoSync        bool   `json:"auto_sync"`
	SyncOnlyOnWifi  bool   `json:"sync_only_on_wifi"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "read settings", log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, settingsPayload{
		DefaultCurrency: settings.DefaultCurrency,
		Language:        settings.Language,
		Theme:           settings.Theme,
		Notifications:   settings.Notifications,
		AutoSync:        settings.AutoSync,
		SyncOnlyOnWifi:  settings.SyncOnlyOnWifi,
	})
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	settings := core.AppSettings{
		DefaultCurrency: req.DefaultCurrency,
		Language:        req.Language,
		Theme:           req.Theme,
		Notifications:   req.Notifications,
		AutoSync:        req.AutoSync,
		SyncOnlyOnWifi:  req.SyncOnlyOnWifi,
	}
	if err := s.store.PutSettings(r.Context(), settings); err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.dashboard.Summary(r.Context(), from, to)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "dashboard summary", log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"total_income":   summary.TotalIncome.String(),
		"total_expenses": summary.TotalExpenses.String(),
		"net_profit":     summary.NetProfit().String(),
		"period_start":   summary.PeriodStart.UTC().Format(time.RFC3339),
		"period_end":     summary.PeriodEnd.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCaptureBegin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.coordinator.Begin(core.EntryMethod(req.Method)); err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"state": string(s.coordinator.State())})
}

func (s *Server) handleCaptureComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input string `json:"input"`
		// ImagePath keeps the local photo reference when the input handle
		// is recognized text rather than the image itself.
		ImagePath string `json:"image_path,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	settings, err := s.store.Settings(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "read settings", log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	draft, err := s.coordinator.Complete(r.Context(), req.Input, settings.DefaultCurrency)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	if req.ImagePath != "" {
		draft.ImagePath = req.ImagePath
	}

	respondJSON(w, http.StatusOK, transactionPayload{
		Amount:       draft.Amount.String(),
		Description:  draft.Description,
		Type:         string(draft.Type),
		Category:     draft.Category,
		CurrencyCode: draft.CurrencyCode,
		Date:         draft.Date.UTC().Format(time.RFC3339),
		EntryMethod:  string(draft.EntryMethod),
		ImagePath:    draft.ImagePath,
	})
}

func (s *Server) handleCaptureCancel(w http.ResponseWriter, r *http.Request) {
	s.coordinator.Cancel()
	respondJSON(w, http.StatusOK, map[string]string{"state": string(s.coordinator.State())})
}

func (s *Server) handleCaptureState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"state": string(s.coordinator.State())})
}

// handleSyncNow triggers a push pass followed by a delta pull.
func (s *Server) handleSyncNow(w http.ResponseWriter, r *http.Request) {
	report, err := s.reconciler.RunPass(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "sync pass", log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	pulled := 0
	if report.Blocked == "" {
		pulled, err = s.reconciler.PullDeltas(r.Context())
		if err != nil {
			s.logger.WarnContext(r.Context(), "delta pull", log.FieldError, err.Error())
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"pushed":  report.Pushed,
		"failed":  report.Failed,
		"pending": report.Pending,
		"pulled":  pulled,
		"blocked": string(report.Blocked),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Settings(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrInvalidEntryMethod),
		errors.Is(err, core.ErrUnsupportedCurrency),
		errors.Is(err, core.ErrZeroDate),
		errors.Is(err, core.ErrUnknownCategory),
		errors.Is(err, core.ErrCategoryTypeMismatch),
		errors.Is(err, capture.ErrUnsupportedMethod),
		errors.Is(err, capture.ErrNotCapturing):
		return http.StatusBadRequest
	case errors.Is(err, capture.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, capture.ErrCancelled):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
