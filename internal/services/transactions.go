// Package services holds the application layer that sits between transports
// and the ledger: draft confirmation and the cached dashboard aggregates.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trackrise/internal/amqp"
	"trackrise/internal/core"
	"trackrise/internal/ledger"
	"trackrise/internal/log"
)

// TransactionService turns confirmed drafts into ledger rows and nudges the
// sync worker. The AMQP client is optional; without it the worker still
// picks rows up on its periodic pass.
type TransactionService struct {
	store     *ledger.Store
	publisher *amqp.Client
	dashboard *Dashboard
	logger    *log.Logger
}

func NewTransactionService(store *ledger.Store, publisher *amqp.Client, dashboard *Dashboard, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		dashboard: dashboard,
		logger:    logger.WithComponent(log.ComponentTransaction),
	}
}

// ConfirmDraft assigns identity and record timestamps to a draft and writes
// it to the ledger. The write is the commit point: publish failure after it
// only delays sync, it never loses the row.
func (s *TransactionService) ConfirmDraft(ctx context.Context, draft core.Draft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	now := time.Now().UTC()
	txn := core.Transaction{
		ID:           "txn_" + uuid.NewString(),
		Amount:       draft.Amount,
		Description:  draft.Description,
		Type:         draft.Type,
		Category:     draft.Category,
		CurrencyCode: draft.CurrencyCode,
		Date:         draft.Date,
		CreatedAt:    now,
		UpdatedAt:    now,
		EntryMethod:  draft.EntryMethod,
		ImagePath:    draft.ImagePath,
	}

	if err := s.store.Insert(ctx, txn); err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "transaction recorded",
		log.FieldTransactionID, txn.ID,
		log.FieldAmount, txn.Amount.String(),
		log.FieldCategory, txn.Category,
		log.FieldEntryMethod, string(txn.EntryMethod))

	if s.dashboard != nil {
		s.dashboard.Invalidate()
	}

	if s.publisher != nil {
		if err := s.publisher.PublishSyncRequest(ctx, txn.ID); err != nil {
			s.logger.WarnContext(ctx, "sync request publish failed",
				log.FieldTransactionID, txn.ID,
				log.FieldError, err.Error())
		}
	}

	return txn, nil
}

// List returns ledger rows matching the filter.
func (s *TransactionService) List(ctx context.Context, f ledger.QueryFilter) ([]core.Transaction, error) {
	return s.store.Query(ctx, f)
}

// Get returns a single transaction by id.
func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.Get(ctx, id)
}
