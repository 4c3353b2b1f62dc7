// Package syncer reconciles the local ledger with the remote store. A pass
// first checks the policy gate (user settings plus current connectivity),
// then pushes unsynced rows with bounded parallelism. Row failures are
// isolated: one bad row never blocks the rest of the batch.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"trackrise/internal/core"
	"trackrise/internal/ledger"
	"trackrise/internal/log"
	"trackrise/internal/netinfo"
	"trackrise/internal/remote"
)

// BlockReason names why a pass was skipped. Empty means not blocked.
type BlockReason string

const (
	NotBlocked       BlockReason = ""
	BlockAutoSyncOff BlockReason = "auto_sync_disabled"
	BlockOffline     BlockReason = "offline"
	BlockNotOnWifi   BlockReason = "not_on_wifi"
)

// PassReport summarizes one push pass.
type PassReport struct {
	Pushed  int
	Failed  int
	Pending int
	Blocked BlockReason
}

type Reconciler struct {
	store       *ledger.Store
	remote      remote.Store
	probe       netinfo.Probe
	concurrency int
	logger      *log.Logger

	cursorMu sync.Mutex
	cursor   time.Time
}

func New(store *ledger.Store, rs remote.Store, probe netinfo.Probe, concurrency int, logger *log.Logger) *Reconciler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Reconciler{
		store:       store,
		remote:      rs,
		probe:       probe,
		concurrency: concurrency,
		logger:      logger.WithComponent(log.ComponentSyncer),
	}
}

// EvaluateGate applies the sync policy: auto-sync must be on, the device
// must be online, and with wifi-only enabled the link must actually be
// wifi. An unknown link kind counts as not-wifi.
func EvaluateGate(settings core.AppSettings, connected bool, kind netinfo.Kind) BlockReason {
	if !settings.AutoSync {
		return BlockAutoSyncOff
	}
	if !connected {
		return BlockOffline
	}
	if settings.SyncOnlyOnWifi && kind != netinfo.KindWifi {
		return BlockNotOnWifi
	}
	return NotBlocked
}

// RunPass pushes all currently-unsynced transactions. A blocked pass is not
// an error; the report carries the reason. Push failures are logged and
// counted but never returned, so a flaky row does not abort the batch.
func (r *Reconciler) RunPass(ctx context.Context) (PassReport, error) {
	settings, err := r.store.Settings(ctx)
	if err != nil {
		return PassReport{}, fmt.Errorf("read settings: %w", err)
	}

	connected := r.probe.IsConnected(ctx)
	kind := r.probe.ConnectionKind(ctx)
	if reason := EvaluateGate(settings, connected, kind); reason != NotBlocked {
		r.logger.DebugContext(ctx, "sync pass blocked", log.FieldBlockReason, string(reason))
		return PassReport{Blocked: reason}, nil
	}

	pending, err := r.store.ListUnsynced(ctx)
	if err != nil {
		return PassReport{}, fmt.Errorf("list unsynced: %w", err)
	}
	if len(pending) == 0 {
		return PassReport{}, nil
	}

	var pushed, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, txn := range pending {
		txn := txn
		g.Go(func() error {
			if err := r.pushOne(gctx, txn); err != nil {
				failed.Add(1)
				r.logger.WarnContext(gctx, "push failed",
					log.FieldTransactionID, txn.ID,
					log.FieldError, err.Error())
			} else {
				pushed.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	report := PassReport{
		Pushed:  int(pushed.Load()),
		Failed:  int(failed.Load()),
		Pending: len(pending) - int(pushed.Load()),
	}
	r.logger.InfoContext(ctx, "sync pass complete",
		log.FieldSyncPushed, report.Pushed,
		log.FieldSyncPending, report.Pending)
	return report, nil
}

// pushOne uploads a single row, then flips the local synced flag. The
// remote upsert is idempotent on id, so a crash between the two steps is
// repaired by the next pass without duplicating the row.
func (r *Reconciler) pushOne(ctx context.Context, txn core.Transaction) error {
	if err := r.remote.Upsert(ctx, remote.FromTransaction(txn)); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	if err := r.store.MarkSynced(ctx, txn.ID); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

// PullDeltas fetches rows changed remotely since the last pull and inserts
// the ones this device has not seen. Rows already present locally are left
// untouched; pulled rows arrive already marked synced. Returns the number
// of rows applied.
func (r *Reconciler) PullDeltas(ctx context.Context) (int, error) {
	r.cursorMu.Lock()
	since := r.cursor
	r.cursorMu.Unlock()

	records, err := r.remote.FetchDelta(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("fetch delta: %w", err)
	}

	applied := 0
	maxSeen := since
	for _, rec := range records {
		if rec.UpdatedAt.After(maxSeen) {
			maxSeen = rec.UpdatedAt
		}
		if _, err := r.store.Get(ctx, rec.ID); err == nil {
			continue
		} else if !errors.Is(err, ledger.ErrNotFound) {
			return applied, fmt.Errorf("check transaction %s: %w", rec.ID, err)
		}

		txn, err := rec.Transaction()
		if err != nil {
			r.logger.WarnContext(ctx, "skipping malformed remote record",
				log.FieldTransactionID, rec.ID,
				log.FieldError, err.Error())
			continue
		}
		if err := r.store.Insert(ctx, txn); err != nil {
			r.logger.WarnContext(ctx, "pulled record rejected",
				log.FieldTransactionID, rec.ID,
				log.FieldError, err.Error())
			continue
		}
		applied++
	}

	r.cursorMu.Lock()
	if maxSeen.After(r.cursor) {
		r.cursor = maxSeen
	}
	r.cursorMu.Unlock()

	if applied > 0 {
		r.logger.InfoContext(ctx, "pull applied remote changes", "applied", applied)
	}
	return applied, nil
}
