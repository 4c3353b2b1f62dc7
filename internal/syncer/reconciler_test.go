package syncer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"trackrise/internal/core"
	"trackrise/internal/ledger"
	"trackrise/internal/log"
	"trackrise/internal/netinfo"
	"trackrise/internal/remote"
	"trackrise/internal/remote/memory"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newTestStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testTransaction(id string, date time.Time) core.Transaction {
	return core.Transaction{
		ID:           id,
		Amount:       decimal.NewFromInt(250),
		Description:  "stock purchase",
		Type:         core.Expense,
		Category:     "inventory",
		CurrencyCode: "KES",
		Date:         date,
		CreatedAt:    date,
		UpdatedAt:    date,
		EntryMethod:  core.EntryManual,
	}
}

func wifiProbe() *netinfo.StaticProbe {
	return &netinfo.StaticProbe{Connected: true, Link: netinfo.KindWifi}
}

func TestEvaluateGate(t *testing.T) {
	cases := []struct {
		name      string
		autoSync  bool
		wifiOnly  bool
		connected bool
		kind      netinfo.Kind
		want      BlockReason
	}{
		{"auto sync off", false, false, true, netinfo.KindWifi, BlockAutoSyncOff},
		{"auto sync off wins over offline", false, true, false, netinfo.KindNone, BlockAutoSyncOff},
		{"offline", true, false, false, netinfo.KindNone, BlockOffline},
		{"cellular with wifi only", true, true, true, netinfo.KindCellular, BlockNotOnWifi},
		{"unknown link with wifi only", true, true, true, netinfo.KindUnknown, BlockNotOnWifi},
		{"cellular allowed", true, false, true, netinfo.KindCellular, NotBlocked},
		{"wifi", true, true, true, netinfo.KindWifi, NotBlocked},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := core.AppSettings{AutoSync: tc.autoSync, SyncOnlyOnWifi: tc.wifiOnly}
			got := EvaluateGate(settings, tc.connected, tc.kind)
			if got != tc.want {
				t.Errorf("EvaluateGate() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRunPassPushesAndIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	rs := memory.New()
	rec := New(store, rs, wifiProbe(), 4, testLogger())
	ctx := context.Background()

	date := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for _, id := range []string{"txn_1", "txn_2", "txn_3"} {
		if err := store.Insert(ctx, testTransaction(id, date)); err != nil {
			t.Fatalf("Insert(%s): %v", id, err)
		}
		date = date.Add(time.Minute)
	}

	report, err := rec.RunPass(ctx)
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if report.Pushed != 3 || report.Failed != 0 || report.Pending != 0 {
		t.Errorf("first pass report = %+v, want 3 pushed", report)
	}
	if rs.Len() != 3 {
		t.Errorf("remote has %d records, want 3", rs.Len())
	}

	// The same state synced twice must not duplicate or re-push anything.
	report, err = rec.RunPass(ctx)
	if err != nil {
		t.Fatalf("second RunPass: %v", err)
	}
	if report.Pushed != 0 {
		t.Errorf("second pass pushed %d, want 0", report.Pushed)
	}
	if rs.Len() != 3 {
		t.Errorf("remote has %d records after second pass, want 3", rs.Len())
	}
}

func TestRunPassIsolatesRowFailures(t *testing.T) {
	store := newTestStore(t)
	rs := memory.New()
	rs.FailIDs["txn_bad"] = true
	rs.FailErr = errors.New("remote rejected row")
	rec := New(store, rs, wifiProbe(), 2, testLogger())
	ctx := context.Background()

	date := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	if err := store.Insert(ctx, testTransaction("txn_bad", date)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Insert(ctx, testTransaction("txn_good", date.Add(time.Minute))); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	report, err := rec.RunPass(ctx)
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if report.Pushed != 1 || report.Failed != 1 || report.Pending != 1 {
		t.Errorf("report = %+v, want 1 pushed, 1 failed", report)
	}
	if _, ok := rs.Get("txn_good"); !ok {
		t.Error("txn_good not pushed despite txn_bad failing")
	}

	pending, err := store.ListUnsynced(ctx)
	if err != nil {
		t.Fatalf("ListUnsynced: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "txn_bad" {
		t.Errorf("unsynced = %v, want just txn_bad", pending)
	}

	// Once the remote recovers, the retry drains the leftover row.
	delete(rs.FailIDs, "txn_bad")
	report, err = rec.RunPass(ctx)
	if err != nil {
		t.Fatalf("retry RunPass: %v", err)
	}
	if report.Pushed != 1 || report.Failed != 0 {
		t.Errorf("retry report = %+v, want 1 pushed", report)
	}
}

func TestRunPassBlocked(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*core.AppSettings)
		probe  *netinfo.StaticProbe
		want   BlockReason
	}{
		{
			name:   "auto sync disabled",
			mutate: func(s *core.AppSettings) { s.AutoSync = false },
			probe:  wifiProbe(),
			want:   BlockAutoSyncOff,
		},
		{
			name:   "offline",
			mutate: func(s *core.AppSettings) {},
			probe:  &netinfo.StaticProbe{Connected: false},
			want:   BlockOffline,
		},
		{
			name:   "wifi only on cellular",
			mutate: func(s *core.AppSettings) { s.SyncOnlyOnWifi = true },
			probe:  &netinfo.StaticProbe{Connected: true, Link: netinfo.KindCellular},
			want:   BlockNotOnWifi,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore(t)
			rs := memory.New()
			rec := New(store, rs, tc.probe, 2, testLogger())
			ctx := context.Background()

			settings, err := store.Settings(ctx)
			if err != nil {
				t.Fatalf("Settings: %v", err)
			}
			tc.mutate(&settings)
			if err := store.PutSettings(ctx, settings); err != nil {
				t.Fatalf("PutSettings: %v", err)
			}

			date := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
			if err := store.Insert(ctx, testTransaction("txn_1", date)); err != nil {
				t.Fatalf("Insert: %v", err)
			}

			report, err := rec.RunPass(ctx)
			if err != nil {
				t.Fatalf("RunPass: %v", err)
			}
			if report.Blocked != tc.want {
				t.Errorf("Blocked = %q, want %q", report.Blocked, tc.want)
			}
			if report.Pushed != 0 || rs.Len() != 0 {
				t.Errorf("blocked pass pushed rows: report=%+v remote=%d", report, rs.Len())
			}
		})
	}
}

func TestPullDeltasAppliesNewRowsOnly(t *testing.T) {
	store := newTestStore(t)
	rs := memory.New()
	rec := New(store, rs, wifiProbe(), 2, testLogger())
	ctx := context.Background()

	date := time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC)
	local := testTransaction("txn_local", date)
	if err := store.Insert(ctx, local); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// txn_local exists on both sides; only txn_other is new to this device.
	other := testTransaction("txn_other", date.Add(time.Hour))
	rs.Seed(remote.FromTransaction(local), remote.FromTransaction(other))

	applied, err := rec.PullDeltas(ctx)
	if err != nil {
		t.Fatalf("PullDeltas: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}

	got, err := store.Get(ctx, "txn_other")
	if err != nil {
		t.Fatalf("Get pulled row: %v", err)
	}
	if !got.Synced {
		t.Error("pulled row not marked synced")
	}

	// The cursor advanced, so an unchanged remote yields nothing new.
	applied, err = rec.PullDeltas(ctx)
	if err != nil {
		t.Fatalf("second PullDeltas: %v", err)
	}
	if applied != 0 {
		t.Errorf("second pull applied = %d, want 0", applied)
	}
}

func TestPullDeltasSkipsMalformedRecords(t *testing.T) {
	store := newTestStore(t)
	rs := memory.New()
	rec := New(store, rs, wifiProbe(), 2, testLogger())
	ctx := context.Background()

	date := time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC)
	good := remote.FromTransaction(testTransaction("txn_ok", date))
	bad := remote.FromTransaction(testTransaction("txn_bad", date.Add(time.Minute)))
	bad.Amount = "not-a-number"
	rs.Seed(good, bad)

	applied, err := rec.PullDeltas(ctx)
	if err != nil {
		t.Fatalf("PullDeltas: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
	if _, err := store.Get(ctx, "txn_bad"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("malformed record was applied: err = %v", err)
	}
}
