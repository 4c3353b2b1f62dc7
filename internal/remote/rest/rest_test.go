package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trackrise/internal/remote"
)

func TestUpsert(t *testing.T) {
	var gotPath, gotAuth string
	var gotRecord remote.Record
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotRecord); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(srv.URL, "secret")
	rec := remote.Record{ID: "txn_1", Amount: "150.00", Type: "expense", Category: "transport"}
	if err := client.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if gotPath != "/transactions/txn_1" {
		t.Errorf("path = %q, want /transactions/txn_1", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotRecord.Amount != "150.00" {
		t.Errorf("sent amount = %q, want 150.00", gotRecord.Amount)
	}
}

func TestUpsertServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, "")
	err := client.Upsert(context.Background(), remote.Record{ID: "txn_1"})
	if err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestFetchDelta(t *testing.T) {
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []remote.Record{
		{ID: "txn_1", Amount: "10.00", UpdatedAt: since.Add(time.Hour)},
		{ID: "txn_2", Amount: "20.00", UpdatedAt: since.Add(2 * time.Hour)},
	}
	var gotSince string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSince = r.URL.Query().Get("updated_since")
		json.NewEncoder(w).Encode(records)
	}))
	defer srv.Close()

	client := New(srv.URL, "")
	got, err := client.FetchDelta(context.Background(), since)
	if err != nil {
		t.Fatalf("FetchDelta: %v", err)
	}
	if len(got) != 2 || got[0].ID != "txn_1" || got[1].ID != "txn_2" {
		t.Errorf("records = %v", got)
	}
	if gotSince != since.Format(time.RFC3339Nano) {
		t.Errorf("updated_since = %q, want %q", gotSince, since.Format(time.RFC3339Nano))
	}
}
