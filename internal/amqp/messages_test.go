package amqp

import (
	"testing"
	"time"
)

func TestSyncRequestMessageRoundTrip(t *testing.T) {
	msg := NewSyncRequestMessage("txn_abc")
	if msg.Timestamp.IsZero() {
		t.Error("NewSyncRequestMessage left timestamp zero")
	}
	msg.Timestamp = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := SyncRequestMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.TransactionID != "txn_abc" {
		t.Errorf("TransactionID = %q, want txn_abc", got.TransactionID)
	}
	if !got.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, msg.Timestamp)
	}
}

func TestSyncRequestMessageFromJSONInvalid(t *testing.T) {
	if _, err := SyncRequestMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
