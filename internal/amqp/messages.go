package amqp

import (
	"encoding/json"
	"time"
)

// SyncRequestMessage asks the worker to run a sync pass. It carries only
// the transaction id that triggered it; the worker reads the full row set
// from the ledger, so a stale or duplicate message is harmless.
type SyncRequestMessage struct {
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewSyncRequestMessage(transactionID string) *SyncRequestMessage {
	return &SyncRequestMessage{
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SyncRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncRequestMessageFromJSON creates a message from JSON bytes
func SyncRequestMessageFromJSON(data []byte) (*SyncRequestMessage, error) {
	var msg SyncRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
