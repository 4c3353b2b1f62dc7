package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldAmount        = "amount"
	FieldCurrency      = "currency"
	FieldCategory      = "category"
	FieldEntryMethod   = "entry_method"
	FieldSyncPushed    = "sync_pushed"
	FieldSyncPending   = "sync_pending"
	FieldBlockReason   = "block_reason"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentLedger      = "ledger"
	ComponentExtract     = "extract"
	ComponentCapture     = "capture"
	ComponentSyncer      = "syncer"
	ComponentRemote      = "remote"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentDashboard   = "dashboard"
	ComponentTransaction = "transaction"
)

// Operations defines standard operation names
const (
	OpInsert   = "insert"
	OpQuery    = "query"
	OpConfirm  = "confirm"
	OpCapture  = "capture"
	OpExtract  = "extract"
	OpPush     = "push"
	OpPull     = "pull"
	OpSettings = "settings"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
