package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldRecordID    = "record_id"
	FieldRecordCount = "record_count"
	FieldMerchant    = "merchant"
	FieldAmountPence = "amount_pence"
	FieldModel       = "model"
	FieldBackend     = "backend"
	FieldView        = "view"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentController = "controller"
	ComponentStore      = "store"
	ComponentStorage    = "storage"
	ComponentAnalyzer   = "analyzer"
	ComponentBackend    = "backend"
	ComponentCache      = "cache"
)
