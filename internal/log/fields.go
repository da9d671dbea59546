package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldYear       = "year"
	FieldCohortYear = "cohort_year"
	FieldRupiah     = "total_rupiah"
	FieldUsername   = "username"
	FieldRole       = "role"
	FieldBackend    = "backend"
	FieldCollection = "collection"
	FieldDocID      = "doc_id"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentAuth     = "auth"
	ComponentDocstore = "docstore"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentAudit    = "audit"
	ComponentTemplate = "template"
)

// Operations defines standard operation names
const (
	OpFetch    = "fetch"
	OpUpdate   = "update"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpRestore  = "restore"
	OpRender   = "render"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
