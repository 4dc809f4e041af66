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

	FieldPazienteID   = "paziente_id"
	FieldPagamentoID  = "pagamento_id"
	FieldRataID       = "rata_id"
	FieldNumeroRata   = "numero_rata"
	FieldAmountCents  = "amount_cents"
	FieldModalita     = "modalita"
	FieldStato        = "stato"
	FieldDataScadenza = "data_scadenza"
	FieldRegistroRef  = "registro_ref"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentRegistro  = "registro"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentScadenze  = "scadenze"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpPaga     = "paga"
	OpExport   = "export"
	OpScan     = "scan"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
