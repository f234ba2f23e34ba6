package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldReferer     = "referer"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldRecordID    = "record_id"
	FieldTitle       = "title"
	FieldServiceType = "service_type"
	FieldPriceCents  = "price_cents"
	FieldUserID      = "user_id"
	FieldEventType   = "event_type"
	FieldViewMode    = "view_mode"
	FieldPeriod      = "period"
	FieldLedgerRef   = "ledger_ref"
)

// Components defines standard component names
const (
	ComponentApp           = "app"
	ComponentHTTP          = "http"
	ComponentCreation      = "creation"
	ComponentDuplicates    = "duplicates"
	ComponentAuthorization = "authorization"
	ComponentDashboard     = "dashboard"
	ComponentStorage       = "storage"
	ComponentAMQP          = "amqp"
	ComponentWorker        = "worker"
	ComponentSheets        = "sheets"
	ComponentSecurity      = "security"
	ComponentRateLimit     = "rate_limit"
	ComponentTrace         = "trace"
	ComponentBackend       = "backend"
	ComponentTemplate      = "template"
	ComponentTelemetry     = "telemetry"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpList      = "list"
	OpAnalytics = "analytics"
	OpAuthorize = "authorize"
	OpRevoke    = "revoke"
	OpDelete    = "delete"
	OpFind      = "find_duplicates"
	OpPublish   = "publish"
	OpAppend    = "append"
	OpRender    = "render"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the identifying fields of a service record.
func (f LogFields) WithRecord(id, title, serviceType string, priceCents int64) LogFields {
	if id != "" {
		f[FieldRecordID] = id
	}
	f[FieldTitle] = title
	f[FieldServiceType] = serviceType
	f[FieldPriceCents] = priceCents
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	f[FieldReferer] = referer
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
