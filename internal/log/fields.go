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
	FieldError      = "error"
	FieldSource     = "source"
	FieldRows       = "rows"
	FieldDropped    = "dropped_rows"
	FieldStart      = "start"
	FieldEnd        = "end"
	FieldPort       = "port"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentLoader = "loader"
	ComponentCLI    = "cli"
)
