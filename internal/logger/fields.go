package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, carried in the request context.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldRoute is the matched gin route pattern
	FieldRoute = "route"
)

// Domain fields.
const (
	FieldFilter   = "filter"
	FieldArtifact = "artifact"
	FieldQuery    = "query"
	FieldAnimal   = "animal"
)

// Metric fields, used with the Entry API.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
