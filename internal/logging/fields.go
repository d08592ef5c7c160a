package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldMovieID is the standardized structured logging key for TMDB movie identifiers.
	FieldMovieID = "movie_id"
	// FieldTitle is the standardized structured logging key for catalog titles.
	FieldTitle = "title"
	// FieldOperation is the standardized structured logging key for caller-facing operations.
	FieldOperation = "operation"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType names the event a warning or error describes.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step an operator should take.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldFailureClass carries the services.FailureClass label of an error.
	FieldFailureClass = "failure_class"
	// FieldAttempt is the 1-based attempt number of a retried request.
	FieldAttempt = "attempt"
)
