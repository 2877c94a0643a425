package submission

// State identifies where a submission is in its lifecycle. The flow is
// Idle → Validating → Persisting → Extracting → Analyzing → ResultReady,
// with Failed as the terminal error state. Failed and ResultReady return
// to Idle only through an explicit Reset.
type State string

const (
	// StateIdle means no submission is in flight.
	StateIdle State = "idle"
	// StateValidating checks applicant fields and both uploads.
	StateValidating State = "validating"
	// StatePersisting writes the applicant record to storage.
	StatePersisting State = "persisting"
	// StateExtracting extracts text from both documents.
	StateExtracting State = "extracting"
	// StateAnalyzing calls the analysis gateway.
	StateAnalyzing State = "analyzing"
	// StateResultReady is the terminal success state.
	StateResultReady State = "result_ready"
	// StateFailed is the terminal error state.
	StateFailed State = "failed"
)

// Error is a submission failure carrying the stage it occurred in and a
// user-facing message. The wrapped cause holds internal detail for logging
// and is never shown to the user.
type Error struct {
	Stage   State
	Message string
	cause   error
}

// Error implements the error interface with the user-facing message.
func (e *Error) Error() string { return e.Message }

// Unwrap returns the internal cause.
func (e *Error) Unwrap() error { return e.cause }

func failure(stage State, message string, cause error) *Error {
	return &Error{Stage: stage, Message: message, cause: cause}
}
