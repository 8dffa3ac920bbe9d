package errors

import "fmt"

// ErrorCode represents an engine error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"          // 404
	ErrEventNotFound     ErrorCode = "EVENT_NOT_FOUND"    // 404
	ErrNotInEvent        ErrorCode = "NOT_IN_EVENT"       // 409
	ErrInvalidChoice     ErrorCode = "INVALID_CHOICE"     // 409
	ErrParseError        ErrorCode = "PARSE_ERROR"        // 422
	ErrEmptyEpisode      ErrorCode = "EMPTY_EPISODE"      // 422
	ErrDuplicateEventID  ErrorCode = "DUPLICATE_EVENT_ID" // 422
	ErrDanglingReference ErrorCode = "DANGLING_REFERENCE" // 422
	ErrInvalidNextEvent  ErrorCode = "INVALID_NEXT_EVENT" // 422
	ErrCorruptSave       ErrorCode = "CORRUPT_SAVE"       // 422
	ErrInternal          ErrorCode = "INTERNAL"           // 500
)

// EngineError represents a structured error with code, status, and details.
type EngineError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *EngineError {
	return &EngineError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing episode document.
func NewNotFound(episode int, language string) *EngineError {
	msg := fmt.Sprintf("episode %d not found", episode)
	if language != "" {
		msg = fmt.Sprintf("episode %d not found for language %q", episode, language)
	}
	return &EngineError{
		Code:    ErrNotFound,
		Status:  404,
		Message: msg,
		Details: map[string]any{"episode": episode, "language": language},
	}
}

// NewEventNotFound creates a 404 error for an event id missing from the graph.
func NewEventNotFound(eventID int) *EngineError {
	return &EngineError{
		Code:    ErrEventNotFound,
		Status:  404,
		Message: fmt.Sprintf("event %d not found", eventID),
		Details: map[string]any{"event_id": eventID},
	}
}

// NewNotInEvent creates a 409 error for session calls made in the wrong phase.
func NewNotInEvent(phase string) *EngineError {
	return &EngineError{
		Code:    ErrNotInEvent,
		Status:  409,
		Message: fmt.Sprintf("session is not at an event (phase %s)", phase),
		Details: map[string]any{"phase": phase},
	}
}

// NewInvalidChoice creates a 409 error for a choice that does not belong to the current event.
func NewInvalidChoice(eventID int, choice string) *EngineError {
	return &EngineError{
		Code:    ErrInvalidChoice,
		Status:  409,
		Message: fmt.Sprintf("choice %q is not offered by event %d", choice, eventID),
		Details: map[string]any{"event_id": eventID, "choice": choice},
	}
}

// NewParseError creates a 422 error for a malformed episode document.
func NewParseError(source string, err error) *EngineError {
	msg := "malformed document"
	if err != nil {
		msg = err.Error()
	}
	return &EngineError{
		Code:    ErrParseError,
		Status:  422,
		Message: fmt.Sprintf("%s: %s", source, msg),
		Details: map[string]any{"source": source},
	}
}

// NewEmptyEpisode creates a 422 error for an episode with no events.
func NewEmptyEpisode(episode int) *EngineError {
	return &EngineError{
		Code:    ErrEmptyEpisode,
		Status:  422,
		Message: fmt.Sprintf("episode %d has no events", episode),
		Details: map[string]any{"episode": episode},
	}
}

// NewDuplicateEventID creates a 422 error when two events share an id.
func NewDuplicateEventID(eventID int) *EngineError {
	return &EngineError{
		Code:    ErrDuplicateEventID,
		Status:  422,
		Message: fmt.Sprintf("duplicate event id %d", eventID),
		Details: map[string]any{"event_id": eventID},
	}
}

// DanglingRef identifies a choice whose destination does not exist.
type DanglingRef struct {
	EventID   int    `json:"event_id"`
	Choice    string `json:"choice"`
	NextEvent int    `json:"next_event"`
}

// NewDanglingReference creates a 422 error listing every choice that points at a missing event.
// The message names the first offender.
func NewDanglingReference(refs []DanglingRef) *EngineError {
	msg := "dangling choice reference"
	if len(refs) > 0 {
		first := refs[0]
		msg = fmt.Sprintf("event %d choice %q points at missing event %d", first.EventID, first.Choice, first.NextEvent)
		if len(refs) > 1 {
			msg = fmt.Sprintf("%s (and %d more)", msg, len(refs)-1)
		}
	}
	return &EngineError{
		Code:    ErrDanglingReference,
		Status:  422,
		Message: msg,
		Details: map[string]any{"references": refs},
	}
}

// NewInvalidNextEvent creates a 422 error for a choice whose destination is missing at runtime.
// Distinct from an intentional ending, which is not an error at all.
func NewInvalidNextEvent(eventID int, choice string, next int) *EngineError {
	return &EngineError{
		Code:    ErrInvalidNextEvent,
		Status:  422,
		Message: fmt.Sprintf("event %d choice %q leads to unknown event %d", eventID, choice, next),
		Details: map[string]any{"event_id": eventID, "choice": choice, "next_event": next},
	}
}

// NewCorruptSave creates a 422 error for a persisted snapshot that cannot be decoded.
func NewCorruptSave(location string, err error) *EngineError {
	msg := "save data is corrupt"
	if err != nil {
		msg = fmt.Sprintf("save data is corrupt: %v", err)
	}
	return &EngineError{
		Code:    ErrCorruptSave,
		Status:  422,
		Message: msg,
		Details: map[string]any{"location": location},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *EngineError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &EngineError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is an EngineError with the given code.
func Is(err error, code ErrorCode) bool {
	if eErr, ok := err.(*EngineError); ok {
		return eErr.Code == code
	}
	return false
}
