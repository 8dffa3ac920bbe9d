package errors

import (
	"fmt"
	"testing"
)

func TestEngineError_Error(t *testing.T) {
	err := &EngineError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "episode 3 not found",
	}

	expected := "NOT_FOUND: episode 3 not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("episode is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "episode is required" {
		t.Errorf("Message = %q, want %q", err.Message, "episode is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound(2, "fr")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["episode"] != 2 {
		t.Errorf("Details[episode] = %v, want 2", err.Details["episode"])
	}
	if err.Details["language"] != "fr" {
		t.Errorf("Details[language] = %v, want %q", err.Details["language"], "fr")
	}
}

func TestNewNotFound_NoLanguage(t *testing.T) {
	err := NewNotFound(7, "")

	if err.Message != "episode 7 not found" {
		t.Errorf("Message = %q, want %q", err.Message, "episode 7 not found")
	}
}

func TestNewEventNotFound(t *testing.T) {
	err := NewEventNotFound(42)

	if err.Code != ErrEventNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrEventNotFound)
	}
	if err.Details["event_id"] != 42 {
		t.Errorf("Details[event_id] = %v, want 42", err.Details["event_id"])
	}
}

func TestNewNotInEvent(t *testing.T) {
	err := NewNotInEvent("uninitialized")

	if err.Code != ErrNotInEvent {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotInEvent)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
}

func TestNewInvalidChoice(t *testing.T) {
	err := NewInvalidChoice(4, "run")

	if err.Code != ErrInvalidChoice {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidChoice)
	}
	if err.Details["choice"] != "run" {
		t.Errorf("Details[choice] = %v, want %q", err.Details["choice"], "run")
	}
}

func TestNewParseError(t *testing.T) {
	err := NewParseError("episode01_en.json", fmt.Errorf("unexpected EOF"))

	if err.Code != ErrParseError {
		t.Errorf("Code = %q, want %q", err.Code, ErrParseError)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Message != "episode01_en.json: unexpected EOF" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewDanglingReference(t *testing.T) {
	refs := []DanglingRef{
		{EventID: 1, Choice: "open the door", NextEvent: 9},
		{EventID: 3, Choice: "wait", NextEvent: 12},
	}
	err := NewDanglingReference(refs)

	if err.Code != ErrDanglingReference {
		t.Errorf("Code = %q, want %q", err.Code, ErrDanglingReference)
	}
	want := `event 1 choice "open the door" points at missing event 9 (and 1 more)`
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
	got, ok := err.Details["references"].([]DanglingRef)
	if !ok || len(got) != 2 {
		t.Errorf("Details[references] = %v, want 2 refs", err.Details["references"])
	}
}

func TestNewInvalidNextEvent(t *testing.T) {
	err := NewInvalidNextEvent(5, "jump", 99)

	if err.Code != ErrInvalidNextEvent {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidNextEvent)
	}
	if err.Details["next_event"] != 99 {
		t.Errorf("Details[next_event] = %v, want 99", err.Details["next_event"])
	}
}

func TestNewCorruptSave(t *testing.T) {
	err := NewCorruptSave("/tmp/savegame.json", fmt.Errorf("invalid character"))

	if err.Code != ErrCorruptSave {
		t.Errorf("Code = %q, want %q", err.Code, ErrCorruptSave)
	}
	if err.Details["location"] != "/tmp/savegame.json" {
		t.Errorf("Details[location] = %v", err.Details["location"])
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Code != ErrInternal || err.Status != 500 {
		t.Errorf("got %q/%d, want INTERNAL/500", err.Code, err.Status)
	}
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	nilErr := NewInternal(nil)
	if nilErr.Message != "internal error" {
		t.Errorf("Message = %q, want %q", nilErr.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewEventNotFound(1), ErrEventNotFound, true},
		{"different code", NewEventNotFound(1), ErrNotFound, false},
		{"plain error", fmt.Errorf("boom"), ErrInternal, false},
		{"nil error", nil, ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}
