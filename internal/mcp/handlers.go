package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/ops"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/session"
)

// Handlers holds dependencies for MCP tool handlers.
// One server plays one game; mu serializes every call that touches it.
type Handlers struct {
	env *ops.Env

	mu   sync.Mutex
	sess *session.Session
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env *ops.Env) *Handlers {
	return &Handlers{env: env}
}

// Request types for each tool

// EpisodeValidateRequest represents the arguments for episode_validate.
type EpisodeValidateRequest struct {
	Episode  int    `json:"episode"`
	Language string `json:"language,omitempty"`
	Reload   bool   `json:"reload,omitempty"`
}

// SessionStartRequest represents the arguments for session_start.
type SessionStartRequest struct {
	Episode    int    `json:"episode,omitempty"`
	Language   string `json:"language,omitempty"`
	StartEvent int    `json:"start_event,omitempty"`
	Resume     bool   `json:"resume,omitempty"`
	Slot       int    `json:"slot,omitempty"`
}

// SessionChooseRequest represents the arguments for session_choose.
type SessionChooseRequest struct {
	Index *int `json:"index"`
}

// SessionTranscriptRequest represents the arguments for session_transcript.
type SessionTranscriptRequest struct {
	Format string `json:"format,omitempty"`
	Write  bool   `json:"write,omitempty"`
	Path   string `json:"path,omitempty"`
}

// SlotRequest represents the arguments for the save_* tools.
type SlotRequest struct {
	Slot int `json:"slot,omitempty"`
}

// Handler implementations

// HandleEpisodeList handles the episode_list tool call.
func (h *Handlers) HandleEpisodeList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListEpisodes(h.env)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleEpisodeValidate handles the episode_validate tool call.
func (h *Handlers) HandleEpisodeValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EpisodeValidateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Validate(h.env, ops.ValidateInput{
		Episode:  input.Episode,
		Language: input.Language,
		Reload:   input.Reload,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionStart handles the session_start tool call.
// A failed start keeps the game in progress.
func (h *Handlers) HandleSessionStart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionStartRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sess, err := h.env.NewSession()
	if err != nil {
		return errorResult(err), nil
	}
	result, err := ops.Start(h.env, sess, ops.StartInput{
		Episode:    input.Episode,
		Language:   input.Language,
		StartEvent: input.StartEvent,
		Resume:     input.Resume,
		Slot:       input.Slot,
	})
	if err != nil {
		return errorResult(err), nil
	}
	h.sess = sess
	return successResult(result)
}

// HandleSessionChoose handles the session_choose tool call.
func (h *Handlers) HandleSessionChoose(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionChooseRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Index == nil {
		return errorResult(errors.NewInvalidRequest("index is required")), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sess, err := h.session()
	if err != nil {
		return errorResult(err), nil
	}
	result, err := ops.Choose(h.env, sess, *input.Index)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionState handles the session_state tool call.
func (h *Handlers) HandleSessionState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, err := h.session()
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(sess.Current())
}

// HandleSessionRestart handles the session_restart tool call.
func (h *Handlers) HandleSessionRestart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, err := h.session()
	if err != nil {
		return errorResult(err), nil
	}
	if err := sess.Restart(); err != nil {
		return errorResult(err), nil
	}
	return successResult(sess.Current())
}

// HandleSessionTranscript handles the session_transcript tool call.
func (h *Handlers) HandleSessionTranscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionTranscriptRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sess, err := h.session()
	if err != nil {
		return errorResult(err), nil
	}
	result, err := ops.SessionTranscript(h.env, sess, ops.TranscriptInput{
		Format: input.Format,
		Write:  input.Write,
		Path:   input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSaveStore handles the save_store tool call.
func (h *Handlers) HandleSaveStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SlotRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sess, err := h.session()
	if err != nil {
		return errorResult(err), nil
	}
	result, err := ops.Save(h.env, sess, input.Slot)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSaveLoad handles the save_load tool call.
func (h *Handlers) HandleSaveLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SlotRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	snap, err := ops.LoadSave(h.env, input.Slot)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"found": snap != nil,
		"save":  snap,
	})
}

// HandleSaveDelete handles the save_delete tool call.
func (h *Handlers) HandleSaveDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SlotRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := ops.DeleteSave(h.env, input.Slot); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"deleted": true, "slot": input.Slot})
}

// HandleSaveList handles the save_list tool call.
func (h *Handlers) HandleSaveList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := ops.ListSaves(h.env)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTapeList handles the tape_list tool call.
func (h *Handlers) HandleTapeList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := ops.ListTapes(h.env, h.sess)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// session returns the game in progress. Callers hold mu.
func (h *Handlers) session() (*session.Session, error) {
	if h.sess == nil {
		return nil, errors.NewNotInEvent(session.Uninitialized.String())
	}
	return h.sess, nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var engErr *errors.EngineError
	if stderrors.As(err, &engErr) {
		msg := engErr.Message
		if err != error(engErr) {
			// keep the wrapper's context
			msg = err.Error()
		}
		errorObj := map[string]any{
			"code":    engErr.Code,
			"message": msg,
			"status":  engErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if engErr.Code != errors.ErrInternal && engErr.Details != nil {
			errorObj["details"] = engErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
