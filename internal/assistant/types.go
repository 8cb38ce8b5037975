package assistant

// Message roles accepted by the threads API.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// RunStatus is the remote run lifecycle vocabulary. The remote service owns
// this contract; unexpected values are carried through unchanged rather than
// rejected.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusIncomplete     RunStatus = "incomplete"
	RunStatusFailed         RunStatus = "failed"
	RunStatusExpired        RunStatus = "expired"
)

// IsTerminal reports whether the run can no longer change state.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled, RunStatusExpired, RunStatusIncomplete:
		return true
	}
	return false
}

type Thread struct {
	ID        string            `json:"id"`
	Object    string            `json:"object"`
	CreatedAt int64             `json:"created_at"`
	Metadata  map[string]string `json:"metadata"`
}

type AttachmentTool struct {
	Type string `json:"type"`
}

type Attachment struct {
	FileID string           `json:"file_id"`
	Tools  []AttachmentTool `json:"tools"`
}

type MessageRequest struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Text struct {
	Value       string `json:"value"`
	Annotations []any  `json:"annotations"`
}

type Content struct {
	Type string `json:"type"`
	Text Text   `json:"text"`
}

type Message struct {
	ID          string         `json:"id"`
	Object      string         `json:"object"`
	CreatedAt   int64          `json:"created_at"`
	AssistantID *string        `json:"assistant_id"`
	ThreadID    string         `json:"thread_id"`
	RunID       *string        `json:"run_id"`
	Role        string         `json:"role"`
	Content     []Content      `json:"content"`
	Metadata    map[string]any `json:"metadata"`
}

// MessageList is the newest-first message page the remote returns.
type MessageList struct {
	Object  string    `json:"object"`
	Data    []Message `json:"data"`
	FirstID string    `json:"first_id"`
	LastID  string    `json:"last_id"`
	HasMore bool      `json:"has_more"`
}

type RunRequest struct {
	AssistantID string `json:"assistant_id"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Output    string `json:"output,omitempty"`
}

// ToolCall is one pending or answered tool invocation. Type "function" calls
// must be answered locally; other types are handled by the remote service.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type SubmitToolOutputsDetail struct {
	ToolCalls []ToolCall `json:"tool_calls"`
}

type RequiredAction struct {
	Type              string                   `json:"type"`
	SubmitToolOutputs *SubmitToolOutputsDetail `json:"submit_tool_outputs"`
}

type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Run struct {
	ID             string          `json:"id"`
	Object         string          `json:"object"`
	CreatedAt      int64           `json:"created_at"`
	AssistantID    string          `json:"assistant_id"`
	ThreadID       string          `json:"thread_id"`
	Status         RunStatus       `json:"status"`
	RequiredAction *RequiredAction `json:"required_action"`
	LastError      *RunError       `json:"last_error"`
}

type StepDetails struct {
	Type      string     `json:"type"`
	ToolCalls []ToolCall `json:"tool_calls"`
}

type RunStep struct {
	ID          string      `json:"id"`
	Object      string      `json:"object"`
	CreatedAt   int64       `json:"created_at"`
	RunID       string      `json:"run_id"`
	ThreadID    string      `json:"thread_id"`
	Type        string      `json:"type"`
	Status      string      `json:"status"`
	StepDetails StepDetails `json:"step_details"`
}

type RunStepList struct {
	Object  string    `json:"object"`
	Data    []RunStep `json:"data"`
	HasMore bool      `json:"has_more"`
}

type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

type SubmitToolOutputsRequest struct {
	ToolOutputs []ToolOutput `json:"tool_outputs"`
}

type File struct {
	ID       string `json:"id"`
	Object   string `json:"object"`
	Bytes    int64  `json:"bytes"`
	Filename string `json:"filename"`
	Purpose  string `json:"purpose"`
}
