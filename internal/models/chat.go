package models

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// StartChatRequest is the payload sent to the chat start endpoint.
type StartChatRequest struct {
	Message            string        `json:"message"`
	ThreadID           string        `json:"threadId,omitempty"`
	SystemInstructions string        `json:"systemInstructions,omitempty"`
	History            []ChatMessage `json:"history,omitempty"`
	FileIDs            []string      `json:"fileIds,omitempty"`
}

// StartChatResponse hands back the polling handle for the started run.
type StartChatResponse struct {
	ThreadID string `json:"threadId"`
	RunID    string `json:"runId"`
}

// StatusResponse reports the resolved run status to the polling client.
type StatusResponse struct {
	Status string `json:"status"`
}

// UploadResponse lists the remote ids of forwarded files.
type UploadResponse struct {
	FileIDs []string `json:"fileIds"`
}
