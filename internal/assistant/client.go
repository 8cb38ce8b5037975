package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// filePurpose tags uploaded files for use by assistant runs.
const filePurpose = "assistants"

// RemoteError carries a non-2xx or undecodable response from the remote
// assistant service.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("assistant service error: status %d: %s", e.StatusCode, e.Body)
}

// Message extracts the remote error message when the body carries the usual
// {"error":{"message":...}} envelope, falling back to the raw body text.
func (e *RemoteError) Message() string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(e.Body)
}

// Client is a thin wrapper over the Assistants v2 REST API. Every call is a
// single request/response; no retries are performed at this layer.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	betaHeader string
}

func NewClient(baseURL, apiKey, betaHeader string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		betaHeader: betaHeader,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", c.betaHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to assistant service failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &RemoteError{StatusCode: resp.StatusCode, Body: "malformed response body: " + string(respBody)}
		}
	}
	return nil
}

// CreateThread opens a new remote conversation and returns its id.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var thread Thread
	if err := c.do(ctx, http.MethodPost, "/threads", map[string]any{}, &thread); err != nil {
		return "", err
	}
	return thread.ID, nil
}

// CreateMessage appends a message to a thread and returns the message id.
func (c *Client) CreateMessage(ctx context.Context, threadID, role, content string, attachments []Attachment) (string, error) {
	var msg Message
	req := MessageRequest{Role: role, Content: content, Attachments: attachments}
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/messages", req, &msg); err != nil {
		return "", err
	}
	return msg.ID, nil
}

// CreateRun starts an assistant invocation on the thread.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error) {
	var run Run
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", RunRequest{AssistantID: assistantID}, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRun fetches the current run state, including any required action.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var run Run
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRunSteps lists the run's steps in the remote's order.
func (c *Client) GetRunSteps(ctx context.Context, threadID, runID string) ([]RunStep, error) {
	var list RunStepList
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID+"/steps", nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// SubmitToolOutputs answers pending tool calls so the run can resume.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error) {
	var run Run
	req := SubmitToolOutputsRequest{ToolOutputs: outputs}
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs/"+runID+"/submit_tool_outputs", req, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListMessages returns the thread's messages, newest first.
func (c *Client) ListMessages(ctx context.Context, threadID string) (*MessageList, error) {
	var list MessageList
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/messages", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// UploadFile forwards file content to the remote file store with the
// assistants purpose tag and returns the remote file id.
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("purpose", filePurpose); err != nil {
		return "", fmt.Errorf("failed to write purpose field: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("failed to copy file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("file upload request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &RemoteError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var file File
	if err := json.Unmarshal(respBody, &file); err != nil {
		return "", &RemoteError{StatusCode: resp.StatusCode, Body: "malformed response body: " + string(respBody)}
	}
	return file.ID, nil
}
