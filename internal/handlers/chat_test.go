package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"liftassist-backend/internal/assistant"
	"liftassist-backend/internal/models"
	"liftassist-backend/internal/services"
)


type fakeOrchestrator struct {
	startCalls    int
	lastStart     services.StartRequest
	startThreadID string
	startRunID    string
	startErr      error

	status    assistant.RunStatus
	statusErr error
}

func (f *fakeOrchestrator) Start(_ context.Context, req services.StartRequest) (string, string, error) {
	f.startCalls++
	f.lastStart = req
	return f.startThreadID, f.startRunID, f.startErr
}

func (f *fakeOrchestrator) ResolveStatus(_ context.Context, _, _ string) (assistant.RunStatus, error) {
	return f.status, f.statusErr
}

type fakeAssembler struct {
	result *services.ChatResult
	err    error
}

func (f *fakeAssembler) Result(_ context.Context, _, _ string) (*services.ChatResult, error) {
	return f.result, f.err
}

type fakeUploader struct {
	gotFiles int
	ids      []string
	err      error
}

func (f *fakeUploader) UploadAll(_ context.Context, files []*multipart.FileHeader) ([]string, error) {
	f.gotFiles = len(files)
	return f.ids, f.err
}

type fakeLister struct {
	list *assistant.MessageList
	err  error
}

func (f *fakeLister) ListMessages(_ context.Context, _ string) (*assistant.MessageList, error) {
	return f.list, f.err
}

func newChatHandler(o *fakeOrchestrator, a *fakeAssembler, u *fakeUploader, l *fakeLister) *ChatHandler {
	if o == nil {
		o = &fakeOrchestrator{}
	}
	if a == nil {
		a = &fakeAssembler{result: &services.ChatResult{}}
	}
	if u == nil {
		u = &fakeUploader{}
	}
	if l == nil {
		l = &fakeLister{list: &assistant.MessageList{}}
	}
	return NewChatHandler(o, a, u, l)
}


func TestStart_MissingMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"blank message", `{"message": "   "}`},
		{"invalid json", `{not json`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := &fakeOrchestrator{}
			h := newChatHandler(o, nil, nil, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/chat/start", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			h.Start(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rr.Code)
			}
			if o.startCalls != 0 {
				t.Errorf("No remote calls may be made on validation failure, got %d", o.startCalls)
			}
		})
	}
}

func TestStart_ReturnsPollingHandle(t *testing.T) {
	o := &fakeOrchestrator{startThreadID: "thread_9", startRunID: "run_9"}
	h := newChatHandler(o, nil, nil, nil)

	body := `{
		"message": "need an outdoor forklift",
		"threadId": "thread_9",
		"systemInstructions": "be brief",
		"history": [{"role": "user", "content": "earlier"}],
		"fileIds": ["file-1"]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/start", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Start(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.StartChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.ThreadID != "thread_9" || resp.RunID != "run_9" {
		t.Errorf("Unexpected handle: %+v", resp)
	}

	if o.lastStart.Message != "need an outdoor forklift" {
		t.Errorf("Message not forwarded: %q", o.lastStart.Message)
	}
	if o.lastStart.SystemInstructions != "be brief" {
		t.Errorf("Instructions not forwarded: %q", o.lastStart.SystemInstructions)
	}
	if len(o.lastStart.History) != 1 || len(o.lastStart.FileIDs) != 1 {
		t.Errorf("History/fileIds not forwarded: %+v", o.lastStart)
	}
}

func TestStart_RemoteFailureSurfacesMessage(t *testing.T) {
	o := &fakeOrchestrator{
		startErr: &assistant.RemoteError{
			StatusCode: http.StatusBadRequest,
			Body:       `{"error":{"message":"No assistant found"}}`,
		},
	}
	h := newChatHandler(o, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/start", strings.NewReader(`{"message":"hi"}`))
	rr := httptest.NewRecorder()
	h.Start(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error.Code != "UPSTREAM_ERROR" {
		t.Errorf("Expected UPSTREAM_ERROR, got %q", resp.Error.Code)
	}
	if resp.Error.Message != "No assistant found" {
		t.Errorf("Expected remote message surfaced, got %q", resp.Error.Message)
	}
}


func TestStatus_MissingIDs(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"no params", "/api/chat/status"},
		{"missing runId", "/api/chat/status?threadId=thread_1"},
		{"missing threadId", "/api/chat/status?runId=run_1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newChatHandler(nil, nil, nil, nil)
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rr := httptest.NewRecorder()
			h.Status(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestStatus_ReturnsResolvedStatus(t *testing.T) {
	o := &fakeOrchestrator{status: assistant.RunStatusCompleted}
	h := newChatHandler(o, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/status?threadId=thread_1&runId=run_1", nil)
	rr := httptest.NewRecorder()
	h.Status(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var resp models.StatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "completed" {
		t.Errorf("Expected completed, got %q", resp.Status)
	}
}


func TestResult_MissingThreadID(t *testing.T) {
	h := newChatHandler(nil, nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/chat/result", nil)
	rr := httptest.NewRecorder()
	h.Result(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}

func TestResult_OmitsToolOutputsWhenEmpty(t *testing.T) {
	a := &fakeAssembler{result: &services.ChatResult{Reply: "here you go"}}
	h := newChatHandler(nil, a, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/result?threadId=thread_1", nil)
	rr := httptest.NewRecorder()
	h.Result(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var raw map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&raw); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if raw["reply"] != "here you go" {
		t.Errorf("Expected reply, got %v", raw["reply"])
	}
	if _, present := raw["toolOutputs"]; present {
		t.Error("toolOutputs must be omitted when no outputs were collected")
	}
}

func TestResult_IncludesToolOutputs(t *testing.T) {
	a := &fakeAssembler{result: &services.ChatResult{
		Reply:       "",
		ToolOutputs: map[string]any{"generate_filters": map[string]any{"powerSource": "electric"}},
	}}
	h := newChatHandler(nil, a, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/result?threadId=thread_1&runId=run_1", nil)
	rr := httptest.NewRecorder()
	h.Result(rr, req)

	var raw map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&raw); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if raw["reply"] != "" {
		t.Errorf("Expected empty reply, got %v", raw["reply"])
	}
	if _, present := raw["toolOutputs"]; !present {
		t.Error("toolOutputs must be present when outputs were collected")
	}
}


func TestThreadMessages_MissingThreadID(t *testing.T) {
	h := newChatHandler(nil, nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/chat/thread-messages", nil)
	rr := httptest.NewRecorder()
	h.ThreadMessages(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}


func multipartBody(t *testing.T, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, name := range filenames {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		part.Write([]byte("file content"))
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func TestUpload_NoFiles(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("note", "no files here")
	writer.Close()

	h := newChatHandler(nil, nil, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	h.Upload(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}

func TestUpload_ForwardsAllFiles(t *testing.T) {
	body, contentType := multipartBody(t, "one.pdf", "two.pdf")
	u := &fakeUploader{ids: []string{"file-1", "file-2"}}
	h := newChatHandler(nil, nil, u, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.Upload(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if u.gotFiles != 2 {
		t.Errorf("Expected 2 files forwarded, got %d", u.gotFiles)
	}
	var resp models.UploadResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.FileIDs) != 2 || resp.FileIDs[0] != "file-1" {
		t.Errorf("Unexpected fileIds: %v", resp.FileIDs)
	}
}

func TestUpload_RemoteFailureNamesFile(t *testing.T) {
	body, contentType := multipartBody(t, "one.pdf")
	remoteErr := &assistant.RemoteError{StatusCode: 500, Body: `{"error":{"message":"remote store unavailable"}}`}
	u := &fakeUploader{err: fmt.Errorf("failed to upload one.pdf: %w", remoteErr)}
	h := newChatHandler(nil, nil, u, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.Upload(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error.Code != "UPSTREAM_ERROR" {
		t.Errorf("Expected UPSTREAM_ERROR, got %q", resp.Error.Code)
	}
	if resp.Error.Message != "failed to upload one.pdf: remote store unavailable" {
		t.Errorf("Expected filename retained in message, got %q", resp.Error.Message)
	}
}
