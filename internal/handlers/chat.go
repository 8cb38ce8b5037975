package handlers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"liftassist-backend/internal/assistant"
	"liftassist-backend/internal/models"
	"liftassist-backend/internal/services"
)

type chatOrchestrator interface {
	Start(ctx context.Context, req services.StartRequest) (string, string, error)
	ResolveStatus(ctx context.Context, threadID, runID string) (assistant.RunStatus, error)
}

type resultAssembler interface {
	Result(ctx context.Context, threadID, runID string) (*services.ChatResult, error)
}

type fileUploader interface {
	UploadAll(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
}

type threadLister interface {
	ListMessages(ctx context.Context, threadID string) (*assistant.MessageList, error)
}

type ChatHandler struct {
	orchestrator chatOrchestrator
	assembler    resultAssembler
	uploader     fileUploader
	threads      threadLister
}

func NewChatHandler(orchestrator chatOrchestrator, assembler resultAssembler, uploader fileUploader, threads threadLister) *ChatHandler {
	return &ChatHandler{
		orchestrator: orchestrator,
		assembler:    assembler,
		uploader:     uploader,
		threads:      threads,
	}
}

// Start accepts a user message, submits it into a new or existing thread,
// and returns the (threadId, runId) polling handle.
func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StartChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	threadID, runID, err := h.orchestrator.Start(r.Context(), services.StartRequest{
		Message:            req.Message,
		ThreadID:           req.ThreadID,
		SystemInstructions: req.SystemInstructions,
		History:            req.History,
		FileIDs:            req.FileIDs,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.StartChatResponse{ThreadID: threadID, RunID: runID})
}

// Status resolves the run's current status, answering pending tool calls as
// a side effect.
func (h *ChatHandler) Status(w http.ResponseWriter, r *http.Request) {
	threadID := r.URL.Query().Get("threadId")
	runID := r.URL.Query().Get("runId")
	if threadID == "" || runID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "threadId and runId are required", r))
		return
	}

	status, err := h.orchestrator.ResolveStatus(r.Context(), threadID, runID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.StatusResponse{Status: string(status)})
}

// Result assembles the final reply and tool outputs for a thread.
func (h *ChatHandler) Result(w http.ResponseWriter, r *http.Request) {
	threadID := r.URL.Query().Get("threadId")
	if threadID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "threadId is required", r))
		return
	}
	runID := r.URL.Query().Get("runId")

	result, err := h.assembler.Result(r.Context(), threadID, runID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ThreadMessages passes the raw remote message list through for debugging.
func (h *ChatHandler) ThreadMessages(w http.ResponseWriter, r *http.Request) {
	threadID := r.URL.Query().Get("threadId")
	if threadID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "threadId is required", r))
		return
	}

	list, err := h.threads.ListMessages(r.Context(), threadID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// Upload forwards multipart file fields to the remote file store.
func (h *ChatHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 32<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart body", r))
		return
	}

	var files []*multipart.FileHeader
	for _, headers := range r.MultipartForm.File {
		files = append(files, headers...)
	}
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No files provided", r))
		return
	}

	fileIDs, err := h.uploader.UploadAll(r.Context(), files)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.UploadResponse{FileIDs: fileIDs})
}
