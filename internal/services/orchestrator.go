package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"liftassist-backend/internal/assistant"
	"liftassist-backend/internal/models"
	"liftassist-backend/internal/tools"
	logx "liftassist-backend/pkg/logger"
)

const toolCallTypeFunction = "function"

// StartRequest carries everything needed to submit a user turn.
type StartRequest struct {
	Message            string
	ThreadID           string
	SystemInstructions string
	History            []models.ChatMessage
	FileIDs            []string
}

// Orchestrator drives the remote run lifecycle: thread creation or reuse,
// message submission, run creation, and tool-call resolution during status
// polling. It holds no per-conversation state of its own; thread and run ids
// are opaque correlation tokens owned by the remote service.
type Orchestrator struct {
	client       *assistant.Client
	registry     *tools.Registry
	assistantID  string
	pollInterval time.Duration
	maxAttempts  int
}

func NewOrchestrator(client *assistant.Client, registry *tools.Registry, assistantID string, pollInterval time.Duration, maxAttempts int) *Orchestrator {
	return &Orchestrator{
		client:       client,
		registry:     registry,
		assistantID:  assistantID,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
	}
}

// Start reuses or creates a thread, appends the user turn, and starts a run.
// The returned (threadID, runID) pair is the caller's sole polling handle.
func (o *Orchestrator) Start(ctx context.Context, req StartRequest) (string, string, error) {
	threadID := req.ThreadID
	if threadID == "" {
		var err error
		threadID, err = o.client.CreateThread(ctx)
		if err != nil {
			return "", "", fmt.Errorf("failed to create thread: %w", err)
		}
		for _, msg := range req.History {
			if _, err := o.client.CreateMessage(ctx, threadID, msg.Role, msg.Content, nil); err != nil {
				return "", "", fmt.Errorf("failed to replay history message: %w", err)
			}
		}
		logx.Info().Str("thread_id", threadID).Int("history_messages", len(req.History)).Msg("thread created")
	}

	if req.SystemInstructions != "" {
		// threads accept only user/assistant roles, so instructions ride
		// along as a user message immediately before the real one
		if _, err := o.client.CreateMessage(ctx, threadID, assistant.RoleUser, req.SystemInstructions, nil); err != nil {
			return "", "", fmt.Errorf("failed to post system instructions: %w", err)
		}
	}

	var attachments []assistant.Attachment
	for _, fileID := range req.FileIDs {
		attachments = append(attachments, assistant.Attachment{
			FileID: fileID,
			Tools:  []assistant.AttachmentTool{{Type: "file_search"}},
		})
	}
	if _, err := o.client.CreateMessage(ctx, threadID, assistant.RoleUser, req.Message, attachments); err != nil {
		return "", "", fmt.Errorf("failed to post user message: %w", err)
	}

	run, err := o.client.CreateRun(ctx, threadID, o.assistantID)
	if err != nil {
		return "", "", fmt.Errorf("failed to create run: %w", err)
	}
	logx.Info().Str("thread_id", threadID).Str("run_id", run.ID).Str("status", string(run.Status)).Msg("run started")
	return threadID, run.ID, nil
}

// ResolveStatus fetches the current run status, answering any pending
// function tool calls along the way. Non-terminal statuses are returned
// as-is; the caller keeps polling.
func (o *Orchestrator) ResolveStatus(ctx context.Context, threadID, runID string) (assistant.RunStatus, error) {
	run, err := o.client.GetRun(ctx, threadID, runID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch run: %w", err)
	}
	if run.Status != assistant.RunStatusRequiresAction {
		return run.Status, nil
	}

	outputs := o.collectToolOutputs(run)
	if len(outputs) == 0 {
		// only built-in tool calls are pending; the remote resolves those
		// itself, so re-poll instead of submitting an empty batch
		refreshed, err := o.client.GetRun(ctx, threadID, runID)
		if err != nil {
			return "", fmt.Errorf("failed to re-fetch run: %w", err)
		}
		return refreshed.Status, nil
	}

	submitted, err := o.client.SubmitToolOutputs(ctx, threadID, runID, outputs)
	if err != nil {
		return "", fmt.Errorf("failed to submit tool outputs: %w", err)
	}
	logx.Info().Str("thread_id", threadID).Str("run_id", runID).Int("outputs", len(outputs)).Msg("tool outputs submitted")
	return o.waitForTerminal(ctx, threadID, runID, submitted.Status)
}

// collectToolOutputs answers each pending function-type call exactly once,
// taking the pending set from the run's required action rather than step
// history so stale or already-answered calls are never resolved twice.
func (o *Orchestrator) collectToolOutputs(run *assistant.Run) []assistant.ToolOutput {
	if run.RequiredAction == nil || run.RequiredAction.SubmitToolOutputs == nil {
		return nil
	}

	var outputs []assistant.ToolOutput
	for _, call := range run.RequiredAction.SubmitToolOutputs.ToolCalls {
		if call.Type != toolCallTypeFunction {
			continue
		}

		args := map[string]any{}
		if raw := call.Function.Arguments; raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				logx.Warn().Str("tool", call.Function.Name).Str("call_id", call.ID).Msg("malformed tool call arguments, using empty object")
				args = map[string]any{}
			}
		}

		result := o.registry.Dispatch(call.Function.Name, args)
		encoded, err := json.Marshal(result)
		if err != nil {
			encoded = []byte("{}")
		}
		outputs = append(outputs, assistant.ToolOutput{ToolCallID: call.ID, Output: string(encoded)})
	}
	return outputs
}

// waitForTerminal re-polls the run after a submission, sleeping a fixed
// interval between checks, until the run settles or the attempt cap is hit.
// Hitting the cap is not an error; the last observed status is reported and
// the caller simply polls again.
func (o *Orchestrator) waitForTerminal(ctx context.Context, threadID, runID string, status assistant.RunStatus) (assistant.RunStatus, error) {
	for attempt := 0; attempt < o.maxAttempts && !status.IsTerminal(); attempt++ {
		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-time.After(o.pollInterval):
		}

		run, err := o.client.GetRun(ctx, threadID, runID)
		if err != nil {
			return "", fmt.Errorf("failed to poll run: %w", err)
		}
		status = run.Status
	}
	return status, nil
}
