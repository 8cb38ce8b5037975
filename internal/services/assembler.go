package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"liftassist-backend/internal/assistant"
)

// FallbackReply is returned when a thread holds neither assistant text nor
// tool outputs.
const FallbackReply = "No reply from assistant."

const stepTypeToolCalls = "tool_calls"

// ChatResult is the assembled outcome of a finished (or abandoned) run.
type ChatResult struct {
	Reply       string         `json:"reply"`
	ToolOutputs map[string]any `json:"toolOutputs,omitempty"`
}

// Assembler shapes the remote thread's latest assistant reply and any
// answered tool outputs into a single response object.
type Assembler struct {
	client *assistant.Client
}

func NewAssembler(client *assistant.Client) *Assembler {
	return &Assembler{client: client}
}

// Result fetches the thread's messages (and, when runID is given, the run's
// steps) and composes the reply per the fallback rules: aggregated assistant
// text, else empty when tool outputs exist, else a fixed fallback sentence.
func (a *Assembler) Result(ctx context.Context, threadID, runID string) (*ChatResult, error) {
	list, err := a.client.ListMessages(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list thread messages: %w", err)
	}
	reply := latestAssistantReply(list)

	var toolOutputs map[string]any
	if runID != "" {
		steps, err := a.client.GetRunSteps(ctx, threadID, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch run steps: %w", err)
		}
		toolOutputs = collectStepOutputs(steps)
	}

	if reply == "" && len(toolOutputs) == 0 {
		reply = FallbackReply
	}
	return &ChatResult{Reply: reply, ToolOutputs: toolOutputs}, nil
}

// latestAssistantReply joins the text segments of the most recent
// assistant-authored message. The remote lists messages newest first.
func latestAssistantReply(list *assistant.MessageList) string {
	for _, msg := range list.Data {
		if msg.Role != assistant.RoleAssistant {
			continue
		}
		var parts []string
		for _, c := range msg.Content {
			if c.Type == "text" && c.Text.Value != "" {
				parts = append(parts, c.Text.Value)
			}
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	}
	return ""
}

// collectStepOutputs maps answered tool call names to their outputs,
// decoding string-encoded JSON where possible.
func collectStepOutputs(steps []assistant.RunStep) map[string]any {
	outputs := make(map[string]any)
	for _, step := range steps {
		if step.Type != stepTypeToolCalls {
			continue
		}
		for _, call := range step.StepDetails.ToolCalls {
			name := call.Function.Name
			raw := call.Function.Output
			if name == "" || raw == "" {
				continue
			}
			var parsed any
			if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
				outputs[name] = raw
				continue
			}
			outputs[name] = parsed
		}
	}
	if len(outputs) == 0 {
		return nil
	}
	return outputs
}
