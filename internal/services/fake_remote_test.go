package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"liftassist-backend/internal/assistant"
)

// fakeRemote scripts the remote assistant service for orchestrator and
// assembler tests. GetRun responses are served in order, with the last one
// repeating once the script is exhausted.
type fakeRemote struct {
	t *testing.T

	mu               sync.Mutex
	threadCreates    int
	runCreates       int
	runAssistantID   string
	messages         []postedMessage
	getRunResponses  []string
	getRunCount      int
	submitCount      int
	submittedOutputs []assistant.ToolOutput
	submitResponse   string
	stepsResponse    string
	messagesResponse string
}

type postedMessage struct {
	Role        string
	Content     string
	Attachments []assistant.Attachment
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()
	return &fakeRemote{
		t:                t,
		submitResponse:   `{"id":"run_1","status":"queued"}`,
		stepsResponse:    `{"object":"list","data":[]}`,
		messagesResponse: `{"object":"list","data":[]}`,
	}
}

func (f *fakeRemote) start() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /threads", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.threadCreates++
		f.mu.Unlock()
		writeBody(w, `{"id":"thread_new","object":"thread"}`)
	})

	mux.HandleFunc("POST /threads/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		var req assistant.MessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			f.t.Errorf("Failed to decode message request: %v", err)
		}
		f.mu.Lock()
		f.messages = append(f.messages, postedMessage{Role: req.Role, Content: req.Content, Attachments: req.Attachments})
		f.mu.Unlock()
		writeBody(w, `{"id":"msg_1","object":"thread.message"}`)
	})

	mux.HandleFunc("GET /threads/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, f.messagesResponse)
	})

	mux.HandleFunc("POST /threads/{id}/runs", func(w http.ResponseWriter, r *http.Request) {
		var req assistant.RunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			f.t.Errorf("Failed to decode run request: %v", err)
		}
		f.mu.Lock()
		f.runCreates++
		f.runAssistantID = req.AssistantID
		f.mu.Unlock()
		writeBody(w, `{"id":"run_1","object":"thread.run","status":"queued"}`)
	})

	mux.HandleFunc("GET /threads/{id}/runs/{rid}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		idx := f.getRunCount
		if idx >= len(f.getRunResponses) {
			idx = len(f.getRunResponses) - 1
		}
		f.getRunCount++
		body := f.getRunResponses[idx]
		f.mu.Unlock()
		writeBody(w, body)
	})

	mux.HandleFunc("POST /threads/{id}/runs/{rid}/submit_tool_outputs", func(w http.ResponseWriter, r *http.Request) {
		var req assistant.SubmitToolOutputsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			f.t.Errorf("Failed to decode submit request: %v", err)
		}
		f.mu.Lock()
		f.submitCount++
		f.submittedOutputs = append(f.submittedOutputs, req.ToolOutputs...)
		f.mu.Unlock()
		writeBody(w, f.submitResponse)
	})

	mux.HandleFunc("GET /threads/{id}/runs/{rid}/steps", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, f.stepsResponse)
	})

	srv := httptest.NewServer(mux)
	f.t.Cleanup(srv.Close)
	return srv
}

func writeBody(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}
