package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// fakeAPI serves /v1/messages with a canned text reply and records request bodies.
type fakeAPI struct {
	mu     sync.Mutex
	bodies []map[string]any
	reply  string
	status int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.bodies = append(f.bodies, body)
	status, reply := f.status, f.reply
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 && status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
		return
	}
	resp := map[string]any{
		"id":            "msg_test",
		"type":          "message",
		"role":          "assistant",
		"model":         "claude-test",
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"content":       []map[string]any{{"type": "text", "text": reply}},
		"usage":         map[string]any{"input_tokens": 10, "output_tokens": 5},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeAPI) lastBody() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bodies) == 0 {
		return nil
	}
	return f.bodies[len(f.bodies)-1]
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	return NewClient(slog.New(slog.DiscardHandler), Options{
		APIKey:    "test-key",
		Model:     "claude-test",
		MaxTokens: 512,
		Timeout:   5 * time.Second,
	}, option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
}

func TestClient_Complete(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{reply: "Think about the base case first."}
	c := newTestClient(t, api)

	got, err := c.Complete(context.Background(), "what is recursion?", domain.GenerateOptions{
		System:      "be brief",
		Temperature: 0.3,
		MaxTokens:   100,
	})
	require.NoError(t, err)
	assert.Equal(t, "Think about the base case first.", got)

	body := api.lastBody()
	require.NotNil(t, body)
	assert.Equal(t, "claude-test", body["model"])
	assert.EqualValues(t, 100, body["max_tokens"])
	assert.InDelta(t, 0.3, body["temperature"], 1e-9)
	assert.NotNil(t, body["system"])
}

func TestClient_Complete_DefaultsMaxTokens(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{reply: "ok"}
	c := newTestClient(t, api)

	_, err := c.Complete(context.Background(), "hi", domain.GenerateOptions{})
	require.NoError(t, err)

	body := api.lastBody()
	assert.EqualValues(t, 512, body["max_tokens"])
	_, hasSystem := body["system"]
	assert.False(t, hasSystem)
	_, hasTemp := body["temperature"]
	assert.False(t, hasTemp)
}

func TestClient_Complete_APIError(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{status: http.StatusBadRequest}
	c := newTestClient(t, api)

	_, err := c.Complete(context.Background(), "hi", domain.GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)

	var genErr *domain.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "complete", genErr.Op)
}

func TestClient_Complete_EmptyText(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, &fakeAPI{reply: ""})

	_, err := c.Complete(context.Background(), "hi", domain.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestClient_CompleteStructured(t *testing.T) {
	t.Parallel()

	type payload struct {
		Handler   string `json:"handler"`
		Reasoning string `json:"reasoning"`
	}

	tests := []struct {
		name     string
		reply    string
		want     payload
		mismatch bool
	}{
		{
			name:  "bare object",
			reply: `{"handler":"viva","reasoning":"code upload"}`,
			want:  payload{Handler: "viva", Reasoning: "code upload"},
		},
		{
			name:  "wrapped in prose and fences",
			reply: "Sure!\n```json\n{\"handler\":\"schedule\",\"reasoning\":\"asks for plan\"}\n```",
			want:  payload{Handler: "schedule", Reasoning: "asks for plan"},
		},
		{name: "no object", reply: "I cannot decide.", mismatch: true},
		{name: "broken object", reply: `{"handler": "viva", }`, mismatch: true},
		{name: "wrong types", reply: `{"handler": 42}`, mismatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, &fakeAPI{reply: tt.reply})

			var got payload
			err := c.CompleteStructured(context.Background(), "route this", `{"handler": "string"}`, domain.GenerateOptions{}, &got)
			if tt.mismatch {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
				assert.ErrorIs(t, err, domain.ErrGeneration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_CompleteStructured_AppendsSchema(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{reply: `{}`}
	c := newTestClient(t, api)

	var out map[string]any
	require.NoError(t, c.CompleteStructured(context.Background(), "classify", `{"x": 0}`, domain.GenerateOptions{}, &out))

	body := api.lastBody()
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	raw, _ := json.Marshal(msgs[0])
	assert.Contains(t, string(raw), `Output ONLY a JSON object matching this schema`)
	assert.NotNil(t, body["system"])
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: `{"a":1}`, want: `{"a":1}`},
		{in: `prefix {"a":{"b":2}} suffix`, want: `{"a":{"b":2}}`},
		{in: `no json`, wantErr: true},
		{in: `} backwards {`, wantErr: true},
	}
	for _, tt := range tests {
		got, err := extractJSON(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("extractJSON(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("extractJSON(%q): got %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}
