package claude

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name          string
		rawOutput     string
		wantContent   string
		wantSessionID string
	}{
		{
			name:          "content field",
			rawOutput:     `{"content":"Perhaps the mornings feel lighter.","error":"","session_id":"abc-123"}`,
			wantContent:   "Perhaps the mornings feel lighter.",
			wantSessionID: "abc-123",
		},
		{
			name:          "structured_output from --json-schema",
			rawOutput:     `{"type":"result","session_id":"s-1","structured_output":{"reflection":"Maybe."}}`,
			wantContent:   `{"reflection":"Maybe."}`,
			wantSessionID: "s-1",
		},
		{
			name:          "structured_output null falls through to content",
			rawOutput:     `{"type":"result","content":"Via content","session_id":"s-2","structured_output":null}`,
			wantContent:   "Via content",
			wantSessionID: "s-2",
		},
		{
			name:          "structured_output empty object falls through to content",
			rawOutput:     `{"type":"result","content":"Via content","session_id":"s-3","structured_output":{}}`,
			wantContent:   "Via content",
			wantSessionID: "s-3",
		},
		{
			name:          "result field",
			rawOutput:     `{"type":"result","result":"Agent text","session_id":"s-4"}`,
			wantContent:   "Agent text",
			wantSessionID: "s-4",
		},
		{
			name:        "code-fenced JSON",
			rawOutput:   "Here it is:\n```json\n{\"reflection\":\"Perhaps.\"}\n```\n",
			wantContent: `{"reflection":"Perhaps."}`,
		},
		{
			name:          "warning prefix before envelope",
			rawOutput:     "Error: some warning\n" + `{"content":"Result","session_id":"mixed-456"}`,
			wantContent:   "Result",
			wantSessionID: "mixed-456",
		},
		{name: "plain text", rawOutput: "Plain text output without JSON"},
		{name: "empty", rawOutput: ""},
		{name: "unclosed brace", rawOutput: `{"status":"success`},
		{name: "closing brace only", rawOutput: `}`},
		{
			name:          "nested JSON in content",
			rawOutput:     `{"content":"{\"nested\":\"value\"}","session_id":"nested-123"}`,
			wantContent:   `{"nested":"value"}`,
			wantSessionID: "nested-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, sessionID, err := ParseResponse([]byte(tt.rawOutput))
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, content)
			assert.Equal(t, tt.wantSessionID, sessionID)
		})
	}
}

func TestParseResponseInvalidJSON(t *testing.T) {
	_, _, err := ParseResponse([]byte(`{"content": nope}`))
	assert.Error(t, err)
}

func TestBuildArgs(t *testing.T) {
	inv := NewInvoker()
	inv.Model = "sonnet"

	args, err := inv.buildArgs(Request{Prompt: "reflect", Schema: `{"type":"object"}`})
	require.NoError(t, err)

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "--system-prompt "+DefaultSystemPrompt)
	assert.Contains(t, joined, "-p reflect")
	assert.Contains(t, joined, "--model sonnet")
	assert.Contains(t, joined, `--json-schema {"type":"object"}`)
	assert.Contains(t, joined, "--output-format json")
	assert.Equal(t, `{"disableAllHooks": true}`, args[len(args)-1])

	override, err := inv.buildArgs(Request{Prompt: "x", SystemPrompt: "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", override[1])

	_, err = inv.buildArgs(Request{Prompt: "  "})
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestNewInvoker(t *testing.T) {
	inv := NewInvoker()
	assert.Equal(t, "claude", inv.ClaudePath)
	assert.Equal(t, DefaultSystemPrompt, inv.SystemPrompt)
	assert.Contains(t, DefaultSystemPrompt, "JSON")
	assert.Contains(t, DefaultSystemPrompt, "one possible future")
}

func TestInvokeMissingBinary(t *testing.T) {
	inv := NewInvoker()
	inv.ClaudePath = "/nonexistent/claude-binary"

	_, err := inv.Invoke(context.Background(), Request{Prompt: "reflect"})
	assert.Error(t, err)
}

func TestSetCleanEnv(t *testing.T) {
	t.Setenv("TMPDIR", "/tmp/elsewhere")
	cmd := exec.Command("true")
	SetCleanEnv(cmd)

	var tmp []string
	for _, kv := range cmd.Env {
		if strings.HasPrefix(kv, "TMPDIR=") {
			tmp = append(tmp, kv)
		}
	}
	assert.Equal(t, []string{"TMPDIR=" + CleanTmpDir()}, tmp)
}
