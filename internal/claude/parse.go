package claude

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// cliEnvelope is the --output-format json wrapper. Agents differ in which
// field carries the answer.
type cliEnvelope struct {
	Type             string          `json:"type"`
	Content          string          `json:"content"`
	Result           string          `json:"result"`
	Error            string          `json:"error"`
	SessionID        string          `json:"session_id"`
	StructuredOutput json.RawMessage `json:"structured_output"`
}

// ParseResponse extracts the answer from raw CLI output. Precedence is
// structured_output (when a non-empty object), then content, then result,
// then the extracted JSON itself. Output with no JSON object yields "".
func ParseResponse(raw []byte) (content string, sessionID string, err error) {
	extracted := ExtractJSON(string(raw))
	if extracted == "" {
		return "", "", nil
	}

	var env cliEnvelope
	if err := json.Unmarshal([]byte(extracted), &env); err != nil {
		return "", "", fmt.Errorf("decode claude envelope: %w", err)
	}

	if so := bytes.TrimSpace(env.StructuredOutput); len(so) > 0 && !bytes.Equal(so, []byte("null")) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, so); err == nil && buf.String() != "{}" {
			return buf.String(), env.SessionID, nil
		}
	}
	if env.Content != "" {
		return env.Content, env.SessionID, nil
	}
	if env.Result != "" {
		return env.Result, env.SessionID, nil
	}
	if env.Type == "" && env.SessionID == "" {
		return extracted, "", nil
	}
	return "", env.SessionID, nil
}

// ExtractJSON returns the substring from the first '{' to the last '}', or ""
// when there is no such pair.
func ExtractJSON(content string) string {
	start := -1
	for i, c := range content {
		if c == '{' {
			start = i
			break
		}
	}

	end := -1
	for i := len(content) - 1; i >= 0; i-- {
		if content[i] == '}' {
			end = i
			break
		}
	}

	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return ""
}
