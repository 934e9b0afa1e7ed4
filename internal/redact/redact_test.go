package redact_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/tasker-api/internal/redact"
	"github.com/stretchr/testify/assert"
)

func TestRedactString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no sensitive data",
			input:    "Task with id 42 not found.",
			expected: "Task with id 42 not found.",
		},
		{
			name:     "database connection string",
			input:    "failed to connect to postgres://tasker:hunter22@db:5432/tasker",
			expected: "failed to connect to [REDACTED_CREDENTIAL]db:5432/tasker",
		},
		{
			name:     "password parameter",
			input:    "login failed password=secret123 for user",
			expected: "login failed password=[REDACTED_CREDENTIAL] for user",
		},
		{
			name:     "API key",
			input:    "intake rejected api_key=abcdef1234567890 with 403",
			expected: "intake rejected api_key=[REDACTED_KEY] with 403",
		},
		{
			name:     "JWT secret",
			input:    "config jwt_secret: thisisaverylongsecretvalue",
			expected: "config jwt_secret=[REDACTED_KEY]",
		},
		{
			name: "JWT",
			input: "rejected Bearer eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
				"eyJzdWIiOiIxMjM0NTY3ODkwIn0.SflKxwRJSMeKKF2QT4fwpMeJf36POk6yJV_adQssw5c",
			expected: "rejected Bearer [REDACTED_JWT]",
		},
		{
			name:     "opaque bearer token",
			input:    "rejected Bearer abc123.def",
			expected: "rejected Bearer [REDACTED_TOKEN]",
		},
		{
			name:     "file path",
			input:    "open /etc/tasker/config.yaml: permission denied",
			expected: "open [REDACTED_PATH]: permission denied",
		},
		{
			name:     "stack trace",
			input:    "handler crashed: panic: boom\ngoroutine 1 [running]:\nmain.main()",
			expected: "handler crashed: [STACK_TRACE_REDACTED]",
		},
		{
			name:     "email address",
			input:    "account admin@example.com locked",
			expected: "account [REDACTED_EMAIL] locked",
		},
		{
			name:     "SQL statement",
			input:    "query failed: SELECT data FROM documents WHERE collection = $1",
			expected: "query failed: [REDACTED_SQL]",
		},
		{
			name:     "lowercase verbs are not SQL",
			input:    "failed to update task",
			expected: "failed to update task",
		},
		{
			name:     "broker address",
			input:    "dial tcp kafka-1.internal:9092: connection refused",
			expected: "dial tcp [REDACTED_HOST]: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, redact.String(tt.input))
		})
	}
}

func TestRedactError(t *testing.T) {
	assert.Equal(t, "", redact.Error(nil))

	base := errors.New("connect postgres://u:p@db/tasker")
	wrapped := fmt.Errorf("open store: %w", base)
	assert.Equal(t, "open store: connect [REDACTED_CREDENTIAL]db/tasker", redact.Error(wrapped))
}
