package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactJSON(t *testing.T) {
	got := RedactJSON([]byte(`{"password":"pw","nested":{"access_token":"tok","keep":1},"arr":[{"secret":"s"}]}`))
	require.Contains(t, got, `"password":"***REDACTED***"`)
	require.Contains(t, got, `"access_token":"***REDACTED***"`)
	require.Contains(t, got, `"secret":"***REDACTED***"`)
	require.Contains(t, got, `"keep":1`)

	t.Run("strings inside are scrubbed", func(t *testing.T) {
		got := RedactJSON([]byte(`{"sql_query":"CREATE LOGIN app WITH PASSWORD = 'hunter2'"}`))
		assert.NotContains(t, got, "hunter2")
		assert.Contains(t, got, "CREATE LOGIN app WITH PASSWORD = ")
	})

	t.Run("not JSON", func(t *testing.T) {
		assert.Equal(t, "plain text", RedactJSON([]byte(" plain text ")))
		assert.Equal(t, "", RedactJSON(nil))
	})

	t.Run("not JSON still has passwords masked", func(t *testing.T) {
		got := RedactJSON([]byte(`{"sql_query": "ALTER LOGIN app WITH PASSWORD = 'hunter2'"`))
		assert.NotContains(t, got, "hunter2")
		assert.Contains(t, got, "PASSWORD = '***REDACTED***'")
	})
}

func TestRedactSQL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			in:   "CREATE LOGIN app WITH PASSWORD = 'it''s secret', CHECK_POLICY = OFF",
			want: "CREATE LOGIN app WITH PASSWORD = '***REDACTED***', CHECK_POLICY = OFF",
		},
		{
			in:   "ALTER LOGIN app WITH password='x'",
			want: "ALTER LOGIN app WITH password='***REDACTED***'",
		},
		{
			in:   "Server=db;User Id=sa;Pwd=abc123;",
			want: "Server=db;User Id=sa;Pwd='***REDACTED***';",
		},
		{
			in:   "SELECT password_hash FROM users",
			want: "SELECT password_hash FROM users",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RedactSQL(tt.in))
	}
}
