package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolateEnv pins the storage settings so the developer's environment
// cannot leak into command tests.
func isolateEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("QTRACE_DB_DRIVER", "sqlite")
	t.Setenv("QTRACE_LOG_LEVEL", "error")
	t.Setenv("QTRACE_LOG_FORMAT", "text")
	t.Setenv("QTRACE_OTEL_ENDPOINT", "")
	t.Setenv("QTRACE_S3_ENDPOINT", "")
	return filepath.Join(t.TempDir(), "qtrace.db")
}

// execute runs the root command and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// recordJSON records a circuit and returns its execution id.
func recordJSON(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := execute(t, append([]string{"record", "--db", db, "--format", "json"}, args...)...)
	require.NoError(t, err, out)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			ID string `json:"execution_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	require.NotEmpty(t, resp.Data.ID)
	return resp.Data.ID
}

func decodeResponse(t *testing.T, out string) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}
