package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securequery/internal/apperr"
	"securequery/internal/embedding/hashing"
	"securequery/internal/vectorstore/memory"
)

type stubAnswerer struct {
	lastPrompt string
	reply      string
}

func (s *stubAnswerer) Name() string { return "stub" }

func (s *stubAnswerer) Answer(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	return s.reply, nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newService(answer string) (*Retrieval, *stubAnswerer) {
	ans := &stubAnswerer{reply: answer}
	return New(hashing.New(), memory.NewStore(), ans), ans
}

func TestIngestUnknownLogType(t *testing.T) {
	svc, _ := newService("")
	_, err := svc.Ingest(context.Background(), "whatever.json", "syslog")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestIngestEmptyFileLeavesIndexUntouched(t *testing.T) {
	svc, _ := newService("")
	res, err := svc.Ingest(context.Background(), writeFile(t, `{"Records": []}`), "cloudtrail")
	require.NoError(t, err)
	assert.Zero(t, res.Ingested)
	assert.Zero(t, res.Skipped)

	count, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIngestCountsSkippedRecords(t *testing.T) {
	svc, _ := newService("")
	path := writeFile(t, `{"Records": [
		{"eventID": "a", "eventName": "PutObject"},
		"garbage",
		{"eventID": "b", "eventName": "GetObject"}
	]}`)
	res, err := svc.Ingest(context.Background(), path, "cloudtrail")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Ingested)
	assert.Equal(t, 1, res.Skipped)

	count, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestQueryEmptyIndexReturnsCannedResult(t *testing.T) {
	// No answerer needed: the no-match path never reaches the provider.
	svc := New(hashing.New(), memory.NewStore(), nil)
	res, err := svc.Query(context.Background(), "show failed logins", 5)
	require.NoError(t, err)
	assert.Equal(t, "No relevant log entries found. Please upload logs first.", res.Answer)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Sources)
	assert.Empty(t, res.RelevantLogs)
}

func TestQueryWithoutProviderFails(t *testing.T) {
	svc := New(hashing.New(), memory.NewStore(), nil)
	_, err := svc.Ingest(context.Background(),
		writeFile(t, `{"Records": [{"eventID": "a", "eventName": "ConsoleLogin"}]}`), "cloudtrail")
	require.NoError(t, err)

	_, err = svc.Query(context.Background(), "anything", 5)
	assert.True(t, apperr.Is(err, apperr.CodeProvider))
}

func TestEndToEndConsoleLogin(t *testing.T) {
	svc, ans := newService("One failed console login from 1.2.3.4.")
	path := writeFile(t, `{"Records": [{
		"eventID": "evt-login-1",
		"eventName": "ConsoleLogin",
		"eventTime": "2024-01-01T00:00:00Z",
		"sourceIPAddress": "1.2.3.4",
		"responseElements": {"ConsoleLogin": "Failure"}
	}]}`)

	res, err := svc.Ingest(context.Background(), path, "cloudtrail")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Ingested)

	out, err := svc.Query(context.Background(), "show failed logins", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"evt-login-1"}, out.Sources)
	assert.Equal(t, "One failed console login from 1.2.3.4.", out.Answer)
	assert.GreaterOrEqual(t, out.Confidence, 0.0)
	assert.LessOrEqual(t, out.Confidence, 1.0)
	assert.Equal(t, 1, out.Metadata["result_count"])

	require.Len(t, out.RelevantLogs, 1)
	rec := out.RelevantLogs[0]
	assert.Equal(t, "ConsoleLogin", rec.EventName)
	assert.Equal(t, "Failure", rec.Result)
	assert.Equal(t, "1.2.3.4", rec.SourceIP)
	// lossy reconstruction: raw data is just the stored document
	assert.Contains(t, rec.RawData["document"], "Event: ConsoleLogin")

	assert.Contains(t, ans.lastPrompt, "Log Entry 1:")
	assert.Contains(t, ans.lastPrompt, "Event: ConsoleLogin")
	assert.Contains(t, ans.lastPrompt, "User Question: show failed logins")
	assert.Contains(t, ans.lastPrompt, "security analyst assistant")
}

func TestQueryRanksMostRelevantFirst(t *testing.T) {
	svc, _ := newService("answer")
	path := writeFile(t, `[
		{"id": "login-fail", "event": "console login failed", "status": "failure"},
		{"id": "table-scan", "event": "dynamodb table scan completed", "status": "success"}
	]`)
	_, err := svc.Ingest(context.Background(), path, "json")
	require.NoError(t, err)

	out, err := svc.Query(context.Background(), "failed console login", 2)
	require.NoError(t, err)
	require.Len(t, out.Sources, 2)
	assert.Equal(t, "login-fail", out.Sources[0])
}
