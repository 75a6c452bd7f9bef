package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullRecord() LogRecord {
	return LogRecord{
		ID:           "evt-1",
		EventName:    "ConsoleLogin",
		EventTime:    "2024-01-01T00:00:00Z",
		Source:       "cloudtrail",
		UserIdentity: "alice",
		SourceIP:     "1.2.3.4",
		Resource:     "s3://prod-logs",
		Action:       "ConsoleLogin",
		Result:       "Failure",
		ErrorMessage: "access denied",
	}
}

func TestToTextFieldOrder(t *testing.T) {
	text := fullRecord().ToText()
	want := "Event: ConsoleLogin | Time: 2024-01-01T00:00:00Z | Source: cloudtrail | " +
		"User: alice | IP: 1.2.3.4 | Resource: s3://prod-logs | Action: ConsoleLogin | " +
		"Result: Failure | Error: access denied"
	assert.Equal(t, want, text)
}

func TestToTextIsPure(t *testing.T) {
	rec := fullRecord()
	assert.Equal(t, rec.ToText(), rec.ToText())
}

func TestToTextOmitsAbsentOptionals(t *testing.T) {
	rec := fullRecord()
	rec.SourceIP = ""
	rec.ErrorMessage = ""
	text := rec.ToText()
	assert.NotContains(t, text, "IP:")
	assert.NotContains(t, text, "Error:")
	assert.True(t, strings.HasPrefix(text, "Event: ConsoleLogin | Time: "))
}

func TestIndexMetadataNarrowing(t *testing.T) {
	md := fullRecord().IndexMetadata()
	assert.Equal(t, map[string]string{
		"event_name":    "ConsoleLogin",
		"event_time":    "2024-01-01T00:00:00Z",
		"source":        "cloudtrail",
		"user_identity": "alice",
		"source_ip":     "1.2.3.4",
		"result":        "Failure",
	}, md)

	rec := fullRecord()
	rec.UserIdentity = ""
	rec.Result = ""
	md = rec.IndexMetadata()
	assert.NotContains(t, md, "user_identity")
	assert.NotContains(t, md, "result")
	assert.Contains(t, md, "event_name")
}

func TestQueryResultToMarkdown(t *testing.T) {
	res := QueryResult{
		Query:        "who failed to log in",
		Answer:       "alice failed a console login.",
		RelevantLogs: []LogRecord{fullRecord()},
		Confidence:   0.9,
		Sources:      []string{"evt-1"},
	}
	md := res.ToMarkdown()
	assert.Contains(t, md, "**Query:** who failed to log in")
	assert.Contains(t, md, "**Answer:** alice failed a console login.")
	assert.Contains(t, md, "**ConsoleLogin** at 2024-01-01T00:00:00Z")
	assert.Contains(t, md, "- User: alice")
	assert.Contains(t, md, "- Result: Failure")
}
