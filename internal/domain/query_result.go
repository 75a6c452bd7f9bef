package domain

import "fmt"

// Match is one nearest-neighbor hit from the vector index. Distance is the
// cosine distance to the query vector; lower means more similar.
type Match struct {
	ID       string
	Document string
	Metadata map[string]string
	Distance float64
}

// IngestResult reports how many records were stored and how many malformed
// records were skipped while parsing the file.
type IngestResult struct {
	Ingested int
	Skipped  int
}

// QueryResult is the transient outcome of one RAG query. RelevantLogs are
// lossily reconstructed from index metadata; their RawData only carries the
// stored document text.
type QueryResult struct {
	Query        string
	Answer       string
	RelevantLogs []LogRecord
	Confidence   float64
	Sources      []string
	Metadata     map[string]any
}

// ToMarkdown formats the result for chat display.
func (q QueryResult) ToMarkdown() string {
	md := fmt.Sprintf("**Query:** %s\n\n**Answer:** %s\n\n", q.Query, q.Answer)
	if len(q.RelevantLogs) == 0 {
		return md
	}
	md += fmt.Sprintf("**Found %d relevant log entries:**\n\n", len(q.RelevantLogs))
	logs := q.RelevantLogs
	if len(logs) > 5 {
		logs = logs[:5]
	}
	for i, l := range logs {
		md += fmt.Sprintf("%d. **%s** at %s\n", i+1, l.EventName, l.EventTime)
		if l.UserIdentity != "" {
			md += fmt.Sprintf("   - User: %s\n", l.UserIdentity)
		}
		if l.SourceIP != "" {
			md += fmt.Sprintf("   - IP: %s\n", l.SourceIP)
		}
		if l.Result != "" {
			md += fmt.Sprintf("   - Result: %s\n", l.Result)
		}
		md += "\n"
	}
	return md
}
