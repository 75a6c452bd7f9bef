package domain

import "strings"

// LogRecord is the uniform representation of one security/audit event,
// regardless of the source format it was parsed from.
//
// EventName, EventTime and Source always hold a value (normalizers fill in
// sentinels when the input omits them). The optional fields use the empty
// string to mean "not applicable".
type LogRecord struct {
	ID        string
	EventName string
	EventTime string
	Source    string

	UserIdentity string
	SourceIP     string
	Resource     string
	Action       string
	Result       string
	ErrorMessage string

	// RawData preserves the original record for audit and debugging.
	// It is never interpreted downstream.
	RawData map[string]any

	// Metadata is free-form and currently unused by the normalizers,
	// but part of the contract for extensibility.
	Metadata map[string]any
}

// ToText renders the record as a single searchable string for embedding.
// Field order, labels and the " | " delimiter are part of the embedding
// contract: changing them changes what "similar" means for stored vectors.
func (r LogRecord) ToText() string {
	parts := []string{
		"Event: " + r.EventName,
		"Time: " + r.EventTime,
		"Source: " + r.Source,
	}
	if r.UserIdentity != "" {
		parts = append(parts, "User: "+r.UserIdentity)
	}
	if r.SourceIP != "" {
		parts = append(parts, "IP: "+r.SourceIP)
	}
	if r.Resource != "" {
		parts = append(parts, "Resource: "+r.Resource)
	}
	if r.Action != "" {
		parts = append(parts, "Action: "+r.Action)
	}
	if r.Result != "" {
		parts = append(parts, "Result: "+r.Result)
	}
	if r.ErrorMessage != "" {
		parts = append(parts, "Error: "+r.ErrorMessage)
	}
	return strings.Join(parts, " | ")
}

// IndexMetadata returns the narrowed, primitive-valued metadata subset that
// is persisted alongside the embedding. It is redisplayed to the user, not
// reprocessed, so only the fields worth showing are kept.
func (r LogRecord) IndexMetadata() map[string]string {
	m := map[string]string{
		"event_name": r.EventName,
		"event_time": r.EventTime,
		"source":     r.Source,
	}
	if r.UserIdentity != "" {
		m["user_identity"] = r.UserIdentity
	}
	if r.SourceIP != "" {
		m["source_ip"] = r.SourceIP
	}
	if r.Result != "" {
		m["result"] = r.Result
	}
	return m
}
