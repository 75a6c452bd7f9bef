// Package service ties normalization, embedding, the vector index and the
// generative answerer together into the two boundary operations: ingest and
// query.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/phuslu/log"

	"securequery/internal/apperr"
	"securequery/internal/domain"
	"securequery/internal/embedding"
	"securequery/internal/normalizer"
	"securequery/internal/vectorstore"
)

const promptTemplate = `You are a security analyst assistant. Answer the user's question based on the provided security log entries.

Log Entries:
%s

User Question: %s

Provide a clear, concise answer based on the log entries above. If the logs don't contain enough information to answer, say so.`

const noMatchAnswer = "No relevant log entries found. Please upload logs first."

// Retrieval is the orchestrator. It is constructed once and passed to each
// caller; there is no hidden global state.
type Retrieval struct {
	embedder domain.Embedder
	store    vectorstore.Storage
	answerer domain.Answerer
}

// New builds a Retrieval service. The answerer may be nil when no generative
// credential is configured; Query then fails with a provider error and the
// front end shows setup guidance instead.
func New(embedder domain.Embedder, store vectorstore.Storage, answerer domain.Answerer) *Retrieval {
	return &Retrieval{embedder: embedder, store: store, answerer: answerer}
}

// HasAnswerer reports whether a generative provider is configured.
func (s *Retrieval) HasAnswerer() bool { return s.answerer != nil }

// Ingest parses the file with the normalizer matching logType, embeds all
// records in one batch and stores them in one call. An empty parse result
// returns zero counts without touching the index.
func (s *Retrieval) Ingest(ctx context.Context, path, logType string) (domain.IngestResult, error) {
	norm, err := normalizer.ForType(logType)
	if err != nil {
		return domain.IngestResult{}, err
	}
	records, skipped, err := norm.Parse(path)
	if err != nil {
		return domain.IngestResult{}, err
	}
	if len(records) == 0 {
		return domain.IngestResult{Skipped: skipped}, nil
	}
	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.ToText()
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return domain.IngestResult{}, err
	}
	if err := s.store.Add(records, vectors); err != nil {
		return domain.IngestResult{}, err
	}
	log.Info().
		Str("log_type", logType).
		Int("ingested", len(records)).
		Int("skipped", skipped).
		Msg("ingested log file")
	return domain.IngestResult{Ingested: len(records), Skipped: skipped}, nil
}

// Query embeds the question, retrieves the top-k nearest entries and asks the
// generative provider to answer from them. Zero matches is a valid outcome,
// answered with a canned result at confidence 0.
func (s *Retrieval) Query(ctx context.Context, question string, k int) (domain.QueryResult, error) {
	vector, err := embedding.One(ctx, s.embedder, question)
	if err != nil {
		return domain.QueryResult{}, err
	}
	matches, err := s.store.Search(vector, k)
	if err != nil {
		return domain.QueryResult{}, err
	}
	if len(matches) == 0 {
		return domain.QueryResult{
			Query:      question,
			Answer:     noMatchAnswer,
			Confidence: 0.0,
		}, nil
	}
	if s.answerer == nil {
		return domain.QueryResult{}, apperr.New(apperr.CodeProvider, "no generative provider configured")
	}
	prompt := fmt.Sprintf(promptTemplate, buildContext(matches), question)
	answer, err := s.answerer.Answer(ctx, prompt)
	if err != nil {
		return domain.QueryResult{}, err
	}
	sources := make([]string, len(matches))
	for i, m := range matches {
		sources[i] = m.ID
	}
	log.Info().
		Int("matches", len(matches)).
		Float64("best_distance", matches[0].Distance).
		Msg("answered query")
	return domain.QueryResult{
		Query:        question,
		Answer:       answer,
		RelevantLogs: matchesToRecords(matches),
		Confidence:   clamp01(1.0 - matches[0].Distance),
		Sources:      sources,
		Metadata:     map[string]any{"result_count": len(matches)},
	}, nil
}

// Count returns the number of entries in the index, for user-facing
// ingestion confirmation.
func (s *Retrieval) Count(ctx context.Context) (int, error) {
	return s.store.Count()
}

// ClearIndex removes all entries from the index.
func (s *Retrieval) ClearIndex(ctx context.Context) error {
	return s.store.Clear()
}

// buildContext renders the matches as numbered blocks for the prompt.
// Metadata keys are sorted so the prompt is deterministic for a given
// match set.
func buildContext(matches []domain.Match) string {
	var b strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&b, "Log Entry %d:\n%s\n", i+1, m.Document)
		if len(m.Metadata) > 0 {
			keys := make([]string, 0, len(m.Metadata))
			for k := range m.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			pairs := make([]string, len(keys))
			for j, k := range keys {
				pairs[j] = k + "=" + m.Metadata[k]
			}
			fmt.Fprintf(&b, "Metadata: %s\n", strings.Join(pairs, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// matchesToRecords reconstructs log records from index metadata. The
// reconstruction is lossy: the original raw record is not retrievable from
// the index, so RawData only carries the stored document text.
func matchesToRecords(matches []domain.Match) []domain.LogRecord {
	records := make([]domain.LogRecord, len(matches))
	for i, m := range matches {
		md := m.Metadata
		eventName := md["event_name"]
		if eventName == "" {
			eventName = "Unknown"
		}
		source := md["source"]
		if source == "" {
			source = "unknown"
		}
		records[i] = domain.LogRecord{
			ID:           m.ID,
			EventName:    eventName,
			EventTime:    md["event_time"],
			Source:       source,
			UserIdentity: md["user_identity"],
			SourceIP:     md["source_ip"],
			Result:       md["result"],
			RawData:      map[string]any{"document": m.Document},
		}
	}
	return records
}

// clamp01 keeps the distance-derived confidence interpretable. Cosine
// distance ranges over [0, 2], so 1-distance can dip below zero.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
