package normalizer

import (
	"github.com/phuslu/log"
	"github.com/valyala/fastjson"

	"securequery/internal/domain"
)

// GenericJSON parses arbitrary JSON log files. The document may be a bare
// array of records, an object with a "logs" array, or a single record.
// Field extraction uses ordered fallback chains per attribute.
type GenericJSON struct {
	parser fastjson.Parser
}

func (n *GenericJSON) Name() string { return TypeJSON }

func (n *GenericJSON) Parse(path string) ([]domain.LogRecord, int, error) {
	doc, err := readDocument(&n.parser, path)
	if err != nil {
		return nil, 0, err
	}
	switch {
	case doc.Type() == fastjson.TypeArray:
		return n.parseRecords(doc.GetArray())
	case doc.Exists("logs"):
		return n.parseRecords(doc.GetArray("logs"))
	default:
		return n.parseRecords([]*fastjson.Value{doc})
	}
}

func (n *GenericJSON) parseRecords(raw []*fastjson.Value) ([]domain.LogRecord, int, error) {
	records := make([]domain.LogRecord, 0, len(raw))
	skipped := 0
	for _, rec := range raw {
		if rec.Type() != fastjson.TypeObject {
			skipped++
			log.Warn().Str("normalizer", n.Name()).Msg("skipping malformed record")
			continue
		}
		records = append(records, n.parseRecord(rec))
	}
	return records, skipped, nil
}

func (n *GenericJSON) parseRecord(rec *fastjson.Value) domain.LogRecord {
	id := str(rec, "id")
	if id == "" {
		id = contentID(rec)
	}
	eventName := strOr(rec, "event", "action")
	if eventName == "" {
		eventName = "Unknown Event"
	}
	action := str(rec, "action")
	if action == "" {
		action = eventName
	}
	return domain.LogRecord{
		ID:           id,
		EventName:    eventName,
		EventTime:    strOr(rec, "timestamp", "time"),
		Source:       TypeJSON,
		UserIdentity: str(rec, "user"),
		SourceIP:     strOr(rec, "ip", "source_ip"),
		Resource:     str(rec, "resource"),
		Action:       action,
		Result:       strOr(rec, "status", "result"),
		ErrorMessage: str(rec, "error"),
		RawData:      valueToMap(rec),
	}
}
