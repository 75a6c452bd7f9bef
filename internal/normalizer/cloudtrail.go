package normalizer

import (
	"github.com/phuslu/log"
	"github.com/valyala/fastjson"

	"securequery/internal/domain"
)

// CloudTrail parses AWS CloudTrail audit-trail documents: a JSON object with
// a top-level "Records" array.
type CloudTrail struct {
	parser fastjson.Parser
}

func (n *CloudTrail) Name() string { return TypeCloudTrail }

func (n *CloudTrail) Parse(path string) ([]domain.LogRecord, int, error) {
	doc, err := readDocument(&n.parser, path)
	if err != nil {
		return nil, 0, err
	}
	return n.parseRecords(doc.GetArray("Records"))
}

func (n *CloudTrail) parseRecords(raw []*fastjson.Value) ([]domain.LogRecord, int, error) {
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

func (n *CloudTrail) parseRecord(rec *fastjson.Value) domain.LogRecord {
	id := str(rec, "eventID")
	if id == "" {
		id = contentID(rec)
	}
	eventName := str(rec, "eventName")
	if eventName == "" {
		eventName = "Unknown"
	}
	return domain.LogRecord{
		ID:           id,
		EventName:    eventName,
		EventTime:    str(rec, "eventTime"),
		Source:       TypeCloudTrail,
		UserIdentity: extractUserIdentity(rec),
		SourceIP:     str(rec, "sourceIPAddress"),
		Resource:     extractResource(rec),
		Action:       eventName,
		Result:       extractResult(rec),
		ErrorMessage: str(rec, "errorMessage"),
		RawData:      valueToMap(rec),
	}
}

func extractUserIdentity(rec *fastjson.Value) string {
	identity := rec.Get("userIdentity")
	if identity != nil && identity.Type() == fastjson.TypeObject {
		if name := str(identity, "userName"); name != "" {
			return name
		}
		if typ := str(identity, "type"); typ != "" {
			return typ + " user"
		}
	}
	return "Unknown"
}

func extractResource(rec *fastjson.Value) string {
	if resources := rec.GetArray("resources"); len(resources) > 0 {
		if resources[0].Type() == fastjson.TypeObject {
			if arn := str(resources[0], "ARN"); arn != "" {
				return arn
			}
			return "Unknown resource"
		}
	}
	params := rec.Get("requestParameters")
	if params != nil && params.Type() == fastjson.TypeObject {
		if bucket := str(params, "bucketName"); bucket != "" {
			return "s3://" + bucket
		}
		if table := str(params, "tableName"); table != "" {
			return "dynamodb:" + table
		}
	}
	return "Unknown resource"
}

func extractResult(rec *fastjson.Value) string {
	if str(rec, "errorCode") != "" || str(rec, "errorMessage") != "" {
		return "Failure"
	}
	if elems := rec.Get("responseElements"); elems != nil && elems.Type() != fastjson.TypeNull {
		if elems.Type() == fastjson.TypeObject {
			if login := str(elems, "ConsoleLogin"); login != "" {
				return login
			}
		}
		return "Success"
	}
	// No error and no response elements defaults to success. Explicit policy:
	// absence of any failure signal is treated as a successful event.
	return "Success"
}
