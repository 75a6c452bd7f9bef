// Package normalizer converts raw log formats into uniform LogRecords.
package normalizer

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/valyala/fastjson"

	"securequery/internal/apperr"
	"securequery/internal/domain"
)

// Log type tags accepted by ForType.
const (
	TypeCloudTrail = "cloudtrail"
	TypeJSON       = "json"
)

// ForType returns the normalizer for the given log type tag.
func ForType(logType string) (domain.Normalizer, error) {
	switch logType {
	case TypeCloudTrail:
		return &CloudTrail{}, nil
	case TypeJSON:
		return &GenericJSON{}, nil
	default:
		return nil, apperr.Newf(apperr.CodeValidation, "unknown log type: %s", logType)
	}
}

// readDocument loads and parses the top-level JSON document at path.
func readDocument(p *fastjson.Parser, path string) (*fastjson.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.File(fmt.Sprintf("cannot read log file %s", path), err)
	}
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, apperr.File(fmt.Sprintf("%s is not valid JSON", path), err)
	}
	return v, nil
}

// contentID derives a stable identifier from the canonical (recursively
// key-sorted) serialization of a record, so re-ingesting identical input
// yields the same id.
func contentID(v *fastjson.Value) string {
	sum := sha1.Sum(canonicalJSON(nil, v))
	return hex.EncodeToString(sum[:])
}

func canonicalJSON(dst []byte, v *fastjson.Value) []byte {
	switch v.Type() {
	case fastjson.TypeObject:
		o, _ := v.Object()
		type kv struct {
			key string
			val *fastjson.Value
		}
		var fields []kv
		o.Visit(func(key []byte, val *fastjson.Value) {
			fields = append(fields, kv{string(key), val})
		})
		sort.Slice(fields, func(i, j int) bool { return fields[i].key < fields[j].key })
		dst = append(dst, '{')
		for i, f := range fields {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = strconv.AppendQuote(dst, f.key)
			dst = append(dst, ':')
			dst = canonicalJSON(dst, f.val)
		}
		return append(dst, '}')
	case fastjson.TypeArray:
		arr, _ := v.Array()
		dst = append(dst, '[')
		for i, item := range arr {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = canonicalJSON(dst, item)
		}
		return append(dst, ']')
	default:
		return v.MarshalTo(dst)
	}
}

// valueToMap converts a JSON object into a plain map for RawData.
func valueToMap(v *fastjson.Value) map[string]any {
	o, err := v.Object()
	if err != nil {
		return nil
	}
	m := make(map[string]any, o.Len())
	o.Visit(func(key []byte, val *fastjson.Value) {
		m[string(key)] = valueToAny(val)
	})
	return m
}

func valueToAny(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeObject:
		return valueToMap(v)
	case fastjson.TypeArray:
		arr, _ := v.Array()
		out := make([]any, 0, len(arr))
		for _, item := range arr {
			out = append(out, valueToAny(item))
		}
		return out
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		f, _ := v.Float64()
		return f
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	default:
		return nil
	}
}

// str returns the string value of an object field, or "" when absent or not
// a string.
func str(v *fastjson.Value, key string) string {
	return string(v.GetStringBytes(key))
}

// strOr walks keys in order and returns the first non-empty string value.
func strOr(v *fastjson.Value, keys ...string) string {
	for _, key := range keys {
		if s := str(v, key); s != "" {
			return s
		}
	}
	return ""
}
