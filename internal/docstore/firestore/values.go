package firestore

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	fs "google.golang.org/api/firestore/v1"
)

// encodeFields converts a document body into Firestore typed values.
func encodeFields(doc map[string]any) (map[string]fs.Value, error) {
	out := make(map[string]fs.Value, len(doc))
	for k, v := range doc {
		val, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

func encodeValue(v any) (fs.Value, error) {
	switch t := v.(type) {
	case nil:
		return fs.Value{NullValue: "NULL_VALUE"}, nil
	case string:
		return fs.Value{StringValue: t, ForceSendFields: []string{"StringValue"}}, nil
	case bool:
		return fs.Value{BooleanValue: t, ForceSendFields: []string{"BooleanValue"}}, nil
	case int:
		return fs.Value{IntegerValue: int64(t), ForceSendFields: []string{"IntegerValue"}}, nil
	case int64:
		return fs.Value{IntegerValue: t, ForceSendFields: []string{"IntegerValue"}}, nil
	case float64:
		return fs.Value{DoubleValue: t, ForceSendFields: []string{"DoubleValue"}}, nil
	case time.Time:
		return fs.Value{TimestampValue: t.UTC().Format(time.RFC3339Nano)}, nil
	case []any:
		arr := &fs.ArrayValue{}
		for i, e := range t {
			ev, err := encodeValue(e)
			if err != nil {
				return fs.Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			ev2 := ev
			arr.Values = append(arr.Values, &ev2)
		}
		return fs.Value{ArrayValue: arr}, nil
	case map[string]any:
		fields, err := encodeFields(t)
		if err != nil {
			return fs.Value{}, err
		}
		return fs.Value{MapValue: &fs.MapValue{Fields: fields}}, nil
	default:
		return fs.Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}

// decodeFields converts Firestore typed values back into a plain document.
func decodeFields(fields map[string]fs.Value) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = decodeValue(v)
	}
	return out
}

func decodeValue(v fs.Value) any {
	switch {
	case v.MapValue != nil:
		return decodeFields(v.MapValue.Fields)
	case v.ArrayValue != nil:
		out := make([]any, 0, len(v.ArrayValue.Values))
		for _, e := range v.ArrayValue.Values {
			if e == nil {
				out = append(out, nil)
				continue
			}
			out = append(out, decodeValue(*e))
		}
		return out
	case v.NullValue == "NULL_VALUE":
		return nil
	case v.TimestampValue != "":
		if t, err := time.Parse(time.RFC3339Nano, v.TimestampValue); err == nil {
			return t
		}
		return v.TimestampValue
	case v.StringValue != "":
		return v.StringValue
	case v.BooleanValue:
		return true
	case v.DoubleValue != 0:
		return v.DoubleValue
	default:
		// Exactly one kind is ever set; a bare zero is an integer zero.
		return v.IntegerValue
	}
}

var plainSegment = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// leafFieldPaths lists the update-mask paths for a partial document: one path
// per non-map leaf, so sibling fields outside the partial survive the patch.
// Segments that are not simple identifiers (year keys like "2025") are
// backtick-quoted per the Firestore field path grammar.
func leafFieldPaths(doc map[string]any) []string {
	var paths []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			path := quoteSegment(k)
			if prefix != "" {
				path = prefix + "." + path
			}
			if nested, ok := v.(map[string]any); ok && len(nested) > 0 {
				walk(path, nested)
				continue
			}
			paths = append(paths, path)
		}
	}
	walk("", doc)
	sort.Strings(paths)
	return paths
}

func quoteSegment(s string) string {
	if plainSegment.MatchString(s) {
		return s
	}
	return "`" + s + "`"
}
