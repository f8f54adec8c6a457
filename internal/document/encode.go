package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-yaml"
)

// MarshalJSON renders v as JSON, keeping the key order of ordered mappings.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	compact, err := MarshalJSON(v)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return fmt.Errorf("indent JSON: %w", err)
	}
	out.WriteByte('\n')

	_, err = w.Write(out.Bytes())
	return err
}

// WriteYAML writes v as a YAML document.
func WriteYAML(w io.Writer, v any) error {
	payload, err := yaml.Marshal(ForYAML(v))
	if err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	_, err = w.Write(payload)
	return err
}

func appendJSON(buf *bytes.Buffer, v any) error {
	switch current := v.(type) {
	case yaml.MapSlice, map[string]any:
		entries, _ := Entries(current)
		buf.WriteByte('{')
		for i, e := range entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendScalar(buf, e.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := appendJSON(buf, e.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, item := range current {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		return appendScalar(buf, current)
	}
}

func appendScalar(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	// Encoder terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// ForYAML prepares v for YAML encoding: json.Number becomes a native
// integer or float so it is not emitted as a quoted string.
func ForYAML(v any) any {
	switch current := v.(type) {
	case yaml.MapSlice:
		out := make(yaml.MapSlice, 0, len(current))
		for _, item := range current {
			out = append(out, yaml.MapItem{Key: item.Key, Value: ForYAML(item.Value)})
		}
		return out
	case map[string]any:
		out := make(yaml.MapSlice, 0, len(current))
		entries, _ := Entries(current)
		for _, e := range entries {
			out = append(out, yaml.MapItem{Key: e.Key, Value: ForYAML(e.Value)})
		}
		return out
	case []any:
		out := make([]any, 0, len(current))
		for _, item := range current {
			out = append(out, ForYAML(item))
		}
		return out
	case json.Number:
		return nativeNumber(current)
	default:
		return current
	}
}

// Plain converts ordered mappings into map[string]any and json.Number into
// native numbers, the shape expected by libraries that only understand
// encoding/json output.
func Plain(v any) any {
	switch current := v.(type) {
	case yaml.MapSlice:
		out := make(map[string]any, len(current))
		for _, item := range current {
			out[KeyString(item.Key)] = Plain(item.Value)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(current))
		for k, item := range current {
			out[k] = Plain(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(current))
		for _, item := range current {
			out = append(out, Plain(item))
		}
		return out
	case json.Number:
		return nativeNumber(current)
	default:
		return current
	}
}

func nativeNumber(n json.Number) any {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return string(n)
}
