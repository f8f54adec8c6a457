package document

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

var (
	// ErrMalformed indicates the input is not a well-formed document.
	ErrMalformed = errors.New("document: malformed input")

	// ErrUnknownFormat indicates an unsupported input format name.
	ErrUnknownFormat = errors.New("document: unknown format")
)

// Format names an input encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name. The empty string is accepted and
// means "infer from the file name".
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "ndjson":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatFor infers a format from a file name, falling back to JSON.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatJSON
	}
}

// Decode lazily yields every document found in r.
// JSON input may hold several concatenated values, JSONL holds one value
// per non-blank line and YAML may separate documents with "---".
func Decode(r io.Reader, format Format) iter.Seq2[any, error] {
	switch format {
	case FormatYAML:
		return decodeYAMLStream(r)
	case FormatJSONL:
		return decodeJSONLines(r)
	default:
		return decodeJSONStream(r)
	}
}

// DecodeAll collects every document of r.
func DecodeAll(r io.Reader, format Format) ([]any, error) {
	var docs []any
	for doc, err := range Decode(r, format) {
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// DecodeJSON decodes a single JSON value keeping object key order.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	value, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrMalformed)
	}
	return value, nil
}

// DecodeYAML decodes a single YAML document keeping mapping order.
func DecodeYAML(data []byte) (any, error) {
	var value any
	if err := yaml.UnmarshalWithOptions(data, &value, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return value, nil
}

func decodeJSONStream(r io.Reader) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		dec := json.NewDecoder(r)
		dec.UseNumber()

		for {
			value, err := decodeValue(dec)
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(value, err) || err != nil {
				return
			}
		}
	}
}

func decodeJSONLines(r io.Reader) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		line := 0
		for scanner.Scan() {
			line++
			text := bytes.TrimSpace(scanner.Bytes())
			if len(text) == 0 {
				continue
			}

			value, err := DecodeJSON(text)
			if err != nil {
				err = fmt.Errorf("line %d: %w", line, err)
			}
			if !yield(value, err) || err != nil {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func decodeYAMLStream(r io.Reader) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		dec := yaml.NewDecoder(r, yaml.UseOrderedMap())

		for {
			var value any
			err := dec.Decode(&value)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("%w: %v", ErrMalformed, err))
				return
			}
			if !yield(value, nil) {
				return
			}
		}
	}
}

// decodeValue reads the next JSON value token by token so that objects keep
// their key order.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if d, ok := tok.(json.Delim); ok {
		return decodeSubtree(dec, d)
	}
	return tok, nil
}

func decodeSubtree(dec *json.Decoder, openingDelim json.Delim) (any, error) {
	switch openingDelim {
	case '{':
		return decodeObjectSubtree(dec)
	case '[':
		return decodeArraySubtree(dec)
	}
	return nil, fmt.Errorf("%w: unexpected delimiter %q", ErrMalformed, openingDelim)
}

func decodeObjectSubtree(dec *json.Decoder) (any, error) {
	obj := yaml.MapSlice{}
	seen := make(map[string]int)

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		if d, ok := tok.(json.Delim); ok && d == '}' {
			return obj, nil
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key must be a string", ErrMalformed)
		}

		value, err := decodeValue(dec)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: unexpected end of input", ErrMalformed)
			}
			return nil, err
		}

		// Duplicate keys keep their first position and the last value, as encoding/json does.
		if i, dup := seen[key]; dup {
			obj[i].Value = value
			continue
		}
		seen[key] = len(obj)
		obj = append(obj, yaml.MapItem{Key: key, Value: value})
	}
}

func decodeArraySubtree(dec *json.Decoder) (any, error) {
	arr := make([]any, 0)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		if d, ok := tok.(json.Delim); ok {
			if d == ']' {
				return arr, nil
			}
			nested, err := decodeSubtree(dec, d)
			if err != nil {
				return nil, err
			}
			arr = append(arr, nested)
			continue
		}
		arr = append(arr, tok)
	}
}
