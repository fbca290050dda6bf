package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrNotObject is returned when a document is not a single JSON object.
var ErrNotObject = errors.New("document is not a JSON object")

// Document is a recipe detail exactly as the oracle wrote it. Keys keep
// their order and every value keeps its raw JSON, so drift from the
// RecipeDetail layout (numeric times, extra keys, odd ingredient shapes)
// is stored and served unchanged.
type Document struct {
	fields *orderedmap.OrderedMap[string, json.RawMessage]
}

// ParseDocument decodes data, which must hold exactly one JSON object.
func ParseDocument(data []byte) (*Document, error) {
	d := &Document{}
	if err := d.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return d, nil
}

// DocumentOf converts any JSON-encodable value, typically a RecipeDetail.
func DocumentOf(v any) (*Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotObject
	}

	fields := orderedmap.New[string, json.RawMessage]()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("value of %q: %w", key, err)
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return fmt.Errorf("value of %q: %w", key, err)
		}
		fields.Set(key, compact.Bytes())
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", ErrNotObject)
	}
	d.fields = fields
	return nil
}

// MarshalJSON implements json.Marshaler. Values are written back as they
// were read, without insignificant whitespace.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	if d != nil && d.fields != nil {
		first := true
		for p := d.fields.Oldest(); p != nil; p = p.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := enc.Encode(p.Key); err != nil {
				return nil, err
			}
			buf.Truncate(buf.Len() - 1) // Encode appends '\n'
			buf.WriteByte(':')
			buf.Write(p.Value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Keys returns the top-level keys in document order.
func (d *Document) Keys() []string {
	if d == nil || d.fields == nil {
		return nil
	}
	keys := make([]string, 0, d.fields.Len())
	for p := d.fields.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Raw returns the raw JSON stored under key.
func (d *Document) Raw(key string) (json.RawMessage, bool) {
	if d == nil || d.fields == nil {
		return nil, false
	}
	return d.fields.Get(key)
}

// Text returns the value under key as display text: strings unquoted,
// other values as their JSON, absent keys and null as "".
func (d *Document) Text(key string) string {
	raw, ok := d.Raw(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

// RecipeName is the recipeName value as text.
func (d *Document) RecipeName() string { return d.Text("recipeName") }

// Description is the description value as text.
func (d *Document) Description() string { return d.Text("description") }

// IsEmpty reports whether d is the EmptyRecipe sentinel, ignoring key order.
func (d *Document) IsEmpty() bool {
	if d == nil {
		return false
	}
	data, err := d.MarshalJSON()
	if err != nil {
		return false
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		return false
	}
	return reflect.DeepEqual(got, emptyRecipeValue)
}

var emptyRecipeValue = func() map[string]any {
	data, _ := json.Marshal(emptyRecipeDetail())
	var v map[string]any
	_ = json.Unmarshal(data, &v)
	return v
}()
