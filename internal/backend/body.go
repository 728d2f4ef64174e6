package backend

import (
	"bytes"
	"errors"
	"reflect"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

var (
	errEmptyBody = errors.New("empty body")
	errNotJSON   = errors.New("body is not json")
)

// Parsed: second stage of a response. Malformed is set when the body is empty
// or not JSON at all; callers branch on it instead of catching.
type Parsed[T any] struct {
	Value     T
	Malformed bool
	Cause     error
}

// Parse decodes body text into T field by field. A field of the wrong JSON
// type stays zero and its siblings still decode; a missing field is the
// caller's concern.
func Parse[T any](b ports.RawBody) Parsed[T] {
	var p Parsed[T]

	data := []byte(b.Text)
	if len(bytes.TrimSpace(data)) == 0 {
		p.Malformed = true
		p.Cause = errEmptyBody
		return p
	}
	if !json.Valid(data) {
		p.Malformed = true
		p.Cause = errNotJSON
		return p
	}

	decodeLoose(data, reflect.ValueOf(&p.Value).Elem())
	return p
}

var unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

// decodeLoose falls back to per-field (struct) or per-element (slice)
// decoding when the whole value does not decode. v must be settable.
func decodeLoose(data []byte, v reflect.Value) {
	if err := json.Unmarshal(data, v.Addr().Interface()); err == nil {
		return
	}
	v.Set(reflect.Zero(v.Type()))

	if reflect.PointerTo(v.Type()).Implements(unmarshalerType) {
		return
	}

	switch v.Kind() {
	case reflect.Struct:
		var fields map[string]json.RawMessage
		if json.Unmarshal(data, &fields) != nil {
			return
		}
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name := jsonName(f)
			if name == "-" {
				continue
			}
			if raw, ok := lookup(fields, name); ok {
				decodeLoose(raw, v.Field(i))
			}
		}

	case reflect.Slice:
		var items []json.RawMessage
		if json.Unmarshal(data, &items) != nil {
			return
		}
		s := reflect.MakeSlice(v.Type(), len(items), len(items))
		for i, item := range items {
			decodeLoose(item, s.Index(i))
		}
		v.Set(s)
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}

// lookup matches keys the way encoding/json does: exact first, then case-insensitive.
func lookup(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if raw, ok := fields[name]; ok {
		return raw, true
	}
	for k, raw := range fields {
		if strings.EqualFold(k, name) {
			return raw, true
		}
	}
	return nil, false
}

// MessageBody: the error envelope the backend uses on most failure paths
type MessageBody struct {
	Message string `json:"message"`
}
