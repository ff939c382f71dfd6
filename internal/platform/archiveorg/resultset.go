package archiveorg

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one non-document member of a result set, kept as raw JSON.
type Field struct {
	Key   string
	Value json.RawMessage
}

// ResultSet is the "response" object of a search. Members other than docs
// are kept in the order archive.org sent them so they can be echoed back
// unchanged.
type ResultSet struct {
	Fields  []Field
	Docs    []Document
	present bool
}

// NewResultSet builds a result set as if it had been decoded from upstream.
func NewResultSet(docs []Document, fields ...Field) ResultSet {
	return ResultSet{Fields: fields, Docs: docs, present: true}
}

// IntField is a convenience for building numeric Fields.
func IntField(key string, v int) Field {
	return Field{Key: key, Value: json.RawMessage(fmt.Sprintf("%d", v))}
}

// Lookup returns the raw value of a non-document member.
func (rs ResultSet) Lookup(key string) (json.RawMessage, bool) {
	for _, f := range rs.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// UnmarshalJSON walks the object token by token; decoding into a map would
// lose the member order.
func (rs *ResultSet) UnmarshalJSON(data []byte) error {
	*rs = ResultSet{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("result set: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("result set: unexpected key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("result set: %s: %w", key, err)
		}

		if key == "docs" {
			if err := json.Unmarshal(raw, &rs.Docs); err != nil {
				return fmt.Errorf("result set: docs: %w", err)
			}
			continue
		}
		rs.Fields = append(rs.Fields, Field{Key: key, Value: raw})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	rs.present = true
	return nil
}
