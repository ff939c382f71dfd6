package archive

import (
	"bytes"

	"archiveapi/internal/platform/archiveorg"

	"github.com/goccy/go-json"
)

type member struct {
	key   string
	value any
}

// Envelope is the explore response: pagination and query metadata followed
// by the result documents. Members serialize in insertion order and docs is
// always written last.
type Envelope struct {
	members []member
	Docs    []archiveorg.Document
}

// Set assigns key, keeping its position if it is already present.
func (e *Envelope) Set(key string, value any) {
	for i := range e.members {
		if e.members[i].key == key {
			e.members[i].value = value
			return
		}
	}
	e.members = append(e.members, member{key: key, value: value})
}

// Get returns the value stored under key. Values copied from upstream are
// json.RawMessage.
func (e *Envelope) Get(key string) (any, bool) {
	for _, m := range e.members {
		if m.key == key {
			return m.value, true
		}
	}
	return nil, false
}

// Keys lists the serialized keys in order, docs included.
func (e *Envelope) Keys() []string {
	keys := make([]string, 0, len(e.members)+1)
	for _, m := range e.members {
		keys = append(keys, m.key)
	}
	return append(keys, "docs")
}

func (e *Envelope) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, m := range e.members {
		if err := writeMember(&buf, m.key, m.value); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}
	docs := e.Docs
	if docs == nil {
		docs = []archiveorg.Document{}
	}
	if err := writeMember(&buf, "docs", docs); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
