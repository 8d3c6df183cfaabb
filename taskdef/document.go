// Package taskdef renders ECS task definitions by applying image, role, volume and
// environment overrides to an existing task definition document.
package taskdef

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
)

// Document is a parsed task definition.  Objects are kept as ordered yaml.MapSlice
// values and arrays as []interface{} so that fields the renderer doesn't know about
// survive a round trip unchanged, in their original order.
type Document struct {
	root interface{}
}

// Parse decodes a JSON (or YAML) task definition into a Document.  A leading byte
// order mark is ignored.
func Parse(data []byte) (*Document, error) {
	root, err := decode(data)
	if err != nil {
		return nil, InvalidFormat("unable to parse task definition: " + err.Error())
	}
	return &Document{root: root}, nil
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	return &Document{root: cloneValue(d.root)}
}

// Object returns the top level object of the document, or false if the
// document isn't an object
func (d *Document) Object() (yaml.MapSlice, bool) {
	ms, ok := d.root.(yaml.MapSlice)
	return ms, ok
}

// MarshalJSON encodes the document as compact JSON, preserving key order
func (d *Document) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := encodeValue(buf, d.root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent encodes the document as JSON indented with two spaces
func (d *Document) MarshalIndent() ([]byte, error) {
	compact, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}

	out := &bytes.Buffer{}
	if err := json.Indent(out, compact, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// UnmarshalJSON lets a Document be embedded in a request body
func (d *Document) UnmarshalJSON(data []byte) error {
	doc, err := Parse(data)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

func encodeValue(buf *bytes.Buffer, v interface{}) error {
	switch t := v.(type) {
	case yaml.MapSlice:
		buf.WriteByte('{')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeScalar(buf, fmt.Sprint(item.Key)); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeValue(buf, item.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []interface{}:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return encodeScalar(buf, t)
	}
	return nil
}

func encodeScalar(buf *bytes.Buffer, v interface{}) error {
	tmp := &bytes.Buffer{}
	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case yaml.MapSlice:
		ms := make(yaml.MapSlice, len(t))
		for i, item := range t {
			ms[i] = yaml.MapItem{Key: item.Key, Value: cloneValue(item.Value)}
		}
		return ms
	case []interface{}:
		list := make([]interface{}, len(t))
		for i, e := range t {
			list[i] = cloneValue(e)
		}
		return list
	default:
		return t
	}
}

// field returns the value stored under key in an object
func field(ms yaml.MapSlice, key string) (interface{}, bool) {
	for _, item := range ms {
		if k, ok := item.Key.(string); ok && k == key {
			return item.Value, true
		}
	}
	return nil, false
}

// setField overwrites key in place or appends it to the end of the object.  The
// returned slice must be stored back in the parent since append may reallocate.
func setField(ms yaml.MapSlice, key string, value interface{}) yaml.MapSlice {
	for i := range ms {
		if k, ok := ms[i].Key.(string); ok && k == key {
			ms[i].Value = value
			return ms
		}
	}
	return append(ms, yaml.MapItem{Key: key, Value: value})
}

// findByName returns the index of the first object in list whose "name" is name
func findByName(list []interface{}, name string) (int, yaml.MapSlice) {
	for i, e := range list {
		ms, ok := e.(yaml.MapSlice)
		if !ok {
			continue
		}
		if n, ok := field(ms, "name"); ok {
			if s, ok := n.(string); ok && s == name {
				return i, ms
			}
		}
	}
	return -1, nil
}
