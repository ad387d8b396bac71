package entity

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/pdf-fields/constants"
)

// Value is a field value that keeps "keyword never found" apart from "found, but empty".
type Value struct {
	Text   string
	Absent bool
}

// Present wraps an extracted string.
func Present(s string) Value { return Value{Text: s} }

// Missing is the value stored for a keyword that does not occur in the document.
func Missing() Value { return Value{Absent: true} }

// Cell renders the value for a table cell; absent values render empty.
func (v Value) Cell() string {
	if v.Absent {
		return ""
	}
	return v.Text
}

// Record is the ordered result for one document. The filename column always comes first.
// Set is last-write-wins: a repeated key keeps its first position and takes the new value.
type Record struct {
	keys   []string
	values map[string]Value

	Status constants.RecordStatus
	Error  string
}

func NewRecord(filename string) *Record {
	r := &Record{
		values: make(map[string]Value),
		Status: constants.RecordStatusOK,
	}
	r.Set(constants.FilenameColumn, Present(filename))
	return r
}

func (r *Record) Set(key string, v Value) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the record keys in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Record) Filename() string {
	return r.values[constants.FilenameColumn].Text
}

// Fail marks the record as failed. Repeated failures are joined into one message.
func (r *Record) Fail(err error) {
	if err == nil {
		return
	}
	r.Status = constants.RecordStatusFailed
	msg := strings.ReplaceAll(err.Error(), "\n", "; ")
	if r.Error == "" {
		r.Error = msg
		return
	}
	r.Error = r.Error + "; " + msg
}

func (r *Record) Failed() bool {
	return r.Status == constants.RecordStatusFailed
}

// MarshalJSON writes the values as an object in key order; absent values become null.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		v := r.values[k]
		if v.Absent {
			buf.WriteString("null")
			continue
		}
		vb, err := json.Marshal(v.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
