package model

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// ID is a store-assigned entity identifier. It decodes from either a JSON
// number or a numeric string, since clients send both.
type ID int64

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if !isDigits(s) {
			return fmt.Errorf("invalid id %q", s)
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*id = ID(n)
	return nil
}

// String returns the decimal form of the id
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a path parameter into an ID. Ids are positive.
func ParseID(s string) (ID, bool) {
	if !isDigits(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return ID(n), true
}

// Ref is an embedded reference to another entity.
type Ref struct {
	ID   ID     `json:"id"`
	Self string `json:"self,omitempty"`
}

// ContainsRef reports whether refs has an entry for id
func ContainsRef(refs []Ref, id ID) bool {
	for _, r := range refs {
		if r.ID == id {
			return true
		}
	}
	return false
}

// RemoveRef returns refs without any entry for id, and whether one was removed
func RemoveRef(refs []Ref, id ID) ([]Ref, bool) {
	out := refs[:0:0]
	removed := false
	for _, r := range refs {
		if r.ID == id {
			removed = true
			continue
		}
		out = append(out, r)
	}
	return out, removed
}
