package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// StringList is stored as a jsonb array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*l = StringList{}
		return nil
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, (*[]string)(l))
}

// Find returns the element equal to s ignoring case and surrounding space.
func (l StringList) Find(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, item := range l {
		if strings.EqualFold(item, s) {
			return item, true
		}
	}
	return "", false
}

// ParseServiceList splits a comma-separated services string, trimming each
// entry and dropping empty ones. The result is never nil.
func ParseServiceList(raw string) StringList {
	out := StringList{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
