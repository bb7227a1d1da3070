package api

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/jrsteele09/eshtarek-portal/users"
)

// Error is a non-2xx response from the users API
type Error struct {
	Status  int
	Message string
	Fields  users.FieldErrors
	Body    []byte
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("users api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("users api: status %d", e.Status)
}

func newError(status int, body []byte) *Error {
	return &Error{
		Status:  status,
		Message: extractMessage(body),
		Fields:  extractFields(body),
		Body:    body,
	}
}

// extractMessage finds the first human readable message in a DRF error body
func extractMessage(body []byte) string {
	// Plain text and HTML come from proxies, not the API
	if !gjson.ValidBytes(body) {
		return ""
	}

	for _, path := range []string{"error", "detail", "non_field_errors.0", "message"} {
		if msg := gjson.GetBytes(body, path); msg.Type == gjson.String && msg.Str != "" {
			return msg.Str
		}
	}

	root := gjson.ParseBytes(body)
	switch {
	case root.Type == gjson.String:
		return root.Str
	case root.IsArray():
		return root.Get("0").String()
	}

	var first string
	root.ForEach(func(_, value gjson.Result) bool {
		if value.IsArray() {
			first = value.Get("0").String()
		}
		return first == ""
	})
	return first
}

// extractFields collects the field -> messages map of a DRF validation error
func extractFields(body []byte) users.FieldErrors {
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil
	}

	fields := users.FieldErrors{}
	root.ForEach(func(key, value gjson.Result) bool {
		if !value.IsArray() {
			return true
		}
		for _, msg := range value.Array() {
			if msg.Type == gjson.String {
				fields[key.String()] = append(fields[key.String()], msg.Str)
			}
		}
		return true
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// firstOf returns the first non-empty value at paths in body
func firstOf(body []byte, paths ...string) string {
	for _, path := range paths {
		if msg := gjson.GetBytes(body, path); msg.Type == gjson.String && msg.Str != "" {
			return msg.Str
		}
	}
	return ""
}
