package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxNameLength bounds the assignee and category fields.
const MaxNameLength = 20

// AllowedPriorities lists the accepted priority values.
var AllowedPriorities = []string{"low", "medium", "high"}

var allowedFields = map[string]bool{
	"title":       true,
	"description": true,
	"completed":   true,
	"assignee":    true,
	"priority":    true,
	"category":    true,
	"deadline":    true,
}

// ErrNotObject is returned by DecodePayload when the body is not a JSON
// object.
var ErrNotObject = errors.New("request body must be a JSON object")

// TaskPatch holds the fields a payload explicitly carried. A nil pointer
// means the field was omitted, which is distinct from an explicit empty
// value; partial updates depend on that difference.
type TaskPatch struct {
	Title       *string
	Description *string
	Assignee    *string
	Priority    *string
	Category    *string
	Deadline    *string
	Completed   *bool
}

// DecodePayload parses a request body into raw per-field values without
// interpreting them, so that presence and type can be checked separately.
func DecodePayload(body []byte) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&fields); err != nil {
		return nil, ErrNotObject
	}
	return fields, nil
}

// ValidatePayload runs every applicable check and returns all violations
// together, or nil when the payload is clean. Unknown fields short-circuit
// into a single error naming them. isUpdate relaxes the title requirement:
// an update may omit everything.
func ValidatePayload(fields map[string]json.RawMessage, isUpdate bool) []string {
	var unknown []string
	for key := range fields {
		if !allowedFields[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return []string{"unknown fields in payload: " + strings.Join(unknown, ", ")}
	}

	var errs []string

	if raw, ok := fields["title"]; ok {
		if s, ok := asString(raw); !ok {
			errs = append(errs, "field 'title' must be a string")
		} else if !isUpdate && strings.TrimSpace(s) == "" {
			errs = append(errs, "field 'title' is required")
		}
	} else if !isUpdate {
		errs = append(errs, "field 'title' is required")
	}

	if raw, ok := fields["description"]; ok {
		if _, ok := asString(raw); !ok {
			errs = append(errs, "field 'description' must be a string")
		}
	}

	if raw, ok := fields["priority"]; ok {
		s, isStr := asString(raw)
		if !isStr || !containsString(AllowedPriorities, s) {
			errs = append(errs, "field 'priority' must be one of: "+strings.Join(AllowedPriorities, ", "))
		}
	}

	if raw, ok := fields["assignee"]; ok {
		if s, ok := asString(raw); !ok {
			errs = append(errs, "field 'assignee' must be a string")
		} else if s != "" {
			if utf8.RuneCountInString(s) > MaxNameLength {
				errs = append(errs, fmt.Sprintf("field 'assignee' must be at most %d characters", MaxNameLength))
			}
			if containsDigit(s) {
				errs = append(errs, "field 'assignee' must not contain digits")
			}
		}
	}

	if raw, ok := fields["category"]; ok {
		if s, ok := asString(raw); !ok {
			errs = append(errs, "field 'category' must be a string")
		} else if s != "" && utf8.RuneCountInString(s) > MaxNameLength {
			errs = append(errs, fmt.Sprintf("field 'category' must be at most %d characters", MaxNameLength))
		}
	}

	if raw, ok := fields["deadline"]; ok {
		s, isStr := asString(raw)
		switch {
		case !isStr:
			errs = append(errs, "field 'deadline' must be a valid DD.MM.YYYY date")
		case s != "" && !IsValidDate(s):
			// Letters get their own message so a user who typed a month name
			// is not told the padding is wrong.
			if containsLetter(s) {
				errs = append(errs, "field 'deadline' must not contain letters")
			} else {
				errs = append(errs, "field 'deadline' must be a valid DD.MM.YYYY date")
			}
		}
	}

	if raw, ok := fields["completed"]; ok {
		if !isStrictBool(raw) {
			errs = append(errs, "field 'completed' must be true or false")
		}
	}

	return errs
}

// BuildPatch converts validated raw fields into a typed patch. It must only
// be called after ValidatePayload returned no errors.
func BuildPatch(fields map[string]json.RawMessage) TaskPatch {
	var p TaskPatch
	p.Title = stringField(fields, "title")
	p.Description = stringField(fields, "description")
	p.Assignee = stringField(fields, "assignee")
	p.Priority = stringField(fields, "priority")
	p.Category = stringField(fields, "category")
	p.Deadline = stringField(fields, "deadline")
	if raw, ok := fields["completed"]; ok {
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			p.Completed = &b
		}
	}
	return p
}

func stringField(fields map[string]json.RawMessage, key string) *string {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	s, ok := asString(raw)
	if !ok {
		return nil
	}
	return &s
}

// asString unmarshals raw into a string, rejecting JSON null explicitly
// since encoding/json leaves the target untouched on null instead of
// failing.
func asString(raw json.RawMessage) (string, bool) {
	if string(bytes.TrimSpace(raw)) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// isStrictBool accepts only the JSON literals true and false, never truthy
// coercions.
func isStrictBool(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "true", "false":
		return true
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	for _, c := range s {
		if c >= '0' && c <= '9' {
			return true
		}
	}
	return false
}

func containsLetter(s string) bool {
	for _, c := range s {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return true
		}
	}
	return false
}
