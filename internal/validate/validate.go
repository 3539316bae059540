// Package validate holds the field-level checks shared by the resource services.
package validate

import (
	"net/mail"
	"strings"
	"time"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Problems accumulates field errors so every failing field is reported at once.
type Problems []FieldError

// Add records a problem for field.
func (p *Problems) Add(field, message string) {
	*p = append(*p, FieldError{Field: field, Message: message})
}

// Empty reports whether no problems were recorded.
func (p Problems) Empty() bool {
	return len(p) == 0
}

// String joins the problem messages.
func (p Problems) String() string {
	messages := make([]string, len(p))
	for i, fe := range p {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

// Required trims value and records a problem when nothing is left.
func (p *Problems) Required(field, value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		p.Add(field, field+" is required")
	}
	return trimmed
}

// Email trims and lower-cases value and records a problem unless it is a bare
// address such as "ana@example.com".
func (p *Problems) Email(field, value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if !IsEmail(normalized) {
		p.Add(field, field+" must be a valid email address")
	}
	return normalized
}

// Timestamp parses value as an ISO-8601 date or date-time and records a
// problem when it cannot.
func (p *Problems) Timestamp(field, value string) time.Time {
	t, ok := ParseTimestamp(value)
	if !ok {
		p.Add(field, field+" must be an ISO-8601 date")
	}
	return t
}

// IsEmail reports whether value is a bare email address with a dotted domain.
func IsEmail(value string) bool {
	if value == "" || strings.ContainsAny(value, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return false
	}
	at := strings.LastIndexByte(value, '@')
	domain := value[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts the ISO-8601 shapes clients send in practice: a
// calendar date, or a date-time with or without offset. Values without an
// offset are read as UTC.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
