package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys are attribute keys whose values are always masked,
// whatever they contain.
var sensitiveKeys = map[string]bool{
	"identity_ref": true,
	"nik":          true,
	"api_key":      true,
	"password":     true,
	"token":        true,
}

// Redactor masks personal data in log attribute values. Safe for
// concurrent use; the patterns are compiled once.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor creates a redactor with the built-in patterns: national
// identity numbers (16 digits), local phone numbers, and email
// addresses.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b\d{16}\b`),
			regexp.MustCompile(`(\+62|\b08)\d{8,12}\b`),
			regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.]+\b`),
		},
	}
}

// RedactAttr masks the attribute's value when its key is sensitive or
// its string value matches a personal-data pattern.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, "[REDACTED]")
	}
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	}
	return a
}

// RedactString masks every personal-data match in s.
func (r *Redactor) RedactString(s string) string {
	for _, p := range r.patterns {
		s = p.ReplaceAllString(s, "[REDACTED]")
	}
	return s
}
