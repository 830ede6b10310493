// Package logging builds the process-wide structured logger. Output is
// slog in JSON or text form, with an optional redaction layer that
// masks identity references and other personal data before any log
// line leaves the process.
package logging
