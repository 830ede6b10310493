// Package audit persists the append-only decision log. Every fusion
// decision and every manual override is one immutable record; nothing
// in the system updates or deletes a decision row. The latest record
// for a case is its decision of record, and the full history is the
// audit trail regulators read.
package audit
