// Package bureau fetches credit reports for an identity reference. The
// Client talks to the live bureau over HTTP and falls back to a
// deterministic simulated report, marked Degraded, when the live
// service is unreachable. The simulation hashes the identity reference
// so repeated lookups for the same applicant stay consistent.
package bureau
