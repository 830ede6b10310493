// Meridian is a loan-underwriting decision engine.
//
// It drives each application through an eight-step pipeline: document
// sufficiency, financial-data extraction, credit-bureau lookup,
// default-probability scoring, qualitative analysis, policy rule
// evaluation, decision fusion, and credit memo generation. Every
// decision lands in an append-only audit log.
//
// Usage:
//
//	# Start the engine with default configuration
//	meridian run
//
//	# Start with a custom configuration file
//	meridian run --config /etc/meridian/config.yaml
//
//	# Validate a rule catalogue
//	meridian rules validate --path rules.yaml
//
//	# Export the built-in catalogue as a starting point
//	meridian rules export
//
//	# Show version information
//	meridian version
package main

func main() {
	Execute()
}
