// Package documents tracks the files attached to a loan application and
// answers the sufficiency check the workflow runs before any external
// lookups. It also surfaces the financial metrics extracted from the
// documents by the intake pipeline.
package documents
