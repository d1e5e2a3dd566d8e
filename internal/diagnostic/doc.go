// Package diagnostic provides the structured report returned by an
// enrichment run and by graph definition validation.
//
// Key capabilities:
//   - Per-bucket dispatch failures that were isolated and swallowed
//   - Warnings for nested objects without an operation graph
//   - Validation errors for graph definition files
//   - A combined error view for callers that want to fail hard
package diagnostic
