// Package match ranks names by similarity. It backs the "did you mean"
// hints of definition and configuration errors.
package match
