package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"enricher/internal/common"
)

// Diagnostics holds all diagnostic information from one run or validation.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Bean is the target type name the diagnostic relates to (if any).
	Bean string
	// Operation identifies the operation (if any).
	Operation string
	// Namespace is the container namespace (if any).
	Namespace string
	// Cause is the underlying error (if any).
	Cause error
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, bean, operation string) {
	d.Append(Diagnostic{
		Severity:  SeverityError,
		Code:      code,
		Message:   message,
		Bean:      bean,
		Operation: operation,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, bean, operation string) {
	d.Append(Diagnostic{
		Severity:  SeverityWarning,
		Code:      code,
		Message:   message,
		Bean:      bean,
		Operation: operation,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, bean, operation string) {
	d.Append(Diagnostic{
		Severity:  SeverityInfo,
		Code:      code,
		Message:   message,
		Bean:      bean,
		Operation: operation,
	})
}

// Append files a fully populated diagnostic under its severity.
func (d *Diagnostics) Append(diag Diagnostic) {
	switch diag.Severity {
	case SeverityError:
		d.Errors = append(d.Errors, diag)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return d != nil && len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return !d.HasErrors()
}

// Error returns a combined error from all error diagnostics, or nil if valid.
// Causes stay reachable through errors.Is.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	errs := make([]error, 0, len(d.Errors))
	for _, e := range d.Errors {
		if e.Cause != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.String(), e.Cause))
			continue
		}

		errs = append(errs, errors.New(e.String()))
	}

	return errors.Join(errs...)
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Bean != "" {
		prefix = append(prefix, "["+d.Bean+"]")
	}

	if d.Operation != "" {
		prefix = append(prefix, d.Operation)
	}

	if d.Namespace != "" {
		prefix = append(prefix, "@"+d.Namespace)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
