// errors.go — Typed template configuration failures.
package template

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Store lookups for unknown template ids.
var ErrNotFound = errors.New("template not found")

// InvalidTemplateConfigError reports a missing zone or malformed geometry. It
// names the template and zone so the record can be fixed at the source.
type InvalidTemplateConfigError struct {
	TemplateID string
	Zone       string // "photo", "name", "title", "layout" or "" for the record itself
	Reason     string
	Err        error
}

func (e *InvalidTemplateConfigError) Error() string {
	msg := fmt.Sprintf("invalid template %q", e.TemplateID)
	if e.Zone != "" {
		msg += fmt.Sprintf(" zone %s", e.Zone)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidTemplateConfigError) Unwrap() error { return e.Err }

func invalid(id, zone, format string, args ...any) *InvalidTemplateConfigError {
	return &InvalidTemplateConfigError{TemplateID: id, Zone: zone, Reason: fmt.Sprintf(format, args...)}
}
