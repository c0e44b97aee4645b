// Package rendering turns a CV record into HTML using one of a closed set of templates.
package rendering

import (
	"errors"
	"fmt"
)

// ErrWrite wraps failures of the destination writer.
var ErrWrite = errors.New("failed to write rendered output")

// TemplateError is a parse or execution failure of an HTML template. Template
// is empty for the page wrapper and the server's own pages.
type TemplateError struct {
	Template TemplateID
	Message  string
	Cause    error
}

func (e *TemplateError) Error() string {
	msg := e.Message
	if e.Template != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Template)
	}
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", msg, e.Cause)
	}
	return "template error: " + msg
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}
