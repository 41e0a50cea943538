// Package problems collects the errors and warnings produced while binding
// configuration classes.
package problems

import (
	"fmt"
	"strings"
)

// Severity of a Message.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name so reports stay readable.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Kind categorizes a Message.
type Kind string

const (
	KindDefunct     Kind = "defunct_property"
	KindConflict    Kind = "conflicting_property"
	KindInvalid     Kind = "invalid_value"
	KindConstraint  Kind = "constraint_violation"
	KindDeprecated  Kind = "deprecated_property"
	KindReplaced    Kind = "replaced_property"
	KindUnused      Kind = "unused_property"
	KindInvalidType Kind = "invalid_configuration"
)

// Message is a single diagnostic produced while binding a class.
type Message struct {
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	// Class is the display name of the configuration class, if any.
	Class string `json:"class,omitempty"`
	// Key is the (prefixed) property key the message is about, if any.
	Key  string `json:"key,omitempty"`
	Text string `json:"message"`
}

// String returns the message text.
func (m Message) String() string {
	return m.Text
}

// Problems is an ordered batch of errors and warnings.
type Problems struct {
	Errors   []Message `json:"errors"`
	Warnings []Message `json:"warnings"`
}

// Add appends m to the collection matching its severity.
func (p *Problems) Add(m Message) {
	if m.Severity == SeverityError {
		p.Errors = append(p.Errors, m)
		return
	}
	p.Warnings = append(p.Warnings, m)
}

// AddError records an error.
func (p *Problems) AddError(kind Kind, class, key, text string) {
	p.Add(Message{Severity: SeverityError, Kind: kind, Class: class, Key: key, Text: text})
}

// AddWarning records a warning.
func (p *Problems) AddWarning(kind Kind, class, key, text string) {
	p.Add(Message{Severity: SeverityWarning, Kind: kind, Class: class, Key: key, Text: text})
}

// Merge appends all messages of other, preserving order.
func (p *Problems) Merge(other *Problems) {
	if other == nil {
		return
	}
	p.Errors = append(p.Errors, other.Errors...)
	p.Warnings = append(p.Warnings, other.Warnings...)
}

// HasErrors reports whether at least one error was recorded.
func (p *Problems) HasErrors() bool {
	return len(p.Errors) > 0
}

// IsValid returns true if there are no errors.
func (p *Problems) IsValid() bool {
	return !p.HasErrors()
}

// Len returns the total number of messages.
func (p *Problems) Len() int {
	return len(p.Errors) + len(p.Warnings)
}

// All returns errors followed by warnings.
func (p *Problems) All() []Message {
	out := make([]Message, 0, p.Len())
	out = append(out, p.Errors...)
	return append(out, p.Warnings...)
}

// ErrorTexts returns the text of every error, in order.
func (p *Problems) ErrorTexts() []string {
	return texts(p.Errors)
}

// WarningTexts returns the text of every warning, in order.
func (p *Problems) WarningTexts() []string {
	return texts(p.Warnings)
}

// Err returns a *CreationError carrying every error and warning, or nil when
// no error was recorded. Warnings alone never fail creation.
func (p *Problems) Err() error {
	if !p.HasErrors() {
		return nil
	}
	return &CreationError{
		Errors:   append([]Message(nil), p.Errors...),
		Warnings: append([]Message(nil), p.Warnings...),
	}
}

func texts(ms []Message) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Text
	}
	return out
}

// CreationError reports that a configuration object graph could not be built.
// It carries the warnings collected alongside the errors.
type CreationError struct {
	Errors   []Message
	Warnings []Message
}

// Messages returns errors followed by warnings.
func (e *CreationError) Messages() []Message {
	out := make([]Message, 0, len(e.Errors)+len(e.Warnings))
	out = append(out, e.Errors...)
	return append(out, e.Warnings...)
}

func (e *CreationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "configuration errors (%d):", len(e.Errors))
	for _, m := range e.Errors {
		b.WriteString("\n  - ")
		b.WriteString(m.Text)
	}
	if len(e.Warnings) > 0 {
		fmt.Fprintf(&b, "\nconfiguration warnings (%d):", len(e.Warnings))
		for _, m := range e.Warnings {
			b.WriteString("\n  - ")
			b.WriteString(m.Text)
		}
	}
	return b.String()
}
