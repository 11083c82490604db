package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Validation error kinds. A *ValidationError unwraps to exactly one of these.
var (
	ErrUnsupportedType       = errors.New("unsupported type")
	ErrDanglingReference     = errors.New("dangling reference")
	ErrDuplicateName         = errors.New("duplicate name")
	ErrMultiplePrimaryKeys   = errors.New("multiple primary keys")
	ErrInvalidPrimaryKeyType = errors.New("invalid primary key type")
	ErrUnknownPrimaryKey     = errors.New("unknown primary key")
	ErrInvalidIndex          = errors.New("invalid index")
	ErrEmbeddedPrimaryKey    = errors.New("embedded class with primary key")
)

// ValidationError is one violation found while building a document.
type ValidationError struct {
	Kind     error
	Class    string
	Property string
	// Target is the unresolved class name for dangling references.
	Target string
	Detail string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	switch {
	case e.Class != "" && e.Property != "":
		b.WriteString(e.Class + "." + e.Property + ": ")
	case e.Class != "":
		b.WriteString(e.Class + ": ")
	case e.Property != "":
		b.WriteString(e.Property + ": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	return b.String()
}

// Unwrap returns the error kind.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// ValidationErrors is the complete list of violations of one build.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (v *ValidationErrors) Error() string {
	parts := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("schema has %d error(s): %s", len(v.Errors), strings.Join(parts, "; "))
}

// Unwrap exposes every contained error to errors.Is and errors.As.
func (v *ValidationErrors) Unwrap() []error {
	out := make([]error, len(v.Errors))
	for i, e := range v.Errors {
		out[i] = e
	}
	return out
}

// Of returns the contained errors of the given kind.
func (v *ValidationErrors) Of(kind error) []*ValidationError {
	var out []*ValidationError
	for _, e := range v.Errors {
		if errors.Is(e.Kind, kind) {
			out = append(out, e)
		}
	}
	return out
}

func (v *ValidationErrors) add(e *ValidationError) {
	v.Errors = append(v.Errors, e)
}

func (v *ValidationErrors) empty() bool {
	return len(v.Errors) == 0
}

// AsValidationErrors extracts the violation list from err, if any.
func AsValidationErrors(err error) (*ValidationErrors, bool) {
	var v *ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
