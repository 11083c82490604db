package export

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrUnknownFormat is returned for a format name other than json or yaml.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrMissingVersion is returned when the input carries no formatVersion.
	ErrMissingVersion = errors.New("missing format version")
	// ErrUnsupportedVersion is returned for a formatVersion this build cannot read.
	ErrUnsupportedVersion = errors.New("unsupported format version")
)

// ParseError reports malformed serialized input. Offset is the byte offset
// for JSON input and Line the line for YAML input; either is zero when the
// position is not known. Field names the offending field when the input is
// well formed but its content is not.
type ParseError struct {
	Offset int64
	Line   int
	Field  string
	Err    error
}

func (e *ParseError) Error() string {
	var where []string
	if e.Offset > 0 {
		where = append(where, "offset "+strconv.FormatInt(e.Offset, 10))
	}
	if e.Line > 0 {
		where = append(where, "line "+strconv.Itoa(e.Line))
	}
	if e.Field != "" {
		where = append(where, e.Field)
	}
	if len(where) == 0 {
		return fmt.Sprintf("parse error: %v", e.Err)
	}
	return fmt.Sprintf("parse error at %s: %v", strings.Join(where, ", "), e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func fieldError(field string, err error) *ParseError {
	return &ParseError{Field: field, Err: err}
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// yamlError converts a yaml.v3 error, which only carries its position in
// the message text.
func yamlError(err error) *ParseError {
	pe := &ParseError{Err: err}
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	return pe
}
