package errors

import (
	// Go Internal Packages
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an error so callers can decide between logging and propagating it.
type Kind uint8

const (
	Other Kind = iota
	Invalid
	Decode
	TransientScoring
	ScoringExhausted
	SinkWrite
	Canceled
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Decode:
		return "decode"
	case TransientScoring:
		return "transient_scoring"
	case ScoringExhausted:
		return "scoring_exhausted"
	case SinkWrite:
		return "sink_write"
	case Canceled:
		return "canceled"
	}
	return "other"
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// E builds a kind tagged error wrapping err (which may be nil).
func E(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the outermost *Error in the chain, or Other.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// Is reports whether err carries the given kind.
func Is(kind Kind, err error) bool {
	return err != nil && KindOf(err) == kind
}

// ValidationErrors collects field level problems, mostly for config validation.
type ValidationErrors struct {
	fields map[string][]string
}

func ValidationErrs() *ValidationErrors {
	return &ValidationErrors{fields: make(map[string][]string)}
}

func (v *ValidationErrors) Add(field, msg string) {
	v.fields[field] = append(v.fields[field], msg)
}

// Err returns nil when nothing was added.
func (v *ValidationErrors) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, strings.Join(v.fields[k], ", ")))
	}
	return E(Invalid, "validation failed", stderrors.New(strings.Join(parts, "; ")))
}
