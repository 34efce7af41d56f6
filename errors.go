//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

package dynamap

import (
	"fmt"
	"strings"

	"github.com/fogfish/faults"
)

// ErrNoBlobProvider is raised when an operation requires a blob storage
// provider (a hydrator is registered for the entity type, or a blob helper
// was invoked) and none was supplied. It is raised before any I/O.
const ErrNoBlobProvider = faults.Type("blob storage provider is required")

const (
	errNoPrimaryItem    = faults.Type("no primary item in partition group")
	errManyPrimaryItems = faults.Type("multiple primary items in partition group")
	errNoMatchingItems  = faults.Type("no items match the entity type")
	errManyGroups       = faults.Type("items span multiple partition keys")
	errBlobContent      = faults.Type("blob content does not match its reference")
	errAmbiguousBinding = faults.Type("ambiguous related entity bindings")
	errInvalidMeta      = faults.Type("invalid entity metadata")
)

// TypeMismatchError is raised when the wire kind of an attribute value does
// not match the kind expected by the target field.
type TypeMismatchError struct {
	Attr   string
	Expect Kind
	Actual Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch at %q: expect %s, got %s", e.Attr, e.Expect, e.Actual)
}

// FormatError is raised when a format hint is supplied to a value that does
// not support one, or when a supplied hint fails to parse or produce a value.
type FormatError struct {
	Type string
	Hint string
	err  error
}

func (e *FormatError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("format %q is not applicable to %s: %v", e.Hint, e.Type, e.err)
	}
	return fmt.Sprintf("format %q is not applicable to %s", e.Hint, e.Type)
}

func (e *FormatError) Unwrap() error { return e.err }

// MissingKeyError is raised when a required partition- or sort-key attribute
// is absent from a raw item.
type MissingKeyError struct {
	Attr string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("required key attribute %q is missing", e.Attr)
}

// UnsupportedTypeError is raised when a domain type has no codec mapping and
// no textual fallback.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("type %s is not supported by the codec", e.Type)
}

// MappingError wraps any codec failure raised from a whole-entity operation.
// Callers catch one error type for "this entity failed to map" and inspect
// the cause via errors.As / errors.Is.
type MappingError struct {
	Type string
	Err  error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("mapping of %s failed: %v", e.Type, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// Diagnostic reports a recoverable ambiguity observed while assembling a
// composite entity: more than one item matched a single-arity relation
// binding. The engine proceeds with the lexicographically smallest sort key
// and surfaces the condition as a value, never as ambient state.
type Diagnostic struct {
	Type     string
	Key      string
	Pattern  string
	SortKeys []string
	Chosen   string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s (%s): pattern %q matched [%s], chosen %q",
		d.Type, d.Key, d.Pattern, strings.Join(d.SortKeys, ", "), d.Chosen)
}
