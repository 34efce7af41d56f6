//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

package ddb

import (
	"fmt"

	"github.com/fogfish/faults"
)

const (
	errServiceIO     = faults.Type("service i/o failed")
	errInvalidKey    = faults.Type("invalid key")
	errInvalidEntity = faults.Type("invalid entity")
)

// NotFound is an error to handle unknown elements
func errNotFound(err error, pk, sk string) error {
	return &notFound{pk: pk, sk: sk, err: err}
}

type notFound struct {
	pk, sk string
	err    error
}

func (e *notFound) Error() string {
	return fmt.Sprintf("Not Found (%s, %s)", e.pk, e.sk)
}

func (e *notFound) Unwrap() error { return e.err }

func (e *notFound) NotFound() string { return e.pk + " " + e.sk }
