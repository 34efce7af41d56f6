//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

package s3

import (
	"errors"
	"fmt"

	"github.com/fogfish/faults"
)

const (
	errServiceIO = faults.Type("service i/o failed")
)

// NotFound is an error to handle unknown blobs
func errNotFound(err error, locator string) error {
	return &notFound{locator: locator, err: err}
}

type notFound struct {
	locator string
	err     error
}

func (e *notFound) Error() string {
	return fmt.Sprintf("Not Found (%s)", e.locator)
}

func (e *notFound) Unwrap() error { return e.err }

func (e *notFound) NotFound() string { return e.locator }

// recover AWS ErrorCode
func recoverNoSuchKey(err error) bool {
	var e interface{ ErrorCode() string }

	ok := errors.As(err, &e)
	return ok && e.ErrorCode() == "NoSuchKey"
}
