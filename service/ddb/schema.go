//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

package ddb

import (
	"reflect"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/fogfish/golem/hseq"
)

//
// Internal data structure to manage type schema
//

// schema decodes the type into a projection expression over its
// `dynamodbav` attributes, one-time reflection at construction only.
type schema[T any] struct {
	ExpectedAttributeNames map[string]string
	Projection             *string
}

func newSchema[T any]() *schema[T] {
	if reflect.TypeFor[T]().Kind() != reflect.Struct {
		// dynamic entities (e.g. map-backed records) fetch all attributes
		return &schema[T]{}
	}

	seq := hseq.FMap(
		hseq.New[T](),
		func(t hseq.Type[T]) string {
			tag := t.Tag.Get("dynamodbav")
			if tag == "" {
				return t.Name
			}
			name := strings.Split(tag, ",")[0]
			if name == "" || name == "-" {
				return ""
			}
			return name
		},
	)

	names := make(map[string]string, len(seq))
	attrs := make([]string, 0, len(seq))

	for _, x := range seq {
		if x == "" {
			continue
		}
		name := "#__" + x + "__"
		names[name] = x
		attrs = append(attrs, name)
	}

	if len(attrs) == 0 {
		return &schema[T]{}
	}

	return &schema[T]{
		ExpectedAttributeNames: names,
		Projection:             aws.String(strings.Join(attrs, ", ")),
	}
}
