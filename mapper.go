//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

package dynamap

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

// Mapper is the per-type capability set of the engine: encode, decode of a
// single item, decode of a composite, partition-key extraction and type
// discrimination. It is the entire coupling surface between the composite
// hydration algorithm and any specific entity type. A mapper is built once
// per type and is immutable afterwards.
type Mapper[T any] struct {
	meta  Meta[T]
	codec Codec[T]
}

// New builds the mapper of an entity type, validating its metadata.
func New[T any](meta Meta[T]) (*Mapper[T], error) {
	if err := meta.validate(); err != nil {
		return nil, err
	}

	codec := meta.Codec
	if codec == nil {
		codec = structCodec[T]{}
	}

	return &Mapper[T]{meta: meta, codec: codec}, nil
}

// Must is a constraint for the mapper factory.
func Must[T any](mapper *Mapper[T], err error) *Mapper[T] {
	if err != nil {
		panic(err)
	}
	return mapper
}

// Meta returns the metadata the mapper was built from.
func (m *Mapper[T]) Meta() Meta[T] { return m.meta }

// Encode converts the entity into its raw item, verifying that the encoded
// item carries the configured key attributes.
func (m *Mapper[T]) Encode(entity T) (Item, error) {
	item, err := m.codec.Encode(entity)
	if err != nil {
		return nil, m.fail(err)
	}

	if _, has := item[m.meta.PartitionKey]; !has {
		return nil, m.fail(&MissingKeyError{Attr: m.meta.PartitionKey})
	}
	if m.meta.SortKey != "" {
		if _, has := item[m.meta.SortKey]; !has {
			return nil, m.fail(&MissingKeyError{Attr: m.meta.SortKey})
		}
	}

	return item, nil
}

// Decode converts a single raw item back into the entity. A missing key
// attribute fails the decode; missing non-key attributes leave the
// corresponding fields at their zero value, supporting sparse projections.
func (m *Mapper[T]) Decode(item Item) (T, error) {
	var none T

	if _, has := item[m.meta.PartitionKey]; !has {
		return none, m.fail(&MissingKeyError{Attr: m.meta.PartitionKey})
	}
	if m.meta.SortKey != "" {
		if _, has := item[m.meta.SortKey]; !has {
			return none, m.fail(&MissingKeyError{Attr: m.meta.SortKey})
		}
	}

	entity, err := m.codec.Decode(item)
	if err != nil {
		return none, m.fail(err)
	}

	return entity, nil
}

// DecodeMany assembles one composite entity from raw items sharing a single
// partition key: a primary item plus items matching the related bindings.
// The input must collapse into exactly one partition-key group.
func (m *Mapper[T]) DecodeMany(items []Item) (T, []Diagnostic, error) {
	var none T

	groups, unkeyed := m.groups(items)
	if len(unkeyed) != 0 {
		return none, nil, m.fail(&MissingKeyError{Attr: m.meta.PartitionKey})
	}

	switch {
	case len(groups) == 0:
		return none, nil, m.fail(errNoMatchingItems.New(nil))
	case len(groups) > 1:
		return none, nil, m.fail(errManyGroups.New(nil))
	}

	return m.assemble(groups[0])
}

// PartitionKey reads the partition-key attribute verbatim. It is used for
// grouping only, never for type validation.
func (m *Mapper[T]) PartitionKey(item Item) (string, error) {
	v, ok := textOf(item[m.meta.PartitionKey])
	if !ok {
		return "", &MissingKeyError{Attr: m.meta.PartitionKey}
	}
	return v, nil
}

// Matches evaluates the type's discriminator rule. Related binding patterns
// also match, the physical rows of a composite belong to its shape; the
// discriminator alone selects the primary item within a group.
func (m *Mapper[T]) Matches(item Item) bool {
	if m.meta.Discriminator.match(m.meta.SortKey, item) {
		return true
	}

	if sk, ok := m.sortKeyOf(item); ok {
		for _, b := range m.meta.Bindings {
			if b.match(sk) {
				return true
			}
		}
	}

	return false
}

func (m *Mapper[T]) sortKeyOf(item Item) (string, bool) {
	if m.meta.SortKey == "" {
		return "", false
	}
	return textOf(item[m.meta.SortKey])
}

// fail wraps the cause at the entity boundary, exactly once.
func (m *Mapper[T]) fail(err error) error {
	var mapping *MappingError
	if errors.As(err, &mapping) {
		return err
	}
	return &MappingError{Type: m.meta.Type, Err: err}
}

// structCodec is the default entity codec over `dynamodbav` struct tags.
type structCodec[T any] struct{}

func (structCodec[T]) Encode(entity T) (Item, error) {
	return attributevalue.MarshalMap(entity)
}

func (structCodec[T]) Decode(item Item) (T, error) {
	var entity T
	if err := attributevalue.UnmarshalMap(item, &entity); err != nil {
		var none T
		return none, err
	}
	return entity, nil
}
