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
)

// Arity of a related entity binding, single value or ordered sequence.
type Arity int

const (
	One Arity = iota + 1
	Many
)

// Discriminator is the rule deciding whether a raw item belongs to the
// primary shape of an entity type: exact sort-key value, sort-key prefix,
// or a dedicated attribute with an expected value. Comparison is exact or
// prefix only, always case-sensitive.
type Discriminator struct {
	attr   string
	value  string
	prefix bool
}

// BySortKey discriminates on the exact sort-key value.
func BySortKey(value string) Discriminator {
	return Discriminator{value: value}
}

// BySortKeyPrefix discriminates on a sort-key prefix.
func BySortKeyPrefix(prefix string) Discriminator {
	return Discriminator{value: prefix, prefix: true}
}

// ByAttribute discriminates on a dedicated attribute carrying the expected
// value, e.g. a "_type" attribute written by the encoder.
func ByAttribute(attr, value string) Discriminator {
	return Discriminator{attr: attr, value: value}
}

func (d Discriminator) match(sortKey string, item Item) bool {
	name := d.attr
	if name == "" {
		name = sortKey
	}

	v, ok := textOf(item[name])
	if !ok {
		return false
	}

	if d.prefix {
		return strings.HasPrefix(v, d.value)
	}
	return v == d.value
}

// Binding links a sort-key pattern to a nested entity type and relation
// arity. Pattern is an exact string, or a prefix terminated by '*'. Join
// decodes the related item through the nested type's own mapper and
// attaches it to the composite entity.
type Binding[T any] struct {
	Pattern string
	Arity   Arity
	Join    func(*T, Item) error
}

func (b Binding[T]) match(sortKey string) bool {
	if prefix, wild := strings.CutSuffix(b.Pattern, "*"); wild {
		return strings.HasPrefix(sortKey, prefix)
	}
	return sortKey == b.Pattern
}

// Codec translates a whole entity to and from its raw item. The default
// codec is the AWS attributevalue marshaler over `dynamodbav` struct tags;
// generated code or dynamic entities supply their own.
type Codec[T any] interface {
	Encode(T) (Item, error)
	Decode(Item) (T, error)
}

// Meta is the static description of an entity type, created once at process
// start and never mutated. Concurrent readers need no locking because there
// is no post-initialization writer.
type Meta[T any] struct {
	// Type is the logical entity name, the registry key.
	Type string

	// PartitionKey and SortKey are the key attribute names.
	PartitionKey string
	SortKey      string

	// Discriminator selects the primary item of the type.
	Discriminator Discriminator

	// Bindings is the ordered list of related entity bindings.
	Bindings []Binding[T]

	// Codec overrides the default entity codec.
	Codec Codec[T]
}

// validate rejects configuration errors at registration time. Overlapping
// binding patterns are a configuration error, not a runtime one.
func (meta Meta[T]) validate() error {
	if meta.Type == "" {
		return errInvalidMeta.New(fmt.Errorf("entity type name is required"))
	}
	if meta.PartitionKey == "" {
		return errInvalidMeta.New(fmt.Errorf("partition key attribute is required for %s", meta.Type))
	}
	if len(meta.Bindings) != 0 && meta.SortKey == "" {
		return errInvalidMeta.New(fmt.Errorf("sort key attribute is required for %s, related bindings are declared", meta.Type))
	}

	for i, b := range meta.Bindings {
		if b.Pattern == "" {
			return errInvalidMeta.New(fmt.Errorf("empty binding pattern for %s", meta.Type))
		}
		if b.Arity != One && b.Arity != Many {
			return errInvalidMeta.New(fmt.Errorf("invalid arity of binding %q for %s", b.Pattern, meta.Type))
		}
		if b.Join == nil {
			return errInvalidMeta.New(fmt.Errorf("binding %q for %s has no join", b.Pattern, meta.Type))
		}
		for _, o := range meta.Bindings[i+1:] {
			if overlaps(b.Pattern, o.Pattern) {
				return errAmbiguousBinding.New(fmt.Errorf("%q overlaps %q for %s", b.Pattern, o.Pattern, meta.Type))
			}
		}
	}

	return nil
}

// overlaps holds when one raw item could match both patterns.
func overlaps(a, b string) bool {
	pa, wa := strings.CutSuffix(a, "*")
	pb, wb := strings.CutSuffix(b, "*")

	switch {
	case wa && wb:
		return strings.HasPrefix(pa, pb) || strings.HasPrefix(pb, pa)
	case wa:
		return strings.HasPrefix(pb, pa)
	case wb:
		return strings.HasPrefix(pa, pb)
	default:
		return pa == pb
	}
}
