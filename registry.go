//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

package dynamap

import (
	"context"
	"errors"
	"fmt"

	"github.com/fogfish/opts"
)

// Hydrator is the optional, per-entity-type component performing blob-aware
// encode and decode. It is used instead of the plain codec path whenever a
// blob storage provider is supplied by the caller.
type Hydrator[T any] interface {
	Encode(ctx context.Context, entity T, store BlobStorage) (Item, error)
	Decode(ctx context.Context, items []Item, store BlobStorage) (T, []Diagnostic, error)
}

// Registry maps entity type name to its hydrator. It is populated once
// during initialization, typically by generated registration calls, and is
// read-only for the remainder of the process lifetime; concurrent lookups
// need no locking. Absence of a hydrator is the common case for entity
// types without externally stored fields.
type Registry struct {
	hydrators map[string]any
}

// NewRegistry creates an empty hydrator registry.
func NewRegistry() *Registry {
	return &Registry{hydrators: map[string]any{}}
}

// package-level default, populated by registration calls at init time
var registry = NewRegistry()

// DefaultRegistry returns the package-level registry used by the
// dispatching operations unless WithHydrators overrides it.
func DefaultRegistry() *Registry { return registry }

// Register binds the hydrator to the entity type of the mapper. A duplicate
// registration is a configuration error and panics. A nil registry targets
// the package-level default.
func Register[T any](r *Registry, m *Mapper[T], hydrator Hydrator[T]) {
	if r == nil {
		r = registry
	}

	name := m.meta.Type
	if _, has := r.hydrators[name]; has {
		panic(fmt.Sprintf("dynamap: hydrator for %s is already registered", name))
	}
	r.hydrators[name] = hydrator
}

// Lookup resolves the hydrator of the entity type, absent for the majority
// of types. A registry miss always takes the plain codec path; there is no
// reflective probing for hydration capabilities. An entry registered under
// the type name but serving a different entity type is a configuration
// error and panics, it must not degrade to the plain path silently.
func Lookup[T any](r *Registry, m *Mapper[T]) (Hydrator[T], bool) {
	if r == nil {
		r = registry
	}

	v, has := r.hydrators[m.meta.Type]
	if !has {
		return nil, false
	}

	hydrator, ok := v.(Hydrator[T])
	if !ok {
		panic(fmt.Sprintf("dynamap: hydrator for %s does not serve the requested entity type", m.meta.Type))
	}
	return hydrator, true
}

// Encode converts the entity into its raw item, dispatching between the
// hydrator path and the plain codec path. A registered hydrator declares
// that a blob provider is required: its absence fails before any I/O.
// The dispatch decision is identical for Encode and Decode of one entity
// type, so content written as a reference is read back as one.
func Encode[T any](ctx context.Context, m *Mapper[T], entity T, opt ...Option) (Item, error) {
	c := optsDefault()
	if err := opts.Apply(&c, opt); err != nil {
		return nil, err
	}

	hydrator, armed := Lookup(c.hydrators, m)
	if !armed {
		return m.Encode(entity)
	}
	if c.blobs == nil {
		return nil, ErrNoBlobProvider
	}

	item, err := hydrator.Encode(ctx, entity, c.blobs)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, m.fail(err)
	}
	return item, nil
}

// Decode converts raw items of one logical entity back into the domain
// value, dispatching exactly as Encode does.
func Decode[T any](ctx context.Context, m *Mapper[T], items []Item, opt ...Option) (T, []Diagnostic, error) {
	var none T

	c := optsDefault()
	if err := opts.Apply(&c, opt); err != nil {
		return none, nil, err
	}

	hydrator, armed := Lookup(c.hydrators, m)
	if !armed {
		return m.DecodeMany(items)
	}
	if c.blobs == nil {
		return none, nil, ErrNoBlobProvider
	}

	entity, diags, err := hydrator.Decode(ctx, items, c.blobs)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return none, diags, err
		}
		return none, diags, m.fail(err)
	}
	return entity, diags, nil
}
