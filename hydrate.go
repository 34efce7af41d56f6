//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

//
// The file implements the composite hydration algorithm: type filter,
// partition grouping, primary/related split and relation population.
//

package dynamap

import (
	"context"
	"sort"
	"sync"

	"github.com/fogfish/opts"
	"github.com/rs/zerolog"
)

// Option configures the engine's dispatching operations, Encode, Decode
// and Hydrate.
type Option = opts.Option[Options]

// Options of the dispatching operations.
type Options struct {
	parallel  int
	logger    zerolog.Logger
	blobs     BlobStorage
	hydrators *Registry
}

var (
	// Bound fan-out of bulk hydration, default is sequential
	WithParallel = opts.ForName[Options, int]("parallel")

	// Emit hydration diagnostics to the logger, default is zerolog.Nop
	WithLogger = opts.ForType[Options, zerolog.Logger]()

	// Supply the blob storage provider for hydrator-aware entity types
	WithBlobs = opts.ForType[Options, BlobStorage]()

	// Use the registry instead of the package-level default
	WithHydrators = opts.ForType[Options, *Registry]()
)

func optsDefault() Options {
	return Options{
		parallel:  1,
		logger:    zerolog.Nop(),
		hydrators: registry,
	}
}

// Hydrated is the per-group outcome of a bulk hydration. Groups are
// independent: one group failing to decode does not abort its siblings,
// the bulk read already succeeded at the storage layer.
type Hydrated[T any] struct {
	Key    string
	Entity T
	Diags  []Diagnostic
	Err    error
}

// Hydrate assembles domain entities from a bulk read that potentially mixes
// several entity shapes. Items failing the type filter are silently
// excluded, remaining items are grouped by partition key and each group is
// decoded into one entity, through the registered hydrator when a blob
// provider is supplied. Results preserve the first-seen order of groups
// regardless of completion order.
func Hydrate[T any](ctx context.Context, m *Mapper[T], items []Item, opt ...Option) ([]Hydrated[T], error) {
	c := optsDefault()
	if err := opts.Apply(&c, opt); err != nil {
		return nil, err
	}

	groups, unkeyed := m.groups(items)
	// an unreadable partition key excludes the item, never the batch
	for range unkeyed {
		c.logger.Warn().
			Str("type", m.meta.Type).
			Str("attr", m.meta.PartitionKey).
			Msg("item without readable partition key excluded")
	}

	hydrator, armed := Lookup(c.hydrators, m)
	if armed && c.blobs == nil {
		return nil, ErrNoBlobProvider
	}

	decode := func(ctx context.Context, items []Item) (T, []Diagnostic, error) {
		if armed {
			return hydrator.Decode(ctx, items, c.blobs)
		}
		return m.DecodeMany(items)
	}

	seq := make([]Hydrated[T], len(groups))
	hydrate := func(i int) {
		g := groups[i]
		if err := ctx.Err(); err != nil {
			seq[i] = Hydrated[T]{Key: g.key, Err: err}
			return
		}

		entity, diags, err := decode(ctx, g.items)
		for _, d := range diags {
			c.logger.Warn().
				Str("type", d.Type).
				Str("key", d.Key).
				Str("pattern", d.Pattern).
				Strs("sortKeys", d.SortKeys).
				Str("chosen", d.Chosen).
				Msg("ambiguous match for single relation")
		}
		seq[i] = Hydrated[T]{Key: g.key, Entity: entity, Diags: diags, Err: err}
	}

	if c.parallel <= 1 {
		for i := range groups {
			hydrate(i)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, c.parallel)
		for i := range groups {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				hydrate(i)
			}(i)
		}
		wg.Wait()
	}

	if err := ctx.Err(); err != nil {
		return seq, err
	}
	return seq, nil
}

type group struct {
	key   string
	items []Item
}

// groups applies the type filter and partitions retained items by the
// partition key, keeping the first-seen order of groups. Items whose
// partition-key attribute is missing or non-textual cannot belong to any
// group and are returned separately; the caller decides their fate.
func (m *Mapper[T]) groups(items []Item) ([]group, []Item) {
	seq := make([]group, 0, len(items))
	index := map[string]int{}

	var unkeyed []Item
	for _, item := range items {
		if !m.Matches(item) {
			continue
		}

		key, err := m.PartitionKey(item)
		if err != nil {
			unkeyed = append(unkeyed, item)
			continue
		}

		i, has := index[key]
		if !has {
			i = len(seq)
			index[key] = i
			seq = append(seq, group{key: key})
		}
		seq[i].items = append(seq[i].items, item)
	}

	return seq, unkeyed
}

// assemble decodes one partition-key group into the composite entity.
func (m *Mapper[T]) assemble(g group) (T, []Diagnostic, error) {
	var none T

	// single-item shortcut
	if len(g.items) == 1 && len(m.meta.Bindings) == 0 {
		entity, err := m.Decode(g.items[0])
		return entity, nil, err
	}

	var primary []Item
	related := make([][]Item, len(m.meta.Bindings))

	for _, item := range g.items {
		if m.meta.Discriminator.match(m.meta.SortKey, item) {
			primary = append(primary, item)
			continue
		}

		sk, ok := m.sortKeyOf(item)
		if !ok {
			continue
		}
		for i, b := range m.meta.Bindings {
			if b.match(sk) {
				related[i] = append(related[i], item)
				break
			}
		}
	}

	switch {
	case len(primary) == 0:
		return none, nil, m.fail(errNoPrimaryItem.New(nil))
	case len(primary) > 1:
		return none, nil, m.fail(errManyPrimaryItems.New(nil))
	}

	entity, err := m.Decode(primary[0])
	if err != nil {
		return none, nil, err
	}

	var diags []Diagnostic
	for i, b := range m.meta.Bindings {
		bucket := related[i]
		if len(bucket) == 0 {
			continue
		}

		// ascending lexicographic sort-key order, deterministic across runs
		sort.SliceStable(bucket, func(i, j int) bool {
			a, _ := m.sortKeyOf(bucket[i])
			b, _ := m.sortKeyOf(bucket[j])
			return a < b
		})

		switch b.Arity {
		case Many:
			for _, item := range bucket {
				if err := b.Join(&entity, item); err != nil {
					return none, diags, m.fail(err)
				}
			}
		default:
			if len(bucket) > 1 {
				keys := make([]string, len(bucket))
				for i, item := range bucket {
					keys[i], _ = m.sortKeyOf(item)
				}
				diags = append(diags, Diagnostic{
					Type:     m.meta.Type,
					Key:      g.key,
					Pattern:  b.Pattern,
					SortKeys: keys,
					Chosen:   keys[0],
				})
			}
			if err := b.Join(&entity, bucket[0]); err != nil {
				return none, diags, m.fail(err)
			}
		}
	}

	return entity, diags, nil
}
