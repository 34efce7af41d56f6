//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

package schema

import (
	"fmt"

	"github.com/oproto/dynamap"
)

// Bind compiles the declared entity type into a mapper over Record values.
// Relations bind recursively through the target entity's own declaration;
// a relation chain revisiting an entity type is a configuration error.
func (t Table) Bind(entityType string) (*dynamap.Mapper[Record], error) {
	return t.bind(entityType, map[string]bool{})
}

func (t Table) bind(entityType string, visited map[string]bool) (*dynamap.Mapper[Record], error) {
	if visited[entityType] {
		return nil, errInvalidSchema.New(fmt.Errorf("relation cycle through %s in table %s", entityType, t.Name))
	}
	visited[entityType] = true
	defer delete(visited, entityType)

	entity, err := t.entity(entityType)
	if err != nil {
		return nil, err
	}

	bindings := make([]dynamap.Binding[Record], 0, len(entity.Relations))
	for _, rel := range entity.Relations {
		binding, err := t.relation(rel, visited)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, binding)
	}

	return dynamap.New(dynamap.Meta[Record]{
		Type:          entity.Type,
		PartitionKey:  t.PartitionKey,
		SortKey:       t.SortKey,
		Discriminator: discriminator(entity),
		Bindings:      bindings,
		Codec:         recordCodec{fields: entity.Fields},
	})
}

func (t Table) relation(rel Relation, visited map[string]bool) (dynamap.Binding[Record], error) {
	nested, err := t.bind(rel.Entity, visited)
	if err != nil {
		return dynamap.Binding[Record]{}, err
	}

	var arity dynamap.Arity
	var join func(*Record, dynamap.Item) error

	switch rel.Arity {
	case "many":
		arity = dynamap.Many
		join = func(e *Record, item dynamap.Item) error {
			v, err := nested.Decode(item)
			if err != nil {
				return err
			}
			seq, _ := (*e)[rel.Field].([]Record)
			(*e)[rel.Field] = append(seq, v)
			return nil
		}
	default:
		arity = dynamap.One
		join = func(e *Record, item dynamap.Item) error {
			v, err := nested.Decode(item)
			if err != nil {
				return err
			}
			(*e)[rel.Field] = v
			return nil
		}
	}

	return dynamap.Binding[Record]{
		Pattern: rel.Pattern,
		Arity:   arity,
		Join:    join,
	}, nil
}

func (t Table) entity(entityType string) (Entity, error) {
	for _, e := range t.Entities {
		if e.Type == entityType {
			return e, nil
		}
	}
	return Entity{}, errUnknownEntity.New(fmt.Errorf("%s is not declared in table %s", entityType, t.Name))
}

func discriminator(entity Entity) dynamap.Discriminator {
	switch {
	case entity.SortKeyPrefix != "":
		return dynamap.BySortKeyPrefix(entity.SortKeyPrefix)
	case entity.Attribute != "":
		return dynamap.ByAttribute(entity.Attribute, entity.Value)
	default:
		return dynamap.BySortKey(entity.SortKeyValue)
	}
}
