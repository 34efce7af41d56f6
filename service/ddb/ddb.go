//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

// Package ddb bridges the entity codec to DynamoDB tables: Get, Put, Remove
// and partition-key matching with composite hydration.
package ddb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fogfish/opts"
	"github.com/oproto/dynamap"
)

// Storage is a DynamoDB-backed store of entities of type T. All I/O goes
// through the narrow DynamoDB interface; encode and decode dispatch through
// the engine, so hydrator-aware types externalize blobs transparently.
type Storage[T any] struct {
	service   DynamoDB
	table     *string
	index     *string
	prefix    string
	mapper    *dynamap.Mapper[T]
	schema    *schema[T]
	codec     []dynamap.Option
	undefined T
}

// Must is a constraint for the storage factory.
func Must[T any](db *Storage[T], err error) *Storage[T] {
	if err != nil {
		panic(err)
	}
	return db
}

// New creates a DynamoDB-backed storage for the entity type of the mapper.
func New[T any](mapper *dynamap.Mapper[T], opt ...Option) (*Storage[T], error) {
	c := optsDefault()
	if err := opts.Apply(&c, opt); err != nil {
		return nil, err
	}
	if err := c.checkRequired(); err != nil {
		return nil, err
	}

	db := &Storage[T]{
		service: c.service,
		table:   aws.String(c.table),
		prefix:  c.prefix,
		mapper:  mapper,
		schema:  newSchema[T](),
		codec: []dynamap.Option{
			dynamap.WithLogger(c.logger),
			dynamap.WithParallel(c.parallel),
		},
	}
	if c.index != "" {
		db.index = aws.String(c.index)
	}
	if c.blobs != nil {
		db.codec = append(db.codec, dynamap.WithBlobs(c.blobs))
	}
	if c.hydrators != nil {
		db.codec = append(db.codec, dynamap.WithHydrators(c.hydrators))
	}

	return db, nil
}

// encodeKey builds the physical key from the mapper's key attribute names.
func (db *Storage[T]) encodeKey(pk, sk string) (map[string]types.AttributeValue, error) {
	if pk == "" {
		return nil, errInvalidKey.New(nil)
	}

	meta := db.mapper.Meta()
	key := map[string]types.AttributeValue{
		meta.PartitionKey: &types.AttributeValueMemberS{Value: pk},
	}

	if meta.SortKey != "" {
		if sk == "" {
			return nil, errInvalidKey.New(nil)
		}
		key[meta.SortKey] = &types.AttributeValueMemberS{Value: sk}
	}

	return key, nil
}

// decode one logical entity, dispatching through the engine
func (db *Storage[T]) decode(ctx context.Context, items []dynamap.Item) (T, error) {
	obj, _, err := dynamap.Decode(ctx, db.mapper, items, db.codec...)
	if err != nil {
		return db.undefined, errInvalidEntity.New(err)
	}
	return obj, nil
}

var _ DynamoDB = (*dynamodb.Client)(nil)
