//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

package ddb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/oproto/dynamap"
)

// Put writes the entity, dispatching the encode through the engine so
// hydrator-aware types externalize blob fields first.
func (db *Storage[T]) Put(ctx context.Context, entity T) error {
	gen, err := dynamap.Encode(ctx, db.mapper, entity, db.codec...)
	if err != nil {
		return errInvalidEntity.New(err)
	}

	req := &dynamodb.PutItemInput{
		Item:      gen,
		TableName: db.table,
	}

	if _, err := db.service.PutItem(ctx, req); err != nil {
		return errServiceIO.New(err)
	}

	return nil
}
