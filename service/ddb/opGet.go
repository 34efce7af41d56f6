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

// Get fetches the item behind the key and decodes it into the entity.
func (db *Storage[T]) Get(ctx context.Context, pk, sk string) (T, error) {
	key, err := db.encodeKey(pk, sk)
	if err != nil {
		return db.undefined, err
	}

	req := &dynamodb.GetItemInput{
		Key:                      key,
		TableName:                db.table,
		ProjectionExpression:     db.schema.Projection,
		ExpressionAttributeNames: db.schema.ExpectedAttributeNames,
	}

	val, err := db.service.GetItem(ctx, req)
	if err != nil {
		return db.undefined, errServiceIO.New(err)
	}

	if val.Item == nil {
		return db.undefined, errNotFound(nil, pk, sk)
	}

	return db.decode(ctx, []dynamap.Item{val.Item})
}
