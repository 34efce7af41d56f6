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

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/oproto/dynamap"
)

// Match queries all items under the partition key, paginating to
// exhaustion, and hydrates them into composite entities.
func (db *Storage[T]) Match(ctx context.Context, pk string) ([]dynamap.Hydrated[T], error) {
	return db.match(ctx, pk, db.prefix)
}

// MatchPrefix narrows Match to items whose sort key begins with the prefix.
func (db *Storage[T]) MatchPrefix(ctx context.Context, pk, prefix string) ([]dynamap.Hydrated[T], error) {
	return db.match(ctx, pk, prefix)
}

func (db *Storage[T]) match(ctx context.Context, pk, prefix string) ([]dynamap.Hydrated[T], error) {
	if pk == "" {
		return nil, errInvalidKey.New(nil)
	}

	meta := db.mapper.Meta()

	expr := "#__" + meta.PartitionKey + "__ = :__" + meta.PartitionKey + "__"
	names := map[string]string{
		"#__" + meta.PartitionKey + "__": meta.PartitionKey,
	}
	values := map[string]types.AttributeValue{
		":__" + meta.PartitionKey + "__": &types.AttributeValueMemberS{Value: pk},
	}

	if prefix != "" {
		expr = expr + " and begins_with(#__" + meta.SortKey + "__, :__" + meta.SortKey + "__)"
		names["#__"+meta.SortKey+"__"] = meta.SortKey
		values[":__"+meta.SortKey+"__"] = &types.AttributeValueMemberS{Value: prefix}
	}

	req := &dynamodb.QueryInput{
		KeyConditionExpression:    aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ProjectionExpression:      db.schema.Projection,
		TableName:                 db.table,
		IndexName:                 db.index,
	}
	for name, attr := range db.schema.ExpectedAttributeNames {
		req.ExpressionAttributeNames[name] = attr
	}

	items := make([]dynamap.Item, 0)
	for {
		val, err := db.service.Query(ctx, req)
		if err != nil {
			return nil, errServiceIO.New(err)
		}

		items = append(items, val.Items...)

		if val.LastEvaluatedKey == nil {
			break
		}
		req.ExclusiveStartKey = val.LastEvaluatedKey
	}

	return dynamap.Hydrate(ctx, db.mapper, items, db.codec...)
}
