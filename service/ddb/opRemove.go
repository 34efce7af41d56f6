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
)

// Remove discards the item behind the key from the table
func (db *Storage[T]) Remove(ctx context.Context, pk, sk string) error {
	key, err := db.encodeKey(pk, sk)
	if err != nil {
		return err
	}

	req := &dynamodb.DeleteItemInput{
		Key:       key,
		TableName: db.table,
	}

	if _, err := db.service.DeleteItem(ctx, req); err != nil {
		return errServiceIO.New(err)
	}

	return nil
}
