//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

// Package ddbtest implements mocks of the DynamoDB client interface.
package ddbtest

import (
	"context"
	"errors"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/oproto/dynamap/service/ddb"
)

// GetItem mocks the eponymous api, returning the value when the key
// matches the expectation.
type GetItem struct {
	ddb.DynamoDB
	ExpectKey map[string]types.AttributeValue
	ReturnVal map[string]types.AttributeValue
}

func (mock *GetItem) GetItem(ctx context.Context, input *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if !reflect.DeepEqual(mock.ExpectKey, input.Key) {
		return nil, errors.New("unexpected key")
	}

	if mock.ReturnVal == nil {
		return &dynamodb.GetItemOutput{}, nil
	}

	return &dynamodb.GetItemOutput{Item: mock.ReturnVal}, nil
}

// PutItem mocks the eponymous api, asserting the written item.
type PutItem struct {
	ddb.DynamoDB
	ExpectVal map[string]types.AttributeValue
}

func (mock *PutItem) PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if !reflect.DeepEqual(mock.ExpectVal, input.Item) {
		return nil, errors.New("unexpected entity")
	}
	return &dynamodb.PutItemOutput{}, nil
}

// DeleteItem mocks the eponymous api, asserting the discarded key.
type DeleteItem struct {
	ddb.DynamoDB
	ExpectKey map[string]types.AttributeValue
}

func (mock *DeleteItem) DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if !reflect.DeepEqual(mock.ExpectKey, input.Key) {
		return nil, errors.New("unexpected key")
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

// Query mocks the eponymous api, returning the configured pages one by one
// to exercise client-side pagination.
type Query struct {
	ddb.DynamoDB
	Pages [][]map[string]types.AttributeValue
	Calls int
}

func (mock *Query) Query(ctx context.Context, input *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if mock.Calls >= len(mock.Pages) {
		return &dynamodb.QueryOutput{}, nil
	}

	page := mock.Pages[mock.Calls]
	mock.Calls++

	out := &dynamodb.QueryOutput{
		Items: page,
		Count: int32(len(page)),
	}
	if mock.Calls < len(mock.Pages) {
		out.LastEvaluatedKey = page[len(page)-1]
	}

	return out, nil
}
