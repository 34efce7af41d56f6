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
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// BlobStorage is the engine-side contract of the external blob store. The
// engine treats every call as a single attempt, assuming no provider-side
// caching, retries or idempotency.
type BlobStorage interface {
	Store(ctx context.Context, data []byte) (string, error)
	Retrieve(ctx context.Context, locator string) ([]byte, error)
}

// BlobRef stands in for externally stored content. It is produced by a
// hydrator on encode and consumed on decode; the rest of the engine treats
// it as an opaque map-shaped wire value.
type BlobRef struct {
	Ref    string `dynamodbav:"ref"`
	Size   int64  `dynamodbav:"size"`
	SHA256 string `dynamodbav:"sha256"`
}

// EncodeBlob externalizes the content through the provider and returns the
// map-shaped reference to embed into the raw item instead of the inline
// content.
func EncodeBlob(ctx context.Context, store BlobStorage, data []byte) (types.AttributeValue, error) {
	if store == nil {
		return nil, ErrNoBlobProvider
	}

	locator, err := store.Store(ctx, data)
	if err != nil {
		return nil, err
	}

	hash := sha256.Sum256(data)
	return attributevalue.Marshal(BlobRef{
		Ref:    locator,
		Size:   int64(len(data)),
		SHA256: hex.EncodeToString(hash[:]),
	})
}

// DecodeBlob resolves the reference through the provider and verifies the
// retrieved content against the reference checksum and size.
func DecodeBlob(ctx context.Context, store BlobStorage, av types.AttributeValue) ([]byte, error) {
	if store == nil {
		return nil, ErrNoBlobProvider
	}

	if _, ok := av.(*types.AttributeValueMemberM); !ok {
		return nil, &TypeMismatchError{Attr: "ref", Expect: KindMap, Actual: KindOf(av)}
	}

	var ref BlobRef
	if err := attributevalue.Unmarshal(av, &ref); err != nil {
		return nil, err
	}

	data, err := store.Retrieve(ctx, ref.Ref)
	if err != nil {
		return nil, err
	}

	if ref.Size != int64(len(data)) {
		return nil, errBlobContent.New(fmt.Errorf("size %d, expected %d at %s", len(data), ref.Size, ref.Ref))
	}
	if ref.SHA256 != "" {
		hash := sha256.Sum256(data)
		if ref.SHA256 != hex.EncodeToString(hash[:]) {
			return nil, errBlobContent.New(fmt.Errorf("checksum mismatch at %s", ref.Ref))
		}
	}

	return data, nil
}
