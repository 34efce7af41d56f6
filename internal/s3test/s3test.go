//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

// Package s3test implements an in-memory mock of the S3 client interface.
package s3test

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 is an in-memory bucket behind the S3 client interface.
type S3 struct {
	Objects map[string][]byte
	Puts    int
	Gets    int
}

func New() *S3 {
	return &S3{Objects: map[string][]byte{}}
}

func (mock *S3) GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	mock.Gets++

	data, has := mock.Objects[*input.Key]
	if !has {
		return nil, &noSuchKey{}
	}

	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func (mock *S3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	mock.Puts++

	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	mock.Objects[*input.Key] = data

	return &s3.PutObjectOutput{}, nil
}

func (mock *S3) DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(mock.Objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type noSuchKey struct{}

func (e *noSuchKey) Error() string     { return "NoSuchKey: the key does not exist" }
func (e *noSuchKey) ErrorCode() string { return "NoSuchKey" }
