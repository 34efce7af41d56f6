//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

// Package s3 implements the blob storage provider over AWS S3. Minted
// locators are compact IRIs (`blob:uuid` by default), expanded to object
// keys through configurable CURIE prefixes.
package s3

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fogfish/curie/v2"
	"github.com/fogfish/opts"
	"github.com/google/uuid"
	"github.com/oproto/dynamap"
)

// Storage is an S3-backed blob storage provider.
type Storage struct {
	service  S3
	bucket   *string
	prefixes curie.Prefixes
	ns       string
}

var _ dynamap.BlobStorage = (*Storage)(nil)

// Must is a constraint for the storage factory.
func Must(db *Storage, err error) *Storage {
	if err != nil {
		panic(err)
	}
	return db
}

// New creates an S3-backed blob storage provider.
func New(opt ...Option) (*Storage, error) {
	c := optsDefault()
	if err := opts.Apply(&c, opt); err != nil {
		return nil, err
	}
	if err := c.checkRequired(); err != nil {
		return nil, err
	}

	return &Storage{
		service:  c.service,
		bucket:   aws.String(c.bucket),
		prefixes: c.prefixes,
		ns:       c.ns,
	}, nil
}

// Store writes the content under a minted key and returns its locator.
func (db *Storage) Store(ctx context.Context, data []byte) (string, error) {
	locator := curie.New(db.ns, uuid.NewString())

	req := &s3.PutObjectInput{
		Bucket: db.bucket,
		Key:    aws.String(db.key(locator)),
		Body:   bytes.NewReader(data),
	}

	if _, err := db.service.PutObject(ctx, req); err != nil {
		return "", errServiceIO.New(err)
	}

	return string(locator), nil
}

// Retrieve resolves the locator and reads the content back.
func (db *Storage) Retrieve(ctx context.Context, locator string) ([]byte, error) {
	req := &s3.GetObjectInput{
		Bucket: db.bucket,
		Key:    aws.String(db.key(curie.IRI(locator))),
	}

	val, err := db.service.GetObject(ctx, req)
	if err != nil {
		switch {
		case recoverNoSuchKey(err):
			return nil, errNotFound(err, locator)
		default:
			return nil, errServiceIO.New(err)
		}
	}
	defer val.Body.Close()

	data, err := io.ReadAll(val.Body)
	if err != nil {
		return nil, errServiceIO.New(err)
	}

	return data, nil
}

// Remove discards the content behind the locator.
func (db *Storage) Remove(ctx context.Context, locator string) error {
	req := &s3.DeleteObjectInput{
		Bucket: db.bucket,
		Key:    aws.String(db.key(curie.IRI(locator))),
	}

	if _, err := db.service.DeleteObject(ctx, req); err != nil {
		return errServiceIO.New(err)
	}

	return nil
}

// key expands the compact locator to the object key.
func (db *Storage) key(locator curie.IRI) string {
	return curie.URI(db.prefixes, locator)
}
