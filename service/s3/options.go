//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fogfish/curie/v2"
	"github.com/fogfish/opts"
)

// S3 declares AWS API used by the library
type S3 interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Option type to configure the S3
type Option = opts.Option[Options]

// Config Options
type Options struct {
	bucket   string
	ns       string
	prefixes curie.Prefixes
	service  S3
}

func (c *Options) checkRequired() error {
	return opts.Required(c,
		WithBucket(""),
		WithS3(nil),
	)
}

var (
	// Configure the S3 bucket, required
	WithBucket = opts.ForName[Options, string]("bucket")

	// Configure the CURIE prefix of minted locators, default "blob"
	WithNamespace = opts.ForName[Options, string]("ns")

	// Configure CURIE prefixes
	WithPrefixes = opts.ForType[Options, curie.Prefixes]()

	// Set S3 client for the storage
	WithService = opts.ForType[Options, S3]()

	// Set S3 client for the storage
	WithS3 = opts.ForType[Options, S3]()

	// Configure client's S3 to use provided the aws.Config
	WithConfig = opts.FMap(optsFromConfig)

	// Use default aws.Config for the S3 client
	WithDefaultS3 = opts.From(optsDefaultS3)
)

// NewConfig creates Config with default options
func optsDefault() Options {
	return Options{
		ns:       "blob",
		prefixes: curie.Namespaces{"blob": "blob/"},
	}
}

func optsDefaultS3(c *Options) error {
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return err
	}
	return optsFromConfig(c, cfg)
}

func optsFromConfig(c *Options, cfg aws.Config) error {
	if c.service == nil {
		c.service = s3.NewFromConfig(cfg)
	}
	return nil
}
