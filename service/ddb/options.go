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
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/fogfish/opts"
	"github.com/oproto/dynamap"
	"github.com/rs/zerolog"
)

// DynamoDB declares the subset of the AWS DynamoDB API used by the library
type DynamoDB interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Option type to configure the storage
type Option = opts.Option[Options]

// Config Options
type Options struct {
	table     string
	index     string
	prefix    string
	parallel  int
	service   DynamoDB
	blobs     dynamap.BlobStorage
	hydrators *dynamap.Registry
	logger    zerolog.Logger
}

func (c *Options) checkRequired() error {
	return opts.Required(c,
		WithTable(""),
		WithDynamoDB(nil),
	)
}

var (
	// Configure the DynamoDB table, required
	WithTable = opts.ForName[Options, string]("table")

	// Configure the global secondary index of queries
	WithIndex = opts.ForName[Options, string]("index")

	// Configure the default sort-key prefix of Match
	WithPrefix = opts.ForName[Options, string]("prefix")

	// Bound fan-out of bulk hydration, default is sequential
	WithParallel = opts.ForName[Options, int]("parallel")

	// Set DynamoDB client for the storage
	WithService = opts.ForType[Options, DynamoDB]()

	// Set DynamoDB client for the storage
	WithDynamoDB = opts.ForType[Options, DynamoDB]()

	// Configure the blob storage provider for hydrator-aware entity types
	WithBlobs = opts.ForType[Options, dynamap.BlobStorage]()

	// Use the hydrator registry instead of the package-level default
	WithHydrators = opts.ForType[Options, *dynamap.Registry]()

	// Emit hydration diagnostics to the logger, default is zerolog.Nop
	WithLogger = opts.ForType[Options, zerolog.Logger]()

	// Configure client's DynamoDB to use provided the aws.Config
	WithConfig = opts.FMap(optsFromConfig)

	// Use default aws.Config for the DynamoDB client
	WithDefaultDynamoDB = opts.From(optsDefaultDynamoDB)
)

// NewConfig creates Config with default options
func optsDefault() Options {
	return Options{
		parallel: 1,
		logger:   zerolog.Nop(),
	}
}

func optsDefaultDynamoDB(c *Options) error {
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return err
	}
	return optsFromConfig(c, cfg)
}

func optsFromConfig(c *Options, cfg aws.Config) error {
	if c.service == nil {
		c.service = dynamodb.NewFromConfig(cfg)
	}
	return nil
}
