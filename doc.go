//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

/*
Package dynamap is the data-model core of a fluent DynamoDB client: a typed
entity codec and a composite hydration engine. Application code defines
domain models as plain Go structs; the library encodes them into raw
DynamoDB items, decodes raw items back, recognizes which entity type a raw
item belongs to when a single table holds several shapes, and assembles one
logical entity out of several raw items sharing a partition key.

# Getting started

Define the domain model using `dynamodbav` struct tags and describe the
type once with its metadata:

	type Order struct {
	  PK    string      `dynamodbav:"pk"`
	  SK    string      `dynamodbav:"sk"`
	  Total float64     `dynamodbav:"total,omitempty"`
	  Items []OrderItem `dynamodbav:"-"`
	}

	var orders = dynamap.Must(dynamap.New(dynamap.Meta[Order]{
	  Type:          "Order",
	  PartitionKey:  "pk",
	  SortKey:       "sk",
	  Discriminator: dynamap.BySortKey("META"),
	  Bindings: []dynamap.Binding[Order]{
	    {Pattern: "ITEM#*", Arity: dynamap.Many, Join: joinOrderItem},
	  },
	}))

The mapper is the per-type capability set: Encode, Decode, DecodeMany,
PartitionKey and Matches. The composite hydration algorithm is written once
against these five operations and works for every conforming type:

	seq, err := dynamap.Hydrate(ctx, orders, items)

A bulk read mixing Order and Shipment rows under shared partition keys
hydrates into one Order per partition-key group, related ITEM# rows joined
in ascending sort-key order, foreign rows silently excluded.

# Externally stored fields

Large fields are swapped for opaque references resolved through a pluggable
blob storage provider. An entity type opts in by registering a Hydrator;
the engine then requires a provider and dispatches encode and decode
through it:

	dynamap.Register(nil, orders, orderHydrator{})
	seq, err := dynamap.Hydrate(ctx, orders, items,
	  dynamap.WithBlobs(blobs),
	)

A registry miss always takes the plain codec path. See service/ddb for the
DynamoDB storage bridge and service/s3 for the S3 blob provider.
*/
package dynamap
