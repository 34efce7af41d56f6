//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

//
// The example shows single-table composite entities: orders with their
// line items, hydrated back from a partition-key query.
//
//   go run . my-table-name
//

package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/oproto/dynamap/service/ddb"
)

func main() {
	table := os.Args[1]

	orderDB := ddb.Must(ddb.New(orders,
		ddb.WithTable(table),
		ddb.WithDefaultDynamoDB(),
	))
	itemDB := ddb.Must(ddb.New(orderItems,
		ddb.WithTable(table),
		ddb.WithDefaultDynamoDB(),
	))
	shipmentDB := ddb.Must(ddb.New(shipments,
		ddb.WithTable(table),
		ddb.WithDefaultDynamoDB(),
	))

	ctx := context.Background()

	//
	// As a merchant I want to accept an order with its line items ...
	order, items := newOrder("8C7B", 12.50, "pencil", "notebook")
	assert(orderDB.Put(ctx, order))
	for _, item := range items {
		assert(itemDB.Put(ctx, item))
	}

	//
	// ... and track its shipment in the same partition
	assert(shipmentDB.Put(ctx, Shipment{
		PK:      order.PK,
		SK:      "SHIPMENT",
		Carrier: "DHL",
	}))

	//
	// As a merchant I want to fetch the order composite back ...
	seq, err := orderDB.Match(ctx, order.PK)
	assert(err)

	for _, obj := range seq {
		assert(obj.Err)
		stdio(obj.Entity)
	}

	//
	// ... and the shipment alone, other item shapes are filtered out
	shipment, err := shipmentDB.Get(ctx, order.PK, "SHIPMENT")
	assert(err)
	stdio(shipment)
}

func stdio(data any) {
	b, err := json.MarshalIndent(data, "|", "  ")
	assert(err)

	log.Println(string(b))
}

func assert(err error) {
	if err != nil {
		panic(err)
	}
}
