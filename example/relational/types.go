//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

package main

import (
	"fmt"

	"github.com/oproto/dynamap"
)

// Order is a composite entity: one META item plus ITEM# rows, all stored
// under the order's partition key.
type Order struct {
	PK    string      `dynamodbav:"pk" json:"pk"`
	SK    string      `dynamodbav:"sk" json:"sk"`
	Total float64     `dynamodbav:"total,omitempty" json:"total,omitempty"`
	Items []OrderItem `dynamodbav:"-" json:"items,omitempty"`
}

type OrderItem struct {
	PK  string `dynamodbav:"pk" json:"pk"`
	SK  string `dynamodbav:"sk" json:"sk"`
	SKU string `dynamodbav:"sku,omitempty" json:"sku,omitempty"`
	Qty int    `dynamodbav:"qty,omitempty" json:"qty,omitempty"`
}

// Shipment shares the table with orders, discriminated by its own sort key.
type Shipment struct {
	PK      string `dynamodbav:"pk" json:"pk"`
	SK      string `dynamodbav:"sk" json:"sk"`
	Carrier string `dynamodbav:"carrier,omitempty" json:"carrier,omitempty"`
}

var orderItems = dynamap.Must(dynamap.New(dynamap.Meta[OrderItem]{
	Type:          "OrderItem",
	PartitionKey:  "pk",
	SortKey:       "sk",
	Discriminator: dynamap.BySortKeyPrefix("ITEM#"),
}))

var shipments = dynamap.Must(dynamap.New(dynamap.Meta[Shipment]{
	Type:          "Shipment",
	PartitionKey:  "pk",
	SortKey:       "sk",
	Discriminator: dynamap.BySortKey("SHIPMENT"),
}))

var orders = dynamap.Must(dynamap.New(dynamap.Meta[Order]{
	Type:          "Order",
	PartitionKey:  "pk",
	SortKey:       "sk",
	Discriminator: dynamap.BySortKey("META"),
	Bindings: []dynamap.Binding[Order]{
		{
			Pattern: "ITEM#*",
			Arity:   dynamap.Many,
			Join: func(order *Order, item dynamap.Item) error {
				v, err := orderItems.Decode(item)
				if err != nil {
					return err
				}
				order.Items = append(order.Items, v)
				return nil
			},
		},
	},
}))

func newOrder(id string, total float64, skus ...string) (Order, []OrderItem) {
	order := Order{
		PK:    "order:" + id,
		SK:    "META",
		Total: total,
	}

	items := make([]OrderItem, 0, len(skus))
	for i, sku := range skus {
		items = append(items, OrderItem{
			PK:  order.PK,
			SK:  fmt.Sprintf("ITEM#%03d", i+1),
			SKU: sku,
			Qty: 1,
		})
	}

	return order, items
}
