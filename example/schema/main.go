//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

//
// The example shows the declarative schema: a YAML table definition
// compiled into a mapper over dynamic Record entities, no generated or
// hand-written types involved.
//

package main

import (
	"encoding/json"
	"log"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/oproto/dynamap"
	"github.com/oproto/dynamap/schema"
)

const doc = `
version: 1
tables:
  - name: orders
    partitionKey: pk
    sortKey: sk
    entities:
      - type: Order
        sortKey: META
        fields:
          - name: pk
            kind: string
          - name: sk
            kind: string
          - name: total
            kind: number
            format: "%.2f"
        relations:
          - pattern: "ITEM#*"
            arity: many
            entity: OrderItem
            field: items
      - type: OrderItem
        sortKeyPrefix: "ITEM#"
        fields:
          - name: pk
            kind: string
          - name: sk
            kind: string
          - name: sku
            kind: string
`

func main() {
	s, err := schema.Parse([]byte(doc))
	assert(err)

	table, err := s.Table("orders")
	assert(err)

	orders, err := table.Bind("Order")
	assert(err)

	//
	// encode a dynamic record into its raw item
	item, err := orders.Encode(schema.Record{
		"pk":    "order:8C7B",
		"sk":    "META",
		"total": 12.5,
	})
	assert(err)
	stdio(map[string]any{"total": item["total"].(*types.AttributeValueMemberN).Value})

	//
	// hydrate a composite back from raw partition rows
	items := []dynamap.Item{
		item,
		{
			"pk":  &types.AttributeValueMemberS{Value: "order:8C7B"},
			"sk":  &types.AttributeValueMemberS{Value: "ITEM#001"},
			"sku": &types.AttributeValueMemberS{Value: "pencil"},
		},
		{
			"pk":  &types.AttributeValueMemberS{Value: "order:8C7B"},
			"sk":  &types.AttributeValueMemberS{Value: "ITEM#002"},
			"sku": &types.AttributeValueMemberS{Value: "notebook"},
		},
	}

	order, _, err := orders.DecodeMany(items)
	assert(err)
	stdio(order)
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
