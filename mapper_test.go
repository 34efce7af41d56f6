//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

package dynamap_test

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fogfish/it"
	"github.com/oproto/dynamap"
)

//
// Fixtures: a single table holding Order, OrderItem, Profile and Shipment
// shapes, discriminated by sort key.
//

type Order struct {
	PK      string      `dynamodbav:"pk"`
	SK      string      `dynamodbav:"sk"`
	Total   float64     `dynamodbav:"total,omitempty"`
	Note    *string     `dynamodbav:"note"`
	Items   []OrderItem `dynamodbav:"-"`
	Profile *Profile    `dynamodbav:"-"`
}

type OrderItem struct {
	PK  string `dynamodbav:"pk"`
	SK  string `dynamodbav:"sk"`
	SKU string `dynamodbav:"sku,omitempty"`
	Qty int    `dynamodbav:"qty,omitempty"`
}

type Profile struct {
	PK   string `dynamodbav:"pk"`
	SK   string `dynamodbav:"sk"`
	Name string `dynamodbav:"name,omitempty"`
}

type Shipment struct {
	PK      string `dynamodbav:"pk"`
	SK      string `dynamodbav:"sk"`
	Carrier string `dynamodbav:"carrier,omitempty"`
}

var orderItems = dynamap.Must(dynamap.New(dynamap.Meta[OrderItem]{
	Type:          "OrderItem",
	PartitionKey:  "pk",
	SortKey:       "sk",
	Discriminator: dynamap.BySortKeyPrefix("ITEM#"),
}))

var profiles = dynamap.Must(dynamap.New(dynamap.Meta[Profile]{
	Type:          "Profile",
	PartitionKey:  "pk",
	SortKey:       "sk",
	Discriminator: dynamap.BySortKeyPrefix("PROFILE"),
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
		{
			Pattern: "PROFILE*",
			Arity:   dynamap.One,
			Join: func(order *Order, item dynamap.Item) error {
				v, err := profiles.Decode(item)
				if err != nil {
					return err
				}
				order.Profile = &v
				return nil
			},
		},
	},
}))

func rawOrder(pk string, total string) dynamap.Item {
	return dynamap.Item{
		"pk":    &types.AttributeValueMemberS{Value: pk},
		"sk":    &types.AttributeValueMemberS{Value: "META"},
		"total": &types.AttributeValueMemberN{Value: total},
		"note":  &types.AttributeValueMemberNULL{Value: true},
	}
}

func rawItem(pk, sk, sku string, qty string) dynamap.Item {
	return dynamap.Item{
		"pk":  &types.AttributeValueMemberS{Value: pk},
		"sk":  &types.AttributeValueMemberS{Value: sk},
		"sku": &types.AttributeValueMemberS{Value: sku},
		"qty": &types.AttributeValueMemberN{Value: qty},
	}
}

func rawProfile(pk, sk, name string) dynamap.Item {
	return dynamap.Item{
		"pk":   &types.AttributeValueMemberS{Value: pk},
		"sk":   &types.AttributeValueMemberS{Value: sk},
		"name": &types.AttributeValueMemberS{Value: name},
	}
}

func rawShipment(pk, carrier string) dynamap.Item {
	return dynamap.Item{
		"pk":      &types.AttributeValueMemberS{Value: pk},
		"sk":      &types.AttributeValueMemberS{Value: "SHIPMENT"},
		"carrier": &types.AttributeValueMemberS{Value: carrier},
	}
}

//
// Entity contract
//

func TestRoundTrip(t *testing.T) {
	entity := Order{PK: "ORDER#123", SK: "META", Total: 12.5}

	item, err1 := orders.Encode(entity)
	back, err2 := orders.Decode(item)

	it.Ok(t).
		IfNil(err1).
		IfNil(err2).
		If(back).Should().Equal(entity)
}

// explicit null on an optional field survives the round trip
func TestRoundTripNull(t *testing.T) {
	entity := Order{PK: "ORDER#123", SK: "META"}

	item, err1 := orders.Encode(entity)
	back, err2 := orders.Decode(item)

	it.Ok(t).
		IfNil(err1).
		IfNil(err2).
		If(item["note"]).Should().Equal(&types.AttributeValueMemberNULL{Value: true}).
		IfTrue(back.Note == nil)
}

func TestRoundTripOptional(t *testing.T) {
	note := "gift wrap"
	entity := Order{PK: "ORDER#123", SK: "META", Note: &note}

	item, err1 := orders.Encode(entity)
	back, err2 := orders.Decode(item)

	it.Ok(t).
		IfNil(err1).
		IfNil(err2).
		IfTrue(back.Note != nil).
		If(*back.Note).Should().Equal("gift wrap")
}

func TestEncodeMissingKey(t *testing.T) {
	_, err := orders.Encode(Order{SK: "META"})

	var mapping *dynamap.MappingError
	it.Ok(t).
		IfTrue(errors.As(err, &mapping)).
		If(mapping.Type).Should().Equal("Order")
}

func TestDecodeMissingKey(t *testing.T) {
	_, err := orders.Decode(dynamap.Item{
		"sk": &types.AttributeValueMemberS{Value: "META"},
	})

	var missing *dynamap.MissingKeyError
	it.Ok(t).
		IfTrue(errors.As(err, &missing)).
		If(missing.Attr).Should().Equal("pk")
}

// missing non-key attributes are tolerated, sparse projections decode to
// zero values
func TestDecodeSparse(t *testing.T) {
	entity, err := orders.Decode(dynamap.Item{
		"pk": &types.AttributeValueMemberS{Value: "ORDER#123"},
		"sk": &types.AttributeValueMemberS{Value: "META"},
	})

	it.Ok(t).
		IfNil(err).
		If(entity.Total).Should().Equal(0.0)
}

func TestPartitionKey(t *testing.T) {
	key, err := orders.PartitionKey(rawOrder("ORDER#123", "10"))

	it.Ok(t).
		IfNil(err).
		If(key).Should().Equal("ORDER#123")
}

// extraction is verbatim and stable across instances sharing the key
func TestPartitionKeyStability(t *testing.T) {
	a, err1 := orders.Encode(Order{PK: "ORDER#123", SK: "META", Total: 1})
	b, err2 := orders.Encode(Order{PK: "ORDER#123", SK: "META", Total: 99})

	ka, err3 := orders.PartitionKey(a)
	kb, err4 := orders.PartitionKey(b)

	it.Ok(t).
		IfNil(err1).
		IfNil(err2).
		IfNil(err3).
		IfNil(err4).
		If(ka).Should().Equal(kb)
}

func TestPartitionKeyMissing(t *testing.T) {
	_, err := orders.PartitionKey(dynamap.Item{})

	var missing *dynamap.MissingKeyError
	it.Ok(t).IfTrue(errors.As(err, &missing))
}

func TestMatches(t *testing.T) {
	it.Ok(t).
		IfTrue(orders.Matches(rawOrder("ORDER#123", "10"))).
		IfTrue(orders.Matches(rawItem("ORDER#123", "ITEM#001", "sku-1", "1"))).
		IfTrue(orders.Matches(rawProfile("ORDER#123", "PROFILE", "neumann"))).
		IfTrue(shipments.Matches(rawShipment("ORDER#123", "dhl"))).
		IfTrue(!orders.Matches(rawShipment("ORDER#123", "dhl"))).
		IfTrue(!shipments.Matches(rawOrder("ORDER#123", "10")))
}

// types with non-overlapping discriminators never claim each other's items
func TestDiscriminatorConsistency(t *testing.T) {
	order, err1 := orders.Encode(Order{PK: "ORDER#123", SK: "META"})
	shipment, err2 := shipments.Encode(Shipment{PK: "ORDER#123", SK: "SHIPMENT"})

	it.Ok(t).
		IfNil(err1).
		IfNil(err2).
		IfTrue(orders.Matches(order)).
		IfTrue(shipments.Matches(shipment)).
		IfTrue(!orders.Matches(shipment)).
		IfTrue(!shipments.Matches(order))
}

func TestMatchesByAttribute(t *testing.T) {
	tagged := dynamap.Must(dynamap.New(dynamap.Meta[Shipment]{
		Type:          "Tagged",
		PartitionKey:  "pk",
		SortKey:       "sk",
		Discriminator: dynamap.ByAttribute("_type", "Shipment"),
	}))

	item := rawShipment("ORDER#123", "dhl")
	item["_type"] = &types.AttributeValueMemberS{Value: "Shipment"}

	it.Ok(t).
		IfTrue(tagged.Matches(item)).
		IfTrue(!tagged.Matches(rawShipment("ORDER#123", "dhl")))
}

//
// Metadata validation
//

func TestMetaRejectsOverlap(t *testing.T) {
	join := func(*Order, dynamap.Item) error { return nil }

	for _, patterns := range [][]string{
		{"ITEM#*", "ITEM#001"},
		{"ITEM#*", "ITEM#*"},
		{"ITEM#001", "ITEM#001"},
		{"ITEM#00*", "ITEM#*"},
	} {
		_, err := dynamap.New(dynamap.Meta[Order]{
			Type:          "Order",
			PartitionKey:  "pk",
			SortKey:       "sk",
			Discriminator: dynamap.BySortKey("META"),
			Bindings: []dynamap.Binding[Order]{
				{Pattern: patterns[0], Arity: dynamap.Many, Join: join},
				{Pattern: patterns[1], Arity: dynamap.Many, Join: join},
			},
		})

		it.Ok(t).IfTrue(err != nil)
	}
}

func TestMetaRejectsInvalid(t *testing.T) {
	_, err1 := dynamap.New(dynamap.Meta[Order]{PartitionKey: "pk"})
	_, err2 := dynamap.New(dynamap.Meta[Order]{Type: "Order"})
	_, err3 := dynamap.New(dynamap.Meta[Order]{
		Type:         "Order",
		PartitionKey: "pk",
		SortKey:      "sk",
		Bindings: []dynamap.Binding[Order]{
			{Pattern: "ITEM#*", Arity: dynamap.Many},
		},
	})

	it.Ok(t).
		IfTrue(err1 != nil).
		IfTrue(err2 != nil).
		IfTrue(err3 != nil)
}
