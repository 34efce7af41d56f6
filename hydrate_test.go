//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

package dynamap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fogfish/it/v2"
	"github.com/oproto/dynamap"
)

// Order ORDER#123: primary META plus two ITEM# rows
func fixtureComposite() []dynamap.Item {
	return []dynamap.Item{
		rawItem("ORDER#123", "ITEM#002", "sku-2", "1"),
		rawOrder("ORDER#123", "10"),
		rawItem("ORDER#123", "ITEM#001", "sku-1", "2"),
	}
}

func TestDecodeManyComposite(t *testing.T) {
	entity, diags, err := orders.DecodeMany(fixtureComposite())

	it.Then(t).Should(
		it.Nil(err),
		it.Equal(len(diags), 0),
		it.Equal(entity.PK, "ORDER#123"),
		it.Equal(len(entity.Items), 2),
		it.Equal(entity.Items[0].SK, "ITEM#001"),
		it.Equal(entity.Items[1].SK, "ITEM#002"),
	)
}

// relation lists come out in ascending sort-key order regardless of the
// input order of the raw items
func TestDecodeManyOrder(t *testing.T) {
	items := []dynamap.Item{
		rawItem("ORDER#123", "ITEM#003", "sku-3", "1"),
		rawItem("ORDER#123", "ITEM#001", "sku-1", "1"),
		rawOrder("ORDER#123", "10"),
		rawItem("ORDER#123", "ITEM#002", "sku-2", "1"),
	}

	entity, _, err := orders.DecodeMany(items)

	it.Then(t).Should(
		it.Nil(err),
		it.Seq([]string{entity.Items[0].SK, entity.Items[1].SK, entity.Items[2].SK}).
			Equal("ITEM#001", "ITEM#002", "ITEM#003"),
	)
}

func TestDecodeManySingleItem(t *testing.T) {
	entity, diags, err := shipments.DecodeMany([]dynamap.Item{
		rawShipment("ORDER#123", "dhl"),
	})

	it.Then(t).Should(
		it.Nil(err),
		it.Equal(len(diags), 0),
		it.Equal(entity.Carrier, "dhl"),
	)
}

// foreign shapes sharing the partition key are silently excluded
func TestDecodeManyHeterogeneous(t *testing.T) {
	items := append(fixtureComposite(), rawShipment("ORDER#123", "dhl"))

	entity, _, err1 := orders.DecodeMany(items)
	shipment, _, err2 := shipments.DecodeMany(items)

	it.Then(t).Should(
		it.Nil(err1),
		it.Nil(err2),
		it.Equal(len(entity.Items), 2),
		it.Equal(shipment.Carrier, "dhl"),
	)
}

// zero matches of a binding is never an error
func TestDecodeManyEmptyRelation(t *testing.T) {
	entity, diags, err := orders.DecodeMany([]dynamap.Item{
		rawOrder("ORDER#123", "10"),
	})

	it.Then(t).Should(
		it.Nil(err),
		it.Equal(len(diags), 0),
		it.Equal(len(entity.Items), 0),
	)
}

// two items matching a single-arity pattern: the lexicographically smallest
// sort key wins, deterministically, with exactly one diagnostic per call
func TestDecodeManyTieBreak(t *testing.T) {
	items := []dynamap.Item{
		rawOrder("ORDER#123", "10"),
		rawProfile("ORDER#123", "PROFILE#B", "kleinrock"),
		rawProfile("ORDER#123", "PROFILE#A", "neumann"),
	}

	for i := 0; i < 3; i++ {
		entity, diags, err := orders.DecodeMany(items)

		it.Then(t).Should(
			it.Nil(err),
			it.Equal(len(diags), 1),
			it.Equal(diags[0].Pattern, "PROFILE*"),
			it.Equal(diags[0].Chosen, "PROFILE#A"),
			it.Seq(diags[0].SortKeys).Equal("PROFILE#A", "PROFILE#B"),
			it.Equal(entity.Profile.Name, "neumann"),
		)
	}
}

func TestDecodeManyNoPrimary(t *testing.T) {
	_, _, err := orders.DecodeMany([]dynamap.Item{
		rawItem("ORDER#123", "ITEM#001", "sku-1", "1"),
	})

	var mapping *dynamap.MappingError
	it.Then(t).Should(
		it.True(errors.As(err, &mapping)),
		it.Equal(mapping.Type, "Order"),
	)
}

func TestDecodeManyManyPrimary(t *testing.T) {
	_, _, err := orders.DecodeMany([]dynamap.Item{
		rawOrder("ORDER#123", "10"),
		rawOrder("ORDER#123", "20"),
	})

	it.Then(t).ShouldNot(it.Nil(err))
}

func TestDecodeManySpansGroups(t *testing.T) {
	_, _, err := orders.DecodeMany([]dynamap.Item{
		rawOrder("ORDER#123", "10"),
		rawOrder("ORDER#456", "20"),
	})

	it.Then(t).ShouldNot(it.Nil(err))
}

func TestDecodeManyNoMatch(t *testing.T) {
	_, _, err := orders.DecodeMany([]dynamap.Item{
		rawShipment("ORDER#123", "dhl"),
	})

	it.Then(t).ShouldNot(it.Nil(err))
}

//
// Bulk hydration
//

func fixtureBulk() []dynamap.Item {
	return []dynamap.Item{
		rawOrder("ORDER#123", "10"),
		rawItem("ORDER#123", "ITEM#001", "sku-1", "1"),
		rawItem("ORDER#123", "ITEM#002", "sku-2", "1"),
		rawShipment("ORDER#123", "dhl"),
		rawOrder("ORDER#456", "20"),
		rawItem("ORDER#456", "ITEM#001", "sku-9", "3"),
		rawOrder("ORDER#789", "30"),
	}
}

func TestHydrate(t *testing.T) {
	seq, err := dynamap.Hydrate(context.Background(), orders, fixtureBulk())

	it.Then(t).Should(
		it.Nil(err),
		it.Equal(len(seq), 3),
		it.Equal(seq[0].Key, "ORDER#123"),
		it.Equal(seq[1].Key, "ORDER#456"),
		it.Equal(seq[2].Key, "ORDER#789"),
		it.Nil(seq[0].Err),
		it.Nil(seq[1].Err),
		it.Nil(seq[2].Err),
		it.Equal(len(seq[0].Entity.Items), 2),
		it.Equal(len(seq[1].Entity.Items), 1),
		it.Equal(len(seq[2].Entity.Items), 0),
	)
}

// first-seen group order is preserved regardless of completion order
func TestHydrateParallel(t *testing.T) {
	seq, err := dynamap.Hydrate(context.Background(), orders, fixtureBulk(),
		dynamap.WithParallel(4),
	)

	it.Then(t).Should(
		it.Nil(err),
		it.Equal(len(seq), 3),
		it.Equal(seq[0].Key, "ORDER#123"),
		it.Equal(seq[1].Key, "ORDER#456"),
		it.Equal(seq[2].Key, "ORDER#789"),
		it.Equal(seq[0].Entity.Items[0].SK, "ITEM#001"),
	)
}

// one group failing to decode does not abort its siblings
func TestHydrateGroupIndependence(t *testing.T) {
	items := fixtureBulk()
	// second META row poisons the ORDER#456 group only
	items = append(items, rawOrder("ORDER#456", "99"))

	seq, err := dynamap.Hydrate(context.Background(), orders, items)

	it.Then(t).Should(
		it.Nil(err),
		it.Equal(len(seq), 3),
		it.Nil(seq[0].Err),
		it.Nil(seq[2].Err),
	)
	it.Then(t).ShouldNot(
		it.Nil(seq[1].Err),
	)
}

// an item passing the type filter with an unreadable partition key is
// excluded from the batch, leaving sibling groups intact
func TestHydrateUnkeyedItem(t *testing.T) {
	items := append(fixtureBulk(),
		dynamap.Item{
			"pk": &types.AttributeValueMemberBOOL{Value: true},
			"sk": &types.AttributeValueMemberS{Value: "META"},
		},
		dynamap.Item{
			"sk": &types.AttributeValueMemberS{Value: "META"},
		},
	)

	seq, err := dynamap.Hydrate(context.Background(), orders, items)

	it.Then(t).Should(
		it.Nil(err),
		it.Equal(len(seq), 3),
		it.Nil(seq[0].Err),
		it.Nil(seq[1].Err),
		it.Nil(seq[2].Err),
	)
}

// the single-entity decode keeps rejecting unreadable partition keys
func TestDecodeManyUnkeyedItem(t *testing.T) {
	_, _, err := orders.DecodeMany([]dynamap.Item{
		{
			"pk": &types.AttributeValueMemberBOOL{Value: true},
			"sk": &types.AttributeValueMemberS{Value: "META"},
		},
	})

	var missing *dynamap.MissingKeyError
	it.Then(t).Should(
		it.True(errors.As(err, &missing)),
		it.Equal(missing.Attr, "pk"),
	)
}

// a canceled decode fails with the cancellation condition, distinguishable
// from a mapping failure
func TestHydrateCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seq, err := dynamap.Hydrate(ctx, orders, fixtureBulk())

	it.Then(t).Should(
		it.True(errors.Is(err, context.Canceled)),
	)
	for _, h := range seq {
		var mapping *dynamap.MappingError
		it.Then(t).Should(
			it.True(errors.Is(h.Err, context.Canceled)),
			it.True(!errors.As(h.Err, &mapping)),
		)
	}
}

func TestHydrateEmpty(t *testing.T) {
	seq, err := dynamap.Hydrate(context.Background(), orders, nil)

	it.Then(t).Should(
		it.Nil(err),
		it.Equal(len(seq), 0),
	)
}

// mixing shapes: each type's filter retains exactly its own rows
func TestHydrateHeterogeneousTable(t *testing.T) {
	items := []dynamap.Item{
		rawOrder("ORDER#123", "10"),
		rawShipment("ORDER#123", "dhl"),
	}

	ord, err1 := dynamap.Hydrate(context.Background(), orders, items)
	shp, err2 := dynamap.Hydrate(context.Background(), shipments, items)

	it.Then(t).Should(
		it.Nil(err1),
		it.Nil(err2),
		it.Equal(len(ord), 1),
		it.Equal(len(shp), 1),
		it.Equal(ord[0].Entity.SK, "META"),
		it.Equal(shp[0].Entity.Carrier, "dhl"),
	)
}

// numeric partition keys group by canonical text
func TestHydrateNumericKey(t *testing.T) {
	numeric := dynamap.Must(dynamap.New(dynamap.Meta[Shipment]{
		Type:          "NumericShipment",
		PartitionKey:  "pk",
		SortKey:       "sk",
		Discriminator: dynamap.BySortKey("SHIPMENT"),
	}))

	seq, err := dynamap.Hydrate(context.Background(), numeric, []dynamap.Item{
		{
			"pk": &types.AttributeValueMemberN{Value: "42"},
			"sk": &types.AttributeValueMemberS{Value: "SHIPMENT"},
		},
	})

	it.Then(t).Should(
		it.Nil(err),
		it.Equal(len(seq), 1),
		it.Equal(seq[0].Key, "42"),
	)
}
