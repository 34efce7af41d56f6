//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

package schema

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/oproto/dynamap"
)

// Record is a dynamic entity, a mapping of declared field name to value.
// Related entities nest as Record (arity one) or []Record (arity many).
type Record map[string]any

// recordCodec translates Record to and from raw items, one declared field
// at a time. An absent optional encodes as the explicit NULL marker, an
// absent required field is an error.
type recordCodec struct {
	fields []Field
}

func (c recordCodec) Encode(entity Record) (dynamap.Item, error) {
	item := dynamap.Item{}

	for _, f := range c.fields {
		val, has := entity[f.Name]
		if !has || val == nil {
			if !f.Optional {
				return nil, errInvalidRecord.New(fmt.Errorf("missing required field %q", f.Name))
			}
			item[f.Attr] = &types.AttributeValueMemberNULL{Value: true}
			continue
		}

		av, err := dynamap.EncodeValue(val, wireKind(f.Kind), f.Format)
		if err != nil {
			return nil, err
		}
		item[f.Attr] = av
	}

	return item, nil
}

func (c recordCodec) Decode(item dynamap.Item) (Record, error) {
	entity := Record{}

	for _, f := range c.fields {
		av, has := item[f.Attr]
		if !has {
			continue
		}
		if _, isNull := av.(*types.AttributeValueMemberNULL); isNull {
			if f.Optional {
				continue
			}
			return nil, errInvalidRecord.New(fmt.Errorf("required field %q is null", f.Name))
		}

		val, err := decodeField(f, av)
		if err != nil {
			return nil, err
		}
		entity[f.Name] = val
	}

	return entity, nil
}

func decodeField(f Field, av types.AttributeValue) (any, error) {
	switch f.Kind {
	case KindString:
		return valueOf[string](f, av)
	case KindNumber:
		return valueOf[float64](f, av)
	case KindBool:
		return valueOf[bool](f, av)
	case KindTime:
		return valueOf[time.Time](f, av)
	case KindBinary:
		return valueOf[[]byte](f, av)
	case KindMap:
		return valueOf[map[string]any](f, av)
	case KindList:
		return valueOf[[]any](f, av)
	case KindStringSet:
		return valueOf[[]string](f, av)
	case KindNumberSet:
		return valueOf[[]float64](f, av)
	case KindBinarySet:
		return valueOf[[][]byte](f, av)
	default:
		return nil, errInvalidSchema.New(fmt.Errorf("unknown kind %q of field %s", f.Kind, f.Name))
	}
}

func valueOf[A any](f Field, av types.AttributeValue) (any, error) {
	var v A
	if err := dynamap.DecodeValue(f.Attr, av, &v, f.Format); err != nil {
		return nil, err
	}
	return v, nil
}

// wireKind maps the declared field kind to the wire kind. Time is carried
// as a string attribute.
func wireKind(kind string) dynamap.Kind {
	switch kind {
	case KindString, KindTime:
		return dynamap.KindString
	case KindNumber:
		return dynamap.KindNumber
	case KindBool:
		return dynamap.KindBool
	case KindBinary:
		return dynamap.KindBinary
	case KindMap:
		return dynamap.KindMap
	case KindList:
		return dynamap.KindList
	case KindStringSet:
		return dynamap.KindStringSet
	case KindNumberSet:
		return dynamap.KindNumberSet
	case KindBinarySet:
		return dynamap.KindBinarySet
	default:
		return dynamap.KindNull
	}
}
