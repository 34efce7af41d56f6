//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

//
// The file implements the type-directed value codec between Go values and
// the DynamoDB tagged-union attribute value.
//

package dynamap

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is a flat mapping of attribute name to wire value, one physical
// stored record. An item has no type identity of its own.
type Item = map[string]types.AttributeValue

// Kind enumerates the wire kinds of the DynamoDB attribute value union.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindBinary
	KindMap
	KindList
	KindStringSet
	KindNumberSet
	KindBinarySet
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "S"
	case KindNumber:
		return "N"
	case KindBool:
		return "BOOL"
	case KindBinary:
		return "B"
	case KindMap:
		return "M"
	case KindList:
		return "L"
	case KindStringSet:
		return "SS"
	case KindNumberSet:
		return "NS"
	case KindBinarySet:
		return "BS"
	default:
		return "NULL"
	}
}

// KindOf classifies a wire value into its Kind. A nil value is NULL.
func KindOf(av types.AttributeValue) Kind {
	switch av.(type) {
	case *types.AttributeValueMemberS:
		return KindString
	case *types.AttributeValueMemberN:
		return KindNumber
	case *types.AttributeValueMemberBOOL:
		return KindBool
	case *types.AttributeValueMemberB:
		return KindBinary
	case *types.AttributeValueMemberM:
		return KindMap
	case *types.AttributeValueMemberL:
		return KindList
	case *types.AttributeValueMemberSS:
		return KindStringSet
	case *types.AttributeValueMemberNS:
		return KindNumberSet
	case *types.AttributeValueMemberBS:
		return KindBinarySet
	default:
		return KindNull
	}
}

// EncodeValue converts a Go value to the wire value of the given kind.
//
// The hint is an optional format specifier, applicable only to numeric
// values (fmt verb, e.g. "%.2f") and time values (layout string). A hint
// supplied for any other value is a FormatError, never silently ignored.
// A nil value, or a nil pointer, encodes to the explicit NULL marker
// regardless of the kind.
func EncodeValue(val any, kind Kind, hint string) (types.AttributeValue, error) {
	if val == nil {
		return &types.AttributeValueMemberNULL{Value: true}, nil
	}

	rv := reflect.ValueOf(val)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return &types.AttributeValueMemberNULL{Value: true}, nil
		}
		rv = rv.Elem()
	}
	val = rv.Interface()

	switch kind {
	case KindString:
		return encodeString(val, hint)
	case KindNumber:
		return encodeNumber(val, hint)
	case KindBool:
		if hint != "" {
			return nil, &FormatError{Type: "bool", Hint: hint}
		}
		v, ok := val.(bool)
		if !ok {
			return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", val)}
		}
		return &types.AttributeValueMemberBOOL{Value: v}, nil
	case KindBinary:
		if hint != "" {
			return nil, &FormatError{Type: "binary", Hint: hint}
		}
		v, ok := val.([]byte)
		if !ok {
			return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", val)}
		}
		return &types.AttributeValueMemberB{Value: v}, nil
	case KindMap:
		if hint != "" {
			return nil, &FormatError{Type: "map", Hint: hint}
		}
		gen, err := attributevalue.Marshal(val)
		if err != nil {
			return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", val)}
		}
		if _, ok := gen.(*types.AttributeValueMemberM); !ok {
			return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", val)}
		}
		return gen, nil
	case KindList:
		if hint != "" {
			return nil, &FormatError{Type: "list", Hint: hint}
		}
		gen, err := attributevalue.Marshal(val)
		if err != nil {
			return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", val)}
		}
		if _, ok := gen.(*types.AttributeValueMemberL); !ok {
			return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", val)}
		}
		return gen, nil
	case KindStringSet:
		if hint != "" {
			return nil, &FormatError{Type: "string set", Hint: hint}
		}
		v, ok := val.([]string)
		if !ok {
			return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", val)}
		}
		return &types.AttributeValueMemberSS{Value: v}, nil
	case KindNumberSet:
		if hint != "" {
			return nil, &FormatError{Type: "number set", Hint: hint}
		}
		return encodeNumberSet(val)
	case KindBinarySet:
		if hint != "" {
			return nil, &FormatError{Type: "binary set", Hint: hint}
		}
		v, ok := val.([][]byte)
		if !ok {
			return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", val)}
		}
		return &types.AttributeValueMemberBS{Value: v}, nil
	default:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	}
}

func encodeString(val any, hint string) (types.AttributeValue, error) {
	switch v := val.(type) {
	case time.Time:
		layout := hint
		if layout == "" {
			layout = time.RFC3339
		}
		return &types.AttributeValueMemberS{Value: v.Format(layout)}, nil
	case string:
		if hint != "" {
			return nil, &FormatError{Type: "string", Hint: hint}
		}
		return &types.AttributeValueMemberS{Value: v}, nil
	case encoding.TextMarshaler:
		if hint != "" {
			return nil, &FormatError{Type: fmt.Sprintf("%T", val), Hint: hint}
		}
		text, err := v.MarshalText()
		if err != nil {
			return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", val)}
		}
		return &types.AttributeValueMemberS{Value: string(text)}, nil
	case fmt.Stringer:
		if hint != "" {
			return nil, &FormatError{Type: fmt.Sprintf("%T", val), Hint: hint}
		}
		return &types.AttributeValueMemberS{Value: v.String()}, nil
	}

	// enumerations and other named scalars carry their textual representation
	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.String {
		if hint != "" {
			return nil, &FormatError{Type: fmt.Sprintf("%T", val), Hint: hint}
		}
		return &types.AttributeValueMemberS{Value: rv.String()}, nil
	}

	return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", val)}
}

// encodeNumber emits canonical decimal text, independent of process locale.
func encodeNumber(val any, hint string) (types.AttributeValue, error) {
	if hint != "" {
		text := fmt.Sprintf(hint, val)
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return nil, &FormatError{Type: fmt.Sprintf("%T", val), Hint: hint, err: err}
		}
		return &types.AttributeValueMemberN{Value: text}, nil
	}

	var text string
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		text = strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		text = strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		text = strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		text = strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	default:
		return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", val)}
	}

	return &types.AttributeValueMemberN{Value: text}, nil
}

func encodeNumberSet(val any) (types.AttributeValue, error) {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Slice {
		return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", val)}
	}

	seq := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		gen, err := encodeNumber(rv.Index(i).Interface(), "")
		if err != nil {
			return nil, err
		}
		seq[i] = gen.(*types.AttributeValueMemberN).Value
	}

	return &types.AttributeValueMemberNS{Value: seq}, nil
}

// DecodeValue converts the wire value of the attribute into the Go value
// behind the pointer val. The wire kind is checked against the kind implied
// by the target type; a mismatch is a TypeMismatchError carrying the
// attribute name. The explicit NULL marker decodes to nil for pointer
// targets, distinguishing "absent" from a zero value.
func DecodeValue(attr string, av types.AttributeValue, val any, hint string) error {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &UnsupportedTypeError{Type: fmt.Sprintf("%T", val)}
	}

	if _, isNull := av.(*types.AttributeValueMemberNULL); isNull {
		if rv.Elem().Kind() == reflect.Pointer {
			rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
			return nil
		}
		return &TypeMismatchError{Attr: attr, Expect: kindOfTarget(rv.Elem()), Actual: KindNull}
	}

	// optional target, allocate and decode into the element
	if rv.Elem().Kind() == reflect.Pointer {
		elem := reflect.New(rv.Elem().Type().Elem())
		if err := DecodeValue(attr, av, elem.Interface(), hint); err != nil {
			return err
		}
		rv.Elem().Set(elem)
		return nil
	}

	actual := KindOf(av)

	switch v := rv.Interface().(type) {
	case *time.Time:
		gen, ok := av.(*types.AttributeValueMemberS)
		if !ok {
			return &TypeMismatchError{Attr: attr, Expect: KindString, Actual: actual}
		}
		layout := hint
		if layout == "" {
			layout = time.RFC3339
		}
		t, err := time.Parse(layout, gen.Value)
		if err != nil {
			return &FormatError{Type: "time.Time", Hint: layout, err: err}
		}
		*v = t
		return nil
	case *string:
		if hint != "" {
			return &FormatError{Type: "string", Hint: hint}
		}
		gen, ok := av.(*types.AttributeValueMemberS)
		if !ok {
			return &TypeMismatchError{Attr: attr, Expect: KindString, Actual: actual}
		}
		*v = gen.Value
		return nil
	case *bool:
		if hint != "" {
			return &FormatError{Type: "bool", Hint: hint}
		}
		gen, ok := av.(*types.AttributeValueMemberBOOL)
		if !ok {
			return &TypeMismatchError{Attr: attr, Expect: KindBool, Actual: actual}
		}
		*v = gen.Value
		return nil
	case *[]byte:
		if hint != "" {
			return &FormatError{Type: "binary", Hint: hint}
		}
		gen, ok := av.(*types.AttributeValueMemberB)
		if !ok {
			return &TypeMismatchError{Attr: attr, Expect: KindBinary, Actual: actual}
		}
		*v = gen.Value
		return nil
	case encoding.TextUnmarshaler:
		gen, ok := av.(*types.AttributeValueMemberS)
		if !ok {
			return &TypeMismatchError{Attr: attr, Expect: KindString, Actual: actual}
		}
		if err := v.UnmarshalText([]byte(gen.Value)); err != nil {
			return &FormatError{Type: fmt.Sprintf("%T", val), Hint: hint, err: err}
		}
		return nil
	}

	switch rv.Elem().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		gen, ok := av.(*types.AttributeValueMemberN)
		if !ok {
			return &TypeMismatchError{Attr: attr, Expect: KindNumber, Actual: actual}
		}
		return decodeNumber(rv.Elem(), gen.Value)
	case reflect.String:
		gen, ok := av.(*types.AttributeValueMemberS)
		if !ok {
			return &TypeMismatchError{Attr: attr, Expect: KindString, Actual: actual}
		}
		rv.Elem().SetString(gen.Value)
		return nil
	}

	// structs, maps, slices and sets follow the house marshaler
	switch actual {
	case KindMap, KindList, KindStringSet, KindNumberSet, KindBinarySet:
		if err := attributevalue.Unmarshal(av, val); err != nil {
			return &TypeMismatchError{Attr: attr, Expect: kindOfTarget(rv.Elem()), Actual: actual}
		}
		return nil
	}

	return &TypeMismatchError{Attr: attr, Expect: kindOfTarget(rv.Elem()), Actual: actual}
}

func decodeNumber(rv reflect.Value, text string) error {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return &FormatError{Type: rv.Type().String(), Hint: text, err: err}
		}
		rv.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return &FormatError{Type: rv.Type().String(), Hint: text, err: err}
		}
		rv.SetUint(v)
	default:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return &FormatError{Type: rv.Type().String(), Hint: text, err: err}
		}
		rv.SetFloat(v)
	}
	return nil
}

func kindOfTarget(rv reflect.Value) Kind {
	switch rv.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Map, reflect.Struct:
		return KindMap
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return KindBinary
		}
		return KindList
	default:
		return KindNull
	}
}

// textOf reads the textual carrier of a key attribute, S or N.
func textOf(av types.AttributeValue) (string, bool) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value, true
	case *types.AttributeValueMemberN:
		return v.Value, true
	default:
		return "", false
	}
}
