/*
 * Copyright 2024 The tsingest Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tsingest

import (
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/tsingest/tsingest-go/internal/marshal"
)

// Value is a single typed cell of a row.
type Value struct {
	typ DataType
	i   int64
	u   uint64
	f   float64
	s   string
}

// Type returns the data type the value was built for.
func (v Value) Type() DataType {
	return v.typ
}

func BoolValue(v bool) Value {
	var i int64
	if v {
		i = 1
	}
	return Value{typ: DataTypeBoolean, i: i}
}

func Int8Value(v int8) Value   { return Value{typ: DataTypeInt8, i: int64(v)} }
func Int16Value(v int16) Value { return Value{typ: DataTypeInt16, i: int64(v)} }
func Int32Value(v int32) Value { return Value{typ: DataTypeInt32, i: int64(v)} }
func Int64Value(v int64) Value { return Value{typ: DataTypeInt64, i: v} }

func Uint8Value(v uint8) Value   { return Value{typ: DataTypeUint8, u: uint64(v)} }
func Uint16Value(v uint16) Value { return Value{typ: DataTypeUint16, u: uint64(v)} }
func Uint32Value(v uint32) Value { return Value{typ: DataTypeUint32, u: uint64(v)} }
func Uint64Value(v uint64) Value { return Value{typ: DataTypeUint64, u: v} }

func Float32Value(v float32) Value { return Value{typ: DataTypeFloat32, f: float64(v)} }
func Float64Value(v float64) Value { return Value{typ: DataTypeFloat64, f: v} }

func StringValue(v string) Value { return Value{typ: DataTypeString, s: v} }

// Timestamp values are counted from the Unix epoch in the unit of their type.
func TimestampSecondValue(v int64) Value {
	return Value{typ: DataTypeTimestampSecond, i: v}
}

func TimestampMillisecondValue(v int64) Value {
	return Value{typ: DataTypeTimestampMillisecond, i: v}
}

func TimestampMicrosecondValue(v int64) Value {
	return Value{typ: DataTypeTimestampMicrosecond, i: v}
}

func TimestampNanosecondValue(v int64) Value {
	return Value{typ: DataTypeTimestampNanosecond, i: v}
}

func (v Value) String() string {
	switch v.typ {
	case DataTypeBoolean:
		return fmt.Sprintf("%s(%t)", v.typ, v.i != 0)
	case DataTypeUint8, DataTypeUint16, DataTypeUint32, DataTypeUint64:
		return fmt.Sprintf("%s(%d)", v.typ, v.u)
	case DataTypeFloat32, DataTypeFloat64:
		return fmt.Sprintf("%s(%g)", v.typ, v.f)
	case DataTypeString:
		return fmt.Sprintf("%s(%q)", v.typ, v.s)
	default:
		return fmt.Sprintf("%s(%d)", v.typ, v.i)
	}
}

// RawValue mirrors the C value union: eight bytes holding exactly one member.
// It carries no discriminant; the declared column type selects the member.
type RawValue struct {
	bits uint64
}

type rawMember interface {
	constraints.Integer | constraints.Float
}

// Every union member starts at offset zero.
func rawLoad[T rawMember](r RawValue) T {
	return *(*T)(unsafe.Pointer(&r.bits))
}

func rawStore[T rawMember](v T) RawValue {
	var r RawValue
	*(*T)(unsafe.Pointer(&r.bits)) = v
	return r
}

func RawBool(v bool) RawValue {
	if v {
		return rawStore[uint8](1)
	}
	return rawStore[uint8](0)
}

func RawInt8(v int8) RawValue       { return rawStore(v) }
func RawInt16(v int16) RawValue     { return rawStore(v) }
func RawInt32(v int32) RawValue     { return rawStore(v) }
func RawInt64(v int64) RawValue     { return rawStore(v) }
func RawUint8(v uint8) RawValue     { return rawStore(v) }
func RawUint16(v uint16) RawValue   { return rawStore(v) }
func RawUint32(v uint32) RawValue   { return rawStore(v) }
func RawUint64(v uint64) RawValue   { return rawStore(v) }
func RawFloat32(v float32) RawValue { return rawStore(v) }
func RawFloat64(v float64) RawValue { return rawStore(v) }

// RawString stores a pointer to a NUL-terminated string. The caller keeps the
// memory alive until the row has been appended.
func RawString(p unsafe.Pointer) RawValue {
	var r RawValue
	*(*unsafe.Pointer)(unsafe.Pointer(&r.bits)) = p
	return r
}

func (r RawValue) pointer() unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&r.bits))
}

// decode reads the member selected by t and copies it into a Value.
func (r RawValue) decode(t DataType) (Value, error) {
	switch t {
	case DataTypeBoolean:
		return BoolValue(rawLoad[uint8](r) != 0), nil
	case DataTypeInt8:
		return Int8Value(rawLoad[int8](r)), nil
	case DataTypeInt16:
		return Int16Value(rawLoad[int16](r)), nil
	case DataTypeInt32:
		return Int32Value(rawLoad[int32](r)), nil
	case DataTypeInt64:
		return Int64Value(rawLoad[int64](r)), nil
	case DataTypeUint8:
		return Uint8Value(rawLoad[uint8](r)), nil
	case DataTypeUint16:
		return Uint16Value(rawLoad[uint16](r)), nil
	case DataTypeUint32:
		return Uint32Value(rawLoad[uint32](r)), nil
	case DataTypeUint64:
		return Uint64Value(rawLoad[uint64](r)), nil
	case DataTypeFloat32:
		return Float32Value(math.Float32frombits(rawLoad[uint32](r))), nil
	case DataTypeFloat64:
		return Float64Value(math.Float64frombits(r.bits)), nil
	case DataTypeString:
		s, err := marshal.ToString(r.pointer())
		if err != nil {
			return Value{}, fmt.Errorf("decode string value: %w", err)
		}
		return StringValue(s), nil
	case DataTypeTimestampSecond:
		return TimestampSecondValue(rawLoad[int64](r)), nil
	case DataTypeTimestampMillisecond:
		return TimestampMillisecondValue(rawLoad[int64](r)), nil
	case DataTypeTimestampMicrosecond:
		return TimestampMicrosecondValue(rawLoad[int64](r)), nil
	case DataTypeTimestampNanosecond:
		return TimestampNanosecondValue(rawLoad[int64](r)), nil
	default:
		return Value{}, &UnsupportedDataTypeError{DataType: t}
	}
}
