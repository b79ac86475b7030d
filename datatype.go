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

	"github.com/apache/arrow/go/v17/arrow"
)

// DataType is the logical type of a column. The numeric values are part of the
// C ABI and must not change.
type DataType int32

const (
	DataTypeBoolean              DataType = 0
	DataTypeInt8                 DataType = 1
	DataTypeInt16                DataType = 2
	DataTypeInt32                DataType = 3
	DataTypeInt64                DataType = 4
	DataTypeUint8                DataType = 5
	DataTypeUint16               DataType = 6
	DataTypeUint32               DataType = 7
	DataTypeUint64               DataType = 8
	DataTypeFloat32              DataType = 9
	DataTypeFloat64              DataType = 10
	DataTypeBinary               DataType = 11
	DataTypeString               DataType = 12
	DataTypeDate                 DataType = 13
	DataTypeDatetime             DataType = 14
	DataTypeTimestampSecond      DataType = 15
	DataTypeTimestampMillisecond DataType = 16
	DataTypeTimestampMicrosecond DataType = 17
	DataTypeTimestampNanosecond  DataType = 18
)

var dataTypeNames = map[DataType]string{
	DataTypeBoolean:              "Boolean",
	DataTypeInt8:                 "Int8",
	DataTypeInt16:                "Int16",
	DataTypeInt32:                "Int32",
	DataTypeInt64:                "Int64",
	DataTypeUint8:                "Uint8",
	DataTypeUint16:               "Uint16",
	DataTypeUint32:               "Uint32",
	DataTypeUint64:               "Uint64",
	DataTypeFloat32:              "Float32",
	DataTypeFloat64:              "Float64",
	DataTypeBinary:               "Binary",
	DataTypeString:               "String",
	DataTypeDate:                 "Date",
	DataTypeDatetime:             "Datetime",
	DataTypeTimestampSecond:      "TimestampSecond",
	DataTypeTimestampMillisecond: "TimestampMillisecond",
	DataTypeTimestampMicrosecond: "TimestampMicrosecond",
	DataTypeTimestampNanosecond:  "TimestampNanosecond",
}

// Valid reports whether t is a known data type.
func (t DataType) Valid() bool {
	_, ok := dataTypeNames[t]
	return ok
}

func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int32(t))
}

// arrowType returns the Arrow type backing a column of this data type.
func (t DataType) arrowType() arrow.DataType {
	switch t {
	case DataTypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	case DataTypeInt8:
		return arrow.PrimitiveTypes.Int8
	case DataTypeInt16:
		return arrow.PrimitiveTypes.Int16
	case DataTypeInt32:
		return arrow.PrimitiveTypes.Int32
	case DataTypeInt64:
		return arrow.PrimitiveTypes.Int64
	case DataTypeUint8:
		return arrow.PrimitiveTypes.Uint8
	case DataTypeUint16:
		return arrow.PrimitiveTypes.Uint16
	case DataTypeUint32:
		return arrow.PrimitiveTypes.Uint32
	case DataTypeUint64:
		return arrow.PrimitiveTypes.Uint64
	case DataTypeFloat32:
		return arrow.PrimitiveTypes.Float32
	case DataTypeFloat64:
		return arrow.PrimitiveTypes.Float64
	case DataTypeBinary:
		return arrow.BinaryTypes.Binary
	case DataTypeString:
		return arrow.BinaryTypes.String
	case DataTypeDate:
		return arrow.FixedWidthTypes.Date32
	case DataTypeDatetime:
		return arrow.FixedWidthTypes.Date64
	case DataTypeTimestampSecond:
		return arrow.FixedWidthTypes.Timestamp_s
	case DataTypeTimestampMillisecond:
		return arrow.FixedWidthTypes.Timestamp_ms
	case DataTypeTimestampMicrosecond:
		return arrow.FixedWidthTypes.Timestamp_us
	case DataTypeTimestampNanosecond:
		return arrow.FixedWidthTypes.Timestamp_ns
	default:
		return arrow.Null
	}
}

// supported reports whether rows may carry values of this type.
//
// Binary, Date and Datetime columns can be declared but not filled: the value
// union has no member able to carry them.
func (t DataType) supported() bool {
	switch t {
	case DataTypeBinary, DataTypeDate, DataTypeDatetime:
		return false
	default:
		return t.Valid()
	}
}

// SemanticType is the role of a column in the target table.
type SemanticType int32

const (
	SemanticTypeTag       SemanticType = 0
	SemanticTypeField     SemanticType = 1
	SemanticTypeTimestamp SemanticType = 2
)

// Valid reports whether t is a known semantic type.
func (t SemanticType) Valid() bool {
	switch t {
	case SemanticTypeTag, SemanticTypeField, SemanticTypeTimestamp:
		return true
	default:
		return false
	}
}

func (t SemanticType) String() string {
	switch t {
	case SemanticTypeTag:
		return "TAG"
	case SemanticTypeField:
		return "FIELD"
	case SemanticTypeTimestamp:
		return "TIMESTAMP"
	default:
		return fmt.Sprintf("SemanticType(%d)", int32(t))
	}
}

// ColumnDef declares one column of a RowBuilder. It is immutable once defined.
type ColumnDef struct {
	Name         string
	DataType     DataType
	SemanticType SemanticType
}

// semanticTypeKey is the Arrow field metadata key carrying the semantic type.
const semanticTypeKey = "semantic_type"

func (c ColumnDef) arrowField() arrow.Field {
	return arrow.Field{
		Name:     c.Name,
		Type:     c.DataType.arrowType(),
		Nullable: false,
		Metadata: arrow.NewMetadata([]string{semanticTypeKey}, []string{c.SemanticType.String()}),
	}
}
