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
	"runtime"
	"testing"
	"unsafe"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	"github.com/tsingest/tsingest-go/internal/marshal"
)

func newMetricBuilder(t *testing.T) *RowBuilder {
	b := NewRowBuilder("metrics")
	require.NoError(t, b.DefineColumn("ts", DataTypeInt64, SemanticTypeTimestamp))
	require.NoError(t, b.DefineColumn("v", DataTypeFloat64, SemanticTypeField))
	return b
}

func TestRowBuilderDrainSingleRow(t *testing.T) {
	b := newMetricBuilder(t)
	defer b.Release()

	require.NoError(t, b.AppendRawRow([]RawValue{RawInt64(1690000000000), RawFloat64(3.14)}))
	require.Equal(t, 1, b.RowCount())

	batch := b.Drain()
	defer batch.Release()

	require.Equal(t, "metrics", batch.Table)
	require.Equal(t, 1, batch.RowCount())
	require.Equal(t, []ColumnDef{
		{Name: "ts", DataType: DataTypeInt64, SemanticType: SemanticTypeTimestamp},
		{Name: "v", DataType: DataTypeFloat64, SemanticType: SemanticTypeField},
	}, batch.Columns)
	require.Equal(t, []int64{1690000000000}, batch.Record.Column(0).(*array.Int64).Int64Values())
	require.Equal(t, []float64{3.14}, batch.Record.Column(1).(*array.Float64).Float64Values())

	field := batch.Record.Schema().Field(0)
	sem, ok := field.Metadata.GetValue(semanticTypeKey)
	require.True(t, ok)
	require.Equal(t, "TIMESTAMP", sem)

	require.Equal(t, 0, b.RowCount())
}

func TestRowBuilderSchemaMismatch(t *testing.T) {
	b := newMetricBuilder(t)
	defer b.Release()

	err := b.AppendRawRow([]RawValue{RawInt64(1)})
	var mismatch *SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, SchemaMismatchError{ValueLen: 1, SchemaLen: 2}, *mismatch)
	require.Equal(t, 0, b.RowCount())

	err = b.AppendRow(Int64Value(1), Float64Value(1), Float64Value(2))
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, SchemaMismatchError{ValueLen: 3, SchemaLen: 2}, *mismatch)
	require.Equal(t, 0, b.RowCount())
}

func TestRowBuilderDrainTwice(t *testing.T) {
	b := newMetricBuilder(t)
	defer b.Release()

	require.NoError(t, b.AppendRow(Int64Value(1), Float64Value(0.5)))
	first := b.Drain()
	defer first.Release()
	require.Equal(t, 1, first.RowCount())

	second := b.Drain()
	defer second.Release()
	require.Equal(t, 0, second.RowCount())
	require.Equal(t, first.Columns, second.Columns)
	require.EqualValues(t, 2, second.Record.NumCols())
	require.NotEqual(t, first.ID, second.ID)

	require.NoError(t, b.AppendRow(Int64Value(2), Float64Value(1.5)))
	third := b.Drain()
	defer third.Release()
	require.Equal(t, []int64{2}, third.Record.Column(0).(*array.Int64).Int64Values())
}

func TestRowBuilderInvalidColumnDefinition(t *testing.T) {
	b := NewRowBuilder("metrics")
	defer b.Release()

	var invalid *InvalidColumnDefinitionError
	require.ErrorAs(t, b.DefineColumn("ts", DataType(19), SemanticTypeTimestamp), &invalid)
	require.ErrorAs(t, b.DefineColumn("ts", DataTypeInt64, SemanticType(3)), &invalid)
	require.ErrorAs(t, b.DefineColumn("ts", DataType(-1), SemanticType(-1)), &invalid)
	require.Empty(t, b.Columns())
}

func TestRowBuilderDuplicateNames(t *testing.T) {
	b := NewRowBuilder("metrics")
	defer b.Release()

	require.NoError(t, b.DefineColumn("v", DataTypeInt32, SemanticTypeField))
	require.NoError(t, b.DefineColumn("v", DataTypeInt32, SemanticTypeField))
	require.NoError(t, b.AppendRow(Int32Value(1), Int32Value(2)))
	require.Len(t, b.Columns(), 2)
}

func TestRowBuilderUnsupportedDataType(t *testing.T) {
	for _, typ := range []DataType{DataTypeBinary, DataTypeDate, DataTypeDatetime} {
		b := NewRowBuilder("metrics")
		require.NoError(t, b.DefineColumn("ts", DataTypeInt64, SemanticTypeTimestamp))
		require.NoError(t, b.DefineColumn("blob", typ, SemanticTypeField))

		var unsupported *UnsupportedDataTypeError
		require.ErrorAs(t, b.AppendRawRow([]RawValue{RawInt64(1), RawInt64(2)}), &unsupported)
		require.ErrorAs(t, b.AppendRow(Int64Value(1), Int64Value(2)), &unsupported)
		require.Equal(t, typ, unsupported.DataType)
		require.Equal(t, 0, b.RowCount())
		b.Release()
	}
}

func TestRowBuilderFailedAppendLeavesStateUnchanged(t *testing.T) {
	b := NewRowBuilder("logs")
	defer b.Release()
	require.NoError(t, b.DefineColumn("ts", DataTypeTimestampMillisecond, SemanticTypeTimestamp))
	require.NoError(t, b.DefineColumn("host", DataTypeString, SemanticTypeTag))

	host := []byte("db-1\x00")
	require.NoError(t, b.AppendRawRow([]RawValue{RawInt64(1), RawString(unsafe.Pointer(&host[0]))}))

	bad := []byte{'d', 0xc3, 0x28, 0x00}
	err := b.AppendRawRow([]RawValue{RawInt64(2), RawString(unsafe.Pointer(&bad[0]))})
	require.ErrorIs(t, err, marshal.ErrInvalidEncoding)
	err = b.AppendRawRow([]RawValue{RawInt64(3), RawString(nil)})
	require.ErrorIs(t, err, marshal.ErrNullPointer)
	runtime.KeepAlive(host)
	runtime.KeepAlive(bad)

	var mismatch *TypeMismatchError
	require.ErrorAs(t, b.AppendRow(TimestampMillisecondValue(4), Int64Value(4)), &mismatch)
	require.Equal(t, "host", mismatch.Column)

	require.Equal(t, 1, b.RowCount())
	batch := b.Drain()
	defer batch.Release()
	require.Equal(t, []arrow.Timestamp{1}, batch.Record.Column(0).(*array.Timestamp).TimestampValues())
	require.Equal(t, "db-1", batch.Record.Column(1).(*array.String).Value(0))
	require.Equal(t, 1, batch.Record.Column(1).Len())
}

func TestRowBuilderDefineColumnAfterRows(t *testing.T) {
	b := NewRowBuilder("metrics")
	defer b.Release()
	require.NoError(t, b.DefineColumn("ts", DataTypeInt64, SemanticTypeTimestamp))
	require.NoError(t, b.AppendRow(Int64Value(1)))
	require.NoError(t, b.DefineColumn("v", DataTypeUint8, SemanticTypeField))
	require.NoError(t, b.AppendRow(Int64Value(2), Uint8Value(9)))

	batch := b.Drain()
	defer batch.Release()
	require.Equal(t, 2, batch.RowCount())
	require.Equal(t, []uint8{0, 9}, batch.Record.Column(1).(*array.Uint8).Uint8Values())
}

func TestRowBuilderColumnsStayInLockstep(t *testing.T) {
	faker := gofakeit.New(42)
	types := []DataType{
		DataTypeBoolean, DataTypeInt8, DataTypeInt16, DataTypeInt32, DataTypeInt64,
		DataTypeUint8, DataTypeUint16, DataTypeUint32, DataTypeUint64,
		DataTypeFloat32, DataTypeFloat64, DataTypeString,
		DataTypeTimestampSecond, DataTypeTimestampMillisecond,
		DataTypeTimestampMicrosecond, DataTypeTimestampNanosecond,
	}

	for round := 0; round < 20; round++ {
		b := NewRowBuilder(faker.Word())
		ncols := faker.IntRange(1, 8)
		defs := make([]DataType, ncols)
		for i := range defs {
			defs[i] = types[faker.IntRange(0, len(types)-1)]
			require.NoError(t, b.DefineColumn(faker.Word(), defs[i], SemanticType(faker.IntRange(0, 2))))
		}

		nrows := faker.IntRange(0, 64)
		for r := 0; r < nrows; r++ {
			row := make([]Value, ncols)
			for i, typ := range defs {
				row[i] = fakeValue(faker, typ)
			}
			require.NoError(t, b.AppendRow(row...))
			require.Equal(t, r+1, b.RowCount())

			require.Error(t, b.AppendRow(row[:ncols-1]...))
			require.Equal(t, r+1, b.RowCount())
		}

		batch := b.Drain()
		require.Equal(t, nrows, batch.RowCount())
		for i := 0; i < ncols; i++ {
			require.Equal(t, nrows, batch.Record.Column(i).Len())
		}
		batch.Release()
		b.Release()
	}
}

func fakeValue(faker *gofakeit.Faker, typ DataType) Value {
	switch typ {
	case DataTypeBoolean:
		return BoolValue(faker.Bool())
	case DataTypeInt8:
		return Int8Value(faker.Int8())
	case DataTypeInt16:
		return Int16Value(faker.Int16())
	case DataTypeInt32:
		return Int32Value(faker.Int32())
	case DataTypeInt64:
		return Int64Value(faker.Int64())
	case DataTypeUint8:
		return Uint8Value(faker.Uint8())
	case DataTypeUint16:
		return Uint16Value(faker.Uint16())
	case DataTypeUint32:
		return Uint32Value(faker.Uint32())
	case DataTypeUint64:
		return Uint64Value(faker.Uint64())
	case DataTypeFloat32:
		return Float32Value(faker.Float32())
	case DataTypeFloat64:
		return Float64Value(faker.Float64())
	case DataTypeString:
		return StringValue(faker.Word())
	case DataTypeTimestampSecond:
		return TimestampSecondValue(faker.Date().Unix())
	case DataTypeTimestampMillisecond:
		return TimestampMillisecondValue(faker.Date().UnixMilli())
	case DataTypeTimestampMicrosecond:
		return TimestampMicrosecondValue(faker.Date().UnixMicro())
	default:
		return TimestampNanosecondValue(faker.Date().UnixNano())
	}
}
