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
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type column struct {
	def     ColumnDef
	builder array.Builder
}

// RowBuilder accumulates rows for one table column by column.
//
// A RowBuilder is not safe for concurrent use. Every column holds exactly
// RowCount values at all times.
type RowBuilder struct {
	table   string
	columns []*column
	rows    int

	mem    memory.Allocator
	logger zerolog.Logger
}

// NewRowBuilder returns an empty builder for rows of the given table.
func NewRowBuilder(table string) *RowBuilder {
	return &RowBuilder{
		table:  table,
		mem:    memory.DefaultAllocator,
		logger: zerolog.Nop(),
	}
}

// SetLogger sets the logger used to trace column definitions and appends.
func (b *RowBuilder) SetLogger(logger zerolog.Logger) {
	b.logger = logger.With().Str("table", b.table).Logger()
}

func (b *RowBuilder) TableName() string {
	return b.table
}

// Columns returns a copy of the declared columns in declaration order.
func (b *RowBuilder) Columns() []ColumnDef {
	defs := make([]ColumnDef, len(b.columns))
	for i, c := range b.columns {
		defs[i] = c.def
	}
	return defs
}

// RowCount returns the number of rows appended since the last Drain.
func (b *RowBuilder) RowCount() int {
	return b.rows
}

// DefineColumn appends a column to the schema. Names are not checked for
// uniqueness.
//
// Defining a column after rows have been appended pads it with zero values so
// the columns stay aligned.
func (b *RowBuilder) DefineColumn(name string, dataType DataType, semanticType SemanticType) error {
	if !dataType.Valid() || !semanticType.Valid() {
		return &InvalidColumnDefinitionError{Name: name, DataType: dataType, SemanticType: semanticType}
	}

	def := ColumnDef{Name: name, DataType: dataType, SemanticType: semanticType}
	bld := array.NewBuilder(b.mem, dataType.arrowType())
	bld.AppendEmptyValues(b.rows)
	b.columns = append(b.columns, &column{def: def, builder: bld})

	b.logger.Info().
		Str("column", name).
		Stringer("data_type", dataType).
		Stringer("semantic_type", semanticType).
		Msg("column defined")
	return nil
}

// AppendRow appends one row of typed values, one per column in declaration
// order. On error the builder is left unchanged.
func (b *RowBuilder) AppendRow(values ...Value) error {
	if len(values) != len(b.columns) {
		return &SchemaMismatchError{ValueLen: len(values), SchemaLen: len(b.columns)}
	}
	for i, c := range b.columns {
		if !c.def.DataType.supported() {
			return &UnsupportedDataTypeError{DataType: c.def.DataType}
		}
		if values[i].typ != c.def.DataType {
			return &TypeMismatchError{Column: c.def.Name, Want: c.def.DataType, Got: values[i].typ}
		}
	}
	b.commit(values)
	return nil
}

// AppendRawRow appends one row of untagged values. Each value is read as the
// member selected by its column's data type. On error the builder is left
// unchanged.
func (b *RowBuilder) AppendRawRow(values []RawValue) error {
	if len(values) != len(b.columns) {
		return &SchemaMismatchError{ValueLen: len(values), SchemaLen: len(b.columns)}
	}
	decoded := make([]Value, len(values))
	for i, c := range b.columns {
		v, err := values[i].decode(c.def.DataType)
		if err != nil {
			return err
		}
		decoded[i] = v
	}
	b.commit(decoded)
	return nil
}

func (b *RowBuilder) commit(values []Value) {
	for i, c := range b.columns {
		appendValue(c.builder, values[i])
	}
	b.rows++
	b.logger.Debug().Int("rows", b.rows).Msg("row appended")
}

// Drain moves the accumulated rows into a new Batch and resets the row count.
// Column definitions are kept, so the builder can go on with the same schema.
func (b *RowBuilder) Drain() *Batch {
	fields := make([]arrow.Field, len(b.columns))
	arrays := make([]arrow.Array, len(b.columns))
	for i, c := range b.columns {
		fields[i] = c.def.arrowField()
		arrays[i] = c.builder.NewArray()
	}

	schema := arrow.NewSchema(fields, nil)
	record := array.NewRecord(schema, arrays, int64(b.rows))
	for _, arr := range arrays {
		arr.Release()
	}

	b.rows = 0
	return &Batch{
		ID:      uuid.New(),
		Table:   b.table,
		Columns: b.Columns(),
		Record:  record,
	}
}

// Release frees the column buffers. The builder must not be used afterwards.
func (b *RowBuilder) Release() {
	for _, c := range b.columns {
		c.builder.Release()
	}
	b.columns = nil
	b.rows = 0
}

func appendValue(bld array.Builder, v Value) {
	switch bld := bld.(type) {
	case *array.BooleanBuilder:
		bld.Append(v.i != 0)
	case *array.Int8Builder:
		bld.Append(int8(v.i))
	case *array.Int16Builder:
		bld.Append(int16(v.i))
	case *array.Int32Builder:
		bld.Append(int32(v.i))
	case *array.Int64Builder:
		bld.Append(v.i)
	case *array.Uint8Builder:
		bld.Append(uint8(v.u))
	case *array.Uint16Builder:
		bld.Append(uint16(v.u))
	case *array.Uint32Builder:
		bld.Append(uint32(v.u))
	case *array.Uint64Builder:
		bld.Append(v.u)
	case *array.Float32Builder:
		bld.Append(float32(v.f))
	case *array.Float64Builder:
		bld.Append(v.f)
	case *array.StringBuilder:
		bld.Append(v.s)
	case *array.TimestampBuilder:
		bld.Append(arrow.Timestamp(v.i))
	}
}
