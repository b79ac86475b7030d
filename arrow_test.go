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
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/stretchr/testify/require"
)

func TestEncodeArrowBatches(t *testing.T) {
	b := NewRowBuilder("cpu")
	defer b.Release()
	require.NoError(t, b.DefineColumn("ts", DataTypeTimestampNanosecond, SemanticTypeTimestamp))
	require.NoError(t, b.DefineColumn("host", DataTypeString, SemanticTypeTag))
	require.NoError(t, b.DefineColumn("up", DataTypeBoolean, SemanticTypeField))
	require.NoError(t, b.AppendRow(TimestampNanosecondValue(10), StringValue("a"), BoolValue(true)))
	require.NoError(t, b.AppendRow(TimestampNanosecondValue(20), StringValue("b"), BoolValue(false)))

	batch := b.Drain()
	defer batch.Release()

	payload, err := encodeArrowBatches(batch.Record.Schema(), []arrow.Record{batch.Record})
	require.NoError(t, err)

	schema, records, err := DecodeArrowBatches(payload)
	require.NoError(t, err)
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()

	require.True(t, schema.Equal(batch.Record.Schema()))
	require.Len(t, records, 1)
	require.Equal(t, []arrow.Timestamp{10, 20}, records[0].Column(0).(*array.Timestamp).TimestampValues())
	require.Equal(t, "b", records[0].Column(1).(*array.String).Value(1))
	require.False(t, records[0].Column(2).(*array.Boolean).Value(1))

	sem, ok := schema.Field(1).Metadata.GetValue(semanticTypeKey)
	require.True(t, ok)
	require.Equal(t, "TAG", sem)

	_, err = encodeArrowBatches(batch.Record.Schema(), nil)
	require.Error(t, err)
}
