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
	"github.com/google/uuid"
)

// Batch is an immutable snapshot of the rows accumulated for one table.
//
// Ownership passes to the Client on WriteBatch; the insert worker releases it
// once the insert attempt is over.
type Batch struct {
	// ID is sent along with the batch so the server can drop redeliveries.
	ID      uuid.UUID
	Table   string
	Columns []ColumnDef
	Record  arrow.Record
}

// RowCount returns the number of rows in the batch.
func (b *Batch) RowCount() int {
	if b.Record == nil {
		return 0
	}
	return int(b.Record.NumRows())
}

// Release frees the column buffers. It is safe to call more than once.
func (b *Batch) Release() {
	if b.Record != nil {
		b.Record.Release()
		b.Record = nil
	}
}
