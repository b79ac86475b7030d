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

/*
Package tsingest streams typed rows to a remote time-series database.

# Building Rows

A RowBuilder holds the columns of one table and accumulates rows in lockstep:

	b := tsingest.NewRowBuilder("cpu")
	_ = b.DefineColumn("ts", tsingest.DataTypeTimestampMillisecond, tsingest.SemanticTypeTimestamp)
	_ = b.DefineColumn("host", tsingest.DataTypeString, tsingest.SemanticTypeTag)
	_ = b.DefineColumn("usage", tsingest.DataTypeFloat64, tsingest.SemanticTypeField)

	err := b.AppendRow(
		tsingest.TimestampMillisecondValue(1690000000000),
		tsingest.StringValue("db-1"),
		tsingest.Float64Value(0.42),
	)

A failed append leaves the builder unchanged.

# Writing Rows

Use NewClient to create a client. WriteRow drains a builder into a batch and
queues it for a single background worker that inserts batches in order:

	client, err := tsingest.NewClient(&tsingest.Config{
		Endpoint: "http://<host>:4000",
		Database: "public",
	})
	if err != nil {
		return err
	}
	defer client.Stop()

	if err := client.WriteRow(b); err != nil {
		return err
	}

WriteRow blocks while the queue is full. Stop waits for every queued batch.
Once the worker has failed an insert, writes return ErrClientStopped.

# C ABI

The cmd/libtsingest package exports the same operations as a C shared
library. Every failure is reported as a Code.
*/
package tsingest
