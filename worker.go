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
	"context"
)

// runInsertWorker forwards batches to the inserter one at a time, in the order
// they were queued, until the channel is closed and drained or an insert fails.
// done is closed when the worker exits.
func (c *Client) runInsertWorker(ctx context.Context, batches <-chan *Batch, done chan<- struct{}) {
	defer close(done)

	for batch := range batches {
		c.metrics.depth.Set(float64(len(batches)))

		err := c.insert(ctx, batch)
		if err != nil {
			dropped := len(batches)
			c.metrics.failed.Inc()
			c.logger.Error().
				Err(err).
				Stringer("code", CodeOf(err)).
				Stringer("batch", batch.ID).
				Str("table", batch.Table).
				Int("dropped", dropped).
				Msg("insert failed, stopping insert worker")
			batch.Release()
			return
		}
		batch.Release()
	}

	c.logger.Debug().Msg("insert worker drained")
}

func (c *Client) insert(ctx context.Context, batch *Batch) error {
	rows := batch.RowCount()
	resp, err := c.inserter.Insert(ctx, batch)
	if err != nil {
		return err
	}

	c.metrics.inserted.Inc()
	c.metrics.rows.Add(float64(rows))

	event := c.logger.Debug().
		Stringer("batch", batch.ID).
		Str("table", batch.Table).
		Int("rows", rows)
	if resp != nil {
		event = event.Int64("inserted", resp.NumRowsInserted)
	}
	event.Msg("batch inserted")
	return nil
}
