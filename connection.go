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
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
)

// Inserter forwards batches to the database. Connection is the production
// implementation.
type Inserter interface {
	// Insert sends one batch and returns once the server accepted or rejected it.
	Insert(ctx context.Context, batch *Batch) (*IngestResponse, error)
	// Close releases the resources held by the inserter.
	Close()
}

// Connection talks to an ingest server over HTTP.
type Connection struct {
	config *Config
	http   HTTPClient
}

var _ Inserter = (*Connection)(nil)

// Open creates a new connection. Defaults are applied to a copy of config.
func Open(config *Config) (*Connection, error) {
	cfg := *config
	if err := cfg.complete(); err != nil {
		return nil, err
	}

	hc, err := NewHTTPClient(cfg.Compression)
	if err != nil {
		return nil, &CreateClientError{Endpoint: cfg.Endpoint, Err: err}
	}
	return &Connection{
		config: &cfg,
		http:   hc,
	}, nil
}

// Close closes the connection.
//
// You don't typically need to call this as the garbage collector will release
// the resources when the connection is no longer referenced. However, it can be
// useful to call this if you want to release the resources immediately.
func (conn *Connection) Close() {
	conn.http.Close()
}

// Database returns the database batches are inserted into.
func (conn *Connection) Database() string {
	return conn.config.Database
}

// Insert encodes the batch as Arrow IPC and ingests it into its table.
func (conn *Connection) Insert(ctx context.Context, batch *Batch) (*IngestResponse, error) {
	if batch.Record == nil {
		return nil, fmt.Errorf("insert batch %s: released", batch.ID)
	}

	rows, err := encodeArrowBatches(batch.Record.Schema(), []arrow.Record{batch.Record})
	if err != nil {
		return nil, fmt.Errorf("encode batch %s: %w", batch.ID, err)
	}

	return conn.ingest(ctx, &ingestRequest{
		ID:       batch.ID.String(),
		Database: conn.config.Database,
		Table:    batch.Table,
		Data: &ingestData{
			Format: ingestFormatArrow,
			Rows:   string(rows),
		},
	})
}
