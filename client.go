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
	"sync"

	"github.com/rs/zerolog"

	"github.com/tsingest/tsingest-go/internal/logging"
)

// Client streams batches to the database through a single background insert
// worker.
//
// WriteRow and WriteBatch are safe for concurrent use. A Client must be
// stopped with Stop to wait for queued batches and release its resources.
type Client struct {
	database string
	inserter Inserter
	logger   zerolog.Logger
	logging  *logging.Handle
	metrics  *clientMetrics
	cancel   context.CancelFunc

	// mu guards batches, which is nil once the client is stopped.
	mu      sync.RWMutex
	batches chan *Batch
	done    chan struct{}

	closeOnce sync.Once
}

// NewClient connects to the server named by config and starts the insert
// worker.
func NewClient(config *Config) (*Client, error) {
	cfg := *config
	if err := cfg.complete(); err != nil {
		return nil, err
	}

	conn, err := Open(&cfg)
	if err != nil {
		return nil, err
	}
	return NewClientWithInserter(&cfg, conn)
}

// NewClientWithInserter is like NewClient but inserts through the given
// inserter, which the client closes on Stop.
func NewClientWithInserter(config *Config, inserter Inserter) (*Client, error) {
	cfg := *config
	if cfg.Endpoint == "" {
		// an injected inserter needs no endpoint
		cfg.Endpoint = "local"
	}
	if err := cfg.complete(); err != nil {
		inserter.Close()
		return nil, err
	}

	c := &Client{
		database: cfg.Database,
		inserter: inserter,
		metrics:  newClientMetrics(cfg.Database),
		batches:  make(chan *Batch, cfg.ChannelCapacity),
		done:     make(chan struct{}),
	}
	if cfg.Logger != nil {
		c.logger = *cfg.Logger
	} else {
		c.logging = logging.Acquire()
		c.logger = c.logging.Logger()
	}
	c.logger = c.logger.With().Str("database", cfg.Database).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.runInsertWorker(ctx, c.batches, c.done)

	c.logger.Info().
		Str("endpoint", cfg.Endpoint).
		Int("channel_capacity", cfg.ChannelCapacity).
		Msg("client started")
	return c, nil
}

// Database returns the database this client writes to.
func (c *Client) Database() string {
	return c.database
}

// WriteRow drains the builder into a batch and queues it for insertion,
// blocking while the queue is full.
//
// It returns ErrClientStopped without touching the builder if the client is
// stopped or its worker has exited.
func (c *Client) WriteRow(b *RowBuilder) error {
	return c.send(b.Drain)
}

// WriteBatch queues a batch for insertion, blocking while the queue is full.
// The client takes ownership of the batch on success.
func (c *Client) WriteBatch(batch *Batch) error {
	return c.send(func() *Batch { return batch })
}

func (c *Client) send(next func() *Batch) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.batches == nil {
		return ErrClientStopped
	}
	select {
	case <-c.done:
		return ErrClientStopped
	default:
	}

	batch := next()
	select {
	case c.batches <- batch:
		c.metrics.enqueued.Inc()
		c.metrics.depth.Set(float64(len(c.batches)))
		return nil
	case <-c.done:
		batch.Release()
		return ErrSendFailed
	}
}

// Stop closes the queue, waits until the insert worker has inserted every
// queued batch or failed, and releases the connection. In-flight inserts are
// not aborted. Calling Stop again is a no-op.
func (c *Client) Stop() {
	c.mu.Lock()
	if c.batches != nil {
		close(c.batches)
		c.batches = nil
	}
	c.mu.Unlock()

	<-c.done

	c.closeOnce.Do(func() {
		c.cancel()
		c.inserter.Close()
		c.metrics.depth.Set(0)
		c.logger.Info().Msg("client stopped")
		if c.logging != nil {
			c.logging.Release()
		}
	})
}
