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

// Package boundary implements the C ABI of the library over unsafe.Pointer and
// uintptr handles, so it can be tested without cgo.
//
// Every entry point returns a tsingest.Code and never lets a panic escape.
// Handles are opaque non-zero integers; zero is the null handle.
package boundary

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/rs/zerolog"

	"github.com/tsingest/tsingest-go"
	"github.com/tsingest/tsingest-go/internal/logging"
	"github.com/tsingest/tsingest-go/internal/marshal"
)

var (
	rowBuilders = newRegistry[*tsingest.RowBuilder]("row builder")
	clients     = newRegistry[*tsingest.Client]("client")
)

// logger holds a reference on the logging context for the life of the process.
var logger = sync.OnceValue(func() zerolog.Logger {
	return logging.Acquire().Logger()
})

var errNullOut = fmt.Errorf("output slot: %w", marshal.ErrNullPointer)

// guard runs fn and converts its outcome into a status code. Errors are logged
// before conversion; panics become CodeUnknown.
func guard(op string, fn func() error) (code tsingest.Code) {
	defer func() {
		if r := recover(); r != nil {
			l := logger()
			l.Error().
				Str("op", op).
				Interface("panic", r).
				Msg("recovered from panic")
			code = tsingest.CodeUnknown
		}
	}()

	err := fn()
	code = tsingest.CodeOf(err)
	if err != nil {
		l := logger()
		l.Error().
			Err(err).
			Str("op", op).
			Stringer("code", code).
			Msg("call failed")
	}
	return code
}

// CreateRowBuilder creates a row builder for the table named by the C string at
// table and stores its handle in *out.
func CreateRowBuilder(table unsafe.Pointer, out *uintptr) tsingest.Code {
	return guard("create_row_builder", func() error {
		if out == nil {
			return errNullOut
		}
		*out = 0

		name, err := marshal.ToString(table)
		if err != nil {
			return fmt.Errorf("table name: %w", err)
		}
		b := tsingest.NewRowBuilder(name)
		b.SetLogger(logger())
		*out = rowBuilders.add(b)
		return nil
	})
}

// FreeRowBuilder releases the row builder whose handle is in *slot and zeroes
// the slot. A nil slot or a zero handle is a no-op.
func FreeRowBuilder(slot *uintptr) tsingest.Code {
	return guard("free_row_builder", func() error {
		if slot == nil || *slot == 0 {
			return nil
		}
		h := *slot
		*slot = 0

		b, err := rowBuilders.take(h)
		if err != nil {
			return err
		}
		b.Release()
		return nil
	})
}

// DefineColumn appends a column to the row builder.
func DefineColumn(row uintptr, name unsafe.Pointer, dataType, semanticType int32) tsingest.Code {
	return guard("define_column", func() error {
		b, err := rowBuilders.get(row)
		if err != nil {
			return err
		}
		column, err := marshal.ToString(name)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		return b.DefineColumn(column, tsingest.DataType(dataType), tsingest.SemanticType(semanticType))
	})
}

// AppendRow appends the n values starting at values as one row.
func AppendRow(row uintptr, values unsafe.Pointer, n int) tsingest.Code {
	return guard("append_row", func() error {
		b, err := rowBuilders.get(row)
		if err != nil {
			return err
		}
		if n < 0 {
			return &tsingest.SchemaMismatchError{ValueLen: n, SchemaLen: len(b.Columns())}
		}
		if n > 0 && values == nil {
			return fmt.Errorf("values: %w", marshal.ErrNullPointer)
		}

		var raw []tsingest.RawValue
		if n > 0 {
			raw = unsafe.Slice((*tsingest.RawValue)(values), n)
		}
		return b.AppendRawRow(raw)
	})
}

// CreateClient starts a client writing to database at endpoint and stores its
// handle in *out.
func CreateClient(database, endpoint unsafe.Pointer, out *uintptr) tsingest.Code {
	return guard("create_client", func() error {
		if out == nil {
			return errNullOut
		}
		*out = 0

		db, err := marshal.ToString(database)
		if err != nil {
			return fmt.Errorf("database name: %w", err)
		}
		ep, err := marshal.ToString(endpoint)
		if err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}
		return startClient(&tsingest.Config{Database: db, Endpoint: ep}, out)
	})
}

// CreateClientWithConfig starts a client from the n bytes of YAML at config and
// stores its handle in *out.
func CreateClientWithConfig(config unsafe.Pointer, n int, out *uintptr) tsingest.Code {
	return guard("create_client_with_config", func() error {
		if out == nil {
			return errNullOut
		}
		*out = 0

		data, err := marshal.ToBytes(config, n)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		cfg, err := tsingest.ParseConfig(data)
		if err != nil {
			return err
		}
		return startClient(cfg, out)
	})
}

func startClient(cfg *tsingest.Config, out *uintptr) error {
	l := logger()
	cfg.Logger = &l
	c, err := tsingest.NewClient(cfg)
	if err != nil {
		return err
	}
	*out = clients.add(c)
	return nil
}

// WriteRow drains the row builder into a batch and queues it on the client.
func WriteRow(client, row uintptr) tsingest.Code {
	return guard("write_row", func() error {
		c, err := clients.get(client)
		if err != nil {
			return err
		}
		b, err := rowBuilders.get(row)
		if err != nil {
			return err
		}
		return c.WriteRow(b)
	})
}

// StopClient stops the client and waits for its queued batches, keeping the
// handle valid. Stopping twice is a no-op.
func StopClient(client uintptr) tsingest.Code {
	return guard("stop_client", func() error {
		c, err := clients.get(client)
		if err != nil {
			return err
		}
		c.Stop()
		return nil
	})
}

// FreeClient stops the client whose handle is in *slot, releases it and zeroes
// the slot. A nil slot or a zero handle is a no-op.
func FreeClient(slot *uintptr) tsingest.Code {
	return guard("free_client", func() error {
		if slot == nil || *slot == 0 {
			return nil
		}
		h := *slot
		*slot = 0

		c, err := clients.take(h)
		if err != nil {
			return err
		}
		c.Stop()
		return nil
	})
}
