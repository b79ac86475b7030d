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

package tsingest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tsingest/tsingest-go"
	"github.com/tsingest/tsingest-go/internal/testkit"
)

func drainedBatch(t *testing.T, table string, rows int) *tsingest.Batch {
	b := newSeqBuilder(t, table)
	defer b.Release()
	for i := 0; i < rows; i++ {
		appendSeq(t, b, 0, int64(i))
	}
	return b.Drain()
}

func TestConnectionInsert(t *testing.T) {
	server := testkit.NewIngestServer(t)
	conn, err := tsingest.Open(&tsingest.Config{Endpoint: server.Endpoint(), Database: "metrics"})
	require.NoError(t, err)
	defer conn.Close()
	require.Equal(t, "metrics", conn.Database())

	batch := drainedBatch(t, "seq", 3)
	defer batch.Release()

	resp, err := conn.Insert(context.Background(), batch)
	require.NoError(t, err)
	require.Equal(t, batch.ID.String(), resp.ID)
	require.EqualValues(t, 3, resp.NumRowsInserted)

	reqs := server.Requests()
	require.Len(t, reqs, 1)
	require.Equal(t, "seq", reqs[0].Table)
	require.Equal(t, "metrics", reqs[0].Database)
	require.Empty(t, reqs[0].Encoding)
	names := make([]string, 0, reqs[0].Schema.NumFields())
	for _, f := range reqs[0].Schema.Fields() {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"ts", "writer", "seq"}, names)
}

func TestConnectionServerError(t *testing.T) {
	server := testkit.NewIngestServer(t)
	server.FailAfter(0, http.StatusBadRequest, "table seq does not exist")
	conn, err := tsingest.Open(&tsingest.Config{Endpoint: server.Endpoint()})
	require.NoError(t, err)
	defer conn.Close()

	batch := drainedBatch(t, "seq", 1)
	defer batch.Release()

	_, err = conn.Insert(context.Background(), batch)
	var serverErr *tsingest.Error
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, http.StatusBadRequest, serverErr.StatusCode)
	require.Equal(t, "table seq does not exist", serverErr.Message)
	require.Equal(t, tsingest.CodeInvalidArgument, tsingest.CodeOf(err))
}

func TestConnectionPlainTextError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	conn, err := tsingest.Open(&tsingest.Config{Endpoint: server.URL})
	require.NoError(t, err)
	defer conn.Close()

	batch := drainedBatch(t, "seq", 1)
	defer batch.Release()

	_, err = conn.Insert(context.Background(), batch)
	var serverErr *tsingest.Error
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, http.StatusBadGateway, serverErr.StatusCode)
	require.Equal(t, "upstream down\n", serverErr.Message)
	require.Equal(t, tsingest.CodeServerUnavailable, tsingest.CodeOf(err))
}

func TestConnectionReleasedBatch(t *testing.T) {
	server := testkit.NewIngestServer(t)
	conn, err := tsingest.Open(&tsingest.Config{Endpoint: server.Endpoint()})
	require.NoError(t, err)
	defer conn.Close()

	batch := drainedBatch(t, "seq", 1)
	batch.Release()
	batch.Release()

	_, err = conn.Insert(context.Background(), batch)
	require.Error(t, err)
	require.Empty(t, server.Requests())
}
