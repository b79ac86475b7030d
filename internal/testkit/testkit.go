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

// Package testkit provides a fake ingest server for tests.
package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/lucasepe/codename"
	"github.com/stretchr/testify/require"

	"github.com/tsingest/tsingest-go"
)

// Request is one ingest request received by the server.
type Request struct {
	ID       string
	Database string
	Table    string
	Encoding string
	Schema   *arrow.Schema
	Records  []arrow.Record
}

// NumRows returns the number of rows carried by the request.
func (r *Request) NumRows() int64 {
	var n int64
	for _, rec := range r.Records {
		n += rec.NumRows()
	}
	return n
}

type wireRequest struct {
	ID       string `json:"id"`
	Database string `json:"database"`
	Table    string `json:"table"`
	Data     struct {
		Format string `json:"format"`
		Rows   string `json:"rows"`
	} `json:"data"`
}

type failure struct {
	after   int
	status  int
	message string
}

// IngestServer records ingest requests and answers them like the real server.
type IngestServer struct {
	t      testing.TB
	server *httptest.Server

	mu       sync.Mutex
	requests []*Request
	failure  *failure
	gate     chan struct{}
	arrived  chan struct{}
}

// NewIngestServer starts a server that is closed when the test ends.
func NewIngestServer(t testing.TB) *IngestServer {
	s := &IngestServer{t: t, arrived: make(chan struct{}, 1024)}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Endpoint returns the base URL of the server.
func (s *IngestServer) Endpoint() string {
	return s.server.URL
}

// Close releases held requests, stops the server and frees recorded batches.
func (s *IngestServer) Close() {
	s.Unblock()
	s.server.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		for _, rec := range req.Records {
			rec.Release()
		}
		req.Records = nil
	}
}

// Requests returns the requests recorded so far, in arrival order.
func (s *IngestServer) Requests() []*Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Request(nil), s.requests...)
}

// FailAfter makes every request after the first n answer with status.
func (s *IngestServer) FailAfter(n int, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = &failure{after: n, status: status, message: message}
}

// Block holds every request until Unblock is called.
func (s *IngestServer) Block() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate == nil {
		s.gate = make(chan struct{})
	}
}

// Unblock releases held requests.
func (s *IngestServer) Unblock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate != nil {
		close(s.gate)
		s.gate = nil
	}
}

// Arrived is signalled each time a request reaches the handler.
func (s *IngestServer) Arrived() <-chan struct{} {
	return s.arrived
}

func (s *IngestServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/v1/ingest" {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
		return
	}

	select {
	case s.arrived <- struct{}{}:
	default:
	}

	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var wire wireRequest
	if err := json.Unmarshal(body, &wire); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if wire.Data.Format != "arrow" {
		writeError(w, http.StatusBadRequest, "unsupported format "+wire.Data.Format)
		return
	}
	schema, records, err := tsingest.DecodeArrowBatches([]byte(wire.Data.Rows))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := &Request{
		ID:       wire.ID,
		Database: wire.Database,
		Table:    wire.Table,
		Encoding: r.Header.Get("Content-Encoding"),
		Schema:   schema,
		Records:  records,
	}

	s.mu.Lock()
	if f := s.failure; f != nil && len(s.requests) >= f.after {
		s.mu.Unlock()
		for _, rec := range records {
			rec.Release()
		}
		writeError(w, f.status, f.message)
		return
	}
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tsingest.IngestResponse{
		ID:              req.ID,
		NumRowsInserted: req.NumRows(),
	})
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	switch r.Header.Get("Content-Encoding") {
	case "":
		return data, nil
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case "zstd":
		zr, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return zr.DecodeAll(data, nil)
	default:
		return nil, &unsupportedEncodingError{r.Header.Get("Content-Encoding")}
	}
}

type unsupportedEncodingError struct {
	encoding string
}

func (e *unsupportedEncodingError) Error() string {
	return "unsupported content encoding " + e.encoding
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// RandomName generates a random table name.
func RandomName(t testing.TB) string {
	rng, err := codename.DefaultRNG()
	require.NoError(t, err)
	return strings.ReplaceAll(codename.Generate(rng, 10), "-", "_")
}
