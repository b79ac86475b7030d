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
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// HTTPClient is the interface for HTTP client.
type HTTPClient interface {
	// Post sends a POST request with a JSON body to the ingest server.
	Post(context.Context, *url.URL, []byte) (*http.Response, error)
	// Close releases idle connections and encoder state.
	Close()
}

type httpClient struct {
	client      *http.Client
	compression Compression
	zstd        *zstd.Encoder
}

// NewHTTPClient creates a new internal HTTP client that encodes request
// bodies with the given compression.
func NewHTTPClient(compression Compression) (HTTPClient, error) {
	c := &httpClient{
		client:      &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		compression: compression,
	}

	switch compression {
	case CompressionNone, "":
	case CompressionGzip:
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		c.zstd = enc
	default:
		return nil, fmt.Errorf("unknown compression %q", compression)
	}
	return c, nil
}

// Ensure httpClient implements HTTPClient.
var _ HTTPClient = (*httpClient)(nil)

func (c *httpClient) Post(ctx context.Context, u *url.URL, body []byte) (*http.Response, error) {
	body, err := c.encode(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.compression == CompressionGzip || c.compression == CompressionZstd {
		req.Header.Set("Content-Encoding", string(c.compression))
	}
	resp, err := c.client.Do(req)
	return resp, err
}

func (c *httpClient) encode(body []byte) ([]byte, error) {
	switch c.compression {
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		return c.zstd.EncodeAll(body, make([]byte, 0, len(body))), nil
	default:
		return body, nil
	}
}

func (c *httpClient) Close() {
	c.client.CloseIdleConnections()
	if c.zstd != nil {
		_ = c.zstd.Close()
	}
}
