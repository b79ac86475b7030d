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
	"io"
	"net/url"

	"github.com/goccy/go-json"
)

// ingestAPI defines interfaces under /v1/ingest.
type ingestAPI interface {
	// ingest sends one batch of rows and waits for the server to accept it.
	ingest(ctx context.Context, req *ingestRequest) (*IngestResponse, error)
}

var _ ingestAPI = (*Connection)(nil)

type ingestFormat string

const ingestFormatArrow ingestFormat = "arrow"

type ingestRequest struct {
	// ID identifies the batch so the server can drop redeliveries.
	ID       string      `json:"id"`
	Database string      `json:"database"`
	Table    string      `json:"table"`
	Data     *ingestData `json:"data"`
}

type ingestData struct {
	Format ingestFormat `json:"format"`
	// Rows is a base64 encoded string, contains arrow record batches
	Rows string `json:"rows"`
}

// IngestResponse is the server's answer to an accepted batch.
type IngestResponse struct {
	ID              string `json:"id"`
	NumRowsInserted int64  `json:"num_rows_inserted"`
}

func (conn *Connection) ingest(ctx context.Context, request *ingestRequest) (*IngestResponse, error) {
	req, err := url.Parse(conn.config.Endpoint + "/v1/ingest")
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	resp, err := conn.http.Post(ctx, req, body)
	if err != nil {
		return nil, err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var respData IngestResponse
	if len(data) == 0 {
		return &respData, nil
	}
	if err := json.Unmarshal(data, &respData); err != nil {
		return nil, err
	}
	return &respData, nil
}
