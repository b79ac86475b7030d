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
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tsingest/tsingest-go/internal/marshal"
)

// Code is the stable integer status returned across the C ABI.
type Code int32

const (
	CodeSuccess           Code = 0
	CodeUnknown           Code = 1000
	CodeServerUnavailable Code = 1001
	CodeInvalidArgument   Code = 1002
	CodeInvalidPointer    Code = 1003
	CodeIllegalState      Code = 1004
)

func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "Success"
	case CodeUnknown:
		return "Unknown"
	case CodeServerUnavailable:
		return "ServerUnavailable"
	case CodeInvalidArgument:
		return "InvalidArgument"
	case CodeInvalidPointer:
		return "InvalidPointer"
	case CodeIllegalState:
		return "IllegalState"
	default:
		return fmt.Sprintf("Code(%d)", int32(c))
	}
}

var (
	// ErrClientStopped is returned when writing to a client whose insert
	// worker has exited, either after Stop or after a failed insert.
	ErrClientStopped = errors.New("client stopped")
	// ErrSendFailed is returned when the channel closed while a send was
	// blocked on it.
	ErrSendFailed = errors.New("send failed")
)

// SchemaMismatchError reports a row whose arity differs from the declared columns.
type SchemaMismatchError struct {
	ValueLen  int
	SchemaLen int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: got %d values, want %d", e.ValueLen, e.SchemaLen)
}

func (e *SchemaMismatchError) Code() Code { return CodeInvalidArgument }

// UnsupportedDataTypeError reports a data type that cannot be appended.
type UnsupportedDataTypeError struct {
	DataType DataType
}

func (e *UnsupportedDataTypeError) Error() string {
	return fmt.Sprintf("unsupported data type: %s", e.DataType)
}

func (e *UnsupportedDataTypeError) Code() Code { return CodeInvalidArgument }

// InvalidColumnDefinitionError reports a column declared with unknown codes.
type InvalidColumnDefinitionError struct {
	Name         string
	DataType     DataType
	SemanticType SemanticType
}

func (e *InvalidColumnDefinitionError) Error() string {
	return fmt.Sprintf("invalid column definition %q: data type %s, semantic type %s",
		e.Name, e.DataType, e.SemanticType)
}

func (e *InvalidColumnDefinitionError) Code() Code { return CodeInvalidArgument }

// TypeMismatchError reports a Value whose type differs from its column.
type TypeMismatchError struct {
	Column string
	Want   DataType
	Got    DataType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch in column %q: want %s, got %s", e.Column, e.Want, e.Got)
}

func (e *TypeMismatchError) Code() Code { return CodeInvalidArgument }

// CreateClientError reports a client that could not be constructed.
type CreateClientError struct {
	Endpoint string
	Err      error
}

func (e *CreateClientError) Error() string {
	return fmt.Sprintf("create client for %q: %v", e.Endpoint, e.Err)
}

func (e *CreateClientError) Unwrap() error { return e.Err }

func (e *CreateClientError) Code() Code { return CodeServerUnavailable }

// Error represents an error response from the ingest server.
type Error struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

func (e *Error) Code() Code {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return CodeInvalidArgument
	}
	return CodeServerUnavailable
}

// CodeOf maps err to the status reported across the C ABI. A nil error is
// CodeSuccess.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}

	var coder interface{ Code() Code }
	if errors.As(err, &coder) {
		return coder.Code()
	}

	switch {
	case errors.Is(err, marshal.ErrNullPointer):
		return CodeInvalidPointer
	case errors.Is(err, marshal.ErrInvalidEncoding), errors.Is(err, ErrInvalidConfig):
		return CodeInvalidArgument
	case errors.Is(err, ErrClientStopped):
		return CodeIllegalState
	case errors.Is(err, ErrSendFailed):
		return CodeUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return CodeServerUnavailable
	}
	return CodeUnknown
}

func checkStatusCodeOK(resp *http.Response) error {
	return checkStatusCode(resp, http.StatusOK)
}

func checkStatusCode(resp *http.Response, expected int) error {
	if resp.StatusCode == expected {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	msg := string(data)
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	errResp := Error{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(data, &errResp); err != nil || errResp.Message == "" {
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	return &errResp
}

// sneakyBodyClose closes the body and ignores the error.
// This is useful to close the HTTP response body when we don't care about the error.
func sneakyBodyClose(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
