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

// Command libtsingest is the C shared library of tsingest.
//
// Build with:
//
//	go build -buildmode=c-shared -o libtsingest.so ./cmd/libtsingest
//
// and include tsingest.h from C.
package main

/*
#define TSINGEST_NO_PROTOTYPES
#include "tsingest.h"
*/
import "C"
import (
	"unsafe"

	"github.com/tsingest/tsingest-go/internal/boundary"
)

//export create_row_builder
func create_row_builder(table *C.char, out *C.tsi_handle_t) C.int {
	return C.int(boundary.CreateRowBuilder(unsafe.Pointer(table), (*uintptr)(unsafe.Pointer(out))))
}

//export free_row_builder
func free_row_builder(row *C.tsi_handle_t) C.int {
	return C.int(boundary.FreeRowBuilder((*uintptr)(unsafe.Pointer(row))))
}

//export define_column
func define_column(row C.tsi_handle_t, name *C.char, dataType, semanticType C.int) C.int {
	return C.int(boundary.DefineColumn(uintptr(row), unsafe.Pointer(name), int32(dataType), int32(semanticType)))
}

//export append_row
func append_row(row C.tsi_handle_t, values *C.tsi_value_t, count C.size_t) C.int {
	return C.int(boundary.AppendRow(uintptr(row), unsafe.Pointer(values), int(count)))
}

//export create_client
func create_client(database, endpoint *C.char, out *C.tsi_handle_t) C.int {
	return C.int(boundary.CreateClient(unsafe.Pointer(database), unsafe.Pointer(endpoint), (*uintptr)(unsafe.Pointer(out))))
}

//export create_client_with_config
func create_client_with_config(yaml *C.char, n C.size_t, out *C.tsi_handle_t) C.int {
	return C.int(boundary.CreateClientWithConfig(unsafe.Pointer(yaml), int(n), (*uintptr)(unsafe.Pointer(out))))
}

//export write_row
func write_row(client, row C.tsi_handle_t) C.int {
	return C.int(boundary.WriteRow(uintptr(client), uintptr(row)))
}

//export stop_client
func stop_client(client C.tsi_handle_t) C.int {
	return C.int(boundary.StopClient(uintptr(client)))
}

//export free_client
func free_client(client *C.tsi_handle_t) C.int {
	return C.int(boundary.FreeClient((*uintptr)(unsafe.Pointer(client))))
}

// Required by -buildmode=c-shared.
func main() {}
