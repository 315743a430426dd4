// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package cozodb

/*
#cgo LDFLAGS: -lcozo_c
#include <stdlib.h>
#include <stdbool.h>
#include <stdint.h>

extern bool cozo_open_db(const char *engine, const char *path, const char *options, int32_t *db_id, char **error);
extern bool cozo_close_db(int32_t db_id);
extern bool cozo_run_query(int32_t db_id, const char *script, const char *params, char **result, bool immutable);
extern void cozo_free_str(char *s);
extern bool cozo_backup(int32_t db_id, const char *out_path, char **error);
extern bool cozo_restore(int32_t db_id, const char *in_path, char **error);
*/
import "C"

import (
	"encoding/json"
	"fmt"
	"sync"
	"unsafe"
)

// NamedRows is the tabular result of a CozoDB script: one header per
// column, one slice per row in the same column order.
type NamedRows struct {
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// CozoDB is a handle to one open CozoDB instance. The zero value is not
// usable; construct with New.
type CozoDB struct {
	id     C.int32_t
	mu     sync.Mutex
	closed bool
}

// New opens a CozoDB instance. engine is one of "mem", "sqlite", or
// "rocksdb"; path is the on-disk data directory (ignored for "mem");
// options carries engine-specific tuning and may be nil.
func New(engine, path string, options map[string]any) (CozoDB, error) {
	cEngine := C.CString(engine)
	defer C.free(unsafe.Pointer(cEngine))
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	optsJSON := "{}"
	if options != nil {
		b, err := json.Marshal(options)
		if err != nil {
			return CozoDB{}, fmt.Errorf("marshal options: %w", err)
		}
		optsJSON = string(b)
	}
	cOpts := C.CString(optsJSON)
	defer C.free(unsafe.Pointer(cOpts))

	var dbID C.int32_t
	var cErr *C.char
	ok := C.cozo_open_db(cEngine, cPath, cOpts, &dbID, &cErr)
	if !bool(ok) {
		msg := "unknown error"
		if cErr != nil {
			msg = C.GoString(cErr)
			C.cozo_free_str(cErr)
		}
		return CozoDB{}, fmt.Errorf("open db: %s", msg)
	}

	return CozoDB{id: dbID}, nil
}

type scriptResult struct {
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
	Ok      bool     `json:"ok"`
	Message string   `json:"message"`
}

func (db *CozoDB) run(script string, params map[string]any, immutable bool) (NamedRows, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return NamedRows{}, fmt.Errorf("database is closed")
	}

	cScript := C.CString(script)
	defer C.free(unsafe.Pointer(cScript))

	paramsJSON := "{}"
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return NamedRows{}, fmt.Errorf("marshal params: %w", err)
		}
		paramsJSON = string(b)
	}
	cParams := C.CString(paramsJSON)
	defer C.free(unsafe.Pointer(cParams))

	var cResult *C.char
	ok := C.cozo_run_query(db.id, cScript, cParams, &cResult, C.bool(immutable))
	if cResult == nil {
		return NamedRows{}, fmt.Errorf("cozo returned no result")
	}
	resultJSON := C.GoString(cResult)
	C.cozo_free_str(cResult)

	var parsed scriptResult
	if err := json.Unmarshal([]byte(resultJSON), &parsed); err != nil {
		return NamedRows{}, fmt.Errorf("decode result: %w", err)
	}
	if !bool(ok) || (!parsed.Ok && parsed.Message != "") {
		return NamedRows{}, fmt.Errorf("query failed: %s", parsed.Message)
	}

	return NamedRows{Headers: parsed.Headers, Rows: parsed.Rows}, nil
}

// Run executes a CozoScript mutation or query.
func (db *CozoDB) Run(script string, params map[string]any) (NamedRows, error) {
	return db.run(script, params, false)
}

// RunReadOnly executes script with CozoDB's read-only enforcement: a
// script attempting a mutation is rejected before it runs.
func (db *CozoDB) RunReadOnly(script string, params map[string]any) (NamedRows, error) {
	return db.run(script, params, true)
}

// Close releases the underlying database handle. Safe to call more than
// once.
func (db *CozoDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}
	db.closed = true
	C.cozo_close_db(db.id)
	return nil
}

// Backup snapshots the database to a single file at path.
func (db *CozoDB) Backup(path string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	var cErr *C.char
	ok := C.cozo_backup(db.id, cPath, &cErr)
	if !bool(ok) {
		msg := "unknown error"
		if cErr != nil {
			msg = C.GoString(cErr)
			C.cozo_free_str(cErr)
		}
		return fmt.Errorf("backup: %s", msg)
	}
	return nil
}

// Restore loads a previously-created backup file into this database.
func (db *CozoDB) Restore(path string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	var cErr *C.char
	ok := C.cozo_restore(db.id, cPath, &cErr)
	if !bool(ok) {
		msg := "unknown error"
		if cErr != nil {
			msg = C.GoString(cErr)
			C.cozo_free_str(cErr)
		}
		return fmt.Errorf("restore: %s", msg)
	}
	return nil
}
