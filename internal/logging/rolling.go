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

package logging

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

const rollingLayout = "2006-01-02-15"

// rollingFile appends to <dir>/<prefix>.log.<hour> and switches files when the
// hour changes.
type rollingFile struct {
	dir    string
	prefix string
	now    func() time.Time

	mu     sync.Mutex
	suffix string
	f      *os.File
	closed bool
}

func newRollingFile(dir, prefix string) *rollingFile {
	return &rollingFile{dir: dir, prefix: prefix, now: time.Now}
}

func (r *rollingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return len(p), nil
	}
	suffix := r.now().Format(rollingLayout)
	if r.f == nil || suffix != r.suffix {
		if r.f != nil {
			_ = r.f.Close()
			r.f = nil
		}
		name := filepath.Join(r.dir, r.prefix+".log."+suffix)
		f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return 0, err
		}
		r.f, r.suffix = f, suffix
	}
	return r.f.Write(p)
}

func (r *rollingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}
