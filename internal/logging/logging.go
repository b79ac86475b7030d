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

// Package logging owns the process-wide logging context shared by every client
// and by the foreign boundary.
//
// The context is created by the first Acquire and torn down when the last
// Handle is released. Holders get a zerolog.Logger value from their Handle
// instead of reaching for a global logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// EnvLevel overrides the log level, e.g. "debug" or "warn".
	EnvLevel = "TSINGEST_LOG_LEVEL"
	// EnvDir overrides the log directory. "off" disables file sinks.
	EnvDir = "TSINGEST_LOG_DIR"

	DefaultDir     = "/tmp/tsingest/logs"
	DefaultAppName = "tsingest"
)

// Options configures the logging context.
type Options struct {
	// Dir is where rolling log files are written. Empty disables file sinks.
	Dir string
	// Level is a zerolog level name. Empty means info.
	Level string
	// AppName prefixes log file names.
	AppName string
	// Console receives human readable output. Nil means stderr.
	Console io.Writer
}

// envOptions reads the environment exactly once per process.
var envOptions = sync.OnceValue(func() Options {
	opts := Options{
		Dir:     DefaultDir,
		Level:   os.Getenv(EnvLevel),
		AppName: DefaultAppName,
	}
	if dir, ok := os.LookupEnv(EnvDir); ok {
		if strings.EqualFold(dir, "off") {
			dir = ""
		}
		opts.Dir = dir
	}
	return opts
})

// DefaultOptions returns the options derived from the environment.
func DefaultOptions() Options {
	return envOptions()
}

type loggingContext struct {
	logger zerolog.Logger
	files  []io.Closer
}

var (
	mu      sync.Mutex
	refs    int
	current *loggingContext
)

// Handle is a counted reference to the process-wide logging context.
type Handle struct {
	logger   zerolog.Logger
	released sync.Once
}

// Acquire returns a handle on the logging context, creating it from
// DefaultOptions if no handle is alive.
func Acquire() *Handle {
	return AcquireWith(DefaultOptions())
}

// AcquireWith is like Acquire but uses opts when the context has to be created.
// Options are ignored while another handle keeps the context alive.
func AcquireWith(opts Options) *Handle {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		current = newContext(opts)
	}
	refs++
	return &Handle{logger: current.logger}
}

// Logger returns the logger carried by this handle.
func (h *Handle) Logger() zerolog.Logger {
	return h.logger
}

// Release drops the reference. Releasing twice is a no-op.
func (h *Handle) Release() {
	h.released.Do(func() {
		mu.Lock()
		defer mu.Unlock()

		refs--
		if refs > 0 || current == nil {
			return
		}
		for _, f := range current.files {
			_ = f.Close()
		}
		current = nil
	})
}

func newContext(opts Options) *loggingContext {
	if opts.AppName == "" {
		opts.AppName = DefaultAppName
	}
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	lc := &loggingContext{}
	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339},
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err == nil {
			all := newRollingFile(opts.Dir, opts.AppName)
			errs := newRollingFile(opts.Dir, opts.AppName+"-err")
			writers = append(writers, all, errorsOnly{errs})
			lc.files = append(lc.files, all, errs)
		}
	}

	level := zerolog.InfoLevel
	var badLevel error
	if opts.Level != "" {
		if l, err := zerolog.ParseLevel(strings.ToLower(opts.Level)); err == nil {
			level = l
		} else {
			badLevel = err
		}
	}

	lc.logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Caller().
		Str("app", opts.AppName).
		Logger()

	if badLevel != nil {
		lc.logger.Warn().Err(badLevel).Str("level", opts.Level).Msg("unrecognized log level, using info")
	}
	return lc
}

// errorsOnly forwards error and more severe events only.
type errorsOnly struct {
	w io.Writer
}

func (e errorsOnly) Write(p []byte) (int, error) {
	return len(p), nil
}

func (e errorsOnly) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.ErrorLevel || level == zerolog.NoLevel {
		return len(p), nil
	}
	return e.w.Write(p)
}
