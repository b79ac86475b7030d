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
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDatabase        = "public"
	DefaultChannelCapacity = 1024
)

// ErrInvalidConfig is returned for a config document that cannot be decoded.
var ErrInvalidConfig = errors.New("invalid config")

// Compression selects how ingest request bodies are encoded on the wire.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Config defines the configuration for the client.
type Config struct {
	// Endpoint is the address of the ingest server. A missing scheme means http.
	Endpoint string `yaml:"endpoint"`
	// Database is the target database. Defaults to "public".
	Database string `yaml:"database"`
	// ChannelCapacity bounds the number of batches waiting for the insert
	// worker. Writers block once it is reached.
	ChannelCapacity int `yaml:"channel_capacity"`
	// Compression of ingest request bodies. Defaults to none.
	Compression Compression `yaml:"compression"`

	// Logger overrides the process-wide logger.
	Logger *zerolog.Logger `yaml:"-"`
}

// ParseConfig decodes a YAML document into a Config with defaults applied.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := config.complete(); err != nil {
		return nil, err
	}
	return &config, nil
}

// complete fills defaults and validates the config in place.
func (c *Config) complete() error {
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.ChannelCapacity == 0 {
		c.ChannelCapacity = DefaultChannelCapacity
	}
	if c.Compression == "" {
		c.Compression = CompressionNone
	}

	if c.ChannelCapacity < 0 {
		return &CreateClientError{Endpoint: c.Endpoint, Err: fmt.Errorf("negative channel capacity %d", c.ChannelCapacity)}
	}
	switch c.Compression {
	case CompressionNone, CompressionGzip, CompressionZstd:
	default:
		return &CreateClientError{Endpoint: c.Endpoint, Err: fmt.Errorf("unknown compression %q", c.Compression)}
	}

	endpoint, err := normalizeEndpoint(c.Endpoint)
	if err != nil {
		return &CreateClientError{Endpoint: c.Endpoint, Err: err}
	}
	c.Endpoint = endpoint
	return nil
}

func normalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", fmt.Errorf("empty endpoint")
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	return strings.TrimRight(u.String(), "/"), nil
}
