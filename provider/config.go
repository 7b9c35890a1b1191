// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package provider

import (
	"errors"
	"strings"
)

// Config holds connection settings for an embedding service.
type Config struct {
	// Host is the base URL of the embedding API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server.
	Host string

	// Model is the embedding model identifier.
	// Example: "embeddinggemma", "text-embedding-3-small"
	Model string

	// APIKey authenticates against hosted services. Local services that
	// ignore authentication may leave it empty.
	APIKey string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// DefaultConfig returns a Config pointed at a local OpenAI-compatible service.
func DefaultConfig() *Config {
	return &Config{
		Host:  "http://localhost:11434/v1",
		Model: "embeddinggemma",
	}
}

// NewConfig creates a Config with defaults and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in canonical form. It adds the /v1
// suffix expected by OpenAI-compatible APIs (Ollama, LocalAI, vLLM) when
// missing.
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is complete. It normalizes first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("provider config: Host is required")
	}
	if c.Model == "" {
		return errors.New("provider config: Model is required")
	}
	return nil
}
