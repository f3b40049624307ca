// Copyright 2026 Blink Labs Software
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

package volya

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/connection"
	"github.com/blinklabs-io/volya/tokenomics"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry        prometheus.Registerer
	logger              *slog.Logger
	tokenomics          *tokenomics.Record
	clock               func() int64
	dataDir             string
	network             string
	networkURL          string
	tokenProgramID      address.Address
	stakingProgramID    address.Address
	governanceProgramID address.Address
	tracing             bool
	tracingStdout       bool
	shutdownTimeout     time.Duration
}

func (n *Node) configValidate() error {
	if _, ok := connection.NetworkByName(n.config.network); !ok {
		return fmt.Errorf("unknown network name: %s", n.config.network)
	}
	if n.config.tokenomics == nil {
		n.config.tokenomics = tokenomics.Default()
	}
	if err := n.config.tokenomics.Validate(); err != nil {
		return fmt.Errorf("invalid tokenomics: %w", err)
	}
	ids := []address.Address{
		n.config.tokenProgramID,
		n.config.stakingProgramID,
		n.config.governanceProgramID,
	}
	for i, id := range ids {
		if id.IsZero() {
			return fmt.Errorf("program ID %d is not set", i)
		}
		for _, other := range ids[:i] {
			if other == id {
				return fmt.Errorf("program ID %s is used more than once", id)
			}
		}
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new volya config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		network: connection.NetworkLocal,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithLogger specifies the logger to use
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithNetwork specifies the named network to operate on
func WithNetwork(network string) ConfigOptionFunc {
	return func(c *Config) {
		c.network = network
	}
}

// WithNetworkURL overrides the endpoint URL of the named network
func WithNetworkURL(url string) ConfigOptionFunc {
	return func(c *Config) {
		c.networkURL = url
	}
}

// WithTokenomics specifies the token configuration record. The stock UA configuration is used when unset
func WithTokenomics(rec *tokenomics.Record) ConfigOptionFunc {
	return func(c *Config) {
		c.tokenomics = rec
	}
}

// WithProgramIDs specifies the token, staking and governance program IDs
func WithProgramIDs(
	tokenProgram, stakingProgram, governanceProgram address.Address,
) ConfigOptionFunc {
	return func(c *Config) {
		c.tokenProgramID = tokenProgram
		c.stakingProgramID = stakingProgram
		c.governanceProgramID = governanceProgram
	}
}

// WithClock specifies the source of the current unix time used for instructions
func WithClock(clock func() int64) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies how long Stop waits for the tracer to flush
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
