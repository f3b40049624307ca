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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/volya/connection"
	"github.com/blinklabs-io/volya/database"
	"github.com/blinklabs-io/volya/event"
	"github.com/blinklabs-io/volya/processor"
	"github.com/blinklabs-io/volya/tokenomics"
	"go.opentelemetry.io/otel"
)

type Node struct {
	config        Config
	db            *database.Database
	eventBus      *event.EventBus
	processor     *processor.Processor
	conn          connection.Connection
	shutdownFuncs []func(context.Context) error
	startOnce     sync.Once
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	n := &Node{
		config: cfg,
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Start opens the database and wires the event bus, processor and
// connection. It must be called once before the accessors are used
func (n *Node) Start() error {
	err := errors.New("node already started")
	n.startOnce.Do(func() {
		err = n.start()
	})
	return err
}

func (n *Node) start() error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:      n.config.dataDir,
		Logger:       n.config.logger,
		PromRegistry: n.config.promRegistry,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	n.eventBus = event.NewEventBus(n.config.promRegistry, n.config.logger)
	proc, err := processor.New(processor.Config{
		DB:                  n.db,
		EventBus:            n.eventBus,
		Logger:              n.config.logger,
		PromRegistry:        n.config.promRegistry,
		TracerProvider:      otel.GetTracerProvider(),
		TokenProgramID:      n.config.tokenProgramID,
		StakingProgramID:    n.config.stakingProgramID,
		GovernanceProgramID: n.config.governanceProgramID,
		Tiers:               n.config.tokenomics.Tiers(),
		Clock:               n.config.clock,
	})
	if err != nil {
		return fmt.Errorf("failed to create processor: %w", err)
	}
	n.processor = proc
	network, _ := connection.NetworkByName(n.config.network)
	conn, err := connection.Dial(network.WithURL(n.config.networkURL), proc)
	if err != nil {
		return err
	}
	n.conn = conn
	n.config.logger.Debug(
		"node started",
		"component", "node",
		"network", network.String(),
		"data_dir", n.config.dataDir,
	)
	return nil
}

func (n *Node) Connection() connection.Connection {
	return n.conn
}

func (n *Node) Processor() *processor.Processor {
	return n.processor
}

func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// Tokenomics returns the validated token configuration the node runs with
func (n *Node) Tokenomics() *tokenomics.Record {
	return n.config.tokenomics
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	// Stop delivering events before the stores go away
	if n.eventBus != nil {
		n.eventBus.Stop()
	}
	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil
	n.config.logger.Debug("shutdown complete", "component", "node")
	return err
}
