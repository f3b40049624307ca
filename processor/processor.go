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

// Package processor executes signed instructions against the token ledger
// and the staking and governance engines.
//
// Instructions run one at a time. Each runs in its own database transaction
// together with its journal entry, so a failed instruction leaves no trace
// and a committed one is always journaled.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database"
	"github.com/blinklabs-io/volya/event"
	"github.com/blinklabs-io/volya/governance"
	"github.com/blinklabs-io/volya/program"
	"github.com/blinklabs-io/volya/staking"
	"github.com/blinklabs-io/volya/token"
	"github.com/blinklabs-io/volya/tokenomics"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/volya/processor"

var ErrInstructionReplayed = errors.New("instruction already executed")

type Config struct {
	DB                  *database.Database
	EventBus            *event.EventBus
	Logger              *slog.Logger
	PromRegistry        prometheus.Registerer
	TracerProvider      trace.TracerProvider
	TokenProgramID      address.Address
	StakingProgramID    address.Address
	GovernanceProgramID address.Address
	// Tiers defaults to the tiers of tokenomics.Default
	Tiers []tokenomics.Tier
	// Clock returns the current unix time in seconds. Defaults to the wall clock
	Clock func() int64
}

// Receipt describes a committed instruction. Result holds the typed success
// payload of the instruction kind, such as *StakeResult for KindStake
type Receipt struct {
	Sequence  uint64
	Kind      uint8
	Signer    address.Address
	Signature []byte
	Timestamp int64
	Result    any
}

type Processor struct {
	mu         sync.Mutex
	db         *database.Database
	eventBus   *event.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
	clock      func() int64
	metrics    *processorMetrics
	ledger     *token.Ledger
	staking    *staking.Engine
	governance *governance.Engine
}

func New(cfg Config) (*Processor, error) {
	if cfg.DB == nil {
		return nil, errors.New("processor: no database")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.Clock == nil {
		cfg.Clock = func() int64 { return time.Now().Unix() }
	}
	if len(cfg.Tiers) == 0 {
		cfg.Tiers = tokenomics.Default().Tiers()
	}
	ledger := token.New(cfg.TokenProgramID)
	stakingEngine, err := staking.New(cfg.StakingProgramID, ledger, cfg.Tiers)
	if err != nil {
		return nil, err
	}
	p := &Processor{
		db:         cfg.DB,
		eventBus:   cfg.EventBus,
		logger:     cfg.Logger.With("component", "processor"),
		tracer:     cfg.TracerProvider.Tracer(tracerName),
		clock:      cfg.Clock,
		ledger:     ledger,
		staking:    stakingEngine,
		governance: governance.New(cfg.GovernanceProgramID, ledger),
	}
	if cfg.PromRegistry != nil {
		p.initMetrics(cfg.PromRegistry)
	}
	return p, nil
}

func (p *Processor) DB() *database.Database {
	return p.db
}

func (p *Processor) Ledger() *token.Ledger {
	return p.ledger
}

func (p *Processor) Staking() *staking.Engine {
	return p.staking
}

func (p *Processor) Governance() *governance.Engine {
	return p.governance
}

// View runs fn against a read-only context at the current time
func (p *Processor) View(fn func(*program.Context) error) error {
	txn := p.db.Transaction(false)
	defer txn.Release()
	return fn(program.NewContext(txn, p.clock(), p.logger))
}

// Process verifies and executes a signed instruction. The context is only
// consulted before execution starts
func (p *Processor) Process(
	ctx context.Context,
	signed *SignedInstruction,
) (*Receipt, error) {
	ctx, span := p.tracer.Start(
		ctx,
		"processor.Process",
		trace.WithAttributes(attribute.Stringer("signer", signed.Signer)),
	)
	defer span.End()
	start := time.Now()
	kindName := "invalid"
	receipt, err := func() (*Receipt, error) {
		instr, err := signed.Open()
		if err != nil {
			return nil, err
		}
		kindName = KindName(instr.Kind)
		span.SetAttributes(attribute.String("kind", kindName))
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.execute(signed, instr)
	}()
	p.observe(kindName, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Debug(
			"instruction failed",
			"kind", kindName,
			"signer", signed.Signer.String(),
			"error", err,
		)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("sequence", int64(receipt.Sequence)))
	return receipt, nil
}

func (p *Processor) execute(
	signed *SignedInstruction,
	instr *Instruction,
) (*Receipt, error) {
	now := p.clock()
	txn := p.db.Transaction(true)
	defer txn.Release()
	if _, err := p.db.JournalEntryBySignature(signed.Signature, txn); err == nil {
		return nil, ErrInstructionReplayed
	} else if !errors.Is(err, database.ErrJournalEntryNotFound) {
		return nil, err
	}
	pctx := program.NewContext(txn, now, p.logger)
	result, events, err := p.dispatch(pctx, signed.Signer, instr)
	if err != nil {
		return nil, err
	}
	resultCbor, err := cbor.Encode(result)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", KindName(instr.Kind), err)
	}
	entry := &database.JournalEntry{
		Kind:        instr.Kind,
		Signer:      signed.Signer.Bytes(),
		Signature:   signed.Signature,
		Instruction: signed.Payload,
		Result:      resultCbor,
		Timestamp:   now,
	}
	staked, hasStaked := p.stakedTotal(pctx, result)
	seq, err := p.db.AppendJournal(entry, txn)
	if err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	if hasStaked {
		p.setStakedGauge(staked)
	}
	p.logger.Info(
		"executed instruction",
		"kind", KindName(instr.Kind),
		"signer", signed.Signer.String(),
		"sequence", seq,
	)
	events = append(events, event.NewEvent(
		event.InstructionCommittedEventType,
		event.InstructionCommittedEvent{
			Sequence:  seq,
			Kind:      KindName(instr.Kind),
			Signer:    signed.Signer,
			Signature: signed.Signature,
		},
		now,
	))
	p.publish(events)
	return &Receipt{
		Sequence:  seq,
		Kind:      instr.Kind,
		Signer:    signed.Signer,
		Signature: signed.Signature,
		Timestamp: now,
		Result:    result,
	}, nil
}

func (p *Processor) publish(events []event.Event) {
	if p.eventBus == nil {
		return
	}
	for _, evt := range events {
		p.eventBus.Publish(evt.Type, evt)
	}
}

// Journal returns up to limit committed instructions starting at sequence from
func (p *Processor) Journal(from uint64, limit int) ([]database.JournalEntry, error) {
	return p.db.JournalEntries(from, limit, nil)
}
