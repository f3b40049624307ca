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

package processor

import (
	"errors"
	"time"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/program"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type processorMetrics struct {
	instructions *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	totalStaked  *prometheus.GaugeVec
}

func (p *Processor) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	p.metrics = &processorMetrics{
		instructions: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volya_processor_instructions_total",
				Help: "instructions processed by kind and result",
			},
			[]string{"kind", "result"},
		),
		duration: promautoFactory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "volya_processor_instruction_duration_seconds",
				Help:    "time to verify and execute an instruction",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"kind"},
		),
		totalStaked: promautoFactory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "volya_staking_total_staked",
				Help: "principal staked in each pool, in base units",
			},
			[]string{"pool"},
		),
	}
}

// resultLabel names the outcome of an instruction for metrics
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, ErrInstructionReplayed) {
		return "replayed"
	}
	if code := program.ErrorCode(err); code >= 0 {
		return program.Errors[code].Error()
	}
	return "internal"
}

func (p *Processor) observe(kind string, start time.Time, err error) {
	if p.metrics == nil {
		return
	}
	p.metrics.instructions.WithLabelValues(kind, resultLabel(err)).Inc()
	p.metrics.duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

type poolStake struct {
	pool  address.Address
	total uint64
}

// stakedTotal reads the pool total after a staking instruction so the gauge
// can be updated once the instruction commits
func (p *Processor) stakedTotal(ctx *program.Context, result any) (poolStake, bool) {
	if p.metrics == nil {
		return poolStake{}, false
	}
	var pool address.Address
	switch res := result.(type) {
	case *PoolResult:
		return poolStake{pool: res.Pool, total: res.TotalStaked}, true
	case *StakeResult:
		pool = res.Pool
	case *UnstakeResult:
		pool = res.Pool
	default:
		return poolStake{}, false
	}
	tmpPool, err := p.staking.GetPool(ctx, pool)
	if err != nil {
		return poolStake{}, false
	}
	return poolStake{pool: pool, total: uint64(tmpPool.TotalStaked)}, true
}

func (p *Processor) setStakedGauge(staked poolStake) {
	p.metrics.totalStaked.WithLabelValues(staked.pool.String()).Set(float64(staked.total))
}
