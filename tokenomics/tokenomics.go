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

// Package tokenomics loads the token configuration record (UA-token.json):
// total supply, staking tiers and governance parameters.
package tokenomics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	ModelTokenWeighted = "token-weighted"

	DefaultBaseRewardRate   = 1000
	DefaultVotingPeriodDays = 7
)

var ErrInvalidTokenomics = errors.New("invalid tokenomics")

// Tier is a lockup/reward policy. Tiers are static configuration, not accounts.
type Tier struct {
	Name             string `json:"name"`
	LockupDays       uint32 `json:"lockupDays"`
	AprTargetPercent uint32 `json:"aprTargetPercent"`
}

// Lockup returns the lockup duration in seconds
func (t Tier) Lockup() int64 {
	return int64(t.LockupDays) * int64(24*time.Hour/time.Second)
}

type Staking struct {
	Tiers          []Tier `json:"tiers"`
	BaseRewardRate uint64 `json:"baseRewardRate"`
}

type Governance struct {
	Model               string `json:"model"`
	ProposalThresholdUA uint64 `json:"proposalThresholdUA"`
	VotingPeriodDays    uint32 `json:"votingPeriodDays"`
	QuorumPercent       uint8  `json:"quorumPercent"`
}

// VotingPeriod returns the default voting period in seconds
func (g Governance) VotingPeriod() int64 {
	return int64(g.VotingPeriodDays) * int64(24*time.Hour/time.Second)
}

type Tokenomics struct {
	Staking     Staking    `json:"staking"`
	Governance  Governance `json:"governance"`
	TotalSupply uint64     `json:"totalSupply"`
}

type Extensions struct {
	Tokenomics Tokenomics `json:"tokenomics"`
}

// Record mirrors the on-disk token configuration file
type Record struct {
	Name       string     `json:"name"`
	Symbol     string     `json:"symbol"`
	Mint       string     `json:"mint,omitempty"`
	Extensions Extensions `json:"extensions"`
	Decimals   uint8      `json:"decimals"`
}

// Default returns the stock UA token configuration
func Default() *Record {
	return &Record{
		Name:     "UA Token",
		Symbol:   "UA",
		Decimals: 9,
		Extensions: Extensions{
			Tokenomics: Tokenomics{
				TotalSupply: 10_000_000,
				Staking: Staking{
					BaseRewardRate: DefaultBaseRewardRate,
					Tiers: []Tier{
						{Name: "Flex", LockupDays: 0, AprTargetPercent: 6},
						{Name: "Standard", LockupDays: 30, AprTargetPercent: 12},
						{Name: "Premium", LockupDays: 90, AprTargetPercent: 20},
					},
				},
				Governance: Governance{
					QuorumPercent:       10,
					ProposalThresholdUA: 50_000,
					Model:               ModelTokenWeighted,
					VotingPeriodDays:    DefaultVotingPeriodDays,
				},
			},
		},
	}
}

// Load reads and validates a token configuration file
func Load(path string) (*Record, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenomics file %q: %w", path, err)
	}
	rec, err := Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tokenomics file %q: %w", path, err)
	}
	return rec, nil
}

// Parse decodes and validates a token configuration record
func Parse(data []byte) (*Record, error) {
	var rec Record
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec.Extensions.Tokenomics.Governance.VotingPeriodDays == 0 {
		rec.Extensions.Tokenomics.Governance.VotingPeriodDays = DefaultVotingPeriodDays
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Record) Validate() error {
	t := r.Extensions.Tokenomics
	if t.TotalSupply == 0 {
		return fmt.Errorf("%w: total supply must be positive", ErrInvalidTokenomics)
	}
	if len(t.Staking.Tiers) == 0 {
		return fmt.Errorf("%w: no staking tiers", ErrInvalidTokenomics)
	}
	if len(t.Staking.Tiers) > 255 {
		return fmt.Errorf("%w: too many staking tiers", ErrInvalidTokenomics)
	}
	seen := make(map[string]bool, len(t.Staking.Tiers))
	for i, tier := range t.Staking.Tiers {
		if tier.Name == "" {
			return fmt.Errorf("%w: tier %d has no name", ErrInvalidTokenomics, i)
		}
		key := strings.ToLower(tier.Name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate tier %q", ErrInvalidTokenomics, tier.Name)
		}
		seen[key] = true
		if i == 0 {
			continue
		}
		prev := t.Staking.Tiers[i-1]
		if tier.LockupDays < prev.LockupDays {
			return fmt.Errorf(
				"%w: tiers must be ordered by lockup (%s before %s)",
				ErrInvalidTokenomics,
				prev.Name,
				tier.Name,
			)
		}
		if tier.AprTargetPercent < prev.AprTargetPercent {
			return fmt.Errorf(
				"%w: APR must not decrease with lockup (%s: %d%%, %s: %d%%)",
				ErrInvalidTokenomics,
				prev.Name,
				prev.AprTargetPercent,
				tier.Name,
				tier.AprTargetPercent,
			)
		}
	}
	g := t.Governance
	if g.QuorumPercent < 1 || g.QuorumPercent > 100 {
		return fmt.Errorf(
			"%w: quorum percent %d outside [1,100]",
			ErrInvalidTokenomics,
			g.QuorumPercent,
		)
	}
	if g.Model != ModelTokenWeighted {
		return fmt.Errorf(
			"%w: unsupported governance model %q",
			ErrInvalidTokenomics,
			g.Model,
		)
	}
	return nil
}

// Tiers returns the configured staking tiers
func (r *Record) Tiers() []Tier {
	return r.Extensions.Tokenomics.Staking.Tiers
}

// TierByName returns the tier index for a case-insensitive name
func (r *Record) TierByName(name string) (uint8, Tier, bool) {
	for i, tier := range r.Tiers() {
		if strings.EqualFold(tier.Name, name) {
			return uint8(i), tier, true //nolint:gosec
		}
	}
	return 0, Tier{}, false
}


// BaseUnits converts a whole-token amount to base units using the record's
// decimals. The second return value is false on overflow
func (r *Record) BaseUnits(whole uint64) (uint64, bool) {
	ret := whole
	for range r.Decimals {
		next := ret * 10
		if next/10 != ret {
			return 0, false
		}
		ret = next
	}
	return ret, true
}
