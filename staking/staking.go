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

// Package staking implements the staking program: pools with a
// program-controlled vault, per-tier stake accounts made of deposit lots,
// reward accrual and lockup-checked withdrawal.
package staking

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/program"
	"github.com/blinklabs-io/volya/token"
	"github.com/blinklabs-io/volya/tokenomics"
)

const (
	PoolSeed           = "staking_pool"
	VaultSeed          = "vault"
	VaultAuthoritySeed = "vault_authority"
	StakeAccountSeed   = "stake_account"
)

var ErrNoTiers = errors.New("no staking tiers configured")

// Engine executes staking instructions. It keeps no state between
// instructions beyond its configuration
type Engine struct {
	programID address.Address
	ledger    *token.Ledger
	tiers     []tokenomics.Tier
}

// New returns a staking engine for the program ID. Tier indexes used by
// stake accounts are positions in tiers
func New(
	programID address.Address,
	ledger *token.Ledger,
	tiers []tokenomics.Tier,
) (*Engine, error) {
	if len(tiers) == 0 {
		return nil, ErrNoTiers
	}
	if len(tiers) > 256 {
		return nil, fmt.Errorf("too many staking tiers: %d", len(tiers))
	}
	return &Engine{
		programID: programID,
		ledger:    ledger,
		tiers:     append([]tokenomics.Tier(nil), tiers...),
	}, nil
}

func (e *Engine) ProgramID() address.Address {
	return e.programID
}

// Tiers returns a copy of the configured tiers
func (e *Engine) Tiers() []tokenomics.Tier {
	return append([]tokenomics.Tier(nil), e.tiers...)
}

// Tier returns the tier at index, or false if there is none
func (e *Engine) Tier(index uint8) (tokenomics.Tier, bool) {
	if int(index) >= len(e.tiers) {
		return tokenomics.Tier{}, false
	}
	return e.tiers[index], true
}

func (e *Engine) PoolAddress(mint address.Address) (address.Address, uint8, error) {
	return address.Derive(
		[][]byte{[]byte(PoolSeed), mint.Bytes()},
		e.programID,
	)
}

func (e *Engine) VaultAddress(pool address.Address) (address.Address, uint8, error) {
	return address.Derive(
		[][]byte{[]byte(VaultSeed), pool.Bytes()},
		e.programID,
	)
}

func (e *Engine) VaultAuthorityAddress(pool address.Address) (address.Address, uint8, error) {
	return address.Derive(
		[][]byte{[]byte(VaultAuthoritySeed), pool.Bytes()},
		e.programID,
	)
}

func (e *Engine) StakeAccountAddress(
	pool address.Address,
	owner address.Address,
	tier uint8,
) (address.Address, uint8, error) {
	return address.Derive(
		[][]byte{
			[]byte(StakeAccountSeed),
			pool.Bytes(),
			owner.Bytes(),
			{tier},
		},
		e.programID,
	)
}

// GetPool loads a staking pool
func (e *Engine) GetPool(
	ctx *program.Context,
	pool address.Address,
) (*models.StakingPool, error) {
	ret, err := ctx.DB().GetStakingPool(pool, ctx.Txn)
	if err != nil {
		if errors.Is(err, models.ErrStakingPoolNotFound) {
			return nil, fmt.Errorf("%w: staking pool %s", program.ErrAccountNotFound, pool)
		}
		return nil, err
	}
	return ret, nil
}

// GetStakeAccount loads a stake account with its deposit lots
func (e *Engine) GetStakeAccount(
	ctx *program.Context,
	stakeAccount address.Address,
) (*models.StakeAccount, error) {
	ret, err := ctx.DB().GetStakeAccount(stakeAccount, ctx.Txn)
	if err != nil {
		if errors.Is(err, models.ErrStakeAccountNotFound) {
			return nil, fmt.Errorf("%w: stake account %s", program.ErrAccountNotFound, stakeAccount)
		}
		return nil, err
	}
	return ret, nil
}
