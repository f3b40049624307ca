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

package staking

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/database/types"
	"github.com/blinklabs-io/volya/program"
)

// InitializePool creates the staking pool for a mint together with its
// vault. The pool lives at derive(["staking_pool", mint]), so there is at
// most one pool per mint and the authority must be the mint authority
func (e *Engine) InitializePool(
	ctx *program.Context,
	authority address.Address,
	mint address.Address,
	baseRewardRate int64,
) (*models.StakingPool, *Vault, error) {
	if baseRewardRate < 0 {
		return nil, nil, fmt.Errorf(
			"%w: negative base reward rate %d",
			program.ErrInvalidParameter,
			baseRewardRate,
		)
	}
	if authority.IsZero() {
		return nil, nil, fmt.Errorf("%w: zero authority", program.ErrInvalidParameter)
	}
	mintAccount, err := e.ledger.GetMint(ctx, mint)
	if err != nil {
		if errors.Is(err, program.ErrAccountNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown mint %s", program.ErrInvalidParameter, mint)
		}
		return nil, nil, err
	}
	// One pool per mint, so only the mint authority may claim it
	if mintAccount.MintAuthority != authority {
		return nil, nil, fmt.Errorf(
			"%w: %s is not the mint authority of %s",
			program.ErrUnauthorized,
			authority,
			mint,
		)
	}
	poolAddr, poolBump, err := e.PoolAddress(mint)
	if err != nil {
		return nil, nil, err
	}
	db := ctx.DB()
	if _, err := db.GetStakingPool(poolAddr, ctx.Txn); err == nil {
		return nil, nil, fmt.Errorf(
			"%w: staking pool %s",
			program.ErrAlreadyInitialized,
			poolAddr,
		)
	} else if !errors.Is(err, models.ErrStakingPoolNotFound) {
		return nil, nil, err
	}
	vaultAddr, vaultBump, err := e.VaultAddress(poolAddr)
	if err != nil {
		return nil, nil, err
	}
	vaultAuthority, vaultAuthorityBump, err := e.VaultAuthorityAddress(poolAddr)
	if err != nil {
		return nil, nil, err
	}
	if _, err := e.ledger.CreateAccountAt(ctx, vaultAddr, mint, vaultAuthority); err != nil {
		return nil, nil, fmt.Errorf("create vault: %w", err)
	}
	pool := &models.StakingPool{
		Address:            poolAddr,
		Authority:          authority,
		TokenMint:          mint,
		Vault:              vaultAddr,
		VaultAuthority:     vaultAuthority,
		BaseRewardRate:     types.Uint64(baseRewardRate),
		InitializedAt:      ctx.Now,
		Bump:               poolBump,
		VaultBump:          vaultBump,
		VaultAuthorityBump: vaultAuthorityBump,
	}
	if err := db.SetStakingPool(pool, ctx.Txn); err != nil {
		return nil, nil, err
	}
	ctx.Logger.Info(
		"initialized staking pool",
		"component", "staking",
		"pool", poolAddr.String(),
		"mint", mint.String(),
		"vault", vaultAddr.String(),
	)
	return pool, &Vault{
		Address:   vaultAddr,
		Authority: vaultAuthority,
		Pool:      poolAddr,
	}, nil
}

// FundVault adds reward float to a pool's vault from the funder's token
// account. Anyone may fund a vault
func (e *Engine) FundVault(
	ctx *program.Context,
	funder address.Address,
	pool address.Address,
	amount uint64,
) (*Vault, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", program.ErrInvalidParameter)
	}
	tmpPool, err := e.GetPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	source, _, err := e.ledger.AccountAddress(tmpPool.TokenMint, funder)
	if err != nil {
		return nil, err
	}
	balance, err := e.ledger.BalanceOf(ctx, tmpPool.TokenMint, funder)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, fmt.Errorf(
			"%w: balance %d, need %d",
			program.ErrInsufficientBalance,
			balance,
			amount,
		)
	}
	if err := e.ledger.Transfer(ctx, funder, source, tmpPool.Vault, amount); err != nil {
		return nil, err
	}
	return e.vaultOf(ctx, tmpPool)
}

// SetPaused pauses or resumes staking and unstaking on a pool
func (e *Engine) SetPaused(
	ctx *program.Context,
	authority address.Address,
	pool address.Address,
	paused bool,
) (*models.StakingPool, error) {
	tmpPool, err := e.authorizedPool(ctx, authority, pool)
	if err != nil {
		return nil, err
	}
	tmpPool.Paused = paused
	if err := ctx.DB().SetStakingPool(tmpPool, ctx.Txn); err != nil {
		return nil, err
	}
	ctx.Logger.Info(
		"updated staking pool state",
		"component", "staking",
		"pool", pool.String(),
		"paused", paused,
	)
	return tmpPool, nil
}

// UpdateRewardRate changes a pool's base reward rate. The rate is recorded
// for clients only; Reward uses the tier APR
func (e *Engine) UpdateRewardRate(
	ctx *program.Context,
	authority address.Address,
	pool address.Address,
	baseRewardRate int64,
) (*models.StakingPool, error) {
	if baseRewardRate < 0 {
		return nil, fmt.Errorf(
			"%w: negative base reward rate %d",
			program.ErrInvalidParameter,
			baseRewardRate,
		)
	}
	tmpPool, err := e.authorizedPool(ctx, authority, pool)
	if err != nil {
		return nil, err
	}
	tmpPool.BaseRewardRate = types.Uint64(baseRewardRate)
	if err := ctx.DB().SetStakingPool(tmpPool, ctx.Txn); err != nil {
		return nil, err
	}
	return tmpPool, nil
}

func (e *Engine) authorizedPool(
	ctx *program.Context,
	authority address.Address,
	pool address.Address,
) (*models.StakingPool, error) {
	tmpPool, err := e.GetPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	if tmpPool.Authority != authority {
		return nil, fmt.Errorf(
			"%w: %s is not the pool authority",
			program.ErrUnauthorized,
			authority,
		)
	}
	return tmpPool, nil
}
