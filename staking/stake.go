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

// UnstakeResult describes a completed withdrawal
type UnstakeResult struct {
	// Amount is the principal returned to the owner
	Amount uint64
	// Reward is the outstanding reward paid out before the withdrawal
	Reward uint64
	// Closed is set when the stake account reached zero and was removed
	Closed bool
}

// Stake moves amount from the owner's token account into the pool vault and
// records it as a new deposit lot on the owner's stake account for tier.
// Each lot unlocks on its own, so a top-up never extends the lockup of
// earlier deposits. The reward accrued so far is settled before the amount
// changes
func (e *Engine) Stake(
	ctx *program.Context,
	owner address.Address,
	pool address.Address,
	tier uint8,
	amount uint64,
) (*models.StakeAccount, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", program.ErrInvalidParameter)
	}
	tierCfg, ok := e.Tier(tier)
	if !ok {
		return nil, fmt.Errorf("%w: unknown tier %d", program.ErrInvalidParameter, tier)
	}
	tmpPool, err := e.GetPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	if tmpPool.Paused {
		return nil, fmt.Errorf("%w: %s", program.ErrPoolPaused, pool)
	}
	source, _, err := e.ledger.AccountAddress(tmpPool.TokenMint, owner)
	if err != nil {
		return nil, err
	}
	balance, err := e.ledger.BalanceOf(ctx, tmpPool.TokenMint, owner)
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
	totalStaked := uint64(tmpPool.TotalStaked) + amount
	if totalStaked < amount {
		return nil, fmt.Errorf("%w: pool total overflow", program.ErrInvalidParameter)
	}
	accountAddr, accountBump, err := e.StakeAccountAddress(pool, owner, tier)
	if err != nil {
		return nil, err
	}
	db := ctx.DB()
	account, err := db.GetStakeAccount(accountAddr, ctx.Txn)
	if err != nil {
		if !errors.Is(err, models.ErrStakeAccountNotFound) {
			return nil, err
		}
		account = &models.StakeAccount{
			Address:       accountAddr,
			Owner:         owner,
			Pool:          pool,
			StartTime:     ctx.Now,
			LastClaimTime: ctx.Now,
			Tier:          tier,
			Bump:          accountBump,
		}
	} else {
		// Settle the reward earned by the current amount up to now
		accrued, err := e.accruedReward(account, tierCfg.AprTargetPercent, ctx.Now)
		if err != nil {
			return nil, err
		}
		account.AccruedReward = types.Uint64(accrued)
		account.LastClaimTime = ctx.Now
	}
	if uint64(account.Amount)+amount < amount {
		return nil, fmt.Errorf("%w: stake overflow", program.ErrInvalidParameter)
	}
	if err := e.ledger.Transfer(ctx, owner, source, tmpPool.Vault, amount); err != nil {
		return nil, err
	}
	account.Amount += types.Uint64(amount)
	account.Deposits = append(account.Deposits, models.StakeDeposit{
		Amount:     types.Uint64(amount),
		StartTime:  ctx.Now,
		UnlockTime: ctx.Now + tierCfg.Lockup(),
	})
	if err := db.SetStakeAccount(account, ctx.Txn); err != nil {
		return nil, err
	}
	tmpPool.TotalStaked = types.Uint64(totalStaked)
	if err := db.SetStakingPool(tmpPool, ctx.Txn); err != nil {
		return nil, err
	}
	ctx.Logger.Debug(
		"staked tokens",
		"component", "staking",
		"owner", owner.String(),
		"stake_account", accountAddr.String(),
		"tier", tierCfg.Name,
		"amount", amount,
	)
	return account, nil
}

// PendingReward returns the reward a claim at now would pay
func (e *Engine) PendingReward(
	ctx *program.Context,
	stakeAccount address.Address,
) (uint64, error) {
	account, err := e.GetStakeAccount(ctx, stakeAccount)
	if err != nil {
		return 0, err
	}
	tierCfg, ok := e.Tier(account.Tier)
	if !ok {
		return 0, fmt.Errorf("%w: unknown tier %d", program.ErrInvalidParameter, account.Tier)
	}
	return e.accruedReward(account, tierCfg.AprTargetPercent, ctx.Now)
}

// ClaimRewards pays the outstanding reward of a stake account from the
// vault's reward float. Staked principal is never used to pay rewards
func (e *Engine) ClaimRewards(
	ctx *program.Context,
	owner address.Address,
	pool address.Address,
	stakeAccount address.Address,
) (uint64, error) {
	tmpPool, account, err := e.ownedStakeAccount(ctx, owner, pool, stakeAccount)
	if err != nil {
		return 0, err
	}
	reward, err := e.checkedReward(ctx, tmpPool, account)
	if err != nil {
		return 0, err
	}
	if err := e.payReward(ctx, tmpPool, owner, reward); err != nil {
		return 0, err
	}
	account.AccruedReward = 0
	account.LastClaimTime = ctx.Now
	if err := ctx.DB().SetStakeAccount(account, ctx.Txn); err != nil {
		return 0, err
	}
	ctx.Logger.Debug(
		"claimed reward",
		"component", "staking",
		"owner", owner.String(),
		"stake_account", stakeAccount.String(),
		"reward", reward,
	)
	return reward, nil
}

// Unstake withdraws amount of principal from unlocked deposit lots, oldest
// first, after paying the outstanding reward. The stake account is closed
// when nothing remains
func (e *Engine) Unstake(
	ctx *program.Context,
	owner address.Address,
	pool address.Address,
	stakeAccount address.Address,
	amount uint64,
) (*UnstakeResult, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", program.ErrInvalidParameter)
	}
	tmpPool, account, err := e.ownedStakeAccount(ctx, owner, pool, stakeAccount)
	if err != nil {
		return nil, err
	}
	if tmpPool.Paused {
		return nil, fmt.Errorf("%w: %s", program.ErrPoolPaused, pool)
	}
	if amount > uint64(account.Amount) {
		return nil, fmt.Errorf(
			"%w: staked %d, requested %d",
			program.ErrInsufficientStake,
			account.Amount,
			amount,
		)
	}
	if unlocked := UnlockedAmount(account, ctx.Now); unlocked < amount {
		return nil, fmt.Errorf(
			"%w: %d unlocked, requested %d, next unlock at %d",
			program.ErrLockupActive,
			unlocked,
			amount,
			NextUnlockTime(account, ctx.Now),
		)
	}
	reward, err := e.checkedReward(ctx, tmpPool, account)
	if err != nil {
		return nil, err
	}
	if err := e.payReward(ctx, tmpPool, owner, reward); err != nil {
		return nil, err
	}
	signer, err := e.newVaultSigner(tmpPool)
	if err != nil {
		return nil, err
	}
	destination, _, err := e.ledger.AccountAddress(tmpPool.TokenMint, owner)
	if err != nil {
		return nil, err
	}
	if err := signer.transfer(ctx, destination, amount); err != nil {
		return nil, err
	}
	account.Deposits = withdrawLots(account.Deposits, amount, ctx.Now)
	account.Amount -= types.Uint64(amount)
	account.AccruedReward = 0
	account.LastClaimTime = ctx.Now
	tmpPool.TotalStaked -= types.Uint64(amount)
	db := ctx.DB()
	result := &UnstakeResult{
		Amount: amount,
		Reward: reward,
	}
	if account.Amount == 0 {
		if err := db.DeleteStakeAccount(stakeAccount, ctx.Txn); err != nil {
			return nil, err
		}
		result.Closed = true
	} else if err := db.SetStakeAccount(account, ctx.Txn); err != nil {
		return nil, err
	}
	if err := db.SetStakingPool(tmpPool, ctx.Txn); err != nil {
		return nil, err
	}
	ctx.Logger.Debug(
		"unstaked tokens",
		"component", "staking",
		"owner", owner.String(),
		"stake_account", stakeAccount.String(),
		"amount", amount,
		"reward", reward,
		"closed", result.Closed,
	)
	return result, nil
}

func (e *Engine) ownedStakeAccount(
	ctx *program.Context,
	owner address.Address,
	pool address.Address,
	stakeAccount address.Address,
) (*models.StakingPool, *models.StakeAccount, error) {
	tmpPool, err := e.GetPool(ctx, pool)
	if err != nil {
		return nil, nil, err
	}
	account, err := e.GetStakeAccount(ctx, stakeAccount)
	if err != nil {
		return nil, nil, err
	}
	if account.Owner != owner {
		return nil, nil, fmt.Errorf(
			"%w: %s does not own stake account %s",
			program.ErrUnauthorized,
			owner,
			stakeAccount,
		)
	}
	if account.Pool != pool {
		return nil, nil, fmt.Errorf(
			"%w: stake account %s belongs to pool %s",
			program.ErrInvalidParameter,
			stakeAccount,
			account.Pool,
		)
	}
	return tmpPool, account, nil
}

func (e *Engine) accruedReward(
	account *models.StakeAccount,
	aprPercent uint32,
	now int64,
) (uint64, error) {
	earned, ok := Reward(uint64(account.Amount), aprPercent, now-account.LastClaimTime)
	if !ok {
		return 0, fmt.Errorf("%w: reward overflow", program.ErrInvalidParameter)
	}
	total := uint64(account.AccruedReward) + earned
	if total < earned {
		return 0, fmt.Errorf("%w: reward overflow", program.ErrInvalidParameter)
	}
	return total, nil
}

// checkedReward returns the outstanding reward of the account and makes
// sure the vault's reward float can cover it
func (e *Engine) checkedReward(
	ctx *program.Context,
	pool *models.StakingPool,
	account *models.StakeAccount,
) (uint64, error) {
	tierCfg, ok := e.Tier(account.Tier)
	if !ok {
		return 0, fmt.Errorf("%w: unknown tier %d", program.ErrInvalidParameter, account.Tier)
	}
	reward, err := e.accruedReward(account, tierCfg.AprTargetPercent, ctx.Now)
	if err != nil {
		return 0, err
	}
	if reward == 0 {
		return 0, nil
	}
	vault, err := e.vaultOf(ctx, pool)
	if err != nil {
		return 0, err
	}
	if available := rewardFloat(vault, pool); available < reward {
		return 0, fmt.Errorf(
			"%w: reward %d, float %d",
			program.ErrVaultUnderfunded,
			reward,
			available,
		)
	}
	return reward, nil
}

func (e *Engine) payReward(
	ctx *program.Context,
	pool *models.StakingPool,
	owner address.Address,
	reward uint64,
) error {
	if reward == 0 {
		return nil
	}
	signer, err := e.newVaultSigner(pool)
	if err != nil {
		return err
	}
	destination, _, err := e.ledger.AccountAddress(pool.TokenMint, owner)
	if err != nil {
		return err
	}
	return signer.transfer(ctx, destination, reward)
}

// withdrawLots removes amount from the unlocked lots, oldest first. The
// caller has checked that enough is unlocked
func withdrawLots(
	lots []models.StakeDeposit,
	amount uint64,
	now int64,
) []models.StakeDeposit {
	remaining := amount
	ret := make([]models.StakeDeposit, 0, len(lots))
	for _, lot := range lots {
		if remaining > 0 && lot.UnlockTime <= now {
			take := min(remaining, uint64(lot.Amount))
			lot.Amount -= types.Uint64(take)
			remaining -= take
		}
		if lot.Amount > 0 {
			ret = append(ret, lot)
		}
	}
	return ret
}
