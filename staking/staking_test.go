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

package staking_test

import (
	"testing"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/program"
	"github.com/blinklabs-io/volya/staking"
	"github.com/blinklabs-io/volya/token"
	"github.com/blinklabs-io/volya/tokenomics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	day        = int64(86400)
	startTime  = int64(1700000000)
	tierFlex   = uint8(0)
	tierStd    = uint8(1)
	tierPrem   = uint8(2)
	aliceFunds = uint64(200_000)
)

var (
	tokenProgramID   = address.Address{0x06, 0xdd, 0xf6, 0xe1}
	stakingProgramID = address.Address{0x5a, 0x1e, 0x57, 0xa4}
	mintAddr         = testAddress(0x10)
	authority        = testAddress(0x11)
	alice            = testAddress(0x20)
	bob              = testAddress(0x21)
)

func testAddress(b byte) address.Address {
	var ret address.Address
	for i := range ret {
		ret[i] = b
	}
	return ret
}

type testEnv struct {
	ctx    *program.Context
	ledger *token.Ledger
	engine *staking.Engine
	pool   *models.StakingPool
	vault  *staking.Vault
}

// newTestEnv sets up a zero-decimal mint, funds alice, bob and the pool
// authority, and initializes the pool
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	txn := db.Transaction(true)
	t.Cleanup(func() {
		txn.Release()
		require.NoError(t, db.Close())
	})
	ctx := program.NewContext(txn, startTime, nil)
	ledger := token.New(tokenProgramID)
	engine, err := staking.New(stakingProgramID, ledger, tokenomics.Default().Tiers())
	require.NoError(t, err)
	_, err = ledger.CreateMint(ctx, mintAddr, authority, 0)
	require.NoError(t, err)
	for _, owner := range []address.Address{alice, bob, authority} {
		account, err := ledger.CreateAccount(ctx, mintAddr, owner)
		require.NoError(t, err)
		require.NoError(t, ledger.MintTo(ctx, authority, mintAddr, account.Address, aliceFunds))
	}
	pool, vault, err := engine.InitializePool(ctx, authority, mintAddr, tokenomics.DefaultBaseRewardRate)
	require.NoError(t, err)
	return &testEnv{
		ctx:    ctx,
		ledger: ledger,
		engine: engine,
		pool:   pool,
		vault:  vault,
	}
}

func (e *testEnv) balance(t *testing.T, owner address.Address) uint64 {
	t.Helper()
	ret, err := e.ledger.BalanceOf(e.ctx, mintAddr, owner)
	require.NoError(t, err)
	return ret
}

func (e *testEnv) vaultBalance(t *testing.T) uint64 {
	t.Helper()
	vault, err := e.engine.GetVault(e.ctx, e.pool.Address)
	require.NoError(t, err)
	return vault.Balance
}

func (e *testEnv) totalStaked(t *testing.T) uint64 {
	t.Helper()
	pool, err := e.engine.GetPool(e.ctx, e.pool.Address)
	require.NoError(t, err)
	return uint64(pool.TotalStaked)
}

func (e *testEnv) fund(t *testing.T, amount uint64) {
	t.Helper()
	_, err := e.engine.FundVault(e.ctx, authority, e.pool.Address, amount)
	require.NoError(t, err)
}

func TestInitializePool(t *testing.T) {
	env := newTestEnv(t)
	expectedPool, _, err := env.engine.PoolAddress(mintAddr)
	require.NoError(t, err)
	assert.Equal(t, expectedPool, env.pool.Address)
	assert.False(t, address.IsOnCurve(env.pool.Address.Bytes()))
	assert.False(t, address.IsOnCurve(env.vault.Authority.Bytes()))
	assert.Equal(t, uint64(tokenomics.DefaultBaseRewardRate), uint64(env.pool.BaseRewardRate))
	assert.Equal(t, startTime, env.pool.InitializedAt)
	assert.Zero(t, env.vaultBalance(t))
	vaultAccount, err := env.ledger.GetAccount(env.ctx, env.vault.Address)
	require.NoError(t, err)
	assert.Equal(t, env.vault.Authority, vaultAccount.Owner)

	_, _, err = env.engine.InitializePool(env.ctx, authority, mintAddr, 10)
	require.ErrorIs(t, err, program.ErrAlreadyInitialized)
	_, _, err = env.engine.InitializePool(env.ctx, authority, testAddress(0x99), 10)
	require.ErrorIs(t, err, program.ErrInvalidParameter)
	_, _, err = env.engine.InitializePool(env.ctx, authority, mintAddr, -1)
	require.ErrorIs(t, err, program.ErrInvalidParameter)
}

func TestInitializePoolRequiresMintAuthority(t *testing.T) {
	env := newTestEnv(t)
	otherMint := testAddress(0x30)
	_, err := env.ledger.CreateMint(env.ctx, otherMint, authority, 0)
	require.NoError(t, err)

	_, _, err = env.engine.InitializePool(env.ctx, bob, otherMint, 0)
	require.ErrorIs(t, err, program.ErrUnauthorized)
	poolAddr, _, err := env.engine.PoolAddress(otherMint)
	require.NoError(t, err)
	_, err = env.engine.GetPool(env.ctx, poolAddr)
	require.ErrorIs(t, err, program.ErrAccountNotFound)

	pool, _, err := env.engine.InitializePool(env.ctx, authority, otherMint, 0)
	require.NoError(t, err)
	assert.Equal(t, authority, pool.Authority)
	_, err = env.engine.SetPaused(env.ctx, bob, pool.Address, true)
	require.ErrorIs(t, err, program.ErrUnauthorized)
}

func TestReward(t *testing.T) {
	testDefs := []struct {
		amount   uint64
		apr      uint32
		elapsed  int64
		expected uint64
	}{
		{amount: 100_000, apr: 12, elapsed: 30 * day, expected: 986},
		{amount: 100_000, apr: 6, elapsed: 365 * day, expected: 6_000},
		{amount: 100_000, apr: 20, elapsed: 0, expected: 0},
		{amount: 100_000, apr: 20, elapsed: -5, expected: 0},
		{amount: 1, apr: 20, elapsed: day, expected: 0},
		// Intermediate product exceeds 64 bits
		{amount: 1 << 62, apr: 20, elapsed: 365 * day, expected: (1 << 62) / 5},
	}
	for _, testDef := range testDefs {
		got, ok := staking.Reward(testDef.amount, testDef.apr, testDef.elapsed)
		require.True(t, ok)
		assert.Equal(t, testDef.expected, got)
	}
	_, ok := staking.Reward(^uint64(0), 100, 1000*365*day)
	assert.False(t, ok)
}

func TestRewardMonotonic(t *testing.T) {
	var prev uint64
	for elapsed := int64(0); elapsed <= 100*day; elapsed += day / 3 {
		got, ok := staking.Reward(123_457, 12, elapsed)
		require.True(t, ok)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

// 100,000 staked in Standard for 30 days earns 986, after which the full
// principal can be withdrawn
func TestScenarioStandardThirtyDays(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 10_000)
	account, err := env.engine.Stake(env.ctx, alice, env.pool.Address, tierStd, 100_000)
	require.NoError(t, err)
	assert.Equal(t, aliceFunds-100_000, env.balance(t, alice))
	assert.Equal(t, uint64(100_000), env.totalStaked(t))

	env.ctx.Now = startTime + 30*day
	reward, err := env.engine.ClaimRewards(env.ctx, alice, env.pool.Address, account.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(986), reward)
	// Claiming again at the same instant pays nothing
	reward, err = env.engine.ClaimRewards(env.ctx, alice, env.pool.Address, account.Address)
	require.NoError(t, err)
	assert.Zero(t, reward)

	result, err := env.engine.Unstake(env.ctx, alice, env.pool.Address, account.Address, 100_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000), result.Amount)
	assert.Zero(t, result.Reward)
	assert.True(t, result.Closed)
	assert.Equal(t, aliceFunds+986, env.balance(t, alice))
	assert.Zero(t, env.totalStaked(t))
	assert.Equal(t, uint64(10_000-986), env.vaultBalance(t))
	_, err = env.engine.GetStakeAccount(env.ctx, account.Address)
	require.ErrorIs(t, err, program.ErrAccountNotFound)
}

func TestUnstakePaysOutstandingReward(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 10_000)
	account, err := env.engine.Stake(env.ctx, alice, env.pool.Address, tierStd, 100_000)
	require.NoError(t, err)
	env.ctx.Now = startTime + 30*day
	result, err := env.engine.Unstake(env.ctx, alice, env.pool.Address, account.Address, 100_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(986), result.Reward)
	assert.Equal(t, aliceFunds+986, env.balance(t, alice))
}

func TestScenarioEarlyUnstake(t *testing.T) {
	env := newTestEnv(t)
	account, err := env.engine.Stake(env.ctx, alice, env.pool.Address, tierStd, 100_000)
	require.NoError(t, err)
	env.ctx.Now = startTime + 10*day
	_, err = env.engine.Unstake(env.ctx, alice, env.pool.Address, account.Address, 100_000)
	require.ErrorIs(t, err, program.ErrLockupActive)
	// Nothing moved
	assert.Equal(t, uint64(100_000), env.vaultBalance(t))
	assert.Equal(t, uint64(100_000), env.totalStaked(t))
	got, err := env.engine.GetStakeAccount(env.ctx, account.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000), uint64(got.Amount))
}

func TestFlexTierUnstakeImmediately(t *testing.T) {
	env := newTestEnv(t)
	account, err := env.engine.Stake(env.ctx, alice, env.pool.Address, tierFlex, 5_000)
	require.NoError(t, err)
	result, err := env.engine.Unstake(env.ctx, alice, env.pool.Address, account.Address, 2_000)
	require.NoError(t, err)
	assert.False(t, result.Closed)
	got, err := env.engine.GetStakeAccount(env.ctx, account.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000), uint64(got.Amount))
	require.Len(t, got.Deposits, 1)
	assert.Equal(t, uint64(3_000), uint64(got.Deposits[0].Amount))
}

func TestTopUpKeepsLotsSeparate(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 50_000)
	account, err := env.engine.Stake(env.ctx, alice, env.pool.Address, tierStd, 60_000)
	require.NoError(t, err)
	env.ctx.Now = startTime + 20*day
	topUp, err := env.engine.Stake(env.ctx, alice, env.pool.Address, tierStd, 40_000)
	require.NoError(t, err)
	assert.Equal(t, account.Address, topUp.Address)
	assert.Equal(t, uint64(100_000), uint64(topUp.Amount))
	// Reward on the first lot up to the top-up is settled, not lost
	expectedAccrued, _ := staking.Reward(60_000, 12, 20*day)
	assert.Equal(t, expectedAccrued, uint64(topUp.AccruedReward))
	require.Len(t, topUp.Deposits, 2)
	assert.Equal(t, startTime+30*day, topUp.Deposits[0].UnlockTime)
	assert.Equal(t, startTime+50*day, topUp.Deposits[1].UnlockTime)

	// The first lot unlocks on its own schedule
	env.ctx.Now = startTime + 30*day
	_, err = env.engine.Unstake(env.ctx, alice, env.pool.Address, account.Address, 60_001)
	require.ErrorIs(t, err, program.ErrLockupActive)
	result, err := env.engine.Unstake(env.ctx, alice, env.pool.Address, account.Address, 60_000)
	require.NoError(t, err)
	laterReward, _ := staking.Reward(100_000, 12, 10*day)
	assert.Equal(t, expectedAccrued+laterReward, result.Reward)
	got, err := env.engine.GetStakeAccount(env.ctx, account.Address)
	require.NoError(t, err)
	require.Len(t, got.Deposits, 1)
	assert.Equal(t, uint64(40_000), uint64(got.Amount))
	assert.Equal(t, startTime+50*day, got.Deposits[0].UnlockTime)
	assert.Zero(t, uint64(got.AccruedReward))
}

func TestStakeValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.Stake(env.ctx, alice, env.pool.Address, tierStd, 0)
	require.ErrorIs(t, err, program.ErrInvalidParameter)
	_, err = env.engine.Stake(env.ctx, alice, env.pool.Address, 3, 10)
	require.ErrorIs(t, err, program.ErrInvalidParameter)
	_, err = env.engine.Stake(env.ctx, alice, env.pool.Address, tierPrem, aliceFunds+1)
	require.ErrorIs(t, err, program.ErrInsufficientBalance)
	_, err = env.engine.Stake(env.ctx, alice, testAddress(0x99), tierPrem, 10)
	require.ErrorIs(t, err, program.ErrAccountNotFound)
	assert.Equal(t, aliceFunds, env.balance(t, alice))
}

func TestClaimUnderfundedVault(t *testing.T) {
	env := newTestEnv(t)
	account, err := env.engine.Stake(env.ctx, alice, env.pool.Address, tierPrem, 100_000)
	require.NoError(t, err)
	env.ctx.Now = startTime + 90*day
	// Principal is never used for rewards
	_, err = env.engine.ClaimRewards(env.ctx, alice, env.pool.Address, account.Address)
	require.ErrorIs(t, err, program.ErrVaultUnderfunded)
	_, err = env.engine.Unstake(env.ctx, alice, env.pool.Address, account.Address, 100_000)
	require.ErrorIs(t, err, program.ErrVaultUnderfunded)
	assert.Equal(t, uint64(100_000), env.vaultBalance(t))

	pending, err := env.engine.PendingReward(env.ctx, account.Address)
	require.NoError(t, err)
	env.fund(t, pending)
	reward, err := env.engine.ClaimRewards(env.ctx, alice, env.pool.Address, account.Address)
	require.NoError(t, err)
	assert.Equal(t, pending, reward)
	assert.Equal(t, uint64(100_000), env.vaultBalance(t))
}

func TestStakeAccountOwnership(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 10_000)
	account, err := env.engine.Stake(env.ctx, alice, env.pool.Address, tierFlex, 1_000)
	require.NoError(t, err)
	_, err = env.engine.ClaimRewards(env.ctx, bob, env.pool.Address, account.Address)
	require.ErrorIs(t, err, program.ErrUnauthorized)
	_, err = env.engine.Unstake(env.ctx, bob, env.pool.Address, account.Address, 1_000)
	require.ErrorIs(t, err, program.ErrUnauthorized)
	_, err = env.engine.Unstake(env.ctx, alice, env.pool.Address, account.Address, 1_001)
	require.ErrorIs(t, err, program.ErrInsufficientStake)
	_, err = env.engine.Unstake(env.ctx, alice, env.pool.Address, account.Address, 0)
	require.ErrorIs(t, err, program.ErrInvalidParameter)
}

func TestPausedPool(t *testing.T) {
	env := newTestEnv(t)
	account, err := env.engine.Stake(env.ctx, alice, env.pool.Address, tierFlex, 1_000)
	require.NoError(t, err)
	_, err = env.engine.SetPaused(env.ctx, bob, env.pool.Address, true)
	require.ErrorIs(t, err, program.ErrUnauthorized)
	_, err = env.engine.SetPaused(env.ctx, authority, env.pool.Address, true)
	require.NoError(t, err)
	_, err = env.engine.Stake(env.ctx, alice, env.pool.Address, tierFlex, 1_000)
	require.ErrorIs(t, err, program.ErrPoolPaused)
	_, err = env.engine.Unstake(env.ctx, alice, env.pool.Address, account.Address, 1_000)
	require.ErrorIs(t, err, program.ErrPoolPaused)
	_, err = env.engine.SetPaused(env.ctx, authority, env.pool.Address, false)
	require.NoError(t, err)
	_, err = env.engine.Unstake(env.ctx, alice, env.pool.Address, account.Address, 1_000)
	require.NoError(t, err)
}

func TestUpdateRewardRate(t *testing.T) {
	env := newTestEnv(t)
	pool, err := env.engine.UpdateRewardRate(env.ctx, authority, env.pool.Address, 2_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000), uint64(pool.BaseRewardRate))
	_, err = env.engine.UpdateRewardRate(env.ctx, authority, env.pool.Address, -1)
	require.ErrorIs(t, err, program.ErrInvalidParameter)
	_, err = env.engine.UpdateRewardRate(env.ctx, alice, env.pool.Address, 5)
	require.ErrorIs(t, err, program.ErrUnauthorized)
}

func TestFundVault(t *testing.T) {
	env := newTestEnv(t)
	vault, err := env.engine.FundVault(env.ctx, bob, env.pool.Address, 700)
	require.NoError(t, err)
	assert.Equal(t, uint64(700), vault.Balance)
	_, err = env.engine.FundVault(env.ctx, bob, env.pool.Address, 0)
	require.ErrorIs(t, err, program.ErrInvalidParameter)
	_, err = env.engine.FundVault(env.ctx, bob, env.pool.Address, aliceFunds)
	require.ErrorIs(t, err, program.ErrInsufficientBalance)
}

// Tokens held by users plus tokens in the vault always equal the supply, and
// the vault always covers the staked principal
func TestConservation(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, 20_000)
	supply := 3 * aliceFunds
	check := func() {
		total := env.balance(t, alice) + env.balance(t, bob) + env.balance(t, authority) + env.vaultBalance(t)
		assert.Equal(t, supply, total)
		assert.GreaterOrEqual(t, env.vaultBalance(t), env.totalStaked(t))
	}
	a, err := env.engine.Stake(env.ctx, alice, env.pool.Address, tierFlex, 30_000)
	require.NoError(t, err)
	check()
	b, err := env.engine.Stake(env.ctx, bob, env.pool.Address, tierPrem, 70_000)
	require.NoError(t, err)
	check()
	env.ctx.Now += 45 * day
	_, err = env.engine.ClaimRewards(env.ctx, alice, env.pool.Address, a.Address)
	require.NoError(t, err)
	check()
	_, err = env.engine.Unstake(env.ctx, alice, env.pool.Address, a.Address, 10_000)
	require.NoError(t, err)
	check()
	env.ctx.Now += 45 * day
	_, err = env.engine.Unstake(env.ctx, bob, env.pool.Address, b.Address, 70_000)
	require.NoError(t, err)
	check()
	assert.Equal(t, uint64(20_000), env.totalStaked(t))
}

func TestStakeAccountsPerTier(t *testing.T) {
	env := newTestEnv(t)
	flex, err := env.engine.Stake(env.ctx, alice, env.pool.Address, tierFlex, 100)
	require.NoError(t, err)
	prem, err := env.engine.Stake(env.ctx, alice, env.pool.Address, tierPrem, 100)
	require.NoError(t, err)
	assert.NotEqual(t, flex.Address, prem.Address)
	accounts, err := env.ctx.DB().GetStakeAccountsByOwner(alice, env.ctx.Txn)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestNewRequiresTiers(t *testing.T) {
	_, err := staking.New(stakingProgramID, token.New(tokenProgramID), nil)
	require.ErrorIs(t, err, staking.ErrNoTiers)
}
