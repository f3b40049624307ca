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

package main

import (
	"math"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/processor"
	"github.com/blinklabs-io/volya/program"
	"github.com/blinklabs-io/volya/staking"
	"github.com/spf13/cobra"
)

func poolCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Manage the staking pool of a mint",
	}
	cmd.AddCommand(
		poolInitCommand(),
		poolFundCommand(),
		poolPauseCommand("pause", true),
		poolPauseCommand("resume", false),
		poolSetRateCommand(),
		poolShowCommand(),
	)
	return cmd
}

func rewardRateFlag(s *session, cmd *cobra.Command) int64 {
	rate, _ := cmd.Flags().GetUint64("reward-rate")
	if !cmd.Flags().Changed("reward-rate") {
		rate = s.tokenomics.Extensions.Tokenomics.Staking.BaseRewardRate
	}
	if rate > math.MaxInt64 {
		s.fail("invalid --reward-rate", program.ErrInvalidParameter)
	}
	return int64(rate) // #nosec G115
}

func poolInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the staking pool with the configured keypair as authority",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			receipt := s.submit(processor.KindInitializePool, &processor.InitializePoolArgs{
				Mint:           s.mint(cmd),
				BaseRewardRate: rewardRateFlag(s, cmd),
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	cmd.Flags().Uint64("reward-rate", 0, "base reward rate (defaults to the tokenomics file)")
	return cmd
}

func poolFundCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Transfer reward tokens into the pool vault",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			receipt := s.submit(processor.KindFundVault, &processor.FundVaultArgs{
				Pool:   s.pool(s.mint(cmd)),
				Amount: s.amount(cmd),
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	addAmountFlags(cmd)
	return cmd
}

func poolPauseCommand(use string, paused bool) *cobra.Command {
	short := "Pause staking in the pool"
	if !paused {
		short = "Resume staking in the pool"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			receipt := s.submit(processor.KindSetPoolPaused, &processor.SetPoolPausedArgs{
				Pool:   s.pool(s.mint(cmd)),
				Paused: paused,
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	return cmd
}

func poolSetRateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-rate",
		Short: "Update the base reward rate of the pool",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			receipt := s.submit(processor.KindUpdateRewardRate, &processor.UpdateRewardRateArgs{
				Pool:           s.pool(s.mint(cmd)),
				BaseRewardRate: rewardRateFlag(s, cmd),
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	cmd.Flags().Uint64("reward-rate", 0, "new base reward rate")
	_ = cmd.MarkFlagRequired("reward-rate")
	return cmd
}

type poolView struct {
	Pool  *models.StakingPool `json:"pool"`
	Vault *staking.Vault      `json:"vault"`
}

func poolShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the staking pool and its vault",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, false)
			defer s.close()
			pool := s.pool(s.mint(cmd))
			var ret poolView
			err := s.node.Processor().View(func(ctx *program.Context) error {
				var err error
				engine := s.node.Processor().Staking()
				if ret.Pool, err = engine.GetPool(ctx, pool); err != nil {
					return err
				}
				ret.Vault, err = engine.GetVault(ctx, pool)
				return err
			})
			if err != nil {
				s.fail("failed to load pool", err)
			}
			s.output(ret)
		},
	}
	addMintFlag(cmd)
	return cmd
}

// stakeAccount returns the stake account of the signer for --tier
func (s *session) stakeAccount(cmd *cobra.Command) (address.Address, address.Address) {
	pool := s.pool(s.mint(cmd))
	account, _, err := s.node.Processor().Staking().StakeAccountAddress(
		pool,
		s.signer.Address(),
		s.tier(cmd),
	)
	if err != nil {
		s.fail("failed to derive stake account", err)
	}
	return pool, account
}

func stakeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stake",
		Short: "Stake tokens into a lockup tier",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			receipt := s.submit(processor.KindStake, &processor.StakeArgs{
				Pool:   s.pool(s.mint(cmd)),
				Tier:   s.tier(cmd),
				Amount: s.amount(cmd),
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	addAmountFlags(cmd)
	addTierFlag(cmd)
	return cmd
}

func unstakeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unstake",
		Short: "Withdraw unlocked principal together with the accrued reward",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			pool, account := s.stakeAccount(cmd)
			receipt := s.submit(processor.KindUnstake, &processor.UnstakeArgs{
				Pool:         pool,
				StakeAccount: account,
				Amount:       s.amount(cmd),
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	addAmountFlags(cmd)
	addTierFlag(cmd)
	return cmd
}

func claimCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim the accrued reward of a stake account",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			pool, account := s.stakeAccount(cmd)
			receipt := s.submit(processor.KindClaimRewards, &processor.ClaimRewardsArgs{
				Pool:         pool,
				StakeAccount: account,
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	addTierFlag(cmd)
	return cmd
}
