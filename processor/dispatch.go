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
	"fmt"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/event"
	"github.com/blinklabs-io/volya/governance"
	"github.com/blinklabs-io/volya/program"
)

type handlerFunc func(
	p *Processor,
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error)

var handlers = map[uint8]handlerFunc{
	KindCreateMint:           (*Processor).createMint,
	KindCreateTokenAccount:   (*Processor).createTokenAccount,
	KindMintTo:               (*Processor).mintTo,
	KindTransfer:             (*Processor).transfer,
	KindInitializePool:       (*Processor).initializePool,
	KindFundVault:            (*Processor).fundVault,
	KindSetPoolPaused:        (*Processor).setPoolPaused,
	KindUpdateRewardRate:     (*Processor).updateRewardRate,
	KindStake:                (*Processor).stake,
	KindUnstake:              (*Processor).unstake,
	KindClaimRewards:         (*Processor).claimRewards,
	KindInitializeGovernance: (*Processor).initializeGovernance,
	KindUpdateGovernance:     (*Processor).updateGovernance,
	KindCreateProposal:       (*Processor).createProposal,
	KindVoteOnProposal:       (*Processor).voteOnProposal,
	KindFinalizeProposal:     (*Processor).finalizeProposal,
}

func (p *Processor) dispatch(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	handler, ok := handlers[instr.Kind]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %w: %d", program.ErrInvalidParameter, ErrUnknownInstruction, instr.Kind)
	}
	return handler(p, ctx, signer, instr)
}

func (p *Processor) createMint(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args CreateMintArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	mint, err := p.ledger.CreateMint(ctx, args.Mint, signer, args.Decimals)
	if err != nil {
		return nil, nil, err
	}
	evt := event.NewEvent(
		event.TokenMintCreatedEventType,
		event.TokenMintCreatedEvent{
			Mint:      mint.Address,
			Authority: mint.MintAuthority,
			Decimals:  mint.Decimals,
		},
		ctx.Now,
	)
	return &MintResult{
		Mint:      mint.Address,
		Authority: mint.MintAuthority,
		Decimals:  mint.Decimals,
	}, []event.Event{evt}, nil
}

func (p *Processor) createTokenAccount(
	ctx *program.Context,
	_ address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args CreateTokenAccountArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	account, err := p.ledger.CreateAccount(ctx, args.Mint, args.Owner)
	if err != nil {
		return nil, nil, err
	}
	evt := event.NewEvent(
		event.TokenAccountCreatedEventType,
		event.TokenAccountCreatedEvent{
			Account: account.Address,
			Mint:    account.Mint,
			Owner:   account.Owner,
		},
		ctx.Now,
	)
	return tokenAccountResult(account), []event.Event{evt}, nil
}

func tokenAccountResult(account *models.TokenAccount) *TokenAccountResult {
	return &TokenAccountResult{
		Account: account.Address,
		Mint:    account.Mint,
		Owner:   account.Owner,
		Amount:  uint64(account.Amount),
	}
}

func (p *Processor) mintTo(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args MintToArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	if err := p.ledger.MintTo(ctx, signer, args.Mint, args.Destination, args.Amount); err != nil {
		return nil, nil, err
	}
	account, err := p.ledger.GetAccount(ctx, args.Destination)
	if err != nil {
		return nil, nil, err
	}
	evt := event.NewEvent(
		event.TokensMintedEventType,
		event.TokensMintedEvent{
			Mint:        args.Mint,
			Destination: args.Destination,
			Amount:      args.Amount,
		},
		ctx.Now,
	)
	return tokenAccountResult(account), []event.Event{evt}, nil
}

func (p *Processor) transfer(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args TransferArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	if err := p.ledger.Transfer(ctx, signer, args.Source, args.Destination, args.Amount); err != nil {
		return nil, nil, err
	}
	evt := event.NewEvent(
		event.TokensTransferredEventType,
		event.TokensTransferredEvent{
			Source:      args.Source,
			Destination: args.Destination,
			Amount:      args.Amount,
		},
		ctx.Now,
	)
	return &TransferResult{
		Source:      args.Source,
		Destination: args.Destination,
		Amount:      args.Amount,
	}, []event.Event{evt}, nil
}

func poolResult(pool *models.StakingPool) *PoolResult {
	return &PoolResult{
		Pool:           pool.Address,
		Mint:           pool.TokenMint,
		Vault:          pool.Vault,
		VaultAuthority: pool.VaultAuthority,
		BaseRewardRate: uint64(pool.BaseRewardRate),
		TotalStaked:    uint64(pool.TotalStaked),
		Paused:         pool.Paused,
	}
}

func poolUpdatedEvent(pool *models.StakingPool, now int64) event.Event {
	return event.NewEvent(
		event.PoolUpdatedEventType,
		event.PoolUpdatedEvent{
			Pool:           pool.Address,
			Paused:         pool.Paused,
			BaseRewardRate: uint64(pool.BaseRewardRate),
		},
		now,
	)
}

func (p *Processor) initializePool(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args InitializePoolArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	pool, vault, err := p.staking.InitializePool(ctx, signer, args.Mint, args.BaseRewardRate)
	if err != nil {
		return nil, nil, err
	}
	evt := event.NewEvent(
		event.PoolInitializedEventType,
		event.PoolInitializedEvent{
			Pool:           pool.Address,
			Mint:           pool.TokenMint,
			Vault:          vault.Address,
			Authority:      pool.Authority,
			BaseRewardRate: uint64(pool.BaseRewardRate),
		},
		ctx.Now,
	)
	return poolResult(pool), []event.Event{evt}, nil
}

func (p *Processor) fundVault(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args FundVaultArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	vault, err := p.staking.FundVault(ctx, signer, args.Pool, args.Amount)
	if err != nil {
		return nil, nil, err
	}
	evt := event.NewEvent(
		event.VaultFundedEventType,
		event.VaultFundedEvent{
			Pool:    args.Pool,
			Funder:  signer,
			Amount:  args.Amount,
			Balance: vault.Balance,
		},
		ctx.Now,
	)
	return &VaultResult{
		Pool:    vault.Pool,
		Vault:   vault.Address,
		Balance: vault.Balance,
	}, []event.Event{evt}, nil
}

func (p *Processor) setPoolPaused(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args SetPoolPausedArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	pool, err := p.staking.SetPaused(ctx, signer, args.Pool, args.Paused)
	if err != nil {
		return nil, nil, err
	}
	return poolResult(pool), []event.Event{poolUpdatedEvent(pool, ctx.Now)}, nil
}

func (p *Processor) updateRewardRate(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args UpdateRewardRateArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	pool, err := p.staking.UpdateRewardRate(ctx, signer, args.Pool, args.BaseRewardRate)
	if err != nil {
		return nil, nil, err
	}
	return poolResult(pool), []event.Event{poolUpdatedEvent(pool, ctx.Now)}, nil
}

func (p *Processor) stake(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args StakeArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	account, err := p.staking.Stake(ctx, signer, args.Pool, args.Tier, args.Amount)
	if err != nil {
		return nil, nil, err
	}
	ret := &StakeResult{
		Pool:         args.Pool,
		StakeAccount: account.Address,
		Tier:         account.Tier,
		Principal:    uint64(account.Amount),
	}
	if n := len(account.Deposits); n > 0 {
		ret.UnlockTime = account.Deposits[n-1].UnlockTime
	}
	evt := event.NewEvent(
		event.StakedEventType,
		event.StakedEvent{
			Pool:         args.Pool,
			StakeAccount: account.Address,
			Owner:        signer,
			Tier:         account.Tier,
			Amount:       args.Amount,
			Principal:    uint64(account.Amount),
		},
		ctx.Now,
	)
	return ret, []event.Event{evt}, nil
}

func (p *Processor) unstake(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args UnstakeArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	res, err := p.staking.Unstake(ctx, signer, args.Pool, args.StakeAccount, args.Amount)
	if err != nil {
		return nil, nil, err
	}
	evt := event.NewEvent(
		event.UnstakedEventType,
		event.UnstakedEvent{
			Pool:         args.Pool,
			StakeAccount: args.StakeAccount,
			Owner:        signer,
			Amount:       res.Amount,
			Reward:       res.Reward,
			Closed:       res.Closed,
		},
		ctx.Now,
	)
	return &UnstakeResult{
		Pool:         args.Pool,
		StakeAccount: args.StakeAccount,
		Amount:       res.Amount,
		Reward:       res.Reward,
		Closed:       res.Closed,
	}, []event.Event{evt}, nil
}

func (p *Processor) claimRewards(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args ClaimRewardsArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	reward, err := p.staking.ClaimRewards(ctx, signer, args.Pool, args.StakeAccount)
	if err != nil {
		return nil, nil, err
	}
	evt := event.NewEvent(
		event.RewardsClaimedEventType,
		event.RewardsClaimedEvent{
			Pool:         args.Pool,
			StakeAccount: args.StakeAccount,
			Owner:        signer,
			Amount:       reward,
		},
		ctx.Now,
	)
	return &ClaimResult{
		Pool:         args.Pool,
		StakeAccount: args.StakeAccount,
		Reward:       reward,
	}, []event.Event{evt}, nil
}

func governanceParams(params GovernanceParams) governance.Params {
	return governance.Params{
		ProposalThreshold: params.ProposalThreshold,
		CirculatingSupply: params.CirculatingSupply,
		VotingPeriod:      params.VotingPeriod,
		QuorumPercent:     params.QuorumPercent,
	}
}

func governanceConfigured(
	config *models.GovernanceConfig,
	now int64,
) (*GovernanceResult, event.Event) {
	ret := &GovernanceResult{
		Governance:        config.Address,
		Mint:              config.TokenMint,
		ProposalThreshold: uint64(config.ProposalThreshold),
		CirculatingSupply: uint64(config.CirculatingSupply),
		VotingPeriod:      config.VotingPeriod,
		QuorumPercent:     config.QuorumPercent,
	}
	evt := event.NewEvent(
		event.GovernanceConfiguredEventType,
		event.GovernanceConfiguredEvent{
			Governance:        ret.Governance,
			Mint:              ret.Mint,
			ProposalThreshold: ret.ProposalThreshold,
			CirculatingSupply: ret.CirculatingSupply,
			VotingPeriod:      ret.VotingPeriod,
			QuorumPercent:     ret.QuorumPercent,
		},
		now,
	)
	return ret, evt
}

func (p *Processor) initializeGovernance(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args InitializeGovernanceArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	config, err := p.governance.InitializeGovernance(ctx, signer, args.Mint, governanceParams(args.Params))
	if err != nil {
		return nil, nil, err
	}
	ret, evt := governanceConfigured(config, ctx.Now)
	return ret, []event.Event{evt}, nil
}

func (p *Processor) updateGovernance(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args UpdateGovernanceArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	config, err := p.governance.UpdateGovernance(ctx, signer, args.Governance, governanceParams(args.Params))
	if err != nil {
		return nil, nil, err
	}
	ret, evt := governanceConfigured(config, ctx.Now)
	return ret, []event.Event{evt}, nil
}

func proposalResult(proposal *models.Proposal) *ProposalResult {
	return &ProposalResult{
		Proposal:  proposal.Address,
		Number:    proposal.Number,
		State:     proposal.State,
		Deadline:  proposal.Deadline,
		YesWeight: uint64(proposal.YesWeight),
		NoWeight:  uint64(proposal.NoWeight),
	}
}

func (p *Processor) createProposal(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args CreateProposalArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	metadata := governance.Metadata{
		Title:       args.Title,
		Description: args.Description,
		Type:        args.Type,
	}
	proposal, err := p.governance.CreateProposal(ctx, signer, args.Governance, metadata, args.VotingPeriod)
	if err != nil {
		return nil, nil, err
	}
	evt := event.NewEvent(
		event.ProposalCreatedEventType,
		event.ProposalCreatedEvent{
			Governance: args.Governance,
			Proposal:   proposal.Address,
			Number:     proposal.Number,
			Proposer:   signer,
			Deadline:   proposal.Deadline,
		},
		ctx.Now,
	)
	return proposalResult(proposal), []event.Event{evt}, nil
}

func (p *Processor) voteOnProposal(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args VoteOnProposalArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	record, err := p.governance.VoteOnProposal(ctx, signer, args.Proposal, args.Choice)
	if err != nil {
		return nil, nil, err
	}
	evt := event.NewEvent(
		event.VoteCastEventType,
		event.VoteCastEvent{
			Proposal: args.Proposal,
			Voter:    signer,
			Choice:   record.Choice,
			Weight:   uint64(record.Weight),
		},
		ctx.Now,
	)
	return &VoteResult{
		VoteRecord: record.Address,
		Proposal:   args.Proposal,
		Choice:     record.Choice,
		Weight:     uint64(record.Weight),
	}, []event.Event{evt}, nil
}

func (p *Processor) finalizeProposal(
	ctx *program.Context,
	signer address.Address,
	instr *Instruction,
) (any, []event.Event, error) {
	var args FinalizeProposalArgs
	if err := decodeArgs(instr, &args); err != nil {
		return nil, nil, err
	}
	proposal, err := p.governance.FinalizeProposal(ctx, signer, args.Proposal)
	if err != nil {
		return nil, nil, err
	}
	evt := event.NewEvent(
		event.ProposalFinalizedEventType,
		event.ProposalFinalizedEvent{
			Proposal:  proposal.Address,
			State:     proposal.State,
			YesWeight: uint64(proposal.YesWeight),
			NoWeight:  uint64(proposal.NoWeight),
		},
		ctx.Now,
	)
	return proposalResult(proposal), []event.Event{evt}, nil
}
