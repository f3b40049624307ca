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

package governance

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/database/types"
	"github.com/blinklabs-io/volya/program"
)

// InitializeGovernance creates the governance config for a mint at
// derive(["governance", mint]). Only the mint authority may create it
func (e *Engine) InitializeGovernance(
	ctx *program.Context,
	authority address.Address,
	mint address.Address,
	params Params,
) (*models.GovernanceConfig, error) {
	if authority.IsZero() {
		return nil, fmt.Errorf("%w: zero authority", program.ErrInvalidParameter)
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	mintAccount, err := e.ledger.GetMint(ctx, mint)
	if err != nil {
		if errors.Is(err, program.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: unknown mint %s", program.ErrInvalidParameter, mint)
		}
		return nil, err
	}
	if mintAccount.MintAuthority != authority {
		return nil, fmt.Errorf(
			"%w: %s is not the mint authority of %s",
			program.ErrUnauthorized,
			authority,
			mint,
		)
	}
	addr, bump, err := e.GovernanceAddress(mint)
	if err != nil {
		return nil, err
	}
	db := ctx.DB()
	if _, err := db.GetGovernanceConfig(addr, ctx.Txn); err == nil {
		return nil, fmt.Errorf("%w: governance config %s", program.ErrAlreadyInitialized, addr)
	} else if !errors.Is(err, models.ErrGovernanceConfigNotFound) {
		return nil, err
	}
	config := &models.GovernanceConfig{
		Address:           addr,
		Authority:         authority,
		TokenMint:         mint,
		ProposalThreshold: types.Uint64(params.ProposalThreshold),
		CirculatingSupply: types.Uint64(params.CirculatingSupply),
		VotingPeriod:      params.VotingPeriod,
		QuorumPercent:     params.QuorumPercent,
		Bump:              bump,
	}
	if err := db.SetGovernanceConfig(config, ctx.Txn); err != nil {
		return nil, err
	}
	ctx.Logger.Info(
		"initialized governance",
		"component", "governance",
		"governance", addr.String(),
		"mint", mint.String(),
		"quorum_percent", params.QuorumPercent,
	)
	return config, nil
}

// UpdateGovernance replaces the tunable parameters. Proposals already
// created keep their deadline, but finalization uses the current quorum
func (e *Engine) UpdateGovernance(
	ctx *program.Context,
	authority address.Address,
	governance address.Address,
	params Params,
) (*models.GovernanceConfig, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	config, err := e.GetConfig(ctx, governance)
	if err != nil {
		return nil, err
	}
	if config.Authority != authority {
		return nil, fmt.Errorf(
			"%w: %s is not the governance authority",
			program.ErrUnauthorized,
			authority,
		)
	}
	config.ProposalThreshold = types.Uint64(params.ProposalThreshold)
	config.CirculatingSupply = types.Uint64(params.CirculatingSupply)
	config.VotingPeriod = params.VotingPeriod
	config.QuorumPercent = params.QuorumPercent
	if err := ctx.DB().SetGovernanceConfig(config, ctx.Txn); err != nil {
		return nil, err
	}
	return config, nil
}

// CreateProposal opens a proposal for voting. The proposer must hold at
// least the proposal threshold. A zero voting period uses the config default
func (e *Engine) CreateProposal(
	ctx *program.Context,
	proposer address.Address,
	governance address.Address,
	metadata Metadata,
	votingPeriod int64,
) (*models.Proposal, error) {
	if err := metadata.validate(); err != nil {
		return nil, err
	}
	if votingPeriod < 0 {
		return nil, fmt.Errorf(
			"%w: negative voting period %d",
			program.ErrInvalidParameter,
			votingPeriod,
		)
	}
	config, err := e.GetConfig(ctx, governance)
	if err != nil {
		return nil, err
	}
	if votingPeriod == 0 {
		votingPeriod = config.VotingPeriod
	}
	deadline := ctx.Now + votingPeriod
	if deadline < ctx.Now {
		return nil, fmt.Errorf("%w: voting period overflow", program.ErrInvalidParameter)
	}
	balance, err := e.ledger.BalanceOf(ctx, config.TokenMint, proposer)
	if err != nil {
		return nil, err
	}
	if balance < uint64(config.ProposalThreshold) {
		return nil, fmt.Errorf(
			"%w: balance %d below proposal threshold %d",
			program.ErrInsufficientStake,
			balance,
			config.ProposalThreshold,
		)
	}
	number := config.ProposalCount
	addr, bump, err := e.ProposalAddress(governance, number)
	if err != nil {
		return nil, err
	}
	db := ctx.DB()
	if _, err := db.GetProposal(addr, ctx.Txn); err == nil {
		return nil, fmt.Errorf("%w: proposal %s", program.ErrAlreadyInitialized, addr)
	} else if !errors.Is(err, models.ErrProposalNotFound) {
		return nil, err
	}
	proposal := &models.Proposal{
		Address:      addr,
		Governance:   governance,
		Number:       number,
		Proposer:     proposer,
		Title:        metadata.Title,
		Description:  metadata.Description,
		MetadataHash: metadata.Hash(),
		SubmittedAt:  ctx.Now,
		Deadline:     deadline,
		Type:         metadata.Type,
		State:        models.ProposalStateActive,
		Bump:         bump,
	}
	if err := db.SetProposal(proposal, ctx.Txn); err != nil {
		return nil, err
	}
	config.ProposalCount++
	if err := db.SetGovernanceConfig(config, ctx.Txn); err != nil {
		return nil, err
	}
	ctx.Logger.Info(
		"created proposal",
		"component", "governance",
		"proposal", addr.String(),
		"number", number,
		"proposer", proposer.String(),
		"deadline", deadline,
	)
	return proposal, nil
}

// VoteOnProposal records a vote weighted by the voter's token balance at the
// time of voting. Each voter may vote once per proposal
func (e *Engine) VoteOnProposal(
	ctx *program.Context,
	voter address.Address,
	proposal address.Address,
	choice uint8,
) (*models.VoteRecord, error) {
	if choice != models.VoteNo && choice != models.VoteYes {
		return nil, fmt.Errorf("%w: unknown vote choice %d", program.ErrInvalidParameter, choice)
	}
	tmpProposal, err := e.GetProposal(ctx, proposal)
	if err != nil {
		return nil, err
	}
	if tmpProposal.State != models.ProposalStateActive {
		return nil, fmt.Errorf(
			"%w: proposal is %s",
			program.ErrVotingClosed,
			ProposalStateName(tmpProposal.State),
		)
	}
	if ctx.Now >= tmpProposal.Deadline {
		return nil, fmt.Errorf(
			"%w: deadline %d passed",
			program.ErrVotingClosed,
			tmpProposal.Deadline,
		)
	}
	addr, bump, err := e.VoteRecordAddress(proposal, voter)
	if err != nil {
		return nil, err
	}
	db := ctx.DB()
	if _, err := db.GetVoteRecord(addr, ctx.Txn); err == nil {
		return nil, fmt.Errorf("%w: %s on %s", program.ErrDuplicateVote, voter, proposal)
	} else if !errors.Is(err, models.ErrVoteRecordNotFound) {
		return nil, err
	}
	config, err := e.GetConfig(ctx, tmpProposal.Governance)
	if err != nil {
		return nil, err
	}
	weight, err := e.ledger.BalanceOf(ctx, config.TokenMint, voter)
	if err != nil {
		return nil, err
	}
	if weight == 0 {
		return nil, fmt.Errorf("%w: voter holds no tokens", program.ErrInsufficientStake)
	}
	var ok bool
	if choice == models.VoteYes {
		tmpProposal.YesWeight, ok = checkedAddWeight(tmpProposal.YesWeight, weight)
	} else {
		tmpProposal.NoWeight, ok = checkedAddWeight(tmpProposal.NoWeight, weight)
	}
	if !ok {
		return nil, fmt.Errorf("%w: vote weight overflow", program.ErrInvalidParameter)
	}
	record := &models.VoteRecord{
		Address:  addr,
		Proposal: proposal,
		Voter:    voter,
		Weight:   types.Uint64(weight),
		CastAt:   ctx.Now,
		Choice:   choice,
		Bump:     bump,
	}
	if err := db.AddVoteRecord(record, ctx.Txn); err != nil {
		return nil, err
	}
	if err := db.SetProposal(tmpProposal, ctx.Txn); err != nil {
		return nil, err
	}
	ctx.Logger.Debug(
		"recorded vote",
		"component", "governance",
		"proposal", proposal.String(),
		"voter", voter.String(),
		"choice", choice,
		"weight", weight,
	)
	return record, nil
}

// FinalizeProposal settles a proposal after its deadline. Anyone may call it.
// Without quorum the proposal expires; otherwise it passes if yes outweighs no
func (e *Engine) FinalizeProposal(
	ctx *program.Context,
	caller address.Address,
	proposal address.Address,
) (*models.Proposal, error) {
	tmpProposal, err := e.GetProposal(ctx, proposal)
	if err != nil {
		return nil, err
	}
	if tmpProposal.State != models.ProposalStateActive {
		return nil, fmt.Errorf(
			"%w: proposal is %s",
			program.ErrAlreadyFinalized,
			ProposalStateName(tmpProposal.State),
		)
	}
	if ctx.Now < tmpProposal.Deadline {
		return nil, fmt.Errorf(
			"%w: voting ends at %d",
			program.ErrNotReady,
			tmpProposal.Deadline,
		)
	}
	config, err := e.GetConfig(ctx, tmpProposal.Governance)
	if err != nil {
		return nil, err
	}
	yes := uint64(tmpProposal.YesWeight)
	no := uint64(tmpProposal.NoWeight)
	switch {
	case !QuorumMet(yes, no, config.QuorumPercent, uint64(config.CirculatingSupply)):
		tmpProposal.State = models.ProposalStateExpired
	case yes > no:
		tmpProposal.State = models.ProposalStatePassed
	default:
		tmpProposal.State = models.ProposalStateRejected
	}
	finalizedAt := ctx.Now
	tmpProposal.FinalizedAt = &finalizedAt
	if err := ctx.DB().SetProposal(tmpProposal, ctx.Txn); err != nil {
		return nil, err
	}
	ctx.Logger.Info(
		"finalized proposal",
		"component", "governance",
		"proposal", proposal.String(),
		"caller", caller.String(),
		"state", ProposalStateName(tmpProposal.State),
		"yes", yes,
		"no", no,
	)
	return tmpProposal, nil
}
