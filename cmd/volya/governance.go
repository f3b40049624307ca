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
	"fmt"
	"strings"
	"time"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/governance"
	"github.com/blinklabs-io/volya/processor"
	"github.com/blinklabs-io/volya/program"
	"github.com/spf13/cobra"
)

func governanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "governance",
		Short: "Manage the governance config of a mint",
	}
	cmd.AddCommand(
		governanceInitCommand(),
		governanceUpdateCommand(),
		governanceShowCommand(),
	)
	return cmd
}

func addGovernanceParamFlags(cmd *cobra.Command) {
	cmd.Flags().Uint8("quorum", 0, "quorum percentage (defaults to the tokenomics file)")
	cmd.Flags().Duration("voting-period", 0, "default voting period (defaults to the tokenomics file)")
	cmd.Flags().Uint64("threshold", 0, "proposal threshold in base units (defaults to the tokenomics file)")
	cmd.Flags().Uint64("supply", 0, "circulating supply in base units (defaults to the tokenomics file)")
}

// governanceParams returns the tokenomics governance parameters with any flag overrides applied
func (s *session) governanceParams(cmd *cobra.Command) processor.GovernanceParams {
	params, err := governance.ParamsFromTokenomics(s.tokenomics)
	if err != nil {
		s.fail("invalid governance parameters", err)
	}
	flags := cmd.Flags()
	if flags.Changed("quorum") {
		params.QuorumPercent, _ = flags.GetUint8("quorum")
	}
	if flags.Changed("voting-period") {
		period, _ := flags.GetDuration("voting-period")
		params.VotingPeriod = int64(period / time.Second)
	}
	if flags.Changed("threshold") {
		params.ProposalThreshold, _ = flags.GetUint64("threshold")
	}
	if flags.Changed("supply") {
		params.CirculatingSupply, _ = flags.GetUint64("supply")
	}
	return processor.GovernanceParams{
		ProposalThreshold: params.ProposalThreshold,
		CirculatingSupply: params.CirculatingSupply,
		VotingPeriod:      params.VotingPeriod,
		QuorumPercent:     params.QuorumPercent,
	}
}

func governanceInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize governance with the configured keypair as authority",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			receipt := s.submit(processor.KindInitializeGovernance, &processor.InitializeGovernanceArgs{
				Mint:   s.mint(cmd),
				Params: s.governanceParams(cmd),
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	addGovernanceParamFlags(cmd)
	return cmd
}

func governanceUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace the governance parameters",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			receipt := s.submit(processor.KindUpdateGovernance, &processor.UpdateGovernanceArgs{
				Governance: s.governance(s.mint(cmd)),
				Params:     s.governanceParams(cmd),
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	addGovernanceParamFlags(cmd)
	return cmd
}

func governanceShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the governance config",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, false)
			defer s.close()
			s.showAccount(s.governance(s.mint(cmd)))
		},
	}
	addMintFlag(cmd)
	return cmd
}

func proposalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Create, vote on and finalize proposals",
	}
	cmd.AddCommand(
		proposalCreateCommand(),
		proposalVoteCommand(),
		proposalFinalizeCommand(),
		proposalShowCommand(),
	)
	return cmd
}

func addProposalFlag(cmd *cobra.Command) {
	cmd.Flags().Uint64("number", 0, "proposal number")
	_ = cmd.MarkFlagRequired("number")
}

// proposal returns the address of the proposal named by --number
func (s *session) proposal(cmd *cobra.Command) address.Address {
	number, _ := cmd.Flags().GetUint64("number")
	ret, _, err := s.node.Processor().Governance().ProposalAddress(
		s.governance(s.mint(cmd)),
		number,
	)
	if err != nil {
		s.fail("failed to derive proposal address", err)
	}
	return ret
}

func proposalCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a proposal",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			title, _ := cmd.Flags().GetString("title")
			description, _ := cmd.Flags().GetString("description")
			typeName, _ := cmd.Flags().GetString("type")
			proposalType, err := governance.ParseProposalType(typeName)
			if err != nil {
				s.fail("invalid --type", err)
			}
			period, _ := cmd.Flags().GetDuration("voting-period")
			receipt := s.submit(processor.KindCreateProposal, &processor.CreateProposalArgs{
				Governance:   s.governance(s.mint(cmd)),
				Title:        title,
				Description:  description,
				Type:         proposalType,
				VotingPeriod: int64(period / time.Second),
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	cmd.Flags().String("title", "", "proposal title")
	cmd.Flags().String("description", "", "proposal description")
	cmd.Flags().String("type", "general", "proposal type")
	cmd.Flags().Duration("voting-period", 0, "voting period (defaults to the governance config)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func parseChoice(value string) (uint8, error) {
	switch strings.ToLower(value) {
	case "yes", "y", "1":
		return models.VoteYes, nil
	case "no", "n", "0":
		return models.VoteNo, nil
	}
	return 0, fmt.Errorf("%w: vote must be yes or no", program.ErrInvalidParameter)
}

func proposalVoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote yes|no",
		Short: "Vote on an active proposal with the token balance of the configured keypair",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			choice, err := parseChoice(args[0])
			if err != nil {
				s.fail("invalid vote", err)
			}
			receipt := s.submit(processor.KindVoteOnProposal, &processor.VoteOnProposalArgs{
				Proposal: s.proposal(cmd),
				Choice:   choice,
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	addProposalFlag(cmd)
	return cmd
}

func proposalFinalizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Finalize a proposal after its voting deadline",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			receipt := s.submit(processor.KindFinalizeProposal, &processor.FinalizeProposalArgs{
				Proposal: s.proposal(cmd),
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	addProposalFlag(cmd)
	return cmd
}

type proposalView struct {
	*models.Proposal
	TypeName  string              `json:"type_name"`
	StateName string              `json:"state_name"`
	Votes     []models.VoteRecord `json:"votes,omitempty"`
}

func proposalShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a proposal, or every proposal without --number",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, false)
			defer s.close()
			engine := s.node.Processor().Governance()
			var ret []proposalView
			err := s.node.Processor().View(func(ctx *program.Context) error {
				var proposals []models.Proposal
				if cmd.Flags().Changed("number") {
					proposal, err := engine.GetProposal(ctx, s.proposal(cmd))
					if err != nil {
						return err
					}
					proposals = append(proposals, *proposal)
				} else {
					var err error
					proposals, err = engine.Proposals(ctx, s.governance(s.mint(cmd)))
					if err != nil {
						return err
					}
				}
				for i := range proposals {
					votes, err := engine.Votes(ctx, proposals[i].Address)
					if err != nil {
						return err
					}
					ret = append(ret, proposalView{
						Proposal:  &proposals[i],
						TypeName:  governance.ProposalTypeName(proposals[i].Type),
						StateName: governance.ProposalStateName(proposals[i].State),
						Votes:     votes,
					})
				}
				return nil
			})
			if err != nil {
				s.fail("failed to load proposals", err)
			}
			s.output(ret)
		},
	}
	addMintFlag(cmd)
	cmd.Flags().Uint64("number", 0, "proposal number")
	return cmd
}
