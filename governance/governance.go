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

// Package governance implements the governance program: a per-mint
// configuration, token-weighted proposals, one vote per holder and
// quorum-checked finalization.
package governance

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/database/types"
	"github.com/blinklabs-io/volya/program"
	"github.com/blinklabs-io/volya/token"
	"github.com/blinklabs-io/volya/tokenomics"
	"github.com/holiman/uint256"
)

const (
	GovernanceSeed = "governance"
	ProposalSeed   = "proposal"
	VoteRecordSeed = "vote_record"

	MaxTitleLength       = 64
	MaxDescriptionLength = 512

	DefaultVotingPeriod = int64(tokenomics.DefaultVotingPeriodDays) * 86400
)

var proposalTypeNames = map[uint8]string{
	models.ProposalTypeParameterChange: "parameter-change",
	models.ProposalTypeTreasurySpend:   "treasury-spend",
	models.ProposalTypeProtocolUpgrade: "protocol-upgrade",
	models.ProposalTypeGeneral:         "general",
}

var proposalStateNames = map[uint8]string{
	models.ProposalStateDraft:    "draft",
	models.ProposalStateActive:   "active",
	models.ProposalStatePassed:   "passed",
	models.ProposalStateRejected: "rejected",
	models.ProposalStateExpired:  "expired",
}

// ProposalTypeName returns the display name of a proposal type
func ProposalTypeName(t uint8) string {
	if name, ok := proposalTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", t)
}

// ParseProposalType returns the proposal type with the given name
func ParseProposalType(name string) (uint8, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range proposalTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown proposal type %q", program.ErrInvalidParameter, name)
}

// ProposalStateName returns the display name of a proposal state
func ProposalStateName(s uint8) string {
	if name, ok := proposalStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", s)
}

// Params are the tunable governance parameters
type Params struct {
	ProposalThreshold uint64
	CirculatingSupply uint64
	// VotingPeriod is the default voting period in seconds. Zero selects
	// DefaultVotingPeriod
	VotingPeriod  int64
	QuorumPercent uint8
}

// ParamsFromTokenomics returns the governance parameters of a token record.
// Whole-token amounts in the record are converted to base units
func ParamsFromTokenomics(record *tokenomics.Record) (Params, error) {
	cfg := record.Extensions.Tokenomics
	threshold, ok := record.BaseUnits(cfg.Governance.ProposalThresholdUA)
	if !ok {
		return Params{}, fmt.Errorf("%w: proposal threshold overflow", program.ErrInvalidParameter)
	}
	supply, ok := record.BaseUnits(cfg.TotalSupply)
	if !ok {
		return Params{}, fmt.Errorf("%w: total supply overflow", program.ErrInvalidParameter)
	}
	return Params{
		ProposalThreshold: threshold,
		CirculatingSupply: supply,
		VotingPeriod:      cfg.Governance.VotingPeriod(),
		QuorumPercent:     cfg.Governance.QuorumPercent,
	}, nil
}

func (p *Params) validate() error {
	if p.QuorumPercent < 1 || p.QuorumPercent > 100 {
		return fmt.Errorf(
			"%w: quorum %d%% outside [1,100]",
			program.ErrInvalidParameter,
			p.QuorumPercent,
		)
	}
	if p.VotingPeriod < 0 {
		return fmt.Errorf(
			"%w: negative voting period %d",
			program.ErrInvalidParameter,
			p.VotingPeriod,
		)
	}
	if p.VotingPeriod == 0 {
		p.VotingPeriod = DefaultVotingPeriod
	}
	if p.CirculatingSupply == 0 {
		return fmt.Errorf("%w: circulating supply must be positive", program.ErrInvalidParameter)
	}
	return nil
}

// Metadata describes a proposal
type Metadata struct {
	Title       string
	Description string
	Type        uint8
}

func (m Metadata) validate() error {
	if m.Title == "" {
		return fmt.Errorf("%w: empty title", program.ErrInvalidParameter)
	}
	if len(m.Title) > MaxTitleLength {
		return fmt.Errorf(
			"%w: title is %d bytes, limit %d",
			program.ErrInvalidParameter,
			len(m.Title),
			MaxTitleLength,
		)
	}
	if len(m.Description) > MaxDescriptionLength {
		return fmt.Errorf(
			"%w: description is %d bytes, limit %d",
			program.ErrInvalidParameter,
			len(m.Description),
			MaxDescriptionLength,
		)
	}
	if _, ok := proposalTypeNames[m.Type]; !ok {
		return fmt.Errorf("%w: unknown proposal type %d", program.ErrInvalidParameter, m.Type)
	}
	return nil
}

// Hash returns the SHA-256 digest stored with the proposal
func (m Metadata) Hash() []byte {
	h := sha256.New()
	h.Write([]byte{m.Type})
	h.Write([]byte(m.Title))
	h.Write([]byte{0})
	h.Write([]byte(m.Description))
	return h.Sum(nil)
}

// Engine executes governance instructions
type Engine struct {
	programID address.Address
	ledger    *token.Ledger
}

func New(programID address.Address, ledger *token.Ledger) *Engine {
	return &Engine{
		programID: programID,
		ledger:    ledger,
	}
}

func (e *Engine) ProgramID() address.Address {
	return e.programID
}

func (e *Engine) GovernanceAddress(mint address.Address) (address.Address, uint8, error) {
	return address.Derive(
		[][]byte{[]byte(GovernanceSeed), mint.Bytes()},
		e.programID,
	)
}

func (e *Engine) ProposalAddress(
	governance address.Address,
	number uint64,
) (address.Address, uint8, error) {
	return address.Derive(
		[][]byte{
			[]byte(ProposalSeed),
			governance.Bytes(),
			address.Uint64Seed(number),
		},
		e.programID,
	)
}

func (e *Engine) VoteRecordAddress(
	proposal address.Address,
	voter address.Address,
) (address.Address, uint8, error) {
	return address.Derive(
		[][]byte{[]byte(VoteRecordSeed), proposal.Bytes(), voter.Bytes()},
		e.programID,
	)
}

// QuorumMet reports whether yes+no reaches quorumPercent of supply. The
// comparison is (yes+no)*100 >= quorumPercent*supply in 256-bit arithmetic,
// so nothing is truncated
func QuorumMet(yes, no uint64, quorumPercent uint8, supply uint64) bool {
	turnout := new(uint256.Int).Add(uint256.NewInt(yes), uint256.NewInt(no))
	turnout.Mul(turnout, uint256.NewInt(100))
	required := new(uint256.Int).Mul(
		uint256.NewInt(uint64(quorumPercent)),
		uint256.NewInt(supply),
	)
	return !turnout.Lt(required)
}

// GetConfig loads a governance config
func (e *Engine) GetConfig(
	ctx *program.Context,
	governance address.Address,
) (*models.GovernanceConfig, error) {
	ret, err := ctx.DB().GetGovernanceConfig(governance, ctx.Txn)
	if err != nil {
		if errors.Is(err, models.ErrGovernanceConfigNotFound) {
			return nil, fmt.Errorf("%w: governance config %s", program.ErrAccountNotFound, governance)
		}
		return nil, err
	}
	return ret, nil
}

// GetProposal loads a proposal
func (e *Engine) GetProposal(
	ctx *program.Context,
	proposal address.Address,
) (*models.Proposal, error) {
	ret, err := ctx.DB().GetProposal(proposal, ctx.Txn)
	if err != nil {
		if errors.Is(err, models.ErrProposalNotFound) {
			return nil, fmt.Errorf("%w: proposal %s", program.ErrAccountNotFound, proposal)
		}
		return nil, err
	}
	return ret, nil
}

// Proposals returns the proposals of a governance config ordered by number
func (e *Engine) Proposals(
	ctx *program.Context,
	governance address.Address,
) ([]models.Proposal, error) {
	return ctx.DB().GetProposals(governance, ctx.Txn)
}

// Votes returns the votes cast on a proposal
func (e *Engine) Votes(
	ctx *program.Context,
	proposal address.Address,
) ([]models.VoteRecord, error) {
	return ctx.DB().GetVoteRecords(proposal, ctx.Txn)
}

func checkedAddWeight(a types.Uint64, b uint64) (types.Uint64, bool) {
	sum := uint64(a) + b
	return types.Uint64(sum), sum >= b
}
