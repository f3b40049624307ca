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

package models

import (
	"errors"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database/types"
)

var (
	ErrGovernanceConfigNotFound = errors.New("governance config not found")
	ErrProposalNotFound         = errors.New("proposal not found")
	ErrVoteRecordNotFound       = errors.New("vote record not found")
)

// ProposalState constants represent the lifecycle state of a proposal.
// Draft exists only before a proposal is persisted
const (
	ProposalStateDraft    = 0
	ProposalStateActive   = 1
	ProposalStatePassed   = 2
	ProposalStateRejected = 3
	ProposalStateExpired  = 4
)

// ProposalType constants
const (
	ProposalTypeParameterChange = 0
	ProposalTypeTreasurySpend   = 1
	ProposalTypeProtocolUpgrade = 2
	ProposalTypeGeneral         = 3
)

// Vote constants represent the vote choice on a proposal.
const (
	VoteNo  = 0
	VoteYes = 1
)

type GovernanceConfig struct {
	ID                uint            `gorm:"primarykey"`
	Address           address.Address `gorm:"uniqueIndex;size:32;not null"`
	Authority         address.Address `gorm:"size:32;not null"`
	TokenMint         address.Address `gorm:"uniqueIndex;size:32;not null"`
	ProposalThreshold types.Uint64
	CirculatingSupply types.Uint64
	ProposalCount     uint64
	VotingPeriod      int64 // seconds
	QuorumPercent     uint8
	Bump              uint8
}

func (GovernanceConfig) TableName() string {
	return "governance_config"
}

type Proposal struct {
	ID           uint            `gorm:"primarykey"`
	Address      address.Address `gorm:"uniqueIndex;size:32;not null"`
	Governance   address.Address `gorm:"uniqueIndex:idx_proposal_number,priority:1;size:32;not null"`
	Number       uint64          `gorm:"uniqueIndex:idx_proposal_number,priority:2;not null"`
	Proposer     address.Address `gorm:"index;size:32;not null"`
	Title        string          `gorm:"size:64"`
	Description  string          `gorm:"size:512"`
	MetadataHash []byte          `gorm:"size:32"`
	YesWeight    types.Uint64
	NoWeight     types.Uint64
	SubmittedAt  int64
	Deadline     int64 `gorm:"index"`
	FinalizedAt  *int64
	Type         uint8
	State        uint8 `gorm:"index"`
	Bump         uint8
}

func (Proposal) TableName() string {
	return "proposal"
}

// VoteRecord is the single vote cast by a voter on a proposal
type VoteRecord struct {
	ID       uint            `gorm:"primarykey"`
	Address  address.Address `gorm:"uniqueIndex;size:32;not null"`
	Proposal address.Address `gorm:"index:idx_vote_proposal;uniqueIndex:idx_vote_unique,priority:1;size:32;not null"`
	Voter    address.Address `gorm:"uniqueIndex:idx_vote_unique,priority:2;size:32;not null"`
	Weight   types.Uint64
	CastAt   int64
	Choice   uint8 `gorm:"not null"` // 0=No, 1=Yes
	Bump     uint8
}

func (VoteRecord) TableName() string {
	return "vote_record"
}
