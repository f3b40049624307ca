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

package event

import "github.com/blinklabs-io/volya/address"

const (
	TokenMintCreatedEventType     = EventType("token.mint_created")
	TokenAccountCreatedEventType  = EventType("token.account_created")
	TokensMintedEventType         = EventType("token.minted")
	TokensTransferredEventType    = EventType("token.transferred")
	PoolInitializedEventType      = EventType("staking.pool_initialized")
	PoolUpdatedEventType          = EventType("staking.pool_updated")
	VaultFundedEventType          = EventType("staking.vault_funded")
	StakedEventType               = EventType("staking.staked")
	UnstakedEventType             = EventType("staking.unstaked")
	RewardsClaimedEventType       = EventType("staking.rewards_claimed")
	GovernanceConfiguredEventType = EventType("governance.configured")
	ProposalCreatedEventType      = EventType("governance.proposal_created")
	VoteCastEventType             = EventType("governance.vote_cast")
	ProposalFinalizedEventType    = EventType("governance.proposal_finalized")
	InstructionCommittedEventType = EventType("processor.instruction_committed")
)

type TokenMintCreatedEvent struct {
	Mint      address.Address
	Authority address.Address
	Decimals  uint8
}

type TokenAccountCreatedEvent struct {
	Account address.Address
	Mint    address.Address
	Owner   address.Address
}

type TokensMintedEvent struct {
	Mint        address.Address
	Destination address.Address
	Amount      uint64
}

type TokensTransferredEvent struct {
	Source      address.Address
	Destination address.Address
	Amount      uint64
}

type PoolInitializedEvent struct {
	Pool           address.Address
	Mint           address.Address
	Vault          address.Address
	Authority      address.Address
	BaseRewardRate uint64
}

// PoolUpdatedEvent is emitted when a pool is paused, resumed or its reward
// rate changes
type PoolUpdatedEvent struct {
	Pool           address.Address
	Paused         bool
	BaseRewardRate uint64
}

type VaultFundedEvent struct {
	Pool    address.Address
	Funder  address.Address
	Amount  uint64
	Balance uint64
}

// StakedEvent carries the deposit and the resulting stake account principal
type StakedEvent struct {
	Pool         address.Address
	StakeAccount address.Address
	Owner        address.Address
	Tier         uint8
	Amount       uint64
	Principal    uint64
}

type UnstakedEvent struct {
	Pool         address.Address
	StakeAccount address.Address
	Owner        address.Address
	Amount       uint64
	Reward       uint64
	Closed       bool
}

type RewardsClaimedEvent struct {
	Pool         address.Address
	StakeAccount address.Address
	Owner        address.Address
	Amount       uint64
}

// GovernanceConfiguredEvent is emitted on initialization and on every
// parameter update
type GovernanceConfiguredEvent struct {
	Governance        address.Address
	Mint              address.Address
	ProposalThreshold uint64
	CirculatingSupply uint64
	VotingPeriod      int64
	QuorumPercent     uint8
}

type ProposalCreatedEvent struct {
	Governance address.Address
	Proposal   address.Address
	Number     uint64
	Proposer   address.Address
	Deadline   int64
}

type VoteCastEvent struct {
	Proposal address.Address
	Voter    address.Address
	Choice   uint8
	Weight   uint64
}

type ProposalFinalizedEvent struct {
	Proposal  address.Address
	State     uint8
	YesWeight uint64
	NoWeight  uint64
}

// InstructionCommittedEvent is emitted after an instruction's journal entry
// has been committed
type InstructionCommittedEvent struct {
	Sequence  uint64
	Kind      string
	Signer    address.Address
	Signature []byte
}
