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
	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/volya/address"
)

// Instruction arguments. The acting party (mint authority, pool authority,
// staker, proposer, voter) is always the envelope signer

type CreateMintArgs struct {
	cbor.StructAsArray
	Mint     address.Address
	Decimals uint8
}

type CreateTokenAccountArgs struct {
	cbor.StructAsArray
	Mint  address.Address
	Owner address.Address
}

type MintToArgs struct {
	cbor.StructAsArray
	Mint        address.Address
	Destination address.Address
	Amount      uint64
}

type TransferArgs struct {
	cbor.StructAsArray
	Source      address.Address
	Destination address.Address
	Amount      uint64
}

type InitializePoolArgs struct {
	cbor.StructAsArray
	Mint           address.Address
	BaseRewardRate int64
}

type FundVaultArgs struct {
	cbor.StructAsArray
	Pool   address.Address
	Amount uint64
}

type SetPoolPausedArgs struct {
	cbor.StructAsArray
	Pool   address.Address
	Paused bool
}

type UpdateRewardRateArgs struct {
	cbor.StructAsArray
	Pool           address.Address
	BaseRewardRate int64
}

type StakeArgs struct {
	cbor.StructAsArray
	Pool   address.Address
	Tier   uint8
	Amount uint64
}

type UnstakeArgs struct {
	cbor.StructAsArray
	Pool         address.Address
	StakeAccount address.Address
	Amount       uint64
}

type ClaimRewardsArgs struct {
	cbor.StructAsArray
	Pool         address.Address
	StakeAccount address.Address
}

type GovernanceParams struct {
	cbor.StructAsArray
	ProposalThreshold uint64
	CirculatingSupply uint64
	VotingPeriod      int64
	QuorumPercent     uint8
}

type InitializeGovernanceArgs struct {
	cbor.StructAsArray
	Mint   address.Address
	Params GovernanceParams
}

type UpdateGovernanceArgs struct {
	cbor.StructAsArray
	Governance address.Address
	Params     GovernanceParams
}

type CreateProposalArgs struct {
	cbor.StructAsArray
	Governance   address.Address
	Title        string
	Description  string
	Type         uint8
	VotingPeriod int64
}

type VoteOnProposalArgs struct {
	cbor.StructAsArray
	Proposal address.Address
	Choice   uint8
}

type FinalizeProposalArgs struct {
	cbor.StructAsArray
	Proposal address.Address
}
