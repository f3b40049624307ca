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

// Success payloads. Each is CBOR encoded into the journal entry of the
// instruction that produced it

type MintResult struct {
	cbor.StructAsArray
	Mint      address.Address
	Authority address.Address
	Decimals  uint8
}

type TokenAccountResult struct {
	cbor.StructAsArray
	Account address.Address
	Mint    address.Address
	Owner   address.Address
	Amount  uint64
}

type TransferResult struct {
	cbor.StructAsArray
	Source      address.Address
	Destination address.Address
	Amount      uint64
}

type PoolResult struct {
	cbor.StructAsArray
	Pool           address.Address
	Mint           address.Address
	Vault          address.Address
	VaultAuthority address.Address
	BaseRewardRate uint64
	TotalStaked    uint64
	Paused         bool
}

type VaultResult struct {
	cbor.StructAsArray
	Pool    address.Address
	Vault   address.Address
	Balance uint64
}

type StakeResult struct {
	cbor.StructAsArray
	Pool         address.Address
	StakeAccount address.Address
	Tier         uint8
	Principal    uint64
	UnlockTime   int64
}

type UnstakeResult struct {
	cbor.StructAsArray
	Pool         address.Address
	StakeAccount address.Address
	Amount       uint64
	Reward       uint64
	Closed       bool
}

type ClaimResult struct {
	cbor.StructAsArray
	Pool         address.Address
	StakeAccount address.Address
	Reward       uint64
}

type GovernanceResult struct {
	cbor.StructAsArray
	Governance        address.Address
	Mint              address.Address
	ProposalThreshold uint64
	CirculatingSupply uint64
	VotingPeriod      int64
	QuorumPercent     uint8
}

type ProposalResult struct {
	cbor.StructAsArray
	Proposal  address.Address
	Number    uint64
	State     uint8
	Deadline  int64
	YesWeight uint64
	NoWeight  uint64
}

type VoteResult struct {
	cbor.StructAsArray
	VoteRecord address.Address
	Proposal   address.Address
	Choice     uint8
	Weight     uint64
}
