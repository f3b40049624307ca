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
	ErrStakingPoolNotFound  = errors.New("staking pool not found")
	ErrStakeAccountNotFound = errors.New("stake account not found")
)

type StakingPool struct {
	ID                 uint            `gorm:"primarykey"`
	Address            address.Address `gorm:"uniqueIndex;size:32;not null"`
	Authority          address.Address `gorm:"size:32;not null"`
	TokenMint          address.Address `gorm:"uniqueIndex;size:32;not null"`
	Vault              address.Address `gorm:"size:32;not null"`
	VaultAuthority     address.Address `gorm:"size:32;not null"`
	// Informational. Rewards accrue at the tier APR
	BaseRewardRate     types.Uint64
	TotalStaked        types.Uint64
	InitializedAt      int64
	Bump               uint8
	VaultBump          uint8
	VaultAuthorityBump uint8
	Paused             bool
}

func (StakingPool) TableName() string {
	return "staking_pool"
}

// StakeAccount is a single owner's position in a pool for one tier.
// Amount is always the sum of the deposit lots
type StakeAccount struct {
	ID            uint            `gorm:"primarykey"`
	Address       address.Address `gorm:"uniqueIndex;size:32;not null"`
	Owner         address.Address `gorm:"index;size:32;not null"`
	Pool          address.Address `gorm:"index;size:32;not null"`
	Deposits      []StakeDeposit  `gorm:"foreignKey:StakeAccountID;constraint:OnDelete:CASCADE"`
	Amount        types.Uint64
	AccruedReward types.Uint64
	StartTime     int64
	LastClaimTime int64
	Tier          uint8
	Bump          uint8
}

func (StakeAccount) TableName() string {
	return "stake_account"
}

// StakeDeposit is one deposit lot within a stake account. Each lot keeps the
// unlock time computed when it was deposited
type StakeDeposit struct {
	ID             uint `gorm:"primarykey"`
	StakeAccountID uint `gorm:"index;not null"`
	Amount         types.Uint64
	StartTime      int64
	UnlockTime     int64 `gorm:"index"`
}

func (StakeDeposit) TableName() string {
	return "stake_deposit"
}
