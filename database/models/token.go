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
	ErrTokenMintNotFound    = errors.New("token mint not found")
	ErrTokenAccountNotFound = errors.New("token account not found")
)

// TokenMint describes a fungible token. Supply tracks the total amount
// minted into token accounts
type TokenMint struct {
	ID            uint            `gorm:"primarykey"`
	Address       address.Address `gorm:"uniqueIndex;size:32;not null"`
	MintAuthority address.Address `gorm:"size:32;not null"`
	Supply        types.Uint64
	Decimals      uint8
}

func (TokenMint) TableName() string {
	return "token_mint"
}

// TokenAccount holds a balance of a single mint on behalf of an owner.
// The owner may itself be a program-derived address
type TokenAccount struct {
	ID      uint            `gorm:"primarykey"`
	Address address.Address `gorm:"uniqueIndex;size:32;not null"`
	Mint    address.Address `gorm:"index;size:32;not null"`
	Owner   address.Address `gorm:"index;size:32;not null"`
	Amount  types.Uint64
}

func (TokenAccount) TableName() string {
	return "token_account"
}
