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

// Package connection is the client side of the engine: account reads and
// instruction submission against a named network.
package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/processor"
)

var ErrRemoteUnsupported = errors.New("remote RPC is not supported")

// Account kinds reported in AccountInfo
const (
	AccountKindTokenMint        = "token_mint"
	AccountKindTokenAccount     = "token_account"
	AccountKindStakingPool      = "staking_pool"
	AccountKindStakeAccount     = "stake_account"
	AccountKindGovernanceConfig = "governance_config"
	AccountKindProposal         = "proposal"
	AccountKindVoteRecord       = "vote_record"
)

// AccountInfo is a decoded account. Data holds the model of the kind, such as
// *models.StakingPool for AccountKindStakingPool
type AccountInfo struct {
	Address address.Address
	Kind    string
	Data    any
}

type Connection interface {
	Network() Network
	GetAccount(ctx context.Context, addr address.Address) (*AccountInfo, error)
	// GetBalance returns the amount held by a token account
	GetBalance(ctx context.Context, addr address.Address) (uint64, error)
	SendAndConfirm(
		ctx context.Context,
		signed *processor.SignedInstruction,
	) (*processor.Receipt, error)
}

// Dial returns a connection to network. Only the local network is served,
// in-process by proc
func Dial(network Network, proc *processor.Processor) (Connection, error) {
	if network.Name != NetworkLocal {
		return nil, fmt.Errorf("%w: %s", ErrRemoteUnsupported, network)
	}
	return NewLocal(network, proc), nil
}
