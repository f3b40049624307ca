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

package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/processor"
	"github.com/blinklabs-io/volya/program"
)

// Local serves a Connection from an in-process processor
type Local struct {
	network Network
	proc    *processor.Processor
}

func NewLocal(network Network, proc *processor.Processor) *Local {
	return &Local{
		network: network,
		proc:    proc,
	}
}

func (l *Local) Network() Network {
	return l.network
}

type accountLookup struct {
	kind     string
	notFound error
	get      func(*database.Database, address.Address, *database.Txn) (any, error)
}

var accountLookups = []accountLookup{
	{
		kind:     AccountKindTokenAccount,
		notFound: models.ErrTokenAccountNotFound,
		get: func(db *database.Database, addr address.Address, txn *database.Txn) (any, error) {
			return db.GetTokenAccount(addr, txn)
		},
	},
	{
		kind:     AccountKindTokenMint,
		notFound: models.ErrTokenMintNotFound,
		get: func(db *database.Database, addr address.Address, txn *database.Txn) (any, error) {
			return db.GetTokenMint(addr, txn)
		},
	},
	{
		kind:     AccountKindStakingPool,
		notFound: models.ErrStakingPoolNotFound,
		get: func(db *database.Database, addr address.Address, txn *database.Txn) (any, error) {
			return db.GetStakingPool(addr, txn)
		},
	},
	{
		kind:     AccountKindStakeAccount,
		notFound: models.ErrStakeAccountNotFound,
		get: func(db *database.Database, addr address.Address, txn *database.Txn) (any, error) {
			return db.GetStakeAccount(addr, txn)
		},
	},
	{
		kind:     AccountKindGovernanceConfig,
		notFound: models.ErrGovernanceConfigNotFound,
		get: func(db *database.Database, addr address.Address, txn *database.Txn) (any, error) {
			return db.GetGovernanceConfig(addr, txn)
		},
	},
	{
		kind:     AccountKindProposal,
		notFound: models.ErrProposalNotFound,
		get: func(db *database.Database, addr address.Address, txn *database.Txn) (any, error) {
			return db.GetProposal(addr, txn)
		},
	},
	{
		kind:     AccountKindVoteRecord,
		notFound: models.ErrVoteRecordNotFound,
		get: func(db *database.Database, addr address.Address, txn *database.Txn) (any, error) {
			return db.GetVoteRecord(addr, txn)
		},
	},
}

// GetAccount looks addr up in every account table
func (l *Local) GetAccount(
	ctx context.Context,
	addr address.Address,
) (*AccountInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ret *AccountInfo
	err := l.proc.View(func(pctx *program.Context) error {
		for _, lookup := range accountLookups {
			data, err := lookup.get(pctx.DB(), addr, pctx.Txn)
			if err != nil {
				if errors.Is(err, lookup.notFound) {
					continue
				}
				return err
			}
			ret = &AccountInfo{
				Address: addr,
				Kind:    lookup.kind,
				Data:    data,
			}
			return nil
		}
		return fmt.Errorf("%w: %s", program.ErrAccountNotFound, addr)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (l *Local) GetBalance(
	ctx context.Context,
	addr address.Address,
) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var ret uint64
	err := l.proc.View(func(pctx *program.Context) error {
		account, err := l.proc.Ledger().GetAccount(pctx, addr)
		if err != nil {
			return err
		}
		ret = uint64(account.Amount)
		return nil
	})
	return ret, err
}

func (l *Local) SendAndConfirm(
	ctx context.Context,
	signed *processor.SignedInstruction,
) (*processor.Receipt, error) {
	return l.proc.Process(ctx, signed)
}
