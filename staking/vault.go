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

package staking

import (
	"fmt"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/program"
	"github.com/blinklabs-io/volya/token"
)

// Vault is the token account holding a pool's staked principal and reward
// float. Its owner is the vault authority, a program-derived address with no
// private key
type Vault struct {
	Address   address.Address
	Authority address.Address
	Pool      address.Address
	Balance   uint64
}

// vaultSigner is the capability to move tokens out of a pool's vault. It can
// only be built from a pool whose vault authority re-derives from its seeds
type vaultSigner struct {
	ledger    *token.Ledger
	vault     address.Address
	authority address.Address
}

func (e *Engine) newVaultSigner(pool *models.StakingPool) (*vaultSigner, error) {
	seeds := [][]byte{[]byte(VaultAuthoritySeed), pool.Address.Bytes()}
	if !address.Verify(pool.VaultAuthority, seeds, pool.VaultAuthorityBump, e.programID) {
		return nil, fmt.Errorf(
			"%w: vault authority does not match pool %s",
			program.ErrUnauthorized,
			pool.Address,
		)
	}
	return &vaultSigner{
		ledger:    e.ledger,
		vault:     pool.Vault,
		authority: pool.VaultAuthority,
	}, nil
}

func (s *vaultSigner) transfer(
	ctx *program.Context,
	destination address.Address,
	amount uint64,
) error {
	return s.ledger.Transfer(ctx, s.authority, s.vault, destination, amount)
}

// GetVault returns the vault of a pool with its current balance
func (e *Engine) GetVault(
	ctx *program.Context,
	pool address.Address,
) (*Vault, error) {
	tmpPool, err := e.GetPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	return e.vaultOf(ctx, tmpPool)
}

func (e *Engine) vaultOf(
	ctx *program.Context,
	pool *models.StakingPool,
) (*Vault, error) {
	account, err := e.ledger.GetAccount(ctx, pool.Vault)
	if err != nil {
		return nil, err
	}
	return &Vault{
		Address:   pool.Vault,
		Authority: pool.VaultAuthority,
		Pool:      pool.Address,
		Balance:   uint64(account.Amount),
	}, nil
}

// rewardFloat is the part of the vault balance that is not staked principal
func rewardFloat(vault *Vault, pool *models.StakingPool) uint64 {
	if vault.Balance <= uint64(pool.TotalStaked) {
		return 0
	}
	return vault.Balance - uint64(pool.TotalStaked)
}
