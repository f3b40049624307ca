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

package database

import (
	"fmt"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/database/types"
)

// GetStakingPool returns the staking pool at the given address, or models.ErrStakingPoolNotFound
func (d *Database) GetStakingPool(
	addr address.Address,
	txn *Txn,
) (*models.StakingPool, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	ret, err := d.metadata.GetStakingPool(addr, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, models.ErrStakingPoolNotFound
	}
	return ret, nil
}

// SetStakingPool creates or updates a staking pool
func (d *Database) SetStakingPool(
	value *models.StakingPool,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer func() {
			if owned {
				txn.Rollback() //nolint:errcheck
			}
		}()
	}
	if err := d.metadata.SetStakingPool(value, txn.Metadata()); err != nil {
		return fmt.Errorf("set staking pool: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// GetStakeAccount returns the stake account at the given address, or models.ErrStakeAccountNotFound
func (d *Database) GetStakeAccount(
	addr address.Address,
	txn *Txn,
) (*models.StakeAccount, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	ret, err := d.metadata.GetStakeAccount(addr, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, models.ErrStakeAccountNotFound
	}
	return ret, nil
}

// SetStakeAccount creates or updates a stake account
func (d *Database) SetStakeAccount(
	value *models.StakeAccount,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer func() {
			if owned {
				txn.Rollback() //nolint:errcheck
			}
		}()
	}
	if err := d.metadata.SetStakeAccount(value, txn.Metadata()); err != nil {
		return fmt.Errorf("set stake account: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// GetStakeAccountsByOwner returns all stake accounts held by an owner
func (d *Database) GetStakeAccountsByOwner(
	owner address.Address,
	txn *Txn,
) ([]models.StakeAccount, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetStakeAccountsByOwner(owner, txn.Metadata())
}

// GetStakeAccountsByPool returns all stake accounts open in a pool
func (d *Database) GetStakeAccountsByPool(
	pool address.Address,
	txn *Txn,
) ([]models.StakeAccount, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetStakeAccountsByPool(pool, txn.Metadata())
}

// DeleteStakeAccount closes a stake account. The caller must provide the
// transaction
func (d *Database) DeleteStakeAccount(
	addr address.Address,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	if err := d.metadata.DeleteStakeAccount(addr, txn.Metadata()); err != nil {
		return fmt.Errorf("delete stake account: %w", err)
	}
	return nil
}
