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
)

// GetTokenMint returns the token mint at the given address, or models.ErrTokenMintNotFound
func (d *Database) GetTokenMint(
	addr address.Address,
	txn *Txn,
) (*models.TokenMint, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	ret, err := d.metadata.GetTokenMint(addr, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, models.ErrTokenMintNotFound
	}
	return ret, nil
}

// SetTokenMint creates or updates a token mint
func (d *Database) SetTokenMint(
	value *models.TokenMint,
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
	if err := d.metadata.SetTokenMint(value, txn.Metadata()); err != nil {
		return fmt.Errorf("set token mint: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// GetTokenAccount returns the token account at the given address, or models.ErrTokenAccountNotFound
func (d *Database) GetTokenAccount(
	addr address.Address,
	txn *Txn,
) (*models.TokenAccount, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	ret, err := d.metadata.GetTokenAccount(addr, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, models.ErrTokenAccountNotFound
	}
	return ret, nil
}

// SetTokenAccount creates or updates a token account
func (d *Database) SetTokenAccount(
	value *models.TokenAccount,
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
	if err := d.metadata.SetTokenAccount(value, txn.Metadata()); err != nil {
		return fmt.Errorf("set token account: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// GetTokenAccountsByOwner returns all token accounts held by an owner
func (d *Database) GetTokenAccountsByOwner(
	owner address.Address,
	txn *Txn,
) ([]models.TokenAccount, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetTokenAccountsByOwner(owner, txn.Metadata())
}
