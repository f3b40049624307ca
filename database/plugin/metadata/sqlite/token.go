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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/database/types"
	"gorm.io/gorm"
)

// GetTokenMint retrieves a token mint by address. Returns nil if it does not exist.
func (d *MetadataStoreSqlite) GetTokenMint(
	addr address.Address,
	txn types.Txn,
) (*models.TokenMint, error) {
	var mint models.TokenMint
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("address = ?", addr).First(&mint); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &mint, nil
}

// SetTokenMint creates or updates a token mint
func (d *MetadataStoreSqlite) SetTokenMint(
	mint *models.TokenMint,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(mint).Error
}

// GetTokenAccount retrieves a token account by address. Returns nil if it does not exist.
func (d *MetadataStoreSqlite) GetTokenAccount(
	addr address.Address,
	txn types.Txn,
) (*models.TokenAccount, error) {
	var account models.TokenAccount
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("address = ?", addr).First(&account); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &account, nil
}

// GetTokenAccountsByOwner returns all token accounts held by an owner
func (d *MetadataStoreSqlite) GetTokenAccountsByOwner(
	owner address.Address,
	txn types.Txn,
) ([]models.TokenAccount, error) {
	var accounts []models.TokenAccount
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("owner = ?", owner).Order("id").Find(&accounts); result.Error != nil {
		return nil, result.Error
	}
	return accounts, nil
}

// SetTokenAccount creates or updates a token account
func (d *MetadataStoreSqlite) SetTokenAccount(
	account *models.TokenAccount,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(account).Error
}
