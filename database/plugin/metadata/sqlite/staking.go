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
	"gorm.io/gorm/clause"
)

// GetStakingPool retrieves a staking pool by address. Returns nil if it does not exist.
func (d *MetadataStoreSqlite) GetStakingPool(
	addr address.Address,
	txn types.Txn,
) (*models.StakingPool, error) {
	var pool models.StakingPool
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("address = ?", addr).First(&pool); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &pool, nil
}

// SetStakingPool creates or updates a staking pool
func (d *MetadataStoreSqlite) SetStakingPool(
	pool *models.StakingPool,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(pool).Error
}

// GetStakeAccount retrieves a stake account and its deposit lots, oldest
// first. Returns nil if it does not exist.
func (d *MetadataStoreSqlite) GetStakeAccount(
	addr address.Address,
	txn types.Txn,
) (*models.StakeAccount, error) {
	var account models.StakeAccount
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	result := db.Preload("Deposits", func(db *gorm.DB) *gorm.DB {
		return db.Order("start_time, id")
	}).Where("address = ?", addr).First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &account, nil
}

// GetStakeAccountsByOwner returns all stake accounts held by an owner
func (d *MetadataStoreSqlite) GetStakeAccountsByOwner(
	owner address.Address,
	txn types.Txn,
) ([]models.StakeAccount, error) {
	var accounts []models.StakeAccount
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	result := db.Preload("Deposits", func(db *gorm.DB) *gorm.DB {
		return db.Order("start_time, id")
	}).Where("owner = ?", owner).Order("id").Find(&accounts)
	if result.Error != nil {
		return nil, result.Error
	}
	return accounts, nil
}

// GetStakeAccountsByPool returns all stake accounts open in a pool
func (d *MetadataStoreSqlite) GetStakeAccountsByPool(
	pool address.Address,
	txn types.Txn,
) ([]models.StakeAccount, error) {
	var accounts []models.StakeAccount
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	result := db.Preload("Deposits", func(db *gorm.DB) *gorm.DB {
		return db.Order("start_time, id")
	}).Where("pool = ?", pool).Order("id").Find(&accounts)
	if result.Error != nil {
		return nil, result.Error
	}
	return accounts, nil
}

// SetStakeAccount creates or updates a stake account. The stored deposit
// lots are replaced by the lots on the account
func (d *MetadataStoreSqlite) SetStakeAccount(
	account *models.StakeAccount,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Omit(clause.Associations).Save(account); result.Error != nil {
		return result.Error
	}
	if result := db.Where("stake_account_id = ?", account.ID).Delete(&models.StakeDeposit{}); result.Error != nil {
		return result.Error
	}
	if len(account.Deposits) == 0 {
		return nil
	}
	for i := range account.Deposits {
		account.Deposits[i].ID = 0
		account.Deposits[i].StakeAccountID = account.ID
	}
	return db.Create(&account.Deposits).Error
}

// DeleteStakeAccount removes a stake account and its deposit lots
func (d *MetadataStoreSqlite) DeleteStakeAccount(
	addr address.Address,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	var account models.StakeAccount
	if result := db.Where("address = ?", addr).First(&account); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil
		}
		return result.Error
	}
	if result := db.Where("stake_account_id = ?", account.ID).Delete(&models.StakeDeposit{}); result.Error != nil {
		return result.Error
	}
	return db.Delete(&account).Error
}
