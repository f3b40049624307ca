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

// GetGovernanceConfig retrieves a governance config by address. Returns nil if it does not exist.
func (d *MetadataStoreSqlite) GetGovernanceConfig(
	addr address.Address,
	txn types.Txn,
) (*models.GovernanceConfig, error) {
	var config models.GovernanceConfig
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("address = ?", addr).First(&config); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &config, nil
}

// SetGovernanceConfig creates or updates a governance config
func (d *MetadataStoreSqlite) SetGovernanceConfig(
	config *models.GovernanceConfig,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(config).Error
}

// GetProposal retrieves a proposal by address. Returns nil if it does not exist.
func (d *MetadataStoreSqlite) GetProposal(
	addr address.Address,
	txn types.Txn,
) (*models.Proposal, error) {
	var proposal models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("address = ?", addr).First(&proposal); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &proposal, nil
}

// GetProposals returns the proposals of a governance config ordered by number
func (d *MetadataStoreSqlite) GetProposals(
	governance address.Address,
	txn types.Txn,
) ([]models.Proposal, error) {
	var proposals []models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("governance = ?", governance).Order("number").Find(&proposals); result.Error != nil {
		return nil, result.Error
	}
	return proposals, nil
}

// SetProposal creates or updates a proposal
func (d *MetadataStoreSqlite) SetProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(proposal).Error
}

// GetVoteRecord retrieves a vote record by address. Returns nil if it does not exist.
func (d *MetadataStoreSqlite) GetVoteRecord(
	addr address.Address,
	txn types.Txn,
) (*models.VoteRecord, error) {
	var record models.VoteRecord
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("address = ?", addr).First(&record); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &record, nil
}

// GetVoteRecords returns all votes cast on a proposal
func (d *MetadataStoreSqlite) GetVoteRecords(
	proposal address.Address,
	txn types.Txn,
) ([]models.VoteRecord, error) {
	var records []models.VoteRecord
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("proposal = ?", proposal).Order("id").Find(&records); result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

// AddVoteRecord inserts a vote record. Vote records are never updated, and
// the unique index on (proposal, voter) rejects a second vote
func (d *MetadataStoreSqlite) AddVoteRecord(
	record *models.VoteRecord,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(record).Error
}
