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

// GetGovernanceConfig returns the governance config at the given address, or models.ErrGovernanceConfigNotFound
func (d *Database) GetGovernanceConfig(
	addr address.Address,
	txn *Txn,
) (*models.GovernanceConfig, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	ret, err := d.metadata.GetGovernanceConfig(addr, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, models.ErrGovernanceConfigNotFound
	}
	return ret, nil
}

// SetGovernanceConfig creates or updates a governance config
func (d *Database) SetGovernanceConfig(
	value *models.GovernanceConfig,
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
	if err := d.metadata.SetGovernanceConfig(value, txn.Metadata()); err != nil {
		return fmt.Errorf("set governance config: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// GetProposal returns the proposal at the given address, or models.ErrProposalNotFound
func (d *Database) GetProposal(
	addr address.Address,
	txn *Txn,
) (*models.Proposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	ret, err := d.metadata.GetProposal(addr, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, models.ErrProposalNotFound
	}
	return ret, nil
}

// SetProposal creates or updates a proposal
func (d *Database) SetProposal(
	value *models.Proposal,
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
	if err := d.metadata.SetProposal(value, txn.Metadata()); err != nil {
		return fmt.Errorf("set proposal: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// GetProposals returns the proposals of a governance config ordered by number
func (d *Database) GetProposals(
	governance address.Address,
	txn *Txn,
) ([]models.Proposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetProposals(governance, txn.Metadata())
}

// GetVoteRecord returns the vote record at the given address, or models.ErrVoteRecordNotFound
func (d *Database) GetVoteRecord(
	addr address.Address,
	txn *Txn,
) (*models.VoteRecord, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	ret, err := d.metadata.GetVoteRecord(addr, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, models.ErrVoteRecordNotFound
	}
	return ret, nil
}

// GetVoteRecords returns all votes cast on a proposal
func (d *Database) GetVoteRecords(
	proposal address.Address,
	txn *Txn,
) ([]models.VoteRecord, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetVoteRecords(proposal, txn.Metadata())
}

// AddVoteRecord inserts a vote record. The caller must provide the
// transaction
func (d *Database) AddVoteRecord(
	record *models.VoteRecord,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	if err := d.metadata.AddVoteRecord(record, txn.Metadata()); err != nil {
		return fmt.Errorf("add vote record: %w", err)
	}
	return nil
}
