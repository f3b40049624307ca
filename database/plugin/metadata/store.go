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

package metadata

import (
	"log/slog"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/volya/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Token ledger
	GetTokenMint(address.Address, types.Txn) (*models.TokenMint, error)
	SetTokenMint(*models.TokenMint, types.Txn) error
	GetTokenAccount(address.Address, types.Txn) (*models.TokenAccount, error)
	GetTokenAccountsByOwner(
		address.Address, // owner
		types.Txn,
	) ([]models.TokenAccount, error)
	SetTokenAccount(*models.TokenAccount, types.Txn) error

	// Staking
	GetStakingPool(address.Address, types.Txn) (*models.StakingPool, error)
	SetStakingPool(*models.StakingPool, types.Txn) error
	GetStakeAccount(address.Address, types.Txn) (*models.StakeAccount, error)
	GetStakeAccountsByOwner(
		address.Address, // owner
		types.Txn,
	) ([]models.StakeAccount, error)
	GetStakeAccountsByPool(
		address.Address, // pool
		types.Txn,
	) ([]models.StakeAccount, error)
	SetStakeAccount(*models.StakeAccount, types.Txn) error
	DeleteStakeAccount(address.Address, types.Txn) error

	// Governance
	GetGovernanceConfig(
		address.Address,
		types.Txn,
	) (*models.GovernanceConfig, error)
	SetGovernanceConfig(*models.GovernanceConfig, types.Txn) error
	GetProposal(address.Address, types.Txn) (*models.Proposal, error)
	GetProposals(
		address.Address, // governance
		types.Txn,
	) ([]models.Proposal, error)
	SetProposal(*models.Proposal, types.Txn) error
	GetVoteRecord(address.Address, types.Txn) (*models.VoteRecord, error)
	GetVoteRecords(
		address.Address, // proposal
		types.Txn,
	) ([]models.VoteRecord, error)
	AddVoteRecord(*models.VoteRecord, types.Txn) error
}

// New returns the metadata store. An empty data directory selects an
// in-memory database
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	return sqlite.New(dataDir, logger, promRegistry)
}
