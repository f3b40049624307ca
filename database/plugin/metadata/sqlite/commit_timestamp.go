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

	"github.com/blinklabs-io/volya/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommitState is a single-row table holding the commit timestamp of the
// last committed instruction
type CommitState struct {
	ID              uint `gorm:"primarykey"`
	CommitTimestamp int64
}

func (CommitState) TableName() string {
	return "commit_state"
}

const commitStateID = 1

// GetCommitTimestamp returns the last commit timestamp, or 0 for a fresh
// store
func (d *MetadataStoreSqlite) GetCommitTimestamp() (int64, error) {
	var state CommitState
	if err := d.db.First(&state, commitStateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return state.CommitTimestamp, nil
}

func (d *MetadataStoreSqlite) SetCommitTimestamp(
	timestamp int64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"commit_timestamp"}),
	}).Create(&CommitState{
		ID:              commitStateID,
		CommitTimestamp: timestamp,
	}).Error
}
