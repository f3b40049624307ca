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
	"sync"

	"github.com/blinklabs-io/volya/database/types"
	"gorm.io/gorm"
)

// sqliteTxn wraps a gorm transaction so it can be coordinated with the blob
// store through the types.Txn interface
type sqliteTxn struct {
	db *gorm.DB
	// beginErr is set when the transaction could not be started. It is
	// returned by every use of the transaction
	beginErr error
	lock     sync.Mutex
	finished bool
}

func (t *sqliteTxn) Commit() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.beginErr != nil {
		return t.beginErr
	}
	if t.finished {
		return nil
	}
	t.finished = true
	return t.db.Commit().Error
}

func (t *sqliteTxn) Rollback() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.finished || t.beginErr != nil {
		return nil
	}
	t.finished = true
	err := t.db.Rollback().Error
	// The transaction may already have been closed by a failed commit
	if errors.Is(err, gorm.ErrInvalidTransaction) {
		return nil
	}
	return err
}

// Transaction creates a new database transaction.
func (d *MetadataStoreSqlite) Transaction() types.Txn {
	tx := d.DB().Begin()
	if tx.Error != nil {
		d.logger.Error(
			"failed to begin metadata transaction",
			"component", "database",
			"error", tx.Error,
		)
		return &sqliteTxn{beginErr: tx.Error}
	}
	return &sqliteTxn{db: tx}
}

// resolveDB returns the gorm handle for the given transaction, or the base
// handle when no transaction is provided
func (d *MetadataStoreSqlite) resolveDB(txn types.Txn) (*gorm.DB, error) {
	if txn == nil {
		return d.DB(), nil
	}
	tmpTxn, ok := txn.(*sqliteTxn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if tmpTxn == nil {
		return d.DB(), nil
	}
	if tmpTxn.beginErr != nil {
		return nil, tmpTxn.beginErr
	}
	return tmpTxn.db, nil
}
