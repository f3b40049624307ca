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
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/volya/database/types"
)

// Txn is a unit of work spanning both stores. A read-write Txn stamps the
// account store and the journal with the same commit timestamp, so a torn
// commit is reported by New on the next open
type Txn struct {
	db       *Database
	blob     types.Txn
	metadata types.Txn
	mu       sync.Mutex
	done     bool
	write    bool
}

func newTxn(db *Database, write bool) *Txn {
	return &Txn{
		db:       db,
		write:    write,
		blob:     db.blob.NewTransaction(write),
		metadata: db.metadata.Transaction(),
	}
}

// DB returns the database the Txn was opened on
func (t *Txn) DB() *Database {
	return t.db
}

// Metadata returns the account store transaction
func (t *Txn) Metadata() types.Txn {
	return t.metadata
}

// Blob returns the journal store transaction
func (t *Txn) Blob() types.Txn {
	return t.blob
}

// Do runs fn and commits, or rolls back if fn fails
func (t *Txn) Do(fn func(*Txn) error) error {
	if err := fn(t); err != nil {
		if rbErr := t.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	return t.Commit()
}

// Commit makes the changes of a read-write Txn durable. Committing a
// read-only Txn releases it. Calls after the first are no-ops
func (t *Txn) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	if !t.write {
		return t.abort()
	}
	t.done = true
	ts := t.db.nextCommitTimestamp()
	if err := t.db.updateCommitTimestamp(t, ts); err != nil {
		return errors.Join(
			fmt.Errorf("stamp commit: %w", err),
			t.blob.Rollback(),
			t.metadata.Rollback(),
		)
	}
	// The journal lands first, so an instruction that reached the account
	// store is always journaled
	if err := t.blob.Commit(); err != nil {
		return errors.Join(
			fmt.Errorf("commit journal: %w", err),
			t.metadata.Rollback(),
		)
	}
	if err := t.metadata.Commit(); err != nil {
		t.db.logger.Error(
			"account state commit failed after journal commit",
			"commit_timestamp", ts,
			"error", err,
		)
		return fmt.Errorf("commit account state: %w", err)
	}
	return nil
}

func (t *Txn) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.abort()
}

func (t *Txn) abort() error {
	if t.done {
		return nil
	}
	t.done = true
	var err error
	if rbErr := t.blob.Rollback(); rbErr != nil {
		err = errors.Join(err, fmt.Errorf("journal rollback: %w", rbErr))
	}
	if rbErr := t.metadata.Rollback(); rbErr != nil {
		err = errors.Join(err, fmt.Errorf("account state rollback: %w", rbErr))
	}
	return err
}

// Release discards the Txn if it is still open. Meant for defer, so
// failures are logged
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"error", err,
			"read_write", t.write,
		)
	}
}
