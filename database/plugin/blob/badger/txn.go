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

package badger

import (
	"errors"

	"github.com/blinklabs-io/volya/database/types"
	badger "github.com/dgraph-io/badger/v4"
)

var errTxnFinished = errors.New("journal transaction already finished")

// badgerTxn adapts a badger transaction to types.Txn
type badgerTxn struct {
	store *BlobStoreBadger
	tx    *badger.Txn
	done  bool
}

// NewTransaction starts a transaction. Read-write transactions must be
// committed or rolled back to release their resources
func (d *BlobStoreBadger) NewTransaction(update bool) types.Txn {
	return &badgerTxn{store: d, tx: d.db.NewTransaction(update)}
}

func (t *badgerTxn) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Commit()
}

func (t *badgerTxn) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.tx.Discard()
	return nil
}

// openTxn returns the open badger transaction behind txn
func (d *BlobStoreBadger) openTxn(txn types.Txn) (*badger.Txn, error) {
	if txn == nil {
		return nil, types.ErrNilTxn
	}
	tmpTxn, ok := txn.(*badgerTxn)
	if !ok || tmpTxn.store != d {
		return nil, types.ErrTxnWrongType
	}
	if tmpTxn.done {
		return nil, errTxnFinished
	}
	return tmpTxn.tx, nil
}
