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
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/volya/database/types"
	badger "github.com/dgraph-io/badger/v4"
)

const commitTimestampKey = "cts"

// GetCommitTimestamp returns the timestamp stamped by the last committed
// write, or types.ErrBlobKeyNotFound for a fresh store
func (d *BlobStoreBadger) GetCommitTimestamp() (int64, error) {
	var ret int64
	err := d.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(commitTimestampKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return types.ErrBlobKeyNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("invalid commit timestamp length %d", len(val))
			}
			ret = int64(binary.BigEndian.Uint64(val)) // #nosec G115
			return nil
		})
	})
	return ret, err
}

func (d *BlobStoreBadger) SetCommitTimestamp(timestamp int64, txn types.Txn) error {
	val := binary.BigEndian.AppendUint64(nil, uint64(timestamp)) // #nosec G115
	return d.Set(txn, []byte(commitTimestampKey), val)
}
