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
	"time"

	"github.com/blinklabs-io/volya/database/types"
)

type CommitTimestampError struct {
	MetadataTimestamp int64
	BlobTimestamp     int64
}

func (e CommitTimestampError) Error() string {
	return fmt.Sprintf(
		"commit timestamp mismatch: %d (metadata) != %d (blob)",
		e.MetadataTimestamp,
		e.BlobTimestamp,
	)
}

// checkCommitTimestamp makes sure that both stores were last written by the
// same commit
func (d *Database) checkCommitTimestamp() error {
	metadataTimestamp, err := d.Metadata().GetCommitTimestamp()
	if err != nil {
		return fmt.Errorf(
			"failed to get metadata timestamp: %w",
			err,
		)
	}
	blobTimestamp, err := d.Blob().GetCommitTimestamp()
	if err != nil {
		if !errors.Is(err, types.ErrBlobKeyNotFound) {
			return fmt.Errorf(
				"failed to get blob timestamp: %w",
				err,
			)
		}
		blobTimestamp = 0
	}
	if blobTimestamp != metadataTimestamp {
		return CommitTimestampError{
			MetadataTimestamp: metadataTimestamp,
			BlobTimestamp:     blobTimestamp,
		}
	}
	d.commitTimestampMutex.Lock()
	d.lastCommitTimestamp = metadataTimestamp
	d.commitTimestampMutex.Unlock()
	return nil
}

func (d *Database) updateCommitTimestamp(txn *Txn, timestamp int64) error {
	if err := d.Metadata().SetCommitTimestamp(timestamp, txn.Metadata()); err != nil {
		return err
	}
	if err := d.Blob().SetCommitTimestamp(timestamp, txn.Blob()); err != nil {
		return err
	}
	return nil
}

// nextCommitTimestamp returns a wall clock timestamp in milliseconds that is
// strictly greater than the previous one handed out
func (d *Database) nextCommitTimestamp() int64 {
	d.commitTimestampMutex.Lock()
	defer d.commitTimestampMutex.Unlock()
	ts := time.Now().UnixMilli()
	if ts <= d.lastCommitTimestamp {
		ts = d.lastCommitTimestamp + 1
	}
	d.lastCommitTimestamp = ts
	return ts
}
