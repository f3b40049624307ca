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
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/volya/database/types"
)

var ErrJournalEntryNotFound = errors.New("journal entry not found")

// JournalEntry records a committed instruction. Entries are stored in the
// blob store as CBOR keyed by sequence number
type JournalEntry struct {
	cbor.StructAsArray
	Sequence    uint64
	Kind        uint8
	Signer      []byte
	Signature   []byte
	Instruction []byte
	Result      []byte
	Timestamp   int64
}

// AppendJournal assigns the next sequence number to the entry and writes it
// as part of the transaction
func (d *Database) AppendJournal(entry *JournalEntry, txn *Txn) (uint64, error) {
	if txn == nil || txn.Blob() == nil {
		return 0, types.ErrNilTxn
	}
	last, err := d.lastJournalSequence(txn)
	if err != nil {
		return 0, err
	}
	entry.Sequence = last + 1
	entryCbor, err := cbor.Encode(entry)
	if err != nil {
		return 0, fmt.Errorf("encode journal entry: %w", err)
	}
	seqBytes := types.JournalBlobKeyUint64ToBytes(entry.Sequence)
	if err := d.blob.Set(txn.Blob(), types.JournalBlobKey(entry.Sequence), entryCbor); err != nil {
		return 0, fmt.Errorf("write journal entry: %w", err)
	}
	if err := d.blob.Set(txn.Blob(), []byte(types.JournalSequenceKey), seqBytes); err != nil {
		return 0, fmt.Errorf("write journal sequence: %w", err)
	}
	if len(entry.Signature) > 0 {
		if err := d.blob.Set(txn.Blob(), types.JournalSigKey(entry.Signature), seqBytes); err != nil {
			return 0, fmt.Errorf("write journal signature index: %w", err)
		}
	}
	return entry.Sequence, nil
}

func (d *Database) lastJournalSequence(txn *Txn) (uint64, error) {
	val, err := d.blob.Get(txn.Blob(), []byte(types.JournalSequenceKey))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(val) != types.JournalSequenceLength {
		return 0, fmt.Errorf("invalid journal sequence length %d", len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}

// JournalLength returns the sequence number of the last journal entry
func (d *Database) JournalLength(txn *Txn) (uint64, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.lastJournalSequence(txn)
}

// GetJournalEntry returns the journal entry with the given sequence number
func (d *Database) GetJournalEntry(seq uint64, txn *Txn) (*JournalEntry, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	val, err := d.blob.Get(txn.Blob(), types.JournalBlobKey(seq))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, ErrJournalEntryNotFound
		}
		return nil, err
	}
	var entry JournalEntry
	if _, err := cbor.Decode(val, &entry); err != nil {
		return nil, fmt.Errorf("decode journal entry %d: %w", seq, err)
	}
	return &entry, nil
}

// JournalEntryBySignature returns the journal entry written for a signed
// instruction
func (d *Database) JournalEntryBySignature(
	signature []byte,
	txn *Txn,
) (*JournalEntry, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	val, err := d.blob.Get(txn.Blob(), types.JournalSigKey(signature))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, ErrJournalEntryNotFound
		}
		return nil, err
	}
	if len(val) != types.JournalSequenceLength {
		return nil, fmt.Errorf("invalid journal sequence length %d", len(val))
	}
	return d.GetJournalEntry(binary.BigEndian.Uint64(val), txn)
}

// JournalEntries returns up to limit entries starting at sequence from. A
// limit of 0 returns all remaining entries
func (d *Database) JournalEntries(
	from uint64,
	limit int,
	txn *Txn,
) ([]JournalEntry, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	var ret []JournalEntry
	err := d.blob.Scan(
		txn.Blob(),
		[]byte(types.JournalBlobKeyPrefix),
		types.JournalBlobKey(from),
		func(key, val []byte) (bool, error) {
			if _, ok := types.JournalSequenceFromKey(key); !ok {
				return true, nil
			}
			var entry JournalEntry
			if _, err := cbor.Decode(val, &entry); err != nil {
				return false, fmt.Errorf("decode journal entry: %w", err)
			}
			ret = append(ret, entry)
			return limit <= 0 || len(ret) < limit, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}
