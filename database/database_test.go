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

package database_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress(b byte) address.Address {
	var ret address.Address
	for i := range ret {
		ret[i] = b
	}
	return ret
}

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func TestAccessorNotFound(t *testing.T) {
	db := newTestDatabase(t)
	_, err := db.GetTokenMint(testAddress(1), nil)
	require.ErrorIs(t, err, models.ErrTokenMintNotFound)
	_, err = db.GetStakingPool(testAddress(1), nil)
	require.ErrorIs(t, err, models.ErrStakingPoolNotFound)
	_, err = db.GetStakeAccount(testAddress(1), nil)
	require.ErrorIs(t, err, models.ErrStakeAccountNotFound)
	_, err = db.GetGovernanceConfig(testAddress(1), nil)
	require.ErrorIs(t, err, models.ErrGovernanceConfigNotFound)
	_, err = db.GetProposal(testAddress(1), nil)
	require.ErrorIs(t, err, models.ErrProposalNotFound)
	_, err = db.GetVoteRecord(testAddress(1), nil)
	require.ErrorIs(t, err, models.ErrVoteRecordNotFound)
}

func TestTxnDB(t *testing.T) {
	db := newTestDatabase(t)
	txn := db.Transaction(false)
	defer txn.Release()
	assert.Same(t, db, txn.DB())
}

func TestTxnDoCommitsBothStores(t *testing.T) {
	db := newTestDatabase(t)
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := db.SetTokenAccount(&models.TokenAccount{
			Address: testAddress(1),
			Mint:    testAddress(2),
			Owner:   testAddress(3),
			Amount:  100,
		}, txn); err != nil {
			return err
		}
		_, err := db.AppendJournal(&database.JournalEntry{
			Kind:      1,
			Signature: []byte{0xaa, 0xbb},
			Timestamp: 42,
		}, txn)
		return err
	})
	require.NoError(t, err)
	account, err := db.GetTokenAccount(testAddress(1), nil)
	require.NoError(t, err)
	assert.Equal(t, types.Uint64(100), account.Amount)
	entry, err := db.GetJournalEntry(1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), entry.Timestamp)
	bySig, err := db.JournalEntryBySignature([]byte{0xaa, 0xbb}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), bySig.Sequence)
	metadataTs, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	blobTs, err := db.Blob().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, metadataTs, blobTs)
	assert.Positive(t, metadataTs)
}

func TestTxnDoRollsBackBothStores(t *testing.T) {
	db := newTestDatabase(t)
	testErr := errors.New("instruction failed")
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := db.SetStakingPool(&models.StakingPool{
			Address:   testAddress(1),
			TokenMint: testAddress(2),
		}, txn); err != nil {
			return err
		}
		if _, err := db.AppendJournal(&database.JournalEntry{Kind: 2}, txn); err != nil {
			return err
		}
		return testErr
	})
	require.ErrorIs(t, err, testErr)
	_, err = db.GetStakingPool(testAddress(1), nil)
	require.ErrorIs(t, err, models.ErrStakingPoolNotFound)
	length, err := db.JournalLength(nil)
	require.NoError(t, err)
	assert.Zero(t, length)
}

func TestJournalEntriesRange(t *testing.T) {
	db := newTestDatabase(t)
	for i := range 5 {
		txn := db.Transaction(true)
		require.NoError(t, txn.Do(func(txn *database.Txn) error {
			_, err := db.AppendJournal(&database.JournalEntry{
				Kind:      uint8(i),
				Timestamp: int64(i * 10),
			}, txn)
			return err
		}))
	}
	entries, err := db.JournalEntries(2, 2, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(2), entries[0].Sequence)
	assert.Equal(t, uint64(3), entries[1].Sequence)
	assert.Equal(t, int64(20), entries[1].Timestamp)
	all, err := db.JournalEntries(1, 0, nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	_, err = db.GetJournalEntry(99, nil)
	require.ErrorIs(t, err, database.ErrJournalEntryNotFound)
}

func TestAppendJournalRequiresTxn(t *testing.T) {
	db := newTestDatabase(t)
	_, err := db.AppendJournal(&database.JournalEntry{}, nil)
	require.ErrorIs(t, err, types.ErrNilTxn)
	require.ErrorIs(t, db.DeleteStakeAccount(testAddress(1), nil), types.ErrNilTxn)
}

func TestPersistentDatabaseReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, db.SetGovernanceConfig(&models.GovernanceConfig{
		Address:       testAddress(1),
		TokenMint:     testAddress(2),
		QuorumPercent: 10,
	}, nil))
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dir})
	require.NoError(t, err)
	defer db.Close()
	config, err := db.GetGovernanceConfig(testAddress(1), nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(10), config.QuorumPercent)
}

func TestCommitTimestampMismatch(t *testing.T) {
	dir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, db.SetTokenMint(&models.TokenMint{Address: testAddress(1)}, nil))
	// Simulate a crash between the two store commits
	require.NoError(t, db.Metadata().SetCommitTimestamp(1, nil))
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dir})
	require.Error(t, err)
	var tsErr database.CommitTimestampError
	require.ErrorAs(t, err, &tsErr)
	assert.Equal(t, int64(1), tsErr.MetadataTimestamp)
	require.NoError(t, db.Close())
}
