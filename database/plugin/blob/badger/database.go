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
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/volya/database/types"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"
)

const journalDirName = "journal"

// BlobStoreBadger holds the instruction journal and the commit timestamp.
// Without a data directory the store is kept in memory
type BlobStoreBadger struct {
	promRegistry prometheus.Registerer
	db           *badger.DB
	logger       *slog.Logger
	dataDir      string
	gcInterval   time.Duration
	gcStop       chan struct{}
	gcDone       chan struct{}
}

// New opens the store
func New(opts ...BlobStoreBadgerOptionFunc) (*BlobStoreBadger, error) {
	d := &BlobStoreBadger{
		gcInterval: DefaultGcInterval,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	badgerOpts, err := d.openOptions()
	if err != nil {
		return nil, err
	}
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open journal store: %w", err)
	}
	d.db = db
	if d.promRegistry != nil {
		d.registerBlobMetrics()
	}
	// Value log GC is not supported for in-memory stores
	if d.gcInterval > 0 && d.dataDir != "" {
		d.gcStop = make(chan struct{})
		d.gcDone = make(chan struct{})
		go d.runGc()
	}
	return d, nil
}

func (d *BlobStoreBadger) openOptions() (badger.Options, error) {
	if d.dataDir == "" {
		return badger.DefaultOptions("").
			WithInMemory(true).
			WithLogger(newJournalLogger(d.logger)).
			WithLoggingLevel(badger.WARNING), nil
	}
	dir := filepath.Join(d.dataDir, journalDirName)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return badger.Options{}, fmt.Errorf("create journal dir: %w", err)
	}
	// Journal entries are small and append-only
	return badger.DefaultOptions(dir).
		WithLogger(newJournalLogger(d.logger)).
		WithLoggingLevel(badger.WARNING).
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(128 << 20).
		WithCompression(options.Snappy), nil
}

func (d *BlobStoreBadger) runGc() {
	defer close(d.gcDone)
	ticker := time.NewTicker(d.gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.gcStop:
			return
		case <-ticker.C:
		}
		// Keep collecting while badger finds value log files to rewrite
		for {
			err := d.db.RunValueLogGC(0.5)
			if err == nil {
				continue
			}
			if !errors.Is(err, badger.ErrNoRewrite) {
				d.logger.Warn(
					"journal value log GC failed",
					"component", "database",
					"error", err,
				)
			}
			break
		}
	}
}

func (d *BlobStoreBadger) Close() error {
	if d.gcStop != nil {
		close(d.gcStop)
		<-d.gcDone
		d.gcStop = nil
	}
	return d.db.Close()
}

// DB returns the badger handle
func (d *BlobStoreBadger) DB() *badger.DB {
	return d.db
}

func (d *BlobStoreBadger) Get(txn types.Txn, key []byte) ([]byte, error) {
	tx, err := d.openTxn(txn)
	if err != nil {
		return nil, err
	}
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, types.ErrBlobKeyNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (d *BlobStoreBadger) Set(txn types.Txn, key, val []byte) error {
	tx, err := d.openTxn(txn)
	if err != nil {
		return err
	}
	return tx.Set(key, val)
}

// Scan calls fn for each key with the given prefix, in key order, starting
// at the first key not less than start. Scanning stops early when fn returns
// false or an error. The slices passed to fn are only valid during the call
func (d *BlobStoreBadger) Scan(
	txn types.Txn,
	prefix []byte,
	start []byte,
	fn func(key, val []byte) (bool, error),
) error {
	tx, err := d.openTxn(txn)
	if err != nil {
		return err
	}
	iter := tx.NewIterator(badger.IteratorOptions{
		Prefix:         prefix,
		PrefetchValues: true,
		PrefetchSize:   100,
	})
	defer iter.Close()
	if !bytes.HasPrefix(start, prefix) {
		start = prefix
	}
	for iter.Seek(start); iter.ValidForPrefix(prefix); iter.Next() {
		item := iter.Item()
		var more bool
		err := item.Value(func(val []byte) error {
			var fnErr error
			more, fnErr = fn(item.Key(), val)
			return fnErr
		})
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	return nil
}
