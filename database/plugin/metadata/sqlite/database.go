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
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blinklabs-io/volya/database/models"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

const accountsFileName = "accounts.sqlite"

// MetadataStoreSqlite holds the account state: mints, token accounts,
// staking pools, stake accounts, governance configs, proposals and vote
// records
type MetadataStoreSqlite struct {
	promRegistry prometheus.Registerer
	db           *gorm.DB
	logger       *slog.Logger
	dataDir      string
	tracing      bool
}

// New opens the account store. An empty dataDir selects an in-memory store
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*MetadataStoreSqlite, error) {
	return NewWithOptions(
		WithDataDir(dataDir),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
		WithTracing(true),
	)
}

func NewWithOptions(opts ...SqliteOptionFunc) (*MetadataStoreSqlite, error) {
	d := &MetadataStoreSqlite{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	dsn, err := d.dsn()
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Discard,
		// Every write already runs inside an instruction transaction
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open account store: %w", err)
	}
	d.db = db
	sqlDb, err := db.DB()
	if err != nil {
		return nil, err
	}
	// A single connection serializes access, which also keeps an in-memory
	// database alive and shared
	sqlDb.SetMaxOpenConns(1)
	sqlDb.SetMaxIdleConns(1)
	sqlDb.SetConnMaxLifetime(0)
	sqlDb.SetConnMaxIdleTime(0)
	if d.tracing {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, errors.Join(err, sqlDb.Close())
		}
	}
	if d.promRegistry != nil {
		if err := d.promRegistry.Register(collectors.NewDBStatsCollector(sqlDb, "accounts")); err != nil {
			d.logger.Warn(
				"failed to register account store metrics",
				"component", "database",
				"error", err,
			)
		}
	}
	if err := d.migrate(); err != nil {
		return nil, errors.Join(err, sqlDb.Close())
	}
	return d, nil
}

func (d *MetadataStoreSqlite) dsn() (string, error) {
	if d.dataDir == "" {
		return "file::memory:", nil
	}
	if err := os.MkdirAll(d.dataDir, 0o750); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	// WAL so readers are not blocked by the writer, and wait on a locked
	// database instead of failing
	return fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		filepath.Join(d.dataDir, accountsFileName),
	), nil
}

func (d *MetadataStoreSqlite) migrate() error {
	tables := append([]any{&CommitState{}}, models.MigrateModels...)
	for _, model := range tables {
		if err := d.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}
	d.logger.Debug(
		fmt.Sprintf("account store schema ready (%d tables)", len(tables)),
		"component", "database",
	)
	return nil
}

func (d *MetadataStoreSqlite) Close() error {
	sqlDb, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return sqlDb.Close()
}

// DB returns the gorm handle
func (d *MetadataStoreSqlite) DB() *gorm.DB {
	return d.db
}
