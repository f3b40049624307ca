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
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// journalLogger adapts slog to the badger.Logger interface. Badger messages
// arrive printf-formatted with trailing newlines
type journalLogger struct {
	logger *slog.Logger
}

func newJournalLogger(logger *slog.Logger) *journalLogger {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &journalLogger{
		logger: logger.With("component", "database", "store", "journal"),
	}
}

func (l *journalLogger) log(level slog.Level, format string, args []any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *journalLogger) Errorf(format string, args ...any) {
	l.log(slog.LevelError, format, args)
}

func (l *journalLogger) Warningf(format string, args ...any) {
	l.log(slog.LevelWarn, format, args)
}

// Infof is demoted to debug. Badger reports every compaction and flush at info
func (l *journalLogger) Infof(format string, args ...any) {
	l.log(slog.LevelDebug, format, args)
}

func (l *journalLogger) Debugf(format string, args ...any) {
	l.log(slog.LevelDebug, format, args)
}
