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

// Package program holds what the instruction handlers share: the error
// taxonomy returned to callers and the execution context of a single
// instruction.
package program

import (
	"errors"
	"io"
	"log/slog"

	"github.com/blinklabs-io/volya/database"
)

var (
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrAlreadyInitialized  = errors.New("account already initialized")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrInsufficientStake   = errors.New("insufficient stake")
	ErrLockupActive        = errors.New("lockup period still active")
	ErrVaultUnderfunded    = errors.New("vault cannot cover the reward")
	ErrVotingClosed        = errors.New("voting is closed")
	ErrDuplicateVote       = errors.New("voter has already voted")
	ErrNotReady            = errors.New("voting period has not ended")
	ErrAlreadyFinalized    = errors.New("proposal already finalized")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrPoolPaused          = errors.New("staking pool is paused")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidSignature    = errors.New("invalid signature")
)

// Errors lists every error of the taxonomy in a fixed order. The index of an
// error is its numeric code
var Errors = []error{
	ErrInvalidParameter,
	ErrAlreadyInitialized,
	ErrInsufficientBalance,
	ErrInsufficientStake,
	ErrLockupActive,
	ErrVaultUnderfunded,
	ErrVotingClosed,
	ErrDuplicateVote,
	ErrNotReady,
	ErrAlreadyFinalized,
	ErrUnauthorized,
	ErrPoolPaused,
	ErrAccountNotFound,
	ErrInvalidSignature,
}

// ErrorCode returns the numeric code of the taxonomy error wrapped by err,
// or -1 if err does not wrap one
func ErrorCode(err error) int {
	for i, e := range Errors {
		if errors.Is(err, e) {
			return i
		}
	}
	return -1
}

// Context is the environment of a single instruction. All reads and writes
// go through Txn, and Now is the only clock handlers may consult
type Context struct {
	Txn    *database.Txn
	Logger *slog.Logger
	Now    int64
}

// NewContext returns a context for an instruction executing at now. A nil
// logger discards output
func NewContext(txn *database.Txn, now int64, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Context{
		Txn:    txn,
		Logger: logger,
		Now:    now,
	}
}

// DB returns the database the instruction runs against
func (c *Context) DB() *database.Database {
	return c.Txn.DB()
}
