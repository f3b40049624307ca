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

package program_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/blinklabs-io/volya/database"
	"github.com/blinklabs-io/volya/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	wrapped := fmt.Errorf("stake: %w", program.ErrPoolPaused)
	assert.Equal(t, 11, program.ErrorCode(wrapped))
	assert.Equal(t, 0, program.ErrorCode(program.ErrInvalidParameter))
	assert.Equal(t, -1, program.ErrorCode(errors.New("other")))
	assert.Equal(t, -1, program.ErrorCode(nil))
}

func TestErrorsDistinct(t *testing.T) {
	for i, a := range program.Errors {
		for j, b := range program.Errors {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}

func TestNewContext(t *testing.T) {
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	defer db.Close()
	txn := db.Transaction(false)
	defer txn.Release()
	ctx := program.NewContext(txn, 1700000000, nil)
	require.NotNil(t, ctx.Logger)
	assert.Same(t, db, ctx.DB())
	assert.Equal(t, int64(1700000000), ctx.Now)
}
