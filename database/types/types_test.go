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

package types_test

import (
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/blinklabs-io/volya/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint64ScanValue(t *testing.T) {
	testDefs := []uint64{0, 123, 1<<63 + 5, ^uint64(0)}
	for _, testDef := range testDefs {
		orig := types.Uint64(testDef)
		var valuer driver.Valuer = orig
		valueOut, err := valuer.Value()
		require.NoError(t, err)
		require.IsType(t, "", valueOut)
		var scanned types.Uint64
		var scanner sql.Scanner = &scanned
		require.NoError(t, scanner.Scan(valueOut))
		assert.Equal(t, orig, scanned)
	}
}

func TestUint64ScanAlternateTypes(t *testing.T) {
	var u types.Uint64
	require.NoError(t, u.Scan([]byte("42")))
	assert.Equal(t, types.Uint64(42), u)
	require.NoError(t, u.Scan(int64(7)))
	assert.Equal(t, types.Uint64(7), u)
	require.NoError(t, u.Scan(nil))
	assert.Equal(t, types.Uint64(0), u)
	require.Error(t, u.Scan(int64(-1)))
	require.Error(t, u.Scan(1.5))
	require.Error(t, u.Scan("abc"))
}
