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

package keystore_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/blinklabs-io/volya/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeypair(t *testing.T) *keystore.Keypair {
	t.Helper()
	kp, err := keystore.FromSeed(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)
	return kp
}

func TestParseRoundTrip(t *testing.T) {
	kp := testKeypair(t)
	data, err := json.Marshal(kp)
	require.NoError(t, err)
	assert.Equal(t, byte('['), data[0])
	parsed, err := keystore.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), parsed.Address())
	assert.Equal(t, []byte(kp.PublicKey()), parsed.Address().Bytes())
}

func TestParseInvalid(t *testing.T) {
	kp := testKeypair(t)
	data, err := kp.MarshalJSON()
	require.NoError(t, err)
	var raw []int
	require.NoError(t, json.Unmarshal(data, &raw))

	short, err := json.Marshal(raw[:32])
	require.NoError(t, err)
	mismatched := append([]int{}, raw...)
	mismatched[63] ^= 0xff
	mismatchedData, err := json.Marshal(mismatched)
	require.NoError(t, err)
	outOfRange := append([]int{}, raw...)
	outOfRange[0] = 256
	outOfRangeData, err := json.Marshal(outOfRange)
	require.NoError(t, err)

	for _, data := range [][]byte{
		[]byte("not json"),
		[]byte(`"base58"`),
		short,
		mismatchedData,
		outOfRangeData,
	} {
		_, err := keystore.Parse(data)
		require.ErrorIs(t, err, keystore.ErrInvalidKeypair, string(data))
	}
}

func TestSignVerify(t *testing.T) {
	kp := testKeypair(t)
	msg := []byte("stake 100000")
	sig := kp.Sign(msg)
	assert.True(t, keystore.Verify(kp.Address(), msg, sig))
	assert.False(t, keystore.Verify(kp.Address(), []byte("stake 100001"), sig))
	assert.False(t, keystore.Verify(kp.Address(), msg, sig[:10]))
}

func TestLoadFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	kp := testKeypair(t)
	path := filepath.Join(t.TempDir(), "keypair.json")
	require.NoError(t, kp.Save(path))
	loaded, err := keystore.Load(path)
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), loaded.Address())

	require.NoError(t, os.Chmod(path, 0o644))
	_, err = keystore.Load(path)
	require.ErrorIs(t, err, keystore.ErrInsecureFileMode)

	_, err = keystore.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestResolveEnv(t *testing.T) {
	kp := testKeypair(t)
	data, err := kp.MarshalJSON()
	require.NoError(t, err)
	t.Setenv("VOLYA_TEST_KEYPAIR", string(data))
	loaded, err := keystore.Resolve("", "VOLYA_TEST_KEYPAIR")
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), loaded.Address())

	_, err = keystore.Resolve("", "VOLYA_TEST_KEYPAIR_UNSET")
	require.ErrorIs(t, err, keystore.ErrNoKeypair)
}
