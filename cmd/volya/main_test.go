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

package main

import (
	"testing"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/processor"
	"github.com/blinklabs-io/volya/program"
	"github.com/blinklabs-io/volya/tokenomics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	rec := tokenomics.Default()
	testDefs := []struct {
		value    string
		whole    bool
		expected uint64
		wantErr  bool
	}{
		{value: "986", expected: 986},
		{value: "50000", whole: true, expected: 50_000_000_000_000},
		{value: "0", wantErr: true},
		{value: "-5", wantErr: true},
		{value: "abc", wantErr: true},
		{value: "18446744073709551615", whole: true, wantErr: true},
	}
	for _, testDef := range testDefs {
		ret, err := parseAmount(testDef.value, testDef.whole, rec)
		if testDef.wantErr {
			assert.Error(t, err, "value %q", testDef.value)
			continue
		}
		require.NoError(t, err, "value %q", testDef.value)
		assert.Equal(t, testDef.expected, ret)
	}
}

func TestParseChoice(t *testing.T) {
	for _, value := range []string{"yes", "Y", "1"} {
		choice, err := parseChoice(value)
		require.NoError(t, err)
		assert.Equal(t, uint8(models.VoteYes), choice)
	}
	for _, value := range []string{"no", "N", "0"} {
		choice, err := parseChoice(value)
		require.NoError(t, err)
		assert.Equal(t, uint8(models.VoteNo), choice)
	}
	_, err := parseChoice("abstain")
	require.ErrorIs(t, err, program.ErrInvalidParameter)
}

func TestNewJournalView(t *testing.T) {
	signer := address.Address{0xaa}
	view := newJournalView(database.JournalEntry{
		Sequence:  7,
		Kind:      processor.KindStake,
		Signer:    signer.Bytes(),
		Signature: []byte{0xde, 0xad},
		Timestamp: 1_700_000_000,
	})
	assert.Equal(t, uint64(7), view.Sequence)
	assert.Equal(t, "stake", view.Kind)
	assert.Equal(t, signer, view.Signer)
	assert.Equal(t, "dead", view.Signature)
}
