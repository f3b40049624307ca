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

package token_test

import (
	"testing"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database"
	"github.com/blinklabs-io/volya/program"
	"github.com/blinklabs-io/volya/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProgramID = address.Address{0x06, 0xdd, 0xf6, 0xe1, 0xd7, 0x65, 0xa1, 0x93}

func testAddress(b byte) address.Address {
	var ret address.Address
	for i := range ret {
		ret[i] = b
	}
	return ret
}

func newTestContext(t *testing.T) *program.Context {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	txn := db.Transaction(true)
	t.Cleanup(func() {
		txn.Release()
		require.NoError(t, db.Close())
	})
	return program.NewContext(txn, 1700000000, nil)
}

func setupMint(t *testing.T, ctx *program.Context, l *token.Ledger) (address.Address, address.Address) {
	t.Helper()
	mint := testAddress(0x10)
	authority := testAddress(0x11)
	_, err := l.CreateMint(ctx, mint, authority, 9)
	require.NoError(t, err)
	return mint, authority
}

func TestCreateMint(t *testing.T) {
	ctx := newTestContext(t)
	l := token.New(testProgramID)
	mint, authority := setupMint(t, ctx, l)
	tmpMint, err := l.GetMint(ctx, mint)
	require.NoError(t, err)
	assert.Equal(t, authority, tmpMint.MintAuthority)
	assert.Equal(t, uint8(9), tmpMint.Decimals)
	_, err = l.CreateMint(ctx, mint, authority, 9)
	require.ErrorIs(t, err, program.ErrAlreadyInitialized)
	_, err = l.CreateMint(ctx, testAddress(0x12), authority, 19)
	require.ErrorIs(t, err, program.ErrInvalidParameter)
	_, err = l.CreateMint(ctx, address.Zero, authority, 6)
	require.ErrorIs(t, err, program.ErrInvalidParameter)
}

func TestCreateAccount(t *testing.T) {
	ctx := newTestContext(t)
	l := token.New(testProgramID)
	mint, _ := setupMint(t, ctx, l)
	owner := testAddress(0x20)
	account, err := l.CreateAccount(ctx, mint, owner)
	require.NoError(t, err)
	expected, _, err := l.AccountAddress(mint, owner)
	require.NoError(t, err)
	assert.Equal(t, expected, account.Address)
	_, err = l.CreateAccount(ctx, mint, owner)
	require.ErrorIs(t, err, program.ErrAlreadyInitialized)
	_, err = l.CreateAccount(ctx, testAddress(0x99), owner)
	require.ErrorIs(t, err, program.ErrAccountNotFound)
}

func TestMintTo(t *testing.T) {
	ctx := newTestContext(t)
	l := token.New(testProgramID)
	mint, authority := setupMint(t, ctx, l)
	owner := testAddress(0x20)
	account, err := l.CreateAccount(ctx, mint, owner)
	require.NoError(t, err)
	require.NoError(t, l.MintTo(ctx, authority, mint, account.Address, 500))
	require.ErrorIs(
		t,
		l.MintTo(ctx, owner, mint, account.Address, 500),
		program.ErrUnauthorized,
	)
	require.ErrorIs(
		t,
		l.MintTo(ctx, authority, mint, account.Address, 0),
		program.ErrInvalidParameter,
	)
	require.ErrorIs(
		t,
		l.MintTo(ctx, authority, mint, account.Address, ^uint64(0)),
		program.ErrInvalidParameter,
	)
	balance, err := l.BalanceOf(ctx, mint, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), balance)
	tmpMint, err := l.GetMint(ctx, mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), uint64(tmpMint.Supply))
}

func TestTransfer(t *testing.T) {
	ctx := newTestContext(t)
	l := token.New(testProgramID)
	mint, authority := setupMint(t, ctx, l)
	alice := testAddress(0x20)
	bob := testAddress(0x21)
	aliceAccount, err := l.CreateAccount(ctx, mint, alice)
	require.NoError(t, err)
	bobAccount, err := l.CreateAccount(ctx, mint, bob)
	require.NoError(t, err)
	require.NoError(t, l.MintTo(ctx, authority, mint, aliceAccount.Address, 1000))

	require.NoError(t, l.Transfer(ctx, alice, aliceAccount.Address, bobAccount.Address, 400))
	require.ErrorIs(
		t,
		l.Transfer(ctx, bob, aliceAccount.Address, bobAccount.Address, 1),
		program.ErrUnauthorized,
	)
	require.ErrorIs(
		t,
		l.Transfer(ctx, alice, aliceAccount.Address, bobAccount.Address, 601),
		program.ErrInsufficientBalance,
	)
	require.ErrorIs(
		t,
		l.Transfer(ctx, alice, aliceAccount.Address, testAddress(0x55), 1),
		program.ErrAccountNotFound,
	)
	// Self transfer leaves the balance unchanged
	require.NoError(t, l.Transfer(ctx, alice, aliceAccount.Address, aliceAccount.Address, 600))

	aliceBalance, err := l.BalanceOf(ctx, mint, alice)
	require.NoError(t, err)
	bobBalance, err := l.BalanceOf(ctx, mint, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), aliceBalance)
	assert.Equal(t, uint64(400), bobBalance)
	// Conservation
	tmpMint, err := l.GetMint(ctx, mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(tmpMint.Supply), aliceBalance+bobBalance)
}

func TestBalanceOfMissingAccount(t *testing.T) {
	ctx := newTestContext(t)
	l := token.New(testProgramID)
	mint, _ := setupMint(t, ctx, l)
	balance, err := l.BalanceOf(ctx, mint, testAddress(0x77))
	require.NoError(t, err)
	assert.Zero(t, balance)
}
