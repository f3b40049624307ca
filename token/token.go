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

// Package token implements the fungible token ledger that the staking and
// governance programs move balances on: mints, token accounts, minting and
// transfers.
package token

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/database/types"
	"github.com/blinklabs-io/volya/program"
)

const (
	MaxDecimals = 18

	accountSeed = "token_account"
)

// Ledger executes token instructions for accounts derived from its program ID
type Ledger struct {
	programID address.Address
}

func New(programID address.Address) *Ledger {
	return &Ledger{programID: programID}
}

func (l *Ledger) ProgramID() address.Address {
	return l.programID
}

// AccountAddress returns the address of the token account holding mint for owner
func (l *Ledger) AccountAddress(
	mint address.Address,
	owner address.Address,
) (address.Address, uint8, error) {
	return address.Derive(
		[][]byte{[]byte(accountSeed), mint.Bytes(), owner.Bytes()},
		l.programID,
	)
}

// CreateMint creates a new mint at the given address
func (l *Ledger) CreateMint(
	ctx *program.Context,
	mint address.Address,
	authority address.Address,
	decimals uint8,
) (*models.TokenMint, error) {
	if mint.IsZero() || authority.IsZero() {
		return nil, fmt.Errorf("%w: zero address", program.ErrInvalidParameter)
	}
	if decimals > MaxDecimals {
		return nil, fmt.Errorf(
			"%w: decimals %d exceeds %d",
			program.ErrInvalidParameter,
			decimals,
			MaxDecimals,
		)
	}
	db := ctx.DB()
	if _, err := db.GetTokenMint(mint, ctx.Txn); err == nil {
		return nil, fmt.Errorf("%w: mint %s", program.ErrAlreadyInitialized, mint)
	} else if !errors.Is(err, models.ErrTokenMintNotFound) {
		return nil, err
	}
	tmpMint := &models.TokenMint{
		Address:       mint,
		MintAuthority: authority,
		Decimals:      decimals,
	}
	if err := db.SetTokenMint(tmpMint, ctx.Txn); err != nil {
		return nil, err
	}
	ctx.Logger.Debug(
		"created mint",
		"component", "token",
		"mint", mint.String(),
		"decimals", decimals,
	)
	return tmpMint, nil
}

// CreateAccount creates the derived token account of owner for mint
func (l *Ledger) CreateAccount(
	ctx *program.Context,
	mint address.Address,
	owner address.Address,
) (*models.TokenAccount, error) {
	addr, _, err := l.AccountAddress(mint, owner)
	if err != nil {
		return nil, err
	}
	return l.CreateAccountAt(ctx, addr, mint, owner)
}

// CreateAccountAt creates a token account at an address chosen by the caller.
// Programs use this for accounts that live at their own derived addresses
func (l *Ledger) CreateAccountAt(
	ctx *program.Context,
	addr address.Address,
	mint address.Address,
	owner address.Address,
) (*models.TokenAccount, error) {
	if addr.IsZero() || owner.IsZero() {
		return nil, fmt.Errorf("%w: zero address", program.ErrInvalidParameter)
	}
	db := ctx.DB()
	if _, err := l.getMint(ctx, mint); err != nil {
		return nil, err
	}
	if _, err := db.GetTokenAccount(addr, ctx.Txn); err == nil {
		return nil, fmt.Errorf("%w: token account %s", program.ErrAlreadyInitialized, addr)
	} else if !errors.Is(err, models.ErrTokenAccountNotFound) {
		return nil, err
	}
	account := &models.TokenAccount{
		Address: addr,
		Mint:    mint,
		Owner:   owner,
	}
	if err := db.SetTokenAccount(account, ctx.Txn); err != nil {
		return nil, err
	}
	return account, nil
}

// MintTo creates new tokens in a token account. Only the mint authority may
// mint
func (l *Ledger) MintTo(
	ctx *program.Context,
	authority address.Address,
	mint address.Address,
	destination address.Address,
	amount uint64,
) error {
	if amount == 0 {
		return fmt.Errorf("%w: amount must be positive", program.ErrInvalidParameter)
	}
	tmpMint, err := l.getMint(ctx, mint)
	if err != nil {
		return err
	}
	if tmpMint.MintAuthority != authority {
		return fmt.Errorf("%w: not the mint authority", program.ErrUnauthorized)
	}
	account, err := l.GetAccount(ctx, destination)
	if err != nil {
		return err
	}
	if account.Mint != mint {
		return fmt.Errorf("%w: account mint mismatch", program.ErrInvalidParameter)
	}
	supply, ok := checkedAdd(uint64(tmpMint.Supply), amount)
	if !ok {
		return fmt.Errorf("%w: mint supply overflow", program.ErrInvalidParameter)
	}
	balance, ok := checkedAdd(uint64(account.Amount), amount)
	if !ok {
		return fmt.Errorf("%w: balance overflow", program.ErrInvalidParameter)
	}
	tmpMint.Supply = types.Uint64(supply)
	account.Amount = types.Uint64(balance)
	db := ctx.DB()
	if err := db.SetTokenMint(tmpMint, ctx.Txn); err != nil {
		return err
	}
	return db.SetTokenAccount(account, ctx.Txn)
}

// Transfer moves amount between two accounts of the same mint. The
// authority must own the source account
func (l *Ledger) Transfer(
	ctx *program.Context,
	authority address.Address,
	source address.Address,
	destination address.Address,
	amount uint64,
) error {
	if amount == 0 {
		return fmt.Errorf("%w: amount must be positive", program.ErrInvalidParameter)
	}
	from, err := l.GetAccount(ctx, source)
	if err != nil {
		return err
	}
	if from.Owner != authority {
		return fmt.Errorf(
			"%w: %s does not own token account %s",
			program.ErrUnauthorized,
			authority,
			source,
		)
	}
	if uint64(from.Amount) < amount {
		return fmt.Errorf(
			"%w: balance %d, need %d",
			program.ErrInsufficientBalance,
			from.Amount,
			amount,
		)
	}
	if source == destination {
		return nil
	}
	to, err := l.GetAccount(ctx, destination)
	if err != nil {
		return err
	}
	if to.Mint != from.Mint {
		return fmt.Errorf("%w: account mint mismatch", program.ErrInvalidParameter)
	}
	balance, ok := checkedAdd(uint64(to.Amount), amount)
	if !ok {
		return fmt.Errorf("%w: balance overflow", program.ErrInvalidParameter)
	}
	from.Amount -= types.Uint64(amount)
	to.Amount = types.Uint64(balance)
	db := ctx.DB()
	if err := db.SetTokenAccount(from, ctx.Txn); err != nil {
		return err
	}
	return db.SetTokenAccount(to, ctx.Txn)
}

// GetAccount loads a token account
func (l *Ledger) GetAccount(
	ctx *program.Context,
	addr address.Address,
) (*models.TokenAccount, error) {
	account, err := ctx.DB().GetTokenAccount(addr, ctx.Txn)
	if err != nil {
		if errors.Is(err, models.ErrTokenAccountNotFound) {
			return nil, fmt.Errorf("%w: token account %s", program.ErrAccountNotFound, addr)
		}
		return nil, err
	}
	return account, nil
}

// BalanceOf returns the balance of owner's derived token account for mint.
// An account that does not exist holds nothing
func (l *Ledger) BalanceOf(
	ctx *program.Context,
	mint address.Address,
	owner address.Address,
) (uint64, error) {
	addr, _, err := l.AccountAddress(mint, owner)
	if err != nil {
		return 0, err
	}
	account, err := ctx.DB().GetTokenAccount(addr, ctx.Txn)
	if err != nil {
		if errors.Is(err, models.ErrTokenAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return uint64(account.Amount), nil
}

func (l *Ledger) getMint(
	ctx *program.Context,
	mint address.Address,
) (*models.TokenMint, error) {
	tmpMint, err := ctx.DB().GetTokenMint(mint, ctx.Txn)
	if err != nil {
		if errors.Is(err, models.ErrTokenMintNotFound) {
			return nil, fmt.Errorf("%w: mint %s", program.ErrAccountNotFound, mint)
		}
		return nil, err
	}
	return tmpMint, nil
}

// GetMint loads a mint
func (l *Ledger) GetMint(
	ctx *program.Context,
	mint address.Address,
) (*models.TokenMint, error) {
	return l.getMint(ctx, mint)
}

func checkedAdd(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum >= a
}
